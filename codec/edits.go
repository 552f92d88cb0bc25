package codec

import (
	"fmt"

	"github.com/voxelsplace/voxbuf/voxel"
)

const (
	editsMagic   = "VXDF"
	editsVersion = 1
)

// EncodeEdits serializes an edit stream: magic, version, then a zstd frame of
// (count, [zigzag x, y, z, u64 cell]...). An empty cell clears its voxel.
func EncodeEdits(edits []voxel.Edit) []byte {
	body := writeUVarint(make([]byte, 0, 1+len(edits)*12), uint64(len(edits)))
	for _, e := range edits {
		body = writeVarint(body, e.Coord.X)
		body = writeVarint(body, e.Coord.Y)
		body = writeVarint(body, e.Coord.Z)
		body = writeU64(body, e.Cell.Pack())
	}
	out := append([]byte(editsMagic), editsVersion)
	return append(out, zstdCompress(body)...)
}

func DecodeEdits(data []byte) ([]voxel.Edit, error) {
	if len(data) < len(editsMagic)+1 || string(data[:len(editsMagic)]) != editsMagic {
		return nil, fmt.Errorf("%w: not an edit stream", ErrFormat)
	}
	if v := data[len(editsMagic)]; v != editsVersion {
		return nil, fmt.Errorf("%w: unsupported edit stream version %d", ErrFormat, v)
	}
	body, err := zstdDecompress(data[len(editsMagic)+1:])
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	pos := 0
	n, err := readUVarint(body, &pos)
	if err != nil {
		return nil, err
	}
	// each edit takes at least 3 varint bytes and a u64
	if n > uint64(len(body))/11 {
		return nil, fmt.Errorf("%w: %d edits in %d bytes", ErrFormat, n, len(body))
	}
	edits := make([]voxel.Edit, n)
	for i := range edits {
		e := &edits[i]
		for _, dst := range []*int32{&e.Coord.X, &e.Coord.Y, &e.Coord.Z} {
			if *dst, err = readVarint(body, &pos); err != nil {
				return nil, fmt.Errorf("edit %d: %w", i, err)
			}
		}
		v, err := readU64(body, &pos)
		if err != nil {
			return nil, fmt.Errorf("edit %d: %w", i, err)
		}
		e.Cell = voxel.UnpackCell(v)
	}
	if pos != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(body)-pos)
	}
	return edits, nil
}
