package codec

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"os"

	xxhash "github.com/cespare/xxhash/v2"

	"github.com/voxelsplace/voxbuf/voxel"
)

var (
	ErrFormat   = errors.New("codec: malformed data")
	ErrChecksum = errors.New("codec: checksum mismatch")
)

const (
	fileMagic   = "VXBF"
	fileVersion = 1
	headerSize  = 4 + 1 + 1 + 8 + 4
)

// Compression selects how the body of a .vxb file is compressed.
type Compression uint8

const (
	CompNone Compression = 0
	CompZlib Compression = 1
	CompZstd Compression = 2
	// CompAuto tries every codec and keeps the smallest output. Never stored.
	CompAuto Compression = 0xFF
)

func (c Compression) String() string {
	switch c {
	case CompNone:
		return "none"
	case CompZlib:
		return "zlib"
	case CompZstd:
		return "zstd"
	case CompAuto:
		return "auto"
	}
	return fmt.Sprintf("compression(%d)", uint8(c))
}

func ParseCompression(s string) (Compression, error) {
	switch s {
	case "none":
		return CompNone, nil
	case "zlib":
		return CompZlib, nil
	case "zstd":
		return CompZstd, nil
	case "auto", "":
		return CompAuto, nil
	}
	return 0, fmt.Errorf("unknown compression %q", s)
}

type Options struct {
	Compression Compression
}

// DefaultOptions uses zstd.
var DefaultOptions = Options{Compression: CompZstd}

// encodeBody writes the canonical, uncompressed body: chunk count, then for each
// chunk in ChunkCoords order its coordinate, encoding byte and payload.
func encodeBody(b *voxel.Buffer) []byte {
	coords := b.ChunkCoords()
	out := writeUVarint(nil, uint64(len(coords)))
	for _, cc := range coords {
		ch, _ := b.Chunk(cc)
		e := bestEncoding(ch)
		out = writeVarint(out, cc.X)
		out = writeVarint(out, cc.Y)
		out = writeVarint(out, cc.Z)
		out = append(out, e.encoding)
		out = writeUVarint(out, uint64(len(e.payload)))
		out = append(out, e.payload...)
	}
	return out
}

func decodeBody(body []byte) (*voxel.Buffer, error) {
	pos := 0
	n, err := readUVarint(body, &pos)
	if err != nil {
		return nil, fmt.Errorf("chunk count: %w", err)
	}
	b := voxel.New()
	for i := uint64(0); i < n; i++ {
		var cc voxel.ChunkCoord
		for _, dst := range []*int32{&cc.X, &cc.Y, &cc.Z} {
			if *dst, err = readVarint(body, &pos); err != nil {
				return nil, fmt.Errorf("chunk %d coordinate: %w", i, err)
			}
		}
		if pos >= len(body) {
			return nil, fmt.Errorf("chunk %v: %w", cc, ErrFormat)
		}
		enc := body[pos]
		pos++
		plen, err := readUVarint(body, &pos)
		if err != nil {
			return nil, fmt.Errorf("chunk %v length: %w", cc, err)
		}
		if plen > uint64(len(body)-pos) {
			return nil, fmt.Errorf("chunk %v: %w: payload overruns body", cc, ErrFormat)
		}
		if _, dup := b.Chunk(cc); dup {
			return nil, fmt.Errorf("chunk %v: %w: duplicate chunk", cc, ErrFormat)
		}
		ch, err := decodeChunk(enc, body[pos:pos+int(plen)])
		if err != nil {
			return nil, fmt.Errorf("chunk %v: %w", cc, err)
		}
		pos += int(plen)
		b.Insert(cc, ch)
	}
	if pos != len(body) {
		return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(body)-pos)
	}
	return b, nil
}

// ContentHash is the xxhash of b's canonical encoding. Buffers with equal
// contents hash equally regardless of how they were built.
func ContentHash(b *voxel.Buffer) uint64 {
	return xxhash.Sum64(encodeBody(b))
}

func compress(body []byte, c Compression) (Compression, []byte, error) {
	switch c {
	case CompNone:
		return c, body, nil
	case CompZlib:
		return c, zlibCompress(body), nil
	case CompZstd:
		return c, zstdCompress(body), nil
	case CompAuto:
		best, bestData := CompNone, body
		for _, cand := range []Compression{CompZlib, CompZstd} {
			_, data, _ := compress(body, cand)
			if len(data) < len(bestData) {
				best, bestData = cand, data
			}
		}
		return best, bestData, nil
	}
	return 0, nil, fmt.Errorf("unknown compression %d", uint8(c))
}

// Encode serializes b as a .vxb file.
func Encode(b *voxel.Buffer, opts Options) ([]byte, error) {
	body := encodeBody(b)
	comp, data, err := compress(body, opts.Compression)
	if err != nil {
		return nil, err
	}

	var buf bytes.Buffer
	buf.Grow(headerSize + len(data))
	buf.WriteString(fileMagic)
	_ = binary.Write(&buf, binary.LittleEndian, uint8(fileVersion))
	_ = binary.Write(&buf, binary.LittleEndian, uint8(comp))
	_ = binary.Write(&buf, binary.LittleEndian, xxhash.Sum64(body))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(data)))
	_, _ = buf.Write(data)
	return buf.Bytes(), nil
}

// Decode parses a .vxb file. Every chunk's runs are validated to cover exactly
// one chunk volume.
func Decode(data []byte) (*voxel.Buffer, error) {
	if len(data) < headerSize || string(data[:4]) != fileMagic {
		return nil, fmt.Errorf("%w: not a vxb file", ErrFormat)
	}
	r := bytes.NewReader(data[4:headerSize])
	var ver, comp uint8
	var sum uint64
	var plen uint32
	for _, v := range []any{&ver, &comp, &sum, &plen} {
		if err := binary.Read(r, binary.LittleEndian, v); err != nil {
			return nil, err
		}
	}
	if ver != fileVersion {
		return nil, fmt.Errorf("%w: unsupported version %d", ErrFormat, ver)
	}
	if uint64(plen) != uint64(len(data)-headerSize) {
		return nil, fmt.Errorf("%w: payload length %d, have %d", ErrFormat, plen, len(data)-headerSize)
	}

	payload := data[headerSize:]
	var body []byte
	var err error
	switch Compression(comp) {
	case CompNone:
		body = payload
	case CompZlib:
		body, err = zlibDecompress(payload)
	case CompZstd:
		body, err = zstdDecompress(payload)
	default:
		return nil, fmt.Errorf("%w: unknown compression %d", ErrFormat, comp)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}
	if xxhash.Sum64(body) != sum {
		return nil, ErrChecksum
	}
	return decodeBody(body)
}

func SaveFile(b *voxel.Buffer, path string, opts Options) error {
	data, err := Encode(b, opts)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

func LoadFile(path string) (*voxel.Buffer, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	b, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return b, nil
}
