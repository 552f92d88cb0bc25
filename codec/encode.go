package codec

import (
	"bytes"
	"compress/zlib"
	"fmt"
	"io"
	"sync"

	"github.com/klauspost/compress/zstd"

	"github.com/voxelsplace/voxbuf/voxel"
)

const (
	encRuns   = 0 // run-length runs: uvarint count, then (uvarint len, u64 cell)
	encSparse = 1 // occupancy bitmap + u64 cell per occupied index
)

const bitmapBytes = voxel.ChunkVolume / 8

type encoded struct {
	encoding byte
	payload  []byte
}

func encodeRuns(ch *voxel.Chunk) []byte {
	runs := voxel.CompressChunk(ch).Runs
	out := make([]byte, 0, 2+len(runs)*10)
	out = writeUVarint(out, uint64(len(runs)))
	for _, r := range runs {
		out = writeUVarint(out, uint64(r.Len))
		out = writeU64(out, r.Cell.Pack())
	}
	return out
}

func encodeSparse(ch *voxel.Chunk) []byte {
	bw := newBitWriter(bitmapBytes)
	for i := 0; i < voxel.ChunkVolume; i++ {
		if ch.At(i).IsEmpty() {
			bw.writeBits(0, 1)
		} else {
			bw.writeBits(1, 1)
		}
	}
	out := make([]byte, 0, bitmapBytes+ch.Count()*8)
	out = append(out, bw.bytes()...)
	for i := 0; i < voxel.ChunkVolume; i++ {
		if c := ch.At(i); !c.IsEmpty() {
			out = writeU64(out, c.Pack())
		}
	}
	return out
}

// bestEncoding picks the smaller of the chunk encodings. Runs win ties.
func bestEncoding(ch *voxel.Chunk) encoded {
	best := encoded{encoding: encRuns, payload: encodeRuns(ch)}
	// The sparse form cannot win unless the runs already outgrow the bitmap.
	if len(best.payload) > bitmapBytes {
		if sp := encodeSparse(ch); len(sp) < len(best.payload) {
			best = encoded{encoding: encSparse, payload: sp}
		}
	}
	return best
}

func decodeChunk(enc byte, payload []byte) (*voxel.Chunk, error) {
	switch enc {
	case encRuns:
		pos := 0
		n, err := readUVarint(payload, &pos)
		if err != nil {
			return nil, err
		}
		if n > voxel.ChunkVolume {
			return nil, fmt.Errorf("%w: %d runs", ErrFormat, n)
		}
		runs := make([]voxel.Run, n)
		for i := range runs {
			l, err := readUVarint(payload, &pos)
			if err != nil {
				return nil, err
			}
			if l > voxel.ChunkVolume {
				return nil, fmt.Errorf("%w: run of %d", voxel.ErrRunLength, l)
			}
			v, err := readU64(payload, &pos)
			if err != nil {
				return nil, err
			}
			runs[i] = voxel.Run{Len: uint32(l), Cell: voxel.UnpackCell(v)}
		}
		if pos != len(payload) {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(payload)-pos)
		}
		return voxel.DecompressChunk(voxel.CompressedChunk{Runs: runs})
	case encSparse:
		if len(payload) < bitmapBytes {
			return nil, fmt.Errorf("%w: sparse payload too short", ErrFormat)
		}
		br := newBitReader(payload[:bitmapBytes])
		pos := bitmapBytes
		ch := voxel.NewChunk()
		for i := 0; i < voxel.ChunkVolume; i++ {
			bit, err := br.readBits(1)
			if err != nil {
				return nil, err
			}
			if bit == 0 {
				continue
			}
			v, err := readU64(payload, &pos)
			if err != nil {
				return nil, err
			}
			c := voxel.UnpackCell(v)
			if c.IsEmpty() {
				return nil, fmt.Errorf("%w: empty cell marked occupied", ErrFormat)
			}
			ch.Set(voxel.LocalFromIndex(i), c)
		}
		if pos != len(payload) {
			return nil, fmt.Errorf("%w: %d trailing bytes", ErrFormat, len(payload)-pos)
		}
		return ch, nil
	default:
		return nil, fmt.Errorf("%w: unknown chunk encoding %d", ErrFormat, enc)
	}
}

// MarshalChunk encodes a single chunk as an encoding byte followed by its payload.
func MarshalChunk(ch *voxel.Chunk) []byte {
	e := bestEncoding(ch)
	return append([]byte{e.encoding}, e.payload...)
}

// UnmarshalChunk is the inverse of MarshalChunk.
func UnmarshalChunk(data []byte) (*voxel.Chunk, error) {
	if len(data) == 0 {
		return nil, fmt.Errorf("%w: empty chunk record", ErrFormat)
	}
	return decodeChunk(data[0], data[1:])
}

func zlibCompress(b []byte) []byte {
	var buf bytes.Buffer
	zw, _ := zlib.NewWriterLevel(&buf, zlib.BestCompression)
	_, _ = zw.Write(b)
	_ = zw.Close()
	return buf.Bytes()
}

func zlibDecompress(b []byte) ([]byte, error) {
	zr, err := zlib.NewReader(bytes.NewReader(b))
	if err != nil {
		return nil, err
	}
	defer zr.Close()
	return io.ReadAll(zr)
}

var (
	zstdOnce sync.Once
	zstdEnc  *zstd.Encoder
	zstdDec  *zstd.Decoder
)

func zstdCodec() (*zstd.Encoder, *zstd.Decoder) {
	zstdOnce.Do(func() {
		zstdEnc, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
		zstdDec, _ = zstd.NewReader(nil, zstd.WithDecoderMaxMemory(1<<30))
	})
	return zstdEnc, zstdDec
}

func zstdCompress(b []byte) []byte {
	enc, _ := zstdCodec()
	return enc.EncodeAll(b, nil)
}

func zstdDecompress(b []byte) ([]byte, error) {
	_, dec := zstdCodec()
	return dec.DecodeAll(b, nil)
}
