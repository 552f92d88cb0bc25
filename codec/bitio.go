package codec

import (
	"encoding/binary"
	"io"
)

// bitWriter packs values LSB-first into bytes. The sparse chunk encoding uses it
// for the occupancy bitmap.
type bitWriter struct {
	buf []byte
	acc uint64
	n   uint8
}

func newBitWriter(capacity int) *bitWriter { return &bitWriter{buf: make([]byte, 0, capacity)} }

// writeBits appends the low bits of v.
func (w *bitWriter) writeBits(v uint64, bits uint8) {
	w.acc |= (v & ((1 << bits) - 1)) << w.n
	w.n += bits
	for w.n >= 8 {
		w.buf = append(w.buf, byte(w.acc&0xFF))
		w.acc >>= 8
		w.n -= 8
	}
}

// bytes flushes a partial trailing byte, zero padded, and returns the output.
func (w *bitWriter) bytes() []byte {
	if w.n > 0 {
		w.buf = append(w.buf, byte(w.acc&0xFF))
		w.acc = 0
		w.n = 0
	}
	return w.buf
}

// bitReader is the inverse of bitWriter.
type bitReader struct {
	data []byte
	acc  uint64
	n    uint8
	pos  int
}

func newBitReader(b []byte) *bitReader { return &bitReader{data: b} }

// readBits returns the next bits-wide value, or io.ErrUnexpectedEOF when the
// input runs out.
func (r *bitReader) readBits(bits uint8) (uint64, error) {
	for r.n < bits {
		if r.pos >= len(r.data) {
			return 0, io.ErrUnexpectedEOF
		}
		r.acc |= uint64(r.data[r.pos]) << r.n
		r.n += 8
		r.pos++
	}
	mask := uint64((1 << bits) - 1)
	v := r.acc & mask
	r.acc >>= bits
	r.n -= bits
	return v, nil
}

func writeUVarint(dst []byte, x uint64) []byte {
	for x >= 0x80 {
		dst = append(dst, byte(x)|0x80)
		x >>= 7
	}
	return append(dst, byte(x))
}

func readUVarint(src []byte, pos *int) (uint64, error) {
	var x uint64
	var s uint
	i := *pos
	for {
		if i >= len(src) {
			return 0, io.ErrUnexpectedEOF
		}
		b := src[i]
		i++
		if b < 0x80 {
			if s == 63 && b > 1 {
				return 0, ErrFormat
			}
			x |= uint64(b) << s
			break
		}
		x |= uint64(b&0x7F) << s
		s += 7
		if s > 63 {
			return 0, ErrFormat
		}
	}
	*pos = i
	return x, nil
}

func writeVarint(dst []byte, v int32) []byte {
	return writeUVarint(dst, uint64(uint32((v<<1)^(v>>31))))
}

func readVarint(src []byte, pos *int) (int32, error) {
	u, err := readUVarint(src, pos)
	if err != nil {
		return 0, err
	}
	if u > 0xFFFFFFFF {
		return 0, ErrFormat
	}
	z := uint32(u)
	return int32(z>>1) ^ -int32(z&1), nil
}

func writeU64(dst []byte, v uint64) []byte {
	return binary.LittleEndian.AppendUint64(dst, v)
}

func readU64(src []byte, pos *int) (uint64, error) {
	if len(src)-*pos < 8 {
		return 0, io.ErrUnexpectedEOF
	}
	v := binary.LittleEndian.Uint64(src[*pos:])
	*pos += 8
	return v, nil
}
