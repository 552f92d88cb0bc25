package voxel

// FastReader reads cells from a Buffer while remembering the last chunk it looked
// up, which avoids a map lookup per voxel when reads are spatially coherent.
// Results are identical to Buffer.Get, also after writes to the buffer: the
// cached chunk is dropped whenever the buffer swaps chunk pointers. A FastReader
// is not safe for concurrent use.
type FastReader struct {
	buf   *Buffer
	gen   uint64
	cc    ChunkCoord
	chunk *Chunk
	valid bool
}

func NewFastReader(b *Buffer) *FastReader {
	return &FastReader{buf: b}
}

func (r *FastReader) Get(c WorldCoord) Cell {
	cc := c.Chunk()
	if !r.valid || cc != r.cc || r.gen != r.buf.gen {
		r.chunk = r.buf.chunks[cc]
		r.cc = cc
		r.gen = r.buf.gen
		r.valid = true
	}
	if r.chunk == nil {
		return Empty
	}
	return r.chunk.Get(c.Local())
}

// Occupied reports whether the cell at c is non-empty.
func (r *FastReader) Occupied(c WorldCoord) bool {
	return !r.Get(c).IsEmpty()
}
