package voxel

import (
	"cmp"
	"maps"
	"slices"
)

// Buffer is a sparse voxel grid stored as a map of populated chunks.
//
// Chunks are shared between a Buffer and its clones and copied on the first
// write through either side, so Clone is proportional to the number of chunks,
// not to the number of voxels. A Buffer has a single writer; a snapshot nobody
// writes to may be read from any number of goroutines.
type Buffer struct {
	chunks map[ChunkCoord]*Chunk
	// gen changes whenever a chunk pointer in chunks is added, replaced or removed.
	gen uint64
}

func New() *Buffer {
	return &Buffer{chunks: make(map[ChunkCoord]*Chunk)}
}

// Get returns the cell at c, or Empty when its chunk is absent.
func (b *Buffer) Get(c WorldCoord) Cell {
	ch, ok := b.chunks[c.Chunk()]
	if !ok {
		return Empty
	}
	return ch.Get(c.Local())
}

// Set writes v at c. Chunks are created on the first non-empty write and dropped
// as soon as their last non-empty cell is cleared.
func (b *Buffer) Set(c WorldCoord, v Cell) {
	cc := c.Chunk()
	ch, ok := b.chunks[cc]
	if !ok {
		if v.IsEmpty() {
			return
		}
		if b.chunks == nil {
			b.chunks = make(map[ChunkCoord]*Chunk)
		}
		ch = NewChunk()
		ch.holders.Store(1)
		b.chunks[cc] = ch
		b.gen++
	} else if ch.holders.Load() > 1 {
		ch = b.own(cc, ch)
	}

	ch.Set(c.Local(), v)
	if ch.count == 0 {
		ch.holders.Add(-1)
		delete(b.chunks, cc)
		b.gen++
	}
}

// own replaces a shared chunk with a private copy.
func (b *Buffer) own(cc ChunkCoord, shared *Chunk) *Chunk {
	n := shared.Clone()
	n.holders.Store(1)
	shared.holders.Add(-1)
	b.chunks[cc] = n
	b.gen++
	return n
}

// Count is the total number of non-empty voxels.
func (b *Buffer) Count() int {
	n := 0
	for _, ch := range b.chunks {
		n += ch.count
	}
	return n
}

// Len is the number of populated chunks.
func (b *Buffer) Len() int {
	return len(b.chunks)
}

// ChunkBoundingBox returns the component-wise min and max of all populated chunk
// coordinates. ok is false for an empty buffer, in which case min and max are zero.
func (b *Buffer) ChunkBoundingBox() (lo, hi ChunkCoord, ok bool) {
	for cc := range b.chunks {
		if !ok {
			lo, hi, ok = cc, cc, true
			continue
		}
		lo = ChunkCoord{min(lo.X, cc.X), min(lo.Y, cc.Y), min(lo.Z, cc.Z)}
		hi = ChunkCoord{max(hi.X, cc.X), max(hi.Y, cc.Y), max(hi.Z, cc.Z)}
	}
	return lo, hi, ok
}

// Clone returns a snapshot that shares every chunk with b. Writes to either
// buffer afterwards never show up in the other.
func (b *Buffer) Clone() *Buffer {
	c := &Buffer{chunks: maps.Clone(b.chunks)}
	if c.chunks == nil {
		c.chunks = make(map[ChunkCoord]*Chunk)
	}
	for _, ch := range c.chunks {
		ch.holders.Add(1)
	}
	return c
}

// Chunk returns the populated chunk at cc. The chunk must not be modified.
func (b *Buffer) Chunk(cc ChunkCoord) (*Chunk, bool) {
	ch, ok := b.chunks[cc]
	return ch, ok
}

// ChunkCoords returns the populated chunk coordinates ordered by z, then y, then x.
func (b *Buffer) ChunkCoords() []ChunkCoord {
	coords := slices.Collect(maps.Keys(b.chunks))
	slices.SortFunc(coords, CompareChunkCoords)
	return coords
}

// CompareChunkCoords orders chunk coordinates by z, then y, then x.
func CompareChunkCoords(a, b ChunkCoord) int {
	if c := cmp.Compare(a.Z, b.Z); c != 0 {
		return c
	}
	if c := cmp.Compare(a.Y, b.Y); c != 0 {
		return c
	}
	return cmp.Compare(a.X, b.X)
}

// Fill writes v to every voxel of the inclusive box spanned by a and b.
func (b *Buffer) Fill(a, c WorldCoord, v Cell) {
	for wc := range BoxCells(a, c) {
		b.Set(wc, v)
	}
}
