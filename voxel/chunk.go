package voxel

import "sync/atomic"

// Chunk is a dense 32^3 block of cells. The zero Chunk is empty.
//
// A chunk reachable from a Buffer may be shared with other snapshots and must be
// treated as read-only; Buffer copies it before writing.
type Chunk struct {
	cells [ChunkVolume]Cell
	count int

	// holders is the number of Buffers that reference this chunk.
	holders atomic.Int32
}

func NewChunk() *Chunk {
	return new(Chunk)
}

func (c *Chunk) Get(l LocalCoord) Cell {
	return c.cells[l.Index()]
}

// At returns the cell at linear index i.
func (c *Chunk) At(i int) Cell {
	return c.cells[i]
}

// Set stores v at l and keeps the non-empty count in sync.
func (c *Chunk) Set(l LocalCoord, v Cell) {
	c.setIndex(l.Index(), v)
}

func (c *Chunk) setIndex(i int, v Cell) {
	old := c.cells[i]
	switch {
	case old.IsEmpty() && !v.IsEmpty():
		c.count++
	case !old.IsEmpty() && v.IsEmpty():
		c.count--
	}
	c.cells[i] = v
}

// Count is the number of non-empty cells.
func (c *Chunk) Count() int {
	return c.count
}

// Clone returns a deep copy with no holders.
func (c *Chunk) Clone() *Chunk {
	n := &Chunk{count: c.count}
	n.cells = c.cells
	return n
}
