package voxel

import (
	"errors"
	"fmt"
)

// ErrRunLength is returned when the runs of a compressed chunk do not cover
// exactly one chunk.
var ErrRunLength = errors.New("voxel: run lengths do not sum to chunk volume")

// Run is Len consecutive copies of Cell in linear index order.
type Run struct {
	Len  uint32
	Cell Cell
}

type CompressedChunk struct {
	Runs []Run
}

// CompressedBuffer maps populated chunk coordinates to their run-length form.
type CompressedBuffer map[ChunkCoord]CompressedChunk

// CompressChunk run-length encodes c. An empty chunk becomes a single run over
// the whole volume; no zero-length run is ever produced.
func CompressChunk(c *Chunk) CompressedChunk {
	runs := make([]Run, 0, 8)
	cur := c.cells[0]
	n := uint32(1)
	for i := 1; i < ChunkVolume; i++ {
		v := c.cells[i]
		if v == cur {
			n++
			continue
		}
		runs = append(runs, Run{Len: n, Cell: cur})
		cur, n = v, 1
	}
	runs = append(runs, Run{Len: n, Cell: cur})
	return CompressedChunk{Runs: runs}
}

// DecompressChunk expands runs back into a chunk.
func DecompressChunk(cc CompressedChunk) (*Chunk, error) {
	var total uint64
	for _, r := range cc.Runs {
		total += uint64(r.Len)
	}
	if total != ChunkVolume {
		return nil, fmt.Errorf("%w: got %d", ErrRunLength, total)
	}

	c := NewChunk()
	i := 0
	for _, r := range cc.Runs {
		end := i + int(r.Len)
		if !r.Cell.IsEmpty() {
			for j := i; j < end; j++ {
				c.cells[j] = r.Cell
			}
			c.count += int(r.Len)
		}
		i = end
	}
	return c, nil
}

// Compress run-length encodes every populated chunk of b.
func (b *Buffer) Compress() CompressedBuffer {
	out := make(CompressedBuffer, len(b.chunks))
	for cc, ch := range b.chunks {
		out[cc] = CompressChunk(ch)
	}
	return out
}

// Decompress rebuilds a Buffer. Chunks that decode to no voxels are left out.
func Decompress(cb CompressedBuffer) (*Buffer, error) {
	b := New()
	for cc, comp := range cb {
		ch, err := DecompressChunk(comp)
		if err != nil {
			return nil, fmt.Errorf("chunk %v: %w", cc, err)
		}
		b.Insert(cc, ch)
	}
	return b, nil
}

// Insert places a whole chunk into b, replacing whatever was there. An empty
// chunk removes cc. ch may come from another buffer's Chunk: it is shared like
// a cloned chunk, and the first write through either buffer copies it.
func (b *Buffer) Insert(cc ChunkCoord, ch *Chunk) {
	if old, ok := b.chunks[cc]; ok {
		old.holders.Add(-1)
		delete(b.chunks, cc)
		b.gen++
	}
	if ch == nil || ch.count == 0 {
		return
	}
	if b.chunks == nil {
		b.chunks = make(map[ChunkCoord]*Chunk)
	}
	ch.holders.Add(1)
	b.chunks[cc] = ch
	b.gen++
}
