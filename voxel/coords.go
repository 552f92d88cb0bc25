package voxel

import "iter"

const (
	ChunkShift  = 5
	ChunkWidth  = 1 << ChunkShift
	ChunkVolume = ChunkWidth * ChunkWidth * ChunkWidth

	chunkMask = ChunkWidth - 1
)

// WorldCoord addresses a single voxel in the buffer's coordinate space.
type WorldCoord struct {
	X, Y, Z int32
}

// ChunkCoord addresses a 32^3 chunk.
type ChunkCoord struct {
	X, Y, Z int32
}

// LocalCoord addresses a cell within a chunk. Components are in [0, 32).
type LocalCoord struct {
	X, Y, Z uint8
}

// Chunk returns the chunk containing c. The shift floors toward negative infinity,
// so -1 lands in chunk -1.
func (c WorldCoord) Chunk() ChunkCoord {
	return ChunkCoord{c.X >> ChunkShift, c.Y >> ChunkShift, c.Z >> ChunkShift}
}

// Local returns c's position inside its chunk.
func (c WorldCoord) Local() LocalCoord {
	return LocalCoord{
		X: uint8(c.X - (c.X &^ chunkMask)),
		Y: uint8(c.Y - (c.Y &^ chunkMask)),
		Z: uint8(c.Z - (c.Z &^ chunkMask)),
	}
}

func (c WorldCoord) Add(o WorldCoord) WorldCoord {
	return WorldCoord{c.X + o.X, c.Y + o.Y, c.Z + o.Z}
}

func (c WorldCoord) Offset(dx, dy, dz int32) WorldCoord {
	return WorldCoord{c.X + dx, c.Y + dy, c.Z + dz}
}

// FirstCell is the minimum (inclusive) voxel of the chunk.
func (c ChunkCoord) FirstCell() WorldCoord {
	return WorldCoord{c.X << ChunkShift, c.Y << ChunkShift, c.Z << ChunkShift}
}

// LastCell is the maximum (inclusive) voxel of the chunk.
func (c ChunkCoord) LastCell() WorldCoord {
	return c.FirstCell().Offset(chunkMask, chunkMask, chunkMask)
}

// Cells yields every voxel of the chunk in linear index order.
func (c ChunkCoord) Cells() iter.Seq[WorldCoord] {
	first := c.FirstCell()
	return func(yield func(WorldCoord) bool) {
		for i := 0; i < ChunkVolume; i++ {
			l := LocalFromIndex(i)
			if !yield(first.Offset(int32(l.X), int32(l.Y), int32(l.Z))) {
				return
			}
		}
	}
}

// World converts a local coordinate of chunk cc back into world space.
func (l LocalCoord) World(cc ChunkCoord) WorldCoord {
	return cc.FirstCell().Offset(int32(l.X), int32(l.Y), int32(l.Z))
}

// Index linearizes l as x + y*32 + z*1024.
func (l LocalCoord) Index() int {
	return int(l.X) + int(l.Y)*ChunkWidth + int(l.Z)*ChunkWidth*ChunkWidth
}

// LocalFromIndex is the inverse of LocalCoord.Index.
func LocalFromIndex(i int) LocalCoord {
	return LocalCoord{
		X: uint8(i & chunkMask),
		Y: uint8((i >> ChunkShift) & chunkMask),
		Z: uint8((i >> (2 * ChunkShift)) & chunkMask),
	}
}

// BoxCells yields every voxel of the inclusive box spanned by a and b, x fastest.
// The corners may be given in any order.
func BoxCells(a, b WorldCoord) iter.Seq[WorldCoord] {
	lo := WorldCoord{min(a.X, b.X), min(a.Y, b.Y), min(a.Z, b.Z)}
	hi := WorldCoord{max(a.X, b.X), max(a.Y, b.Y), max(a.Z, b.Z)}
	return func(yield func(WorldCoord) bool) {
		for z := int64(lo.Z); z <= int64(hi.Z); z++ {
			for y := int64(lo.Y); y <= int64(hi.Y); y++ {
				for x := int64(lo.X); x <= int64(hi.X); x++ {
					if !yield(WorldCoord{int32(x), int32(y), int32(z)}) {
						return
					}
				}
			}
		}
	}
}
