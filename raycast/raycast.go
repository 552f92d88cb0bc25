package raycast

import (
	"cmp"
	"math"
	"slices"

	"github.com/go-gl/mathgl/mgl32"

	"github.com/voxelsplace/voxbuf/voxel"
)

const (
	// entryBackoff moves the traversal start back from a chunk's boundary so the
	// first boundary voxel is never skipped through rounding.
	entryBackoff = 2

	epsilon = 1.1920929e-07 // float32 machine epsilon
)

// maxChunkTravel is the chunk diagonal plus the entry backoff.
var maxChunkTravel = mgl32.Vec3{voxel.ChunkWidth, voxel.ChunkWidth, voxel.ChunkWidth}.Len() + entryBackoff

// Ray is expressed in the buffer's own coordinate space. Direction need not be
// normalized; Cast normalizes it, so hit distances are in world units.
type Ray struct {
	Origin    mgl32.Vec3
	Direction mgl32.Vec3
}

// Hit is the nearest occupied voxel along a ray.
type Hit struct {
	Coord    voxel.WorldCoord
	Distance float32
	// Normal is the face the ray entered through. HasNormal is false when the
	// ray started inside the voxel it hit.
	Normal    [3]int32
	HasNormal bool
}

type chunkHit struct {
	cc voxel.ChunkCoord
	// t is where traversal starts, backed off from the slab entry and clamped
	// at the origin. entry is the slab entry itself and orders the chunks.
	t     float32
	entry float32
	// origin is the ray position at t, relative to the chunk's first cell.
	origin mgl32.Vec3
}

// Cast returns the first non-empty voxel of buf along ray. Chunks are culled
// with a slab test and visited nearest first; only the first chunk that yields a
// hit is traversed to completion.
func Cast(buf *voxel.Buffer, ray Ray) (Hit, bool) {
	n := ray.Direction.Len()
	if n < epsilon {
		// No direction: only the origin cell can be hit.
		c := voxel.WorldCoord{
			X: int32(math.Floor(float64(ray.Origin[0]))),
			Y: int32(math.Floor(float64(ray.Origin[1]))),
			Z: int32(math.Floor(float64(ray.Origin[2]))),
		}
		if buf.Get(c).IsEmpty() {
			return Hit{}, false
		}
		return Hit{Coord: c}, true
	}
	ray.Direction = ray.Direction.Mul(1 / n)

	for _, ch := range chunkHits(buf, ray) {
		chunk, _ := buf.Chunk(ch.cc)
		if hit, ok := traverse(chunk, ch, ray.Direction); ok {
			return hit, true
		}
	}
	return Hit{}, false
}

func chunkHits(buf *voxel.Buffer, ray Ray) []chunkHit {
	var hits []chunkHit
	for _, cc := range buf.ChunkCoords() {
		if h, ok := testChunk(cc, ray); ok {
			hits = append(hits, h)
		}
	}
	slices.SortStableFunc(hits, func(a, b chunkHit) int {
		return cmp.Or(cmp.Compare(a.entry, b.entry), cmp.Compare(a.t, b.t))
	})
	return hits
}

func toVec(c voxel.WorldCoord) mgl32.Vec3 {
	return mgl32.Vec3{float32(c.X), float32(c.Y), float32(c.Z)}
}

// testChunk intersects ray with the chunk's bounds using the slab method.
func testChunk(cc voxel.ChunkCoord, ray Ray) (chunkHit, bool) {
	lo := toVec(cc.FirstCell())
	hi := lo.Add(mgl32.Vec3{voxel.ChunkWidth, voxel.ChunkWidth, voxel.ChunkWidth})
	o, d := ray.Origin, ray.Direction

	inside := true
	for i := 0; i < 3; i++ {
		f := float32(math.Floor(float64(o[i])))
		if f < lo[i] || f >= hi[i] {
			inside = false
			break
		}
	}
	if inside {
		return chunkHit{cc: cc, origin: o.Sub(lo)}, true
	}

	var t [3]float32
	for i := 0; i < 3; i++ {
		switch {
		case abs(d[i]) < epsilon:
			// Parallel to this slab: no constraint if inside it, otherwise a miss.
			if o[i] < lo[i] || o[i] > hi[i] {
				return chunkHit{}, false
			}
			t[i] = float32(math.Inf(-1))
		case d[i] > 0:
			t[i] = (lo[i] - o[i]) / d[i]
		default:
			t[i] = (hi[i] - o[i]) / d[i]
		}
	}

	mi := 2
	if t[0] > t[1] {
		if t[0] > t[2] {
			mi = 0
		}
	} else if t[1] > t[2] {
		mi = 1
	}
	if t[mi] < 0 || math.IsInf(float64(t[mi]), 0) {
		return chunkHit{}, false
	}

	pt := o.Add(d.Mul(t[mi]))
	for _, i := range [2]int{(mi + 1) % 3, (mi + 2) % 3} {
		if pt[i] < lo[i] || pt[i] > hi[i] {
			return chunkHit{}, false
		}
	}

	start := max(t[mi]-entryBackoff, 0)
	return chunkHit{cc: cc, t: start, entry: t[mi], origin: o.Add(d.Mul(start)).Sub(lo)}, true
}

// traverse walks the chunk cell by cell from the entry point.
func traverse(chunk *voxel.Chunk, ch chunkHit, d mgl32.Vec3) (Hit, bool) {
	p := ch.origin
	t := ch.t
	limit := ch.t + maxChunkTravel

	var cell, step [3]int32
	var delta, tMax mgl32.Vec3
	for i := 0; i < 3; i++ {
		cell[i] = int32(math.Floor(float64(p[i])))
		switch {
		case d[i] > 0:
			step[i] = 1
		case d[i] < 0:
			step[i] = -1
		}
		if abs(d[i]) < epsilon {
			delta[i] = float32(math.Inf(1))
			tMax[i] = float32(math.Inf(1))
			continue
		}
		delta[i] = abs(1 / d[i])
		if step[i] > 0 {
			tMax[i] = delta[i] * (float32(cell[i]) + 1 - p[i])
		} else {
			tMax[i] = delta[i] * (p[i] - float32(cell[i]))
		}
	}

	var normal [3]int32
	hasNormal := false
	for t <= limit {
		if inChunk(cell) {
			l := voxel.LocalCoord{X: uint8(cell[0]), Y: uint8(cell[1]), Z: uint8(cell[2])}
			if !chunk.Get(l).IsEmpty() {
				return Hit{
					Coord:     l.World(ch.cc),
					Distance:  t,
					Normal:    normal,
					HasNormal: hasNormal,
				}, true
			}
		}

		axis := 2
		if tMax[0] < tMax[1] {
			if tMax[0] < tMax[2] {
				axis = 0
			}
		} else if tMax[1] < tMax[2] {
			axis = 1
		}
		cell[axis] += step[axis]
		t = ch.t + tMax[axis]
		tMax[axis] += delta[axis]
		normal = [3]int32{}
		normal[axis] = -step[axis]
		hasNormal = true
	}
	return Hit{}, false
}

func inChunk(c [3]int32) bool {
	for _, v := range c {
		if v < 0 || v >= voxel.ChunkWidth {
			return false
		}
	}
	return true
}

func abs(v float32) float32 {
	if v < 0 {
		return -v
	}
	return v
}
