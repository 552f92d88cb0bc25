package mesh

import (
	"runtime"
	"time"

	"github.com/alitto/pond/v2"

	"github.com/voxelsplace/voxbuf/voxel"
)

const w = voxel.ChunkWidth

// Face describes one of the six quad orientations. A unit quad on voxel c spans
// c+Origin, +Tangent, +Tangent+Bitangent, +Bitangent, wound counter-clockwise
// when seen from outside.
type Face struct {
	Origin    [3]int32
	Normal    [3]int32
	Tangent   [3]int32
	Bitangent [3]int32

	n, u, v int // axes of Normal, Tangent, Bitangent
}

func face(origin, normal, tangent, bitangent [3]int32) Face {
	return Face{origin, normal, tangent, bitangent, axisOf(normal), axisOf(tangent), axisOf(bitangent)}
}

func axisOf(d [3]int32) int {
	for i, c := range d {
		if c != 0 {
			return i
		}
	}
	panic("mesh: zero direction")
}

// Faces is indexed by face id, the value stored in Vertex.Material[3].
var Faces = [6]Face{
	face([3]int32{0, 0, 0}, [3]int32{-1, 0, 0}, [3]int32{0, 0, 1}, [3]int32{0, 1, 0}),
	face([3]int32{0, 0, 1}, [3]int32{0, 0, 1}, [3]int32{1, 0, 0}, [3]int32{0, 1, 0}),
	face([3]int32{1, 0, 1}, [3]int32{1, 0, 0}, [3]int32{0, 0, -1}, [3]int32{0, 1, 0}),
	face([3]int32{1, 0, 0}, [3]int32{0, 0, -1}, [3]int32{-1, 0, 0}, [3]int32{0, 1, 0}),
	face([3]int32{0, 1, 0}, [3]int32{0, 1, 0}, [3]int32{0, 0, 1}, [3]int32{1, 0, 0}),
	face([3]int32{0, 0, 0}, [3]int32{0, -1, 0}, [3]int32{1, 0, 0}, [3]int32{0, 0, 1}),
}

// Observer receives a report after each meshing pass.
type Observer interface {
	ObserveMesh(chunks, quads int, elapsed time.Duration)
}

type Options struct {
	// Workers bounds the number of chunks meshed concurrently. 0 means runtime.NumCPU().
	Workers  int
	Observer Observer
}

// GenerateMesh meshes buf with default options.
func GenerateMesh(buf *voxel.Buffer) *Mesh {
	return Build(buf, Options{})
}

// Build greedily meshes every populated chunk of buf. The result only depends on
// the buffer contents: chunks are meshed independently and concatenated in
// voxel.Buffer.ChunkCoords order. buf must not be written while Build runs.
func Build(buf *voxel.Buffer, opts Options) *Mesh {
	start := time.Now()
	coords := buf.ChunkCoords()
	parts := make([]Mesh, len(coords))

	workers := opts.Workers
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	if workers == 1 || len(coords) < 2 {
		for i, cc := range coords {
			meshChunk(buf, cc, &parts[i])
		}
	} else {
		pool := pond.NewPool(workers)
		for i, cc := range coords {
			pool.Submit(func() {
				meshChunk(buf, cc, &parts[i])
			})
		}
		pool.StopAndWait()
	}

	out := &Mesh{}
	for i := range parts {
		out.append(&parts[i])
	}
	if opts.Observer != nil {
		opts.Observer.ObserveMesh(len(coords), out.Quads(), time.Since(start))
	}
	return out
}

type slicer struct {
	chunk  *voxel.Chunk
	reader *voxel.FastReader
	cc     voxel.ChunkCoord
	f      Face
	s      int
}

func (sl *slicer) local(u, v int) voxel.LocalCoord {
	var l [3]uint8
	l[sl.f.n] = uint8(sl.s)
	l[sl.f.u] = uint8(u)
	l[sl.f.v] = uint8(v)
	return voxel.LocalCoord{X: l[0], Y: l[1], Z: l[2]}
}

func (sl *slicer) cell(u, v int) voxel.Cell {
	return sl.chunk.Get(sl.local(u, v))
}

func (sl *slicer) world(u, v int) voxel.WorldCoord {
	return sl.local(u, v).World(sl.cc)
}

// exposed reports whether the face of (u, v) is uncovered along the normal.
func (sl *slicer) exposed(u, v int) bool {
	n := sl.f.Normal
	return !sl.reader.Occupied(sl.world(u, v).Offset(n[0], n[1], n[2]))
}

func meshChunk(buf *voxel.Buffer, cc voxel.ChunkCoord, out *Mesh) {
	chunk, ok := buf.Chunk(cc)
	if !ok {
		return
	}
	sl := &slicer{chunk: chunk, reader: voxel.NewFastReader(buf), cc: cc}
	var visited [w * w]bool

	for id, f := range Faces {
		sl.f = f
		for s := 0; s < w; s++ {
			sl.s = s
			visited = [w * w]bool{}

			for v := 0; v < w; v++ {
				for u := 0; u < w; u++ {
					if visited[v*w+u] {
						continue
					}
					cell := sl.cell(u, v)
					if cell.IsEmpty() || !sl.exposed(u, v) {
						continue
					}
					match := func(mu, mv int) bool {
						return !visited[mv*w+mu] && sl.cell(mu, mv) == cell && sl.exposed(mu, mv)
					}

					width := 1
					for u+width < w && match(u+width, v) {
						width++
					}
					height := 1
				rows:
					for v+height < w {
						for k := u; k < u+width; k++ {
							if !match(k, v+height) {
								break rows
							}
						}
						height++
					}
					for hv := v; hv < v+height; hv++ {
						for hu := u; hu < u+width; hu++ {
							visited[hv*w+hu] = true
						}
					}
					sl.emit(out, uint8(id), cell, u, v, width, height)
				}
			}
		}
	}
}

// emit appends the quad covering [u, u+width) x [v, v+height) of the current slice.
func (sl *slicer) emit(out *Mesh, id uint8, cell voxel.Cell, u, v, width, height int) {
	f := sl.f
	tu, tv := int(f.Tangent[f.u]), int(f.Bitangent[f.v])

	// The quad starts at the corner voxel from which Tangent and Bitangent walk
	// across the whole rectangle.
	su, sv := u, v
	if tu < 0 {
		su = u + width - 1
	}
	if tv < 0 {
		sv = v + height - 1
	}
	eu, ev := su+tu*(width-1), sv+tv*(height-1)

	p := sl.world(su, sv).Offset(f.Origin[0], f.Origin[1], f.Origin[2])
	t := scale(f.Tangent, int32(width))
	b := scale(f.Bitangent, int32(height))
	corners := [4][3]int32{
		{p.X, p.Y, p.Z},
		{p.X + t[0], p.Y + t[1], p.Z + t[2]},
		{p.X + t[0] + b[0], p.Y + t[1] + b[1], p.Z + t[2] + b[2]},
		{p.X + b[0], p.Y + b[1], p.Z + b[2]},
	}

	ll := sl.occlusion(sl.world(su, sv), -1, -1)
	lr := sl.occlusion(sl.world(eu, sv), 1, -1)
	ur := sl.occlusion(sl.world(eu, ev), 1, 1)
	ul := sl.occlusion(sl.world(su, ev), -1, 1)

	shade := func(shadowed bool) [4]uint8 {
		c := cell.Color.Shadow(shadowed)
		return [4]uint8{c.R, c.G, c.B, cell.Emission}
	}
	out.addQuad(corners,
		[4]uint8{cell.Metallic, cell.Roughness, cell.Reflectance, id},
		[4][4]uint8{shade(ll), shade(lr), shade(ur), shade(ul)})
}

// occlusion samples the three in-plane neighbors of corner voxel c one step out
// along the normal, on the side given by the tangent and bitangent signs.
func (sl *slicer) occlusion(c voxel.WorldCoord, ts, bs int32) bool {
	f := sl.f
	a := c.Offset(f.Normal[0], f.Normal[1], f.Normal[2])
	t := scale(f.Tangent, ts)
	b := scale(f.Bitangent, bs)
	return sl.reader.Occupied(a.Offset(t[0], t[1], t[2])) ||
		sl.reader.Occupied(a.Offset(b[0], b[1], b[2])) ||
		sl.reader.Occupied(a.Offset(t[0]+b[0], t[1]+b[1], t[2]+b[2]))
}

func scale(d [3]int32, k int32) [3]int32 {
	return [3]int32{d[0] * k, d[1] * k, d[2] * k}
}
