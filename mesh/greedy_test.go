package mesh

import (
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxbuf/voxel"
)

var (
	stone = voxel.Cell{Color: voxel.Color{R: 120, G: 120, B: 120, A: 255}, Roughness: 200, Reflectance: 10}
	lamp  = voxel.Cell{Color: voxel.Color{R: 250, G: 240, B: 10, A: 255}, Emission: 90}
)

func TestSingleVoxel(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{X: 3, Y: -4, Z: 5}, stone)

	m := GenerateMesh(b)
	require.Equal(t, 6, m.Quads())
	assert.Len(t, m.Vertices, 24)
	assert.Len(t, m.Indices, 36)

	seen := map[uint8]bool{}
	for q := 0; q < m.Quads(); q++ {
		verts := m.Vertices[q*4 : q*4+4]
		id := verts[0].Material[3]
		seen[id] = true
		f := Faces[id]

		// every corner sits on the voxel face the normal points through
		plane := float32([3]int32{3, -4, 5}[f.n])
		if f.Normal[f.n] > 0 {
			plane++
		}
		for _, v := range verts {
			assert.Equal(t, plane, v.Position[f.n], "face %d", id)
			assert.Equal(t, [4]uint8{0, 200, 10, id}, v.Material)
			assert.Equal(t, [4]uint8{120, 120, 120, 0}, v.Color, "isolated voxel must not be occluded")
		}
		assert.Equal(t, []uint32{uint32(q * 4), uint32(q*4 + 1), uint32(q*4 + 2), uint32(q * 4), uint32(q*4 + 2), uint32(q*4 + 3)}, m.Indices[q*6:q*6+6])
	}
	assert.Len(t, seen, 6)
}

func TestGreedyMergesEqualCells(t *testing.T) {
	b := voxel.New()
	b.Fill(voxel.WorldCoord{X: 0, Y: 0, Z: 0}, voxel.WorldCoord{X: 3, Y: 2, Z: 1}, stone)

	m := GenerateMesh(b)
	assert.Equal(t, 6, m.Quads())
}

func TestGreedyDoesNotMergeDifferentCells(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{X: 0, Y: 0, Z: 0}, stone)
	b.Set(voxel.WorldCoord{X: 1, Y: 0, Z: 0}, lamp)

	m := GenerateMesh(b)
	assert.Equal(t, 10, m.Quads())

	lampQuads := 0
	for q := 0; q < m.Quads(); q++ {
		if m.Vertices[q*4].Color[3] == 90 {
			lampQuads++
		}
	}
	assert.Equal(t, 5, lampQuads)
}

func TestRowExtensionIsAllOrNothing(t *testing.T) {
	// An L shape: a 3 wide bottom row and a 1 wide row above it. The +Z face
	// merges the bottom row into one quad and cannot grow upward, so the top
	// voxel gets its own quad.
	b := voxel.New()
	b.Fill(voxel.WorldCoord{X: 0, Y: 0, Z: 0}, voxel.WorldCoord{X: 2, Y: 0, Z: 0}, stone)
	b.Set(voxel.WorldCoord{X: 0, Y: 1, Z: 0}, stone)

	m := GenerateMesh(b)
	var plusZ [][]Vertex
	for q := 0; q < m.Quads(); q++ {
		if m.Vertices[q*4].Material[3] == 1 {
			plusZ = append(plusZ, m.Vertices[q*4:q*4+4])
		}
	}
	require.Len(t, plusZ, 2)
	assert.Equal(t, [3]float32{0, 0, 1}, plusZ[0][0].Position)
	assert.Equal(t, [3]float32{3, 1, 1}, plusZ[0][2].Position)
	assert.Equal(t, [3]float32{0, 1, 1}, plusZ[1][0].Position)
	assert.Equal(t, [3]float32{1, 2, 1}, plusZ[1][2].Position)
}

func TestCullingAcrossChunks(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{X: 31, Y: 0, Z: 0}, stone)
	b.Set(voxel.WorldCoord{X: 32, Y: 0, Z: 0}, stone)

	m := GenerateMesh(b)
	// end caps plus two quads for each of the four side faces; the shared face is hidden
	assert.Equal(t, 10, m.Quads())
	for _, v := range m.Vertices {
		if v.Material[3] == 0 || v.Material[3] == 2 {
			assert.NotEqual(t, float32(32), v.Position[0])
		}
	}
}

func TestNegativeCoordinates(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{X: -1, Y: -1, Z: -1}, stone)
	m := GenerateMesh(b)
	require.Equal(t, 6, m.Quads())
	for _, v := range m.Vertices {
		for _, c := range v.Position {
			assert.True(t, c == -1 || c == 0, "%v", v.Position)
		}
	}
}

func TestAmbientOcclusion(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{X: 0, Y: 0, Z: 0}, stone)
	b.Set(voxel.WorldCoord{X: 1, Y: 1, Z: 0}, lamp)

	m := GenerateMesh(b)
	var top []Vertex
	for q := 0; q < m.Quads(); q++ {
		v := m.Vertices[q*4]
		if v.Material[3] == 4 && v.Position == [3]float32{0, 1, 0} {
			top = m.Vertices[q*4 : q*4+4]
		}
	}
	require.NotNil(t, top)

	lit := [4]uint8{120, 120, 120, 0}
	dark := [4]uint8{60, 60, 60, 0}
	assert.Equal(t, lit, top[0].Color)
	assert.Equal(t, lit, top[1].Color)
	assert.Equal(t, dark, top[2].Color)
	assert.Equal(t, dark, top[3].Color)
}

func TestDeterministicAcrossWorkers(t *testing.T) {
	r := rand.New(rand.NewSource(11))
	b := voxel.New()
	for i := 0; i < 4000; i++ {
		c := stone
		if r.Intn(4) == 0 {
			c = lamp
		}
		b.Set(voxel.WorldCoord{X: int32(r.Intn(96) - 48), Y: int32(r.Intn(40) - 20), Z: int32(r.Intn(96) - 48)}, c)
	}

	serial := Build(b, Options{Workers: 1})
	parallel := Build(b, Options{Workers: 8})
	again := Build(b, Options{Workers: 8})
	assert.Equal(t, serial, parallel)
	assert.Equal(t, parallel, again)
}

func TestIndexBufferWidth(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{}, stone)
	ib := GenerateMesh(b).IndexBuffer()
	assert.False(t, ib.Wide())
	assert.Equal(t, 36, ib.Len())

	// a 3D checkerboard leaves every voxel isolated: 3072 voxels * 6 quads * 4 vertices
	b = voxel.New()
	for z := int32(0); z < 6; z++ {
		for y := int32(0); y < 32; y++ {
			for x := int32(0); x < 32; x++ {
				if (x+y+z)%2 == 0 {
					b.Set(voxel.WorldCoord{X: x, Y: y, Z: z}, stone)
				}
			}
		}
	}
	m := GenerateMesh(b)
	require.Len(t, m.Vertices, 3072*24)
	ib = m.IndexBuffer()
	assert.True(t, ib.Wide())
	assert.Equal(t, len(m.Indices), ib.Len())
}

type recorder struct {
	mu            sync.Mutex
	chunks, quads int
}

func (r *recorder) ObserveMesh(chunks, quads int, _ time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.chunks += chunks
	r.quads += quads
}

func TestObserver(t *testing.T) {
	b := voxel.New()
	b.Set(voxel.WorldCoord{}, stone)
	b.Set(voxel.WorldCoord{X: 100}, stone)
	rec := &recorder{}
	Build(b, Options{Observer: rec})
	assert.Equal(t, 2, rec.chunks)
	assert.Equal(t, 12, rec.quads)
}

func TestEmptyBuffer(t *testing.T) {
	m := GenerateMesh(voxel.New())
	assert.Zero(t, m.Quads())
	assert.Empty(t, m.Indices)
}
