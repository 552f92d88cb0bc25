package utils

import (
	"bytes"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/qmuntal/gltf"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/voxelsplace/voxbuf/api"
	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/metrics"
	"github.com/voxelsplace/voxbuf/raycast"
	"github.com/voxelsplace/voxbuf/store"
	"github.com/voxelsplace/voxbuf/voxel"
)

var opts = codec.Options{Compression: codec.CompAuto}

func TestGenerateNoise(t *testing.T) {
	buf := generateNoise(25, 8, rand.New(rand.NewSource(1)))
	assert.Equal(t, 1024, buf.Count()) // 25% of 16^3

	lo, hi, ok := buf.ChunkBoundingBox()
	require.True(t, ok)
	assert.Equal(t, voxel.ChunkCoord{X: -1, Y: -1, Z: -1}, lo)
	assert.Equal(t, voxel.ChunkCoord{X: 0, Y: 0, Z: 0}, hi)

	again := generateNoise(25, 8, rand.New(rand.NewSource(1)))
	assert.Equal(t, codec.ContentHash(buf), codec.ContentHash(again))

	assert.Equal(t, 0, generateNoise(-5, 4, rand.New(rand.NewSource(1))).Count())
	assert.Equal(t, 512, generateNoise(150, 4, rand.New(rand.NewSource(1))).Count())
}

func TestRunGenerateNoiseRejectsRadius(t *testing.T) {
	out := filepath.Join(t.TempDir(), "n.vxb")
	assert.Error(t, RunGenerateNoise(10, 0, 1, out, opts))
	assert.Error(t, RunGenerateNoise(10, maxNoiseRadius+1, 1, out, opts))
	require.NoError(t, RunGenerateNoise(10, 4, 1, out, opts))
	_, err := codec.LoadFile(out)
	assert.NoError(t, err)
}

func TestFillInfoAndGLB(t *testing.T) {
	dir := t.TempDir()
	vxb := filepath.Join(dir, "box.vxb")
	require.NoError(t, RunFill("-", voxel.WorldCoord{X: -1, Y: -1, Z: -1}, voxel.WorldCoord{X: 1, Y: 1, Z: 1}, "#ff8800", vxb, opts))

	var out bytes.Buffer
	require.NoError(t, RunInfo(vxb, &out))
	assert.Contains(t, out.String(), "voxels: 27\n")
	assert.Contains(t, out.String(), "chunks: 8\n")
	assert.Contains(t, out.String(), "chunk bbox: (-1,-1,-1) .. (0,0,0)")

	// Clearing with a zero alpha.
	require.NoError(t, RunFill(vxb, voxel.WorldCoord{}, voxel.WorldCoord{X: 1, Y: 1, Z: 1}, "#00000000", vxb, opts))
	out.Reset()
	require.NoError(t, RunInfo(vxb, &out))
	assert.Contains(t, out.String(), "voxels: 19\n")

	glb := filepath.Join(dir, "box.glb")
	require.NoError(t, RunVXB2GLB(vxb, glb, api.Options{}))
	doc, err := gltf.Open(glb)
	require.NoError(t, err)
	assert.Len(t, doc.Meshes, 1)
	assert.Equal(t, "VXB -> GLB", doc.Asset.Generator)

	assert.Error(t, RunFill("-", voxel.WorldCoord{}, voxel.WorldCoord{}, "red", vxb, opts))
	assert.Error(t, RunInfo(filepath.Join(dir, "missing.vxb"), &out))
}

func TestRunRaycast(t *testing.T) {
	dir := t.TempDir()
	vxb := filepath.Join(dir, "wall.vxb")
	require.NoError(t, RunFill("-", voxel.WorldCoord{X: 5, Y: -4, Z: -4}, voxel.WorldCoord{X: 5, Y: 4, Z: 4}, "#ffffff", vxb, opts))

	m := metrics.New(prometheus.NewRegistry())
	var out bytes.Buffer
	require.NoError(t, RunRaycast(vxb, raycast.Ray{Origin: mgl32.Vec3{0.5, 0.5, 0.5}, Direction: mgl32.Vec3{1, 0, 0}}, &out, m))
	assert.Equal(t, "hit (5,0,0) distance 4.5000 normal (-1,0,0)\n", out.String())

	out.Reset()
	require.NoError(t, RunRaycast(vxb, raycast.Ray{Origin: mgl32.Vec3{0.5, 0.5, 0.5}, Direction: mgl32.Vec3{-1, 0, 0}}, &out, nil))
	assert.Equal(t, "miss\n", out.String())
}

func TestDiffPatch(t *testing.T) {
	dir := t.TempDir()
	a := filepath.Join(dir, "a.vxb")
	b := filepath.Join(dir, "b.vxb")
	require.NoError(t, RunFill("-", voxel.WorldCoord{X: -3, Y: 0, Z: -3}, voxel.WorldCoord{X: 3, Y: 0, Z: 3}, "#336699", a, opts))
	require.NoError(t, RunFill(a, voxel.WorldCoord{X: 0, Y: 0, Z: 0}, voxel.WorldCoord{X: 0, Y: 5, Z: 0}, "#ffffff", b, opts))

	vxd := filepath.Join(dir, "ab.vxd")
	require.NoError(t, RunDiff(a, b, vxd))
	patched := filepath.Join(dir, "patched.vxb")
	require.NoError(t, RunPatch(a, vxd, patched, opts))

	want, err := codec.LoadFile(b)
	require.NoError(t, err)
	got, err := codec.LoadFile(patched)
	require.NoError(t, err)
	assert.Equal(t, codec.ContentHash(want), codec.ContentHash(got))

	require.NoError(t, os.WriteFile(vxd, []byte("nope"), 0o644))
	assert.ErrorIs(t, RunPatch(a, vxd, patched, opts), codec.ErrFormat)
}

func TestApplyJSON(t *testing.T) {
	buf := voxel.New()
	buf.Set(voxel.WorldCoord{X: 9, Y: 9, Z: 9}, voxel.Solid(voxel.Color{R: 1}))

	blob := []byte(`[
		{"x": -1, "y": 2, "z": 3, "color": "#ff0000"},
		{"x": 4, "y": 5, "z": 6, "color": "#00ff0080"},
		{"x": 9, "y": 9, "z": 9, "color": ""}
	]`)
	require.NoError(t, applyJSON(buf, blob))
	assert.Equal(t, 2, buf.Count())
	assert.Equal(t, voxel.Cell{Color: voxel.Color{R: 255, A: 255}, Roughness: 255}, buf.Get(voxel.WorldCoord{X: -1, Y: 2, Z: 3}))
	assert.Equal(t, uint8(0x80), buf.Get(voxel.WorldCoord{X: 4, Y: 5, Z: 6}).Color.A)

	// A bad entry leaves the buffer untouched.
	err := applyJSON(buf, []byte(`[{"x":0,"y":0,"z":0,"color":"#ffffff"},{"x":1,"y":0,"z":0,"color":"#zz"}]`))
	assert.Error(t, err)
	assert.True(t, buf.Get(voxel.WorldCoord{}).IsEmpty())

	assert.Error(t, applyJSON(buf, []byte(`{"not": "a list"}`)))
}

func TestRunApplyJSON(t *testing.T) {
	out := filepath.Join(t.TempDir(), "j.vxb")
	require.NoError(t, RunApplyJSON([]byte(`[{"x":0,"y":0,"z":0,"color":"#123456"}]`), "-", out, opts))
	buf, err := codec.LoadFile(out)
	require.NoError(t, err)
	assert.Equal(t, 1, buf.Count())
}

func TestStoreRunners(t *testing.T) {
	dir := t.TempDir()
	st, err := store.Open("", store.Options{InMemory: true})
	require.NoError(t, err)
	defer st.Close()

	in := filepath.Join(dir, "in.vxb")
	require.NoError(t, RunFill("-", voxel.WorldCoord{X: -40}, voxel.WorldCoord{X: 40}, "#abcdef", in, opts))
	require.NoError(t, RunStorePut(st, "line", in))
	require.NoError(t, RunStorePut(st, "copy", in))

	var out bytes.Buffer
	require.NoError(t, RunStoreLs(st, &out))
	assert.Equal(t, []string{"copy", "line"}, strings.Fields(out.String()))

	back := filepath.Join(dir, "back.vxb")
	require.NoError(t, RunStoreGet(st, "line", back, opts))
	want, err := codec.LoadFile(in)
	require.NoError(t, err)
	got, err := codec.LoadFile(back)
	require.NoError(t, err)
	assert.Equal(t, codec.ContentHash(want), codec.ContentHash(got))

	assert.ErrorIs(t, RunStoreGet(st, "nothing", back, opts), store.ErrNotFound)
}
