package voxel

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCompressEmptyChunk(t *testing.T) {
	cc := CompressChunk(NewChunk())
	require.Len(t, cc.Runs, 1)
	assert.Equal(t, Run{Len: ChunkVolume, Cell: Empty}, cc.Runs[0])
}

func TestCompressNoZeroLengthRuns(t *testing.T) {
	ch := NewChunk()
	ch.Set(LocalCoord{0, 0, 0}, red)
	ch.Set(LocalCoord{31, 31, 31}, blue)
	cc := CompressChunk(ch)
	require.Len(t, cc.Runs, 3)
	assert.Equal(t, Run{Len: 1, Cell: red}, cc.Runs[0])
	assert.Equal(t, Run{Len: ChunkVolume - 2, Cell: Empty}, cc.Runs[1])
	assert.Equal(t, Run{Len: 1, Cell: blue}, cc.Runs[2])
	for _, r := range cc.Runs {
		assert.NotZero(t, r.Len)
	}
}

func TestDecompressRejectsBadRunSum(t *testing.T) {
	for _, runs := range [][]Run{
		nil,
		{{Len: ChunkVolume - 1, Cell: red}},
		{{Len: ChunkVolume, Cell: red}, {Len: 1, Cell: Empty}},
		{{Len: 0xFFFFFFFF, Cell: red}, {Len: ChunkVolume + 1, Cell: red}},
	} {
		_, err := DecompressChunk(CompressedChunk{Runs: runs})
		assert.True(t, errors.Is(err, ErrRunLength), "%v", runs)
	}
}

func TestDecompressCountsOnlyNonEmptyRuns(t *testing.T) {
	ch, err := DecompressChunk(CompressedChunk{Runs: []Run{
		{Len: 10, Cell: red},
		{Len: 0, Cell: blue},
		{Len: ChunkVolume - 20, Cell: Empty},
		{Len: 10, Cell: blue},
	}})
	require.NoError(t, err)
	assert.Equal(t, 20, ch.Count())
	assert.Equal(t, red, ch.At(9))
	assert.Equal(t, Empty, ch.At(10))
	assert.Equal(t, blue, ch.At(ChunkVolume-1))
}

func TestBufferCompressRoundTrip(t *testing.T) {
	b := New()
	coords := []WorldCoord{{0, 0, 0}, {1, 0, 0}, {-1, 0, 0}, {40, 40, 40}}
	for _, c := range coords {
		b.Set(c, red)
	}

	cb := b.Compress()
	assert.Len(t, cb, 3)

	out, err := Decompress(cb)
	require.NoError(t, err)
	assert.Equal(t, 4, out.Count())
	for _, c := range coords {
		assert.Equal(t, red, out.Get(c))
	}
	assert.Equal(t, b.ChunkCoords(), out.ChunkCoords())
}

func TestDecompressDropsEmptyChunks(t *testing.T) {
	cb := CompressedBuffer{
		{0, 0, 0}: {Runs: []Run{{Len: ChunkVolume}}},
		{1, 0, 0}: {Runs: []Run{{Len: 1, Cell: red}, {Len: ChunkVolume - 1}}},
	}
	b, err := Decompress(cb)
	require.NoError(t, err)
	assert.Equal(t, 1, b.Len())
	assert.Equal(t, red, b.Get(WorldCoord{32, 0, 0}))
}

func TestDecompressBufferWrapsError(t *testing.T) {
	_, err := Decompress(CompressedBuffer{{0, 0, 0}: {Runs: []Run{{Len: 5, Cell: red}}}})
	assert.ErrorIs(t, err, ErrRunLength)
}

func TestInsertSharedChunkStaysCopyOnWrite(t *testing.T) {
	a := New()
	c := WorldCoord{X: 1, Y: 2, Z: 3}
	a.Set(c, red)
	ch, ok := a.Chunk(c.Chunk())
	require.True(t, ok)

	b := New()
	b.Insert(c.Chunk(), ch)
	b.Set(c, blue)
	a.Set(WorldCoord{X: 2, Y: 2, Z: 3}, blue)

	assert.Equal(t, red, a.Get(c))
	assert.Equal(t, blue, b.Get(c))
	assert.True(t, b.Get(WorldCoord{X: 2, Y: 2, Z: 3}).IsEmpty())
	assert.Equal(t, 2, a.Count())
	assert.Equal(t, 1, b.Count())
}
