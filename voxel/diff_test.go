package voxel

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDiffApplyReproducesTarget(t *testing.T) {
	from := New()
	from.Fill(WorldCoord{-3, 0, 0}, WorldCoord{3, 2, 1}, red)
	from.Set(WorldCoord{100, 100, 100}, blue)

	to := from.Clone()
	to.Set(WorldCoord{0, 0, 0}, blue)
	to.Set(WorldCoord{-3, 0, 0}, Empty)
	to.Set(WorldCoord{-64, 5, 5}, red)
	to.Set(WorldCoord{100, 100, 100}, Empty)

	edits := Diff(from, to)
	require.Len(t, edits, 4)

	Apply(from, edits)
	assert.Empty(t, Diff(from, to))
	assert.Equal(t, to.Count(), from.Count())
	assert.Equal(t, to.ChunkCoords(), from.ChunkCoords())
}

func TestDiffSharedChunksIsEmpty(t *testing.T) {
	a := New()
	a.Fill(WorldCoord{0, 0, 0}, WorldCoord{63, 3, 3}, red)
	b := a.Clone()
	assert.Empty(t, Diff(a, b))
}

func TestDiffOrder(t *testing.T) {
	from := New()
	to := New()
	to.Set(WorldCoord{0, 0, 40}, red)
	to.Set(WorldCoord{2, 0, 0}, red)
	to.Set(WorldCoord{1, 0, 0}, red)
	edits := Diff(from, to)
	require.Len(t, edits, 3)
	assert.Equal(t, WorldCoord{1, 0, 0}, edits[0].Coord)
	assert.Equal(t, WorldCoord{2, 0, 0}, edits[1].Coord)
	assert.Equal(t, WorldCoord{0, 0, 40}, edits[2].Coord)
}
