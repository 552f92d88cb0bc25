package voxel

import "slices"

// Edit sets a single voxel. An empty Cell clears it.
type Edit struct {
	Coord WorldCoord
	Cell  Cell
}

// Diff returns the point edits that turn from into to, ordered by chunk
// (see CompareChunkCoords) and then by linear index. Chunks the two buffers
// still share are skipped without being scanned.
func Diff(from, to *Buffer) []Edit {
	coords := from.ChunkCoords()
	for _, cc := range to.ChunkCoords() {
		if _, ok := from.chunks[cc]; !ok {
			coords = append(coords, cc)
		}
	}
	slices.SortFunc(coords, CompareChunkCoords)

	var edits []Edit
	var empty Chunk
	for _, cc := range coords {
		a, aok := from.chunks[cc]
		b, bok := to.chunks[cc]
		if aok && bok && a == b {
			continue
		}
		if !aok {
			a = &empty
		}
		if !bok {
			b = &empty
		}
		for i := 0; i < ChunkVolume; i++ {
			if a.cells[i] != b.cells[i] {
				edits = append(edits, Edit{Coord: LocalFromIndex(i).World(cc), Cell: b.cells[i]})
			}
		}
	}
	return edits
}

// Apply writes every edit to b in order.
func Apply(b *Buffer, edits []Edit) {
	for _, e := range edits {
		b.Set(e.Coord, e.Cell)
	}
}
