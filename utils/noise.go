package utils

import (
	"fmt"
	"math/rand"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/voxel"
)

const maxNoiseRadius = 128

// generateNoise fills the given percentage of the cube [-radius, radius) on
// every axis with randomly colored solid voxels.
func generateNoise(percentage float64, radius int32, r *rand.Rand) *voxel.Buffer {
	percentage = min(max(percentage, 0), 100)
	side := int(2 * radius)
	total := side * side * side
	want := min(int(float64(total)*(percentage/100.0)+0.5), total)

	// Fisher-Yates shuffle only the first 'want' positions.
	idx := make([]int32, total)
	for i := range idx {
		idx[i] = int32(i)
	}
	for i := 0; i < want; i++ {
		j := i + r.Intn(total-i)
		idx[i], idx[j] = idx[j], idx[i]
	}

	buf := voxel.New()
	for _, i := range idx[:want] {
		x := int(i) % side
		y := int(i) / side % side
		z := int(i) / (side * side)
		buf.Set(voxel.WorldCoord{X: int32(x) - radius, Y: int32(y) - radius, Z: int32(z) - radius},
			voxel.Solid(voxel.Color{R: uint8(r.Intn(256)), G: uint8(r.Intn(256)), B: uint8(r.Intn(256))}))
	}
	return buf
}

// RunGenerateNoise writes a random volume centred on the origin to outPath.
func RunGenerateNoise(percentage float64, radius int, seed int64, outPath string, opts codec.Options) error {
	if radius <= 0 || radius > maxNoiseRadius {
		return fmt.Errorf("radius must be in [1, %d], got %d", maxNoiseRadius, radius)
	}
	buf := generateNoise(percentage, int32(radius), rand.New(rand.NewSource(seed)))
	return saveVXB(buf, outPath, opts)
}
