package utils

import (
	"fmt"
	"io"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/metrics"
	"github.com/voxelsplace/voxbuf/raycast"
)

// RunRaycast casts ray through the volume in inPath and prints the nearest hit.
func RunRaycast(inPath string, ray raycast.Ray, w io.Writer, m *metrics.Metrics) error {
	buf, err := codec.LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	hit, ok := raycast.Cast(buf, ray)
	m.ObserveRaycast(ok)
	if !ok {
		fmt.Fprintln(w, "miss")
		return nil
	}
	fmt.Fprintf(w, "hit (%d,%d,%d) distance %.4f", hit.Coord.X, hit.Coord.Y, hit.Coord.Z, hit.Distance)
	if hit.HasNormal {
		fmt.Fprintf(w, " normal (%d,%d,%d)", hit.Normal[0], hit.Normal[1], hit.Normal[2])
	}
	fmt.Fprintln(w)
	return nil
}
