package utils

import (
	"fmt"
	"io"

	"github.com/voxelsplace/voxbuf/codec"
)

// RunInfo prints the voxel count, chunk bounding box and content hash of a .vxb file.
func RunInfo(inPath string, w io.Writer) error {
	buf, err := codec.LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	fmt.Fprintf(w, "voxels: %d\n", buf.Count())
	fmt.Fprintf(w, "chunks: %d\n", buf.Len())
	if lo, hi, ok := buf.ChunkBoundingBox(); ok {
		fmt.Fprintf(w, "chunk bbox: (%d,%d,%d) .. (%d,%d,%d)\n", lo.X, lo.Y, lo.Z, hi.X, hi.Y, hi.Z)
	} else {
		fmt.Fprintln(w, "chunk bbox: empty")
	}
	fmt.Fprintf(w, "hash: %016x\n", codec.ContentHash(buf))
	return nil
}
