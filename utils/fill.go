package utils

import (
	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/voxel"
)

// RunFill sets every voxel of the inclusive box a..b to hex. An alpha of zero
// ("#00000000") clears the box instead.
func RunFill(inPath string, a, b voxel.WorldCoord, hex, outPath string, opts codec.Options) error {
	cell, err := cellFromHex(hex)
	if err != nil {
		return err
	}
	buf, err := loadOrNew(inPath)
	if err != nil {
		return err
	}
	buf.Fill(a, b, cell)
	return saveVXB(buf, outPath, opts)
}
