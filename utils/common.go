package utils

import (
	"fmt"
	"os"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/logging"
	"github.com/voxelsplace/voxbuf/voxel"
)

// loadOrNew reads a .vxb file; "-" starts from an empty buffer.
func loadOrNew(path string) (*voxel.Buffer, error) {
	if path == "-" {
		return voxel.New(), nil
	}
	buf, err := codec.LoadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return buf, nil
}

func saveVXB(buf *voxel.Buffer, path string, opts codec.Options) error {
	if err := codec.SaveFile(buf, path, opts); err != nil {
		return fmt.Errorf("save %s: %w", path, err)
	}
	if fi, err := os.Stat(path); err == nil {
		logging.LogInfo(".vxb saved: %s (%d voxels, %d bytes)", path, buf.Count(), fi.Size())
	}
	return nil
}

// cellFromHex builds a rough cell from "#rrggbb[aa]". A zero alpha means empty.
func cellFromHex(hex string) (voxel.Cell, error) {
	c, err := voxel.ParseHexColor(hex)
	if err != nil {
		return voxel.Empty, err
	}
	if c.A == 0 {
		return voxel.Empty, nil
	}
	return voxel.Cell{Color: c, Roughness: 255}, nil
}
