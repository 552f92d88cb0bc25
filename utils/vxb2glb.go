package utils

import (
	"fmt"

	"github.com/qmuntal/gltf"

	"github.com/voxelsplace/voxbuf/api"
	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/logging"
)

func RunVXB2GLB(inPath, outPath string, opts api.Options) error {
	buf, err := codec.LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}

	if opts.Generator == "" {
		opts.Generator = "VXB -> GLB"
	}
	doc := api.Document(buf, opts)
	if err := gltf.SaveBinary(doc, outPath); err != nil {
		return fmt.Errorf("save %s: %w", outPath, err)
	}
	logging.LogInfo(".glb saved: %s (%d voxels, %d meshes)", outPath, buf.Count(), len(doc.Meshes))
	return nil
}
