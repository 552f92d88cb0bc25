package utils

import (
	"fmt"
	"os"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/logging"
	"github.com/voxelsplace/voxbuf/voxel"
)

// RunDiff writes the .vxd edit stream that turns volume aPath into bPath.
func RunDiff(aPath, bPath, outPath string) error {
	from, err := codec.LoadFile(aPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", aPath, err)
	}
	to, err := codec.LoadFile(bPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", bPath, err)
	}
	edits := voxel.Diff(from, to)
	if err := os.WriteFile(outPath, codec.EncodeEdits(edits), 0o644); err != nil {
		return err
	}
	logging.LogInfo(".vxd saved: %s (%d edits)", outPath, len(edits))
	return nil
}

// RunPatch applies the edit stream in editsPath to inPath and writes outPath.
func RunPatch(inPath, editsPath, outPath string, opts codec.Options) error {
	buf, err := codec.LoadFile(inPath)
	if err != nil {
		return fmt.Errorf("load %s: %w", inPath, err)
	}
	data, err := os.ReadFile(editsPath)
	if err != nil {
		return err
	}
	edits, err := codec.DecodeEdits(data)
	if err != nil {
		return fmt.Errorf("decode %s: %w", editsPath, err)
	}
	voxel.Apply(buf, edits)
	return saveVXB(buf, outPath, opts)
}
