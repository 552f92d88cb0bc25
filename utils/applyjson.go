package utils

import (
	"encoding/json"
	"fmt"

	"github.com/voxelsplace/voxbuf/codec"
	"github.com/voxelsplace/voxbuf/voxel"
)

// jsonEdit is one entry of [{"x":1,"y":2,"z":3,"color":"#ff0000"}, ...].
// An empty color erases the voxel.
type jsonEdit struct {
	X     int32  `json:"x"`
	Y     int32  `json:"y"`
	Z     int32  `json:"z"`
	Color string `json:"color"`
}

// RunApplyJSON applies a JSON edit list to inPath ("-" for an empty volume)
// and writes the result to outPath.
func RunApplyJSON(jsonEdits []byte, inPath, outPath string, opts codec.Options) error {
	buf, err := loadOrNew(inPath)
	if err != nil {
		return err
	}
	if err := applyJSON(buf, jsonEdits); err != nil {
		return err
	}
	return saveVXB(buf, outPath, opts)
}

// applyJSON validates the whole list before touching buf.
func applyJSON(buf *voxel.Buffer, blob []byte) error {
	var list []jsonEdit
	if err := json.Unmarshal(blob, &list); err != nil {
		return fmt.Errorf("invalid edits JSON: %w", err)
	}
	edits := make([]voxel.Edit, 0, len(list))
	for i, e := range list {
		cell := voxel.Empty
		if e.Color != "" {
			c, err := cellFromHex(e.Color)
			if err != nil {
				return fmt.Errorf("edit %d: %w", i, err)
			}
			cell = c
		}
		edits = append(edits, voxel.Edit{Coord: voxel.WorldCoord{X: e.X, Y: e.Y, Z: e.Z}, Cell: cell})
	}
	voxel.Apply(buf, edits)
	return nil
}
