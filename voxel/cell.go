package voxel

import (
	"fmt"
	"strconv"
)

// Color is an 8-bit per channel RGBA color.
type Color struct {
	R, G, B, A uint8
}

// Shadow halves the RGB channels when shadowed is true. Alpha is kept.
func (c Color) Shadow(shadowed bool) Color {
	if !shadowed {
		return c
	}
	return Color{R: c.R / 2, G: c.G / 2, B: c.B / 2, A: c.A}
}

// Cell is the material stored in a single voxel. The zero Cell is empty.
type Cell struct {
	Color       Color
	Metallic    uint8
	Roughness   uint8
	Reflectance uint8
	Emission    uint8
}

// Empty is the canonical empty cell.
var Empty = Cell{}

// IsEmpty reports whether c is the empty sentinel.
func (c Cell) IsEmpty() bool { return c == Empty }

// Pack returns the 64-bit packed form of c:
// R | G<<8 | B<<16 | A<<24 | Metallic<<32 | Roughness<<40 | Reflectance<<48 | Emission<<56.
func (c Cell) Pack() uint64 {
	return uint64(c.Color.R) |
		uint64(c.Color.G)<<8 |
		uint64(c.Color.B)<<16 |
		uint64(c.Color.A)<<24 |
		uint64(c.Metallic)<<32 |
		uint64(c.Roughness)<<40 |
		uint64(c.Reflectance)<<48 |
		uint64(c.Emission)<<56
}

// UnpackCell is the inverse of Cell.Pack.
func UnpackCell(v uint64) Cell {
	return Cell{
		Color: Color{
			R: uint8(v),
			G: uint8(v >> 8),
			B: uint8(v >> 16),
			A: uint8(v >> 24),
		},
		Metallic:    uint8(v >> 32),
		Roughness:   uint8(v >> 40),
		Reflectance: uint8(v >> 48),
		Emission:    uint8(v >> 56),
	}
}

// Solid returns an opaque, fully rough cell of the given color.
func Solid(c Color) Cell {
	c.A = 255
	return Cell{Color: c, Roughness: 255}
}

// ParseHexColor parses "#rrggbb" or "#rrggbbaa". Alpha defaults to 255.
func ParseHexColor(hex string) (Color, error) {
	if len(hex) == 0 || hex[0] != '#' {
		return Color{}, fmt.Errorf("invalid hex color: %q", hex)
	}
	h := hex[1:]
	if len(h) != 6 && len(h) != 8 {
		return Color{}, fmt.Errorf("invalid hex color length: %q", hex)
	}
	var ch [4]uint8
	ch[3] = 255
	for i := 0; i < len(h)/2; i++ {
		v, err := strconv.ParseUint(h[i*2:i*2+2], 16, 8)
		if err != nil {
			return Color{}, fmt.Errorf("invalid hex color %q: %w", hex, err)
		}
		ch[i] = uint8(v)
	}
	return Color{R: ch[0], G: ch[1], B: ch[2], A: ch[3]}, nil
}
