package services

import (
	"fmt"
	"strconv"
	"strings"
)

type RGB struct {
	R, G, B int
}

// ParseHexColor parses "#RRGGBB".
func ParseHexColor(s string) (RGB, error) {
	s = strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(s) != 6 {
		return RGB{}, fmt.Errorf("invalid color %q", s)
	}
	v, err := strconv.ParseUint(s, 16, 32)
	if err != nil {
		return RGB{}, fmt.Errorf("invalid color %q: %w", s, err)
	}
	return RGB{R: int(v >> 16 & 0xff), G: int(v >> 8 & 0xff), B: int(v & 0xff)}, nil
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02X%02X%02X", c.R, c.G, c.B)
}

// StyleConfig is the presentation of a rendered estimate. Renderers receive
// it by value and never modify it.
type StyleConfig struct {
	LevelColors [5]RGB // index 0 is plain text
	TotalColor  RGB
	AccentColor RGB
	RuleColor   RGB
	HeaderFill  RGB

	Indents [5]float64 // L1..L3 captions; index 4 is items and L4 rows

	TitleSize  float64
	HeaderSize float64
	GroupSize  float64
	ItemSize   float64
	SpecSize   float64
	TotalSize  float64

	FontFamily string
	FontFile   string
}

func DefaultStyle() StyleConfig {
	return StyleConfig{
		LevelColors: [5]RGB{
			{0, 0, 0},
			{0x0D, 0x59, 0x40},
			{0x1A, 0x26, 0x73},
			{0x99, 0x4D, 0x1A},
			{0, 0, 0},
		},
		TotalColor:  RGB{0xB3, 0x1A, 0x26},
		AccentColor: RGB{0x26, 0x40, 0x8C},
		RuleColor:   RGB{128, 128, 128},
		HeaderFill:  RGB{242, 242, 242},

		Indents: [5]float64{10, 1, 4, 7, 10},

		TitleSize:  16,
		HeaderSize: 10,
		GroupSize:  10,
		ItemSize:   9,
		SpecSize:   8,
		TotalSize:  11,

		FontFamily: "NotoSerifJP",
	}
}

// LevelColor is the text color of a group row.
func (s StyleConfig) LevelColor(level int) RGB {
	if level < 0 || level >= len(s.LevelColors) {
		return s.LevelColors[0]
	}
	return s.LevelColors[level]
}

// Indent is the caption offset inside the name column. L4 rows align with items.
func (s StyleConfig) Indent(kind BlockKind, level int) float64 {
	switch kind {
	case BlockItem:
		return s.Indents[4]
	case BlockTotals:
		return 20
	}
	if level < 1 || level > 4 {
		return s.Indents[0]
	}
	return s.Indents[level]
}
