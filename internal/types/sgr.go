package types

import (
	"fmt"
	"strings"
)

/////////////////////////////////////////////////////////////////////////////
// COLOR
/////////////////////////////////////////////////////////////////////////////

type ColorType int

const (
	ColorDefault  ColorType = iota
	ColorStandard           // 0-15 (codes 30-37, 90-97, etc.)
	ColorIndexed            // 0-255 (ESC[38;5;n)
	ColorRGB                // RGB (ESC[38;2;r;g;b)
)

type ColorValue struct {
	Type    ColorType
	R, G, B uint8
	Index   uint8
}

func (c ColorValue) IsDefault() bool {
	return c.Type == ColorDefault
}

func (c ColorValue) String() string {
	switch c.Type {
	case ColorDefault:
		return "default"
	case ColorStandard:
		if c.Index < uint8(len(colorNames)) {
			return colorNames[c.Index]
		}
		return fmt.Sprintf("std:%d", c.Index)
	case ColorIndexed:
		return fmt.Sprintf("idx:%d", c.Index)
	case ColorRGB:
		return fmt.Sprintf("rgb(%d,%d,%d)", c.R, c.G, c.B)
	}
	return "unknown"
}

// StandardColor returns one of the 16 standard terminal colors.
func StandardColor(index uint8) ColorValue {
	return ColorValue{Type: ColorStandard, Index: index}
}

// Standard color indexes as used by SGR 30-37 / 90-97.
const (
	Black uint8 = iota
	Red
	Green
	Yellow
	Blue
	Magenta
	Cyan
	White
)

var colorNames = [16]string{
	"black", "red", "green", "yellow", "blue", "magenta", "cyan", "white",
	"bright-black", "bright-red", "bright-green", "bright-yellow",
	"bright-blue", "bright-magenta", "bright-cyan", "bright-white",
}

// ParseColor parses a standard color name ("red", "bright-cyan"), or "" /
// "default" for the terminal default.
func ParseColor(name string) (ColorValue, error) {
	name = strings.ToLower(strings.TrimSpace(name))
	if name == "" || name == "default" {
		return ColorValue{Type: ColorDefault}, nil
	}
	for i, n := range colorNames {
		if n == name {
			return StandardColor(uint8(i)), nil
		}
	}
	return ColorValue{}, fmt.Errorf("unknown color %q", name)
}

/////////////////////////////////////////////////////////////////////////////
// ATTRIBUTES
/////////////////////////////////////////////////////////////////////////////

// Attrs is the attribute combination a style table entry is keyed by.
// It is comparable and can be used as a map key.
type Attrs struct {
	Bold  bool
	Faint bool
	Fg    ColorValue
	Bg    ColorValue
}

func (a Attrs) String() string {
	var parts []string
	if a.Bold {
		parts = append(parts, "bold")
	}
	if a.Faint {
		parts = append(parts, "faint")
	}
	if !a.Fg.IsDefault() {
		parts = append(parts, "fg:"+a.Fg.String())
	}
	if !a.Bg.IsDefault() {
		parts = append(parts, "bg:"+a.Bg.String())
	}
	if len(parts) == 0 {
		return "none"
	}
	return strings.Join(parts, ", ")
}

/////////////////////////////////////////////////////////////////////////////
// SGR (Select Graphic Rendition)
/////////////////////////////////////////////////////////////////////////////

// SGR is the running attribute state of the decoder. Only the attributes
// the style table can distinguish are tracked; other codes are ignored.
type SGR struct {
	FgColor ColorValue
	BgColor ColorValue
	Bold    bool
	Faint   bool
}

func NewSGR() *SGR {
	return &SGR{
		FgColor: ColorValue{Type: ColorDefault},
		BgColor: ColorValue{Type: ColorDefault},
	}
}

func (s *SGR) Reset() {
	s.FgColor = ColorValue{Type: ColorDefault}
	s.BgColor = ColorValue{Type: ColorDefault}
	s.Bold = false
	s.Faint = false
}

func (s *SGR) ApplyParams(params []int) {
	// ESC[m is a reset
	if len(params) == 0 {
		s.Reset()
		return
	}

	for i := 0; i < len(params); i++ {
		code := params[i]

		switch code {
		case 0:
			s.Reset()

		case 1:
			s.Bold = true
		case 2:
			s.Faint = true
		case 21, 22:
			s.Bold = false
			if code == 22 {
				s.Faint = false
			}

		case 30, 31, 32, 33, 34, 35, 36, 37:
			s.FgColor = StandardColor(uint8(code - 30))

		case 38: // Foreground extended
			i += s.applyExtendedColor(&s.FgColor, params, i+1)

		case 39:
			s.FgColor = ColorValue{Type: ColorDefault}

		case 40, 41, 42, 43, 44, 45, 46, 47:
			s.BgColor = StandardColor(uint8(code - 40))

		case 48: // Background extended
			i += s.applyExtendedColor(&s.BgColor, params, i+1)

		case 49:
			s.BgColor = ColorValue{Type: ColorDefault}

		case 90, 91, 92, 93, 94, 95, 96, 97:
			s.FgColor = StandardColor(uint8(code - 90 + 8))

		case 100, 101, 102, 103, 104, 105, 106, 107:
			s.BgColor = StandardColor(uint8(code - 100 + 8))
		}
	}
}

func (s *SGR) applyExtendedColor(color *ColorValue, params []int, start int) int {
	if start >= len(params) {
		return 0
	}

	colorType := params[start]

	switch colorType {
	case 5: // Indexed color (256 colors)
		// ESC[38;5;n
		if start+1 < len(params) {
			*color = ColorValue{
				Type:  ColorIndexed,
				Index: uint8(params[start+1]),
			}
			return 2
		}

	case 2: // RGB color
		// ESC[38;2;r;g;b
		if start+3 < len(params) {
			*color = ColorValue{
				Type: ColorRGB,
				R:    uint8(params[start+1]),
				G:    uint8(params[start+2]),
				B:    uint8(params[start+3]),
			}
			return 4
		}
	}

	return 1
}

// Attrs returns the attribute combination currently in effect.
func (s *SGR) Attrs() Attrs {
	return Attrs{
		Bold:  s.Bold,
		Faint: s.Faint,
		Fg:    s.FgColor,
		Bg:    s.BgColor,
	}
}

func (s *SGR) String() string {
	return s.Attrs().String()
}
