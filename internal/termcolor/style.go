package termcolor

import (
	"strconv"
	"strings"

	"github.com/phyten/i18nscan/internal/colorutil"
)

type colorKind uint8

const (
	colorNone colorKind = iota
	colorBasic
	colorIndexed
	colorRGB
)

// Color is one SGR color in a specific encoding. The zero value means
// "leave the terminal default".
type Color struct {
	kind colorKind
	n    int
	rgb  colorutil.RGB
}

// Basic is one of the 8 ANSI colors (0-7).
func Basic(n int) Color { return Color{kind: colorBasic, n: n} }

// Indexed is an xterm 256-color palette entry.
func Indexed(n int) Color { return Color{kind: colorIndexed, n: n} }

// TrueColor is a 24-bit color.
func TrueColor(c colorutil.RGB) Color { return Color{kind: colorRGB, rgb: c} }

// ColorFor encodes c for the profile, approximating where needed.
func ColorFor(c colorutil.RGB, p Profile) Color {
	switch p {
	case ProfileTrueColor:
		return TrueColor(c)
	case ProfileANSI256:
		return Indexed(rgbToANSI256(c))
	}
	return Basic(rgbToBasic(c))
}

func (c Color) IsSet() bool { return c.kind != colorNone }

// sgr returns the parameter for the foreground (layer 3) or background
// (layer 4).
func (c Color) sgr(layer int) string {
	l := strconv.Itoa(layer)
	switch c.kind {
	case colorBasic:
		return l + strconv.Itoa(c.n)
	case colorIndexed:
		return l + "8;5;" + strconv.Itoa(c.n)
	case colorRGB:
		return l + "8;2;" + strconv.Itoa(int(c.rgb.R)) + ";" + strconv.Itoa(int(c.rgb.G)) + ";" + strconv.Itoa(int(c.rgb.B))
	}
	return ""
}

type Style struct {
	Bold      bool
	Dim       bool
	Underline bool
	FG        Color
	BG        Color
}

func (s Style) params() []string {
	var out []string
	for _, a := range []struct {
		on   bool
		code string
	}{{s.Bold, "1"}, {s.Dim, "2"}, {s.Underline, "4"}} {
		if a.on {
			out = append(out, a.code)
		}
	}
	if s.FG.IsSet() {
		out = append(out, s.FG.sgr(3))
	}
	if s.BG.IsSet() {
		out = append(out, s.BG.sgr(4))
	}
	return out
}

// Apply wraps text in the style's escape sequence and a reset. Disabled
// output, empty text and empty styles come back unchanged.
func Apply(s Style, text string, enabled bool) string {
	if !enabled || text == "" {
		return text
	}
	p := s.params()
	if len(p) == 0 {
		return text
	}
	return "\x1b[" + strings.Join(p, ";") + "m" + text + "\x1b[0m"
}

// rgbToBasic maps to the nearest of the 8 ANSI colors by channel threshold.
func rgbToBasic(c colorutil.RGB) int {
	idx := 0
	for bit, v := range []uint8{c.R, c.G, c.B} {
		if v >= 128 {
			idx |= 1 << bit
		}
	}
	return idx
}

// rgbToANSI256 uses the grayscale ramp for neutral colors and the 6x6x6
// cube otherwise.
func rgbToANSI256(c colorutil.RGB) int {
	if c.R == c.G && c.G == c.B {
		switch {
		case c.R < 8:
			return 16
		case c.R > 248:
			return 231
		}
		return 232 + (int(c.R)-8)*24/247
	}
	q := func(v uint8) int { return int(v) * 5 / 255 }
	return 16 + 36*q(c.R) + 6*q(c.G) + q(c.B)
}
