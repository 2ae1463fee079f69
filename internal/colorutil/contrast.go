// Package colorutil はハイライト色の解析と WCAG コントラスト計算です。
package colorutil

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

type RGB struct {
	R, G, B uint8
}

var (
	Black = RGB{}
	White = RGB{255, 255, 255}
)

// MinContrast is the WCAG AA ratio for normal text.
const MinContrast = 4.5

// Luminance is the WCAG relative luminance in [0,1].
func (c RGB) Luminance() float64 {
	lin := func(v uint8) float64 {
		s := float64(v) / 255
		if s <= 0.04045 {
			return s / 12.92
		}
		return math.Pow((s+0.055)/1.055, 2.4)
	}
	return 0.2126*lin(c.R) + 0.7152*lin(c.G) + 0.0722*lin(c.B)
}

// Mix moves c toward o by t (0 keeps c, 1 yields o).
func (c RGB) Mix(o RGB, t float64) RGB {
	t = math.Max(0, math.Min(1, t))
	ch := func(a, b uint8) uint8 { return uint8(float64(a) + (float64(b)-float64(a))*t) }
	return RGB{ch(c.R, o.R), ch(c.G, o.G), ch(c.B, o.B)}
}

func (c RGB) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}

func ContrastRatio(a, b RGB) float64 {
	hi, lo := a.Luminance(), b.Luminance()
	if hi < lo {
		hi, lo = lo, hi
	}
	return (hi + 0.05) / (lo + 0.05)
}

// AutoTextColor picks black or white, preferring black once it is readable.
func AutoTextColor(bg RGB) RGB {
	onBlack := ContrastRatio(Black, bg)
	if onBlack >= MinContrast || onBlack >= ContrastRatio(White, bg) {
		return Black
	}
	return White
}

// EnsureContrast keeps fg when it already reaches ratio against bg.
// Otherwise fg is darkened (light bg) or lightened (dark bg) in 10% steps,
// and black or white is the last resort.
func EnsureContrast(fg, bg RGB, ratio float64) RGB {
	if ratio <= 0 {
		ratio = MinContrast
	}
	if ContrastRatio(fg, bg) >= ratio {
		return fg
	}
	target := AutoTextColor(bg)
	for step := 1; step <= 10; step++ {
		c := fg.Mix(target, float64(step)/10)
		if ContrastRatio(c, bg) >= ratio {
			return c
		}
	}
	return target
}

// ParseHex は "#rgb" / "#rrggbb"（# は省略可）を RGB に変換します。
func ParseHex(s string) (RGB, error) {
	v := strings.TrimPrefix(strings.TrimSpace(s), "#")
	if len(v) == 3 {
		v = string([]byte{v[0], v[0], v[1], v[1], v[2], v[2]})
	}
	n, err := strconv.ParseUint(v, 16, 32)
	if len(v) != 6 || err != nil {
		return RGB{}, fmt.Errorf("invalid hex color: %q", s)
	}
	return RGB{uint8(n >> 16), uint8(n >> 8), uint8(n)}, nil
}
