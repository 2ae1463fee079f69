package termcolor

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/phyten/i18nscan/internal/colorutil"
	"github.com/phyten/i18nscan/internal/model"
)

var red = colorutil.RGB{R: 255}

func TestApply(t *testing.T) {
	boldRed := Style{Bold: true, FG: Basic(1)}
	require.Equal(t, "\x1b[1;31mHello\x1b[0m", Apply(boldRed, "Hello", true))
	require.Equal(t, "Hello", Apply(Style{}, "Hello", true))
	require.Equal(t, "Hello", Apply(boldRed, "Hello", false))
	require.Equal(t, "", Apply(boldRed, "", true))
}

func TestApplyEncodings(t *testing.T) {
	require.Equal(t, "\x1b[30;48;2;255;0;0m你好\x1b[0m", Apply(Style{FG: Basic(0), BG: TrueColor(red)}, "你好", true))
	require.Equal(t, "\x1b[48;5;196mx\x1b[0m", Apply(Style{BG: Indexed(196)}, "x", true))
	require.Equal(t, "\x1b[2;4;38;5;21mx\x1b[0m", Apply(Style{Dim: true, Underline: true, FG: Indexed(21)}, "x", true))
}

func TestColorFor(t *testing.T) {
	require.Equal(t, TrueColor(red), ColorFor(red, ProfileTrueColor))
	require.Equal(t, Indexed(196), ColorFor(red, ProfileANSI256))
	require.Equal(t, Basic(1), ColorFor(red, ProfileBasic8))
	require.False(t, Color{}.IsSet())
}

func TestKindStyleRespectsScheme(t *testing.T) {
	dark := KindStyle(model.KindString, SchemeDark, ProfileBasic8)
	require.Equal(t, Style{FG: Basic(3), Bold: true}, dark)
	light := KindStyle(model.KindText, SchemeLight, ProfileBasic8)
	require.Equal(t, Style{FG: Basic(2)}, light)
	require.Equal(t, colorIndexed, KindStyle(model.KindAttribute, SchemeDark, ProfileANSI256).FG.kind)

	for _, kind := range []model.SpanKind{model.KindString, model.KindJSXText, model.KindAttribute, model.KindExpression} {
		fg := KindStyle(kind, SchemeLight, ProfileTrueColor).FG
		require.Equal(t, colorRGB, fg.kind, kind)
		require.GreaterOrEqual(t, colorutil.ContrastRatio(fg.rgb, lightBackground), colorutil.MinContrast, kind)
	}

	require.Equal(t, Style{}, KindStyle(model.SpanKind("other"), SchemeDark, ProfileBasic8))
	require.True(t, HeaderStyle().Bold && HeaderStyle().Underline)
}

func TestMarkStyleKeepsTextReadable(t *testing.T) {
	s := MarkStyle(red, ProfileTrueColor)
	require.Equal(t, TrueColor(red), s.BG)
	require.GreaterOrEqual(t, colorutil.ContrastRatio(s.FG.rgb, red), 4.0)

	require.Equal(t, Basic(1), MarkStyle(red, ProfileBasic8).BG)
	require.Equal(t, Indexed(196), MarkStyle(red, ProfileANSI256).BG)
}

func TestUnderlineStyle(t *testing.T) {
	s := UnderlineStyle(colorutil.RGB{B: 255}, ProfileBasic8)
	require.True(t, s.Underline)
	require.Equal(t, Basic(4), s.FG)
	require.False(t, s.BG.IsSet(), "underline style must not paint a background")
}

func TestRGBToBasic(t *testing.T) {
	cases := map[colorutil.RGB]int{
		{}:                       0,
		{R: 255}:                 1,
		{G: 200}:                 2,
		{R: 255, G: 255}:         3,
		{R: 255, G: 255, B: 255}: 7,
	}
	for in, want := range cases {
		require.Equal(t, want, rgbToBasic(in), in.Hex())
	}
	require.Equal(t, 16, rgbToANSI256(colorutil.RGB{}))
	require.Equal(t, 231, rgbToANSI256(colorutil.White))
}
