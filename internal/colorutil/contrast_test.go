package colorutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestContrastRatio(t *testing.T) {
	require.InDelta(t, 21.0, ContrastRatio(Black, White), 0.01)
	require.InDelta(t, 21.0, ContrastRatio(White, Black), 0.01, "order does not matter")
	require.InDelta(t, 1.0, ContrastRatio(RGB{10, 20, 30}, RGB{10, 20, 30}), 1e-9)
	require.GreaterOrEqual(t, ContrastRatio(RGB{185, 28, 28}, White), MinContrast)
}

func TestAutoTextColor(t *testing.T) {
	cases := map[RGB]RGB{
		{255, 247, 237}: Black,
		{15, 23, 42}:    White,
		{120, 113, 108}: White,
		{255, 0, 0}:     Black,
	}
	for bg, want := range cases {
		require.Equal(t, want, AutoTextColor(bg), "bg %s", bg.Hex())
	}
}

func TestEnsureContrast(t *testing.T) {
	bg := White
	got := EnsureContrast(RGB{255, 0, 0}, bg, MinContrast)
	require.GreaterOrEqual(t, ContrastRatio(got, bg), MinContrast)
	require.NotEqual(t, Black, got, "a darker red is enough")
	require.Zero(t, got.G)

	dark := RGB{17, 24, 39}
	got = EnsureContrast(RGB{100, 50, 200}, dark, 0)
	require.GreaterOrEqual(t, ContrastRatio(got, dark), MinContrast)

	ok := RGB{0, 0, 0}
	require.Equal(t, ok, EnsureContrast(ok, White, MinContrast))
}

func TestMix(t *testing.T) {
	c := RGB{200, 100, 0}
	require.Equal(t, c, c.Mix(Black, 0))
	require.Equal(t, Black, c.Mix(Black, 1))
	require.Equal(t, RGB{100, 50, 0}, c.Mix(Black, 0.5))
	require.Equal(t, White, c.Mix(White, 7), "t is clamped")
}

func TestParseHex(t *testing.T) {
	for in, want := range map[string]RGB{
		"#ff0000":   {255, 0, 0},
		"00FF7f":    {0, 255, 127},
		"#abc":      {0xaa, 0xbb, 0xcc},
		" #102030 ": {16, 32, 48},
	} {
		got, err := ParseHex(in)
		require.NoError(t, err, in)
		require.Equal(t, want, got, in)
	}
	for _, bad := range []string{"", "#12", "#gggggg", "red", "#1234567"} {
		_, err := ParseHex(bad)
		require.Error(t, err, bad)
	}
	require.Equal(t, "#ff0800", RGB{255, 8, 0}.Hex())
}
