package decorate

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/require"

	"github.com/phyten/i18nscan/internal/colorutil"
	"github.com/phyten/i18nscan/internal/engine"
	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/termcolor"
)

type mapSettings map[string]any

func (m mapSettings) GetBool(key string) bool {
	b, _ := m[key].(bool)
	return b
}

func (m mapSettings) GetString(key string) string {
	s, _ := m[key].(string)
	return s
}

func enabled() mapSettings {
	return mapSettings{
		KeyEnabled:            true,
		KeyMarkStringLiterals: true,
		KeyShowOverviewRuler:  true,
		KeyColor:              "#ff0000",
	}
}

func detect(t *testing.T, code, file string) []model.Match {
	t.Helper()
	got, err := engine.Detect(context.Background(), []byte(code), file)
	require.NoError(t, err)
	return got
}

func TestHover(t *testing.T) {
	require.Equal(t, "Untranslated text found: 你好", Hover(" 你好\n"))
}

func TestBuildHonoursSettings(t *testing.T) {
	matches := detect(t, "const a = \"你好\";\n", "a.ts")

	set, err := Build(matches, enabled())
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.True(t, set.Ruler)
	require.True(t, set.Underline)
	require.Equal(t, colorutil.RGB{R: 255}, set.Color)
	require.Equal(t, "Untranslated text found: 你好", set.Decorations[0].Hover)
	require.True(t, set.Decorations[0].Quoted)

	off := enabled()
	off[KeyMarkStringLiterals] = false
	set, err = Build(matches, off)
	require.NoError(t, err)
	require.Zero(t, set.Len(), "marking disabled draws nothing")

	off = enabled()
	off[KeyEnabled] = false
	set, err = Build(matches, off)
	require.NoError(t, err)
	require.Zero(t, set.Len())

	noRuler := enabled()
	noRuler[KeyShowOverviewRuler] = false
	set, err = Build(matches, noRuler)
	require.NoError(t, err)
	require.False(t, set.Ruler)

	bad := enabled()
	bad[KeyColor] = "nope"
	_, err = Build(matches, bad)
	require.Error(t, err)
}

func TestBuildWithViper(t *testing.T) {
	v := viper.New()
	v.Set(KeyEnabled, true)
	v.Set(KeyMarkStringLiterals, true)
	v.Set(KeyColor, "#00ff00")
	set, err := Build(detect(t, "<p>欢迎</p>", "a.html"), v)
	require.NoError(t, err)
	require.Equal(t, 1, set.Len())
	require.False(t, set.Ruler)
	require.Equal(t, colorutil.RGB{G: 255}, set.Color)
}

func TestApplyClearsPrevious(t *testing.T) {
	code := "const a = \"你好\";\nconst b = \"世界\";\n"
	view := NewView([]byte(code))
	first, err := Apply(view, detect(t, code, "a.ts"), nil, enabled())
	require.NoError(t, err)
	require.Len(t, view.Decorations(), 2)

	edited := "const a = \"你好\";\nconst b = \"world\";\n"
	second, err := Apply(view, detect(t, edited, "a.ts"), first, enabled())
	require.NoError(t, err)
	require.Equal(t, 1, second.Len())
	require.Len(t, view.Decorations(), 1, "previous decorations must be cleared")

	off := enabled()
	off[KeyMarkStringLiterals] = false
	third, err := Apply(view, detect(t, edited, "a.ts"), second, off)
	require.NoError(t, err)
	require.Zero(t, third.Len())
	require.Empty(t, view.Decorations())
}

func TestRenderPlain(t *testing.T) {
	code := "const a = \"你好\";\nconst x = 1;\nconst b = \"世界\";\n"
	view := NewView([]byte(code))
	_, err := Apply(view, detect(t, code, "a.ts"), nil, enabled())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, view.Render(&buf, RenderOptions{Context: 0}))
	lines := strings.Split(strings.TrimSuffix(buf.String(), "\n"), "\n")
	require.Equal(t, []string{
		"1 ▌ const a = \"你好\";",
		strings.Repeat(" ", 15) + "^^^^ Untranslated text found: 你好",
		"  ┆",
		"3 ▌ const b = \"世界\";",
		strings.Repeat(" ", 15) + "^^^^ Untranslated text found: 世界",
	}, lines)
	require.NotContains(t, buf.String(), "\x1b[")
}

func TestRenderColor(t *testing.T) {
	code := "<p>欢迎</p>"
	view := NewView([]byte(code))
	_, err := Apply(view, detect(t, code, "a.html"), nil, enabled())
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, view.Render(&buf, RenderOptions{Color: true, Profile: termcolor.ProfileTrueColor, Context: -1}))
	out := buf.String()
	// black text on the red background, underlined
	require.Contains(t, out, "<p>\x1b[4;38;2;0;0;0;48;2;255;0;0m欢迎\x1b[0m</p>")
	require.Contains(t, out, "\x1b[38;2;255;0;0m▌\x1b[0m")
}
