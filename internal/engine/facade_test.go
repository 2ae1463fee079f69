package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/phyten/i18nscan/internal/detect"
	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/overlap"
	"github.com/phyten/i18nscan/internal/textrange"
	"github.com/phyten/i18nscan/internal/textutil"
	"github.com/phyten/i18nscan/internal/walker"
)

func TestDetectScriptPositions(t *testing.T) {
	code := "const a = \"你好\";\nconst b = `世界`;\n"
	got, err := Detect(context.Background(), []byte(code), "src/a.ts")
	require.NoError(t, err)
	require.Len(t, got, 2)

	require.Equal(t, "你好", got[0].Text)
	require.Equal(t, model.Range{Start: model.Position{Line: 0, Column: 11}, End: model.Position{Line: 0, Column: 13}}, got[0].Range)
	require.Equal(t, model.KindString, got[0].Kind)

	require.Equal(t, "世界", got[1].Text)
	require.Equal(t, model.Range{Start: model.Position{Line: 1, Column: 11}, End: model.Position{Line: 1, Column: 13}}, got[1].Range)
	require.Equal(t, model.KindTemplate, got[1].Kind)
}

func TestDetectResolvesNestedLiterals(t *testing.T) {
	code := "const t = `前缀${\"内部\"}`;"
	got, err := Detect(context.Background(), []byte(code), "a.js")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.KindTemplate, got[0].Kind)
	require.Equal(t, `前缀${"内部"}`, got[0].Text)
}

func TestDetectJSXInTSX(t *testing.T) {
	code := "export const A = () => (\n  <p>\n    欢迎\n  </p>\n);\n"
	got, err := Detect(context.Background(), []byte(code), "src/A.tsx")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.KindJSXText, got[0].Kind)
	require.Equal(t, "欢迎", got[0].Text)
	require.Equal(t, model.Position{Line: 2, Column: 4}, got[0].Range.Start)
	require.Equal(t, model.Position{Line: 2, Column: 6}, got[0].Range.End)
}

func TestDetectMarkupOrderedByStart(t *testing.T) {
	code := "<p title=\"标题\">内容</p>\n"
	got, err := Detect(context.Background(), []byte(code), "index.html")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "标题", got[0].Text)
	require.True(t, got[0].Quoted)
	require.Equal(t, "内容", got[1].Text)
	require.Less(t, got[0].Start, got[1].Start)
}

// コンポーネント: テンプレート式とスクリプトの 2 件だけが返る
func TestDetectComponent(t *testing.T) {
	code := "<template>\n  <p>{{ `问候` }}</p>\n</template>\n<script>\nexport default { data() { return { msg: \"再见\" } } }\n</script>\n"
	got, err := Detect(context.Background(), []byte(code), "src/views/Home.vue")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "问候", got[0].Text)
	require.Equal(t, 1, got[0].Range.Start.Line)
	require.Equal(t, "再见", got[1].Text)
	require.Equal(t, 4, got[1].Range.Start.Line)
}

func TestDetectComponentDuplicatesAreDropped(t *testing.T) {
	code := "<template><p title=\"再见\"></p></template>\n<script>\nconst a = \"再见\";\n</script>"
	got, err := Detect(context.Background(), []byte(code), "a.vue")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.NotEqual(t, got[0].Start, got[1].Start)
}

func TestDetect構文エラーは部分結果なし(t *testing.T) {
	code := "const ok = \"你好\";\nconst a = \"中文\" +;\n"
	got, err := Detect(context.Background(), []byte(code), "broken.ts")
	require.Error(t, err)
	require.True(t, errors.Is(err, walker.ErrParseFailure), "err = %v", err)
	require.Contains(t, err.Error(), "broken.ts")
	require.Nil(t, got)
}

type stubWalker []model.TextSpan

func (s stubWalker) Walk(context.Context, []byte) ([]model.TextSpan, error) { return s, nil }

func TestDetectBlankSpanLenientAndStrict(t *testing.T) {
	code := []byte("   \n你好")
	spans := stubWalker{
		{Start: 0, End: 3, Text: "", Kind: model.KindText},
		{Start: 4, End: 10, Text: "你好", Kind: model.KindText},
	}
	var buf bytes.Buffer
	log := zerolog.New(&buf)
	d := &Detector{Logger: &log, Walkers: map[detect.Grammar]walker.Walker{detect.GrammarMarkup: spans}}

	got, err := d.Detect(context.Background(), code, "a.html")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "你好", got[0].Text)
	require.Contains(t, buf.String(), "skipping blank span")

	d.Strict = true
	got, err = d.Detect(context.Background(), code, "a.html")
	require.True(t, errors.Is(err, textrange.ErrEmptySpan), "err = %v", err)
	require.Nil(t, got)
}

func TestDetectInvalidSpanIsAlwaysAnError(t *testing.T) {
	d := &Detector{Walkers: map[detect.Grammar]walker.Walker{detect.GrammarScript: stubWalker{{Start: 2, End: 99}}}}
	_, err := d.Detect(context.Background(), []byte("abc"), "a.ts")
	require.True(t, errors.Is(err, textrange.ErrInvalidSpan), "err = %v", err)
}

// .ts は JSX なしの文法で解析するので山括弧の型アサーションを受け付ける
func TestDetectPlainTypeScriptAllowsTypeAssertions(t *testing.T) {
	code := "const n = <number>value;\nconst s = \"中文\";\n"
	got, err := Detect(context.Background(), []byte(code), "a.ts")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, "中文", got[0].Text)

	_, err = Detect(context.Background(), []byte(code), "a.tsx")
	require.ErrorIs(t, err, walker.ErrParseFailure)
}

func TestDetectHonoursExtensionTable(t *testing.T) {
	d := &Detector{Table: detect.NewTable(map[string]detect.Grammar{".tpl": detect.GrammarMarkup})}
	got, err := d.Detect(context.Background(), []byte("<b>加粗</b>"), "x.tpl")
	require.NoError(t, err)
	require.Len(t, got, 1)
	require.Equal(t, model.KindText, got[0].Kind)
}

var words = []string{"你好", "hello", "  世界 ", "Ünïcödé", "数据 data", "ok", "こんにちは"}

func genScript(t *rapid.T) string {
	n := rapid.IntRange(0, 6).Draw(t, "n")
	var b strings.Builder
	for i := 0; i < n; i++ {
		w := rapid.SampledFrom(words).Draw(t, "word")
		switch rapid.IntRange(0, 4).Draw(t, "form") {
		case 0:
			fmt.Fprintf(&b, "const v%d = %q;\n", i, w)
		case 1:
			fmt.Fprintf(&b, "const v%d = `%s`;\n", i, w)
		case 2:
			fmt.Fprintf(&b, "const e%d = <p>%s</p>;\n", i, w)
		case 3:
			fmt.Fprintf(&b, "const t%d = `%s${%q}`;\n", i, w, w)
		default:
			fmt.Fprintf(&b, "// %s\n", w)
		}
	}
	return b.String()
}

func genMarkup(t *rapid.T) string {
	n := rapid.IntRange(0, 6).Draw(t, "n")
	var b strings.Builder
	for i := 0; i < n; i++ {
		w := rapid.SampledFrom(words).Draw(t, "word")
		switch rapid.IntRange(0, 3).Draw(t, "form") {
		case 0:
			fmt.Fprintf(&b, "<p>%s</p>\n", w)
		case 1:
			fmt.Fprintf(&b, "<img alt=\"%s\">\n", w)
		case 2:
			fmt.Fprintf(&b, "<span>{{ name }} %s</span>\n", w)
		default:
			fmt.Fprintf(&b, "<!-- %s -->\n", w)
		}
	}
	return b.String()
}

func genComponent(t *rapid.T) (code string, scriptStart int) {
	n := rapid.IntRange(0, 5).Draw(t, "n")
	var b strings.Builder
	b.WriteString("<template>\n<div>\n")
	for i := 0; i < n; i++ {
		w := rapid.SampledFrom(words).Draw(t, "word")
		switch rapid.IntRange(0, 3).Draw(t, "form") {
		case 0:
			fmt.Fprintf(&b, "  <p>%s</p>\n", w)
		case 1:
			alt := rapid.SampledFrom(words).Draw(t, "alt")
			fmt.Fprintf(&b, "  <p>{{ ok ? `%s` : `%s` }}</p>\n", w, alt)
		case 2:
			fmt.Fprintf(&b, "  <input placeholder=\"%s\">\n", w)
		default:
			fmt.Fprintf(&b, "  <!-- %s -->\n", w)
		}
	}
	b.WriteString("</div>\n</template>\n")
	scriptStart = b.Len()
	if rapid.Bool().Draw(t, "script") {
		w := rapid.SampledFrom(words).Draw(t, "scriptWord")
		fmt.Fprintf(&b, "<script>\nexport const msg = %q;\n</script>\n", w)
	}
	return b.String(), scriptStart
}

func checkMatches(t *rapid.T, code string, got []model.Match) {
	checkSpans(t, code, got)
	checkOverlapFree(t, got)
}

// checkOverlapFree は got の中に他の一致を厳密に含む一致がないことを確かめます。
func checkOverlapFree(t *rapid.T, got []model.Match) {
	for i, m := range got {
		for j, other := range got {
			if i != j && overlap.Contains(other.Start, other.End, m.Start, m.End) {
				t.Fatalf("%+v contains %+v", other, m)
			}
		}
	}
}

func checkSpans(t *rapid.T, code string, got []model.Match) {
	idx := textrange.NewIndex([]byte(code))
	for i, m := range got {
		if m.Start < 0 || m.Start > m.End || m.End > len(code) {
			t.Fatalf("offsets out of range: %+v", m)
		}
		if !textutil.ContainsTarget(m.Text) {
			t.Fatalf("match without target-script text: %+v", m)
		}
		s, e := idx.OffsetAt(m.Range.Start), idx.OffsetAt(m.Range.End)
		if s < m.Start || e > m.End || s > e {
			t.Fatalf("range %+v escapes span [%d,%d)", m.Range, m.Start, m.End)
		}
		if strings.TrimSpace(code[s:e]) != strings.TrimSpace(code[m.Start:m.End]) {
			t.Fatalf("range %+v drops content of %q", m.Range, code[m.Start:m.End])
		}
		if i > 0 && got[i-1].Start > m.Start {
			t.Fatalf("not ordered by start: %+v", got)
		}
	}
}

func TestDetectPropertiesScript(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := genScript(t)
		got, err := Detect(context.Background(), []byte(code), "gen.tsx")
		if err != nil {
			t.Fatalf("generated script failed: %v\n%s", err, code)
		}
		checkMatches(t, code, got)
		again, err := Detect(context.Background(), []byte(code), "gen.tsx")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, got, again)
	})
}

func TestDetectPropertiesMarkup(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code := genMarkup(t)
		got, err := Detect(context.Background(), []byte(code), "gen.html")
		if err != nil {
			t.Fatalf("generated markup failed: %v\n%s", err, code)
		}
		checkMatches(t, code, got)
	})
}

// script ブロックの結果はテンプレート側と重なりを解消しないため、
// 重なりの検査はテンプレート部分だけを対象にする
func TestDetectPropertiesComponent(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		code, scriptStart := genComponent(t)
		got, err := Detect(context.Background(), []byte(code), "gen.vue")
		if err != nil {
			t.Fatalf("generated component failed: %v\n%s", err, code)
		}
		checkSpans(t, code, got)
		var tmpl []model.Match
		for _, m := range got {
			if m.End <= scriptStart {
				tmpl = append(tmpl, m)
			}
		}
		checkOverlapFree(t, tmpl)
		again, err := Detect(context.Background(), []byte(code), "gen.vue")
		if err != nil {
			t.Fatal(err)
		}
		require.Equal(t, got, again)
	})
}

func TestDetectComponentExpressionWithTwoLiterals(t *testing.T) {
	code := "<template><p>{{ a ? `一` : `二` }}</p></template>"
	got, err := Detect(context.Background(), []byte(code), "a.vue")
	require.NoError(t, err)
	require.Len(t, got, 2)
	require.Equal(t, "一", got[0].Text)
	require.Equal(t, "二", got[1].Text)
	for _, m := range got {
		require.Equal(t, model.KindExpression, m.Kind)
		require.Equal(t, m.Text, code[m.Start:m.End])
	}
}
