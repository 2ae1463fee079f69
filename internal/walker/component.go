package walker

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"unicode"

	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/overlap"
	"github.com/phyten/i18nscan/internal/sfc"
	"github.com/phyten/i18nscan/internal/textrange"
	"github.com/phyten/i18nscan/internal/textutil"
)

var backtickRe = regexp.MustCompile("`(.+?)`")

// Component walks single-file components (template, script and style blocks).
type Component struct{}

// Walk implements Walker.
func (Component) Walk(ctx context.Context, code []byte) ([]model.TextSpan, error) {
	return WalkComponent(ctx, code)
}

// candidate is a span together with the bounds used for overlap resolution.
type candidate struct {
	span       model.TextSpan
	outerStart int
	outerEnd   int
}

func candidateBounds(c candidate) (int, int) { return c.outerStart, c.outerEnd }

// literals of one expression node share outer bounds, so duplicates are
// judged by the reported span.
func spanBounds(c candidate) (int, int) { return c.span.Start, c.span.End }

// WalkComponent はテンプレートのテキスト、render 関数の文字列リテラルの出現箇所、
// script ブロックの順に候補を集めます。script ブロックの結果はテンプレート側の結果と
// 重なりを解消しません。
func WalkComponent(ctx context.Context, code []byte) ([]model.TextSpan, error) {
	doc, err := sfc.Parse(ctx, code)
	if err != nil {
		if errors.Is(err, sfc.ErrNoTree) {
			return nil, &ParseError{Grammar: "vue", Detail: err.Error()}
		}
		return nil, err
	}

	var found []candidate
	if doc.Root != nil {
		found = append(found, templateTexts(code, doc.Root)...)

		render, err := sfc.Compile(doc.Root)
		if err != nil {
			return nil, &ParseError{Grammar: "vue-template", Detail: err.Error()}
		}
		lits, err := renderLiterals(ctx, render.Source)
		if err != nil {
			return nil, err
		}
		found = append(found, rescan(code, lits)...)
	}

	found = overlap.ResolveFunc(found, candidateBounds)
	found = overlap.DedupeFunc(found, spanBounds)
	spans := make([]model.TextSpan, 0, len(found))
	for _, c := range found {
		spans = append(spans, c.span)
	}

	for _, script := range doc.Scripts {
		lang := script.Lang()
		extended := lang == "tsx" || lang == "jsx"
		got, err := WalkScript(ctx, code[script.Start:script.End], extended, script.Start)
		if err != nil {
			return nil, err
		}
		spans = append(spans, overlap.Resolve(got)...)
	}
	return spans, nil
}

// templateTexts collects text nodes and the backtick literals of expression
// nodes. Only element nodes are descended into.
func templateTexts(code []byte, n *sfc.Node) []candidate {
	var out []candidate
	switch n.Type {
	case sfc.ExpressionNode:
		raw := string(code[n.Start:n.End])
		for _, lit := range backtickRe.FindAllString(n.Expression, -1) {
			if !textutil.ContainsTarget(lit) {
				continue
			}
			idx := strings.Index(raw, lit)
			if idx < 0 {
				continue
			}
			out = append(out, candidate{
				span: model.TextSpan{
					Start:  n.Start + idx + 1,
					End:    n.Start + idx + len(lit) - 1,
					Text:   lit[1 : len(lit)-1],
					Quoted: true,
					Kind:   model.KindExpression,
				},
				outerStart: n.Start,
				outerEnd:   n.End,
			})
		}
		return out
	case sfc.TextNode:
		if !textutil.ContainsTarget(n.Text) {
			return nil
		}
		s, e := textrange.TrimSpan(code, n.Start, n.End)
		if s >= e {
			return nil
		}
		return []candidate{{
			span:       model.TextSpan{Start: s, End: e, Text: strings.TrimSpace(n.Text), Kind: model.KindText},
			outerStart: s,
			outerEnd:   e,
		}}
	}
	for _, c := range n.Children {
		out = append(out, templateTexts(code, c)...)
	}
	return out
}

// renderLiterals returns the trimmed, de-duplicated string literals of the
// render source that contain target characters. Template literals are not
// string literals and are left out.
func renderLiterals(ctx context.Context, src string) ([]string, error) {
	spans, err := walkJavaScript(ctx, []byte(src))
	if err != nil {
		return nil, err
	}
	seen := make(map[string]struct{}, len(spans))
	var lits []string
	for _, sp := range spans {
		if sp.Kind != model.KindString {
			continue
		}
		lit := strings.TrimSpace(sp.Text)
		if lit == "" || !textutil.ContainsTarget(lit) {
			continue
		}
		if _, ok := seen[lit]; ok {
			continue
		}
		seen[lit] = struct{}{}
		lits = append(lits, lit)
	}
	return lits, nil
}

// rescan reports every occurrence of each literal in the original document.
func rescan(code []byte, lits []string) []candidate {
	var out []candidate
	for _, lit := range lits {
		re := regexp.MustCompile(regexp.QuoteMeta(lit))
		for _, loc := range re.FindAllIndex(code, -1) {
			s, e := loc[0], loc[1]
			e = s + len(strings.TrimRightFunc(string(code[s:e]), unicode.IsSpace))
			if s >= e {
				continue
			}
			out = append(out, candidate{
				span: model.TextSpan{
					Start:  s,
					End:    e,
					Text:   string(code[s:e]),
					Quoted: quotedAt(code, s, e),
					Kind:   model.KindRender,
				},
				outerStart: s,
				outerEnd:   e,
			})
		}
	}
	return out
}

func quotedAt(code []byte, s, e int) bool {
	if s == 0 || e >= len(code) {
		return false
	}
	q := code[s-1]
	return (q == '"' || q == '\'') && code[e] == q
}
