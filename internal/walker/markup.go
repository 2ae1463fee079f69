package walker

import (
	"context"
	"html"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"

	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/textrange"
	"github.com/phyten/i18nscan/internal/textutil"
)

// Markup walks HTML templates. Interpolations ({{ }}) and bound attributes
// ([x], bind-x, *x) are reported per run of target characters.
type Markup struct{}

// Walk implements Walker.
func (Markup) Walk(ctx context.Context, code []byte) ([]model.TextSpan, error) {
	return WalkMarkup(ctx, code)
}

// WalkMarkup はテキストノードと属性値から対象文字を含むものを返します。
// 文法が回復できる程度の崩れは許容します。
func WalkMarkup(ctx context.Context, code []byte) ([]model.TextSpan, error) {
	tree, err := parse(ctx, tshtml.GetLanguage(), code)
	if err != nil {
		return nil, parseFailed(ctx, "html", err)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil, &ParseError{Grammar: "html", Detail: "empty tree"}
	}
	w := &markupWalker{code: code}
	w.walk(root)
	return w.spans, nil
}

type markupWalker struct {
	code  []byte
	spans []model.TextSpan
}

func (w *markupWalker) emit(start, end int, text string, quoted bool, kind model.SpanKind) {
	start, end = textrange.TrimSpan(w.code, start, end)
	if start >= end {
		return
	}
	w.spans = append(w.spans, model.TextSpan{Start: start, End: end, Text: text, Quoted: quoted, Kind: kind})
}

// walk visits the children of an element (or the document). Adjacent text and
// entity nodes form one text node.
func (w *markupWalker) walk(n *sitter.Node) {
	runStart, runEnd := -1, -1
	flush := func() {
		if runStart >= 0 {
			w.text(runStart, runEnd)
			runStart = -1
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "text", "entity":
			if runStart < 0 {
				runStart = int(c.StartByte())
			}
			runEnd = int(c.EndByte())
			continue
		}
		flush()
		switch c.Type() {
		case "element", "ERROR":
			w.walk(c)
		case "start_tag", "self_closing_tag":
			w.attributes(c)
		}
	}
	flush()
}

func (w *markupWalker) text(start, end int) {
	raw := string(w.code[start:end])
	if strings.Contains(raw, "{{") {
		w.structuredSource(start, end, raw)
		return
	}
	vs, ve, quoted := unquote(w.code, start, end)
	value := html.UnescapeString(string(w.code[vs:ve]))
	if !textutil.ContainsTarget(value) {
		return
	}
	w.emit(vs, ve, strings.TrimSpace(value), quoted, model.KindText)
}

func (w *markupWalker) attributes(tag *sitter.Node) {
	for i := 0; i < int(tag.NamedChildCount()); i++ {
		attr := tag.NamedChild(i)
		if attr.Type() != "attribute" {
			continue
		}
		var name string
		var value *sitter.Node
		for j := 0; j < int(attr.NamedChildCount()); j++ {
			c := attr.NamedChild(j)
			switch c.Type() {
			case "attribute_name":
				name = c.Content(w.code)
			case "attribute_value", "quoted_attribute_value":
				value = c
			}
		}
		if value == nil || isEventAttribute(name) {
			continue
		}
		w.attribute(name, value)
	}
}

func (w *markupWalker) attribute(name string, value *sitter.Node) {
	s, e := bounds(value)
	vs, ve, quoted := unquote(w.code, s, e)
	source := string(w.code[vs:ve])
	if isBoundAttribute(name) || strings.Contains(source, "{{") {
		w.structuredSource(s, e, source)
		return
	}
	decoded := html.UnescapeString(source)
	if !textutil.ContainsTarget(decoded) {
		return
	}
	w.emit(vs, ve, decoded, quoted, model.KindAttribute)
}

// structuredSource reports every run of target characters of source. A run is
// located by its first occurrence in the raw slice, so repeated runs collapse
// onto the same span. Runs are never quoted, even inside a quoted attribute.
func (w *markupWalker) structuredSource(start, end int, source string) {
	if !textutil.ContainsTarget(source) {
		return
	}
	raw := string(w.code[start:end])
	for _, run := range textutil.TargetRuns(source) {
		idx := strings.Index(raw, run)
		if idx < 0 {
			continue
		}
		w.emit(start+idx, start+idx+len(run), run, false, model.KindInterpolation)
	}
}

// unquote narrows [start, end) by one byte on each side when the slice is
// delimited by a matching pair of quotes.
func unquote(code []byte, start, end int) (int, int, bool) {
	if end-start >= 2 {
		q := code[start]
		if (q == '"' || q == '\'') && code[end-1] == q {
			return start + 1, end - 1, true
		}
	}
	return start, end, false
}

func isBoundAttribute(name string) bool {
	return strings.HasPrefix(name, "[") ||
		strings.HasPrefix(name, "bind-") ||
		strings.HasPrefix(name, "bindon-") ||
		strings.HasPrefix(name, "*")
}

// Event bindings carry a handler statement, not a value.
func isEventAttribute(name string) bool {
	return strings.HasPrefix(name, "(") || strings.HasPrefix(name, "on-")
}
