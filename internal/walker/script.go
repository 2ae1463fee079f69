package walker

import (
	"bytes"
	"context"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	"github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/textutil"
)

// substitutionRe matches one ${...} placeholder of a template literal.
var substitutionRe = regexp.MustCompile(`\$\{[^\}]+\}`)

// jsxCommentRe finds comment openers at the start of JSX text, which the tsx
// grammar lexes as comments instead of text.
var jsxCommentRe = regexp.MustCompile(`[>}][ \t\r\n]*(?://|/\*)`)

// Script walks TypeScript/JavaScript sources. Extended enables JSX syntax.
type Script struct {
	Extended   bool
	BaseOffset int
}

// Walk implements Walker.
func (s Script) Walk(ctx context.Context, code []byte) ([]model.TextSpan, error) {
	return WalkScript(ctx, code, s.Extended, s.BaseOffset)
}

// WalkScript は文字列リテラル、テンプレートリテラル、JSX テキストのうち
// 対象文字を含むものを返します。報告するオフセットには baseOffset を加算します。
func WalkScript(ctx context.Context, code []byte, extended bool, baseOffset int) ([]model.TextSpan, error) {
	lang, grammar := typescript.GetLanguage(), "typescript"
	if extended {
		lang, grammar = tsx.GetLanguage(), "tsx"
	}
	return walkScriptWith(ctx, lang, grammar, code, extended, baseOffset)
}

// walkJavaScript is used for generated code, which never carries types.
func walkJavaScript(ctx context.Context, code []byte) ([]model.TextSpan, error) {
	return walkScriptWith(ctx, javascript.GetLanguage(), "javascript", code, false, 0)
}

func walkScriptWith(ctx context.Context, lang *sitter.Language, grammar string, code []byte, extended bool, baseOffset int) ([]model.TextSpan, error) {
	tree, err := parse(ctx, lang, code)
	if err != nil {
		return nil, parseFailed(ctx, grammar, err)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root.HasError() {
		if !extended {
			return nil, syntaxError(grammar, root)
		}
		retry := reparseJSXText(ctx, lang, code)
		if retry == nil {
			return nil, syntaxError(grammar, root)
		}
		defer retry.Close()
		root = retry.RootNode()
	}
	w := &scriptWalker{ctx: ctx, code: code, extended: extended, base: baseOffset}
	w.visit(root)
	return w.spans, nil
}

// reparseJSXText masks comment openers that begin JSX text and parses again.
// The masked copy has the same byte layout, so its nodes index code directly.
// It returns nil when masking does not yield an error-free tree.
func reparseJSXText(ctx context.Context, lang *sitter.Language, code []byte) *sitter.Tree {
	locs := jsxCommentRe.FindAllIndex(code, -1)
	if len(locs) == 0 {
		return nil
	}
	masked := bytes.Clone(code)
	for _, loc := range locs {
		masked[loc[1]-2], masked[loc[1]-1] = 'x', 'x'
	}
	tree, err := parse(ctx, lang, masked)
	if err != nil {
		return nil
	}
	if tree.RootNode().HasError() {
		tree.Close()
		return nil
	}
	return tree
}

type scriptWalker struct {
	ctx      context.Context
	code     []byte
	extended bool
	base     int
	spans    []model.TextSpan
}

func (w *scriptWalker) emit(start, end int, text string, quoted bool, kind model.SpanKind) {
	w.spans = append(w.spans, model.TextSpan{
		Start:  start + w.base,
		End:    end + w.base,
		Text:   text,
		Quoted: quoted,
		Kind:   kind,
	})
}

func (w *scriptWalker) visit(n *sitter.Node) {
	switch n.Type() {
	case "comment":
		return
	case "string":
		w.stringLiteral(n)
		return
	case "template_string":
		w.templateLiteral(n)
	case "jsx_element":
		if w.extended {
			w.jsxText(n)
		}
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		w.visit(n.NamedChild(i))
	}
}

func (w *scriptWalker) stringLiteral(n *sitter.Node) {
	s, e := bounds(n)
	if e-s < 2 {
		return
	}
	value := decodeJSString(w.code[s+1 : e-1])
	if !textutil.ContainsTarget(value) {
		return
	}
	w.emit(s+1, e-1, value, true, model.KindString)
}

// templateLiteral tests the literal with its first substitution removed. Only
// the first one is dropped, so later placeholders still take part in the test.
func (w *scriptWalker) templateLiteral(n *sitter.Node) {
	s, e := bounds(n)
	if e-s < 2 {
		return
	}
	raw := string(w.code[s:e])
	probe := raw
	if loc := substitutionRe.FindStringIndex(raw); loc != nil {
		probe = raw[:loc[0]] + raw[loc[1]:]
	}
	if !textutil.ContainsTarget(probe) {
		return
	}
	w.emit(s+1, e-1, raw[1:len(raw)-1], true, model.KindTemplate)
}

func (w *scriptWalker) jsxText(n *sitter.Node) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() != "jsx_text" {
			continue
		}
		s, e := bounds(c)
		raw := w.code[s:e]
		if !textutil.ContainsTarget(stripComments(w.ctx, raw)) {
			continue
		}
		w.emit(s, e, strings.TrimSpace(string(raw)), false, model.KindJSXText)
	}
}

// stripComments removes every comment the plain grammar recognizes in text.
func stripComments(ctx context.Context, text []byte) string {
	tree, err := parse(ctx, typescript.GetLanguage(), text)
	if err != nil {
		return string(text)
	}
	defer tree.Close()
	var cuts [][2]int
	var collect func(n *sitter.Node)
	collect = func(n *sitter.Node) {
		if n.Type() == "comment" {
			s, e := bounds(n)
			cuts = append(cuts, [2]int{s, e})
			return
		}
		for i := 0; i < int(n.ChildCount()); i++ {
			collect(n.Child(i))
		}
	}
	collect(tree.RootNode())
	if len(cuts) == 0 {
		return string(text)
	}
	var b strings.Builder
	prev := 0
	for _, c := range cuts {
		if c[0] < prev {
			continue
		}
		b.Write(text[prev:c[0]])
		prev = c[1]
	}
	b.Write(text[prev:])
	return b.String()
}
