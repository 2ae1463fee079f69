// Package sfc parses single-file components: it splits the document into its
// top-level blocks, builds an AST for the <template> block and generates the
// render function for it.
package sfc

import (
	"context"
	"errors"
	"fmt"
	"html"
	"regexp"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	tshtml "github.com/smacker/go-tree-sitter/html"
)

// ErrNoTree is returned when the markup grammar produced no tree at all.
var ErrNoTree = errors.New("sfc: no syntax tree")

// NodeType はテンプレート AST のノード種別です。
type NodeType int

const (
	ElementNode    NodeType = 1
	ExpressionNode NodeType = 2
	TextNode       NodeType = 3
)

// Attr は要素の属性 1 件です。
type Attr struct {
	Name     string
	Value    string
	HasValue bool
}

// Token is one piece of a text node: static text or an interpolated expression.
type Token struct {
	Static string
	Expr   string
	IsExpr bool
}

// Node はテンプレート AST のノードです。Start/End は文書全体に対するバイトオフセットです。
type Node struct {
	Type     NodeType
	Tag      string
	Attrs    []Attr
	Children []*Node

	// Text is the raw source of text and expression nodes.
	Text   string
	Tokens []Token
	// Expression is the generated JavaScript of an expression node.
	Expression string

	Start int
	End   int
}

// Block は SFC のトップレベルブロックです。Start/End は中身の範囲を指します。
type Block struct {
	Type    string
	Attrs   map[string]string
	Content string
	Start   int
	End     int
}

// Lang returns the lang attribute of the block.
func (b *Block) Lang() string {
	if b == nil {
		return ""
	}
	return strings.ToLower(strings.TrimSpace(b.Attrs["lang"]))
}

// Descriptor holds the parsed blocks of a component.
type Descriptor struct {
	Template *Block
	Scripts  []*Block
	Styles   []*Block
	// Root is the <template> element; nil when the component has none.
	Root *Node
}

var interpolationRe = regexp.MustCompile(`\{\{((?s:.+?))\}\}`)

// Parse splits code into blocks and builds the template AST.
func Parse(ctx context.Context, code []byte) (*Descriptor, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(tshtml.GetLanguage())
	tree, err := p.ParseCtx(ctx, nil, code)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		return nil, fmt.Errorf("%w: %v", ErrNoTree, err)
	}
	defer tree.Close()
	root := tree.RootNode()
	if root == nil {
		return nil, ErrNoTree
	}

	b := &builder{code: code}
	d := &Descriptor{}
	for i := 0; i < int(root.NamedChildCount()); i++ {
		c := root.NamedChild(i)
		switch c.Type() {
		case "element":
			tag, attrs := b.startTag(c)
			if !strings.EqualFold(tag, "template") || d.Template != nil {
				continue
			}
			d.Template = b.block("template", c, attrs)
			d.Root = b.element(c)
		case "script_element":
			_, attrs := b.startTag(c)
			d.Scripts = append(d.Scripts, b.rawBlock("script", c, attrs))
		case "style_element":
			_, attrs := b.startTag(c)
			d.Styles = append(d.Styles, b.rawBlock("style", c, attrs))
		}
	}
	return d, nil
}

type builder struct {
	code []byte
}

func span(n *sitter.Node) (int, int) { return int(n.StartByte()), int(n.EndByte()) }

func (b *builder) startTag(n *sitter.Node) (string, []Attr) {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		if c.Type() == "start_tag" || c.Type() == "self_closing_tag" {
			return b.tag(c)
		}
	}
	return "", nil
}

func (b *builder) tag(n *sitter.Node) (string, []Attr) {
	var name string
	var attrs []Attr
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "tag_name":
			name = c.Content(b.code)
		case "attribute":
			attrs = append(attrs, b.attr(c))
		}
	}
	return name, attrs
}

func (b *builder) attr(n *sitter.Node) Attr {
	var a Attr
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "attribute_name":
			a.Name = c.Content(b.code)
		case "attribute_value":
			a.Value, a.HasValue = c.Content(b.code), true
		case "quoted_attribute_value":
			a.HasValue = true
			for j := 0; j < int(c.NamedChildCount()); j++ {
				if v := c.NamedChild(j); v.Type() == "attribute_value" {
					a.Value = v.Content(b.code)
				}
			}
		}
	}
	return a
}

func attrMap(attrs []Attr) map[string]string {
	m := make(map[string]string, len(attrs))
	for _, a := range attrs {
		m[strings.ToLower(a.Name)] = a.Value
	}
	return m
}

// block returns the content between the start and end tags of an element.
func (b *builder) block(typ string, n *sitter.Node, attrs []Attr) *Block {
	start, end := span(n)
	contentStart, contentEnd := start, end
	for i := 0; i < int(n.NamedChildCount()); i++ {
		c := n.NamedChild(i)
		switch c.Type() {
		case "start_tag":
			contentStart = int(c.EndByte())
		case "end_tag":
			contentEnd = int(c.StartByte())
		}
	}
	if contentEnd < contentStart {
		contentEnd = contentStart
	}
	return &Block{
		Type:    typ,
		Attrs:   attrMap(attrs),
		Content: string(b.code[contentStart:contentEnd]),
		Start:   contentStart,
		End:     contentEnd,
	}
}

func (b *builder) rawBlock(typ string, n *sitter.Node, attrs []Attr) *Block {
	blk := b.block(typ, n, attrs)
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if c := n.NamedChild(i); c.Type() == "raw_text" {
			s, e := span(c)
			blk.Start, blk.End, blk.Content = s, e, string(b.code[s:e])
			break
		}
	}
	return blk
}

func (b *builder) element(n *sitter.Node) *Node {
	start, end := span(n)
	el := &Node{Type: ElementNode, Start: start, End: end}
	el.Tag, el.Attrs = b.startTag(n)
	el.Children = b.children(n, nil)
	return el
}

// children collects the template children of n. Adjacent text and entity
// nodes form one text node; error nodes are flattened into their parent.
func (b *builder) children(n *sitter.Node, out []*Node) []*Node {
	runStart, runEnd := -1, -1
	flush := func() {
		if runStart >= 0 {
			out = append(out, b.text(runStart, runEnd))
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
		case "element", "script_element", "style_element":
			out = append(out, b.element(c))
		case "ERROR":
			out = b.children(c, out)
		}
	}
	flush()
	return out
}

func (b *builder) text(start, end int) *Node {
	raw := string(b.code[start:end])
	n := &Node{Type: TextNode, Text: raw, Start: start, End: end}
	tokens := parseText(raw)
	for _, t := range tokens {
		if t.IsExpr {
			n.Type = ExpressionNode
			n.Tokens = tokens
			n.Expression = genTokens(tokens)
			break
		}
	}
	return n
}

// parseText splits raw text into static parts and {{ }} expressions. Entities
// of static parts are decoded.
func parseText(raw string) []Token {
	locs := interpolationRe.FindAllStringSubmatchIndex(raw, -1)
	if len(locs) == 0 {
		return []Token{{Static: html.UnescapeString(raw)}}
	}
	var tokens []Token
	last := 0
	for _, loc := range locs {
		if loc[0] > last {
			tokens = append(tokens, Token{Static: html.UnescapeString(raw[last:loc[0]])})
		}
		tokens = append(tokens, Token{Expr: strings.TrimSpace(raw[loc[2]:loc[3]]), IsExpr: true})
		last = loc[1]
	}
	if last < len(raw) {
		tokens = append(tokens, Token{Static: html.UnescapeString(raw[last:])})
	}
	return tokens
}
