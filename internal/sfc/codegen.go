package sfc

import (
	"bytes"
	"encoding/json"
	"html"
	"regexp"
	"strings"
)

var (
	forAliasRe   = regexp.MustCompile(`^([\s\S]*?)\s+(?:in|of)\s+([\s\S]*)$`)
	simplePathRe = regexp.MustCompile(`^[A-Za-z_$][\w$]*(?:\.[A-Za-z_$][\w$]*|\['[^']*?']|\["[^"]*?"]|\[\d+]|\[[A-Za-z_$][\w$]*])*$`)
	fnExpRe      = regexp.MustCompile(`^([\w$_]+|\([^)]*?\))\s*=>|^function(?:\s+[\w$]+)?\s*\(`)
)

// Generate returns the render function body for root: a with(this) block
// returning the element tree built from _c/_v/_s/_l/_e helper calls.
func Generate(root *Node) string {
	var g gen
	return "with(this){return " + g.element(root) + "}"
}

type gen struct{}

// jsString encodes s as a double-quoted JavaScript string literal.
func jsString(s string) string {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	_ = enc.Encode(s)
	return strings.TrimSuffix(buf.String(), "\n")
}

// genTokens builds the expression of a text node: static parts as string
// literals and interpolations wrapped in _s().
func genTokens(tokens []Token) string {
	parts := make([]string, 0, len(tokens))
	for _, t := range tokens {
		if t.IsExpr {
			parts = append(parts, "_s("+t.Expr+")")
			continue
		}
		if t.Static == "" {
			continue
		}
		parts = append(parts, jsString(t.Static))
	}
	return strings.Join(parts, "+")
}

type directive struct {
	name      string
	rawName   string
	arg       string
	modifiers []string
	value     string
}

// element is an element with its special attributes pulled out.
type element struct {
	node    *Node
	forExp  string
	ifExp   string
	elseIf  string
	isElse  bool
	hasIf   bool
	slot    *directive
	attrs   []string
	bound   []directive
	events  []directive
	dirs    []directive
	domProp []string
	key     string
	ref     string
	klass   string
	style   string
	spread  string
}

func splitDirective(name string) (base, arg string, mods []string) {
	parts := strings.Split(name, ".")
	base = parts[0]
	mods = parts[1:]
	if i := strings.IndexByte(base, ':'); i >= 0 {
		base, arg = base[:i], base[i+1:]
	}
	return base, arg, mods
}

func classify(n *Node) *element {
	el := &element{node: n}
	for _, a := range n.Attrs {
		name := a.Name
		switch {
		case name == "v-for":
			el.forExp = a.Value
		case name == "v-if":
			el.ifExp, el.hasIf = a.Value, true
		case name == "v-else-if":
			el.elseIf = a.Value
		case name == "v-else":
			el.isElse = true
		case name == "v-once", name == "v-pre", name == "v-cloak":
		case name == "v-html":
			el.domProp = append(el.domProp, `"innerHTML":_s(`+a.Value+`)`)
		case name == "v-text":
			el.domProp = append(el.domProp, `"textContent":_s(`+a.Value+`)`)
		case name == "slot-scope", name == "scope":
			el.slot = &directive{name: "slot", arg: "default", value: a.Value}
		case strings.HasPrefix(name, "#"), name == "v-slot", strings.HasPrefix(name, "v-slot:"):
			arg := strings.TrimPrefix(strings.TrimPrefix(name, "#"), "v-slot")
			arg = strings.TrimPrefix(arg, ":")
			if arg == "" {
				arg = "default"
			}
			el.slot = &directive{name: "slot", arg: arg, value: a.Value}
		case strings.HasPrefix(name, "@"), strings.HasPrefix(name, "v-on:"):
			base := strings.TrimPrefix(strings.TrimPrefix(name, "@"), "v-on:")
			evt, _, mods := splitDirective(base)
			el.events = append(el.events, directive{name: evt, modifiers: mods, value: a.Value})
		case strings.HasPrefix(name, ":"), strings.HasPrefix(name, "v-bind:"), name == "v-bind":
			base := strings.TrimPrefix(strings.TrimPrefix(name, "v-bind"), ":")
			prop, _, _ := splitDirective(base)
			switch prop {
			case "":
				el.spread = a.Value
			case "key":
				el.key = "(" + a.Value + ")"
			case "class":
				el.klass = a.Value
			case "style":
				el.style = a.Value
			default:
				el.bound = append(el.bound, directive{name: prop, value: a.Value})
			}
		case strings.HasPrefix(name, "v-"):
			base, arg, mods := splitDirective(strings.TrimPrefix(name, "v-"))
			el.dirs = append(el.dirs, directive{name: base, rawName: name, arg: arg, modifiers: mods, value: a.Value})
		case name == "key":
			el.key = jsString(a.Value)
		case name == "ref":
			el.ref = jsString(a.Value)
		default:
			el.attrs = append(el.attrs, jsString(name)+":"+jsString(html.UnescapeString(a.Value)))
		}
	}
	return el
}

func (g *gen) element(n *Node) string {
	return g.classified(classify(n))
}

func (g *gen) classified(el *element) string {
	if el.forExp != "" {
		exp := el.forExp
		el.forExp = ""
		return g.genFor(exp, el)
	}
	if el.hasIf {
		cond := el.ifExp
		el.hasIf = false
		return "(" + cond + ")?" + g.classified(el) + ":_e()"
	}
	return g.plain(el)
}

func (g *gen) genFor(exp string, el *element) string {
	m := forAliasRe.FindStringSubmatch(strings.TrimSpace(exp))
	if m == nil {
		// keep the broken expression so that compilation reports it
		return "_l((" + exp + "),function(){return " + g.classified(el) + "})"
	}
	alias := strings.TrimSpace(m[1])
	alias = strings.TrimSuffix(strings.TrimPrefix(alias, "("), ")")
	return "_l((" + strings.TrimSpace(m[2]) + "),function(" + alias + "){return " + g.classified(el) + "})"
}

func (g *gen) plain(el *element) string {
	n := el.node
	var children string
	if el.slot == nil {
		children = g.children(n.Children)
	}
	data := g.data(el)
	var b strings.Builder
	b.WriteString("_c(")
	b.WriteString(jsString(n.Tag))
	if data != "" {
		b.WriteString(",")
		b.WriteString(data)
	}
	if children != "" {
		b.WriteString(",")
		b.WriteString(children)
	}
	b.WriteString(")")
	return b.String()
}

func (g *gen) data(el *element) string {
	var fields []string
	if el.key != "" {
		fields = append(fields, "key:"+el.key)
	}
	if el.ref != "" {
		fields = append(fields, "ref:"+el.ref)
	}
	if len(el.dirs) > 0 {
		ds := make([]string, 0, len(el.dirs))
		for _, d := range el.dirs {
			if d.name == "model" {
				fields = append(fields, "model:{value:("+d.value+"),callback:function ($$v) {"+d.value+"=$$v},expression:"+jsString(d.value)+"}")
				continue
			}
			s := "{name:" + jsString(d.name) + ",rawName:" + jsString(d.rawName)
			if d.value != "" {
				s += ",value:(" + d.value + "),expression:" + jsString(d.value)
			}
			if d.arg != "" {
				s += ",arg:" + jsString(d.arg)
			}
			if len(d.modifiers) > 0 {
				s += ",modifiers:{" + modifiers(d.modifiers) + "}"
			}
			ds = append(ds, s+"}")
		}
		if len(ds) > 0 {
			fields = append(fields, "directives:["+strings.Join(ds, ",")+"]")
		}
	}
	for _, a := range el.node.Attrs {
		switch a.Name {
		case "class":
			fields = append(fields, "staticClass:"+jsString(a.Value))
		case "style":
			fields = append(fields, "staticStyle:"+jsString(a.Value))
		}
	}
	if el.klass != "" {
		fields = append(fields, "class:("+el.klass+")")
	}
	if el.style != "" {
		fields = append(fields, "style:("+el.style+")")
	}
	attrs := make([]string, 0, len(el.attrs)+len(el.bound))
	for _, a := range el.attrs {
		if strings.HasPrefix(a, `"class":`) || strings.HasPrefix(a, `"style":`) {
			continue
		}
		attrs = append(attrs, a)
	}
	for _, d := range el.bound {
		attrs = append(attrs, jsString(d.name)+":("+d.value+")")
	}
	if len(attrs) > 0 {
		fields = append(fields, "attrs:{"+strings.Join(attrs, ",")+"}")
	}
	if len(el.domProp) > 0 {
		fields = append(fields, "domProps:{"+strings.Join(el.domProp, ",")+"}")
	}
	if on, native := g.handlers(el.events); on != "" || native != "" {
		if on != "" {
			fields = append(fields, "on:{"+on+"}")
		}
		if native != "" {
			fields = append(fields, "nativeOn:{"+native+"}")
		}
	}
	if el.slot != nil {
		param := strings.TrimSpace(el.slot.value)
		if param == "" {
			param = "_empty_"
		}
		fields = append(fields, "scopedSlots:_u([{key:"+jsString(el.slot.arg)+",fn:function("+param+"){return "+g.childArray(el.node.Children)+"}}])")
	}
	if len(fields) == 0 && el.spread == "" {
		return ""
	}
	data := "{" + strings.Join(fields, ",") + "}"
	if el.spread != "" {
		data = "_b(" + data + "," + jsString(el.node.Tag) + ",(" + el.spread + "),false)"
	}
	return data
}

func modifiers(mods []string) string {
	out := make([]string, len(mods))
	for i, m := range mods {
		out[i] = jsString(m) + ":true"
	}
	return strings.Join(out, ",")
}

func (g *gen) handlers(events []directive) (on, native string) {
	var plain, nat []string
	for _, e := range events {
		entry := jsString(e.name) + ":" + handler(e.value)
		isNative := false
		for _, m := range e.modifiers {
			if m == "native" {
				isNative = true
			}
		}
		if isNative {
			nat = append(nat, entry)
		} else {
			plain = append(plain, entry)
		}
	}
	return strings.Join(plain, ","), strings.Join(nat, ",")
}

// handler keeps method paths and function expressions as they are and wraps
// inline statements into a function of $event.
func handler(value string) string {
	v := strings.TrimSpace(value)
	if v == "" {
		return "function(){}"
	}
	if simplePathRe.MatchString(v) || fnExpRe.MatchString(v) {
		return v
	}
	return "function($event){" + v + "}"
}

func (g *gen) childArray(children []*Node) string {
	if s := g.children(children); s != "" {
		return s
	}
	return "[]"
}

// children builds the child array. v-if/v-else-if/v-else siblings form one
// conditional expression.
func (g *gen) children(children []*Node) string {
	if len(children) == 0 {
		return ""
	}
	parts := make([]string, 0, len(children))
	for i := 0; i < len(children); i++ {
		c := children[i]
		switch c.Type {
		case TextNode:
			parts = append(parts, "_v("+jsString(c.staticText())+")")
			continue
		case ExpressionNode:
			parts = append(parts, "_v("+c.Expression+")")
			continue
		}
		el := classify(c)
		if !el.hasIf {
			parts = append(parts, g.classified(el))
			continue
		}
		chain := g.ifBranch(el)
		for i+1 < len(children) && children[i+1].Type == ElementNode {
			next := classify(children[i+1])
			if next.elseIf == "" && !next.isElse {
				break
			}
			i++
			if next.isElse {
				chain += g.classified(next)
				break
			}
			cond := next.elseIf
			next.elseIf = ""
			chain += "(" + cond + ")?" + g.classified(next) + ":"
		}
		if strings.HasSuffix(chain, ":") {
			chain += "_e()"
		}
		parts = append(parts, chain)
	}
	return "[" + strings.Join(parts, ",") + "]"
}

func (g *gen) ifBranch(el *element) string {
	cond := el.ifExp
	el.hasIf = false
	return "(" + cond + ")?" + g.classified(el) + ":"
}

func (n *Node) staticText() string { return html.UnescapeString(n.Text) }
