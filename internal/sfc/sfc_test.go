package sfc

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const sample = "<template>\n  <div class=\"box\" :title=\"tip\" @click=\"go(1)\">\n    <p v-if=\"ok\">{{ `问候` }}</p>\n    <p v-else>再见</p>\n    <li v-for=\"(item, i) in items\" :key=\"i\">{{ item }}</li>\n  </div>\n</template>\n\n<script lang=\"ts\">\nexport default { data() { return { msg: \"你好\" } } }\n</script>\n\n<style scoped>\n.box { color: red; }\n</style>\n"

func TestParseブロック分割(t *testing.T) {
	d, err := Parse(context.Background(), []byte(sample))
	require.NoError(t, err)
	require.NotNil(t, d.Template)
	require.NotNil(t, d.Root)
	require.Len(t, d.Scripts, 1)
	require.Len(t, d.Styles, 1)

	script := d.Scripts[0]
	require.Equal(t, "ts", script.Lang())
	require.Equal(t, script.Content, sample[script.Start:script.End])
	require.Contains(t, script.Content, `msg: "你好"`)

	require.Equal(t, "template", d.Root.Tag)
	require.Equal(t, d.Template.Content, sample[d.Template.Start:d.Template.End])
}

func TestParseExpressionNode(t *testing.T) {
	d, err := Parse(context.Background(), []byte(sample))
	require.NoError(t, err)

	var exprs []*Node
	var walk func(n *Node)
	walk = func(n *Node) {
		if n.Type == ExpressionNode {
			exprs = append(exprs, n)
		}
		for _, c := range n.Children {
			walk(c)
		}
	}
	walk(d.Root)
	require.NotEmpty(t, exprs)
	first := exprs[0]
	require.Equal(t, "{{ `问候` }}", first.Text)
	require.Equal(t, first.Text, sample[first.Start:first.End])
	require.Equal(t, "_s(`问候`)", first.Expression)
}

func TestParseText(t *testing.T) {
	tokens := parseText("你好 {{ name }}！&amp;")
	require.Equal(t, []Token{
		{Static: "你好 "},
		{Expr: "name", IsExpr: true},
		{Static: "！&"},
	}, tokens)
	require.Equal(t, `"你好 "+_s(name)+"！&"`, genTokens(tokens))
}

func TestCompile(t *testing.T) {
	d, err := Parse(context.Background(), []byte(sample))
	require.NoError(t, err)
	r, err := Compile(d.Root)
	require.NoError(t, err)
	require.NotNil(t, r.Program)
	require.True(t, strings.HasPrefix(r.Source, "function render(){with(this){return _c(\"template\""))
	require.Contains(t, r.Source, `_v("再见")`)
	require.Contains(t, r.Source, `_l((items),function(item, i){return`)
	require.Contains(t, r.Source, `(ok)?_c("p",[_v(_s(`+"`问候`"+`))]):_c("p",[_v("再见")])`)
	require.Contains(t, r.Source, `on:{"click":function($event){go(1)}}`)
	require.Contains(t, r.Source, `staticClass:"box"`)
}

func TestCompile壊れた式はエラー(t *testing.T) {
	d, err := Parse(context.Background(), []byte("<template><p>{{ a + }}</p></template>"))
	require.NoError(t, err)
	_, err = Compile(d.Root)
	require.True(t, errors.Is(err, ErrTemplateSyntax), "err = %v", err)
}

func TestHandler(t *testing.T) {
	require.Equal(t, "onSave", handler("onSave"))
	require.Equal(t, "() => save()", handler("() => save()"))
	require.Equal(t, "function($event){count++}", handler("count++"))
}
