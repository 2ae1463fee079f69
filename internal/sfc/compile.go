package sfc

import (
	"errors"
	"fmt"

	"github.com/dop251/goja"
)

// ErrTemplateSyntax is returned when the generated render function does not compile,
// which means an expression of the template is malformed.
var ErrTemplateSyntax = errors.New("sfc: template expression syntax")

// Render はテンプレートから生成した render 関数とそのコンパイル結果です。
type Render struct {
	Source  string
	Program *goja.Program
}

// Compile generates the render function for root and compiles it. The program
// is never run; compiling is what validates the template expressions.
func Compile(root *Node) (*Render, error) {
	if root == nil {
		return nil, errors.New("sfc: no template")
	}
	src := "function render(){" + Generate(root) + "}"
	prog, err := goja.Compile("render.js", src, false)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTemplateSyntax, err)
	}
	return &Render{Source: src, Program: prog}, nil
}
