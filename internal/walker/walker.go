// Package walker は各文法（スクリプト／マークアップ／コンポーネント）の構文木をたどり、
// 翻訳されていない文字列の候補を TextSpan として返します。
package walker

import (
	"context"
	"errors"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"

	"github.com/phyten/i18nscan/internal/model"
)

// ErrParseFailure は文法パーサーが入力を受け付けなかったことを表します。
var ErrParseFailure = errors.New("parse failure")

// Walker は 1 つの文法に対応する走査器です。
type Walker interface {
	Walk(ctx context.Context, code []byte) ([]model.TextSpan, error)
}

// ParseError は構文エラーの位置（1 始まり）を保持します。
type ParseError struct {
	Grammar string
	Line    int
	Column  int
	Detail  string
}

func (e *ParseError) Error() string {
	if e.Line > 0 {
		return fmt.Sprintf("%s: syntax error at %d:%d", e.Grammar, e.Line, e.Column)
	}
	if e.Detail != "" {
		return fmt.Sprintf("%s: %s", e.Grammar, e.Detail)
	}
	return e.Grammar + ": syntax error"
}

func (e *ParseError) Unwrap() error { return ErrParseFailure }

func parse(ctx context.Context, lang *sitter.Language, src []byte) (*sitter.Tree, error) {
	p := sitter.NewParser()
	defer p.Close()
	p.SetLanguage(lang)
	return p.ParseCtx(ctx, nil, src)
}

// parseFailed converts an error from the parser itself. Cancellation wins over
// a parse failure.
func parseFailed(ctx context.Context, grammar string, err error) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return ctxErr
	}
	return &ParseError{Grammar: grammar, Detail: err.Error()}
}

// syntaxError locates the first error or missing node below root.
func syntaxError(grammar string, root *sitter.Node) *ParseError {
	pe := &ParseError{Grammar: grammar}
	if n := firstErrorNode(root); n != nil {
		p := n.StartPoint()
		pe.Line = int(p.Row) + 1
		pe.Column = int(p.Column) + 1
	}
	return pe
}

func firstErrorNode(n *sitter.Node) *sitter.Node {
	if n == nil {
		return nil
	}
	if n.Type() == "ERROR" || n.IsMissing() {
		return n
	}
	if !n.HasError() {
		return nil
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if found := firstErrorNode(n.Child(i)); found != nil {
			return found
		}
	}
	return nil
}

func bounds(n *sitter.Node) (int, int) { return int(n.StartByte()), int(n.EndByte()) }
