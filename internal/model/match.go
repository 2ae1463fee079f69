package model

// SpanKind は検出したテキストの出どころ（文字列リテラル／マークアップのテキストなど）を表します。
type SpanKind string

const (
	KindString        SpanKind = "string"
	KindTemplate      SpanKind = "template"
	KindJSXText       SpanKind = "jsx_text"
	KindText          SpanKind = "text"
	KindAttribute     SpanKind = "attribute"
	KindInterpolation SpanKind = "interpolation"
	KindExpression    SpanKind = "expression"
	KindRender        SpanKind = "render"
)

// TextSpan はウォーカーが返す 1 件の候補です。Start/End はソース先頭からのバイトオフセット
// （End は排他的）で、Text は区切り文字を除いた本文です。
type TextSpan struct {
	Start  int      `json:"start"`
	End    int      `json:"end"`
	Text   string   `json:"text"`
	Quoted bool     `json:"quoted"`
	Kind   SpanKind `json:"kind"`
}

// Position は 0 始まりの行と桁です。桁は Unicode コードポイント単位で数えます。
type Position struct {
	Line   int `json:"line"`
	Column int `json:"column"`
}

// Range は空白を除いた本文の範囲です。End は排他的です。
type Range struct {
	Start Position `json:"start"`
	End   Position `json:"end"`
}

// Match は正規化済みの検出結果 1 件を表します。
type Match struct {
	TextSpan
	Range Range `json:"range"`
}

// Bounds returns the byte offsets of the span.
func (s TextSpan) Bounds() (int, int) { return s.Start, s.End }
