package output

import (
	"fmt"
	"io"
	"strings"

	"github.com/phyten/i18nscan/internal/engine"
	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/termcolor"
	"github.com/phyten/i18nscan/internal/textutil"
)

// TableStyle はテーブル出力の装飾設定です。
type TableStyle struct {
	Color   bool
	Scheme  termcolor.Scheme
	Profile termcolor.Profile
	// MaxTextWidth は TEXT 列の表示幅の上限（0 は無制限）。
	MaxTextWidth int
}

// WriteTable aligns columns by display width, so CJK text lines up.
func WriteTable(w io.Writer, items []engine.Item, sel FieldSelection, style TableStyle) error {
	headers := Headers(sel.Fields)
	rows := make([][]string, 0, len(items))
	for _, it := range items {
		row := RowValues(it, sel.Fields)
		for i, f := range sel.Fields {
			row[i] = singleLine(row[i])
			if f.Key == "text" && style.MaxTextWidth > 0 {
				row[i] = textutil.TruncateByWidth(row[i], style.MaxTextWidth, "…")
			}
		}
		rows = append(rows, row)
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = textutil.VisibleWidth(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if cw := textutil.VisibleWidth(cell); cw > widths[i] {
				widths[i] = cw
			}
		}
	}

	header := make([]string, len(headers))
	for i, h := range headers {
		header[i] = pad(termcolor.Apply(termcolor.HeaderStyle(), h, style.Color), widths[i], "", i == len(headers)-1)
	}
	if _, err := fmt.Fprintln(w, strings.Join(header, "  ")); err != nil {
		return err
	}
	for r, row := range rows {
		cells := make([]string, len(row))
		for i, cell := range row {
			if sel.Fields[i].Key == "kind" {
				cell = termcolor.Apply(termcolor.KindStyle(items[r].Kind, style.Scheme, style.Profile), cell, style.Color)
			}
			cells[i] = pad(cell, widths[i], sel.Fields[i].Key, i == len(row)-1)
		}
		if _, err := fmt.Fprintln(w, strings.Join(cells, "  ")); err != nil {
			return err
		}
	}
	return nil
}

var numericFields = map[string]bool{"line": true, "column": true, "start": true, "end": true}

func pad(s string, w int, key string, last bool) string {
	if numericFields[key] {
		return textutil.PadLeft(s, w)
	}
	if last {
		return s
	}
	return textutil.PadRight(s, w)
}

// Summary は件数の 1 行サマリーです。
func Summary(res *engine.Result) string {
	byKind := map[model.SpanKind]int{}
	for _, it := range res.Items {
		byKind[it.Kind]++
	}
	var parts []string
	for _, k := range []model.SpanKind{model.KindString, model.KindTemplate, model.KindJSXText, model.KindText, model.KindAttribute, model.KindInterpolation, model.KindExpression, model.KindRender} {
		if n := byKind[k]; n > 0 {
			parts = append(parts, fmt.Sprintf("%s=%d", k, n))
		}
	}
	s := fmt.Sprintf("%d untranslated in %d files", res.Total, res.Files)
	if len(parts) > 0 {
		s += " (" + strings.Join(parts, " ") + ")"
	}
	if res.ErrorCount > 0 {
		s += fmt.Sprintf(", %d errors", res.ErrorCount)
	}
	return s
}

func singleLine(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	s = strings.ReplaceAll(s, "\r", " ")
	return strings.ReplaceAll(s, "\n", " ")
}
