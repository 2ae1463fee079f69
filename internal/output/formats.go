package output

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/phyten/i18nscan/internal/engine"
)

type writeFunc func(w io.Writer, res *engine.Result, sel FieldSelection, style TableStyle) error

var formats = map[string]writeFunc{
	"table": func(w io.Writer, res *engine.Result, sel FieldSelection, style TableStyle) error {
		return WriteTable(w, res.Items, sel, style)
	},
	"tsv": func(w io.Writer, res *engine.Result, sel FieldSelection, _ TableStyle) error {
		return WriteTSV(w, res.Items, sel)
	},
	"csv": func(w io.Writer, res *engine.Result, sel FieldSelection, _ TableStyle) error {
		return WriteCSV(w, res.Items, sel)
	},
	"markdown": func(w io.Writer, res *engine.Result, sel FieldSelection, _ TableStyle) error {
		return WriteMarkdownTable(w, res.Items, sel)
	},
	"json": func(w io.Writer, res *engine.Result, _ FieldSelection, _ TableStyle) error {
		return WriteJSON(w, res)
	},
	"ndjson": func(w io.Writer, res *engine.Result, _ FieldSelection, _ TableStyle) error {
		return WriteNDJSON(w, res.Items)
	},
}

// Formats lists the names accepted by Write.
func Formats() []string {
	names := make([]string, 0, len(formats))
	for name := range formats {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Write dispatches on a format already normalized by NormalizeOutput.
// An empty format is the table.
func Write(w io.Writer, format string, res *engine.Result, sel FieldSelection, style TableStyle) error {
	if format == "" {
		format = "table"
	}
	fn, ok := formats[format]
	if !ok {
		return fmt.Errorf("unsupported output format: %s", format)
	}
	return fn(w, res, sel, style)
}

// eachRow emits the header followed by one row per item, with clean applied
// to every cell.
func eachRow(items []engine.Item, sel FieldSelection, clean func(string) string, emit func([]string) error) error {
	if err := emit(Headers(sel.Fields)); err != nil {
		return err
	}
	for _, it := range items {
		row := RowValues(it, sel.Fields)
		if clean != nil {
			for i := range row {
				row[i] = clean(row[i])
			}
		}
		if err := emit(row); err != nil {
			return err
		}
	}
	return nil
}

// WriteTSV writes tab separated rows; tabs and newlines inside cells become
// spaces.
func WriteTSV(w io.Writer, items []engine.Item, sel FieldSelection) error {
	return eachRow(items, sel, func(s string) string {
		return strings.ReplaceAll(singleLine(s), "\t", " ")
	}, func(row []string) error {
		_, err := io.WriteString(w, strings.Join(row, "\t")+"\n")
		return err
	})
}

// WriteCSV renders RFC 4180 CSV with CRLF line endings. Cells keep their
// newlines; the csv writer quotes them.
func WriteCSV(w io.Writer, items []engine.Item, sel FieldSelection) error {
	cw := csv.NewWriter(w)
	cw.UseCRLF = true
	if err := eachRow(items, sel, nil, cw.Write); err != nil {
		return err
	}
	cw.Flush()
	return cw.Error()
}

var markdownCell = strings.NewReplacer("\r\n", "<br>", "\n", "<br>", "\r", "", "|", `\|`)

// WriteMarkdownTable renders a GitHub Flavored Markdown table. Numeric
// columns are right aligned.
func WriteMarkdownTable(w io.Writer, items []engine.Item, sel FieldSelection) error {
	first := true
	return eachRow(items, sel, markdownCell.Replace, func(row []string) error {
		line := "| " + strings.Join(row, " | ") + " |\n"
		if first {
			first = false
			line += markdownRule(sel.Fields)
		}
		_, err := io.WriteString(w, line)
		return err
	})
}

func markdownRule(fields []Field) string {
	cols := make([]string, len(fields))
	for i, f := range fields {
		cols[i] = "---"
		if numericFields[f.Key] {
			cols[i] = "---:"
		}
	}
	return "| " + strings.Join(cols, " | ") + " |\n"
}

func newEncoder(w io.Writer) *json.Encoder {
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	return enc
}

// WriteJSON writes the whole result as an indented document.
func WriteJSON(w io.Writer, res *engine.Result) error {
	enc := newEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(res)
}

// WriteNDJSON streams one item per line.
func WriteNDJSON(w io.Writer, items []engine.Item) error {
	enc := newEncoder(w)
	for _, it := range items {
		if err := enc.Encode(it); err != nil {
			return err
		}
	}
	return nil
}
