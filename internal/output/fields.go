package output

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/phyten/i18nscan/internal/engine"
)

type Field struct {
	Key    string
	Header string
}

type FieldSelection struct {
	Fields  []Field
	ShowURL bool
	NeedURL bool
}

type fieldMeta struct {
	header string
	isURL  bool
}

var fieldRegistry = map[string]fieldMeta{
	"file":     {header: "FILE"},
	"line":     {header: "LINE"},
	"column":   {header: "COL"},
	"col":      {header: "COL"},
	"location": {header: "LOCATION"},
	"kind":     {header: "KIND"},
	"type":     {header: "KIND"},
	"grammar":  {header: "GRAMMAR"},
	"quoted":   {header: "QUOTED"},
	"text":     {header: "TEXT"},
	"start":    {header: "START"},
	"end":      {header: "END"},
	"range":    {header: "RANGE"},
	"url":      {header: "URL", isURL: true},
}

var fieldAliases = map[string]string{
	"col":  "column",
	"type": "kind",
}

// ResolveFields parses a comma separated field list. An empty list yields
// location,kind,text plus url when links were requested.
func ResolveFields(raw string, withURL bool) (FieldSelection, error) {
	raw = strings.TrimSpace(raw)
	sel := FieldSelection{}
	if raw == "" {
		keys := []string{"location", "kind", "text"}
		if withURL {
			keys = append(keys, "url")
		}
		sel.Fields = make([]Field, 0, len(keys))
		for _, key := range keys {
			sel.Fields = append(sel.Fields, Field{Key: key, Header: fieldRegistry[key].header})
		}
		sel.ShowURL = withURL
		sel.NeedURL = withURL
		return sel, nil
	}

	parts := strings.Split(raw, ",")
	sel.Fields = make([]Field, 0, len(parts))
	for _, part := range parts {
		name := strings.TrimSpace(part)
		if name == "" {
			return FieldSelection{}, fmt.Errorf("invalid fields: empty entry")
		}
		key := strings.ToLower(name)
		meta, ok := fieldRegistry[key]
		if !ok {
			return FieldSelection{}, fmt.Errorf("unknown field: %s", name)
		}
		if canonical, ok := fieldAliases[key]; ok {
			key = canonical
		}
		sel.Fields = append(sel.Fields, Field{Key: key, Header: meta.header})
		if meta.isURL {
			sel.ShowURL = true
		}
	}
	sel.NeedURL = withURL || sel.ShowURL
	return sel, nil
}

func Headers(fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = f.Header
	}
	return out
}

func RowValues(it engine.Item, fields []Field) []string {
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = FormatFieldValue(it, f.Key)
	}
	return out
}

func FormatFieldValue(it engine.Item, key string) string {
	switch key {
	case "file":
		return it.File
	case "line":
		return strconv.Itoa(it.Line)
	case "column":
		return strconv.Itoa(it.Column)
	case "location":
		return fmt.Sprintf("%s:%d:%d", it.File, it.Line, it.Column)
	case "kind":
		return string(it.Kind)
	case "grammar":
		return string(it.Grammar)
	case "quoted":
		return strconv.FormatBool(it.Quoted)
	case "text":
		return it.Text
	case "start":
		return strconv.Itoa(it.Start)
	case "end":
		return strconv.Itoa(it.End)
	case "range":
		r := it.Range
		return fmt.Sprintf("%d:%d-%d:%d", r.Start.Line+1, r.Start.Column+1, r.End.Line+1, r.End.Column+1)
	case "url":
		return it.URL
	default:
		return ""
	}
}
