package output

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode/utf8"

	"github.com/phyten/i18nscan/internal/engine"
)

type SortKey struct {
	Name string
	Desc bool
}

type SortSpec struct {
	Keys []SortKey
}

type itemCompare func(a, b *engine.Item) int

var comparators = map[string]itemCompare{
	"file":    func(a, b *engine.Item) int { return cmp.Compare(a.File, b.File) },
	"line":    func(a, b *engine.Item) int { return cmp.Compare(a.Line, b.Line) },
	"column":  func(a, b *engine.Item) int { return cmp.Compare(a.Column, b.Column) },
	"kind":    func(a, b *engine.Item) int { return cmp.Compare(a.Kind, b.Kind) },
	"grammar": func(a, b *engine.Item) int { return cmp.Compare(a.Grammar, b.Grammar) },
	"text":    func(a, b *engine.Item) int { return cmp.Compare(a.Text, b.Text) },
	"length": func(a, b *engine.Item) int {
		return cmp.Compare(utf8.RuneCountInString(a.Text), utf8.RuneCountInString(b.Text))
	},
}

// sortAliases maps a user facing name to one or more comparator keys.
var sortAliases = map[string][]string{
	"col":      {"column"},
	"type":     {"kind"},
	"location": {"file", "line", "column"},
}

var tieBreak = []SortKey{{Name: "file"}, {Name: "line"}, {Name: "column"}}

// ParseSortSpec parses "-line,+kind,location". A leading "-" sorts
// descending; "location" expands to file, line and column.
func ParseSortSpec(raw string) (SortSpec, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return SortSpec{}, nil
	}
	var spec SortSpec
	for _, part := range strings.Split(raw, ",") {
		token := strings.TrimSpace(part)
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: empty segment")
		}
		desc := false
		if c := token[0]; c == '+' || c == '-' {
			desc = c == '-'
			token = strings.TrimSpace(token[1:])
		}
		if token == "" {
			return SortSpec{}, fmt.Errorf("invalid sort key: sign without name")
		}
		name := strings.ToLower(token)
		names, ok := sortAliases[name]
		if !ok {
			if _, known := comparators[name]; !known {
				return SortSpec{}, fmt.Errorf("invalid sort key: %s", token)
			}
			names = []string{name}
		}
		for _, n := range names {
			spec.Keys = append(spec.Keys, SortKey{Name: n, Desc: desc})
		}
	}
	return spec, nil
}

// ApplySort sorts items in place; file/line/column always break ties.
func ApplySort(items []engine.Item, spec SortSpec) {
	keys := append(slices.Clone(spec.Keys), tieBreak...)
	slices.SortStableFunc(items, func(a, b engine.Item) int {
		for _, k := range keys {
			f, ok := comparators[k.Name]
			if !ok {
				continue
			}
			c := f(&a, &b)
			if c == 0 {
				continue
			}
			if k.Desc {
				return -c
			}
			return c
		}
		return 0
	})
}
