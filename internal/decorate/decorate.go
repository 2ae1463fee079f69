// Package decorate は検出結果を端末上の装飾（下線・ガター・ホバー文言）に変換します。
package decorate

import (
	"strings"

	"github.com/phyten/i18nscan/internal/colorutil"
	"github.com/phyten/i18nscan/internal/model"
)

// Setting keys looked up through Settings.
const (
	KeyEnabled            = "highlight.enabled"
	KeyMarkStringLiterals = "highlight.mark_string_literals"
	KeyShowOverviewRuler  = "highlight.show_overview_ruler"
	KeyColor              = "highlight.color"
)

const hoverPrefix = "Untranslated text found: "

// Settings is a flat key lookup; *viper.Viper satisfies it.
type Settings interface {
	GetBool(key string) bool
	GetString(key string) string
}

// Decoration は 1 件分の装飾です。
type Decoration struct {
	Range  model.Range
	Text   string
	Quoted bool
	Hover  string
}

// Set is what one Apply call drew. The zero value draws nothing.
type Set struct {
	Decorations []Decoration
	Underline   bool
	Ruler       bool
	Color       colorutil.RGB
}

func (s *Set) Len() int {
	if s == nil {
		return 0
	}
	return len(s.Decorations)
}

// Buffer receives decorations. Clear must remove everything a previous Draw
// added for the given set.
type Buffer interface {
	Clear(set *Set)
	Draw(set *Set)
}

// Hover returns the hover message shown for text.
func Hover(text string) string {
	return hoverPrefix + strings.TrimSpace(text)
}

// Build turns matches into a decoration set without touching any buffer.
// Nothing is produced unless both highlight.enabled and
// highlight.mark_string_literals are on.
func Build(matches []model.Match, s Settings) (*Set, error) {
	set := &Set{}
	if s == nil || !s.GetBool(KeyEnabled) || !s.GetBool(KeyMarkStringLiterals) {
		return set, nil
	}
	rgb, err := colorutil.ParseHex(s.GetString(KeyColor))
	if err != nil {
		return nil, err
	}
	set.Underline = true
	set.Ruler = s.GetBool(KeyShowOverviewRuler)
	set.Color = rgb
	set.Decorations = make([]Decoration, 0, len(matches))
	for _, m := range matches {
		set.Decorations = append(set.Decorations, Decoration{Range: m.Range, Text: m.Text, Quoted: m.Quoted, Hover: Hover(m.Text)})
	}
	return set, nil
}

// Apply clears previous from buf, then draws the decorations for matches.
// The returned set is the caller's previous for the next call.
func Apply(buf Buffer, matches []model.Match, previous *Set, s Settings) (*Set, error) {
	if previous != nil {
		buf.Clear(previous)
	}
	set, err := Build(matches, s)
	if err != nil {
		return nil, err
	}
	if set.Len() > 0 {
		buf.Draw(set)
	}
	return set, nil
}
