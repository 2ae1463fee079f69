package watch

import (
	"fmt"
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/phyten/i18nscan/internal/model"
)

// FormatReport renders one line per match: "line:col kind text".
func FormatReport(matches []model.Match) string {
	var b strings.Builder
	for _, m := range matches {
		text := strings.ReplaceAll(strings.TrimSpace(m.Text), "\n", `\n`)
		fmt.Fprintf(&b, "%d:%d %s %s\n", m.Range.Start.Line+1, m.Range.Start.Column+1, m.Kind, text)
	}
	return b.String()
}

// DiffReports returns a line oriented diff of two reports, "+"/"-" prefixed.
// Unchanged lines are omitted; the result is empty when nothing changed.
func DiffReports(prev, next string) string {
	if prev == next {
		return ""
	}
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(prev, next)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out strings.Builder
	for _, d := range diffs {
		var prefix string
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			prefix = "+ "
		case diffmatchpatch.DiffDelete:
			prefix = "- "
		default:
			continue
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out.WriteString(prefix)
			out.WriteString(strings.TrimSuffix(line, "\n"))
			out.WriteByte('\n')
		}
	}
	return out.String()
}
