package decorate

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/phyten/i18nscan/internal/colorutil"
	"github.com/phyten/i18nscan/internal/termcolor"
	"github.com/phyten/i18nscan/internal/textutil"
)

const gutterMark = "▌"

// View is a Buffer that renders source lines with their decorations.
type View struct {
	lines []string
	drawn []*Set
}

func NewView(code []byte) *View {
	v := &View{}
	v.SetCode(code)
	return v
}

// SetCode replaces the source text; drawn decorations are kept.
func (v *View) SetCode(code []byte) {
	text := strings.ReplaceAll(string(code), "\r\n", "\n")
	v.lines = strings.Split(text, "\n")
}

func (v *View) Clear(set *Set) {
	for i, s := range v.drawn {
		if s == set {
			v.drawn = append(v.drawn[:i], v.drawn[i+1:]...)
			return
		}
	}
}

func (v *View) Draw(set *Set) {
	v.drawn = append(v.drawn, set)
}

// Decorations returns every decoration currently drawn.
func (v *View) Decorations() []Decoration {
	var out []Decoration
	for _, s := range v.drawn {
		out = append(out, s.Decorations...)
	}
	return out
}

type RenderOptions struct {
	Color   bool
	Profile termcolor.Profile
	// Context は装飾のない行を前後何行表示するか。負数なら全行。
	Context int
}

type lineMark struct {
	start, end int // rune columns; end exclusive
	hover      string
	color      colorutil.RGB
	underline  bool
	quoted     bool
}

// Render writes numbered source lines. Decorated segments are highlighted,
// followed by a caret line carrying the hover text.
func (v *View) Render(w io.Writer, opts RenderOptions) error {
	marks := make(map[int][]lineMark)
	ruler := make(map[int]colorutil.RGB)
	for _, s := range v.drawn {
		for _, d := range s.Decorations {
			for line := d.Range.Start.Line; line <= d.Range.End.Line && line < len(v.lines); line++ {
				start, end := 0, len([]rune(v.lines[line]))
				if line == d.Range.Start.Line {
					start = d.Range.Start.Column
				}
				if line == d.Range.End.Line {
					end = d.Range.End.Column
				}
				hover := ""
				if line == d.Range.Start.Line {
					hover = d.Hover
				}
				marks[line] = append(marks[line], lineMark{start: start, end: end, hover: hover, color: s.Color, underline: s.Underline, quoted: d.Quoted})
				if s.Ruler {
					ruler[line] = s.Color
				}
			}
		}
	}

	for _, ms := range marks {
		sort.SliceStable(ms, func(i, j int) bool { return ms[i].start < ms[j].start })
	}

	numWidth := len(fmt.Sprint(len(v.lines)))
	last := -1
	for i, line := range v.lines {
		if opts.Context >= 0 && !near(marks, i, opts.Context) {
			continue
		}
		if last >= 0 && i != last+1 {
			if _, err := fmt.Fprintln(w, strings.Repeat(" ", numWidth)+" ┆"); err != nil {
				return err
			}
		}
		last = i
		gutter := " "
		if rgb, ok := ruler[i]; ok {
			gutter = termcolor.Apply(termcolor.ForegroundStyle(rgb, opts.Profile), gutterMark, opts.Color)
		}
		if _, err := fmt.Fprintf(w, "%*d %s %s\n", numWidth, i+1, gutter, paint(line, marks[i], opts)); err != nil {
			return err
		}
		for _, m := range marks[i] {
			if m.hover == "" {
				continue
			}
			lead := textutil.RuneColumnWidth(line, m.start)
			width := textutil.RuneColumnWidth(line, m.end) - lead
			if width < 1 {
				width = 1
			}
			caret := strings.Repeat(" ", numWidth+3+lead) + strings.Repeat("^", width) + " " + m.hover
			if _, err := fmt.Fprintln(w, caret); err != nil {
				return err
			}
		}
	}
	return nil
}

func paint(line string, marks []lineMark, opts RenderOptions) string {
	if !opts.Color || len(marks) == 0 {
		return line
	}
	runes := []rune(line)
	var b strings.Builder
	pos := 0
	for _, m := range marks {
		s, e := clamp(m.start, len(runes)), clamp(m.end, len(runes))
		if s < pos || s >= e {
			continue
		}
		b.WriteString(string(runes[pos:s]))
		// literals keep their own colors; the quotes already frame them
		style := termcolor.MarkStyle(m.color, opts.Profile)
		if m.quoted {
			style = termcolor.UnderlineStyle(m.color, opts.Profile)
		}
		style.Underline = style.Underline || m.underline
		b.WriteString(termcolor.Apply(style, string(runes[s:e]), true))
		pos = e
	}
	b.WriteString(string(runes[pos:]))
	return b.String()
}

func near(marks map[int][]lineMark, line, context int) bool {
	for l := line - context; l <= line+context; l++ {
		if len(marks[l]) > 0 {
			return true
		}
	}
	return false
}

func clamp(n, max int) int {
	if n < 0 {
		return 0
	}
	if n > max {
		return max
	}
	return n
}
