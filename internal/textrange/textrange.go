// Package textrange converts byte spans of a source text into line/column
// ranges that cover only the visible content of the span.
package textrange

import (
	"bytes"
	"errors"
	"fmt"
	"sort"
	"unicode"
	"unicode/utf8"

	"github.com/phyten/i18nscan/internal/model"
)

var (
	// ErrEmptySpan is returned when a span holds nothing but whitespace.
	ErrEmptySpan = errors.New("span has no visible content")
	// ErrInvalidSpan is returned for spans outside the source or with start > end.
	ErrInvalidSpan = errors.New("invalid span")
)

// Index は行頭オフセットの表を保持し、オフセットと行・桁の相互変換を行います。
type Index struct {
	code   []byte
	starts []int
}

// NewIndex builds the line table for code. Lines are separated by '\n'.
func NewIndex(code []byte) *Index {
	starts := make([]int, 0, bytes.Count(code, []byte{'\n'})+1)
	starts = append(starts, 0)
	for i, b := range code {
		if b == '\n' {
			starts = append(starts, i+1)
		}
	}
	return &Index{code: code, starts: starts}
}

// Len returns the length of the indexed source in bytes.
func (x *Index) Len() int { return len(x.code) }

// LineCount returns the number of lines, counting a trailing empty line.
func (x *Index) LineCount() int { return len(x.starts) }

// Line returns the text of line n without its terminator.
func (x *Index) Line(n int) []byte {
	if n < 0 || n >= len(x.starts) {
		return nil
	}
	s, e := x.lineBounds(n)
	return x.code[s:e]
}

func (x *Index) lineBounds(line int) (int, int) {
	s := x.starts[line]
	e := len(x.code)
	if line+1 < len(x.starts) {
		e = x.starts[line+1] - 1
	}
	return s, e
}

// locate returns the line and the byte column of offset.
func (x *Index) locate(offset int) (int, int) {
	line := sort.Search(len(x.starts), func(i int) bool { return x.starts[i] > offset }) - 1
	if line < 0 {
		line = 0
	}
	return line, offset - x.starts[line]
}

// PositionAt converts a byte offset into a zero-based line and rune column.
// Offsets outside the source are clamped.
func (x *Index) PositionAt(offset int) model.Position {
	if offset < 0 {
		offset = 0
	}
	if offset > len(x.code) {
		offset = len(x.code)
	}
	line, col := x.locate(offset)
	s := x.starts[line]
	return model.Position{Line: line, Column: utf8.RuneCount(x.code[s : s+col])}
}

// OffsetAt is the inverse of PositionAt.
func (x *Index) OffsetAt(p model.Position) int {
	if p.Line < 0 {
		return 0
	}
	if p.Line >= len(x.starts) {
		return len(x.code)
	}
	s, e := x.lineBounds(p.Line)
	off := s
	for n := 0; n < p.Column && off < e; n++ {
		_, size := utf8.DecodeRune(x.code[off:e])
		off += size
	}
	return off
}

// Normalize returns the range of [start, end) with surrounding whitespace
// removed.
//
// Every line touched by the span is clamped to the span. Lines whose clamped
// text is blank are ignored. On the remaining lines a clamped start of column 0
// moves to the first non-blank column of the line, and a clamped end at the
// end of the line moves back to the last non-blank column. The range runs
// from the first remaining line's start to the last remaining line's end.
func (x *Index) Normalize(start, end int) (model.Range, error) {
	if start < 0 || end > len(x.code) || start > end {
		return model.Range{}, fmt.Errorf("%w: [%d,%d) in %d bytes", ErrInvalidSpan, start, end, len(x.code))
	}
	sl, sc := x.locate(start)
	el, ec := x.locate(end)

	found := false
	var rng model.Range
	for line := sl; line <= el; line++ {
		ls, le := x.lineBounds(line)
		text := x.code[ls:le]
		from, to := 0, len(text)
		if line == sl {
			from = sc
		}
		if line == el {
			to = ec
		}
		if from >= to || len(bytes.TrimSpace(text[from:to])) == 0 {
			continue
		}
		if from == 0 {
			from = len(text) - len(bytes.TrimLeftFunc(text, unicode.IsSpace))
		}
		if to == len(text) {
			to = len(bytes.TrimRightFunc(text, unicode.IsSpace))
		}
		if !found {
			found = true
			rng.Start = model.Position{Line: line, Column: utf8.RuneCount(text[:from])}
		}
		rng.End = model.Position{Line: line, Column: utf8.RuneCount(text[:to])}
	}
	if !found {
		return model.Range{}, fmt.Errorf("%w: [%d,%d)", ErrEmptySpan, start, end)
	}
	return rng, nil
}

// Normalize is a shorthand for NewIndex(code).Normalize(start, end).
func Normalize(code []byte, start, end int) (model.Range, error) {
	return NewIndex(code).Normalize(start, end)
}

// TrimSpan narrows [start, end) so that it neither starts nor ends with
// whitespace. A blank span collapses to an empty span at its end.
func TrimSpan(code []byte, start, end int) (int, int) {
	for start < end {
		r, size := utf8.DecodeRune(code[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		start += size
	}
	for end > start {
		r, size := utf8.DecodeLastRune(code[start:end])
		if !unicode.IsSpace(r) {
			break
		}
		end -= size
	}
	return start, end
}
