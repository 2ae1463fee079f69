package textutil

import (
	"regexp"
	"strings"

	"github.com/mattn/go-runewidth"
	"github.com/rivo/uniseg"
)

// escapeRe matches CSI sequences and OSC sequences terminated by BEL or ST.
var escapeRe = regexp.MustCompile(`\x1b\[[0-?]*[ -/]*[@-~]|\x1b\][^\x07\x1b]*(?:\x07|\x1b\\)`)

// StripANSI removes terminal escape sequences.
func StripANSI(s string) string {
	if strings.IndexByte(s, 0x1b) < 0 {
		return s
	}
	return escapeRe.ReplaceAllString(s, "")
}

// VisibleWidth は端末上の表示幅です。エスケープシーケンスは数えず、
// 書記素クラスタ単位で幅を求めます。
func VisibleWidth(s string) int {
	w := 0
	eachCluster(StripANSI(s), func(_ string, cw int) bool {
		w += cw
		return true
	})
	return w
}

// RuneColumnWidth returns the display width of the first col runes of line,
// which is where a marker for rune column col starts on screen.
func RuneColumnWidth(line string, col int) int {
	if col <= 0 {
		return 0
	}
	for i := range line {
		if col == 0 {
			return VisibleWidth(line[:i])
		}
		col--
	}
	return VisibleWidth(line)
}

// TruncateByWidth cuts s to at most w cells without splitting a cluster. When
// something is dropped, ellipsis is appended if it still fits.
func TruncateByWidth(s string, w int, ellipsis string) string {
	if w <= 0 || s == "" {
		return ""
	}
	if VisibleWidth(s) <= w {
		return s
	}
	budget := w - runewidth.StringWidth(ellipsis)
	if budget < 0 {
		budget, ellipsis = w, ""
	}
	var b strings.Builder
	used := 0
	eachCluster(StripANSI(s), func(c string, cw int) bool {
		if used+cw > budget {
			return false
		}
		b.WriteString(c)
		used += cw
		return true
	})
	return b.String() + ellipsis
}

// PadRight pads s with trailing spaces up to w cells.
func PadRight(s string, w int) string { return s + fill(s, w) }

// PadLeft pads s with leading spaces up to w cells.
func PadLeft(s string, w int) string { return fill(s, w) + s }

func fill(s string, w int) string {
	if n := w - VisibleWidth(s); n > 0 {
		return strings.Repeat(" ", n)
	}
	return ""
}

// eachCluster calls fn for every grapheme cluster until fn returns false.
// Widths come from runewidth so that its East Asian setting applies.
func eachCluster(s string, fn func(cluster string, width int) bool) {
	state := -1
	var c string
	for s != "" {
		c, s, _, state = uniseg.FirstGraphemeClusterInString(s, state)
		if !fn(c, runewidth.StringWidth(c)) {
			return
		}
	}
}
