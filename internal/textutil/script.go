package textutil

import (
	"regexp"
	"unicode/utf8"
)

// targetRunRe matches a maximal run of characters outside Latin-1.
var targetRunRe = regexp.MustCompile(`[^\x00-\xff]+`)

// IsTarget reports whether r lies outside the Latin-1 range.
func IsTarget(r rune) bool { return r > 0xff }

// ContainsTarget reports whether s holds at least one character outside Latin-1.
func ContainsTarget(s string) bool {
	for _, r := range s {
		if IsTarget(r) {
			return true
		}
	}
	return false
}

// ContainsTargetBytes is ContainsTarget for raw file contents. Invalid
// sequences are skipped.
func ContainsTargetBytes(b []byte) bool {
	for i := 0; i < len(b); {
		c := b[i]
		if c < utf8.RuneSelf {
			i++
			continue
		}
		r, size := utf8.DecodeRune(b[i:])
		if size > 1 && IsTarget(r) {
			return true
		}
		i += size
	}
	return false
}

// TargetRuns returns every maximal run of non-Latin-1 characters in s.
func TargetRuns(s string) []string {
	return targetRunRe.FindAllString(s, -1)
}
