package walker

import (
	"bytes"
	"strconv"
	"strings"
	"unicode/utf16"
	"unicode/utf8"
)

// decodeJSString resolves the escape sequences of a string literal body.
// Unknown escapes yield the escaped character itself.
func decodeJSString(s []byte) string {
	if bytes.IndexByte(s, '\\') < 0 {
		return string(s)
	}
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); {
		c := s[i]
		if c != '\\' || i+1 >= len(s) {
			b.WriteByte(c)
			i++
			continue
		}
		i++
		switch c = s[i]; c {
		case 'n':
			b.WriteByte('\n')
			i++
		case 'r':
			b.WriteByte('\r')
			i++
		case 't':
			b.WriteByte('\t')
			i++
		case 'b':
			b.WriteByte('\b')
			i++
		case 'f':
			b.WriteByte('\f')
			i++
		case 'v':
			b.WriteByte('\v')
			i++
		case '0':
			b.WriteByte(0)
			i++
		case '\r':
			// line continuation
			i++
			if i < len(s) && s[i] == '\n' {
				i++
			}
		case '\n':
			i++
		case 'x':
			if r, ok := parseHex(s, i+1, 2); ok {
				b.WriteRune(r)
				i += 3
				continue
			}
			b.WriteByte('x')
			i++
		case 'u':
			r, n := decodeUnicodeEscape(s, i+1)
			if n == 0 {
				b.WriteByte('u')
				i++
				continue
			}
			i += 1 + n
			if utf16.IsSurrogate(r) && i+1 < len(s) && s[i] == '\\' && s[i+1] == 'u' {
				if lo, m := decodeUnicodeEscape(s, i+2); m > 0 {
					if pair := utf16.DecodeRune(r, lo); pair != utf8.RuneError {
						b.WriteRune(pair)
						i += 2 + m
						continue
					}
				}
			}
			b.WriteRune(r)
		default:
			r, size := utf8.DecodeRune(s[i:])
			b.WriteRune(r)
			i += size
		}
	}
	return b.String()
}

// decodeUnicodeEscape reads XXXX or {X...} at s[i:] and returns the rune and the
// number of bytes consumed (0 when malformed).
func decodeUnicodeEscape(s []byte, i int) (rune, int) {
	if i < len(s) && s[i] == '{' {
		end := bytes.IndexByte(s[i:], '}')
		if end < 2 {
			return 0, 0
		}
		v, err := strconv.ParseUint(string(s[i+1:i+end]), 16, 32)
		if err != nil || v > utf8.MaxRune {
			return 0, 0
		}
		return rune(v), end + 1
	}
	if r, ok := parseHex(s, i, 4); ok {
		return r, 4
	}
	return 0, 0
}

func parseHex(s []byte, i, n int) (rune, bool) {
	if i+n > len(s) {
		return 0, false
	}
	v, err := strconv.ParseUint(string(s[i:i+n]), 16, 32)
	if err != nil {
		return 0, false
	}
	return rune(v), true
}
