package detect

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"sort"
	"strings"
)

// Grammar はファイルをどのウォーカーで走査するかを表します。
type Grammar string

const (
	GrammarScript    Grammar = "script"
	GrammarMarkup    Grammar = "markup"
	GrammarComponent Grammar = "component"
)

// ErrUnsupportedGrammar は未知の文法名が指定された場合に返されます。
var ErrUnsupportedGrammar = errors.New("unsupported grammar")

// ParseGrammar accepts the canonical names and a few aliases.
func ParseGrammar(s string) (Grammar, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "script", "ts", "typescript", "js", "javascript", "tsx", "jsx":
		return GrammarScript, nil
	case "markup", "html", "htm", "angular":
		return GrammarMarkup, nil
	case "component", "vue", "sfc":
		return GrammarComponent, nil
	}
	return "", fmt.Errorf("%w: %q", ErrUnsupportedGrammar, s)
}

var defaultExtensions = map[string]Grammar{
	".html": GrammarMarkup,
	".htm":  GrammarMarkup,
	".vue":  GrammarComponent,
	".ts":   GrammarScript,
	".tsx":  GrammarScript,
	".mts":  GrammarScript,
	".cts":  GrammarScript,
	".js":   GrammarScript,
	".jsx":  GrammarScript,
	".mjs":  GrammarScript,
	".cjs":  GrammarScript,
}

// declaration files never hold user-visible text
var skippedSuffixes = []string{".d.ts", ".d.mts", ".d.cts", ".min.js"}

var shebangInterpreters = []string{"node", "deno", "bun", "ts-node", "tsx"}

// Table は拡張子から文法への対応表です。ゼロ値は既定の対応表として振る舞います。
type Table struct {
	exts map[string]Grammar
}

// NewTable returns the default table with overrides applied. Override keys
// are extensions with or without the leading dot.
func NewTable(overrides map[string]Grammar) Table {
	exts := make(map[string]Grammar, len(defaultExtensions)+len(overrides))
	for k, v := range defaultExtensions {
		exts[k] = v
	}
	for k, v := range overrides {
		if ext := NormalizeExt(k); ext != "" {
			exts[ext] = v
		}
	}
	return Table{exts: exts}
}

func (t Table) lookup(ext string) (Grammar, bool) {
	if t.exts == nil {
		g, ok := defaultExtensions[ext]
		return g, ok
	}
	g, ok := t.exts[ext]
	return g, ok
}

// NormalizeExt lower-cases ext and ensures the leading dot.
func NormalizeExt(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}

// ForPath returns the grammar for p. Anything that is neither markup nor a
// component is treated as script.
func (t Table) ForPath(p string) Grammar {
	if g, ok := t.lookup(strings.ToLower(filepath.Ext(p))); ok {
		return g
	}
	return GrammarScript
}

// Known reports whether p should be scanned at all: its extension is in the
// table, or it has no extension and a script shebang.
func (t Table) Known(p string, data []byte) bool {
	lower := strings.ToLower(filepath.Base(p))
	for _, suf := range skippedSuffixes {
		if strings.HasSuffix(lower, suf) {
			return false
		}
	}
	ext := filepath.Ext(lower)
	if ext == "" {
		return isScriptShebang(data)
	}
	_, ok := t.lookup(ext)
	return ok
}

// Extensions returns the sorted extensions mapped to g.
func (t Table) Extensions(g Grammar) []string {
	src := t.exts
	if src == nil {
		src = defaultExtensions
	}
	var out []string
	for ext, gg := range src {
		if gg == g {
			out = append(out, ext)
		}
	}
	sort.Strings(out)
	return out
}

func isScriptShebang(data []byte) bool {
	if len(data) == 0 || !bytes.HasPrefix(data, []byte("#!")) {
		return false
	}
	end := bytes.IndexByte(data, '\n')
	if end == -1 {
		end = len(data)
	}
	fields := strings.Fields(strings.ToLower(string(data[2:end])))
	for _, f := range fields {
		base := filepath.Base(f)
		for _, interp := range shebangInterpreters {
			if base == interp {
				return true
			}
		}
	}
	return false
}

// ForPath uses the default table.
func ForPath(p string) Grammar { return Table{}.ForPath(p) }
