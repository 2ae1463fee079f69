package engine

import (
	"bytes"
	"context"
	"fmt"
	"io/fs"
	"path"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/phyten/i18nscan/internal/execx"
)

var typicalExcludePatterns = []string{
	":(glob,exclude)vendor/**",
	":(glob,exclude)node_modules/**",
	":(glob,exclude)dist/**",
	":(glob,exclude)build/**",
	":(glob,exclude)coverage/**",
	":(glob,exclude)*.min.*",
}

// buildPathspecs builds the list to append after "--" for `git ls-files`.
func buildPathspecs(includes, excludes []string, typical bool) []string {
	normalizedIncludes := make([]string, 0, len(includes))
	for _, raw := range includes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		normalizedIncludes = append(normalizedIncludes, filepath.ToSlash(trimmed))
	}

	out := make([]string, 0, len(normalizedIncludes)+len(excludes)+len(typicalExcludePatterns)+1)
	if len(normalizedIncludes) == 0 {
		out = append(out, ".")
	} else {
		out = append(out, normalizedIncludes...)
	}

	if typical {
		out = append(out, typicalExcludePatterns...)
	}

	for _, raw := range excludes {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		trimmed = filepath.ToSlash(trimmed)
		if strings.HasPrefix(trimmed, ":!") || strings.HasPrefix(trimmed, ":(exclude)") || strings.HasPrefix(trimmed, ":(glob,exclude)") {
			out = append(out, trimmed)
			continue
		}
		out = append(out, ":(glob,exclude)"+trimmed)
	}
	return out
}

// CompilePathRegex compiles the non-blank patterns.
func CompilePathRegex(patterns []string) ([]*regexp.Regexp, error) {
	if len(patterns) == 0 {
		return nil, nil
	}
	compiled := make([]*regexp.Regexp, 0, len(patterns))
	for _, raw := range patterns {
		trimmed := strings.TrimSpace(raw)
		if trimmed == "" {
			continue
		}
		rx, err := regexp.Compile(trimmed)
		if err != nil {
			return nil, err
		}
		compiled = append(compiled, rx)
	}
	return compiled, nil
}

func filterPathsByRegex(paths []string, rx []*regexp.Regexp) []string {
	if len(rx) == 0 {
		return paths
	}
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		for _, r := range rx {
			if r.MatchString(p) {
				out = append(out, p)
				break
			}
		}
	}
	return out
}

// listFiles returns repo-relative, slash-separated paths. Tracked and
// untracked-but-not-ignored files are listed through git; outside a work
// tree the directory is walked instead.
func listFiles(ctx context.Context, opts Options) ([]string, error) {
	runner := opts.Runner
	if runner == nil {
		runner = execx.DefaultRunner()
	}
	args := []string{"-c", "core.quotePath=false", "ls-files", "-z", "--cached", "--others", "--exclude-standard", "--"}
	args = append(args, buildPathspecs(opts.Paths, opts.Excludes, opts.ExcludeTypical)...)
	stdout, stderr, err := runner.Run(ctx, opts.RepoDir, "git", args...)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return nil, ctxErr
		}
		err = &execx.CommandError{Args: []string{"git", "ls-files"}, Stderr: strings.TrimSpace(string(stderr)), Err: err}
		opts.logger().Debug().Str("reason", execx.Describe(err)).Msg("git ls-files failed; walking the directory")
		return walkFiles(opts)
	}
	return splitNUL(stdout), nil
}

func splitNUL(out []byte) []string {
	if len(out) == 0 {
		return nil
	}
	parts := bytes.Split(out, []byte{0})
	paths := make([]string, 0, len(parts))
	seen := make(map[string]bool, len(parts))
	for _, p := range parts {
		if len(p) == 0 {
			continue
		}
		rel := filepath.ToSlash(string(p))
		if seen[rel] {
			continue
		}
		seen[rel] = true
		paths = append(paths, rel)
	}
	return paths
}

func walkFiles(opts Options) ([]string, error) {
	root := opts.RepoDir
	if root == "" {
		root = "."
	}
	excludes := walkExcludes(opts.Excludes, opts.ExcludeTypical)
	var out []string
	err := filepath.WalkDir(root, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		rel = filepath.ToSlash(rel)
		if d.IsDir() {
			if rel != "." && (strings.HasPrefix(d.Name(), ".") || excluded(excludes, rel+"/")) {
				return filepath.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() || excluded(excludes, rel) || !included(opts.Paths, rel) {
			return nil
		}
		out = append(out, rel)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("walk %s: %w", root, err)
	}
	return out, nil
}

func walkExcludes(excludes []string, typical bool) []string {
	var out []string
	if typical {
		for _, p := range typicalExcludePatterns {
			out = append(out, stripPathspecMagic(p))
		}
	}
	for _, raw := range excludes {
		if trimmed := strings.TrimSpace(raw); trimmed != "" {
			out = append(out, stripPathspecMagic(filepath.ToSlash(trimmed)))
		}
	}
	return out
}

func stripPathspecMagic(p string) string {
	for _, prefix := range []string{":(glob,exclude)", ":(exclude)", ":!"} {
		if strings.HasPrefix(p, prefix) {
			return strings.TrimPrefix(p, prefix)
		}
	}
	return p
}

// excluded matches rel against glob patterns. A trailing "/**" matches the
// whole directory; patterns without a slash also match the base name.
func excluded(patterns []string, rel string) bool {
	for _, pat := range patterns {
		if dir, ok := strings.CutSuffix(pat, "/**"); ok {
			if strings.HasPrefix(rel, dir+"/") {
				return true
			}
			continue
		}
		if ok, _ := path.Match(pat, strings.TrimSuffix(rel, "/")); ok {
			return true
		}
		if !strings.Contains(pat, "/") {
			if ok, _ := path.Match(pat, path.Base(strings.TrimSuffix(rel, "/"))); ok {
				return true
			}
		}
	}
	return false
}

func included(paths []string, rel string) bool {
	restricted := false
	for _, raw := range paths {
		p := strings.Trim(filepath.ToSlash(strings.TrimSpace(raw)), "/")
		if p == "" || p == "." {
			return true
		}
		restricted = true
		if rel == p || strings.HasPrefix(rel, p+"/") {
			return true
		}
		if ok, _ := path.Match(p, rel); ok {
			return true
		}
	}
	return !restricted
}
