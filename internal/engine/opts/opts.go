// Package opts は CLI と Web の両方から engine.Options を組み立てる共通処理です。
package opts

import (
	"errors"
	"fmt"
	"net/url"
	"runtime"
	"strconv"
	"strings"

	"github.com/phyten/i18nscan/internal/detect"
	"github.com/phyten/i18nscan/internal/engine"
)

const maxJobs = 64

// Defaults returns the shared baseline options for both CLI and Web inputs.
func Defaults(repoDir string) engine.Options {
	return engine.Options{
		Jobs:           min(max(runtime.NumCPU(), 1), maxJobs),
		RepoDir:        repoDir,
		ExcludeTypical: true,
	}
}

// queryParam binds one query string key to a field of engine.Options.
type queryParam struct {
	key   string
	apply func(o *engine.Options, key string, vals []string) error
}

var queryParams = []queryParam{
	{"no_prefilter", boolParam(func(o *engine.Options) *bool { return &o.NoPrefilter })},
	{"strict", boolParam(func(o *engine.Options) *bool { return &o.Strict })},
	{"with_url", boolParam(func(o *engine.Options) *bool { return &o.WithURL })},
	{"exclude_typical", boolParam(func(o *engine.Options) *bool { return &o.ExcludeTypical })},
	{"truncate", intParam(0, -1, func(o *engine.Options) *int { return &o.Truncate })},
	{"max_file_bytes", intParam(0, -1, func(o *engine.Options) *int { return &o.MaxFileBytes })},
	{"jobs", intParam(1, maxJobs, func(o *engine.Options) *int { return &o.Jobs })},
	{"path", listParam(func(o *engine.Options) *[]string { return &o.Paths })},
	{"exclude", listParam(func(o *engine.Options) *[]string { return &o.Excludes })},
	{"path_regex", listParam(func(o *engine.Options) *[]string { return &o.PathRegex })},
	{"ext", func(o *engine.Options, _ string, vals []string) error {
		exts, err := ParseExtensions(SplitMulti(vals))
		if err != nil {
			return err
		}
		o.Extensions = exts
		return nil
	}},
}

// ApplyWebQueryToOptions copies recognised query values over def. Repeated
// keys and comma separated values are both accepted; for scalars the last
// one wins. Validation happens separately via NormalizeAndValidate.
func ApplyWebQueryToOptions(def engine.Options, q url.Values) (engine.Options, error) {
	out := def
	for _, p := range queryParams {
		vals := SplitMulti(q[p.key])
		if len(vals) == 0 {
			continue
		}
		if err := p.apply(&out, p.key, vals); err != nil {
			return out, err
		}
	}
	return out, nil
}

func boolParam(field func(*engine.Options) *bool) func(*engine.Options, string, []string) error {
	return func(o *engine.Options, key string, vals []string) error {
		v, err := ParseBool(vals[len(vals)-1], key)
		if err != nil {
			return err
		}
		*field(o) = v
		return nil
	}
}

func intParam(lo, hi int, field func(*engine.Options) *int) func(*engine.Options, string, []string) error {
	return func(o *engine.Options, key string, vals []string) error {
		n, err := ParseIntInRange(vals[len(vals)-1], key, lo, hi)
		if err != nil {
			return err
		}
		*field(o) = n
		return nil
	}
}

func listParam(field func(*engine.Options) *[]string) func(*engine.Options, string, []string) error {
	return func(o *engine.Options, _ string, vals []string) error {
		*field(o) = vals
		return nil
	}
}

// NormalizeAndValidate ensures the options are canonical and within the allowed ranges.
// All violations are reported together.
func NormalizeAndValidate(o *engine.Options) error {
	var errs []error
	if o.Jobs < 1 || o.Jobs > maxJobs {
		errs = append(errs, fmt.Errorf("jobs must be between 1 and %d", maxJobs))
	}
	if o.Truncate < 0 {
		errs = append(errs, errors.New("truncate must be >= 0"))
	}
	if o.MaxFileBytes < 0 {
		errs = append(errs, errors.New("max_file_bytes must be >= 0"))
	}
	if strings.TrimSpace(o.RepoDir) == "" {
		o.RepoDir = "."
	}
	o.Paths = trimmed(o.Paths)
	o.Excludes = trimmed(o.Excludes)
	o.PathRegex = trimmed(o.PathRegex)

	compiled, err := engine.CompilePathRegex(o.PathRegex)
	if err != nil {
		errs = append(errs, fmt.Errorf("invalid --path-regex: %w", err))
	}
	o.PathRegexCompiled = compiled
	return errors.Join(errs...)
}

// ParseExtensions parses "ext:grammar" pairs such as ".svelte:component".
func ParseExtensions(pairs []string) (map[string]detect.Grammar, error) {
	if len(pairs) == 0 {
		return nil, nil
	}
	out := make(map[string]detect.Grammar, len(pairs))
	for _, pair := range pairs {
		ext, name, ok := strings.Cut(pair, ":")
		ext = detect.NormalizeExt(ext)
		if !ok || ext == "" {
			return nil, fmt.Errorf("invalid --ext: %q (want ext:grammar)", pair)
		}
		g, err := detect.ParseGrammar(name)
		if err != nil {
			return nil, fmt.Errorf("invalid --ext %q: %w", pair, err)
		}
		out[ext] = g
	}
	return out, nil
}

// ParseBool accepts 1/0, true/false, yes/no and on/off in any case.
func ParseBool(raw, key string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "1", "true", "yes", "on":
		return true, nil
	case "0", "false", "no", "off":
		return false, nil
	}
	return false, fmt.Errorf("invalid value for %s: %q", key, raw)
}

// ParseIntInRange parses raw and checks it against [lo, hi]. hi < lo means
// there is no upper bound.
func ParseIntInRange(raw, key string, lo, hi int) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", key, raw)
	}
	bounded := hi >= lo
	if n < lo || (bounded && n > hi) {
		if bounded {
			return 0, fmt.Errorf("%s must be between %d and %d", key, lo, hi)
		}
		return 0, fmt.Errorf("%s must be >= %d", key, lo)
	}
	return n, nil
}

var outputAliases = map[string]string{"md": "markdown", "jsonl": "ndjson"}

// NormalizeOutput validates and lower-cases the CLI/Web output format value.
func NormalizeOutput(value string) (string, error) {
	v := strings.ToLower(strings.TrimSpace(value))
	if alias, ok := outputAliases[v]; ok {
		v = alias
	}
	switch v {
	case "table", "tsv", "json", "ndjson", "csv", "markdown":
		return v, nil
	}
	return "", fmt.Errorf("invalid --output: %s", value)
}

// SplitMulti flattens repeated values and comma separated lists, dropping
// blanks.
func SplitMulti(vals []string) []string {
	var out []string
	for _, raw := range vals {
		for _, piece := range strings.Split(raw, ",") {
			if part := strings.TrimSpace(piece); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

// trimmed drops blank entries without splitting on commas.
func trimmed(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}
