package config

import (
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"

	engineopts "github.com/phyten/i18nscan/internal/engine/opts"
)

const (
	sectionEngine    = "engine"
	sectionUI        = "ui"
	sectionHighlight = "highlight"
)

// setting は 1 つの設定キーです。ファイル・環境変数の両方がこの表を使います。
type setting struct {
	section string
	key     string
	aliases []string
	assign  func(c *Config, v any, name string) error
}

// EnvName は I18NSCAN_<KEY>、highlight は I18NSCAN_HIGHLIGHT_<KEY> です。
func (s setting) EnvName() string {
	name := EnvPrefix + "_"
	if s.section == sectionHighlight {
		name += "HIGHLIGHT_"
	}
	return name + strings.ToUpper(s.key)
}

// topLevel reports whether the key may appear outside its section in a
// file. Highlight keys may not; "color" would be ambiguous.
func (s setting) topLevel() bool { return s.section != sectionHighlight }

var settings = []setting{
	{sectionEngine, "path", []string{"paths"}, list(func(c *Config) **[]string { return &c.Engine.Paths })},
	{sectionEngine, "exclude", []string{"excludes"}, list(func(c *Config) **[]string { return &c.Engine.Excludes })},
	{sectionEngine, "path_regex", []string{"path_regexes"}, list(func(c *Config) **[]string { return &c.Engine.PathRegex })},
	{sectionEngine, "ext", []string{"extensions"}, list(func(c *Config) **[]string { return &c.Engine.Extensions })},
	{sectionEngine, "exclude_typical", nil, flag(func(c *Config) **bool { return &c.Engine.ExcludeTypical })},
	{sectionEngine, "no_prefilter", nil, flag(func(c *Config) **bool { return &c.Engine.NoPrefilter })},
	{sectionEngine, "strict", nil, flag(func(c *Config) **bool { return &c.Engine.Strict })},
	{sectionEngine, "with_url", nil, flag(func(c *Config) **bool { return &c.Engine.WithURL })},
	{sectionEngine, "truncate", nil, number(0, func(c *Config) **int { return &c.Engine.Truncate })},
	{sectionEngine, "max_file_bytes", []string{"max_bytes"}, number(0, func(c *Config) **int { return &c.Engine.MaxFileBytes })},
	// the upper bound is enforced by NormalizeAndValidate
	{sectionEngine, "jobs", nil, number(0, func(c *Config) **int { return &c.Engine.Jobs })},
	{sectionEngine, "repo", nil, text(func(c *Config) **string { return &c.Engine.Repo })},
	{sectionEngine, "output", nil, text(func(c *Config) **string { return &c.Engine.Output })},
	{sectionEngine, "color", nil, text(func(c *Config) **string { return &c.Engine.Color })},

	{sectionUI, "fields", nil, text(func(c *Config) **string { return &c.UI.Fields })},
	{sectionUI, "sort", nil, text(func(c *Config) **string { return &c.UI.Sort })},
	{sectionUI, "log_level", nil, text(func(c *Config) **string { return &c.UI.LogLevel })},

	{sectionHighlight, "enabled", nil, flag(func(c *Config) **bool { return &c.Highlight.Enabled })},
	{sectionHighlight, "mark_string_literals", nil, flag(func(c *Config) **bool { return &c.Highlight.MarkStringLiterals })},
	{sectionHighlight, "show_overview_ruler", nil, flag(func(c *Config) **bool { return &c.Highlight.ShowOverviewRuler })},
	{sectionHighlight, "color", []string{"mark_color"}, text(func(c *Config) **string { return &c.Highlight.Color })},
}

// lookup finds a setting by section and normalized key or alias.
func lookup(section, key string) (setting, bool) {
	for _, s := range settings {
		if s.section != section {
			continue
		}
		if s.key == key {
			return s, true
		}
		for _, a := range s.aliases {
			if a == key {
				return s, true
			}
		}
	}
	return setting{}, false
}

func normalizeKey(key string) string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(key)), "-", "_")
}

func list(field func(*Config) **[]string) func(*Config, any, string) error {
	return func(c *Config, v any, name string) error {
		out, err := toList(v, name)
		if err != nil {
			return err
		}
		*field(c) = &out
		return nil
	}
}

func flag(field func(*Config) **bool) func(*Config, any, string) error {
	return func(c *Config, v any, name string) error {
		var b bool
		switch t := v.(type) {
		case bool:
			b = t
		case string:
			parsed, err := engineopts.ParseBool(t, name)
			if err != nil {
				return err
			}
			b = parsed
		default:
			return fmt.Errorf("expected bool for %s, got %T", name, v)
		}
		*field(c) = &b
		return nil
	}
}

func number(floor int, field func(*Config) **int) func(*Config, any, string) error {
	return func(c *Config, v any, name string) error {
		n, err := toInt(v, name)
		if err != nil {
			return err
		}
		if n < floor {
			return fmt.Errorf("%s must be >= %d", name, floor)
		}
		*field(c) = &n
		return nil
	}
}

func text(field func(*Config) **string) func(*Config, any, string) error {
	return func(c *Config, v any, name string) error {
		s, ok := v.(string)
		if !ok {
			if v == nil {
				return fmt.Errorf("%s cannot be null", name)
			}
			return fmt.Errorf("expected string for %s, got %T", name, v)
		}
		s = strings.TrimSpace(s)
		*field(c) = &s
		return nil
	}
}

func toInt(v any, name string) (int, error) {
	switch t := v.(type) {
	case int:
		return t, nil
	case int64:
		if t > math.MaxInt || t < math.MinInt {
			return 0, fmt.Errorf("integer out of range for %s: %d", name, t)
		}
		return int(t), nil
	case float64:
		if t != math.Trunc(t) {
			return 0, fmt.Errorf("expected integer for %s, got %v", name, t)
		}
		return int(t), nil
	case json.Number:
		return atoi(t.String(), name)
	case string:
		return atoi(t, name)
	}
	return 0, fmt.Errorf("expected integer for %s, got %T", name, v)
}

func atoi(s, name string) (int, error) {
	n, err := strconv.Atoi(strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %q", name, s)
	}
	return n, nil
}

// toList accepts a comma separated string or a list of strings. Blank
// entries are dropped, so "" yields an explicitly empty list.
func toList(v any, name string) ([]string, error) {
	var raw []string
	switch t := v.(type) {
	case string:
		raw = engineopts.SplitMulti([]string{t})
	case []string:
		raw = t
	case []any:
		for _, item := range t {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("expected string in %s, got %T", name, item)
			}
			raw = append(raw, s)
		}
	default:
		return nil, fmt.Errorf("expected string or list for %s, got %T", name, v)
	}
	out := make([]string, 0, len(raw))
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out, nil
}
