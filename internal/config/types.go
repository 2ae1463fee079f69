package config

import (
	"strings"

	"github.com/phyten/i18nscan/internal/engine"
	engineopts "github.com/phyten/i18nscan/internal/engine/opts"
)

// EngineConfig などの *Config 型は 1 レイヤー分の設定です。nil は「未指定」。
type EngineConfig struct {
	Paths          *[]string
	Excludes       *[]string
	PathRegex      *[]string
	ExcludeTypical *bool
	Extensions     *[]string
	Jobs           *int
	Repo           *string
	Output         *string
	Color          *string
	MaxFileBytes   *int
	NoPrefilter    *bool
	Strict         *bool
	WithURL        *bool
	Truncate       *int
}

type UIConfig struct {
	Fields   *string
	Sort     *string
	LogLevel *string
}

// HighlightConfig は watch/check で描画する装飾の設定です。
type HighlightConfig struct {
	Enabled            *bool
	MarkStringLiterals *bool
	ShowOverviewRuler  *bool
	Color              *string
}

type Config struct {
	Engine    EngineConfig
	UI        UIConfig
	Highlight HighlightConfig
}

type EngineSettings struct {
	Paths          []string
	Excludes       []string
	PathRegex      []string
	ExcludeTypical bool
	Extensions     []string
	Jobs           int
	Repo           string
	Output         string
	Color          string
	MaxFileBytes   int
	NoPrefilter    bool
	Strict         bool
	WithURL        bool
	Truncate       int
}

type UISettings struct {
	Fields   string
	Sort     string
	LogLevel string
}

type HighlightSettings struct {
	Enabled            bool
	MarkStringLiterals bool
	ShowOverviewRuler  bool
	Color              string
}

func EngineSettingsFromOptions(opts engine.Options) EngineSettings {
	exts := make([]string, 0, len(opts.Extensions))
	for ext, g := range opts.Extensions {
		exts = append(exts, ext+":"+string(g))
	}
	return EngineSettings{
		Paths:          cloneStrings(opts.Paths),
		Excludes:       cloneStrings(opts.Excludes),
		PathRegex:      cloneStrings(opts.PathRegex),
		ExcludeTypical: opts.ExcludeTypical,
		Extensions:     cloneStrings(exts),
		Jobs:           opts.Jobs,
		Repo:           opts.RepoDir,
		Output:         "table",
		Color:          "auto",
		MaxFileBytes:   opts.MaxFileBytes,
		NoPrefilter:    opts.NoPrefilter,
		Strict:         opts.Strict,
		WithURL:        opts.WithURL,
		Truncate:       opts.Truncate,
	}
}

// ApplyToOptions copies the merged settings into opts. Extension overrides
// are parsed here, so a malformed "ext:grammar" pair is reported.
func (s EngineSettings) ApplyToOptions(opts *engine.Options) error {
	if opts == nil {
		return nil
	}
	exts, err := engineopts.ParseExtensions(s.Extensions)
	if err != nil {
		return err
	}
	opts.Paths = cloneStrings(s.Paths)
	opts.Excludes = cloneStrings(s.Excludes)
	opts.PathRegex = cloneStrings(s.PathRegex)
	opts.ExcludeTypical = s.ExcludeTypical
	opts.Extensions = exts
	opts.Jobs = s.Jobs
	if trimmed := strings.TrimSpace(s.Repo); trimmed != "" {
		opts.RepoDir = trimmed
	}
	opts.MaxFileBytes = s.MaxFileBytes
	opts.NoPrefilter = s.NoPrefilter
	opts.Strict = s.Strict
	opts.WithURL = s.WithURL
	opts.Truncate = s.Truncate
	return nil
}

func DefaultUISettings() UISettings {
	return UISettings{
		Fields:   "",
		Sort:     "",
		LogLevel: "warn",
	}
}

func DefaultHighlightSettings() HighlightSettings {
	return HighlightSettings{
		Enabled:            true,
		MarkStringLiterals: true,
		ShowOverviewRuler:  true,
		Color:              "#ff0000",
	}
}

func cloneStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	out := make([]string, len(in))
	copy(out, in)
	return out
}
