package config

import "strings"

// レイヤーは後勝ち。nil のフィールドは下位レイヤーの値を残す。

func MergeEngine(base EngineSettings, layers ...EngineConfig) EngineSettings {
	out := base
	for _, l := range layers {
		setList(&out.Paths, l.Paths)
		setList(&out.Excludes, l.Excludes)
		setList(&out.PathRegex, l.PathRegex)
		setList(&out.Extensions, l.Extensions)
		set(&out.ExcludeTypical, l.ExcludeTypical)
		set(&out.NoPrefilter, l.NoPrefilter)
		set(&out.Strict, l.Strict)
		set(&out.WithURL, l.WithURL)
		set(&out.Jobs, l.Jobs)
		set(&out.MaxFileBytes, l.MaxFileBytes)
		set(&out.Truncate, l.Truncate)
		setTrimmed(&out.Repo, l.Repo)
		setTrimmed(&out.Output, l.Output)
		setTrimmed(&out.Color, l.Color)
	}
	out.Output = orDefault(out.Output, "table")
	out.Color = orDefault(out.Color, "auto")
	return out
}

func MergeUI(base UISettings, layers ...UIConfig) UISettings {
	out := base
	for _, l := range layers {
		setTrimmed(&out.Fields, l.Fields)
		setTrimmed(&out.Sort, l.Sort)
		setTrimmed(&out.LogLevel, l.LogLevel)
	}
	return out
}

func MergeHighlight(base HighlightSettings, layers ...HighlightConfig) HighlightSettings {
	out := base
	for _, l := range layers {
		set(&out.Enabled, l.Enabled)
		set(&out.MarkStringLiterals, l.MarkStringLiterals)
		set(&out.ShowOverviewRuler, l.ShowOverviewRuler)
		setTrimmed(&out.Color, l.Color)
	}
	return out
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}

func setTrimmed(dst *string, v *string) {
	if v != nil {
		*dst = strings.TrimSpace(*v)
	}
}

// setList copies the layer's list; an explicitly empty list clears it.
func setList(dst *[]string, v *[]string) {
	if v == nil {
		return
	}
	if len(*v) == 0 {
		*dst = []string{}
		return
	}
	*dst = cloneStrings(*v)
}

func orDefault(v, def string) string {
	if strings.TrimSpace(v) == "" {
		return def
	}
	return v
}
