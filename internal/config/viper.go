package config

import (
	"strings"

	"github.com/spf13/viper"
)

// Viper exposes the highlight settings as a viper instance keyed by
// "highlight.<name>". The merged values are registered as defaults, so
// environment variables such as I18NSCAN_HIGHLIGHT_COLOR win on every lookup
// and a long running watch picks them up without reloading the file.
func (h HighlightSettings) Viper() *viper.Viper {
	if strings.TrimSpace(h.Color) == "" {
		h.Color = DefaultHighlightSettings().Color
	}
	v := viper.New()
	v.SetDefault("highlight.enabled", h.Enabled)
	v.SetDefault("highlight.mark_string_literals", h.MarkStringLiterals)
	v.SetDefault("highlight.show_overview_ruler", h.ShowOverviewRuler)
	v.SetDefault("highlight.color", h.Color)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}
