package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/phyten/i18nscan/internal/colorutil"
	engineopts "github.com/phyten/i18nscan/internal/engine/opts"
	"github.com/phyten/i18nscan/internal/logging"
	"github.com/phyten/i18nscan/internal/termcolor"
)

// NormalizeEngine canonicalises output/color. Range checks on jobs and
// friends are left to engineopts.NormalizeAndValidate.
func NormalizeEngine(values EngineSettings) (EngineSettings, error) {
	var errs []error
	out, err := engineopts.NormalizeOutput(values.Output)
	if err != nil {
		errs = append(errs, err)
	} else {
		values.Output = out
	}
	mode, err := termcolor.ParseMode(values.Color)
	if err != nil {
		errs = append(errs, err)
	} else {
		values.Color = mode.String()
	}
	if _, err := engineopts.ParseExtensions(values.Extensions); err != nil {
		errs = append(errs, err)
	}
	return values, errors.Join(errs...)
}

func NormalizeUI(values UISettings) (UISettings, error) {
	values.Fields = strings.TrimSpace(values.Fields)
	values.Sort = strings.TrimSpace(values.Sort)
	values.LogLevel = strings.ToLower(strings.TrimSpace(values.LogLevel))
	if _, err := logging.ParseLevel(values.LogLevel); err != nil {
		return values, fmt.Errorf("log_level: %w", err)
	}
	return values, nil
}

// NormalizeHighlight は色を "#rrggbb" 形式にそろえます。
func NormalizeHighlight(values HighlightSettings) (HighlightSettings, error) {
	if strings.TrimSpace(values.Color) == "" {
		values.Color = DefaultHighlightSettings().Color
	}
	rgb, err := colorutil.ParseHex(values.Color)
	if err != nil {
		return values, fmt.Errorf("highlight.color: %w", err)
	}
	values.Color = rgb.Hex()
	return values, nil
}
