package termcolor

import (
	"github.com/phyten/i18nscan/internal/colorutil"
	"github.com/phyten/i18nscan/internal/model"
)

var (
	darkBackground  = colorutil.RGB{R: 17, G: 24, B: 39}
	lightBackground = colorutil.RGB{R: 249, G: 250, B: 251}
)

type kindColor struct {
	basic int
	rgb   colorutil.RGB
}

// 出どころごとの色。リテラル系は黄、マークアップ本文は緑、属性はシアン、式は紫。
var kindColors = map[model.SpanKind]kindColor{
	model.KindString:        {3, colorutil.RGB{R: 245, G: 158, B: 11}},
	model.KindTemplate:      {3, colorutil.RGB{R: 245, G: 158, B: 11}},
	model.KindJSXText:       {2, colorutil.RGB{R: 34, G: 197, B: 94}},
	model.KindText:          {2, colorutil.RGB{R: 34, G: 197, B: 94}},
	model.KindAttribute:     {6, colorutil.RGB{R: 6, G: 182, B: 212}},
	model.KindInterpolation: {5, colorutil.RGB{R: 168, G: 85, B: 247}},
	model.KindExpression:    {5, colorutil.RGB{R: 168, G: 85, B: 247}},
	model.KindRender:        {5, colorutil.RGB{R: 168, G: 85, B: 247}},
}

func HeaderStyle() Style {
	return Style{Bold: true, Underline: true}
}

// KindStyle returns the foreground for the kind column. Truecolor and
// 256-color values keep 4.5:1 contrast on the scheme's background; the
// 8-color palette uses the fixed ANSI index, bold on dark backgrounds.
func KindStyle(kind model.SpanKind, scheme Scheme, profile Profile) Style {
	c, ok := kindColors[kind]
	if !ok {
		return Style{}
	}
	if profile == ProfileBasic8 {
		return Style{FG: Basic(c.basic), Bold: scheme != SchemeLight}
	}
	bg := darkBackground
	if scheme == SchemeLight {
		bg = lightBackground
	}
	return Style{FG: ColorFor(colorutil.EnsureContrast(c.rgb, bg, colorutil.MinContrast), profile)}
}

// MarkStyle paints text on the highlight color with a readable foreground.
func MarkStyle(mark colorutil.RGB, profile Profile) Style {
	return Style{
		FG: ColorFor(colorutil.AutoTextColor(mark), profile),
		BG: ColorFor(mark, profile),
	}
}

// ForegroundStyle colors text with mark as is.
func ForegroundStyle(mark colorutil.RGB, profile Profile) Style {
	return Style{FG: ColorFor(mark, profile)}
}

// UnderlineStyle colors only the text itself; used when the background
// would hide the surrounding quotes.
func UnderlineStyle(mark colorutil.RGB, profile Profile) Style {
	s := ForegroundStyle(mark, profile)
	s.Underline = true
	return s
}
