package engine

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sort"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/phyten/i18nscan/internal/detect"
	"github.com/phyten/i18nscan/internal/model"
	"github.com/phyten/i18nscan/internal/overlap"
	"github.com/phyten/i18nscan/internal/textrange"
	"github.com/phyten/i18nscan/internal/walker"
)

// plainTypeScript lists extensions parsed without JSX. Angle-bracket type
// assertions in these files would otherwise be read as elements.
var plainTypeScript = map[string]bool{".ts": true, ".mts": true, ".cts": true}

// Detector は 1 ファイル分のソースから未翻訳テキストを検出します。
// ゼロ値は既定の拡張子表・非 strict・ログなしで動作します。
type Detector struct {
	Table detect.Table
	// Strict にすると空白のみの範囲を除外せずエラーとして返します。
	Strict bool
	Logger *zerolog.Logger
	Tracer trace.Tracer
	// Walkers は文法ごとのウォーカーを差し替えます。
	Walkers map[detect.Grammar]walker.Walker
}

var defaultDetector = &Detector{}

// Detect は既定設定の Detector で code を走査します。
func Detect(ctx context.Context, code []byte, fileID string) ([]model.Match, error) {
	return defaultDetector.Detect(ctx, code, fileID)
}

// Detect は fileID の拡張子から文法を選び、検出結果を開始オフセット順に返します。
// 構文エラー時は部分的な結果を返さず、walker.ErrParseFailure をラップしたエラーを返します。
func (d *Detector) Detect(ctx context.Context, code []byte, fileID string) ([]model.Match, error) {
	grammar := d.Table.ForPath(fileID)
	ctx, span := d.tracer().Start(ctx, "detect", trace.WithAttributes(
		attribute.String("file", fileID),
		attribute.String("grammar", string(grammar)),
		attribute.Int("bytes", len(code)),
	))
	defer span.End()

	spans, err := d.walkerFor(fileID, grammar).Walk(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, "walk failed")
		return nil, fmt.Errorf("%s: %w", fileID, err)
	}
	// component walkers resolve their template candidates themselves
	if grammar != detect.GrammarComponent {
		spans = overlap.Resolve(spans)
	}
	spans = overlap.Dedupe(spans)

	idx := textrange.NewIndex(code)
	out := make([]model.Match, 0, len(spans))
	for _, s := range spans {
		rng, err := idx.Normalize(s.Start, s.End)
		if err != nil {
			if errors.Is(err, textrange.ErrEmptySpan) && !d.Strict {
				d.logger().Warn().Str("file", fileID).Int("start", s.Start).Int("end", s.End).Msg("skipping blank span")
				continue
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, "normalize failed")
			return nil, fmt.Errorf("%s: %w", fileID, err)
		}
		out = append(out, model.Match{TextSpan: s, Range: rng})
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Start < out[j].Start })
	span.SetAttributes(attribute.Int("matches", len(out)))
	return out, nil
}

func (d *Detector) walkerFor(fileID string, g detect.Grammar) walker.Walker {
	if w, ok := d.Walkers[g]; ok {
		return w
	}
	switch g {
	case detect.GrammarMarkup:
		return walker.Markup{}
	case detect.GrammarComponent:
		return walker.Component{}
	}
	ext := detect.NormalizeExt(filepath.Ext(fileID))
	return walker.Script{Extended: !plainTypeScript[ext]}
}

func (d *Detector) logger() *zerolog.Logger {
	if d.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return d.Logger
}

func (d *Detector) tracer() trace.Tracer {
	if d.Tracer == nil {
		return otel.Tracer("i18nscan")
	}
	return d.Tracer
}
