package engine

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"github.com/phyten/i18nscan/internal/detect"
	"github.com/phyten/i18nscan/internal/execx"
	"github.com/phyten/i18nscan/internal/link"
	"github.com/phyten/i18nscan/internal/progress"
	"github.com/phyten/i18nscan/internal/textrange"
	"github.com/phyten/i18nscan/internal/textutil"
	"github.com/phyten/i18nscan/internal/walker"
)

const maxWorkers = 64

type scanJob struct {
	path string
}

type scanResult struct {
	items []Item
	errs  []ItemError
}

// Run は指定されたオプションに従ってリポジトリを走査し、未翻訳テキストの一覧を返します。
//
// ファイル単位の失敗は Result.Errors に集約され、走査自体は中断しません。
// ctx がキャンセルされた場合はその時点でエラーを返します。
func Run(ctx context.Context, opts Options) (*Result, error) {
	start := time.Now()
	log := opts.logger()
	if opts.Runner == nil {
		opts.Runner = execx.DefaultRunner()
	}
	if opts.Jobs <= 0 {
		opts.Jobs = runtime.NumCPU()
	}
	if opts.Jobs > maxWorkers {
		opts.Jobs = maxWorkers
	}
	if opts.PathRegexCompiled == nil && len(opts.PathRegex) > 0 {
		rx, err := CompilePathRegex(opts.PathRegex)
		if err != nil {
			return nil, fmt.Errorf("invalid --path-regex: %w", err)
		}
		opts.PathRegexCompiled = rx
	}

	tracer := opts.tracer()
	ctx, span := tracer.Start(ctx, "scan", trace.WithAttributes(
		attribute.String("repo", opts.RepoDir),
		attribute.Int("jobs", opts.Jobs),
	))
	defer span.End()

	files, err := listFiles(ctx, opts)
	if err != nil {
		return nil, err
	}
	files = filterPathsByRegex(files, opts.PathRegexCompiled)
	log.Debug().Int("files", len(files)).Msg("candidate files listed")

	det := &Detector{
		Table:  detect.NewTable(opts.Extensions),
		Strict: opts.Strict,
		Logger: log,
		Tracer: tracer,
	}

	tracker := progress.NewTracker(len(files), opts.ProgressObserver)
	tracker.Begin(progress.StageScan)

	jobs := make(chan scanJob)
	results := make(chan scanResult)
	var wg sync.WaitGroup
	wg.Add(opts.Jobs)
	for i := 0; i < opts.Jobs; i++ {
		go func() {
			defer wg.Done()
			for job := range jobs {
				select {
				case <-ctx.Done():
					return
				default:
				}
				items, errs := scanFile(ctx, det, opts, job.path)
				results <- scanResult{items: items, errs: errs}
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, path := range files {
			select {
			case <-ctx.Done():
				return
			case jobs <- scanJob{path: path}:
			}
		}
	}()

	go func() {
		wg.Wait()
		close(results)
	}()

	var items []Item
	var errs []ItemError
	for res := range results {
		items = append(items, res.items...)
		errs = append(errs, res.errs...)
		tracker.Step(1)
	}
	tracker.Finish()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	hasURL := false
	if opts.WithURL && len(items) > 0 {
		if err := attachURLs(ctx, opts, items); err != nil {
			log.Warn().Err(err).Msg("blob links unavailable")
			errs = append(errs, newItemError("", 0, "link", err))
		} else {
			hasURL = true
		}
	}

	sort.SliceStable(items, func(i, j int) bool {
		if items[i].File != items[j].File {
			return items[i].File < items[j].File
		}
		if items[i].Line != items[j].Line {
			return items[i].Line < items[j].Line
		}
		return items[i].Column < items[j].Column
	})
	sort.SliceStable(errs, func(i, j int) bool {
		if errs[i].File == errs[j].File {
			if errs[i].Line == errs[j].Line {
				return errs[i].Stage < errs[j].Stage
			}
			return errs[i].Line < errs[j].Line
		}
		return errs[i].File < errs[j].File
	})

	span.SetAttributes(attribute.Int("files", len(files)), attribute.Int("items", len(items)), attribute.Int("errors", len(errs)))
	return &Result{
		ScanID:     uuid.NewString(),
		Items:      items,
		HasURL:     hasURL,
		Total:      len(items),
		Files:      len(files),
		ElapsedMS:  msSince(start),
		Errors:     errs,
		ErrorCount: len(errs),
	}, nil
}

func scanFile(ctx context.Context, det *Detector, opts Options, rel string) ([]Item, []ItemError) {
	log := opts.logger()
	data, err := os.ReadFile(filepath.Join(opts.RepoDir, filepath.FromSlash(rel)))
	if err != nil {
		// deleted in the working tree but still in the index
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, []ItemError{newItemError(rel, 0, "read", err)}
	}
	switch {
	case bytes.IndexByte(data, 0) >= 0:
		return nil, nil
	case !utf8.Valid(data):
		log.Debug().Str("file", rel).Msg("skipping invalid utf-8")
		return nil, nil
	case opts.MaxFileBytes > 0 && len(data) > opts.MaxFileBytes:
		log.Debug().Str("file", rel).Int("bytes", len(data)).Msg("skipping large file")
		return nil, nil
	case !det.Table.Known(rel, data):
		return nil, nil
	case !opts.NoPrefilter && !textutil.ContainsTargetBytes(data):
		return nil, nil
	}

	matches, err := det.Detect(ctx, data, rel)
	if err != nil {
		stage := "detect"
		line := 0
		var pe *walker.ParseError
		switch {
		case errors.As(err, &pe):
			stage = "parse"
			line = pe.Line
		case errors.Is(err, walker.ErrParseFailure):
			stage = "parse"
		case errors.Is(err, textrange.ErrEmptySpan), errors.Is(err, textrange.ErrInvalidSpan):
			stage = "normalize"
		}
		return nil, []ItemError{newItemError(rel, line, stage, err)}
	}

	grammar := det.Table.ForPath(rel)
	items := make([]Item, 0, len(matches))
	for _, m := range matches {
		items = append(items, Item{
			File:    rel,
			Grammar: grammar,
			Kind:    m.Kind,
			Quoted:  m.Quoted,
			Text:    truncateRunes(m.Text, opts.Truncate),
			Line:    m.Range.Start.Line + 1,
			Column:  m.Range.Start.Column + 1,
			Start:   m.Start,
			End:     m.End,
			Range:   m.Range,
		})
	}
	return items, nil
}

func attachURLs(ctx context.Context, opts Options, items []Item) error {
	remote, err := link.DetectRemote(ctx, opts.Runner, opts.RepoDir)
	if err != nil {
		return err
	}
	sha, err := execx.Git(ctx, opts.Runner, opts.RepoDir, "rev-parse", "HEAD")
	if err != nil {
		return err
	}
	for i := range items {
		it := &items[i]
		it.URL = link.Blob(remote, sha, it.File, it.Line, it.Range.End.Line+1)
	}
	return nil
}

func newItemError(file string, line int, stage string, err error) ItemError {
	msg := strings.TrimSpace(err.Error())
	if msg == "" {
		msg = "unknown error"
	}
	return ItemError{File: file, Line: line, Stage: stage, Message: msg}
}

func truncateRunes(s string, n int) string {
	if n <= 0 {
		return s
	}
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	rs := []rune(s)
	if n <= 1 {
		return "…"
	}
	return string(rs[:n-1]) + "…"
}

func (o Options) logger() *zerolog.Logger {
	if o.Logger == nil {
		nop := zerolog.Nop()
		return &nop
	}
	return o.Logger
}

func (o Options) tracer() trace.Tracer {
	if o.Tracer == nil {
		return otel.Tracer("i18nscan")
	}
	return o.Tracer
}

func msSince(t time.Time) int64 { return time.Since(t).Milliseconds() }
