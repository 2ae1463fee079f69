// Package watch re-runs detection when watched files change on disk.
package watch

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"

	"github.com/phyten/i18nscan/internal/debounce"
	"github.com/phyten/i18nscan/internal/decorate"
	"github.com/phyten/i18nscan/internal/engine"
	"github.com/phyten/i18nscan/internal/model"
)

// Config holds watcher configuration options.
type Config struct {
	Files    []string
	Delay    time.Duration
	Detector *engine.Detector
	Settings decorate.Settings
	Render   decorate.RenderOptions
	Out      io.Writer
	Logger   *zerolog.Logger
	// OnReport は各検出の後に呼ばれます（nil 可）。
	OnReport func(Report)
}

// Report は 1 回の再検出結果です。
type Report struct {
	File    string
	Matches []model.Match
	Diff    string
	Set     *decorate.Set
	Err     error
}

type fileState struct {
	mu     sync.Mutex
	timer  *debounce.Timer
	view   *decorate.View
	set    *decorate.Set
	report string
}

// Watcher monitors a set of files and re-detects after each debounced change.
type Watcher struct {
	cfg   Config
	fsw   *fsnotify.Watcher
	files map[string]*fileState
	outMu sync.Mutex
}

func New(cfg Config) (*Watcher, error) {
	if len(cfg.Files) == 0 {
		return nil, fmt.Errorf("watch: no files")
	}
	if cfg.Detector == nil {
		cfg.Detector = &engine.Detector{}
	}
	if cfg.Out == nil {
		cfg.Out = io.Discard
	}
	if cfg.Logger == nil {
		nop := zerolog.Nop()
		cfg.Logger = &nop
	}
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating fsnotify watcher: %w", err)
	}
	w := &Watcher{cfg: cfg, fsw: fsw, files: make(map[string]*fileState)}
	for _, f := range cfg.Files {
		abs, err := filepath.Abs(f)
		if err != nil {
			_ = fsw.Close()
			return nil, err
		}
		w.files[abs] = &fileState{timer: debounce.New(cfg.Delay)}
	}
	return w, nil
}

// Run performs an initial detection for every file, then blocks processing
// file system events until ctx is cancelled.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.fsw.Close()
	dirs := make(map[string]bool)
	for path := range w.files {
		dir := filepath.Dir(path)
		if dirs[dir] {
			continue
		}
		dirs[dir] = true
		if err := w.fsw.Add(dir); err != nil {
			return fmt.Errorf("watching directory %s: %w", dir, err)
		}
	}
	for path := range w.files {
		w.detect(ctx, path)
	}

	for {
		select {
		case <-ctx.Done():
			for _, st := range w.files {
				st.timer.Stop()
			}
			return nil
		case event, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			st, relevant := w.relevant(event)
			if !relevant {
				continue
			}
			path := filepath.Clean(event.Name)
			st.timer.Trigger(func() { w.detect(ctx, path) })
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.cfg.Logger.Warn().Err(err).Msg("watch error")
		}
	}
}

func (w *Watcher) relevant(event fsnotify.Event) (*fileState, bool) {
	if event.Op&(fsnotify.Write|fsnotify.Create) == 0 {
		return nil, false
	}
	st, ok := w.files[filepath.Clean(event.Name)]
	return st, ok
}

func (w *Watcher) detect(ctx context.Context, path string) {
	if ctx.Err() != nil {
		return
	}
	st := w.files[path]
	st.mu.Lock()
	defer st.mu.Unlock()

	rep := Report{File: path}
	code, err := os.ReadFile(path)
	if err != nil {
		rep.Err = err
		w.emit(rep, st)
		return
	}
	matches, err := w.cfg.Detector.Detect(ctx, code, path)
	if err != nil {
		// keep the last good decorations on screen while the file does not parse
		rep.Err = err
		w.emit(rep, st)
		return
	}
	if st.view == nil {
		st.view = decorate.NewView(code)
	} else {
		st.view.SetCode(code)
	}
	set, err := decorate.Apply(st.view, matches, st.set, w.cfg.Settings)
	if err != nil {
		rep.Err = err
		w.emit(rep, st)
		return
	}
	st.set = set

	report := FormatReport(matches)
	rep.Matches = matches
	rep.Set = set
	rep.Diff = DiffReports(st.report, report)
	st.report = report
	w.emit(rep, st)
}

func (w *Watcher) emit(rep Report, st *fileState) {
	w.outMu.Lock()
	if rep.Err != nil {
		w.cfg.Logger.Warn().Err(rep.Err).Str("file", rep.File).Msg("re-detection failed")
	} else {
		fmt.Fprintf(w.cfg.Out, "== %s (%d untranslated)\n", rep.File, len(rep.Matches))
		if err := st.view.Render(w.cfg.Out, w.cfg.Render); err != nil {
			w.cfg.Logger.Warn().Err(err).Msg("render failed")
		}
		if rep.Diff != "" {
			fmt.Fprint(w.cfg.Out, rep.Diff)
		}
	}
	w.outMu.Unlock()
	if w.cfg.OnReport != nil {
		w.cfg.OnReport(rep)
	}
}
