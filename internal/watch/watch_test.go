package watch

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phyten/i18nscan/internal/decorate"
	"github.com/phyten/i18nscan/internal/model"
)

type settings map[string]any

func (s settings) GetBool(key string) bool     { b, _ := s[key].(bool); return b }
func (s settings) GetString(key string) string { v, _ := s[key].(string); return v }

var highlightOn = settings{
	decorate.KeyEnabled:            true,
	decorate.KeyMarkStringLiterals: true,
	decorate.KeyColor:              "#ff0000",
}

type syncBuffer struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (b *syncBuffer) Write(p []byte) (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.Write(p)
}

func (b *syncBuffer) String() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.buf.String()
}

func startWatcher(t *testing.T, files []string, out *syncBuffer) <-chan Report {
	t.Helper()
	reports := make(chan Report, 16)
	w, err := New(Config{
		Files:    files,
		Delay:    30 * time.Millisecond,
		Settings: highlightOn,
		Render:   decorate.RenderOptions{Context: -1},
		Out:      out,
		OnReport: func(r Report) { reports <- r },
	})
	require.NoError(t, err)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		require.NoError(t, <-done)
	})
	return reports
}

func next(t *testing.T, reports <-chan Report) Report {
	t.Helper()
	select {
	case r := <-reports:
		return r
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for report")
	}
	return Report{}
}

func TestWatcherRedetectsOnWrite(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("const a = \"你好\";\n"), 0o644))

	out := &syncBuffer{}
	reports := startWatcher(t, []string{file}, out)

	first := next(t, reports)
	require.NoError(t, first.Err)
	require.Len(t, first.Matches, 1)
	require.Equal(t, "+ 1:12 string 你好\n", first.Diff)
	require.Equal(t, 1, first.Set.Len())

	// rapid writes coalesce into one re-detection
	for i := 0; i < 5; i++ {
		body := "const a = \"你好\";\nconst b = \"再见\";\n"
		require.NoError(t, os.WriteFile(file, []byte(body), 0o644))
		time.Sleep(5 * time.Millisecond)
	}
	second := next(t, reports)
	require.NoError(t, second.Err)
	require.Len(t, second.Matches, 2)
	require.Equal(t, "+ 2:12 string 再见\n", second.Diff)

	select {
	case r := <-reports:
		t.Fatalf("unexpected extra report: %+v", r)
	case <-time.After(100 * time.Millisecond):
	}
	assert.Contains(t, out.String(), "Untranslated text found: 再见")
}

func TestWatcherIgnoresOtherFiles(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.html")
	other := filepath.Join(dir, "b.html")
	require.NoError(t, os.WriteFile(file, []byte("<p>欢迎</p>"), 0o644))
	require.NoError(t, os.WriteFile(other, []byte("<p>x</p>"), 0o644))

	reports := startWatcher(t, []string{file}, &syncBuffer{})
	next(t, reports)

	require.NoError(t, os.WriteFile(other, []byte("<p>其他</p>"), 0o644))
	select {
	case r := <-reports:
		t.Fatalf("unrelated write triggered a report: %+v", r)
	case <-time.After(150 * time.Millisecond):
	}
}

func TestWatcherKeepsStateOnParseError(t *testing.T) {
	dir := t.TempDir()
	file := filepath.Join(dir, "a.ts")
	require.NoError(t, os.WriteFile(file, []byte("const a = \"你好\";\n"), 0o644))
	reports := startWatcher(t, []string{file}, &syncBuffer{})
	next(t, reports)

	require.NoError(t, os.WriteFile(file, []byte("const a = \"你好\" +;\n"), 0o644))
	broken := next(t, reports)
	require.Error(t, broken.Err)

	require.NoError(t, os.WriteFile(file, []byte("const a = \"你好\";\n"), 0o644))
	fixed := next(t, reports)
	require.NoError(t, fixed.Err)
	require.Empty(t, fixed.Diff, "report unchanged since the last good parse")
}

func TestNewRequiresFiles(t *testing.T) {
	_, err := New(Config{})
	require.Error(t, err)
}

func TestFormatAndDiffReports(t *testing.T) {
	prev := FormatReport([]model.Match{
		{TextSpan: model.TextSpan{Text: "你好", Kind: model.KindString}, Range: model.Range{Start: model.Position{Line: 0, Column: 10}}},
		{TextSpan: model.TextSpan{Text: "多\n行", Kind: model.KindText}, Range: model.Range{Start: model.Position{Line: 3, Column: 0}}},
	})
	require.Equal(t, "1:11 string 你好\n4:1 text 多\\n行\n", prev)

	next := "1:11 string 你好\n5:1 attribute 标题\n"
	require.Equal(t, "- 4:1 text 多\\n行\n+ 5:1 attribute 标题\n", DiffReports(prev, next))
	require.Empty(t, DiffReports(next, next))
}
