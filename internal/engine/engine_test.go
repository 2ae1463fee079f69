package engine

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/phyten/i18nscan/internal/progress"
)

func writeTree(t *testing.T, files map[string]string) string {
	t.Helper()
	root := t.TempDir()
	for rel, body := range files {
		full := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(full), 0o755))
		require.NoError(t, os.WriteFile(full, []byte(body), 0o644))
	}
	return root
}

// noGit は git が使えない環境を模倣し、ディレクトリ走査へフォールバックさせます。
type noGit struct{}

func (noGit) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	return nil, []byte("fatal: not a git repository"), errors.New("exit status 128")
}

type fakeGit struct {
	mu    sync.Mutex
	calls [][]string
	files []string
}

func (g *fakeGit) Run(ctx context.Context, dir, name string, args ...string) ([]byte, []byte, error) {
	g.mu.Lock()
	g.calls = append(g.calls, args)
	g.mu.Unlock()
	joined := strings.Join(args, " ")
	switch {
	case strings.Contains(joined, "ls-files"):
		return []byte(strings.Join(g.files, "\x00") + "\x00"), nil, nil
	case joined == "config --get remote.origin.url":
		return []byte("git@github.com:owner/repo.git\n"), nil, nil
	case joined == "rev-parse HEAD":
		return []byte("0123abcd\n"), nil, nil
	}
	return nil, nil, fmt.Errorf("unexpected git %s", joined)
}

var sampleTree = map[string]string{
	"src/app.tsx":               "export const A = () => <p>你好</p>;\n",
	"src/util.ts":               "export const msg = \"再见\";\n",
	"src/latin.ts":              "export const x = \"hello\";\n",
	"src/types.d.ts":            "declare const t: \"中文\";\n",
	"src/broken.ts":             "const a = \"中文\" +;\n",
	"public/index.html":         "<p>欢迎</p>\n",
	"node_modules/lib/index.js": "module.exports = \"忽略\";\n",
	"bin.dat":                   "\x00\x01中文",
}

func TestRunWalksDirectoryWithoutGit(t *testing.T) {
	root := writeTree(t, sampleTree)
	res, err := Run(context.Background(), Options{RepoDir: root, Jobs: 4, ExcludeTypical: true, Runner: noGit{}})
	require.NoError(t, err)

	_, err = uuid.Parse(res.ScanID)
	require.NoError(t, err)
	require.Equal(t, 7, res.Files)
	require.Equal(t, 3, res.Total)

	var got []string
	for _, it := range res.Items {
		got = append(got, fmt.Sprintf("%s:%d:%d:%s", it.File, it.Line, it.Column, it.Text))
	}
	require.Equal(t, []string{
		"public/index.html:1:4:欢迎",
		"src/app.tsx:1:27:你好",
		"src/util.ts:1:21:再见",
	}, got)

	require.Equal(t, 1, res.ErrorCount)
	require.Equal(t, "src/broken.ts", res.Errors[0].File)
	require.Equal(t, "parse", res.Errors[0].Stage)
	require.Equal(t, 1, res.Errors[0].Line)
	require.False(t, res.HasURL)
}

func TestRunPathRegexAndExcludes(t *testing.T) {
	root := writeTree(t, sampleTree)
	res, err := Run(context.Background(), Options{
		RepoDir:   root,
		PathRegex: []string{`^src/`},
		Excludes:  []string{"src/broken.ts", "*.tsx"},
		Runner:    noGit{},
	})
	require.NoError(t, err)
	require.Equal(t, 1, res.Total)
	require.Equal(t, "src/util.ts", res.Items[0].File)
	require.Zero(t, res.ErrorCount)
}

func TestRunInvalidPathRegex(t *testing.T) {
	_, err := Run(context.Background(), Options{RepoDir: t.TempDir(), PathRegex: []string{"("}, Runner: noGit{}})
	require.Error(t, err)
}

func TestRunUsesGitListingAndLinks(t *testing.T) {
	root := writeTree(t, sampleTree)
	git := &fakeGit{files: []string{"src/util.ts", "src/deleted.ts"}}
	res, err := Run(context.Background(), Options{RepoDir: root, WithURL: true, Runner: git})
	require.NoError(t, err)
	require.True(t, res.HasURL)
	require.Equal(t, 2, res.Files)
	require.Len(t, res.Items, 1)
	require.Equal(t, "https://github.com/owner/repo/blob/0123abcd/src/util.ts#L1", res.Items[0].URL)
	require.Zero(t, res.ErrorCount, "deleted files are skipped silently")
	require.Contains(t, strings.Join(git.calls[0], " "), "ls-files -z --cached --others --exclude-standard -- .")
}

func TestRunLinkFailureIsReported(t *testing.T) {
	root := writeTree(t, sampleTree)
	git := &fakeGit{files: []string{"src/util.ts"}}
	t.Setenv("I18NSCAN_LINK_REMOTE", "missing")
	res, err := Run(context.Background(), Options{RepoDir: root, WithURL: true, Runner: git})
	require.NoError(t, err)
	require.False(t, res.HasURL)
	require.Equal(t, 1, res.ErrorCount)
	require.Equal(t, "link", res.Errors[0].Stage)
	require.Empty(t, res.Items[0].URL)
}

func TestRunPrefilterAndTruncate(t *testing.T) {
	root := writeTree(t, map[string]string{"a.ts": "const s = \"这是一个很长的句子\";\n"})
	res, err := Run(context.Background(), Options{RepoDir: root, Truncate: 4, Runner: noGit{}})
	require.NoError(t, err)
	require.Len(t, res.Items, 1)
	require.Equal(t, "这是一…", res.Items[0].Text)

	res, err = Run(context.Background(), Options{RepoDir: root, MaxFileBytes: 8, Runner: noGit{}})
	require.NoError(t, err)
	require.Empty(t, res.Items)
}

func TestRunPublishesProgress(t *testing.T) {
	root := writeTree(t, sampleTree)
	var mu sync.Mutex
	var last progress.Snapshot
	obs := progress.ObserverFunc(func(s progress.Snapshot) {
		mu.Lock()
		last = s
		mu.Unlock()
	})
	_, err := Run(context.Background(), Options{RepoDir: root, Runner: noGit{}, ProgressObserver: obs})
	require.NoError(t, err)
	mu.Lock()
	defer mu.Unlock()
	require.Equal(t, progress.StageScan, last.Stage)
}

func TestRunCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Run(ctx, Options{RepoDir: t.TempDir(), Runner: noGit{}})
	require.ErrorIs(t, err, context.Canceled)
}
