//go:build e2e

package web

import (
	"context"
	"net/http/httptest"
	"os/exec"
	"strings"
	"testing"
	"time"

	"github.com/chromedp/chromedp"

	"github.com/phyten/i18nscan/internal/engine"
)

func TestUIはHTMLエスケープでXSSを防止する(t *testing.T) {
	if !hasBrowser() {
		t.Skip("Chrome/Chromiumが見つからないためスキップします")
	}

	s := &Server{Defaults: engine.Options{RepoDir: t.TempDir(), Runner: noGit{}}}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	code := `const a = "<img src=x onerror=alert(1)>你好";`
	var previewHTML, markText, markTitle, status string
	var nodeCount int
	err := chromedp.Run(ctx,
		chromedp.Navigate(srv.URL),
		chromedp.WaitVisible(`#code`, chromedp.ByID),
		chromedp.SetValue(`#file`, "x.ts", chromedp.ByID),
		chromedp.SetValue(`#code`, code, chromedp.ByID),
		chromedp.Click(`#detect-form button`, chromedp.ByQuery),
		chromedp.WaitVisible(`#preview mark`, chromedp.ByQuery),
		chromedp.InnerHTML(`#preview pre`, &previewHTML, chromedp.ByQuery),
		chromedp.Text(`#preview mark`, &markText, chromedp.ByQuery),
		chromedp.AttributeValue(`#preview mark`, "title", &markTitle, nil, chromedp.ByQuery),
		chromedp.Text(`#status`, &status, chromedp.ByID),
		chromedp.Evaluate(`document.querySelectorAll('#preview img, #preview script').length`, &nodeCount),
	)
	if err != nil {
		t.Fatalf("chromedpの操作に失敗しました: %v", err)
	}

	if markText != "<img src=x onerror=alert(1)>你好" {
		t.Fatalf("ハイライト範囲が期待値と異なります: %q", markText)
	}
	if markTitle != "Untranslated text found: <img src=x onerror=alert(1)>你好" {
		t.Fatalf("ホバー文言が期待値と異なります: %q", markTitle)
	}
	if !strings.Contains(previewHTML, "&lt;img") {
		t.Fatalf("プレビューがエスケープされていません: %q", previewHTML)
	}
	if status != "1 untranslated" {
		t.Fatalf("ステータスが期待値と異なります: %q", status)
	}
	if nodeCount != 0 {
		t.Fatalf("危険なノードが挿入されています: %d", nodeCount)
	}
}

func TestRenderは結果表をエスケープする(t *testing.T) {
	if !hasBrowser() {
		t.Skip("Chrome/Chromiumが見つからないためスキップします")
	}

	s := &Server{Defaults: engine.Options{RepoDir: t.TempDir(), Runner: noGit{}}}
	srv := httptest.NewServer(s.Handler())
	t.Cleanup(srv.Close)

	ctx, cancel := chromedp.NewContext(context.Background())
	defer cancel()
	ctx, cancel = context.WithTimeout(ctx, 20*time.Second)
	defer cancel()

	fixture := `({
		items: [{file: 'dir/<file>&.ts', line: 3, column: 7, kind: 'string', text: '<b>粗体</b> & <>', url: 'javascript:alert(1)"'}],
		errors: [{file: 'err<file>', line: 0, stage: 'parse<stage>', message: 'failed <script>alert(1)</script>'}]
	})`
	var location, text, textHTML, errText string
	var nodeCount int
	err := chromedp.Run(ctx,
		chromedp.Navigate(srv.URL),
		chromedp.WaitVisible(`#out`, chromedp.ByID),
		chromedp.Evaluate(`document.getElementById('out').innerHTML = render(`+fixture+`);`, nil),
		chromedp.Text(`#out tbody tr td:nth-child(1) code`, &location, chromedp.ByQuery),
		chromedp.Text(`#out tbody tr td:nth-child(3)`, &text, chromedp.ByQuery),
		chromedp.InnerHTML(`#out tbody tr td:nth-child(3)`, &textHTML, chromedp.ByQuery),
		chromedp.Text(`#out ul.error li`, &errText, chromedp.ByQuery),
		chromedp.Evaluate(`document.querySelectorAll('#out b, #out script').length`, &nodeCount),
	)
	if err != nil {
		t.Fatalf("chromedpの操作に失敗しました: %v", err)
	}
	if location != "dir/<file>&.ts:3:7" {
		t.Fatalf("ロケーションが期待値と異なります: %q", location)
	}
	if text != "<b>粗体</b> & <>" || !strings.Contains(textHTML, "&lt;b&gt;") {
		t.Fatalf("テキストがエスケープされていません: %q / %q", text, textHTML)
	}
	if !strings.Contains(errText, "failed <script>alert(1)</script>") {
		t.Fatalf("エラー表示が期待値と異なります: %q", errText)
	}
	if nodeCount != 0 {
		t.Fatalf("危険なノードが挿入されています: %d", nodeCount)
	}
}

func hasBrowser() bool {
	candidates := []string{"google-chrome", "google-chrome-stable", "chromium", "chromium-browser"}
	for _, name := range candidates {
		if _, err := exec.LookPath(name); err == nil {
			return true
		}
	}
	return false
}
