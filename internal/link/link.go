// Package link builds GitHub-compatible blob URLs for reported text.
package link

import (
	"fmt"
	"net/url"
	"path"
	"path/filepath"
	"strings"
)

// Blob はコミット SHA・ファイル・行範囲 (1 始まり) から blob URL を生成します。
// 1 行に収まる場合は #L10、複数行にまたがる場合は #L10-L12 になります。
func Blob(r Remote, sha, file string, startLine, endLine int) string {
	if sha == "" || file == "" || startLine <= 0 || r.Host == "" {
		return ""
	}
	anchor := fmt.Sprintf("#L%d", startLine)
	if endLine > startLine {
		anchor += fmt.Sprintf("-L%d", endLine)
	}
	return fmt.Sprintf("%s/blob/%s/%s%s", r.WebURL(), url.PathEscape(sha), escapePath(file), anchor)
}

func escapePath(file string) string {
	parts := strings.Split(filepath.ToSlash(file), "/")
	for i, part := range parts {
		parts[i] = url.PathEscape(part)
	}
	return path.Join(parts...)
}
