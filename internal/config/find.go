package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// 設定ファイルの探索順: 明示指定 > リポジトリから上位へ > XDG > HOME
const (
	SourceExplicit = "explicit"
	SourceUpward   = "cwd-up"
	SourceXDG      = "xdg"
	SourceHome     = "home"
)

var (
	dotfileNames = []string{".i18nscan.yaml", ".i18nscan.yml", ".i18nscan.toml", ".i18nscan.json"}
	xdgNames     = []string{"config.yaml", "config.yml", "config.toml", "config.json"}
)

type candidate struct {
	path   string
	source string
}

// Find returns the first existing config file and where it was found.
// No file at all is not an error; path is then empty.
func Find(repoDir, explicitPath, xdgHome, home string) (path, source string, err error) {
	if explicit := strings.TrimSpace(explicitPath); explicit != "" {
		p, err := checkExplicit(explicit)
		if err != nil {
			return "", "", err
		}
		return p, SourceExplicit, nil
	}
	cands, err := searchPaths(repoDir, xdgHome, home)
	if err != nil {
		return "", "", err
	}
	for _, c := range cands {
		if isRegular(c.path) {
			return c.path, c.source, nil
		}
	}
	return "", "", nil
}

func checkExplicit(p string) (string, error) {
	abs, err := filepath.Abs(p)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("I18NSCAN_CONFIG %q points to a directory", abs)
	}
	return abs, nil
}

// searchPaths lists every candidate in priority order.
func searchPaths(repoDir, xdgHome, home string) ([]candidate, error) {
	start := strings.TrimSpace(repoDir)
	if start == "" {
		start = "."
	}
	dir, err := filepath.Abs(start)
	if err != nil {
		return nil, err
	}
	var out []candidate
	for {
		out = appendNames(out, dir, dotfileNames, SourceUpward)
		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}

	home = strings.TrimSpace(home)
	if home == "" {
		home, _ = os.UserHomeDir()
	}
	xdg := strings.TrimSpace(xdgHome)
	if xdg == "" && home != "" {
		xdg = filepath.Join(home, ".config")
	}
	if xdg != "" {
		out = appendNames(out, filepath.Join(xdg, "i18nscan"), xdgNames, SourceXDG)
	}
	if home != "" {
		out = appendNames(out, home, dotfileNames, SourceHome)
	}
	return out, nil
}

func appendNames(out []candidate, dir string, names []string, source string) []candidate {
	for _, n := range names {
		out = append(out, candidate{path: filepath.Join(dir, n), source: source})
	}
	return out
}

func isRegular(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}
