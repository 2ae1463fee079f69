package link

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"

	"github.com/phyten/i18nscan/internal/execx"
)

// Remote はリンク生成に必要なリモートのホスト・オーナー・リポジトリです。
type Remote struct {
	Host   string
	Owner  string
	Repo   string
	Scheme string
}

// DetectRemote は repoDir のリモート URL (既定は origin、I18NSCAN_LINK_REMOTE で変更可) を解析します。
func DetectRemote(ctx context.Context, runner execx.Runner, repoDir string) (Remote, error) {
	name := strings.TrimSpace(os.Getenv("I18NSCAN_LINK_REMOTE"))
	if name == "" {
		name = "origin"
	}
	key := "remote." + name + ".url"
	raw, err := execx.Git(ctx, runner, repoDir, "config", "--get", key)
	if err != nil {
		return Remote{}, err
	}
	if raw == "" {
		return Remote{}, fmt.Errorf("%s is empty", key)
	}
	return ParseRemote(raw)
}

// ParseRemote accepts scp-like ssh remotes (git@host:owner/repo.git) and
// ssh, git, http and https URLs.
func ParseRemote(raw string) (Remote, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Remote{}, errors.New("empty remote url")
	}
	if rest, ok := strings.CutPrefix(raw, "git@"); ok && !strings.Contains(raw, "://") {
		host, p, found := strings.Cut(rest, ":")
		if !found {
			return Remote{}, fmt.Errorf("invalid ssh remote: %s", raw)
		}
		owner, repo, err := ownerRepo(p)
		if err != nil {
			return Remote{}, err
		}
		return Remote{Host: strings.ToLower(strings.TrimSpace(host)), Owner: owner, Repo: repo}, nil
	}
	u, err := url.Parse(raw)
	if err != nil {
		return Remote{}, fmt.Errorf("invalid remote url: %w", err)
	}
	scheme := strings.ToLower(u.Scheme)
	switch scheme {
	case "ssh", "git", "http", "https":
	default:
		return Remote{}, fmt.Errorf("unsupported remote url: %s", raw)
	}
	p, err := url.PathUnescape(u.Path)
	if err != nil {
		return Remote{}, fmt.Errorf("invalid remote path: %w", err)
	}
	owner, repo, err := ownerRepo(p)
	if err != nil {
		return Remote{}, err
	}
	r := Remote{Host: strings.ToLower(u.Host), Owner: owner, Repo: repo}
	if scheme == "http" || scheme == "https" {
		r.Scheme = scheme
	}
	return r, nil
}

func ownerRepo(p string) (string, string, error) {
	cleaned := strings.ReplaceAll(strings.TrimSpace(p), "\\", "/")
	cleaned = strings.Trim(cleaned, "/")
	cleaned = strings.TrimSuffix(cleaned, ".git")
	if cleaned == "" {
		return "", "", errors.New("missing owner/repo in remote url")
	}
	segments := strings.Split(cleaned, "/")
	if len(segments) < 2 {
		return "", "", errors.New("remote url must include owner and repo")
	}
	owner, repo := segments[len(segments)-2], segments[len(segments)-1]
	if owner == "" || repo == "" {
		return "", "", errors.New("invalid owner or repo in remote url")
	}
	return owner, repo, nil
}

// SchemeForLinks は http/https のみを返します。I18NSCAN_LINK_SCHEME が優先され、
// それ以外は https が既定です。
func (r Remote) SchemeForLinks() string {
	switch override := strings.ToLower(strings.TrimSpace(os.Getenv("I18NSCAN_LINK_SCHEME"))); override {
	case "http", "https":
		return override
	}
	if strings.EqualFold(r.Scheme, "http") {
		return "http"
	}
	return "https"
}

// WebURL はリポジトリのブラウズ用ベース URL を返します。
func (r Remote) WebURL() string {
	host := strings.TrimSuffix(r.Host, "/")
	return fmt.Sprintf("%s://%s/%s/%s", r.SchemeForLinks(), host, url.PathEscape(r.Owner), url.PathEscape(r.Repo))
}
