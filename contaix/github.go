package contaix

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/go-git/go-git/v5"
	"github.com/go-git/go-git/v5/plumbing/transport/http"
	log "github.com/rs/zerolog/log"
)

// GitFetcher keeps shallow clones of remote repositories under a cache directory
type GitFetcher struct {
	cacheDir string
}

// NewGitFetcher creates a fetcher; an empty cacheDir uses the user cache directory
func NewGitFetcher(cacheDir string) *GitFetcher {
	return &GitFetcher{cacheDir: cacheDir}
}

// EnsureLocal returns the local checkout of url, cloning it when absent
func (g *GitFetcher) EnsureLocal(ctx context.Context, rawURL string) (string, error) {
	loc, err := parseRepoLocator(rawURL)
	if err != nil {
		return "", err
	}
	base, err := g.baseDir()
	if err != nil {
		return "", err
	}
	dir := filepath.Join(base, loc.host, loc.owner, loc.repo)
	if _, err := os.Stat(filepath.Join(dir, ".git")); err == nil {
		log.Debug().Str("path", dir).Msg("repository already cloned")
		return dir, nil
	}
	if err := os.MkdirAll(filepath.Dir(dir), 0755); err != nil {
		return "", fmt.Errorf("failed to create cache directory: %w", err)
	}
	// clone next to the final location so a failed clone never looks like a checkout
	tempDir, err := os.MkdirTemp(filepath.Dir(dir), loc.repo+"-clone-")
	if err != nil {
		return "", fmt.Errorf("failed to create temp directory: %w", err)
	}
	defer os.RemoveAll(tempDir)
	cloneOpts := &git.CloneOptions{
		URL:      loc.cloneURL(),
		Progress: nil,
		Depth:    1,
	}
	if token := os.Getenv("GH_TOKEN"); token != "" {
		log.Debug().Msg("using GitHub token for authentication")
		cloneOpts.Auth = &http.BasicAuth{
			Username: "git", // can be anything but not empty
			Password: token,
		}
	}
	if _, err := git.PlainCloneContext(ctx, tempDir, false, cloneOpts); err != nil {
		return "", fmt.Errorf("failed to clone repository: %w", err)
	}
	if err := os.RemoveAll(dir); err != nil {
		return "", fmt.Errorf("failed to clear stale checkout: %w", err)
	}
	if err := os.Rename(tempDir, dir); err != nil {
		return "", fmt.Errorf("failed to move clone into cache: %w", err)
	}
	log.Debug().Str("url", loc.cloneURL()).Str("path", dir).Msg("cloned repository")
	return dir, nil
}

func (g *GitFetcher) baseDir() (string, error) {
	if g.cacheDir != "" {
		return Fullpath(g.cacheDir), nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("failed to locate cache directory: %w", err)
	}
	return filepath.Join(cache, "contaix", "repos"), nil
}

type repoLocator struct {
	host  string
	owner string
	repo  string
}

func (l repoLocator) cloneURL() string {
	return "https://" + l.host + "/" + l.owner + "/" + l.repo
}

// parseRepoLocator accepts https://host/owner/repo[.git][/tree/...], git@host:owner/repo.git
// and host/owner/repo
func parseRepoLocator(raw string) (repoLocator, error) {
	s := strings.TrimSpace(raw)
	if strings.HasPrefix(s, "git@") {
		s = "https://" + strings.Replace(strings.TrimPrefix(s, "git@"), ":", "/", 1)
	}
	if !strings.Contains(s, "://") {
		s = "https://" + s
	}
	u, err := url.Parse(s)
	if err != nil {
		return repoLocator{}, fmt.Errorf("failed to parse repository URL %q: %w", raw, err)
	}
	parts := strings.Split(strings.Trim(u.Path, "/"), "/")
	if u.Host == "" || len(parts) < 2 || parts[0] == "" || parts[1] == "" {
		return repoLocator{}, fmt.Errorf("%w: %q is not a repository URL", ErrUnsupportedSource, raw)
	}
	return repoLocator{
		host:  u.Host,
		owner: parts[0],
		repo:  strings.TrimSuffix(parts[1], ".git"),
	}, nil
}
