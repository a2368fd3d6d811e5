package contaix

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseRepoLocator(t *testing.T) {
	tests := []struct {
		in   string
		want repoLocator
	}{
		{"https://github.com/user/repo", repoLocator{"github.com", "user", "repo"}},
		{"https://github.com/user/repo.git", repoLocator{"github.com", "user", "repo"}},
		{"https://github.com/user/repo/tree/main/pkg", repoLocator{"github.com", "user", "repo"}},
		{"git@gitlab.com:group/project.git", repoLocator{"gitlab.com", "group", "project"}},
		{"bitbucket.org/team/repo", repoLocator{"bitbucket.org", "team", "repo"}},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := parseRepoLocator(tt.in)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	for _, bad := range []string{"https://github.com/", "https://github.com/user", "://"} {
		_, err := parseRepoLocator(bad)
		assert.Error(t, err, bad)
	}
	loc, err := parseRepoLocator("git@github.com:user/repo.git")
	require.NoError(t, err)
	assert.Equal(t, "https://github.com/user/repo", loc.cloneURL())
}

func TestGitFetcherReusesCachedCheckout(t *testing.T) {
	cache := t.TempDir()
	checkout := filepath.Join(cache, "github.com", "user", "repo")
	require.NoError(t, os.MkdirAll(filepath.Join(checkout, ".git"), 0755))
	writeFiles(t, checkout, map[string]string{"main.go": "package main"})

	dir, err := NewGitFetcher(cache).EnsureLocal(context.Background(), "https://github.com/user/repo.git")
	require.NoError(t, err)
	assert.Equal(t, checkout, dir)

	r := &Resolver{KeyFilter: SuffixKeys(".go"), Repos: NewGitFetcher(cache)}
	s, err := r.ResolveString(context.Background(), "https://github.com/user/repo")
	require.NoError(t, err)
	keys, err := s.Keys()
	require.NoError(t, err)
	assert.Equal(t, []string{"main.go"}, keys)
}

func TestGitFetcherRejectsBadLocator(t *testing.T) {
	_, err := NewGitFetcher(t.TempDir()).EnsureLocal(context.Background(), "https://github.com/only-owner")
	assert.ErrorIs(t, err, ErrUnsupportedSource)
}
