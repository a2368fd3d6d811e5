package contaix

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	log "github.com/rs/zerolog/log"
)

var (
	// ErrUnsupportedSource is returned when a source descriptor cannot be resolved
	ErrUnsupportedSource = errors.New("unsupported source")
	// ErrAmbiguousPackage is returned when a package does not map to exactly one directory
	ErrAmbiguousPackage = errors.New("package must resolve to exactly one directory")
)

// Source is one of DirSource, FileSource, RepoSource, PackageSource or StoreSource
type Source interface {
	resolve(ctx context.Context, r *Resolver) (Store, error)
	String() string
}

// DirSource is a local directory
type DirSource struct{ Path string }

// FileSource is a single local file
type FileSource struct{ Path string }

// RepoSource is a remote repository locator such as https://github.com/user/repo
type RepoSource struct{ URL string }

// PackageSource is a Go import path resolvable to a directory on disk
type PackageSource struct{ ImportPath string }

// StoreSource is a store that is already in memory
type StoreSource struct{ Store Store }

func (s DirSource) String() string     { return s.Path }
func (s FileSource) String() string    { return s.Path }
func (s RepoSource) String() string    { return s.URL }
func (s PackageSource) String() string { return s.ImportPath }
func (s StoreSource) String() string   { return "<store>" }

// RepoFetcher ensures a local copy of a remote repository and returns its directory
type RepoFetcher interface {
	EnsureLocal(ctx context.Context, url string) (string, error)
}

// PackageLocator lists the on-disk root directories of an importable package
type PackageLocator interface {
	Roots(name string) ([]string, error)
}

// Resolver turns sources into stores
type Resolver struct {
	// KeyFilter governs which files a directory store yields; nil means DefaultKeyFilter
	KeyFilter KeyFilter
	// Ignore adds patterns skipped while scanning directories
	Ignore []string
	// SkipNoise also drops dependency and VCS directories, lock files, media and
	// binary files; see TextFiles.SkipNoise
	SkipNoise bool
	Repos     RepoFetcher
	Packages  PackageLocator
}

// NewResolver creates a resolver backed by go-git and the Go toolchain's package lookup
func NewResolver(filter KeyFilter) *Resolver {
	return &Resolver{
		KeyFilter: filter,
		Repos:     NewGitFetcher(""),
		Packages:  GoPackages{},
	}
}

// Resolve maps any source to a store
func (r *Resolver) Resolve(ctx context.Context, src Source) (Store, error) {
	if src == nil {
		return nil, fmt.Errorf("%w: <nil>", ErrUnsupportedSource)
	}
	log.Debug().Str("source", src.String()).Msg("resolving source")
	return src.resolve(ctx, r)
}

// ResolveString classifies a descriptor with ParseSource and resolves it
func (r *Resolver) ResolveString(ctx context.Context, s string) (Store, error) {
	src, err := r.ParseSource(s)
	if err != nil {
		return nil, err
	}
	return r.Resolve(ctx, src)
}

// ParseSource classifies a string descriptor.
// Order: existing directory, existing file, importable package, then anything
// naming a known code host. A URL on any other host is unsupported.
func (r *Resolver) ParseSource(s string) (Source, error) {
	if s == "" {
		return nil, fmt.Errorf("%w: empty source", ErrUnsupportedSource)
	}
	if info, err := os.Stat(s); err == nil {
		if info.IsDir() {
			return DirSource{Path: s}, nil
		}
		if info.Mode().IsRegular() {
			return FileSource{Path: s}, nil
		}
	}
	if strings.Contains(s, "\n") {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, s)
	}
	if hasRemoteScheme(s) {
		if isRepoLocator(s) {
			return RepoSource{URL: s}, nil
		}
		return nil, fmt.Errorf("%w: %q is not on a known code host", ErrUnsupportedSource, s)
	}
	if r.Packages != nil && looksLikeImportPath(s) {
		if roots, err := r.Packages.Roots(s); err == nil && len(roots) > 0 {
			return PackageSource{ImportPath: s}, nil
		}
	}
	if isRepoLocator(s) {
		return RepoSource{URL: s}, nil
	}
	return nil, fmt.Errorf("%w: %q", ErrUnsupportedSource, s)
}

func (r *Resolver) filter() KeyFilter {
	if r.KeyFilter == nil {
		return DefaultKeyFilter
	}
	return r.KeyFilter
}

func (r *Resolver) directory(path string) (Store, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve path %s: %w", path, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return nil, fmt.Errorf("failed to stat %s: %w", path, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("%w: %s is not a directory", ErrUnsupportedSource, path)
	}
	store := NewTextFiles(abs, r.filter(), r.Ignore...)
	if r.SkipNoise {
		store.SkipNoise()
	}
	return store, nil
}

func (s DirSource) resolve(_ context.Context, r *Resolver) (Store, error) {
	return r.directory(s.Path)
}

func (s FileSource) resolve(_ context.Context, _ *Resolver) (Store, error) {
	content, err := os.ReadFile(s.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to read file %s: %w", s.Path, err)
	}
	return NewMapStore(Entry{Key: filepath.Base(s.Path), Value: decodeText(content)}), nil
}

func (s RepoSource) resolve(ctx context.Context, r *Resolver) (Store, error) {
	if r.Repos == nil {
		return nil, fmt.Errorf("%w: no repository fetcher for %s", ErrUnsupportedSource, s.URL)
	}
	dir, err := r.Repos.EnsureLocal(ctx, s.URL)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch repository %s: %w", s.URL, err)
	}
	log.Debug().Str("url", s.URL).Str("path", dir).Msg("using local repository copy")
	return r.directory(dir)
}

func (s PackageSource) resolve(_ context.Context, r *Resolver) (Store, error) {
	if r.Packages == nil {
		return nil, fmt.Errorf("%w: no package locator for %s", ErrUnsupportedSource, s.ImportPath)
	}
	roots, err := r.Packages.Roots(s.ImportPath)
	if err != nil {
		return nil, fmt.Errorf("failed to locate package %s: %w", s.ImportPath, err)
	}
	if len(roots) != 1 {
		return nil, fmt.Errorf("%w: %s has %d: %v", ErrAmbiguousPackage, s.ImportPath, len(roots), roots)
	}
	return r.directory(roots[0])
}

func (s StoreSource) resolve(_ context.Context, _ *Resolver) (Store, error) {
	if s.Store == nil {
		return nil, fmt.Errorf("%w: nil store", ErrUnsupportedSource)
	}
	return s.Store, nil
}

func hasRemoteScheme(s string) bool {
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://") || strings.HasPrefix(s, "git@")
}

var codeHosts = []string{"github.com", "gitlab.com", "bitbucket.org"}

func isRepoLocator(s string) bool {
	if strings.Contains(s, "\n") {
		return false
	}
	for _, h := range codeHosts {
		if strings.Contains(s, h) {
			return true
		}
	}
	return false
}

func looksLikeImportPath(s string) bool {
	if strings.ContainsAny(s, " \t\\:") || strings.HasPrefix(s, "/") || strings.HasPrefix(s, ".") {
		return false
	}
	return true
}
