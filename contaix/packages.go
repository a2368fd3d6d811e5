package contaix

import (
	"context"
	"fmt"
	"go/build"
	"os"
	"path/filepath"
	"strings"

	log "github.com/rs/zerolog/log"
)

// GoPackages locates Go packages the way the go tool does
type GoPackages struct {
	// SrcDir is the directory import paths are resolved from; empty means the working directory
	SrcDir string
}

// Roots returns the single directory holding the package
func (g GoPackages) Roots(importPath string) ([]string, error) {
	srcDir := g.SrcDir
	if srcDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("failed to get working directory: %w", err)
		}
		srcDir = wd
	}
	pkg, err := build.Import(importPath, srcDir, build.FindOnly)
	if err != nil {
		return nil, err
	}
	if pkg.Dir == "" {
		return nil, nil
	}
	return []string{pkg.Dir}, nil
}

// PackageContexts aggregates and saves the code of local packages
type PackageContexts struct {
	SaveDir  string
	Resolver *Resolver
}

// NewPackageContexts creates a PackageContexts saving under dir
func NewPackageContexts(dir string, resolver *Resolver) *PackageContexts {
	if resolver == nil {
		resolver = NewResolver(nil)
	}
	return &PackageContexts{SaveDir: Fullpath(dir), Resolver: resolver}
}

// SaveSingle writes the aggregate of one package to <SaveDir>/<name>.go.md and returns the path
func (p *PackageContexts) SaveSingle(ctx context.Context, name string) (string, error) {
	path := filepath.Join(p.SaveDir, packageFileName(name)+".go.md")
	res, err := CodeAggregate(ctx, p.Resolver, PackageSource{ImportPath: name}, Config{Egress: ToFile(path)})
	if err != nil {
		return "", err
	}
	log.Debug().Str("package", name).Str("path", res.Document).Msg("saved package context")
	return res.Document, nil
}

// Multiple aggregates several packages into "# <pkg>" sections. With an empty name
// the document is returned; otherwise it is written to <SaveDir>/<name> (".go.md"
// appended when name has no extension) and the path is returned.
func (p *PackageContexts) Multiple(ctx context.Context, names []string, output string) (string, error) {
	sections := make([]string, 0, len(names))
	for _, name := range names {
		res, err := CodeAggregate(ctx, p.Resolver, PackageSource{ImportPath: name}, Config{})
		if err != nil {
			return "", err
		}
		sections = append(sections, "# "+name+"\n\n"+res.Document)
	}
	doc := strings.Join(sections, "\n\n\n")
	if output == "" {
		return doc, nil
	}
	if filepath.Ext(output) == "" {
		output += ".go.md"
	}
	return ToFile(filepath.Join(p.SaveDir, output)).Route(doc)
}

func packageFileName(importPath string) string {
	return strings.NewReplacer("/", "_", "\\", "_", ".", "_").Replace(importPath)
}
