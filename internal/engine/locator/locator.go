// Package locator enumerates and parses the Rust sources below a discovery
// root.
package locator

import (
	"context"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"

	"utoipauto/internal/core/errors"
	"utoipauto/internal/engine/discover"
	"utoipauto/internal/engine/parser"
	"utoipauto/internal/shared/observability"
	"utoipauto/internal/shared/util"

	"github.com/gobwas/glob"
	"golang.org/x/sync/errgroup"
)

type Options struct {
	ExcludeDirs  []string
	ExcludeFiles []string
	Workers      int
}

// Locator implements discover.SourceLocator on the local filesystem.
type Locator struct {
	parser       *parser.Parser
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	workers      int
}

var _ discover.SourceLocator = (*Locator)(nil)

func New(p *parser.Parser, opts Options) (*Locator, error) {
	dirGlobs, err := compileGlobs(opts.ExcludeDirs)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude dir pattern: %w", err)
	}
	fileGlobs, err := compileGlobs(opts.ExcludeFiles)
	if err != nil {
		return nil, fmt.Errorf("invalid exclude file pattern: %w", err)
	}

	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}
	return &Locator{
		parser:       p,
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
		workers:      workers,
	}, nil
}

func compileGlobs(patterns []string) ([]glob.Glob, error) {
	globs := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("%q: %w", p, err)
		}
		globs = append(globs, g)
	}
	return globs, nil
}

// Locate reads and parses every source file below root, sorted by path.
// Parsing runs on up to Options.Workers goroutines; the first failure
// cancels the rest.
func (l *Locator) Locate(ctx context.Context, root discover.Root) ([]discover.SourceFile, error) {
	paths, rootIsDir, err := l.Files(root.Path)
	if err != nil {
		return nil, err
	}

	files := make([]discover.SourceFile, len(paths))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.workers)
	for i, path := range paths {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			file, err := l.load(path)
			if err != nil {
				return err
			}
			file.Module = ModuleName(root, rootIsDir, path)
			files[i] = file
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	slog.Debug("located sources", "root", root.Path, "namespace", root.Namespace, "files", len(files))
	return files, nil
}

func (l *Locator) load(path string) (discover.SourceFile, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return discover.SourceFile{}, errors.AddContext(
			errors.Wrap(err, errors.CodeParseFailure, "read source"), errors.CtxPath, path)
	}
	tree, err := l.parser.ParseFile(path, content)
	if err != nil {
		return discover.SourceFile{}, err
	}
	observability.FilesScannedTotal.Inc()
	return discover.SourceFile{Path: path, Source: content, Tree: tree}, nil
}

// Files lists the supported, non-excluded source files below rootPath in
// lexical order. A file root yields itself.
func (l *Locator) Files(rootPath string) ([]string, bool, error) {
	info, err := os.Stat(rootPath)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, false, errors.AddContext(
				errors.Wrap(err, errors.CodeNotFound, "discovery root not found"), errors.CtxPath, rootPath)
		}
		return nil, false, err
	}
	if !info.IsDir() {
		if !l.parser.IsSupportedPath(rootPath) {
			return nil, false, errors.AddContext(
				errors.New(errors.CodeNotSupported, "unsupported source file"), errors.CtxPath, rootPath)
		}
		return []string{rootPath}, false, nil
	}

	var files []string
	err = filepath.WalkDir(rootPath, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			if path != rootPath && l.ExcludedDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !l.parser.IsSupportedPath(path) || l.ExcludedFile(path) {
			return nil
		}
		files = append(files, path)
		return nil
	})
	if err != nil {
		return nil, true, fmt.Errorf("walk %s: %w", rootPath, err)
	}

	sort.Strings(files)
	return files, true, nil
}

// ExcludedDir matches the directory's base name against the exclude globs.
func (l *Locator) ExcludedDir(path string) bool {
	return matchAny(l.excludeDirs, path)
}

func (l *Locator) ExcludedFile(path string) bool {
	return matchAny(l.excludeFiles, path)
}

// Supported reports whether path is a source file this locator would yield.
func (l *Locator) Supported(path string) bool {
	return l.parser.IsSupportedPath(path) && !l.ExcludedFile(path)
}

func matchAny(globs []glob.Glob, path string) bool {
	base := filepath.Base(path)
	norm := util.NormalizePatternPath(path)
	for _, g := range globs {
		if g.Match(base) || g.Match(norm) {
			return true
		}
	}
	return false
}
