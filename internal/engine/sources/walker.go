package sources

import (
	"context"
	"dupguard/internal/core/errors"
	"dupguard/internal/shared/util"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/gobwas/glob"
)

// FSWalker lists regular files beneath a directory on the local filesystem.
type FSWalker struct {
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	limiter      *util.Limiter
}

// NewFSWalker compiles the exclusion globs, which match base names.
// limiter may be nil.
func NewFSWalker(excludeDirs, excludeFiles []string, limiter *util.Limiter) (*FSWalker, error) {
	dirGlobs, err := compileGlobs(excludeDirs, "exclude dir")
	if err != nil {
		return nil, err
	}
	fileGlobs, err := compileGlobs(excludeFiles, "exclude file")
	if err != nil {
		return nil, err
	}
	return &FSWalker{
		excludeDirs:  dirGlobs,
		excludeFiles: fileGlobs,
		limiter:      limiter,
	}, nil
}

func compileGlobs(patterns []string, label string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, p := range patterns {
		g, err := glob.Compile(p)
		if err != nil {
			return nil, errors.Wrap(err, errors.CodeValidationError, "invalid "+label+" pattern "+p)
		}
		out = append(out, g)
	}
	return out, nil
}

// ListFiles walks dir recursively and returns absolute paths of regular files.
// Symlinks to regular files are included; symlinks to directories are not
// followed. A missing dir contributes nothing. Any other filesystem error
// aborts the walk.
func (w *FSWalker) ListFiles(ctx context.Context, dir string) ([]string, error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return nil, errors.WrapFS(err, "resolve source root", dir)
	}

	info, err := os.Stat(root)
	if err != nil {
		if stderrors.Is(err, fs.ErrNotExist) {
			slog.Debug("source root does not exist", "path", root)
			return nil, nil
		}
		return nil, errors.WrapFS(err, "stat source root", root)
	}
	if !info.IsDir() {
		slog.Debug("source root is not a directory", "path", root)
		return nil, nil
	}

	walkRoot := root
	if li, err := os.Lstat(root); err == nil && li.Mode()&fs.ModeSymlink != 0 {
		// A trailing separator makes WalkDir descend through a linked root.
		walkRoot = root + string(filepath.Separator)
	}

	var files []string
	err = filepath.WalkDir(walkRoot, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				// Removed between listing and visiting.
				return nil
			}
			return errors.WrapFS(err, "walk source root", path)
		}
		if err := ctx.Err(); err != nil {
			return err
		}

		if d.IsDir() {
			if path != walkRoot && w.matchAny(w.excludeDirs, d.Name()) {
				return filepath.SkipDir
			}
			return w.limiter.Wait(ctx, 1)
		}

		if w.matchAny(w.excludeFiles, d.Name()) {
			return nil
		}

		switch {
		case d.Type().IsRegular():
			files = append(files, filepath.Clean(path))
		case d.Type()&fs.ModeSymlink != 0:
			target, err := os.Stat(path)
			if err != nil {
				if stderrors.Is(err, fs.ErrNotExist) {
					slog.Debug("skipping broken symlink", "path", path)
					return nil
				}
				return errors.WrapFS(err, "resolve symlink", path)
			}
			if target.Mode().IsRegular() {
				files = append(files, filepath.Clean(path))
			}
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return files, nil
}

func (w *FSWalker) matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}
