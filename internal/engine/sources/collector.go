// Package sources enumerates the source roots of each module for a build
// variant and collects the files beneath them.
package sources

import (
	"context"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/engine/modules"
	"dupguard/internal/shared/util"
	"fmt"
	"log/slog"

	"golang.org/x/sync/errgroup"
)

// Collector gathers the files of every module in a closure.
type Collector struct {
	dirs    ports.SourceDirResolver
	walker  ports.FileWalker
	kinds   []string
	workers int
}

// NewCollector builds a collector for the given directory kinds. kinds must
// not be empty; workers below 1 means sequential collection.
func NewCollector(dirs ports.SourceDirResolver, walker ports.FileWalker, kinds []string, workers int) (*Collector, error) {
	if dirs == nil || walker == nil {
		return nil, errors.New(errors.CodeValidationError, "collector requires a directory resolver and a file walker")
	}
	if len(kinds) == 0 {
		return nil, errors.New(errors.CodeValidationError, "collector requires at least one directory kind")
	}
	if workers < 1 {
		workers = 1
	}
	return &Collector{
		dirs:    dirs,
		walker:  walker,
		kinds:   append([]string(nil), kinds...),
		workers: workers,
	}, nil
}

// Kinds returns the configured directory kinds.
func (c *Collector) Kinds() []string {
	return append([]string(nil), c.kinds...)
}

// Roots resolves the source roots of each module for variant, indexed like
// mods. A root claimed by an earlier module or kind is not repeated.
func (c *Collector) Roots(mods []modules.Module, variant string) ([][]string, error) {
	claimed := make(map[string]bool)
	out := make([][]string, len(mods))
	for i, m := range mods {
		var roots []string
		for _, kind := range c.kinds {
			dirs, err := c.dirs.SourceDirs(m, variant, kind)
			if err != nil {
				de := errors.Wrap(err, errors.CodeInternal, "resolve source directories")
				de = errors.AddContext(de, errors.CtxModule, m.ID)
				de = errors.AddContext(de, errors.CtxVariant, variant)
				return nil, errors.AddContext(de, errors.CtxKind, kind)
			}
			for _, dir := range util.UniqueCleanPaths(dirs) {
				if claimed[dir] {
					continue
				}
				claimed[dir] = true
				roots = append(roots, dir)
			}
		}
		out[i] = roots
	}
	return out, nil
}

// Collect walks every source root of every module and returns the files
// found, grouped by module in mods order. Modules are walked concurrently;
// any failure fails the whole collection so no partial result escapes.
func (c *Collector) Collect(ctx context.Context, mods []modules.Module, variant string) ([]string, error) {
	roots, err := c.Roots(mods, variant)
	if err != nil {
		return nil, err
	}

	slots := make([][]string, len(mods))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.workers)

	for i := range mods {
		g.Go(func() error {
			var files []string
			for _, root := range roots[i] {
				found, err := c.walker.ListFiles(gctx, root)
				if err != nil {
					return errors.AddContext(err, errors.CtxModule, mods[i].ID)
				}
				files = append(files, found...)
			}
			slog.Debug("collected module sources", "module", mods[i].ID, "roots", len(roots[i]), "files", len(files))
			slots[i] = files
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, fmt.Errorf("collect sources for variant %q: %w", variant, err)
	}

	total := 0
	for _, s := range slots {
		total += len(s)
	}
	paths := make([]string, 0, total)
	for _, s := range slots {
		paths = append(paths, s...)
	}
	return paths, nil
}
