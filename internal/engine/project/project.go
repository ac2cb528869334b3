// Package project loads a host module graph from disk and resolves the
// per-variant source directories of each module.
package project

import (
	"dupguard/internal/engine/modules"
	"path/filepath"
)

// KindSources maps a directory kind (such as "java") to directories.
type KindSources map[string][]string

// Project is a loaded module graph plus the source layout of its modules.
// It satisfies both the module-graph and the source-directory ports.
type Project struct {
	*modules.Graph
	Root string

	// explicit holds manifest-declared directories keyed by module ID.
	explicit map[string]explicitSources
}

type explicitSources struct {
	all       KindSources
	byVariant map[string]KindSources
}

func newProject(root string) *Project {
	return &Project{
		Graph:    modules.NewGraph(),
		Root:     root,
		explicit: make(map[string]explicitSources),
	}
}

// SourceDirs returns the roots of kind for module m under variant.
// Manifest-declared directories win; otherwise Android source-set
// conventions apply. Directories are not checked for existence.
func (p *Project) SourceDirs(m modules.Module, variant, kind string) ([]string, error) {
	if ex, ok := p.explicit[m.ID]; ok {
		dirs := append([]string(nil), ex.all[kind]...)
		dirs = append(dirs, ex.byVariant[variant][kind]...)
		if len(dirs) > 0 || ex.declares(kind) {
			return absoluteUnder(m.Dir, dirs), nil
		}
	}
	return ConventionDirs(m.Dir, variant, kind), nil
}

func (e explicitSources) declares(kind string) bool {
	if _, ok := e.all[kind]; ok {
		return true
	}
	for _, ks := range e.byVariant {
		if _, ok := ks[kind]; ok {
			return true
		}
	}
	return false
}

func absoluteUnder(base string, dirs []string) []string {
	out := make([]string, 0, len(dirs))
	for _, d := range dirs {
		if filepath.IsAbs(d) {
			out = append(out, filepath.Clean(d))
			continue
		}
		out = append(out, filepath.Join(base, d))
	}
	return out
}
