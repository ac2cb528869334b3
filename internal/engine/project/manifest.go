package project

import (
	"dupguard/internal/core/errors"
	"dupguard/internal/engine/modules"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/BurntSushi/toml"
)

// Manifest describes a module graph for trees without Gradle settings.
//
//	[[modules]]
//	id = ":app"
//	dir = "app"
//	dependencies = [":data"]
//	[modules.sources]
//	java = ["src/main/java"]
//	[modules.variants.release]
//	java = ["src/release/java"]
type Manifest struct {
	Modules []ManifestModule `toml:"modules"`
}

type ManifestModule struct {
	ID           string                 `toml:"id"`
	Dir          string                 `toml:"dir"`
	Dependencies []string               `toml:"dependencies"`
	Sources      KindSources            `toml:"sources"`
	Variants     map[string]KindSources `toml:"variants"`
}

// LoadManifest reads a TOML manifest. Module dirs are relative to the
// manifest's directory unless absolute.
func LoadManifest(path string) (*Project, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.WrapFS(err, "read module manifest", path)
	}
	var m Manifest
	if _, err := toml.Decode(string(data), &m); err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeValidationError, "decode module manifest"),
			errors.CtxPath, path,
		)
	}
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, errors.WrapFS(err, "resolve module manifest", path)
	}
	return FromManifest(filepath.Dir(abs), m)
}

// FromManifest builds a project rooted at root from a decoded manifest.
func FromManifest(root string, m Manifest) (*Project, error) {
	p := newProject(root)
	for i, mod := range m.Modules {
		id := strings.TrimSpace(mod.ID)
		if id == "" {
			return nil, errors.New(errors.CodeValidationError, fmt.Sprintf("modules[%d].id must not be empty", i))
		}
		id = normalizeID(id)
		if _, exists := p.Module(id); exists {
			return nil, errors.New(errors.CodeConflict, fmt.Sprintf("duplicate module id %q in manifest", id))
		}

		dir := strings.TrimSpace(mod.Dir)
		if dir == "" {
			dir = strings.ReplaceAll(strings.TrimPrefix(id, ":"), ":", "/")
		}
		if !filepath.IsAbs(dir) {
			dir = filepath.Join(root, filepath.FromSlash(dir))
		}
		p.AddModule(modules.Module{ID: id, Dir: filepath.Clean(dir)})

		if len(mod.Sources) > 0 || len(mod.Variants) > 0 {
			p.explicit[id] = explicitSources{all: mod.Sources, byVariant: mod.Variants}
		}
	}

	for _, mod := range m.Modules {
		from := normalizeID(strings.TrimSpace(mod.ID))
		for _, dep := range mod.Dependencies {
			to := normalizeID(dep)
			if _, ok := p.Module(to); !ok {
				return nil, errors.New(errors.CodeNotFound, fmt.Sprintf("module %q depends on unknown module %q", from, to))
			}
			if to != from {
				p.AddDependency(from, to)
			}
		}
	}
	return p, nil
}
