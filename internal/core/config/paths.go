package config

import (
	"fmt"
	"path/filepath"
	"strings"
)

type ResolvedPaths struct {
	ProjectRoot string
	Manifest    string
	OutputPath  string
}

// ResolvePaths makes project and output paths absolute relative to base,
// which is normally the directory holding the config file.
func ResolvePaths(cfg *Config, base string) (ResolvedPaths, error) {
	if strings.TrimSpace(base) == "" {
		return ResolvedPaths{}, fmt.Errorf("base directory must not be empty")
	}
	absBase, err := filepath.Abs(base)
	if err != nil {
		return ResolvedPaths{}, fmt.Errorf("resolve base directory %q: %w", base, err)
	}

	resolved := ResolvedPaths{
		ProjectRoot: ResolveRelative(absBase, cfg.Project.RootDir),
	}
	if cfg.Project.Manifest != "" {
		resolved.Manifest = ResolveRelative(absBase, cfg.Project.Manifest)
	}
	if cfg.Output.Path != "" {
		resolved.OutputPath = ResolveRelative(absBase, cfg.Output.Path)
	}
	return resolved, nil
}

func ResolveRelative(base, value string) string {
	raw := strings.TrimSpace(value)
	if raw == "" {
		return filepath.Clean(base)
	}
	if filepath.IsAbs(raw) {
		return filepath.Clean(raw)
	}
	return filepath.Clean(filepath.Join(base, raw))
}
