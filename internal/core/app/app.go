package app

import (
	"dupguard/internal/core/config"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/engine/modules"
	"dupguard/internal/engine/project"
	"dupguard/internal/engine/sources"
	"dupguard/internal/shared/util"
	"log/slog"
	"sync"
	"time"
)

type App struct {
	Config *config.Config
	Paths  config.ResolvedPaths

	graph     ports.ModuleGraph
	resolver  *modules.Resolver
	collector *sources.Collector
	order     duplicates.Order

	mu         sync.RWMutex
	lastResult *ports.ScanResult
	lastErr    error
	lastScanAt time.Time
}

// Dependencies are the collaborators an App runs against. Graph and Dirs are
// required; Walker defaults to the filesystem walker built from config.
type Dependencies struct {
	Graph  ports.ModuleGraph
	Dirs   ports.SourceDirResolver
	Walker ports.FileWalker
}

// New loads the project described by cfg (a TOML manifest when configured,
// Gradle settings otherwise) and wires the scan pipeline.
func New(cfg *config.Config, paths config.ResolvedPaths) (*App, error) {
	var (
		p   *project.Project
		err error
	)
	if paths.Manifest != "" {
		p, err = project.LoadManifest(paths.Manifest)
	} else {
		p, err = project.LoadGradle(paths.ProjectRoot)
	}
	if err != nil {
		return nil, err
	}
	slog.Debug("loaded project graph", "root", p.Root, "modules", p.ModuleCount())

	a, err := NewWithDependencies(cfg, Dependencies{Graph: p, Dirs: p})
	if err != nil {
		return nil, err
	}
	a.Paths = paths
	if a.Paths.ProjectRoot == "" {
		a.Paths.ProjectRoot = p.Root
	}
	return a, nil
}

func NewWithDependencies(cfg *config.Config, deps Dependencies) (*App, error) {
	if cfg == nil {
		return nil, errors.New(errors.CodeValidationError, "config is required")
	}
	if deps.Graph == nil {
		return nil, errors.New(errors.CodeValidationError, "module graph dependency is required")
	}
	if deps.Dirs == nil {
		return nil, errors.New(errors.CodeValidationError, "source directory resolver dependency is required")
	}

	walker := deps.Walker
	if walker == nil {
		fsw, err := sources.NewFSWalker(
			cfg.Exclude.Dirs,
			cfg.Exclude.Files,
			util.NewLimiter(cfg.Performance.WalkRate, int(cfg.Performance.WalkRate)+1),
		)
		if err != nil {
			return nil, err
		}
		walker = fsw
	}

	collector, err := sources.NewCollector(deps.Dirs, walker, cfg.Scan.Kinds, cfg.Performance.Workers)
	if err != nil {
		return nil, err
	}
	order, err := duplicates.ParseOrder(cfg.Scan.Order)
	if err != nil {
		return nil, errors.Wrap(err, errors.CodeValidationError, "invalid scan order")
	}

	return &App{
		Config:    cfg,
		graph:     deps.Graph,
		resolver:  modules.NewResolver(deps.Graph, cfg.Scan.IncludesRoot()),
		collector: collector,
		order:     order,
	}, nil
}

func (a *App) recordResult(result *ports.ScanResult, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.lastScanAt = time.Now().UTC()
	a.lastErr = err
	if err == nil {
		a.lastResult = result
	}
}

// LastResult returns the most recent successful scan, if any.
func (a *App) LastResult() (ports.ScanResult, bool) {
	a.mu.RLock()
	defer a.mu.RUnlock()
	if a.lastResult == nil {
		return ports.ScanResult{}, false
	}
	return *a.lastResult, true
}
