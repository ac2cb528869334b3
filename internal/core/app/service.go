package app

import (
	"context"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/engine/modules"
	"dupguard/internal/shared/observability"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

type scanService struct {
	app *App
}

var _ ports.ScanService = (*scanService)(nil)

func NewScanService(app *App) ports.ScanService {
	return &scanService{app: app}
}

func (a *App) ScanService() ports.ScanService {
	return NewScanService(a)
}

// Run resolves the dependency closure of the root module, collects the
// sources of every module in it and reports base-name collisions.
func (s *scanService) Run(ctx context.Context, req ports.ScanRequest) (ports.ScanResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "scanService.Run", trace.WithAttributes(
		attribute.String("dupguard.root_module", req.RootModule),
		attribute.String("dupguard.variant", req.Variant),
	))
	defer span.End()

	started := time.Now()
	result, err := s.run(ctx, req, started)
	s.app.recordResult(&result, err)
	observability.ScanDuration.Observe(time.Since(started).Seconds())

	if err != nil {
		observability.ScansTotal.WithLabelValues("error").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return ports.ScanResult{}, err
	}

	outcome := "clean"
	if result.HasDuplicates() {
		outcome = "duplicates"
	}
	observability.ScansTotal.WithLabelValues(outcome).Inc()
	span.SetAttributes(
		attribute.Int("dupguard.files", result.FilesScanned),
		attribute.Int("dupguard.duplicate_groups", len(result.Groups)),
	)
	return result, nil
}

func (s *scanService) run(ctx context.Context, req ports.ScanRequest, started time.Time) (ports.ScanResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.ScanResult{}, err
	}
	req = s.normalize(req)

	mods, err := s.closure(ctx, req)
	if err != nil {
		return ports.ScanResult{}, err
	}
	observability.ModulesScanned.Set(float64(len(mods)))

	paths, err := s.collect(ctx, mods, req.Variant)
	if err != nil {
		return ports.ScanResult{}, err
	}
	observability.FilesCollectedTotal.Add(float64(len(paths)))

	groups := s.detect(ctx, paths)
	observability.DuplicateGroups.Set(float64(len(groups)))

	result := ports.ScanResult{
		RunID:        uuid.NewString(),
		RootModule:   req.RootModule,
		Variant:      req.Variant,
		ProjectRoot:  s.app.Paths.ProjectRoot,
		Modules:      modules.IDs(mods),
		FilesScanned: len(paths),
		Groups:       groups,
		StartedAt:    started.UTC(),
		Duration:     time.Since(started),
	}
	names, colliding := duplicates.Summary(groups)
	slog.Info("scan complete",
		"root", req.RootModule,
		"variant", req.Variant,
		"kinds", s.app.collector.Kinds(),
		"modules", len(mods),
		"files", len(paths),
		"groups", names,
		"colliding_files", colliding,
		"duration", result.Duration,
	)
	if len(groups) > 0 {
		slog.Debug("colliding paths", "paths", duplicates.Flatten(groups))
	}
	return result, nil
}

// SourceRoots lists every source root the scan for req would walk.
func (s *scanService) SourceRoots(ctx context.Context, req ports.ScanRequest) ([]string, error) {
	req = s.normalize(req)
	mods, err := s.closure(ctx, req)
	if err != nil {
		return nil, err
	}
	perModule, err := s.app.collector.Roots(mods, req.Variant)
	if err != nil {
		return nil, err
	}
	var roots []string
	for _, r := range perModule {
		roots = append(roots, r...)
	}
	return roots, nil
}

func (s *scanService) normalize(req ports.ScanRequest) ports.ScanRequest {
	if req.RootModule == "" {
		req.RootModule = s.app.Config.Scan.RootModule
	}
	if req.Variant == "" {
		req.Variant = s.app.Config.Scan.Variant
	}
	return req
}

func (s *scanService) closure(ctx context.Context, req ports.ScanRequest) ([]modules.Module, error) {
	ctx, span := observability.Tracer.Start(ctx, "scanService.resolve")
	defer span.End()
	defer observeStage("resolve", time.Now())

	root, err := s.app.graph.Lookup(req.RootModule)
	if err != nil {
		return nil, errors.AddContext(
			errors.Wrap(err, errors.CodeNotFound, "root module not found"),
			errors.CtxModule, req.RootModule,
		)
	}
	mods, err := s.app.resolver.Closure(ctx, root)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "resolve_dependencies")
	}
	slog.Debug("resolved dependency closure", "root", root.ID, "modules", modules.IDs(mods))
	return mods, nil
}

func (s *scanService) collect(ctx context.Context, mods []modules.Module, variant string) ([]string, error) {
	ctx, span := observability.Tracer.Start(ctx, "scanService.collect", trace.WithAttributes(
		attribute.Int("dupguard.modules", len(mods)),
	))
	defer span.End()
	defer observeStage("collect", time.Now())

	paths, err := s.app.collector.Collect(ctx, mods, variant)
	if err != nil {
		return nil, errors.AddContext(err, errors.CtxOperation, "collect_sources")
	}
	return paths, nil
}

func (s *scanService) detect(ctx context.Context, paths []string) []duplicates.Group {
	_, span := observability.Tracer.Start(ctx, "scanService.detect")
	defer span.End()
	defer observeStage("detect", time.Now())

	return duplicates.Find(paths, s.app.order)
}

func observeStage(stage string, start time.Time) {
	observability.StageDuration.WithLabelValues(stage).Observe(time.Since(start).Seconds())
}
