package cliapp

import (
	"context"
	coreapp "dupguard/internal/core/app"
	"dupguard/internal/core/config"
	"dupguard/internal/core/ports"
	"dupguard/internal/shared/observability"
	"dupguard/internal/shared/version"
	"dupguard/internal/ui/report"
	"dupguard/internal/ui/report/formats"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"
)

const (
	exitOK         = 0
	exitError      = 1
	exitUsage      = 2
	exitDuplicates = 3
)

func Run(args []string) int {
	return RunWithIO(args, os.Stdout, os.Stderr)
}

// RunWithIO runs the CLI with the report on stdout and logs on stderr.
func RunWithIO(args []string, stdout, stderr io.Writer) int {
	opts, err := parseOptions(args, stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return exitOK
		}
		return exitUsage
	}
	if len(opts.args) > 0 {
		fmt.Fprintf(stderr, "unexpected arguments: %v\n", opts.args)
		return exitUsage
	}

	if opts.version {
		fmt.Fprintf(stdout, "dupguard v%s\n", version.Version)
		return exitOK
	}

	configureLogging(stderr, opts.verbose)

	cwd, err := os.Getwd()
	if err != nil {
		slog.Error("failed to detect working directory", "error", err)
		return exitError
	}

	cfg, cfgDir, err := loadConfig(opts.configPath, cwd)
	if err != nil {
		slog.Error("failed to load config", "error", err)
		return exitError
	}
	config.ApplyEnvOverrides(cfg)
	applyFlagOverrides(opts, cfg)
	if err := config.Finalize(cfg); err != nil {
		fmt.Fprintln(stderr, err.Error())
		return exitUsage
	}

	paths, err := config.ResolvePaths(cfg, cfgDir)
	if err != nil {
		slog.Error("failed to resolve runtime paths", "error", err)
		return exitError
	}
	resolveFlagPaths(opts, cwd, &paths)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := observability.InitTracing(ctx, observability.TracingConfig{
		Endpoint: cfg.Observability.OTLPEndpoint,
		Insecure: cfg.Observability.OTLPInsecure,
	})
	if err != nil {
		slog.Error("failed to initialize tracing", "error", err)
		return exitError
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := shutdownTracing(shutdownCtx); err != nil {
			slog.Warn("tracing shutdown failed", "error", err)
		}
	}()

	app, err := coreapp.New(cfg, paths)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		return exitError
	}

	if cfg.Observability.Enabled {
		server := NewObservabilityServer(cfg.Observability.Address, coreapp.NewHealthService(app))
		if err := server.Start(ctx); err != nil {
			slog.Error("failed to start observability server", "error", err)
			return exitError
		}
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			_ = server.Stop(shutdownCtx)
		}()
	}

	req := ports.ScanRequest{RootModule: cfg.Scan.RootModule, Variant: cfg.Scan.Variant}

	if opts.listRoots {
		return listRoots(ctx, app, req, paths.ProjectRoot, stdout)
	}

	sink := report.NewSink(cfg.Output.Format, paths.OutputPath, stdout, formats.RenderOptions{
		Styled: paths.OutputPath == "",
	})

	if opts.watch {
		return runWatch(ctx, app, req, sink)
	}
	return runOnce(ctx, app, req, sink)
}

func runOnce(ctx context.Context, app *coreapp.App, req ports.ScanRequest, sink ports.ReportSink) int {
	if timeout := app.Config.Scan.Timeout; timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	result, err := app.ScanService().Run(ctx, req)
	if err != nil {
		slog.Error("scan failed", "module", req.RootModule, "variant", req.Variant, "error", err)
		return exitError
	}
	if err := sink.Write(ctx, result); err != nil {
		slog.Error("failed to write report", "error", err)
		return exitError
	}

	if result.HasDuplicates() && app.Config.Scan.FailOnDuplicates {
		return exitDuplicates
	}
	return exitOK
}

func runWatch(ctx context.Context, app *coreapp.App, req ports.ScanRequest, sink ports.ReportSink) int {
	err := app.Watch(ctx, req, func(result ports.ScanResult, err error) {
		if err != nil {
			slog.Error("scan failed", "module", req.RootModule, "variant", req.Variant, "error", err)
			return
		}
		if err := sink.Write(ctx, result); err != nil {
			slog.Error("failed to write report", "error", err)
		}
	})
	if err != nil {
		slog.Error("watch mode failed", "error", err)
		return exitError
	}
	return exitOK
}

func listRoots(ctx context.Context, app *coreapp.App, req ports.ScanRequest, projectRoot string, stdout io.Writer) int {
	roots, err := app.ScanService().SourceRoots(ctx, req)
	if err != nil {
		slog.Error("failed to resolve source roots", "error", err)
		return exitError
	}
	for _, root := range roots {
		rel, err := filepath.Rel(projectRoot, root)
		if err != nil {
			rel = root
		}
		fmt.Fprintln(stdout, filepath.ToSlash(rel))
	}
	return exitOK
}

// loadConfig reads path, returning the directory relative paths in the file
// resolve against. A missing default config falls back to built-in defaults.
func loadConfig(path, cwd string) (*config.Config, string, error) {
	cfg, err := config.Load(path)
	if err == nil {
		abs, absErr := filepath.Abs(path)
		if absErr != nil {
			return nil, "", absErr
		}
		return cfg, filepath.Dir(abs), nil
	}
	if path == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
		slog.Debug("no config file found, using defaults", "path", path)
		return config.Default(), cwd, nil
	}
	return nil, "", err
}

func resolveFlagPaths(opts cliOptions, cwd string, paths *config.ResolvedPaths) {
	if opts.projectDir != "" {
		paths.ProjectRoot = config.ResolveRelative(cwd, opts.projectDir)
	}
	if opts.manifest != "" {
		paths.Manifest = config.ResolveRelative(cwd, opts.manifest)
	}
	if opts.out != "" {
		paths.OutputPath = config.ResolveRelative(cwd, opts.out)
	}
}

// configureLogging logs to stderr so stdout only carries the report.
func configureLogging(stderr io.Writer, verbose bool) {
	logLevel := slog.LevelInfo
	if verbose {
		logLevel = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(stderr, &slog.HandlerOptions{Level: logLevel}))
	slog.SetDefault(logger)
}
