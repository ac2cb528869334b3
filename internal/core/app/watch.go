package app

import (
	"context"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/core/watcher"
	"log/slog"
)

// Watch runs an initial scan, then re-runs it whenever a file is created,
// removed or renamed under one of the scanned source roots. It blocks until
// ctx is cancelled. onResult receives every scan outcome.
func (a *App) Watch(ctx context.Context, req ports.ScanRequest, onResult func(ports.ScanResult, error)) error {
	if onResult == nil {
		return errors.New(errors.CodeValidationError, "watch callback is required")
	}
	svc := a.ScanService()

	roots, err := svc.SourceRoots(ctx, req)
	if err != nil {
		return err
	}

	rescan := func(changed []string) {
		if ctx.Err() != nil {
			return
		}
		slog.Info("source layout changed, rescanning", "changed", len(changed))
		onResult(svc.Run(ctx, req))
	}

	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		rescan,
	)
	if err != nil {
		return errors.Wrap(err, errors.CodeInternal, "create watcher")
	}
	defer w.Close()

	if err := w.Watch(roots); err != nil {
		return errors.AddContext(errors.Wrap(err, errors.CodeInternal, "watch source roots"), errors.CtxOperation, "watch")
	}
	slog.Info("watching source roots", "roots", len(roots), "debounce", a.Config.Watch.Debounce)

	onResult(svc.Run(ctx, req))

	<-ctx.Done()
	return nil
}
