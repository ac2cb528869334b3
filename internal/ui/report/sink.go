package report

import (
	"context"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/shared/util"
	"dupguard/internal/ui/report/formats"
	"io"
	"log/slog"
	"sync"
)

// Sink renders scan results in one format and writes them to a file, or to
// an io.Writer when no path is set. Writing to a file replaces it each time,
// so watch mode always leaves the latest report behind.
type Sink struct {
	format string
	path   string
	out    io.Writer
	opts   formats.RenderOptions
	mu     sync.Mutex
}

var _ ports.ReportSink = (*Sink)(nil)

func NewSink(format, path string, out io.Writer, opts formats.RenderOptions) *Sink {
	return &Sink{format: format, path: path, out: out, opts: opts}
}

func (s *Sink) Write(ctx context.Context, result ports.ScanResult) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	data, err := formats.Render(s.format, result, s.opts)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.path != "" {
		if err := util.WriteFileWithDirs(s.path, data, 0o644); err != nil {
			return errors.WrapFS(err, "write report", s.path)
		}
		slog.Info("report written", "path", s.path, "format", s.format, "groups", len(result.Groups))
		return nil
	}
	if s.out == nil {
		return errors.New(errors.CodeValidationError, "report sink has no destination")
	}
	if _, err := s.out.Write(data); err != nil {
		return errors.Wrap(err, errors.CodeInternal, "write report")
	}
	return nil
}
