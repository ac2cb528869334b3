package app

import (
	"context"
	"fmt"
	"time"
)

type HealthStatus struct {
	Status     string            `json:"status"`
	Timestamp  time.Time         `json:"timestamp"`
	Components map[string]string `json:"components"`
}

type HealthService struct {
	app *App
}

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

// Check reports "up" until a scan fails; the most recent scan decides.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app == nil || s.app.graph == nil {
		status.Status = "degraded"
		status.Components["graph"] = "missing"
		return status
	}
	status.Components["graph"] = "ok"

	s.app.mu.RLock()
	defer s.app.mu.RUnlock()

	switch {
	case s.app.lastErr != nil:
		status.Status = "degraded"
		status.Components["last_scan"] = fmt.Sprintf("failed at %s: %v", s.app.lastScanAt.Format(time.RFC3339), s.app.lastErr)
	case s.app.lastResult != nil:
		r := s.app.lastResult
		status.Components["last_scan"] = fmt.Sprintf("ok (%d modules, %d files, %d duplicate names)", len(r.Modules), r.FilesScanned, len(r.Groups))
	default:
		status.Components["last_scan"] = "pending"
	}
	return status
}
