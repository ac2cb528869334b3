package ports

import (
	"context"
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/engine/modules"
	"time"
)

// ModuleGraph abstracts the host build's project graph. Dependencies returns
// direct edges only; the closure is computed by modules.Resolver.
type ModuleGraph interface {
	Lookup(id string) (modules.Module, error)
	Dependencies(m modules.Module) ([]modules.Module, error)
}

// SourceDirResolver returns the source roots of one directory kind for a
// module and variant. A module without such sources yields an empty slice.
type SourceDirResolver interface {
	SourceDirs(m modules.Module, variant, kind string) ([]string, error)
}

// FileWalker lists regular files under dir recursively as absolute paths.
// A missing dir yields no files and no error.
type FileWalker interface {
	ListFiles(ctx context.Context, dir string) ([]string, error)
}

// ReportSink receives completed scan results for rendering.
type ReportSink interface {
	Write(ctx context.Context, result ScanResult) error
}

// ScanRequest names the root module and build variant to scan.
type ScanRequest struct {
	RootModule string
	Variant    string
}

// ScanResult is the outcome of one duplicate scan.
type ScanResult struct {
	RunID        string             `json:"run_id"`
	RootModule   string             `json:"root_module"`
	Variant      string             `json:"variant"`
	ProjectRoot  string             `json:"project_root,omitempty"`
	Modules      []string           `json:"modules"`
	FilesScanned int                `json:"files_scanned"`
	Groups       []duplicates.Group `json:"duplicates"`
	StartedAt    time.Time          `json:"started_at"`
	Duration     time.Duration      `json:"duration_ns"`
}

// HasDuplicates reports whether any base filename collided.
func (r ScanResult) HasDuplicates() bool {
	return len(r.Groups) > 0
}

// ScanService runs duplicate scans for driving adapters (CLI, watcher).
type ScanService interface {
	Run(ctx context.Context, req ScanRequest) (ScanResult, error)
	SourceRoots(ctx context.Context, req ScanRequest) ([]string, error)
}
