package app

import (
	"bytes"
	"context"
	"dupguard/internal/core/config"
	"dupguard/internal/core/errors"
	"dupguard/internal/core/ports"
	"dupguard/internal/engine/duplicates"
	"dupguard/internal/engine/modules"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDirs maps module ID to the single java source root of that module.
type fakeDirs map[string]string

func (f fakeDirs) SourceDirs(m modules.Module, _ string, kind string) ([]string, error) {
	if kind != "java" {
		return nil, nil
	}
	if dir, ok := f[m.ID]; ok {
		return []string{dir}, nil
	}
	return nil, nil
}

type fakeWalker struct {
	mu    sync.Mutex
	files map[string][]string
	err   error
}

func (w *fakeWalker) ListFiles(_ context.Context, dir string) ([]string, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err != nil {
		return nil, w.err
	}
	return w.files[dir], nil
}

func newGraph(ids ...string) *modules.Graph {
	g := modules.NewGraph()
	for _, id := range ids {
		g.AddModule(modules.Module{ID: id})
	}
	return g
}

func newTestApp(t *testing.T, g *modules.Graph, dirs fakeDirs, walker *fakeWalker, mutate ...func(*config.Config)) *App {
	t.Helper()
	cfg := config.Default()
	cfg.Scan.RootModule = ":app"
	for _, m := range mutate {
		m(cfg)
	}
	a, err := NewWithDependencies(cfg, Dependencies{Graph: g, Dirs: dirs, Walker: walker})
	require.NoError(t, err)
	return a
}

func run(t *testing.T, a *App) ports.ScanResult {
	t.Helper()
	res, err := a.ScanService().Run(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	return res
}

func TestScan_SameNameAcrossModules(t *testing.T) {
	g := newGraph(":app", ":m1", ":m2")
	g.AddDependency(":app", ":m1")
	g.AddDependency(":app", ":m2")
	walker := &fakeWalker{files: map[string][]string{
		"/m1": {"app/Book.java"},
		"/m2": {"data/Book.java"},
	}}

	res := run(t, newTestApp(t, g, fakeDirs{":m1": "/m1", ":m2": "/m2"}, walker))

	require.Len(t, res.Groups, 1)
	assert.Equal(t, "Book.java", res.Groups[0].Name)
	assert.ElementsMatch(t, []string{"app/Book.java", "data/Book.java"}, res.Groups[0].Paths)
	assert.True(t, res.HasDuplicates())
	assert.Equal(t, 2, res.FilesScanned)
	assert.NotEmpty(t, res.RunID)
}

func TestScan_LogsKindsAndCollidingPaths(t *testing.T) {
	var logs bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&logs, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	g := newGraph(":app", ":m1")
	g.AddDependency(":app", ":m1")
	walker := &fakeWalker{files: map[string][]string{
		"/app": {"app/Book.java"},
		"/m1":  {"m1/Book.java"},
	}}
	run(t, newTestApp(t, g, fakeDirs{":app": "/app", ":m1": "/m1"}, walker))

	out := logs.String()
	assert.Contains(t, out, `kinds="[aidl java]"`)
	assert.Contains(t, out, `msg="colliding paths"`)
	assert.Contains(t, out, "app/Book.java m1/Book.java")
}

func TestScan_RenamedFileIsClean(t *testing.T) {
	g := newGraph(":app", ":m1", ":m2")
	g.AddDependency(":app", ":m1")
	g.AddDependency(":app", ":m2")
	walker := &fakeWalker{files: map[string][]string{
		"/m1": {"app/Book.java"},
		"/m2": {"data/Reader.java"},
	}}

	res := run(t, newTestApp(t, g, fakeDirs{":m1": "/m1", ":m2": "/m2"}, walker))

	assert.Empty(t, res.Groups)
	assert.NotNil(t, res.Groups)
	assert.False(t, res.HasDuplicates())
}

func TestScan_ThreeWayCollision(t *testing.T) {
	g := newGraph(":app", ":a", ":b", ":c")
	g.AddDependency(":app", ":a")
	g.AddDependency(":a", ":b")
	g.AddDependency(":b", ":c")
	walker := &fakeWalker{files: map[string][]string{
		"/a": {"a/util/Utils.kt"},
		"/b": {"b/Utils.kt", "b/Other.kt"},
		"/c": {"c/x/y/Utils.kt"},
	}}

	res := run(t, newTestApp(t, g, fakeDirs{":a": "/a", ":b": "/b", ":c": "/c"}, walker))

	require.Len(t, res.Groups, 1)
	assert.Equal(t, "Utils.kt", res.Groups[0].Name)
	assert.Len(t, res.Groups[0].Paths, 3)
}

func TestScan_CycleVisitsEachModuleOnce(t *testing.T) {
	g := newGraph(":app", ":m1", ":m2")
	g.AddDependency(":app", ":m1")
	g.AddDependency(":m1", ":m2")
	g.AddDependency(":m2", ":m1")
	walker := &fakeWalker{files: map[string][]string{
		"/m1": {"m1/Book.java"},
		"/m2": {"m2/Book.java"},
	}}

	res := run(t, newTestApp(t, g, fakeDirs{":m1": "/m1", ":m2": "/m2"}, walker))

	assert.ElementsMatch(t, []string{":app", ":m1", ":m2"}, res.Modules)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, []string{"m1/Book.java", "m2/Book.java"}, res.Groups[0].Paths)
}

func TestScan_ExcludeRoot(t *testing.T) {
	g := newGraph(":app", ":m1")
	g.AddDependency(":app", ":m1")
	walker := &fakeWalker{files: map[string][]string{
		"/app": {"app/Book.java"},
		"/m1":  {"m1/Book.java"},
	}}
	dirs := fakeDirs{":app": "/app", ":m1": "/m1"}

	withRoot := run(t, newTestApp(t, g, dirs, walker))
	require.Len(t, withRoot.Groups, 1)

	exclude := false
	withoutRoot := run(t, newTestApp(t, g, dirs, walker, func(c *config.Config) { c.Scan.IncludeRoot = &exclude }))
	assert.Empty(t, withoutRoot.Groups)
	assert.Equal(t, []string{":m1"}, withoutRoot.Modules)
}

func TestScan_EmptyInputs(t *testing.T) {
	res := run(t, newTestApp(t, newGraph(":app"), fakeDirs{}, &fakeWalker{}))
	assert.Empty(t, res.Groups)
	assert.Zero(t, res.FilesScanned)
}

func TestScan_Idempotent(t *testing.T) {
	g := newGraph(":app", ":m1", ":m2")
	g.AddDependency(":app", ":m1")
	g.AddDependency(":app", ":m2")
	walker := &fakeWalker{files: map[string][]string{
		"/m1": {"m1/B.java", "m1/A.java"},
		"/m2": {"m2/A.java", "m2/B.java"},
	}}
	a := newTestApp(t, g, fakeDirs{":m1": "/m1", ":m2": "/m2"}, walker)

	first := run(t, a)
	second := run(t, a)
	assert.Equal(t, first.Groups, second.Groups)
	assert.NotEqual(t, first.RunID, second.RunID)
}

func TestScan_FirstSeenOrder(t *testing.T) {
	g := newGraph(":app", ":m1")
	g.AddDependency(":app", ":m1")
	walker := &fakeWalker{files: map[string][]string{
		"/m1": {"z/Zed.java", "a/Alpha.java", "y/Zed.java", "b/Alpha.java"},
	}}
	a := newTestApp(t, g, fakeDirs{":m1": "/m1"}, walker, func(c *config.Config) { c.Scan.Order = config.OrderFirstSeen })

	res := run(t, a)
	require.Len(t, res.Groups, 2)
	assert.Equal(t, "Zed.java", res.Groups[0].Name)
	assert.Equal(t, []string{"z/Zed.java", "y/Zed.java"}, res.Groups[0].Paths)
}

func TestScan_UnknownRootModule(t *testing.T) {
	a := newTestApp(t, newGraph(":lib"), fakeDirs{}, &fakeWalker{})

	_, err := a.ScanService().Run(context.Background(), ports.ScanRequest{RootModule: ":missing"})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodeNotFound))
}

func TestScan_WalkerFailureAbortsRun(t *testing.T) {
	g := newGraph(":app", ":m1")
	g.AddDependency(":app", ":m1")
	walker := &fakeWalker{err: errors.New(errors.CodePermissionDenied, "denied")}
	a := newTestApp(t, g, fakeDirs{":m1": "/m1"}, walker)

	_, err := a.ScanService().Run(context.Background(), ports.ScanRequest{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.CodePermissionDenied))

	_, ok := a.LastResult()
	assert.False(t, ok, "failed run must not publish a partial result")
	assert.Equal(t, "degraded", NewHealthService(a).Check(context.Background()).Status)
}

func TestScan_CancelledContext(t *testing.T) {
	a := newTestApp(t, newGraph(":app"), fakeDirs{}, &fakeWalker{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := a.ScanService().Run(ctx, ports.ScanRequest{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSourceRoots(t *testing.T) {
	g := newGraph(":app", ":m1", ":m2")
	g.AddDependency(":app", ":m1")
	g.AddDependency(":app", ":m2")
	dirs := fakeDirs{":app": "/app", ":m1": "/shared", ":m2": "/shared"}
	a := newTestApp(t, g, dirs, &fakeWalker{})

	roots, err := a.ScanService().SourceRoots(context.Background(), ports.ScanRequest{})
	require.NoError(t, err)
	assert.Equal(t, []string{filepath.Clean("/app"), filepath.Clean("/shared")}, roots)
}

func TestNewWithDependencies_Validation(t *testing.T) {
	_, err := NewWithDependencies(nil, Dependencies{})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = NewWithDependencies(config.Default(), Dependencies{Dirs: fakeDirs{}})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))

	_, err = NewWithDependencies(config.Default(), Dependencies{Graph: newGraph(":app")})
	assert.True(t, errors.IsCode(err, errors.CodeValidationError))
}

func TestHealth_ReportsLastScan(t *testing.T) {
	g := newGraph(":app")
	a := newTestApp(t, g, fakeDirs{}, &fakeWalker{})
	hs := NewHealthService(a)

	status := hs.Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Equal(t, "pending", status.Components["last_scan"])

	run(t, a)
	status = hs.Check(context.Background())
	assert.Equal(t, "up", status.Status)
	assert.Contains(t, status.Components["last_scan"], "ok")
}

func writeFile(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("//"), 0o644))
}

func TestNew_GradleProjectEndToEnd(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "settings.gradle"), []byte("include ':app', ':data', ':ui'\n"), 0o644))
	require.NoError(t, os.MkdirAll(filepath.Join(root, "app"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(root, "app", "build.gradle"), []byte(`
dependencies {
    implementation project(':data')
    implementation project(':ui')
}
`), 0o644))

	writeFile(t, filepath.Join(root, "data", "src", "main", "java", "com", "x", "data", "Book.java"))
	writeFile(t, filepath.Join(root, "ui", "src", "debug", "java", "com", "x", "ui", "Book.java"))
	writeFile(t, filepath.Join(root, "ui", "src", "release", "java", "com", "x", "ui", "Reader.java"))
	writeFile(t, filepath.Join(root, "ui", "src", "main", "aidl", "com", "x", "ui", "IBook.aidl"))

	cfg := config.Default()
	paths, err := config.ResolvePaths(cfg, root)
	require.NoError(t, err)
	paths.ProjectRoot = root

	a, err := New(cfg, paths)
	require.NoError(t, err)

	res, err := a.ScanService().Run(context.Background(), ports.ScanRequest{RootModule: ":app", Variant: "debug"})
	require.NoError(t, err)
	assert.Equal(t, 3, res.FilesScanned)
	require.Len(t, res.Groups, 1)
	assert.Equal(t, "Book.java", res.Groups[0].Name)
	assert.Equal(t, []string{
		filepath.Join(root, "data", "src", "main", "java", "com", "x", "data", "Book.java"),
		filepath.Join(root, "ui", "src", "debug", "java", "com", "x", "ui", "Book.java"),
	}, res.Groups[0].Paths)

	release, err := a.ScanService().Run(context.Background(), ports.ScanRequest{RootModule: ":app", Variant: "release"})
	require.NoError(t, err)
	assert.Empty(t, release.Groups)
	assert.Equal(t, 3, release.FilesScanned)
	names, colliding := duplicates.Summary(release.Groups)
	assert.Zero(t, names)
	assert.Zero(t, colliding)
}
