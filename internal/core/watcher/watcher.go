package watcher

import (
	"dupguard/internal/shared/observability"
	stderrors "errors"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
)

// nameOps are the events that can change the set of base names under a
// watched root. Writes only touch content and are ignored.
const nameOps = fsnotify.Create | fsnotify.Remove | fsnotify.Rename

type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	debounce     time.Duration
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	onChange     func([]string)
	callbackMu   sync.Mutex

	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer
	closed    bool

	// active roots are watched recursively. Missing roots wait in
	// missingRoots while their nearest existing ancestor is watched.
	rootsMu      sync.Mutex
	active       map[string]bool
	missingRoots map[string]bool
}

func NewWatcher(debounce time.Duration, excludeDirs, excludeFiles []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	compiledDirs, err := compile(excludeDirs)
	if err != nil {
		return nil, err
	}
	compiledFiles, err := compile(excludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher:    fsw,
		debounce:     debounce,
		excludeDirs:  compiledDirs,
		excludeFiles: compiledFiles,
		onChange:     onChange,
		pending:      make(map[string]struct{}),
		active:       make(map[string]bool),
		missingRoots: make(map[string]bool),
	}, nil
}

func compile(patterns []string) ([]glob.Glob, error) {
	out := make([]glob.Glob, 0, len(patterns))
	for _, pattern := range patterns {
		g, err := glob.Compile(pattern)
		if err != nil {
			return nil, err
		}
		out = append(out, g)
	}
	return out, nil
}

// Watch registers every directory under each root and starts the event
// loop. A root that does not exist yet is picked up once it is created.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		root = filepath.Clean(root)
		if err := w.watchRecursive(root); err != nil {
			if stderrors.Is(err, fs.ErrNotExist) {
				slog.Debug("watch root missing", "path", root)
				w.addMissing(root)
				continue
			}
			return err
		}
		w.rootsMu.Lock()
		w.active[root] = true
		w.rootsMu.Unlock()
	}

	go w.run()
	return nil
}

func (w *Watcher) addMissing(root string) {
	w.rootsMu.Lock()
	w.missingRoots[root] = true
	w.rootsMu.Unlock()
	w.promoteMissing()
}

// promoteMissing starts watching every missing root that now exists and
// re-arms the ancestor watch for the rest.
func (w *Watcher) promoteMissing() {
	w.rootsMu.Lock()
	roots := make([]string, 0, len(w.missingRoots))
	for root := range w.missingRoots {
		roots = append(roots, root)
	}
	w.rootsMu.Unlock()
	sort.Strings(roots)

	for _, root := range roots {
		w.watchAncestor(root)
		if !isDir(root) {
			continue
		}
		if err := w.watchRecursive(root); err != nil {
			slog.Warn("failed to watch new root", "path", root, "error", err)
			continue
		}
		w.rootsMu.Lock()
		delete(w.missingRoots, root)
		w.active[root] = true
		w.rootsMu.Unlock()
		slog.Debug("watch root created", "path", root)
		w.enqueueExistingFiles(root)
	}
}

// watchAncestor adds a non-recursive watch on the nearest existing parent
// of a missing root. A level created while the watch was being added is
// followed down before returning.
func (w *Watcher) watchAncestor(root string) {
	for {
		dir := nearestExisting(root)
		if dir == root || dir == "" {
			return
		}
		if err := w.fsWatcher.Add(dir); err != nil {
			slog.Warn("failed to watch ancestor", "path", dir, "error", err)
			return
		}
		if nearestExisting(root) == dir {
			return
		}
	}
}

func nearestExisting(path string) string {
	for {
		if isDir(path) {
			return path
		}
		parent := filepath.Dir(path)
		if parent == path {
			return ""
		}
		path = parent
	}
}

func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// leadsToMissing reports whether path is a missing root or one of its
// ancestors.
func (w *Watcher) leadsToMissing(path string) bool {
	w.rootsMu.Lock()
	defer w.rootsMu.Unlock()
	for root := range w.missingRoots {
		if within(root, path) {
			return true
		}
	}
	return false
}

func (w *Watcher) underActive(path string) bool {
	w.rootsMu.Lock()
	defer w.rootsMu.Unlock()
	for root := range w.active {
		if within(path, root) {
			return true
		}
	}
	return false
}

// deactivate moves every active root at or below path back to the missing
// set and reports whether any moved.
func (w *Watcher) deactivate(path string) bool {
	w.rootsMu.Lock()
	defer w.rootsMu.Unlock()
	moved := false
	for root := range w.active {
		if within(root, path) {
			delete(w.active, root)
			w.missingRoots[root] = true
			moved = true
		}
	}
	return moved
}

// within reports whether path equals dir or lies below it.
func within(path, dir string) bool {
	rel, err := filepath.Rel(dir, path)
	if err != nil {
		return false
	}
	return rel == "." || (rel != ".." && !strings.HasPrefix(rel, ".."+string(filepath.Separator)))
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			if path != root && stderrors.Is(err, fs.ErrNotExist) {
				return nil
			}
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.shouldExcludeDir(path) {
			return filepath.SkipDir
		}
		return w.fsWatcher.Add(path)
	})
}

func (w *Watcher) run() {
	for {
		select {
		case event, ok := <-w.fsWatcher.Events:
			if !ok {
				return
			}
			observability.WatcherEventsTotal.Inc()
			w.handle(event)

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) handle(event fsnotify.Event) {
	if event.Op&nameOps == 0 {
		return
	}

	name := filepath.Clean(event.Name)
	if event.Op&(fsnotify.Remove|fsnotify.Rename) != 0 && w.deactivate(name) {
		w.scheduleChange(event.Name)
		w.promoteMissing()
		return
	}

	if event.Op&fsnotify.Create == fsnotify.Create {
		info, err := os.Stat(event.Name)
		if err == nil && info.IsDir() && w.leadsToMissing(name) {
			w.promoteMissing()
		}
		if !w.underActive(name) {
			return
		}
		if err == nil && info.IsDir() {
			if w.shouldExcludeDir(event.Name) {
				return
			}
			if err := w.watchRecursive(event.Name); err != nil {
				slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
				return
			}
			w.enqueueExistingFiles(event.Name)
			return
		}
	}

	if !w.underActive(name) || w.shouldExcludeFile(event.Name) {
		return
	}
	w.scheduleChange(event.Name)
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if w.closed {
		return
	}

	w.pending[path] = struct{}{}

	if w.timer != nil {
		w.timer.Stop()
	}
	w.timer = time.AfterFunc(w.debounce, w.flushChanges)
}

func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	paths := make([]string, 0, len(w.pending))
	for path := range w.pending {
		paths = append(paths, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	if len(paths) == 0 {
		return
	}
	sort.Strings(paths)

	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(paths)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	return matchAny(w.excludeDirs, filepath.Base(path))
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	return matchAny(w.excludeFiles, filepath.Base(path))
}

func matchAny(globs []glob.Glob, name string) bool {
	for _, g := range globs {
		if g.Match(name) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	w.pendingMu.Lock()
	w.closed = true
	if w.timer != nil {
		w.timer.Stop()
	}
	w.pendingMu.Unlock()
	return w.fsWatcher.Close()
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return nil
		}
		if d.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return nil
		}
		if !w.shouldExcludeFile(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}
