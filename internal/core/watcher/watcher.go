// Package watcher reports batches of changed source files under a set of
// roots.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"utoipauto/internal/shared/observability"

	"github.com/fsnotify/fsnotify"
)

// Filter decides which paths are watched. *locator.Locator satisfies it so
// watch mode and discovery agree on what a source file is.
type Filter interface {
	ExcludedDir(path string) bool
	Supported(path string) bool
}

type Watcher struct {
	fsWatcher *fsnotify.Watcher
	filter    Filter
	onChange  func([]string)

	callbackMu sync.Mutex

	// Directories added recursively, and explicit file roots.
	dirs      map[string]bool
	fileRoots map[string]bool
	rootsMu   sync.RWMutex

	debounce  time.Duration
	pending   map[string]struct{}
	pendingMu sync.Mutex
	timer     *time.Timer

	closeOnce sync.Once
}

func NewWatcher(debounce time.Duration, filter Filter, onChange func([]string)) (*Watcher, error) {
	if onChange == nil || filter == nil {
		return nil, os.ErrInvalid
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	return &Watcher{
		fsWatcher: fsw,
		filter:    filter,
		onChange:  onChange,
		dirs:      make(map[string]bool),
		fileRoots: make(map[string]bool),
		debounce:  debounce,
		pending:   make(map[string]struct{}),
	}, nil
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch starts watching roots. Directory roots are watched recursively; a
// file root only reports changes to that file.
func (w *Watcher) Watch(roots []string) error {
	for _, root := range roots {
		info, err := os.Stat(root)
		if err != nil {
			return err
		}
		if info.IsDir() {
			if err := w.watchRecursive(root); err != nil {
				return err
			}
			continue
		}
		clean := filepath.Clean(root)
		if err := w.fsWatcher.Add(filepath.Dir(clean)); err != nil {
			return err
		}
		w.rootsMu.Lock()
		w.fileRoots[clean] = true
		w.rootsMu.Unlock()
	}

	go w.run()
	return nil
}

func (w *Watcher) watchRecursive(root string) error {
	return filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.filter.ExcludedDir(path) {
			return filepath.SkipDir
		}
		if err := w.fsWatcher.Add(path); err != nil {
			return err
		}
		w.rootsMu.Lock()
		w.dirs[filepath.Clean(path)] = true
		w.rootsMu.Unlock()
		return nil
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

			if event.Has(fsnotify.Create) && w.inWatchedDir(event.Name) {
				info, err := os.Stat(event.Name)
				if err == nil && info.IsDir() {
					if !w.filter.ExcludedDir(event.Name) {
						if err := w.watchRecursive(event.Name); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if !w.relevant(event.Name) {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) ||
				event.Has(fsnotify.Remove) || event.Has(fsnotify.Rename) {
				w.scheduleChange(event.Name)
			}

		case err, ok := <-w.fsWatcher.Errors:
			if !ok {
				return
			}
			slog.Error("watcher error", "error", err)
		}
	}
}

func (w *Watcher) inWatchedDir(path string) bool {
	w.rootsMu.RLock()
	defer w.rootsMu.RUnlock()
	return w.dirs[filepath.Dir(filepath.Clean(path))]
}

func (w *Watcher) relevant(path string) bool {
	clean := filepath.Clean(path)
	w.rootsMu.RLock()
	isFileRoot := w.fileRoots[clean]
	w.rootsMu.RUnlock()
	if isFileRoot {
		return true
	}
	return w.inWatchedDir(clean) && w.filter.Supported(clean)
}

func (w *Watcher) scheduleChange(path string) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()

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

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.WalkDir(root, func(path string, d os.DirEntry, err error) error {
		if err != nil || d.IsDir() {
			return nil
		}
		if w.relevant(path) {
			w.scheduleChange(path)
		}
		return nil
	})
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		w.pendingMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.pendingMu.Unlock()
		err = w.fsWatcher.Close()
	})
	return err
}
