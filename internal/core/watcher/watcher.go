// Package watcher notifies watch mode when input headers change.
package watcher

import (
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"

	"cppbind/internal/shared/observability"
)

// Watcher collects file events under a set of roots and reports the changed
// paths once the tree has been quiet for the debounce interval. Saves that
// leave a file's content unchanged are not reported.
type Watcher struct {
	fsWatcher    *fsnotify.Watcher
	excludeDirs  []glob.Glob
	excludeFiles []glob.Glob
	extensions   map[string]bool
	explicit     map[string]bool
	onChange     func([]string)
	callbackMu   sync.Mutex

	pendingMu sync.Mutex
	debounce  time.Duration
	pending   map[string]struct{}
	timer     *time.Timer
	hashes    map[string]uint64

	closeOnce sync.Once
	done      chan struct{}
}

func NewWatcher(debounce time.Duration, excludeDirs, excludeFiles []string, onChange func([]string)) (*Watcher, error) {
	if onChange == nil {
		return nil, os.ErrInvalid
	}

	dirs, err := compileAll(excludeDirs)
	if err != nil {
		return nil, err
	}
	files, err := compileAll(excludeFiles)
	if err != nil {
		return nil, err
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}

	w := &Watcher{
		fsWatcher:    fsw,
		excludeDirs:  dirs,
		excludeFiles: files,
		explicit:     make(map[string]bool),
		onChange:     onChange,
		debounce:     debounce,
		pending:      make(map[string]struct{}),
		hashes:       make(map[string]uint64),
		done:         make(chan struct{}),
	}
	w.SetExtensions([]string{".h", ".hh", ".hpp", ".hxx"})
	return w, nil
}

func compileAll(patterns []string) ([]glob.Glob, error) {
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

// SetExtensions replaces the set of file extensions that trigger a change.
func (w *Watcher) SetExtensions(extensions []string) {
	filter := make(map[string]bool, len(extensions))
	for _, ext := range extensions {
		normalized := strings.ToLower(strings.TrimSpace(ext))
		if normalized == "" {
			continue
		}
		filter[normalized] = true
	}
	w.pendingMu.Lock()
	w.extensions = filter
	w.pendingMu.Unlock()
}

func (w *Watcher) SetDebounce(debounce time.Duration) {
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	w.debounce = debounce
}

// Watch starts watching every directory under roots, and the given files
// whatever their extension. It returns once the initial walk is done.
func (w *Watcher) Watch(roots, files []string) error {
	for _, root := range roots {
		if err := w.watchRecursive(root, true); err != nil {
			return err
		}
	}
	for _, file := range files {
		abs := filepath.Clean(file)
		w.pendingMu.Lock()
		w.explicit[abs] = true
		w.pendingMu.Unlock()
		w.remember(abs)
		if err := w.fsWatcher.Add(filepath.Dir(abs)); err != nil {
			return err
		}
	}

	go w.run()
	return nil
}

// watchRecursive adds root and its subdirectories. With seed set, the files
// found are hashed so that later no-op saves are recognized.
func (w *Watcher) watchRecursive(root string, seed bool) error {
	return filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			if path != root && w.shouldExcludeDir(path) {
				return filepath.SkipDir
			}
			return w.fsWatcher.Add(path)
		}
		if seed && !w.shouldExcludeFile(path) {
			w.remember(path)
		}
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

			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if !w.shouldExcludeDir(event.Name) {
						if err := w.watchRecursive(event.Name, false); err != nil {
							slog.Warn("failed to watch new directory", "path", event.Name, "error", err)
						} else {
							w.enqueueExistingFiles(event.Name)
						}
					}
					continue
				}
			}

			if w.shouldExcludeFile(event.Name) {
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

		case <-w.done:
			return
		}
	}
}

// remember records the current content hash of path.
func (w *Watcher) remember(path string) {
	sum, ok := hashFile(path)
	w.pendingMu.Lock()
	defer w.pendingMu.Unlock()
	if ok {
		w.hashes[path] = sum
	} else {
		delete(w.hashes, path)
	}
}

func hashFile(path string) (uint64, bool) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, false
	}
	return xxhash.Sum64(data), true
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

// flushChanges reports the pending paths whose content differs from what was
// last seen. A removed file always counts as changed.
func (w *Watcher) flushChanges() {
	w.pendingMu.Lock()
	candidates := make([]string, 0, len(w.pending))
	for path := range w.pending {
		candidates = append(candidates, path)
	}
	w.pending = make(map[string]struct{})
	w.pendingMu.Unlock()

	var changed []string
	for _, path := range candidates {
		sum, exists := hashFile(path)
		w.pendingMu.Lock()
		prev, known := w.hashes[path]
		if exists {
			w.hashes[path] = sum
		} else {
			delete(w.hashes, path)
		}
		w.pendingMu.Unlock()

		if exists && known && prev == sum {
			continue
		}
		if !exists && !known {
			continue
		}
		changed = append(changed, path)
	}
	if len(changed) == 0 {
		return
	}
	sort.Strings(changed)

	select {
	case <-w.done:
		return
	default:
	}
	w.callbackMu.Lock()
	defer w.callbackMu.Unlock()
	w.onChange(changed)
}

func (w *Watcher) shouldExcludeDir(path string) bool {
	base := filepath.Base(path)
	for _, g := range w.excludeDirs {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) shouldExcludeFile(path string) bool {
	w.pendingMu.Lock()
	explicit := w.explicit[filepath.Clean(path)]
	extensions := w.extensions
	w.pendingMu.Unlock()
	if explicit {
		return false
	}

	base := strings.ToLower(filepath.Base(path))
	if len(extensions) > 0 && !extensions[filepath.Ext(base)] {
		return true
	}
	for _, g := range w.excludeFiles {
		if g.Match(base) {
			return true
		}
	}
	return false
}

func (w *Watcher) Close() error {
	var err error
	w.closeOnce.Do(func() {
		close(w.done)
		w.pendingMu.Lock()
		if w.timer != nil {
			w.timer.Stop()
		}
		w.pendingMu.Unlock()
		err = w.fsWatcher.Close()
	})
	return err
}

func (w *Watcher) enqueueExistingFiles(root string) {
	_ = filepath.Walk(root, func(path string, info os.FileInfo, err error) error {
		if err != nil || info == nil || info.IsDir() {
			return nil
		}
		if w.shouldExcludeFile(path) {
			return nil
		}
		w.scheduleChange(path)
		return nil
	})
}
