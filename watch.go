package filecache

import (
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watcher keeps a cache fronting a real directory tree in sync with
// changes on disk: written files are refreshed, removed files are
// dropped.
type Watcher struct {
	fsys    *FS
	dir     string
	watcher *fsnotify.Watcher
	logger  *slog.Logger
}

// Watch watches the directory tree rooted at dir, the OS path backing
// fsys, and applies changes to the cache: a written or newly created
// file is refreshed (a no-op unless it is cached), a removed or
// renamed-away file is removed along with its access history.
// Subdirectories are watched recursively, including ones created after
// the watch starts.
//
// Events are matched to cache keys by their path relative to dir, so
// dir must be the root the backing fs.FS was built from, as in
// os.DirFS(dir).
func Watch(dir string, fsys *FS) (*Watcher, error) {
	notify, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("filecache: watch: %w", err)
	}

	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return notify.Add(path)
		}
		return nil
	})
	if err != nil {
		_ = notify.Close()
		return nil, fmt.Errorf("filecache: watch %s: %w", dir, err)
	}

	w := &Watcher{
		fsys:    fsys,
		dir:     dir,
		watcher: notify,
		logger:  fsys.cache.logger,
	}
	go w.run()
	return w, nil
}

// Close stops watching and releases the OS watches. Refreshes and
// removals already applied remain in effect.
func (w *Watcher) Close() error {
	return w.watcher.Close()
}

func (w *Watcher) run() {
	for {
		select {
		case ev, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handle(ev)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Debug("watch error", slog.String("error", err.Error()))
		}
	}
}

func (w *Watcher) handle(ev fsnotify.Event) {
	rel, err := filepath.Rel(w.dir, ev.Name)
	if err != nil {
		return
	}
	key := filepath.ToSlash(rel)
	if key == "." || !fs.ValidPath(key) {
		return
	}

	switch {
	case ev.Has(fsnotify.Remove), ev.Has(fsnotify.Rename):
		w.fsys.Remove(key)
		w.logger.Debug("watch remove", slog.String("path", key))
	case ev.Has(fsnotify.Create):
		info, err := os.Stat(ev.Name)
		if err != nil {
			return
		}
		if info.IsDir() {
			if err := w.watcher.Add(ev.Name); err != nil {
				w.logger.Debug("watch add failed",
					slog.String("path", key),
					slog.String("error", err.Error()))
			}
			return
		}
		if w.fsys.Refresh(key) {
			w.logger.Debug("watch refresh", slog.String("path", key))
		}
	case ev.Has(fsnotify.Write):
		if w.fsys.Refresh(key) {
			w.logger.Debug("watch refresh", slog.String("path", key))
		}
	}
}
