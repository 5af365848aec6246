package settings

import (
	"log/slog"
	"path/filepath"
	"sync"

	"github.com/fsnotify/fsnotify"
)

// Watcher reloads a Store when its file changes on disk.
type Watcher struct {
	watcher *fsnotify.Watcher
	store   *Store
	logger  *slog.Logger
	done    chan struct{}
	stopped chan struct{}
	mu      sync.Mutex
	running bool
}

// NewWatcher creates a watcher for the store's file.
func NewWatcher(store *Store, logger *slog.Logger) (*Watcher, error) {
	if logger == nil {
		logger = slog.Default()
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	return &Watcher{
		watcher: watcher,
		store:   store,
		logger:  logger,
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}, nil
}

// Start begins watching. Editors and Save replace the file by rename, so the
// parent directory is watched rather than the file.
func (w *Watcher) Start() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.running {
		return nil
	}

	if err := w.watcher.Add(filepath.Dir(w.store.Path())); err != nil {
		return err
	}
	w.running = true
	go w.watch()
	return nil
}

func (w *Watcher) watch() {
	defer close(w.stopped)
	filename := filepath.Base(w.store.Path())

	for {
		select {
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			if filepath.Base(event.Name) != filename {
				continue
			}
			if event.Has(fsnotify.Write) || event.Has(fsnotify.Create) || event.Has(fsnotify.Rename) {
				w.logger.Debug("settings file changed", "file", w.store.Path(), "op", event.Op.String())
				if _, err := w.store.Reload(); err != nil {
					w.logger.Warn("failed to reload settings", "error", err)
				}
			}

		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn("settings watcher error", "error", err)

		case <-w.done:
			return
		}
	}
}

// Stop stops watching and waits for the watch goroutine to exit.
func (w *Watcher) Stop() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if !w.running {
		return w.watcher.Close()
	}
	w.running = false
	close(w.done)
	err := w.watcher.Close()
	<-w.stopped
	return err
}
