// Package watch notifies when a not-yet-existing file appears on disk.
//
// The monitor loop polls the target file once per second; while the file does
// not exist yet, an [AppearanceWatcher] on the parent directory lets the loop
// re-check immediately after creation instead of waiting out the current tick.
// Events are a wake-up hint only — the poll remains authoritative.
package watch

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
)

// ///////////////////////////////////////////////
// AppearanceWatcher
// ///////////////////////////////////////////////

// AppearanceWatcher monitors a parent directory for the creation of one
// specific file, using fsnotify with a stat-polling fallback.
type AppearanceWatcher struct {
	// path is the absolute path of the file whose appearance is awaited.
	path string
	// events delivers a signal when the file is created or written.
	// The channel is buffered to 1 so back-to-back events coalesce.
	events chan struct{}
	// done is closed by [AppearanceWatcher.Close] to signal goroutines to exit.
	done chan struct{}
	// fsw is the underlying fsnotify watcher; nil when polling.
	fsw *fsnotify.Watcher
	// once ensures [AppearanceWatcher.Close] is idempotent.
	once sync.Once
	// polling is true when the watcher has fallen back to stat-based polling.
	polling atomic.Bool
	// pollInterval is the duration between stat calls in polling mode.
	pollInterval time.Duration
}

// New creates an AppearanceWatcher for the given file path. The parent
// directory is watched because fsnotify cannot watch a path that does not
// exist yet. If the directory itself cannot be watched (missing, or fsnotify
// unavailable), the watcher falls back to stat polling.
func New(filePath string) (*AppearanceWatcher, error) {
	abs, err := filepath.Abs(filePath)
	if err != nil {
		return nil, fmt.Errorf("resolve path %s: %w", filePath, err)
	}

	w := &AppearanceWatcher{
		path:         abs,
		events:       make(chan struct{}, 1),
		done:         make(chan struct{}),
		pollInterval: time.Second,
	}

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		slog.Info("fsnotify unavailable, falling back to polling", "error", err)
		w.polling.Store(true)
		go w.poll()
		return w, nil
	}

	w.fsw = fsw
	if err := fsw.Add(filepath.Dir(abs)); err != nil {
		slog.Info("cannot watch directory, falling back to polling", "dir", filepath.Dir(abs), "error", err)
		fsw.Close()
		w.fsw = nil
		w.polling.Store(true)
		go w.poll()
		return w, nil
	}

	go w.watch()
	return w, nil
}

// Polling reports whether the watcher is using polling instead of fsnotify.
func (w *AppearanceWatcher) Polling() bool {
	return w.polling.Load()
}

// Events returns a channel that receives a signal when the awaited file
// appears or is written.
func (w *AppearanceWatcher) Events() <-chan struct{} {
	return w.events
}

// Close stops the watcher and releases resources.
func (w *AppearanceWatcher) Close() error {
	var err error
	w.once.Do(func() {
		close(w.done)
		if w.fsw != nil {
			if closeErr := w.fsw.Close(); closeErr != nil {
				err = fmt.Errorf("closing fsnotify watcher: %w", closeErr)
			}
		}
	})
	return err
}

// ///////////////////////////////////////////////
// Event Loop
// ///////////////////////////////////////////////

// watch loops over fsnotify directory events, forwarding create/write
// notifications for the awaited file to the events channel. On fsnotify
// error the native watcher is closed and watch falls back to polling.
func (w *AppearanceWatcher) watch() {
	for {
		select {
		case <-w.done:
			return
		case event, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if (event.Has(fsnotify.Create) || event.Has(fsnotify.Write)) && w.matches(event.Name) {
				w.notify()
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			slog.Info("fsnotify error, switching to polling", "error", err)
			w.fsw.Close()
			w.fsw = nil
			w.polling.Store(true)
			go w.poll()
			return
		}
	}
}

// matches reports whether an fsnotify event path refers to the awaited file.
// fsnotify reports paths as joined from the watched directory, so comparing
// base names under the same parent is sufficient.
func (w *AppearanceWatcher) matches(name string) bool {
	return filepath.Base(name) == filepath.Base(w.path)
}

// poll periodically stats the awaited file and sends a notification once it
// exists. It runs as a fallback when fsnotify is unavailable.
func (w *AppearanceWatcher) poll() {
	ticker := time.NewTicker(w.pollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-w.done:
			return
		case <-ticker.C:
			if _, err := os.Stat(w.path); err == nil {
				w.notify()
			}
		}
	}
}

// notify sends a single signal to the events channel. If a signal is already
// pending the call is a no-op, coalescing rapid successive changes.
func (w *AppearanceWatcher) notify() {
	select {
	case w.events <- struct{}{}:
	default:
		// Channel already has a pending event, skip
	}
}
