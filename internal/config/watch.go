package config

import (
	"fmt"

	"github.com/fsnotify/fsnotify"
)

// Watcher reports changes to the file at path; it does not reload the Config.
type Watcher struct {
	path    string
	watcher *fsnotify.Watcher
}

// NewWatcher starts watching path for changes. Call Stop when done.
func NewWatcher(path string) (*Watcher, error) {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("config watcher: %w", err)
	}
	if err := w.Add(path); err != nil {
		w.Close()
		return nil, fmt.Errorf("config watcher add %s: %w", path, err)
	}
	return &Watcher{path: path, watcher: w}, nil
}

// Events exposes the underlying fsnotify event channel. Callers should
// call Load(path) themselves on write events: the Watcher only signals that
// the file changed, it does not re-parse it, keeping reload semantics
// explicit at the call site (the watch command in internal/cli).
func (w *Watcher) Events() <-chan fsnotify.Event { return w.watcher.Events }

// Errors exposes the underlying fsnotify error channel.
func (w *Watcher) Errors() <-chan error { return w.watcher.Errors }

// Stop closes the underlying watcher.
func (w *Watcher) Stop() error { return w.watcher.Close() }
