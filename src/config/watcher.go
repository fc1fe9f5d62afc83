package config

import (
	"context"
	"log"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

const defaultDebounce = 200 * time.Millisecond

// Watcher reports changes to one settings file. It watches the parent
// directory so editors that replace the file on save are still seen.
type Watcher struct {
	path     string
	fs       *fsnotify.Watcher
	debounce time.Duration
}

// NewWatcher starts watching the directory that holds path.
func NewWatcher(path string) (*Watcher, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, err
	}
	if err := fw.Add(filepath.Dir(abs)); err != nil {
		fw.Close()
		return nil, err
	}
	return &Watcher{path: abs, fs: fw, debounce: defaultDebounce}, nil
}

// Run blocks until ctx is done, calling onChange once per settled burst of
// writes to the file.
func (w *Watcher) Run(ctx context.Context, onChange func()) {
	ticker := time.NewTicker(w.debounce / 2)
	defer ticker.Stop()

	var pending time.Time
	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fs.Events:
			if !ok {
				return
			}
			if !w.relevant(ev) {
				continue
			}
			pending = time.Now()
		case err, ok := <-w.fs.Errors:
			if !ok {
				return
			}
			log.Printf("config watcher error: %v", err)
		case <-ticker.C:
			if pending.IsZero() || time.Since(pending) < w.debounce {
				continue
			}
			pending = time.Time{}
			log.Printf("config watcher: %s changed", w.path)
			onChange()
		}
	}
}

func (w *Watcher) relevant(ev fsnotify.Event) bool {
	name, err := filepath.Abs(ev.Name)
	if err != nil || name != w.path {
		return false
	}
	return ev.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

// Path returns the absolute path being watched.
func (w *Watcher) Path() string { return w.path }

func (w *Watcher) Close() error { return w.fs.Close() }
