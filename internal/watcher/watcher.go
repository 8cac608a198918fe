// Package watcher reports changes to a board's task files so views can
// reload tasks written by other processes.
package watcher

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultDebounce collapses bursts of events, such as an editor's
// write-rename-chmod sequence, into a single callback.
const DefaultDebounce = 100 * time.Millisecond

const meaningfulOps = fsnotify.Create | fsnotify.Write | fsnotify.Remove | fsnotify.Rename

// Watcher calls a callback after task files change.
type Watcher struct {
	fsw      *fsnotify.Watcher
	callback func()
	debounce time.Duration
}

// New watches paths and calls cb, debounced, after changes. Paths are
// directories; subdirectories are not followed.
func New(paths []string, cb func()) (*Watcher, error) {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, fmt.Errorf("creating watcher: %w", err)
	}
	for _, p := range paths {
		if err := fsw.Add(p); err != nil {
			_ = fsw.Close()
			return nil, fmt.Errorf("watching %s: %w", p, err)
		}
	}
	return &Watcher{fsw: fsw, callback: cb, debounce: DefaultDebounce}, nil
}

// SetDebounce changes the quiet period before the callback fires.
func (w *Watcher) SetDebounce(d time.Duration) {
	if d > 0 {
		w.debounce = d
	}
}

// Run delivers callbacks until ctx is done or the watcher is closed.
// errFn, if non-nil, receives watcher errors.
func (w *Watcher) Run(ctx context.Context, errFn func(error)) {
	var timer *time.Timer
	var fire <-chan time.Time
	defer func() {
		if timer != nil {
			timer.Stop()
		}
	}()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if ev.Op&meaningfulOps == 0 || ignored(ev.Name) {
				continue
			}
			if timer == nil {
				timer = time.NewTimer(w.debounce)
			} else {
				timer.Reset(w.debounce)
			}
			fire = timer.C
		case <-fire:
			fire = nil
			w.callback()
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			if errFn != nil {
				errFn(err)
			}
		}
	}
}

// Close stops watching.
func (w *Watcher) Close() error {
	return w.fsw.Close()
}

// ignored filters lock files and editor scratch files.
func ignored(name string) bool {
	base := filepath.Base(name)
	return base == ".lock" || strings.HasSuffix(base, "~") || strings.HasSuffix(base, ".swp")
}
