package watcher

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/fsnotify/fsnotify"
)

const waitTimeout = 2 * time.Second

// fakeWatcher returns a Watcher whose event and error channels are driven
// by the test instead of the kernel.
func fakeWatcher(t *testing.T, cb func()) (*Watcher, chan fsnotify.Event, chan error) {
	t.Helper()
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		t.Fatalf("NewWatcher: %v", err)
	}
	_ = fsw.Close()

	events := make(chan fsnotify.Event)
	errs := make(chan error, 1)
	fsw.Events = events
	fsw.Errors = errs
	return &Watcher{fsw: fsw, callback: cb, debounce: 20 * time.Millisecond}, events, errs
}

// start runs w in the background and returns a channel closed when Run
// returns.
func start(ctx context.Context, w *Watcher, errFn func(error)) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		w.Run(ctx, errFn)
		close(done)
	}()
	return done
}

func waitDone(t *testing.T, done <-chan struct{}) {
	t.Helper()
	select {
	case <-done:
	case <-time.After(waitTimeout):
		t.Fatal("Run did not return")
	}
}

func TestRunReturnsWhenChannelsClose(t *testing.T) {
	for _, name := range []string{"events", "errors"} {
		t.Run(name, func(t *testing.T) {
			w, events, errs := fakeWatcher(t, func() {})
			done := start(context.Background(), w, nil)
			if name == "events" {
				close(events)
			} else {
				close(errs)
			}
			waitDone(t, done)
		})
	}
}

func TestRunFiltersEvents(t *testing.T) {
	tests := []struct {
		name  string
		event fsnotify.Event
		calls int32
	}{
		{"write", fsnotify.Event{Name: "/b/tasks/a.md", Op: fsnotify.Write}, 1},
		{"create", fsnotify.Event{Name: "/b/tasks/a.md", Op: fsnotify.Create}, 1},
		{"remove", fsnotify.Event{Name: "/b/tasks/a.md", Op: fsnotify.Remove}, 1},
		{"rename", fsnotify.Event{Name: "/b/tasks/a.md", Op: fsnotify.Rename}, 1},
		{"chmod", fsnotify.Event{Name: "/b/tasks/a.md", Op: fsnotify.Chmod}, 0},
		{"lock file", fsnotify.Event{Name: "/b/tasks/.lock", Op: fsnotify.Create}, 0},
		{"swap file", fsnotify.Event{Name: "/b/tasks/.a.md.swp", Op: fsnotify.Write}, 0},
		{"backup file", fsnotify.Event{Name: "/b/tasks/a.md~", Op: fsnotify.Write}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var calls atomic.Int32
			w, events, _ := fakeWatcher(t, func() { calls.Add(1) })
			ctx, cancel := context.WithCancel(context.Background())
			done := start(ctx, w, nil)

			events <- tt.event
			time.Sleep(100 * time.Millisecond)
			cancel()
			waitDone(t, done)

			if got := calls.Load(); got != tt.calls {
				t.Errorf("callbacks = %d, want %d", got, tt.calls)
			}
		})
	}
}

func TestRunDebouncesBurst(t *testing.T) {
	var calls atomic.Int32
	w, events, _ := fakeWatcher(t, func() { calls.Add(1) })
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	done := start(ctx, w, nil)

	for range 5 {
		events <- fsnotify.Event{Name: "/b/tasks/a.md", Op: fsnotify.Write}
	}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 1 {
		t.Errorf("burst produced %d callbacks, want 1", got)
	}

	events <- fsnotify.Event{Name: "/b/tasks/b.md", Op: fsnotify.Create}
	time.Sleep(150 * time.Millisecond)
	if got := calls.Load(); got != 2 {
		t.Errorf("second change produced %d total callbacks, want 2", got)
	}
	cancel()
	waitDone(t, done)
}

func TestRunReportsErrors(t *testing.T) {
	w, _, errs := fakeWatcher(t, func() {})
	got := make(chan error, 1)
	ctx, cancel := context.WithCancel(context.Background())
	done := start(ctx, w, func(err error) { got <- err })

	injected := errors.New("queue overflow")
	errs <- injected
	select {
	case err := <-got:
		if !errors.Is(err, injected) {
			t.Errorf("errFn got %v, want %v", err, injected)
		}
	case <-time.After(waitTimeout):
		t.Fatal("errFn not called")
	}
	cancel()
	waitDone(t, done)
}

func TestSetDebounceIgnoresNonPositive(t *testing.T) {
	w, _, _ := fakeWatcher(t, func() {})
	w.SetDebounce(0)
	if w.debounce != 20*time.Millisecond {
		t.Errorf("debounce = %v after SetDebounce(0)", w.debounce)
	}
	w.SetDebounce(time.Second)
	if w.debounce != time.Second {
		t.Errorf("debounce = %v, want 1s", w.debounce)
	}
}

func TestNewFailsOnMissingPath(t *testing.T) {
	if _, err := New([]string{t.TempDir(), filepath.Join(t.TempDir(), "missing")}, func() {}); err == nil {
		t.Fatal("expected error for a missing directory")
	}
}

func TestWatchDirectory(t *testing.T) {
	dir := t.TempDir()
	calls := make(chan struct{}, 4)
	w, err := New([]string{dir}, func() { calls <- struct{}{} })
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer w.Close()
	w.SetDebounce(20 * time.Millisecond)

	ctx, cancel := context.WithCancel(context.Background())
	done := start(ctx, w, nil)

	time.Sleep(50 * time.Millisecond)
	if err := os.WriteFile(filepath.Join(dir, "task.md"), []byte("---\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	select {
	case <-calls:
	case <-time.After(waitTimeout):
		t.Fatal("no callback after writing a task file")
	}
	cancel()
	waitDone(t, done)
}

func TestRunReturnsAfterClose(t *testing.T) {
	w, err := New([]string{t.TempDir()}, func() {})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	waitDone(t, start(context.Background(), w, nil))
}
