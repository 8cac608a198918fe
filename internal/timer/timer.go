// Package timer tracks running task timers and credits elapsed whole
// minutes to the task store.
//
// A session's Start is the instant from which uncredited time accrues.
// Periodic ticks credit whole minutes and advance both the session and the
// stored timer_start_time by the credited amount, so a stopped or restored
// timer never counts the same minute twice.
package timer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// DefaultInterval is how often Run credits accrued minutes.
const DefaultInterval = time.Minute

// Updater is the slice of the task store the tracker writes through.
type Updater interface {
	UpdateTask(ctx context.Context, id string, p task.Patch) error
}

// Session is one running timer.
type Session struct {
	TaskID string
	Start  time.Time
}

// Tracker owns the set of running timers. It is safe for concurrent use.
type Tracker struct {
	store    Updater
	now      func() time.Time
	interval time.Duration
	logger   *slog.Logger
	credited metric.Int64Counter

	mu       sync.Mutex
	sessions map[string]time.Time
}

// Option configures a Tracker.
type Option func(*Tracker)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(t *Tracker) { t.now = now }
}

// WithInterval sets the tick interval used by Run.
func WithInterval(d time.Duration) Option {
	return func(t *Tracker) {
		if d > 0 {
			t.interval = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(t *Tracker) { t.logger = l }
}

// WithCounter records credited minutes on c.
func WithCounter(c metric.Int64Counter) Option {
	return func(t *Tracker) { t.credited = c }
}

// New creates a Tracker writing through store.
func New(store Updater, opts ...Option) *Tracker {
	t := &Tracker{
		store:    store,
		now:      time.Now,
		interval: DefaultInterval,
		logger:   slog.Default(),
		sessions: make(map[string]time.Time),
	}
	for _, o := range opts {
		o(t)
	}
	if t.credited == nil {
		t.credited, _ = noop.NewMeterProvider().Meter("").Int64Counter("noop")
	}
	return t
}

// Begin registers a session for id starting now and returns the patch that
// records it. ok is false when a timer is already running.
func (t *Tracker) Begin(id string) (p task.Patch, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.beginLocked(id)
}

func (t *Tracker) beginLocked(id string) (task.Patch, bool) {
	if _, running := t.sessions[id]; running {
		return task.Patch{}, false
	}
	now := t.now()
	t.sessions[id] = now
	return task.Patch{TimerStartTime: task.Ptr(now)}, true
}

// End removes the session for id and returns the patch that credits its
// uncredited whole minutes and clears the stored timer. ok is false when
// no timer is running.
func (t *Tracker) End(id string) (p task.Patch, minutes int, ok bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.endLocked(id)
}

func (t *Tracker) endLocked(id string) (task.Patch, int, bool) {
	start, running := t.sessions[id]
	if !running {
		return task.Patch{}, 0, false
	}
	delete(t.sessions, id)
	minutes := wholeMinutes(t.now().Sub(start))
	return task.Patch{AddMinutes: minutes, ClearTimer: true}, minutes, true
}

// Start begins timing id and persists the start time. It is a no-op when a
// timer is already running for id.
func (t *Tracker) Start(ctx context.Context, id string) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	p, ok := t.beginLocked(id)
	if !ok {
		return nil
	}
	if err := t.store.UpdateTask(ctx, id, p); err != nil {
		delete(t.sessions, id)
		return fmt.Errorf("starting timer for %s: %w", id, err)
	}
	t.logger.Debug("timer started", "task_id", id)
	return nil
}

// Stop ends the timer for id, credits the uncredited whole minutes, and
// clears the stored start time in one update. Stopping a task without a
// running timer returns 0 and does nothing, so repeated stops never
// double-credit.
func (t *Tracker) Stop(ctx context.Context, id string) (int, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	start := t.sessions[id]
	p, minutes, ok := t.endLocked(id)
	if !ok {
		return 0, nil
	}
	if err := t.store.UpdateTask(ctx, id, p); err != nil {
		if !clierr.HasCode(err, clierr.TaskNotFound) {
			t.sessions[id] = start
		}
		return 0, fmt.Errorf("stopping timer for %s: %w", id, err)
	}
	t.record(ctx, id, minutes)
	t.logger.Debug("timer stopped", "task_id", id, "minutes", minutes)
	return minutes, nil
}

// Credited reports minutes credited by a stop made through End. Callers that
// persist End's patch themselves call it after a successful write.
func (t *Tracker) Credited(ctx context.Context, id string, minutes int) {
	t.record(ctx, id, minutes)
}

// Release forgets the session for id without crediting anything.
func (t *Tracker) Release(id string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.sessions, id)
}

// Tick credits every running session with the whole minutes accrued since
// its last credit. Sessions whose task has vanished are dropped.
func (t *Tracker) Tick(ctx context.Context) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	var errs []error
	for _, id := range t.idsLocked() {
		start := t.sessions[id]
		minutes := wholeMinutes(now.Sub(start))
		if minutes == 0 {
			continue
		}
		next := start.Add(time.Duration(minutes) * time.Minute)
		p := task.Patch{AddMinutes: minutes, TimerStartTime: task.Ptr(next)}
		if err := t.store.UpdateTask(ctx, id, p); err != nil {
			if clierr.HasCode(err, clierr.TaskNotFound) {
				delete(t.sessions, id)
				t.logger.Warn("timer dropped for missing task", "task_id", id)
				continue
			}
			errs = append(errs, fmt.Errorf("crediting %s: %w", id, err))
			continue
		}
		t.sessions[id] = next
		t.record(ctx, id, minutes)
	}
	return errors.Join(errs...)
}

// Run ticks every interval until ctx is done.
func (t *Tracker) Run(ctx context.Context) {
	ticker := time.NewTicker(t.interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := t.Tick(ctx); err != nil {
				t.logger.Error("timer tick failed", "err", err)
			}
		}
	}
}

// Restore reconciles sessions with the stored task list: tasks with a
// stored start time get a session if they lack one, and sessions whose
// task is gone or no longer timed are dropped. Existing sessions keep
// their own start, which may be ahead of a stale list. IDs in skip have
// writes in flight and are left as they are.
func (t *Tracker) Restore(tasks []*task.Task, skip ...string) {
	t.mu.Lock()
	defer t.mu.Unlock()

	skipped := make(map[string]bool, len(skip))
	for _, id := range skip {
		skipped[id] = true
	}
	timed := make(map[string]time.Time, len(tasks))
	for _, tk := range tasks {
		if tk.TimerStartTime != nil && !skipped[tk.ID] {
			timed[tk.ID] = *tk.TimerStartTime
		}
	}
	for id := range t.sessions {
		if _, ok := timed[id]; !ok && !skipped[id] {
			delete(t.sessions, id)
		}
	}
	for id, start := range timed {
		if cur, ok := t.sessions[id]; !ok || start.After(cur) {
			t.sessions[id] = start
		}
	}
}

// Running reports whether a timer is running for id.
func (t *Tracker) Running(id string) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	_, ok := t.sessions[id]
	return ok
}

// Elapsed returns the uncredited time accrued by id's timer.
func (t *Tracker) Elapsed(id string) time.Duration {
	t.mu.Lock()
	defer t.mu.Unlock()
	start, ok := t.sessions[id]
	if !ok {
		return 0
	}
	return t.now().Sub(start)
}

// Sessions returns the running sessions ordered by task ID.
func (t *Tracker) Sessions() []Session {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]Session, 0, len(t.sessions))
	for _, id := range t.idsLocked() {
		out = append(out, Session{TaskID: id, Start: t.sessions[id]})
	}
	return out
}

func (t *Tracker) idsLocked() []string {
	ids := make([]string, 0, len(t.sessions))
	for id := range t.sessions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func (t *Tracker) record(ctx context.Context, id string, minutes int) {
	if minutes <= 0 {
		return
	}
	t.credited.Add(ctx, int64(minutes))
	t.logger.Debug("minutes credited", "task_id", id, "minutes", minutes)
}

func wholeMinutes(d time.Duration) int {
	if d < 0 {
		return 0
	}
	return int(d / time.Minute)
}
