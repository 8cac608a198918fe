// Package engine is the board orchestrator. It receives gestures from a
// front end, turns them into store commands through the move engine and
// the timer tracker, and re-derives the board from the store after every
// command.
package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/keynav"
	"github.com/antopolskiy/taskboard/internal/logging"
	"github.com/antopolskiy/taskboard/internal/selection"
	"github.com/antopolskiy/taskboard/internal/store"
	"github.com/antopolskiy/taskboard/internal/task"
	"github.com/antopolskiy/taskboard/internal/timer"
)

// Orchestrator owns the board state for one project. Its methods are safe
// for concurrent use. Gestures on different tasks may overlap; a second
// gesture on a task whose command has not settled is refused with
// TASK_BUSY.
type Orchestrator struct {
	store   store.Store
	timers  *timer.Tracker
	now     func() time.Time
	logger  *slog.Logger
	metrics logging.Metrics
	project string
	limit   int
	logDir  string

	mu       sync.Mutex
	snapshot []*task.Task
	pending  map[string]task.Patch
	criteria board.Criteria
	sel      *selection.Controller
	nav      *keynav.Controller
	notices  []Notice
	noticeID int
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *Orchestrator) { o.now = now }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) { o.logger = l }
}

// WithMetrics records gesture counters.
func WithMetrics(m logging.Metrics) Option {
	return func(o *Orchestrator) { o.metrics = m }
}

// WithProject scopes the board to one project.
func WithProject(id string) Option {
	return func(o *Orchestrator) { o.project = id }
}

// WithWIPLimit caps the in-progress column. Zero or less is unlimited.
func WithWIPLimit(n int) Option {
	return func(o *Orchestrator) { o.limit = n }
}

// WithActivityLog appends mutations to the activity log in dir.
func WithActivityLog(dir string) Option {
	return func(o *Orchestrator) { o.logDir = dir }
}

// WithKeyMap replaces the navigation bindings.
func WithKeyMap(k keynav.KeyMap) Option {
	return func(o *Orchestrator) { o.nav = keynav.NewWithKeys(k) }
}

// New creates an orchestrator over s. Timers write through the same store;
// pass nil to get a tracker with default settings.
func New(s store.Store, timers *timer.Tracker, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		store:   s,
		timers:  timers,
		now:     time.Now,
		logger:  slog.Default(),
		metrics: logging.NoopMetrics(),
		pending: make(map[string]task.Patch),
		sel:     selection.New(),
		nav:     keynav.New(),
	}
	for _, fn := range opts {
		fn(o)
	}
	if o.timers == nil {
		o.timers = timer.New(s, timer.WithClock(o.now), timer.WithLogger(o.logger),
			timer.WithCounter(o.metrics.MinutesCredited))
	}
	return o
}

// Timers returns the tracker, for running its tick loop.
func (o *Orchestrator) Timers() *timer.Tracker {
	return o.timers
}

// WIPLimit returns the in-progress cap.
func (o *Orchestrator) WIPLimit() int {
	return o.limit
}

// Refresh reloads the board from the store.
func (o *Orchestrator) Refresh(ctx context.Context) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.refreshLocked(ctx)
}

// refreshLocked replaces the snapshot and reconciles timers and the
// selection with it. On failure the previous snapshot stays and a notice
// is posted.
func (o *Orchestrator) refreshLocked(ctx context.Context) error {
	tasks, err := o.store.ListTasks(ctx, o.project)
	if err != nil {
		o.failLocked("", store.Failure("list", err))
		return err
	}
	o.snapshot = tasks
	o.timers.Restore(tasks, o.pendingIDsLocked()...)
	o.sel.Prune(tasks)
	o.nav.Clamp(o.viewLocked())
	return nil
}

func (o *Orchestrator) pendingIDsLocked() []string {
	ids := make([]string, 0, len(o.pending))
	for id := range o.pending {
		ids = append(ids, id)
	}
	return ids
}

// projectedLocked returns the snapshot with in-flight patches applied, so
// overlapping gestures see each other's effects.
func (o *Orchestrator) projectedLocked() []*task.Task {
	out := task.CloneAll(o.snapshot)
	if len(o.pending) == 0 {
		return out
	}
	for _, t := range out {
		if p, ok := o.pending[t.ID]; ok {
			p.Apply(t)
		}
	}
	return out
}

// Tasks returns a copy of the current task list, unfiltered.
func (o *Orchestrator) Tasks() []*task.Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	return task.CloneAll(o.snapshot)
}

// Task returns a copy of one task, or nil.
func (o *Orchestrator) Task(id string) *task.Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	if t := task.FindByID(o.snapshot, id); t != nil {
		return t.Clone()
	}
	return nil
}

// Criteria returns the active filter and sort.
func (o *Orchestrator) Criteria() board.Criteria {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.criteria
}

// SetCriteria changes the filter and sort.
func (o *Orchestrator) SetCriteria(c board.Criteria) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.criteria = c
	o.nav.Clamp(o.viewLocked())
}

// Visible returns the filtered, sorted task list.
func (o *Orchestrator) Visible() []*task.Task {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.visibleLocked()
}

func (o *Orchestrator) visibleLocked() []*task.Task {
	return board.Project(task.CloneAll(o.snapshot), o.criteria)
}

// Columns returns the visible tasks grouped for display.
func (o *Orchestrator) Columns() board.Columns {
	o.mu.Lock()
	defer o.mu.Unlock()
	return board.Group(o.visibleLocked())
}

// View returns what key navigation operates on.
func (o *Orchestrator) View() keynav.View {
	o.mu.Lock()
	defer o.mu.Unlock()
	return o.viewLocked()
}

func (o *Orchestrator) viewLocked() keynav.View {
	return keynav.ViewOf(board.Group(o.visibleLocked()), o.sel.Active())
}

// Summary computes board statistics over the unfiltered list.
func (o *Orchestrator) Summary(name string) board.Summary {
	o.mu.Lock()
	defer o.mu.Unlock()
	return board.Summarize(name, o.snapshot, o.limit, o.now())
}

// Elapsed returns the time id's timer has accrued since its last credit.
func (o *Orchestrator) Elapsed(id string) time.Duration {
	return o.timers.Elapsed(id)
}

func hasID(tasks []*task.Task, id string) bool {
	return task.FindByID(tasks, id) != nil
}
