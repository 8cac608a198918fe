package engine

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/antopolskiy/taskboard/internal/store"
	"github.com/antopolskiy/taskboard/internal/task"
)

var baseTime = time.Date(2026, 2, 9, 10, 0, 0, 0, time.UTC)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// hookStore wraps a store so tests can fail or stall updates.
type hookStore struct {
	store.Store

	mu        sync.Mutex
	updateErr error
	block     chan struct{}
	entered   chan string
}

func (h *hookStore) UpdateTask(ctx context.Context, id string, p task.Patch) error {
	h.mu.Lock()
	err, block, entered := h.updateErr, h.block, h.entered
	h.mu.Unlock()
	if entered != nil {
		entered <- id
	}
	if block != nil {
		<-block
	}
	if err != nil {
		return err
	}
	return h.Store.UpdateTask(ctx, id, p)
}

func (h *hookStore) failUpdates(err error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.updateErr = err
}

type fixture struct {
	o     *Orchestrator
	mem   *store.Memory
	hooks *hookStore
	clk   *clock
}

// newFixture builds an orchestrator over a memory store seeded with
// tasks, using a shared manual clock.
func newFixture(t *testing.T, seed []*task.Task, opts ...Option) fixture {
	t.Helper()
	clk := &clock{now: baseTime}
	mem := store.NewMemory(store.WithClock(clk.Now))
	mem.Load(seed)
	hooks := &hookStore{Store: mem}
	opts = append([]Option{WithClock(clk.Now), WithWIPLimit(3)}, opts...)
	o := New(hooks, nil, opts...)
	if err := o.Refresh(context.Background()); err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	return fixture{o: o, mem: mem, hooks: hooks, clk: clk}
}

// seed builds a task in status at pos, created n minutes after baseTime.
func seed(id string, status task.Status, pos, n int) *task.Task {
	return &task.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    status,
		Priority:  task.PriorityMedium,
		Position:  pos,
		CreatedAt: baseTime.Add(time.Duration(n) * time.Minute),
		UpdatedAt: baseTime,
	}
}

func (f fixture) get(t *testing.T, id string) *task.Task {
	t.Helper()
	list, err := f.mem.ListTasks(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	tk := task.FindByID(list, id)
	if tk == nil {
		t.Fatalf("task %s not in store", id)
	}
	return tk
}

func countStatus(tasks []*task.Task, s task.Status) int {
	n := 0
	for _, t := range tasks {
		if t.Status == s {
			n++
		}
	}
	return n
}
