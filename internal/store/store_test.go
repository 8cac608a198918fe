package store

import (
	"context"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

var baseTime = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)

type clock struct{ t time.Time }

func (c *clock) now() time.Time { return c.t }

func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

// testStores returns every adapter that can run without external services,
// plus PostgreSQL when TASKBOARD_TEST_DSN is set.
func testStores(t *testing.T, c *clock) map[string]Store {
	t.Helper()
	stores := map[string]Store{
		"memory": NewMemory(WithClock(c.now)),
		"file":   NewFileStore(t.TempDir(), WithClock(c.now)),
	}
	if dsn := os.Getenv("TASKBOARD_TEST_DSN"); dsn != "" {
		ctx := context.Background()
		pg, err := OpenPg(ctx, dsn, WithClock(c.now))
		if err != nil {
			t.Fatalf("OpenPg: %v", err)
		}
		if _, err := pg.pool.Exec(ctx, `TRUNCATE board_tasks`); err != nil {
			t.Fatalf("truncate: %v", err)
		}
		t.Cleanup(pg.Close)
		stores["postgres"] = pg
	}
	return stores
}

func TestStoreContract(t *testing.T) {
	c := &clock{t: baseTime}
	for name, s := range testStores(t, c) {
		t.Run(name, func(t *testing.T) {
			c.t = baseTime
			ctx := context.Background()

			a, err := s.CreateTask(ctx, &task.Task{Title: "Write report", ProjectID: "p1"})
			if err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if a.ID == "" || a.Status != task.StatusTodo || a.Priority != task.PriorityMedium {
				t.Errorf("defaults not applied: %+v", a)
			}
			if a.Position != 0 {
				t.Errorf("first position = %d, want 0", a.Position)
			}
			if !a.CreatedAt.Equal(baseTime) || !a.UpdatedAt.Equal(baseTime) {
				t.Errorf("timestamps = %v/%v, want %v", a.CreatedAt, a.UpdatedAt, baseTime)
			}

			c.advance(time.Minute)
			b, err := s.CreateTask(ctx, &task.Task{Title: "Review", ProjectID: "p1", Priority: task.PriorityHigh})
			if err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if b.Position != 1 {
				t.Errorf("second position = %d, want 1", b.Position)
			}
			if _, err := s.CreateTask(ctx, &task.Task{Title: "Other project", ProjectID: "p2"}); err != nil {
				t.Fatalf("CreateTask: %v", err)
			}

			list, err := s.ListTasks(ctx, "p1")
			if err != nil {
				t.Fatalf("ListTasks: %v", err)
			}
			if len(list) != 2 || list[0].ID != a.ID || list[1].ID != b.ID {
				t.Fatalf("ListTasks(p1) = %v", list)
			}

			c.advance(time.Minute)
			due := date.New(2026, 3, 10)
			start := c.now()
			p := task.Patch{
				Status:         task.Ptr(task.StatusInProgress),
				Position:       task.Ptr(0),
				DueDate:        &due,
				TimerStartTime: &start,
				StartedAt:      &start,
				Tags:           task.Ptr([]string{"ops"}),
			}
			if err := s.UpdateTask(ctx, a.ID, p); err != nil {
				t.Fatalf("UpdateTask: %v", err)
			}
			if err := s.RecordTime(ctx, a.ID, 7); err != nil {
				t.Fatalf("RecordTime: %v", err)
			}
			if err := s.UpdateTask(ctx, a.ID, task.Patch{AddMinutes: 3, ClearTimer: true}); err != nil {
				t.Fatalf("UpdateTask: %v", err)
			}

			got := find(t, s, "p1", a.ID)
			if got.Status != task.StatusInProgress || got.TimeSpentMinutes != 10 {
				t.Errorf("after update: status=%s minutes=%d", got.Status, got.TimeSpentMinutes)
			}
			if got.TimerStartTime != nil {
				t.Errorf("timer should be cleared, got %v", got.TimerStartTime)
			}
			if got.DueDate == nil || got.DueDate.String() != "2026-03-10" {
				t.Errorf("due date = %v", got.DueDate)
			}
			if got.StartedAt == nil || !got.StartedAt.Equal(start) {
				t.Errorf("started_at = %v, want %v", got.StartedAt, start)
			}
			if len(got.Tags) != 1 || got.Tags[0] != "ops" {
				t.Errorf("tags = %v", got.Tags)
			}
			if !got.UpdatedAt.Equal(c.now()) {
				t.Errorf("updated_at = %v, want %v", got.UpdatedAt, c.now())
			}

			if err := s.DeleteTask(ctx, b.ID); err != nil {
				t.Fatalf("DeleteTask: %v", err)
			}
			for _, err := range []error{
				s.DeleteTask(ctx, b.ID),
				s.UpdateTask(ctx, b.ID, task.Patch{Title: task.Ptr("x")}),
				s.RecordTime(ctx, b.ID, 1),
			} {
				if !clierr.HasCode(err, clierr.TaskNotFound) {
					t.Errorf("stale reference error = %v, want TASK_NOT_FOUND", err)
				}
			}
		})
	}
}

func TestCreateTaskValidation(t *testing.T) {
	c := &clock{t: baseTime}
	for name, s := range testStores(t, c) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()
			tests := []struct {
				name string
				in   *task.Task
				code string
			}{
				{"empty title", &task.Task{Title: "  "}, clierr.InvalidInput},
				{"bad status", &task.Task{Title: "x", Status: "blocked"}, clierr.InvalidStatus},
				{"bad priority", &task.Task{Title: "x", Priority: "asap"}, clierr.InvalidPriority},
			}
			for _, tt := range tests {
				if _, err := s.CreateTask(ctx, tt.in); !clierr.HasCode(err, tt.code) {
					t.Errorf("%s: err = %v, want %s", tt.name, err, tt.code)
				}
			}

			in := &task.Task{ID: "fixed-id", Title: "x"}
			if _, err := s.CreateTask(ctx, in); err != nil {
				t.Fatalf("CreateTask: %v", err)
			}
			if _, err := s.CreateTask(ctx, in); !clierr.HasCode(err, clierr.InvalidTaskID) {
				t.Errorf("duplicate id err = %v, want INVALID_TASK_ID", err)
			}
			if err := s.RecordTime(ctx, "fixed-id", -5); !clierr.HasCode(err, clierr.InvalidInput) {
				t.Errorf("negative minutes err = %v, want INVALID_INPUT", err)
			}
			if err := s.UpdateTask(ctx, "fixed-id", task.Patch{Position: task.Ptr(-1)}); !clierr.HasCode(err, clierr.InvalidPosition) {
				t.Errorf("negative position err = %v, want INVALID_POSITION", err)
			}
		})
	}
}

func TestCreateTaskDoesNotAliasInput(t *testing.T) {
	s := NewMemory()
	in := &task.Task{Title: "x", Tags: []string{"a"}}
	out, err := s.CreateTask(context.Background(), in)
	if err != nil {
		t.Fatalf("CreateTask: %v", err)
	}
	if in.ID != "" {
		t.Error("CreateTask must not mutate its input")
	}
	out.Tags[0] = "changed"
	got := find(t, s, "", out.ID)
	if got.Tags[0] != "a" {
		t.Error("returned task aliases stored state")
	}
}

func TestMemoryLoad(t *testing.T) {
	s := NewMemory()
	s.Load([]*task.Task{
		{ID: "b", Title: "B", Status: task.StatusTodo, CreatedAt: baseTime.Add(time.Minute)},
		{ID: "a", Title: "A", Status: task.StatusTodo, CreatedAt: baseTime},
	})
	list, err := s.ListTasks(context.Background(), "")
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	if len(list) != 2 || list[0].ID != "a" {
		t.Errorf("ListTasks = %v, want a then b", list)
	}
}

func TestFailure(t *testing.T) {
	if Failure("list", nil) != nil {
		t.Error("Failure(nil) should be nil")
	}

	io := errors.New("disk on fire")
	err := Failure("list", io)
	if !clierr.HasCode(err, clierr.StoreFailure) {
		t.Errorf("Failure() = %v, want STORE_FAILURE", err)
	}
	if !errors.Is(err, io) {
		t.Error("Failure() should wrap the cause")
	}

	nf := task.NotFound("x")
	if got := Failure("update", nf); got != error(nf) {
		t.Errorf("coded errors should pass through, got %v", got)
	}
}

func find(t *testing.T, s Store, projectID, id string) *task.Task {
	t.Helper()
	list, err := s.ListTasks(context.Background(), projectID)
	if err != nil {
		t.Fatalf("ListTasks: %v", err)
	}
	got := task.FindByID(list, id)
	if got == nil {
		t.Fatalf("task %s not listed", id)
	}
	return got
}
