// Package store persists tasks. The engine talks to the Store interface;
// Memory, FileStore and PgStore are the shipped adapters.
package store

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// Store is the persistence contract. Every command stamps UpdatedAt and
// is applied atomically. UpdateTask, DeleteTask and RecordTime return a
// TASK_NOT_FOUND error for unknown IDs; adapter I/O failures carry
// STORE_FAILURE.
type Store interface {
	ListTasks(ctx context.Context, projectID string) ([]*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) (*task.Task, error)
	UpdateTask(ctx context.Context, id string, p task.Patch) error
	DeleteTask(ctx context.Context, id string) error
	RecordTime(ctx context.Context, id string, minutes int) error
}

// Option configures an adapter.
type Option func(*options)

type options struct {
	now    func() time.Time
	logger *slog.Logger
}

func buildOptions(opts []Option) options {
	o := options{now: time.Now, logger: slog.Default()}
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithClock replaces time.Now for timestamps.
func WithClock(now func() time.Time) Option {
	return func(o *options) { o.now = now }
}

// WithLogger sets the adapter logger.
func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// Failure wraps an adapter error as STORE_FAILURE. Errors that already
// carry a code pass through unchanged.
func Failure(op string, err error) error {
	if err == nil {
		return nil
	}
	var ce *clierr.Error
	if errors.As(err, &ce) {
		return err
	}
	return fmt.Errorf("%w: %w", clierr.Newf(clierr.StoreFailure, "store %s failed", op), err)
}

// prepareNew fills defaults and validates a task about to be created. The
// caller assigns Position.
func prepareNew(in *task.Task, now time.Time) (*task.Task, error) {
	t := in.Clone()
	t.Title = strings.TrimSpace(t.Title)
	if t.Title == "" {
		return nil, clierr.New(clierr.InvalidInput, "title is required")
	}
	if t.ID == "" {
		t.ID = uuid.Must(uuid.NewV7()).String()
	}
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if !t.Status.Valid() {
		return nil, task.ValidateStatus(string(t.Status))
	}
	if t.Priority == "" {
		t.Priority = task.PriorityMedium
	}
	if _, err := task.ParsePriority(string(t.Priority)); err != nil {
		return nil, err
	}
	if t.TimeSpentMinutes < 0 {
		t.TimeSpentMinutes = 0
	}
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	t.File = ""
	return t, nil
}

func duplicateID(id string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "task ID %s already exists", id).
		WithDetails(map[string]any{"id": id})
}

func validateMinutes(minutes int) error {
	if minutes < 0 {
		return clierr.Newf(clierr.InvalidInput, "minutes must be >= 0, got %d", minutes)
	}
	return nil
}

func inProject(t *task.Task, projectID string) bool {
	return projectID == "" || t.ProjectID == projectID
}
