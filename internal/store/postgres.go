package store

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

const taskColumns = `id, project_id, title, description, status, priority, position, tags,
	due_date, estimated_hours, time_spent_minutes, timer_start_time, started_at,
	completed_at, created_at, updated_at`

// PgStore is a PostgreSQL-backed Store.
type PgStore struct {
	pool *pgxpool.Pool
	opts options
}

// NewPgStore creates a PgStore over pool.
func NewPgStore(pool *pgxpool.Pool, opts ...Option) *PgStore {
	return &PgStore{pool: pool, opts: buildOptions(opts)}
}

// OpenPg connects to dsn and makes sure the schema exists.
func OpenPg(ctx context.Context, dsn string, opts ...Option) (*PgStore, error) {
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, Failure("connect", err)
	}
	s := NewPgStore(pool, opts...)
	if err := s.EnsureTable(ctx); err != nil {
		pool.Close()
		return nil, Failure("migrate", err)
	}
	return s, nil
}

// Close releases the pool.
func (s *PgStore) Close() {
	s.pool.Close()
}

// EnsureTable creates the tasks table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS board_tasks (
			id                 TEXT PRIMARY KEY,
			project_id         TEXT NOT NULL DEFAULT '',
			title              TEXT NOT NULL,
			description        TEXT NOT NULL DEFAULT '',
			status             TEXT NOT NULL DEFAULT 'todo',
			priority           TEXT NOT NULL DEFAULT 'medium',
			position           INTEGER NOT NULL DEFAULT 0,
			tags               TEXT[] NOT NULL DEFAULT '{}',
			due_date           DATE,
			estimated_hours    DOUBLE PRECISION NOT NULL DEFAULT 0,
			time_spent_minutes INTEGER NOT NULL DEFAULT 0 CHECK (time_spent_minutes >= 0),
			timer_start_time   TIMESTAMPTZ,
			started_at         TIMESTAMPTZ,
			completed_at       TIMESTAMPTZ,
			created_at         TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at         TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx,
		`CREATE INDEX IF NOT EXISTS idx_board_tasks_column ON board_tasks(project_id, status, position)`)
	return err
}

// ListTasks returns the project's tasks; an empty projectID lists all.
func (s *PgStore) ListTasks(ctx context.Context, projectID string) ([]*task.Task, error) {
	rows, err := s.pool.Query(ctx, `SELECT `+taskColumns+` FROM board_tasks
		WHERE $1 = '' OR project_id = $1
		ORDER BY created_at, id`, projectID)
	if err != nil {
		return nil, Failure("list", fmt.Errorf("list tasks: %w", err))
	}
	defer rows.Close()
	tasks, err := scanTaskRows(rows)
	if err != nil {
		return nil, Failure("list", err)
	}
	return tasks, nil
}

// CreateTask inserts a task at the end of its column. The position lookup
// and insert share a transaction.
func (s *PgStore) CreateTask(ctx context.Context, in *task.Task) (*task.Task, error) {
	t, err := prepareNew(in, s.opts.now().Truncate(time.Microsecond))
	if err != nil {
		return nil, err
	}
	if t.Tags == nil {
		t.Tags = []string{}
	}

	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return nil, Failure("create", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var exists bool
	if err := tx.QueryRow(ctx, `SELECT EXISTS(SELECT 1 FROM board_tasks WHERE id = $1)`, t.ID).Scan(&exists); err != nil {
		return nil, Failure("create", err)
	}
	if exists {
		return nil, duplicateID(t.ID)
	}
	if err := tx.QueryRow(ctx, `SELECT COALESCE(MAX(position) + 1, 0) FROM board_tasks
		WHERE project_id = $1 AND status = $2`, t.ProjectID, t.Status).Scan(&t.Position); err != nil {
		return nil, Failure("create", err)
	}

	_, err = tx.Exec(ctx, `INSERT INTO board_tasks (`+taskColumns+`)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)`,
		t.ID, t.ProjectID, t.Title, t.Description, string(t.Status), string(t.Priority), t.Position, t.Tags,
		dateArg(t.DueDate), t.EstimatedHours, t.TimeSpentMinutes, t.TimerStartTime, t.StartedAt,
		t.CompletedAt, t.CreatedAt, t.UpdatedAt)
	if err != nil {
		return nil, Failure("create", fmt.Errorf("create task: %w", err))
	}
	if err := tx.Commit(ctx); err != nil {
		return nil, Failure("create", err)
	}
	return t, nil
}

// UpdateTask applies p in a single UPDATE statement.
func (s *PgStore) UpdateTask(ctx context.Context, id string, p task.Patch) error {
	if err := task.ValidatePatch(p); err != nil {
		return err
	}
	query, args := buildUpdate(id, p, s.opts.now().Truncate(time.Microsecond))
	tag, err := s.pool.Exec(ctx, query, args...)
	if err != nil {
		return Failure("update", fmt.Errorf("update task %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return task.NotFound(id)
	}
	return nil
}

// DeleteTask removes the task row.
func (s *PgStore) DeleteTask(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM board_tasks WHERE id = $1`, id)
	if err != nil {
		return Failure("delete", fmt.Errorf("delete task %s: %w", id, err))
	}
	if tag.RowsAffected() == 0 {
		return task.NotFound(id)
	}
	return nil
}

// RecordTime adds minutes to the task's time spent.
func (s *PgStore) RecordTime(ctx context.Context, id string, minutes int) error {
	if err := validateMinutes(minutes); err != nil {
		return err
	}
	return s.UpdateTask(ctx, id, task.Patch{AddMinutes: minutes})
}

// buildUpdate renders p as an UPDATE with positional arguments. The field
// order matches Patch.Apply: a clear followed by a set leaves the set value.
func buildUpdate(id string, p task.Patch, now time.Time) (string, []any) {
	var (
		sets []string
		args []any
	)
	set := func(expr string, v any) {
		args = append(args, v)
		sets = append(sets, strings.ReplaceAll(expr, "?", "$"+strconv.Itoa(len(args))))
	}

	if p.Title != nil {
		set("title = ?", *p.Title)
	}
	if p.Description != nil {
		set("description = ?", *p.Description)
	}
	if p.Status != nil {
		set("status = ?", string(*p.Status))
	}
	if p.Priority != nil {
		set("priority = ?", string(*p.Priority))
	}
	if p.Position != nil {
		set("position = ?", *p.Position)
	}
	if p.Tags != nil {
		tags := *p.Tags
		if tags == nil {
			tags = []string{}
		}
		set("tags = ?", tags)
	}
	switch {
	case p.DueDate != nil:
		set("due_date = ?", dateArg(p.DueDate))
	case p.ClearDueDate:
		sets = append(sets, "due_date = NULL")
	}
	if p.EstimatedHours != nil {
		set("estimated_hours = ?", *p.EstimatedHours)
	}
	if p.AddMinutes > 0 {
		set("time_spent_minutes = time_spent_minutes + ?", p.AddMinutes)
	}
	switch {
	case p.TimerStartTime != nil:
		set("timer_start_time = ?", *p.TimerStartTime)
	case p.ClearTimer:
		sets = append(sets, "timer_start_time = NULL")
	}
	if p.StartedAt != nil {
		set("started_at = ?", *p.StartedAt)
	}
	switch {
	case p.CompletedAt != nil:
		set("completed_at = ?", *p.CompletedAt)
	case p.ClearCompletedAt:
		sets = append(sets, "completed_at = NULL")
	}
	set("updated_at = ?", now)

	args = append(args, id)
	query := "UPDATE board_tasks SET " + strings.Join(sets, ", ") +
		" WHERE id = $" + strconv.Itoa(len(args))
	return query, args
}

func dateArg(d *date.Date) *time.Time {
	if d == nil {
		return nil
	}
	t := d.Time
	return &t
}

func scanTaskRows(rows pgx.Rows) ([]*task.Task, error) {
	var tasks []*task.Task
	for rows.Next() {
		var (
			t                task.Task
			status, priority string
			due              *time.Time
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Title, &t.Description, &status, &priority,
			&t.Position, &t.Tags, &due, &t.EstimatedHours, &t.TimeSpentMinutes, &t.TimerStartTime,
			&t.StartedAt, &t.CompletedAt, &t.CreatedAt, &t.UpdatedAt); err != nil {
			return nil, err
		}
		t.Status = task.Status(status)
		t.Priority = task.Priority(priority)
		if due != nil {
			d := date.New(due.Year(), due.Month(), due.Day())
			t.DueDate = &d
		}
		if len(t.Tags) == 0 {
			t.Tags = nil
		}
		tasks = append(tasks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration: %w", err)
	}
	return tasks, nil
}

