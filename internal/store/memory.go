package store

import (
	"context"
	"sort"
	"sync"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/task"
)

// Memory is an in-process Store. It is safe for concurrent use.
type Memory struct {
	opts options

	mu    sync.Mutex
	tasks map[string]*task.Task
}

// NewMemory returns an empty memory store.
func NewMemory(opts ...Option) *Memory {
	return &Memory{opts: buildOptions(opts), tasks: make(map[string]*task.Task)}
}

// Load replaces the contents with copies of tasks, as they are.
func (m *Memory) Load(tasks []*task.Task) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.tasks = make(map[string]*task.Task, len(tasks))
	for _, t := range tasks {
		m.tasks[t.ID] = t.Clone()
	}
}

// ListTasks returns copies of the project's tasks ordered by creation.
func (m *Memory) ListTasks(_ context.Context, projectID string) ([]*task.Task, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*task.Task, 0, len(m.tasks))
	for _, t := range m.tasks {
		if inProject(t, projectID) {
			out = append(out, t.Clone())
		}
	}
	sortByCreation(out)
	return out, nil
}

// CreateTask stores a new task at the end of its column.
func (m *Memory) CreateTask(_ context.Context, in *task.Task) (*task.Task, error) {
	t, err := prepareNew(in, m.opts.now())
	if err != nil {
		return nil, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[t.ID]; ok {
		return nil, duplicateID(t.ID)
	}
	t.Position = board.EndPosition(m.projectLocked(t.ProjectID), t.Status, t.ID)
	m.tasks[t.ID] = t
	return t.Clone(), nil
}

// UpdateTask applies p to the task.
func (m *Memory) UpdateTask(_ context.Context, id string, p task.Patch) error {
	if err := task.ValidatePatch(p); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	t, ok := m.tasks[id]
	if !ok {
		return task.NotFound(id)
	}
	p.Apply(t)
	t.UpdatedAt = m.opts.now()
	return nil
}

// DeleteTask removes the task.
func (m *Memory) DeleteTask(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.tasks[id]; !ok {
		return task.NotFound(id)
	}
	delete(m.tasks, id)
	return nil
}

// RecordTime adds minutes to the task's time spent.
func (m *Memory) RecordTime(ctx context.Context, id string, minutes int) error {
	if err := validateMinutes(minutes); err != nil {
		return err
	}
	return m.UpdateTask(ctx, id, task.Patch{AddMinutes: minutes})
}

func (m *Memory) projectLocked(projectID string) []*task.Task {
	var out []*task.Task
	for _, t := range m.tasks {
		if t.ProjectID == projectID {
			out = append(out, t)
		}
	}
	return out
}

func sortByCreation(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		if !tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
		}
		return tasks[i].ID < tasks[j].ID
	})
}
