package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/filelock"
	"github.com/antopolskiy/taskboard/internal/task"
)

const (
	lockFileName = ".lock"
	dirMode      = 0o750
)

// FileStore keeps one markdown file per task in a directory. Writers in
// any process serialize on a lock file inside that directory.
type FileStore struct {
	dir  string
	opts options
}

// NewFileStore returns a store over tasksDir. The directory is created on
// first write.
func NewFileStore(tasksDir string, opts ...Option) *FileStore {
	return &FileStore{dir: tasksDir, opts: buildOptions(opts)}
}

// Dir returns the tasks directory.
func (s *FileStore) Dir() string {
	return s.dir
}

// Paths returns the directories a watcher should observe.
func (s *FileStore) Paths() []string {
	return []string{s.dir}
}

// ListTasks reads every task file. Malformed files are skipped with a
// warning, and column positions are repaired in the returned list.
func (s *FileStore) ListTasks(_ context.Context, projectID string) ([]*task.Task, error) {
	all, err := s.readAll()
	if err != nil {
		return nil, Failure("list", err)
	}
	var out []*task.Task
	for _, t := range all {
		if inProject(t, projectID) {
			out = append(out, t)
		}
	}
	if report := task.EnsureConsistency(out); !report.OK() {
		for _, r := range report.Repairs {
			s.opts.logger.Warn("task file repaired in memory", "repair", r)
		}
	}
	sortByCreation(out)
	return out, nil
}

// CreateTask writes a new task file at the end of its column.
func (s *FileStore) CreateTask(_ context.Context, in *task.Task) (*task.Task, error) {
	t, err := prepareNew(in, s.opts.now())
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(s.dir, dirMode); err != nil {
		return nil, Failure("create", fmt.Errorf("creating tasks directory: %w", err))
	}

	err = s.locked(func() error {
		all, err := s.readAll()
		if err != nil {
			return err
		}
		var column []*task.Task
		for _, other := range all {
			if other.ID == t.ID {
				return duplicateID(t.ID)
			}
			if other.ProjectID == t.ProjectID {
				column = append(column, other)
			}
		}
		t.Position = board.EndPosition(column, t.Status, t.ID)
		t.File = filepath.Join(s.dir, task.GenerateFilename(t.ID, t.Title))
		return task.Write(t.File, t)
	})
	if err != nil {
		return nil, Failure("create", err)
	}
	return t.Clone(), nil
}

// UpdateTask rewrites the task file with p applied. A title change renames
// the file to match its new slug.
func (s *FileStore) UpdateTask(_ context.Context, id string, p task.Patch) error {
	if err := task.ValidatePatch(p); err != nil {
		return err
	}
	err := s.locked(func() error {
		t, err := s.read(id)
		if err != nil {
			return err
		}
		p.Apply(t)
		t.UpdatedAt = s.opts.now()

		path := filepath.Join(s.dir, task.GenerateFilename(t.ID, t.Title))
		if err := task.Write(path, t); err != nil {
			return err
		}
		if path != t.File {
			if err := os.Remove(t.File); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("removing old task file: %w", err)
			}
		}
		return nil
	})
	return Failure("update", err)
}

// DeleteTask removes the task file.
func (s *FileStore) DeleteTask(_ context.Context, id string) error {
	err := s.locked(func() error {
		path, err := s.find(id)
		if err != nil {
			return err
		}
		if err := os.Remove(path); err != nil {
			return fmt.Errorf("deleting task file: %w", err)
		}
		return nil
	})
	return Failure("delete", err)
}

// RecordTime adds minutes to the task's time spent.
func (s *FileStore) RecordTime(ctx context.Context, id string, minutes int) error {
	if err := validateMinutes(minutes); err != nil {
		return err
	}
	return s.UpdateTask(ctx, id, task.Patch{AddMinutes: minutes})
}

func (s *FileStore) locked(fn func() error) error {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return fn()
	}
	return filelock.With(filepath.Join(s.dir, lockFileName), fn)
}

// find locates the file for id. A missing tasks directory holds no tasks.
func (s *FileStore) find(id string) (string, error) {
	if _, err := os.Stat(s.dir); os.IsNotExist(err) {
		return "", task.NotFound(id)
	}
	return task.FindFile(s.dir, id)
}

func (s *FileStore) read(id string) (*task.Task, error) {
	path, err := s.find(id)
	if err != nil {
		return nil, err
	}
	t, err := task.Read(path)
	if err != nil {
		return nil, fmt.Errorf("reading task %s: %w", id, err)
	}
	return t, nil
}

func (s *FileStore) readAll() ([]*task.Task, error) {
	tasks, warnings, err := task.ReadAllLenient(s.dir)
	if err != nil {
		return nil, err
	}
	for _, w := range warnings {
		s.opts.logger.Warn("skipping malformed task file", "file", filepath.Base(w.File), "err", w.Err)
	}
	return tasks, nil
}
