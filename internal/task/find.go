package task

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ErrNotFound indicates a task was not found.
var ErrNotFound = errors.New("task not found")

// ReadWarning records a task file that could not be parsed.
type ReadWarning struct {
	File string
	Err  error
}

// FindByID returns the task with the given ID from tasks, or nil.
func FindByID(tasks []*Task, id string) *Task {
	for _, t := range tasks {
		if t.ID == id {
			return t
		}
	}
	return nil
}

// FindFile scans the tasks directory for the file holding the given ID.
func FindFile(tasksDir, id string) (string, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		return "", fmt.Errorf("reading tasks directory: %w", err)
	}

	prefix := id + "-"
	for _, entry := range entries {
		name := entry.Name()
		if !entry.IsDir() && strings.HasPrefix(name, prefix) && filepath.Ext(name) == ".md" {
			return filepath.Join(tasksDir, name), nil
		}
	}

	return "", NotFound(id)
}

// ReadAll reads all task files from the given directory and fails on the
// first malformed one.
func ReadAll(tasksDir string) ([]*Task, error) {
	tasks, warnings, err := ReadAllLenient(tasksDir)
	if err != nil {
		return nil, err
	}
	if len(warnings) > 0 {
		w := warnings[0]
		return nil, fmt.Errorf("reading %s: %w", filepath.Base(w.File), w.Err)
	}
	return tasks, nil
}

// ReadAllLenient reads task files, skipping malformed ones and reporting
// them as warnings.
func ReadAllLenient(tasksDir string) ([]*Task, []ReadWarning, error) {
	entries, err := os.ReadDir(tasksDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil, nil
		}
		return nil, nil, fmt.Errorf("reading tasks directory: %w", err)
	}

	var (
		tasks    []*Task
		warnings []ReadWarning
	)
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".md" {
			continue
		}

		path := filepath.Join(tasksDir, entry.Name())
		t, err := Read(path)
		if err != nil {
			warnings = append(warnings, ReadWarning{File: path, Err: err})
			continue
		}
		tasks = append(tasks, t)
	}

	return tasks, warnings, nil
}
