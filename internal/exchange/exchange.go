// Package exchange exports a board to a portable JSON or YAML document and
// imports such documents back as new tasks.
package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

// Version is the document format version written by Export.
const Version = 1

// Format is a document encoding.
type Format string

// Supported formats.
const (
	FormatJSON Format = "json"
	FormatYAML Format = "yaml"
)

// ParseFormat accepts json, yaml, or yml.
func ParseFormat(s string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "json":
		return FormatJSON, nil
	case "yaml", "yml":
		return FormatYAML, nil
	}
	return "", clierr.Newf(clierr.InvalidInput, "unknown format %q (want json or yaml)", s)
}

// FormatOf picks the format from a file extension, defaulting to JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatJSON
	}
}

// Document is the exported board.
type Document struct {
	Version    int       `json:"version" yaml:"version"`
	ExportedAt time.Time `json:"exported_at" yaml:"exported_at"`
	Tasks      []Record  `json:"tasks" yaml:"tasks"`
}

// Record is one exported task.
type Record struct {
	Title            string     `json:"title" yaml:"title"`
	Description      string     `json:"description,omitempty" yaml:"description,omitempty"`
	Status           string     `json:"status" yaml:"status"`
	Priority         string     `json:"priority" yaml:"priority"`
	Tags             []string   `json:"tags,omitempty" yaml:"tags,omitempty"`
	EstimatedHours   float64    `json:"estimated_hours" yaml:"estimated_hours"`
	TimeSpentMinutes int        `json:"time_spent_minutes" yaml:"time_spent_minutes"`
	CreatedAt        time.Time  `json:"created_at" yaml:"created_at"`
	CompletedAt      *time.Time `json:"completed_at,omitempty" yaml:"completed_at,omitempty"`
	DueDate          *date.Date `json:"due_date,omitempty" yaml:"due_date,omitempty"`
}

// Export builds a document from tasks in board order: column by column,
// then by position, so an import recreates the same column order.
func Export(tasks []*task.Task, now time.Time) Document {
	doc := Document{Version: Version, ExportedAt: now.UTC(), Tasks: []Record{}}
	for _, col := range board.Group(tasks).Ordered() {
		for _, t := range col.Tasks {
			doc.Tasks = append(doc.Tasks, Record{
				Title:            t.Title,
				Description:      t.Description,
				Status:           string(t.Status),
				Priority:         string(t.Priority),
				Tags:             t.Tags,
				EstimatedHours:   t.EstimatedHours,
				TimeSpentMinutes: t.TimeSpentMinutes,
				CreatedAt:        t.CreatedAt,
				CompletedAt:      t.CompletedAt,
				DueDate:          t.DueDate,
			})
		}
	}
	return doc
}

// Encode writes doc to w.
func Encode(w io.Writer, doc Document, f Format) error {
	switch f {
	case FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding yaml: %w", err)
		}
		return enc.Close()
	default:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(doc); err != nil {
			return fmt.Errorf("encoding json: %w", err)
		}
		return nil
	}
}

// looseDocument accepts documents from older exports and other tools.
type looseDocument struct {
	Version int           `json:"version" yaml:"version"`
	Tasks   []task.Record `json:"tasks" yaml:"tasks"`
}

// Decode reads a document and normalizes each record to a task. Records
// may use camelCase keys and status or priority aliases. IDs are dropped
// so imports never collide with existing tasks.
func Decode(r io.Reader, f Format) ([]*task.Task, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading document: %w", err)
	}

	var doc looseDocument
	switch f {
	case FormatYAML:
		err = yaml.Unmarshal(data, &doc)
	default:
		err = json.Unmarshal(data, &doc)
	}
	if err != nil {
		return nil, clierr.Newf(clierr.InvalidInput, "invalid %s document: %v", f, err)
	}
	if doc.Version > Version {
		return nil, clierr.Newf(clierr.InvalidInput,
			"document version %d is newer than supported version %d", doc.Version, Version)
	}

	tasks := make([]*task.Task, 0, len(doc.Tasks))
	for i, rec := range doc.Tasks {
		t, err := task.Normalize(rec)
		if err != nil {
			return nil, fmt.Errorf("task %d: %w", i+1, err)
		}
		if strings.TrimSpace(t.Title) == "" {
			return nil, clierr.Newf(clierr.InvalidInput, "task %d: missing title", i+1)
		}
		t.ID = ""
		t.TimerStartTime = nil
		tasks = append(tasks, t)
	}
	return tasks, nil
}

// Creator creates a task with the board's entry rules applied. It is
// satisfied by *engine.Orchestrator.
type Creator interface {
	Create(ctx context.Context, t *task.Task) (*task.Task, error)
}

// Result lists what Import created. Demoted holds the tasks that were
// exported as in progress but landed in To-Do because the WIP limit was
// reached.
type Result struct {
	Created []*task.Task
	Demoted []*task.Task
}

// Import creates tasks in order through c. It stops at the first failure
// and returns the tasks created so far.
func Import(ctx context.Context, c Creator, tasks []*task.Task) (Result, error) {
	res := Result{Created: make([]*task.Task, 0, len(tasks))}
	for i, t := range tasks {
		in := t.Clone()
		in.ProjectID = ""
		out, err := c.Create(ctx, in)
		if err != nil && in.Status == task.StatusInProgress && clierr.HasCode(err, clierr.WIPLimitExceeded) {
			in.Status = task.StatusTodo
			if out, err = c.Create(ctx, in); err == nil {
				res.Demoted = append(res.Demoted, out)
			}
		}
		if err != nil {
			return res, fmt.Errorf("importing task %d (%s): %w", i+1, t.Title, err)
		}
		res.Created = append(res.Created, out)
	}
	return res, nil
}
