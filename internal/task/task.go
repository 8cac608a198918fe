// Package task defines the task record, its field patches, and the
// markdown-with-frontmatter file format used by the file store.
package task

import (
	"time"

	"github.com/antopolskiy/taskboard/internal/date"
)

// Status is the board column a task belongs to.
type Status string

// The three board columns, in display order.
const (
	StatusTodo       Status = "todo"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Statuses lists every status in column order.
var Statuses = []Status{StatusTodo, StatusInProgress, StatusCompleted}

// Valid reports whether s is one of the known statuses.
func (s Status) Valid() bool {
	return s.Index() >= 0
}

// Index returns the column index of s, or -1.
func (s Status) Index() int {
	for i, st := range Statuses {
		if st == s {
			return i
		}
	}
	return -1
}

// Label returns the human-readable column title.
func (s Status) Label() string {
	switch s {
	case StatusTodo:
		return "To-Do"
	case StatusInProgress:
		return "In Progress"
	case StatusCompleted:
		return "Completed"
	default:
		return string(s)
	}
}

// Priority ranks how urgent a task is.
type Priority string

// Known priorities, lowest first.
const (
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every priority from lowest to highest.
var Priorities = []Priority{PriorityLow, PriorityMedium, PriorityHigh}

// Rank returns 0 for low through 2 for high, or -1 if unknown.
func (p Priority) Rank() int {
	for i, pr := range Priorities {
		if pr == p {
			return i
		}
	}
	return -1
}

// Valid reports whether p is a known priority.
func (p Priority) Valid() bool {
	return p.Rank() >= 0
}

// Task is a single card on the board.
type Task struct {
	ID               string     `yaml:"id" json:"id"`
	ProjectID        string     `yaml:"project_id" json:"project_id"`
	Title            string     `yaml:"title" json:"title"`
	Description      string     `yaml:"-" json:"description,omitempty"`
	Status           Status     `yaml:"status" json:"status"`
	Priority         Priority   `yaml:"priority" json:"priority"`
	Position         int        `yaml:"position" json:"position"`
	Tags             []string   `yaml:"tags,omitempty" json:"tags,omitempty"`
	DueDate          *date.Date `yaml:"due_date,omitempty" json:"due_date,omitempty"`
	EstimatedHours   float64    `yaml:"estimated_hours,omitempty" json:"estimated_hours,omitempty"`
	TimeSpentMinutes int        `yaml:"time_spent_minutes" json:"time_spent_minutes"`
	TimerStartTime   *time.Time `yaml:"timer_start_time,omitempty" json:"timer_start_time,omitempty"`
	StartedAt        *time.Time `yaml:"started_at,omitempty" json:"started_at,omitempty"`
	CompletedAt      *time.Time `yaml:"completed_at,omitempty" json:"completed_at,omitempty"`
	CreatedAt        time.Time  `yaml:"created_at" json:"created_at"`
	UpdatedAt        time.Time  `yaml:"updated_at" json:"updated_at"`

	// File is the path the task was read from (file store only).
	File string `yaml:"-" json:"-"`
}

// TimerRunning reports whether the task is currently accruing time.
func (t *Task) TimerRunning() bool {
	return t.TimerStartTime != nil
}

// Clone returns a deep copy of t.
func (t *Task) Clone() *Task {
	c := *t
	if t.Tags != nil {
		c.Tags = append([]string(nil), t.Tags...)
	}
	c.DueDate = clonePtr(t.DueDate)
	c.TimerStartTime = clonePtr(t.TimerStartTime)
	c.StartedAt = clonePtr(t.StartedAt)
	c.CompletedAt = clonePtr(t.CompletedAt)
	return &c
}

// CloneAll deep-copies a task list.
func CloneAll(tasks []*Task) []*Task {
	out := make([]*Task, len(tasks))
	for i, t := range tasks {
		out[i] = t.Clone()
	}
	return out
}

func clonePtr[T any](p *T) *T {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}
