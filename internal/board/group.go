package board

import (
	"sort"

	"github.com/antopolskiy/taskboard/internal/task"
)

// Columns maps every status to its tasks in display order.
type Columns map[task.Status][]*task.Task

// Column is one status column with its ordered tasks.
type Column struct {
	Status task.Status
	Tasks  []*task.Task
}

// Group partitions tasks by status and orders each partition by Position.
// Every known status has an entry, empty or not. Tasks with an unknown
// status are dropped.
func Group(tasks []*task.Task) Columns {
	cols := make(Columns, len(task.Statuses))
	for _, s := range task.Statuses {
		cols[s] = []*task.Task{}
	}
	for _, t := range tasks {
		if _, ok := cols[t.Status]; ok {
			cols[t.Status] = append(cols[t.Status], t)
		}
	}
	for _, s := range task.Statuses {
		SortColumn(cols[s])
	}
	return cols
}

// SortColumn orders a single column in place: Position, then CreatedAt,
// then ID, so equal positions still render in a fixed order.
func SortColumn(tasks []*task.Task) {
	sort.SliceStable(tasks, func(i, j int) bool {
		a, b := tasks[i], tasks[j]
		if a.Position != b.Position {
			return a.Position < b.Position
		}
		if !a.CreatedAt.Equal(b.CreatedAt) {
			return a.CreatedAt.Before(b.CreatedAt)
		}
		return a.ID < b.ID
	})
}

// Ordered returns the columns in board order.
func (c Columns) Ordered() []Column {
	out := make([]Column, 0, len(task.Statuses))
	for _, s := range task.Statuses {
		out = append(out, Column{Status: s, Tasks: c[s]})
	}
	return out
}

// Visible flattens the columns in board order.
func (c Columns) Visible() []*task.Task {
	var out []*task.Task
	for _, s := range task.Statuses {
		out = append(out, c[s]...)
	}
	return out
}

// Len returns the total number of grouped tasks.
func (c Columns) Len() int {
	n := 0
	for _, ts := range c {
		n += len(ts)
	}
	return n
}

// CountByStatus returns the number of tasks in each status.
func CountByStatus(tasks []*task.Task) map[task.Status]int {
	counts := make(map[task.Status]int, len(task.Statuses))
	for _, t := range tasks {
		counts[t.Status]++
	}
	return counts
}
