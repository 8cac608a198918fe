package task

import (
	"fmt"
	"sort"
)

// ConsistencyReport summarizes repairs made to a task list.
type ConsistencyReport struct {
	Repairs []string
}

// OK reports whether nothing needed repair.
func (r ConsistencyReport) OK() bool {
	return len(r.Repairs) == 0
}

// EnsureConsistency repairs invariant violations in place: unknown enum
// values, negative time, and duplicate positions within a column. The
// relative order of tasks inside each column is preserved.
func EnsureConsistency(tasks []*Task) ConsistencyReport {
	var report ConsistencyReport

	for _, t := range tasks {
		report.Repairs = append(report.Repairs, repairFields(t)...)
	}
	report.Repairs = append(report.Repairs, repairPositions(tasks)...)
	return report
}

func repairFields(t *Task) []string {
	var repairs []string
	if !t.Status.Valid() {
		repairs = append(repairs,
			fmt.Sprintf("task %s: unknown status %q reset to %s", t.ID, t.Status, StatusTodo))
		t.Status = StatusTodo
	}
	if !t.Priority.Valid() {
		repairs = append(repairs,
			fmt.Sprintf("task %s: unknown priority %q reset to %s", t.ID, t.Priority, PriorityMedium))
		t.Priority = PriorityMedium
	}
	if t.TimeSpentMinutes < 0 {
		repairs = append(repairs,
			fmt.Sprintf("task %s: negative time_spent_minutes %d reset to 0", t.ID, t.TimeSpentMinutes))
		t.TimeSpentMinutes = 0
	}
	if t.Position < 0 {
		repairs = append(repairs,
			fmt.Sprintf("task %s: negative position %d reset to 0", t.ID, t.Position))
		t.Position = 0
	}
	return repairs
}

// repairPositions renumbers any column that contains duplicate positions.
func repairPositions(tasks []*Task) []string {
	byStatus := make(map[Status][]*Task)
	for _, t := range tasks {
		byStatus[t.Status] = append(byStatus[t.Status], t)
	}

	var repairs []string
	for _, st := range Statuses {
		col := byStatus[st]
		if !hasDuplicatePositions(col) {
			continue
		}
		sortColumn(col)
		for i, t := range col {
			t.Position = i
		}
		repairs = append(repairs,
			fmt.Sprintf("renumbered %d tasks in %s to remove duplicate positions", len(col), st))
	}
	return repairs
}

func hasDuplicatePositions(col []*Task) bool {
	seen := make(map[int]bool, len(col))
	for _, t := range col {
		if seen[t.Position] {
			return true
		}
		seen[t.Position] = true
	}
	return false
}

func sortColumn(col []*Task) {
	sort.SliceStable(col, func(i, j int) bool {
		if col[i].Position != col[j].Position {
			return col[i].Position < col[j].Position
		}
		if !col[i].CreatedAt.Equal(col[j].CreatedAt) {
			return col[i].CreatedAt.Before(col[j].CreatedAt)
		}
		return col[i].ID < col[j].ID
	})
}
