package board

import (
	"fmt"
	"time"

	"github.com/antopolskiy/taskboard/internal/task"
)

var baseTime = time.Date(2025, 6, 1, 9, 0, 0, 0, time.UTC)

// mk builds a task created n minutes after baseTime.
func mk(id string, status task.Status, pos int, n int) *task.Task {
	return &task.Task{
		ID:        id,
		Title:     "Task " + id,
		Status:    status,
		Priority:  task.PriorityMedium,
		Position:  pos,
		CreatedAt: baseTime.Add(time.Duration(n) * time.Minute),
	}
}

func ids(tasks []*task.Task) []string {
	out := make([]string, len(tasks))
	for i, t := range tasks {
		out[i] = t.ID
	}
	return out
}

func sameIDs(got []*task.Task, want ...string) bool {
	return fmt.Sprint(ids(got)) == fmt.Sprint(want)
}
