package board

import (
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// InProgressCount counts in-progress tasks other than exclude.
func InProgressCount(tasks []*task.Task, exclude string) int {
	n := 0
	for _, t := range tasks {
		if t.ID != exclude && t.Status == task.StatusInProgress {
			n++
		}
	}
	return n
}

// CanEnterColumn reports whether task id may move into target without
// exceeding limit. Only the in-progress column is constrained, and id
// itself is never counted. A limit of zero or less is unlimited.
func CanEnterColumn(tasks []*task.Task, id string, target task.Status, limit int) bool {
	if target != task.StatusInProgress || limit <= 0 {
		return true
	}
	return InProgressCount(tasks, id) < limit
}

// WIPRejection builds the user-facing error for a move refused by the limit.
func WIPRejection(limit, current int) *clierr.Error {
	return task.ValidateWIPLimit(limit, current)
}

// Remaining returns how many more tasks may enter the in-progress column,
// or -1 when unlimited.
func Remaining(tasks []*task.Task, limit int) int {
	if limit <= 0 {
		return -1
	}
	n := limit - InProgressCount(tasks, "")
	if n < 0 {
		return 0
	}
	return n
}
