// Package board provides board-level operations on task collections:
// filtering and sorting, column grouping, WIP enforcement, and the move
// engine that turns a drop or keypress into a single task patch.
package board

import (
	"fmt"
	"sort"
	"strings"

	"github.com/antopolskiy/taskboard/internal/task"
)

// SortKey selects the field a projection is ordered by.
type SortKey string

// Supported sort keys.
const (
	SortCreatedAt SortKey = "created_at"
	SortPriority  SortKey = "priority"
	SortDueDate   SortKey = "due_date"
)

// Order is the sort direction.
type Order string

// Sort directions.
const (
	Asc  Order = "asc"
	Desc Order = "desc"
)

// Criteria defines which tasks a projection keeps and how they are ordered.
// Zero values mean "no filter" and "created_at ascending".
type Criteria struct {
	Search   string        // case-insensitive substring match across title and description
	Priority task.Priority // empty = any priority
	Status   task.Status   // empty = any status
	SortKey  SortKey
	Order    Order
}

// ParseSortKey converts user input to a SortKey.
func ParseSortKey(s string) (SortKey, error) {
	switch k := SortKey(strings.ToLower(strings.TrimSpace(s))); k {
	case "", SortCreatedAt:
		return SortCreatedAt, nil
	case SortPriority, SortDueDate:
		return k, nil
	case "created", "createdat":
		return SortCreatedAt, nil
	case "due", "duedate":
		return SortDueDate, nil
	}
	return "", fmt.Errorf("unknown sort key %q (want created_at, priority or due_date)", s)
}

// ParseOrder converts user input to an Order.
func ParseOrder(s string) (Order, error) {
	switch o := Order(strings.ToLower(strings.TrimSpace(s))); o {
	case "", Asc:
		return Asc, nil
	case Desc:
		return Desc, nil
	}
	return "", fmt.Errorf("unknown sort order %q (want asc or desc)", s)
}

// Project filters tasks by c and returns them sorted. The input slice is
// never reordered.
func Project(tasks []*task.Task, c Criteria) []*task.Task {
	out := Filter(tasks, c)
	Sort(out, c.SortKey, c.Order)
	return out
}

// Filter returns tasks matching all criteria (AND logic), in input order.
func Filter(tasks []*task.Task, c Criteria) []*task.Task {
	result := make([]*task.Task, 0, len(tasks))
	for _, t := range tasks {
		if matches(t, c) {
			result = append(result, t)
		}
	}
	return result
}

func matches(t *task.Task, c Criteria) bool {
	if c.Status != "" && t.Status != c.Status {
		return false
	}
	if c.Priority != "" && t.Priority != c.Priority {
		return false
	}
	if c.Search != "" && !matchesSearch(t, c.Search) {
		return false
	}
	return true
}

// matchesSearch performs case-insensitive substring matching across title and description.
func matchesSearch(t *task.Task, query string) bool {
	q := strings.ToLower(query)
	return strings.Contains(strings.ToLower(t.Title), q) ||
		strings.Contains(strings.ToLower(t.Description), q)
}

// Sort orders tasks in place by key. Ties fall back to CreatedAt ascending
// regardless of order, and tasks without a due date sort last for
// SortDueDate in both directions.
func Sort(tasks []*task.Task, key SortKey, order Order) {
	desc := order == Desc
	sort.SliceStable(tasks, func(i, j int) bool {
		c := compareKey(tasks[i], tasks[j], key)
		if c != 0 {
			if desc && !nilDueOrdering(tasks[i], tasks[j], key) {
				return c > 0
			}
			return c < 0
		}
		return tasks[i].CreatedAt.Before(tasks[j].CreatedAt)
	})
}

// compareKey returns -1, 0 or 1 comparing a and b on key in ascending order.
func compareKey(a, b *task.Task, key SortKey) int {
	switch key {
	case SortPriority:
		return cmpInt(a.Priority.Rank(), b.Priority.Rank())
	case SortDueDate:
		return compareDue(a, b)
	default:
		return cmpTime(a, b)
	}
}

// compareDue sorts missing due dates after present ones.
func compareDue(a, b *task.Task) int {
	switch {
	case a.DueDate == nil && b.DueDate == nil:
		return 0
	case a.DueDate == nil:
		return 1
	case b.DueDate == nil:
		return -1
	case a.DueDate.Before(*b.DueDate):
		return -1
	case b.DueDate.Before(*a.DueDate):
		return 1
	}
	return 0
}

// nilDueOrdering reports whether the comparison of a and b was decided by
// one of them lacking a due date. Such pairs keep their ascending order.
func nilDueOrdering(a, b *task.Task, key SortKey) bool {
	return key == SortDueDate && (a.DueDate == nil) != (b.DueDate == nil)
}

func cmpTime(a, b *task.Task) int {
	switch {
	case a.CreatedAt.Before(b.CreatedAt):
		return -1
	case b.CreatedAt.Before(a.CreatedAt):
		return 1
	}
	return 0
}

func cmpInt(a, b int) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}
