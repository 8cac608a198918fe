package board

import "github.com/antopolskiy/taskboard/internal/task"

// SideEffects lists what a status change does besides setting the status.
type SideEffects struct {
	StampStarted   bool `json:"stamp_started,omitempty"`
	StartTimer     bool `json:"start_timer,omitempty"`
	StopTimer      bool `json:"stop_timer,omitempty"`
	StampCompleted bool `json:"stamp_completed,omitempty"`
}

// None reports whether no side effect applies.
func (e SideEffects) None() bool {
	return e == SideEffects{}
}

type transition struct {
	from, to task.Status
}

// transitions enumerates all nine (from, to) pairs. Entering in-progress
// always restamps StartedAt.
var transitions = map[transition]SideEffects{
	{task.StatusTodo, task.StatusTodo}:             {},
	{task.StatusTodo, task.StatusInProgress}:       {StampStarted: true, StartTimer: true},
	{task.StatusTodo, task.StatusCompleted}:        {StampCompleted: true},
	{task.StatusInProgress, task.StatusTodo}:       {StopTimer: true},
	{task.StatusInProgress, task.StatusInProgress}: {},
	{task.StatusInProgress, task.StatusCompleted}:  {StopTimer: true, StampCompleted: true},
	{task.StatusCompleted, task.StatusTodo}:        {},
	{task.StatusCompleted, task.StatusInProgress}:  {StampStarted: true, StartTimer: true},
	{task.StatusCompleted, task.StatusCompleted}:   {},
}

// Effects returns the side effects of moving a task from one status to
// another. Unknown statuses yield no effects.
func Effects(from, to task.Status) SideEffects {
	return transitions[transition{from, to}]
}

// Transitions returns every (from, to) status pair in board order.
func Transitions() [][2]task.Status {
	out := make([][2]task.Status, 0, len(task.Statuses)*len(task.Statuses))
	for _, from := range task.Statuses {
		for _, to := range task.Statuses {
			out = append(out, [2]task.Status{from, to})
		}
	}
	return out
}
