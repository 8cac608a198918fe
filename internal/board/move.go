package board

import (
	"time"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// Destination is where a task should land.
type Destination struct {
	Status   task.Status
	Position int
}

// Command is the single update a move produces. The patch already carries
// status, position, and timestamps; timer effects are left to the caller so
// the timer owner can compute the credited minutes.
type Command struct {
	TaskID  string
	Patch   task.Patch
	Effects SideEffects
}

// Empty reports whether the command changes nothing.
func (c Command) Empty() bool {
	return c.TaskID == "" || (c.Patch.IsZero() && c.Effects.None())
}

// Rejection is a refused move. Nothing about the task changes.
type Rejection struct {
	TaskID string
	Reason *clierr.Error
}

func (r *Rejection) Error() string {
	return r.Reason.Message
}

// Unwrap exposes the coded reason to errors.As.
func (r *Rejection) Unwrap() error {
	return r.Reason
}

// Move computes the command that puts task id at dest. An unknown id or a
// destination equal to the task's current status and position yields an
// empty command. Entering the in-progress column from elsewhere is checked
// against limit and refused with a *Rejection.
func Move(tasks []*task.Task, id string, dest Destination, now time.Time, limit int) (Command, error) {
	if !dest.Status.Valid() {
		return Command{}, task.ValidateStatus(string(dest.Status))
	}
	if dest.Position < 0 {
		return Command{}, clierr.Newf(clierr.InvalidPosition, "position must be >= 0, got %d", dest.Position)
	}

	t := task.FindByID(tasks, id)
	if t == nil {
		return Command{}, nil
	}
	if t.Status == dest.Status && t.Position == dest.Position {
		return Command{}, nil
	}

	if dest.Status == task.StatusInProgress && t.Status != task.StatusInProgress &&
		!CanEnterColumn(tasks, id, dest.Status, limit) {
		return Command{}, &Rejection{
			TaskID: id,
			Reason: WIPRejection(limit, InProgressCount(tasks, id)),
		}
	}

	eff := Effects(t.Status, dest.Status)
	patch := task.Patch{
		Status:   task.Ptr(dest.Status),
		Position: task.Ptr(dest.Position),
	}
	if eff.StampStarted {
		patch.StartedAt = task.Ptr(now)
	}
	if eff.StampCompleted {
		patch.CompletedAt = task.Ptr(now)
	}
	return Command{TaskID: id, Patch: patch, Effects: eff}, nil
}

// EndPosition returns the position that places a task at the end of
// status. If id already sits last in that column its own position is kept.
func EndPosition(tasks []*task.Task, status task.Status, id string) int {
	maxPos := -1
	var self *task.Task
	for _, t := range tasks {
		if t.Status != status {
			continue
		}
		if t.ID == id {
			self = t
			continue
		}
		if t.Position > maxPos {
			maxPos = t.Position
		}
	}
	if self != nil && self.Position > maxPos {
		return self.Position
	}
	return maxPos + 1
}

// Reindex resolves a drop of task id at index within status (counted over
// the column without the task) into a destination. When the neighbours
// leave no gap the column is renumbered and the renumbering commands for
// the other tasks are returned as well.
func Reindex(tasks []*task.Task, id string, status task.Status, index int) (Destination, []Command) {
	var self *task.Task
	var col []*task.Task
	for _, t := range tasks {
		switch {
		case t.ID == id:
			self = t
		case t.Status == status:
			col = append(col, t)
		}
	}
	SortColumn(col)
	index = max(0, min(index, len(col)))

	if self != nil && self.Status == status && currentIndex(tasks, self) == index {
		return Destination{Status: status, Position: self.Position}, nil
	}

	if pos, ok := gapPosition(col, index); ok {
		return Destination{Status: status, Position: pos}, nil
	}

	var renumber []Command
	next := 0
	for i, t := range col {
		if i == index {
			next++
		}
		if t.Position != next {
			renumber = append(renumber, Command{
				TaskID: t.ID,
				Patch:  task.Patch{Position: task.Ptr(next)},
			})
		}
		next++
	}
	return Destination{Status: status, Position: index}, renumber
}

// gapPosition finds a free position between the neighbours around index.
func gapPosition(col []*task.Task, index int) (int, bool) {
	switch {
	case len(col) == 0:
		return 0, true
	case index == len(col):
		return col[len(col)-1].Position + 1, true
	case index == 0:
		if p := col[0].Position; p > 0 {
			return p - 1, true
		}
		return 0, false
	}
	prev, next := col[index-1].Position, col[index].Position
	if next-prev >= 2 {
		return prev + (next-prev)/2, true
	}
	return 0, false
}

// currentIndex returns t's display index within its column.
func currentIndex(tasks []*task.Task, t *task.Task) int {
	col := Group(tasks)[t.Status]
	for i, c := range col {
		if c.ID == t.ID {
			return i
		}
	}
	return -1
}
