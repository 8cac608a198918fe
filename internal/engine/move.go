package engine

import (
	"context"
	"errors"
	"fmt"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/task"
)

// placement decides where a task lands given the projected task list,
// plus any renumbering the landing needs.
type placement func(view []*task.Task) (board.Destination, []board.Command)

// Move puts task id at dest. A WIP violation or a busy task is refused
// with a notice and returned as an error; a stale reference refreshes the
// board.
func (o *Orchestrator) Move(ctx context.Context, id string, dest board.Destination) error {
	return o.move(ctx, id, func([]*task.Task) (board.Destination, []board.Command) {
		return dest, nil
	}, true)
}

// MoveToColumn puts task id at the end of column status.
func (o *Orchestrator) MoveToColumn(ctx context.Context, id string, status task.Status) error {
	return o.move(ctx, id, endOf(id, status), true)
}

// OnReorder handles a drop of task id at index within column, counted over
// the visible tasks of that column without the dragged task. It is the
// single callback for both reordering and column changes.
func (o *Orchestrator) OnReorder(ctx context.Context, id string, column task.Status, index int) error {
	if o.Selecting() {
		o.logger.Debug("drag ignored in selection mode", "task_id", id)
		return nil
	}
	return o.move(ctx, id, func(view []*task.Task) (board.Destination, []board.Command) {
		return board.Reindex(view, id, column, o.columnIndexLocked(view, id, column, index))
	}, true)
}

func endOf(id string, status task.Status) placement {
	return func(view []*task.Task) (board.Destination, []board.Command) {
		return board.Destination{Status: status, Position: board.EndPosition(view, status, id)}, nil
	}
}

// columnIndexLocked translates an index among the visible tasks of column
// into an index over the whole column, so hidden tasks keep their order.
func (o *Orchestrator) columnIndexLocked(view []*task.Task, id string, column task.Status, index int) int {
	full := without(board.Group(view)[column], id)
	visible := without(board.Group(board.Project(view, o.criteria))[column], id)
	if index < 0 {
		index = 0
	}
	if len(visible) == 0 || len(visible) == len(full) {
		return index
	}
	if index < len(visible) {
		return indexOf(full, visible[index].ID)
	}
	return indexOf(full, visible[len(visible)-1].ID) + 1
}

func (o *Orchestrator) move(ctx context.Context, id string, place placement, notify bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()

	cmds, err := o.planLocked(ctx, id, place, notify)
	if err != nil || len(cmds) == 0 {
		return err
	}
	return o.commitLocked(ctx, cmds, notify)
}

// planLocked runs the move engine against the projected board.
func (o *Orchestrator) planLocked(ctx context.Context, id string, place placement, notify bool) ([]board.Command, error) {
	if err := o.busyLocked(ctx, id, notify); err != nil {
		return nil, err
	}
	view := o.projectedLocked()
	if task.FindByID(view, id) == nil {
		o.logger.Warn("move of unknown task ignored", "task_id", id)
		return nil, nil
	}

	dest, extra := place(view)
	for _, c := range extra {
		if err := o.busyLocked(ctx, c.TaskID, notify); err != nil {
			return nil, err
		}
	}

	cmd, err := board.Move(view, id, dest, o.now(), o.limit)
	if err != nil {
		var rej *board.Rejection
		switch {
		case errors.As(err, &rej) && notify:
			o.rejectLocked(ctx, id, rej.Reason)
		case errors.As(err, &rej):
			o.metrics.Rejections.Add(ctx, 1)
		default:
			o.logger.Warn("invalid move ignored", "task_id", id, "err", err)
		}
		return nil, err
	}

	var cmds []board.Command
	if !cmd.Empty() {
		cmds = append(cmds, cmd)
	}
	return append(cmds, extra...), nil
}

func (o *Orchestrator) busyLocked(ctx context.Context, id string, notify bool) error {
	if _, ok := o.pending[id]; !ok {
		return nil
	}
	reason := task.ValidateBusy(id)
	if notify {
		o.rejectLocked(ctx, id, reason)
	} else {
		o.metrics.Rejections.Add(ctx, 1)
	}
	return reason
}

// commitLocked applies cmds in order. The first command carries the
// gesture's timer effects, merged into its patch so the store sees one
// update per task. The lock is released while the store works.
func (o *Orchestrator) commitLocked(ctx context.Context, cmds []board.Command, notify bool) error {
	before := o.projectedLocked()
	patches := make([]task.Patch, len(cmds))
	var (
		began   bool
		minutes int
	)
	for i, c := range cmds {
		p := c.Patch
		if c.Effects.StopTimer {
			if stop, m, ok := o.timers.End(c.TaskID); ok {
				p = p.Merge(stop)
				minutes = m
			}
		}
		if c.Effects.StartTimer {
			if start, ok := o.timers.Begin(c.TaskID); ok {
				p = p.Merge(start)
				began = true
			}
		}
		patches[i] = p
		o.pending[c.TaskID] = p
	}

	o.mu.Unlock()
	errs := make([]error, len(cmds))
	for i, c := range cmds {
		errs[i] = o.store.UpdateTask(ctx, c.TaskID, patches[i])
	}
	o.mu.Lock()

	for _, c := range cmds {
		delete(o.pending, c.TaskID)
	}

	primary := cmds[0]
	if err := errs[0]; err != nil {
		if began {
			o.timers.Release(primary.TaskID)
		}
		if notify {
			o.failLocked(primary.TaskID, err)
		}
	} else {
		o.timers.Credited(ctx, primary.TaskID, minutes)
		if primary.Patch.Status != nil {
			o.metrics.Moves.Add(ctx, 1)
			o.logMove(before, primary)
		}
	}
	for i, err := range errs[1:] {
		if err != nil && notify {
			o.failLocked(cmds[i+1].TaskID, err)
		}
	}

	if rerr := o.refreshLocked(ctx); rerr != nil {
		o.logger.Warn("refresh after move failed", "err", rerr)
	}
	return errors.Join(errs...)
}

func (o *Orchestrator) logMove(before []*task.Task, c board.Command) {
	from := task.FindByID(before, c.TaskID)
	if from == nil {
		return
	}
	to := *c.Patch.Status
	action, detail := "move", fmt.Sprintf("%s -> %s", from.Status, to)
	if from.Status == to {
		action, detail = "reorder", fmt.Sprintf("%s position %d -> %d", to, from.Position, *c.Patch.Position)
	}
	o.logger.Debug("task "+action, "task_id", c.TaskID, "detail", detail)
	board.LogMutation(o.logDir, action, c.TaskID, detail)
}

func without(col []*task.Task, id string) []*task.Task {
	out := make([]*task.Task, 0, len(col))
	for _, t := range col {
		if t.ID != id {
			out = append(out, t)
		}
	}
	return out
}

func indexOf(col []*task.Task, id string) int {
	for i, t := range col {
		if t.ID == id {
			return i
		}
	}
	return len(col)
}

