package engine

import (
	"context"
	"fmt"
	"strings"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// Create adds a task to the project. A task created straight into a
// column other than To-Do gets that column's entry effects: the WIP check,
// timestamps, and a running timer for In Progress.
func (o *Orchestrator) Create(ctx context.Context, in *task.Task) (*task.Task, error) {
	o.mu.Lock()
	defer o.mu.Unlock()

	t := in.Clone()
	if t.ProjectID == "" {
		t.ProjectID = o.project
	}
	if t.Status == "" {
		t.Status = task.StatusTodo
	}
	if !t.Status.Valid() {
		return nil, task.ValidateStatus(string(t.Status))
	}
	view := o.projectedLocked()
	if !board.CanEnterColumn(view, "", t.Status, o.limit) {
		reason := board.WIPRejection(o.limit, board.InProgressCount(view, ""))
		o.rejectLocked(ctx, "", reason)
		return nil, &board.Rejection{Reason: reason}
	}
	now := o.now()
	eff := board.Effects(task.StatusTodo, t.Status)
	if eff.StampStarted && t.StartedAt == nil {
		t.StartedAt = &now
	}
	if eff.StartTimer {
		t.TimerStartTime = &now
	}
	if eff.StampCompleted && t.CompletedAt == nil {
		t.CompletedAt = &now
	}

	created, err := o.store.CreateTask(ctx, t)
	if err != nil {
		if !clierr.HasCode(err, clierr.InvalidInput) {
			o.failLocked("", err)
		}
		return nil, err
	}
	board.LogMutation(o.logDir, "create", created.ID, created.Title)
	if rerr := o.refreshLocked(ctx); rerr != nil {
		o.logger.Warn("refresh after create failed", "err", rerr)
	}
	return created, nil
}

// Update applies a field edit to one task. Status and position changes go
// through Move.
func (o *Orchestrator) Update(ctx context.Context, id string, p task.Patch) error {
	if p.Status != nil || p.Position != nil {
		return clierr.New(clierr.InvalidInput, "use move to change status or position")
	}
	return o.update(ctx, id, p, true)
}

func (o *Orchestrator) update(ctx context.Context, id string, p task.Patch, notify bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.busyLocked(ctx, id, notify); err != nil {
		return err
	}
	if p.IsZero() {
		return nil
	}

	o.pending[id] = p
	o.mu.Unlock()
	err := o.store.UpdateTask(ctx, id, p)
	o.mu.Lock()
	delete(o.pending, id)

	if err != nil {
		if notify {
			o.failLocked(id, err)
		}
	} else {
		board.LogMutation(o.logDir, "update", id, strings.Join(p.Fields(), ","))
	}
	if rerr := o.refreshLocked(ctx); rerr != nil {
		o.logger.Warn("refresh after update failed", "err", rerr)
	}
	return err
}

// Delete removes a task. A running timer is released without crediting.
func (o *Orchestrator) Delete(ctx context.Context, id string) error {
	return o.remove(ctx, id, true)
}

func (o *Orchestrator) remove(ctx context.Context, id string, notify bool) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.busyLocked(ctx, id, notify); err != nil {
		return err
	}

	o.pending[id] = task.Patch{}
	o.mu.Unlock()
	err := o.store.DeleteTask(ctx, id)
	o.mu.Lock()
	delete(o.pending, id)

	switch {
	case err == nil:
		o.timers.Release(id)
		o.sel.Deselect(id)
		board.LogMutation(o.logDir, "delete", id, "")
	case notify:
		o.failLocked(id, err)
	}
	if rerr := o.refreshLocked(ctx); rerr != nil {
		o.logger.Warn("refresh after delete failed", "err", rerr)
	}
	return err
}

// StartTimer starts id's timer outside of a column move.
func (o *Orchestrator) StartTimer(ctx context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.busyLocked(ctx, id, true); err != nil {
		return err
	}
	if task.FindByID(o.snapshot, id) == nil {
		return task.NotFound(id)
	}
	err := o.timers.Start(ctx, id)
	if err != nil {
		o.failLocked(id, err)
	} else {
		board.LogMutation(o.logDir, "timer_start", id, "")
	}
	if rerr := o.refreshLocked(ctx); rerr != nil {
		o.logger.Warn("refresh after timer start failed", "err", rerr)
	}
	return err
}

// StopTimer stops id's timer and returns the minutes credited.
func (o *Orchestrator) StopTimer(ctx context.Context, id string) (int, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	if err := o.busyLocked(ctx, id, true); err != nil {
		return 0, err
	}
	minutes, err := o.timers.Stop(ctx, id)
	if err != nil {
		o.failLocked(id, err)
	} else if minutes > 0 {
		board.LogMutation(o.logDir, "timer_stop", id, fmt.Sprintf("+%dm", minutes))
	}
	if rerr := o.refreshLocked(ctx); rerr != nil {
		o.logger.Warn("refresh after timer stop failed", "err", rerr)
	}
	return minutes, err
}
