package engine

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// OutcomeKind classifies one task's result in a bulk operation.
type OutcomeKind int

// Outcome kinds.
const (
	OutcomeOK OutcomeKind = iota
	OutcomeRejected
	OutcomeFailed
)

func (k OutcomeKind) String() string {
	switch k {
	case OutcomeOK:
		return "ok"
	case OutcomeRejected:
		return "rejected"
	default:
		return "failed"
	}
}

// Outcome is one task's result.
type Outcome struct {
	TaskID string
	Kind   OutcomeKind
	Err    error
}

// BulkResult lists per-task outcomes in the order tasks were processed.
type BulkResult struct {
	Op       string
	Outcomes []Outcome
}

// Succeeded returns the IDs that were applied.
func (r BulkResult) Succeeded() []string {
	var ids []string
	for _, o := range r.Outcomes {
		if o.Kind == OutcomeOK {
			ids = append(ids, o.TaskID)
		}
	}
	return ids
}

// Count returns how many outcomes are of kind k.
func (r BulkResult) Count(k OutcomeKind) int {
	n := 0
	for _, o := range r.Outcomes {
		if o.Kind == k {
			n++
		}
	}
	return n
}

// Partial reports whether some but not all tasks were applied.
func (r BulkResult) Partial() bool {
	ok := r.Count(OutcomeOK)
	return ok > 0 && ok < len(r.Outcomes)
}

// Err joins the errors of every task that was not applied.
func (r BulkResult) Err() error {
	var errs []error
	for _, o := range r.Outcomes {
		if o.Err != nil {
			errs = append(errs, fmt.Errorf("%s: %w", o.TaskID, o.Err))
		}
	}
	return errors.Join(errs...)
}

// Summary renders a one-line description of the result.
func (r BulkResult) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s: %d of %d tasks applied", r.Op, r.Count(OutcomeOK), len(r.Outcomes))
	if n := r.Count(OutcomeRejected); n > 0 {
		fmt.Fprintf(&b, ", %d rejected", n)
		if reason := r.firstReason(OutcomeRejected); reason != "" {
			fmt.Fprintf(&b, " (%s)", reason)
		}
	}
	if n := r.Count(OutcomeFailed); n > 0 {
		fmt.Fprintf(&b, ", %d failed", n)
	}
	return b.String()
}

func (r BulkResult) firstReason(k OutcomeKind) string {
	for _, o := range r.Outcomes {
		if o.Kind == k && o.Err != nil {
			return o.Err.Error()
		}
	}
	return ""
}

func classify(err error) OutcomeKind {
	var rej *board.Rejection
	switch {
	case err == nil:
		return OutcomeOK
	case errors.As(err, &rej), clierr.HasCode(err, clierr.TaskBusy), clierr.HasCode(err, clierr.WIPLimitExceeded):
		return OutcomeRejected
	default:
		return OutcomeFailed
	}
}

// BulkMove moves every selected task to the end of column status, one at a
// time, so each WIP check sees the tasks already moved.
func (o *Orchestrator) BulkMove(ctx context.Context, status task.Status) BulkResult {
	if !status.Valid() {
		return o.refuseBulk("move", task.ValidateStatus(string(status)))
	}
	return o.bulk(ctx, "move", func(id string) error {
		return o.move(ctx, id, endOf(id, status), false)
	})
}

// BulkUpdate applies p to every selected task. A status change goes
// through the move engine per task, WIP check and timer effects included,
// before the remaining fields are written. p must not set Position.
func (o *Orchestrator) BulkUpdate(ctx context.Context, p task.Patch) BulkResult {
	if p.Position != nil {
		return o.refuseBulk("update", clierr.New(clierr.InvalidInput, "bulk update cannot set a position"))
	}
	if p.IsZero() {
		return o.refuseBulk("update", clierr.New(clierr.NoChanges, "no fields to update"))
	}
	if p.Status != nil && !p.Status.Valid() {
		return o.refuseBulk("update", task.ValidateStatus(string(*p.Status)))
	}
	rest := p
	rest.Status = nil
	return o.bulk(ctx, "update", func(id string) error {
		if p.Status != nil {
			if err := o.move(ctx, id, endOf(id, *p.Status), false); err != nil {
				return err
			}
		}
		if rest.IsZero() {
			return nil
		}
		return o.update(ctx, id, rest, false)
	})
}

// BulkDelete deletes every selected task.
func (o *Orchestrator) BulkDelete(ctx context.Context) BulkResult {
	return o.bulk(ctx, "delete", func(id string) error {
		return o.remove(ctx, id, false)
	})
}

// bulk runs fn for each selected task. Applied tasks leave the selection;
// the rest stay selected for a retry. A notice summarizes any shortfall.
func (o *Orchestrator) bulk(ctx context.Context, op string, fn func(id string) error) BulkResult {
	res := BulkResult{Op: op}
	for _, id := range o.Selected() {
		err := fn(id)
		res.Outcomes = append(res.Outcomes, Outcome{TaskID: id, Kind: classify(err), Err: err})
	}

	o.mu.Lock()
	defer o.mu.Unlock()
	o.sel.Deselect(res.Succeeded()...)
	if n := len(res.Outcomes) - res.Count(OutcomeOK); n > 0 {
		kind := NoticeWarning
		if res.Count(OutcomeFailed) > 0 {
			kind = NoticeError
		}
		o.noticeLocked(Notice{Kind: kind, Message: res.Summary()})
	}
	o.logger.Info("bulk "+op, "applied", res.Count(OutcomeOK), "rejected", res.Count(OutcomeRejected),
		"failed", res.Count(OutcomeFailed))
	return res
}

func (o *Orchestrator) refuseBulk(op string, reason *clierr.Error) BulkResult {
	res := BulkResult{Op: op}
	for _, id := range o.Selected() {
		res.Outcomes = append(res.Outcomes, Outcome{TaskID: id, Kind: OutcomeFailed, Err: reason})
	}
	o.mu.Lock()
	defer o.mu.Unlock()
	o.noticeLocked(Notice{Kind: NoticeRejection, Code: reason.Code, Message: reason.Message})
	return res
}
