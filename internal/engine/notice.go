package engine

import (
	"context"
	"errors"

	"github.com/antopolskiy/taskboard/internal/clierr"
)

// NoticeKind classifies a notice.
type NoticeKind int

// Notice kinds.
const (
	// NoticeRejection is a gesture refused before reaching the store.
	NoticeRejection NoticeKind = iota
	// NoticeWarning is a stale reference or partial bulk result.
	NoticeWarning
	// NoticeError is a store failure.
	NoticeError
)

func (k NoticeKind) String() string {
	switch k {
	case NoticeRejection:
		return "rejection"
	case NoticeWarning:
		return "warning"
	default:
		return "error"
	}
}

// Notice is a user-facing message that stays until dismissed.
type Notice struct {
	ID      int
	Kind    NoticeKind
	Code    string
	TaskID  string
	Message string
}

const maxNotices = 20

// Notices returns the pending notices, oldest first.
func (o *Orchestrator) Notices() []Notice {
	o.mu.Lock()
	defer o.mu.Unlock()
	return append([]Notice(nil), o.notices...)
}

// DismissNotice removes the notice with the given ID.
func (o *Orchestrator) DismissNotice(id int) bool {
	o.mu.Lock()
	defer o.mu.Unlock()
	for i, n := range o.notices {
		if n.ID == id {
			o.notices = append(o.notices[:i], o.notices[i+1:]...)
			return true
		}
	}
	return false
}

// DismissAll clears every notice.
func (o *Orchestrator) DismissAll() {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.notices = nil
}

func (o *Orchestrator) noticeLocked(n Notice) {
	o.noticeID++
	n.ID = o.noticeID
	o.notices = append(o.notices, n)
	if len(o.notices) > maxNotices {
		o.notices = o.notices[len(o.notices)-maxNotices:]
	}
}

// rejectLocked records a refused gesture.
func (o *Orchestrator) rejectLocked(ctx context.Context, taskID string, reason *clierr.Error) {
	o.metrics.Rejections.Add(ctx, 1)
	o.logger.Info("gesture rejected", "task_id", taskID, "code", reason.Code, "reason", reason.Message)
	o.noticeLocked(Notice{Kind: NoticeRejection, Code: reason.Code, TaskID: taskID, Message: reason.Message})
}

// failLocked records a command that reached the store and failed.
func (o *Orchestrator) failLocked(taskID string, err error) {
	var ce *clierr.Error
	code := clierr.InternalError
	if errors.As(err, &ce) {
		code = ce.Code
	}
	if code == clierr.TaskNotFound {
		o.logger.Warn("task vanished before command applied", "task_id", taskID)
		o.noticeLocked(Notice{Kind: NoticeWarning, Code: code, TaskID: taskID,
			Message: "Task no longer exists; the board was reloaded."})
		return
	}
	o.logger.Error("store command failed", "task_id", taskID, "err", err)
	o.noticeLocked(Notice{Kind: NoticeError, Code: code, TaskID: taskID,
		Message: "Could not save changes; the board was reloaded."})
}
