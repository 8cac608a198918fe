package task

import (
	"errors"
	"strings"

	"github.com/antopolskiy/taskboard/internal/clierr"
)

// Validation errors (kept for errors.Is checks on plain comparisons).
var (
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidPriority = errors.New("invalid priority")
)

// ParseStatus converts user input to a Status. It accepts the canonical
// names plus the hyphenated and short aliases seen in older records.
func ParseStatus(s string) (Status, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "todo", "to-do", "to_do":
		return StatusTodo, nil
	case "in_progress", "in-progress", "inprogress", "doing":
		return StatusInProgress, nil
	case "completed", "done":
		return StatusCompleted, nil
	}
	return "", ValidateStatus(s)
}

// ValidateStatus returns an INVALID_STATUS error for s.
func ValidateStatus(s string) *clierr.Error {
	allowed := make([]string, len(Statuses))
	for i, st := range Statuses {
		allowed[i] = string(st)
	}
	return clierr.Newf(clierr.InvalidStatus, "invalid status %q", s).
		WithDetails(map[string]any{
			"status":  s,
			"allowed": allowed,
		})
}

// ParsePriority converts user input to a Priority.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p.Valid() {
		return p, nil
	}
	allowed := make([]string, len(Priorities))
	for i, pr := range Priorities {
		allowed[i] = string(pr)
	}
	return "", clierr.Newf(clierr.InvalidPriority, "invalid priority %q", s).
		WithDetails(map[string]any{
			"priority": s,
			"allowed":  allowed,
		})
}

// ValidateDate returns a CLIError for invalid date input.
func ValidateDate(field, input string, err error) *clierr.Error {
	return clierr.Newf(clierr.InvalidDate, "invalid %s date: %v", field, err).
		WithDetails(map[string]any{
			"field": field,
			"input": input,
		})
}

// ValidateTaskID returns a CLIError for invalid task ID input.
func ValidateTaskID(input string) *clierr.Error {
	return clierr.Newf(clierr.InvalidTaskID, "invalid task ID %q", input).
		WithDetails(map[string]any{"input": input})
}

// NotFound returns a TASK_NOT_FOUND error for id.
func NotFound(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskNotFound, "task not found: %s", id).
		WithDetails(map[string]any{"id": id})
}

// ValidateWIPLimit returns a CLIError for WIP limit violations.
func ValidateWIPLimit(limit, current int) *clierr.Error {
	return clierr.Newf(clierr.WIPLimitExceeded,
		"Cannot move task to In Progress. WIP limit reached (%d tasks maximum).", limit).
		WithDetails(map[string]any{
			"status":  string(StatusInProgress),
			"limit":   limit,
			"current": current,
		})
}

// ValidateBusy returns a TASK_BUSY error for a task with a pending command.
func ValidateBusy(id string) *clierr.Error {
	return clierr.Newf(clierr.TaskBusy, "task %s has a pending change; try again", id).
		WithDetails(map[string]any{"id": id})
}

// ValidatePatch checks enum fields of a patch.
func ValidatePatch(p Patch) error {
	if p.Status != nil && !p.Status.Valid() {
		return ValidateStatus(string(*p.Status))
	}
	if p.Priority != nil && !p.Priority.Valid() {
		_, err := ParsePriority(string(*p.Priority))
		return err
	}
	if p.Position != nil && *p.Position < 0 {
		return clierr.Newf(clierr.InvalidPosition, "position must be >= 0, got %d", *p.Position)
	}
	return nil
}
