package task

import (
	"sort"
	"time"

	"github.com/antopolskiy/taskboard/internal/date"
)

// Patch is a partial update to a task. Nil pointers leave a field alone.
// AddMinutes is a delta added to TimeSpentMinutes; negative deltas are
// ignored so the total never decreases.
type Patch struct {
	Title          *string
	Description    *string
	Status         *Status
	Priority       *Priority
	Position       *int
	Tags           *[]string
	DueDate        *date.Date
	ClearDueDate   bool
	EstimatedHours *float64

	AddMinutes       int
	TimerStartTime   *time.Time
	ClearTimer       bool
	StartedAt        *time.Time
	CompletedAt      *time.Time
	ClearCompletedAt bool
}

// IsZero reports whether the patch changes nothing.
func (p Patch) IsZero() bool {
	return len(p.Fields()) == 0
}

// Fields returns the sorted names of the fields the patch touches.
func (p Patch) Fields() []string {
	var f []string
	add := func(cond bool, name string) {
		if cond {
			f = append(f, name)
		}
	}
	add(p.Title != nil, "title")
	add(p.Description != nil, "description")
	add(p.Status != nil, "status")
	add(p.Priority != nil, "priority")
	add(p.Position != nil, "position")
	add(p.Tags != nil, "tags")
	add(p.DueDate != nil || p.ClearDueDate, "due_date")
	add(p.EstimatedHours != nil, "estimated_hours")
	add(p.AddMinutes > 0, "time_spent_minutes")
	add(p.TimerStartTime != nil || p.ClearTimer, "timer_start_time")
	add(p.StartedAt != nil, "started_at")
	add(p.CompletedAt != nil || p.ClearCompletedAt, "completed_at")
	sort.Strings(f)
	return f
}

// Apply mutates t according to the patch. It does not touch UpdatedAt;
// stores stamp that themselves.
func (p Patch) Apply(t *Task) {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Status != nil {
		t.Status = *p.Status
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.Position != nil {
		t.Position = *p.Position
	}
	if p.Tags != nil {
		t.Tags = append([]string(nil), (*p.Tags)...)
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		d := *p.DueDate
		t.DueDate = &d
	}
	if p.EstimatedHours != nil {
		t.EstimatedHours = *p.EstimatedHours
	}
	if p.AddMinutes > 0 {
		t.TimeSpentMinutes += p.AddMinutes
	}
	if p.ClearTimer {
		t.TimerStartTime = nil
	}
	if p.TimerStartTime != nil {
		ts := *p.TimerStartTime
		t.TimerStartTime = &ts
	}
	if p.StartedAt != nil {
		ts := *p.StartedAt
		t.StartedAt = &ts
	}
	if p.ClearCompletedAt {
		t.CompletedAt = nil
	}
	if p.CompletedAt != nil {
		ts := *p.CompletedAt
		t.CompletedAt = &ts
	}
}

// Merge returns a patch with q's settings layered over p's. Minute deltas add up.
func (p Patch) Merge(q Patch) Patch {
	out := p
	if q.Title != nil {
		out.Title = q.Title
	}
	if q.Description != nil {
		out.Description = q.Description
	}
	if q.Status != nil {
		out.Status = q.Status
	}
	if q.Priority != nil {
		out.Priority = q.Priority
	}
	if q.Position != nil {
		out.Position = q.Position
	}
	if q.Tags != nil {
		out.Tags = q.Tags
	}
	if q.DueDate != nil || q.ClearDueDate {
		out.DueDate, out.ClearDueDate = q.DueDate, q.ClearDueDate
	}
	if q.EstimatedHours != nil {
		out.EstimatedHours = q.EstimatedHours
	}
	if q.AddMinutes > 0 {
		out.AddMinutes += q.AddMinutes
	}
	if q.TimerStartTime != nil || q.ClearTimer {
		out.TimerStartTime, out.ClearTimer = q.TimerStartTime, q.ClearTimer
	}
	if q.StartedAt != nil {
		out.StartedAt = q.StartedAt
	}
	if q.CompletedAt != nil || q.ClearCompletedAt {
		out.CompletedAt, out.ClearCompletedAt = q.CompletedAt, q.ClearCompletedAt
	}
	return out
}

// Ptr returns a pointer to v. Handy for building patches.
func Ptr[T any](v T) *T {
	return &v
}
