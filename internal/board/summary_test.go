package board

import (
	"testing"
	"time"

	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

func TestSummarize(t *testing.T) {
	now := time.Date(2025, 6, 10, 15, 0, 0, 0, time.UTC)
	past := date.New(2025, 6, 1)
	today := date.New(2025, 6, 10)

	overdue := mk("o", task.StatusTodo, 0, 0)
	overdue.DueDate = &past
	dueToday := mk("d", task.StatusInProgress, 0, 1)
	dueToday.DueDate = &today
	dueToday.TimeSpentMinutes = 30
	start := now.Add(-time.Hour)
	dueToday.TimerStartTime = &start
	doneLate := mk("c", task.StatusCompleted, 0, 2)
	doneLate.DueDate = &past
	doneLate.TimeSpentMinutes = 15

	s := Summarize("Board", []*task.Task{overdue, dueToday, doneLate}, 1, now)

	if s.TotalTasks != 3 || s.Overdue != 1 || s.RunningTimers != 1 || s.TimeSpentMinutes != 45 {
		t.Errorf("summary = %+v", s)
	}
	if s.Counts[task.StatusInProgress] != 1 || s.Counts[task.StatusTodo] != 1 {
		t.Errorf("counts = %v", s.Counts)
	}
	if s.WIPWarning != "WIP limit reached: In Progress (1/1)" {
		t.Errorf("WIPWarning = %q", s.WIPWarning)
	}
}

func TestSummarizeNoWarningUnlimited(t *testing.T) {
	tasks := []*task.Task{mk("a", task.StatusInProgress, 0, 0)}
	if s := Summarize("B", tasks, 0, time.Now()); s.WIPWarning != "" {
		t.Errorf("WIPWarning = %q, want empty", s.WIPWarning)
	}
	if s := Summarize("B", nil, 3, time.Now()); s.Counts[task.StatusCompleted] != 0 || len(s.Counts) != 3 {
		t.Errorf("Counts = %v, want every status", s.Counts)
	}
}

func TestRemaining(t *testing.T) {
	tasks := wipFixture()
	if got := Remaining(tasks, 5); got != 2 {
		t.Errorf("Remaining(5) = %d, want 2", got)
	}
	if got := Remaining(tasks, 2); got != 0 {
		t.Errorf("Remaining(2) = %d, want 0", got)
	}
	if got := Remaining(tasks, 0); got != -1 {
		t.Errorf("Remaining(0) = %d, want -1", got)
	}
}
