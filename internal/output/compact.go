package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/task"
)

// TaskCompact renders tasks one per line.
func TaskCompact(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}
	for _, t := range tasks {
		fmt.Fprintln(w, formatTaskLine(t))
	}
}

// TaskDetailCompact renders a single task with timestamps and description.
func TaskDetailCompact(w io.Writer, t *task.Task) {
	line := formatTaskLine(t)
	if t.EstimatedHours > 0 {
		line += " est:" + strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64) + "h"
	}
	fmt.Fprintln(w, line)

	ts := "  created:" + t.CreatedAt.Format("2006-01-02") +
		" updated:" + t.UpdatedAt.Format("2006-01-02")
	if t.StartedAt != nil {
		ts += " started:" + t.StartedAt.Format("2006-01-02")
	}
	if t.CompletedAt != nil {
		ts += " completed:" + t.CompletedAt.Format("2006-01-02")
	}
	fmt.Fprintln(w, ts)

	if t.Description != "" {
		for _, l := range strings.Split(t.Description, "\n") {
			fmt.Fprintln(w, "  "+l)
		}
	}
}

// SummaryCompact renders a board summary in a few lines.
func SummaryCompact(w io.Writer, s board.Summary) {
	fmt.Fprintf(w, "%s (%d tasks, %s)\n", s.BoardName, s.TotalTasks, FormatMinutes(s.TimeSpentMinutes))
	for _, st := range task.Statuses {
		line := "  " + string(st) + ": " + strconv.Itoa(s.Counts[st])
		if st == task.StatusInProgress && s.WIPLimit > 0 {
			line += "/" + strconv.Itoa(s.WIPLimit)
		}
		fmt.Fprintln(w, line)
	}
	var notes []string
	if s.Overdue > 0 {
		notes = append(notes, strconv.Itoa(s.Overdue)+" overdue")
	}
	if s.RunningTimers > 0 {
		notes = append(notes, strconv.Itoa(s.RunningTimers)+" timers running")
	}
	if len(notes) > 0 {
		fmt.Fprintln(w, "  "+strings.Join(notes, ", "))
	}
}

// ActivityLogCompact renders activity log entries one per line.
func ActivityLogCompact(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity log entries found.")
		return
	}
	for _, e := range entries {
		fmt.Fprintf(w, "%s %s %s %s\n",
			e.Timestamp.Format("2006-01-02 15:04:05"), e.Action, ShortID(e.TaskID), e.Detail)
	}
}

// formatTaskLine builds the one-line representation of a task.
func formatTaskLine(t *task.Task) string {
	line := ShortID(t.ID) + " [" + string(t.Status) + "/" + string(t.Priority) + "] " + t.Title
	if len(t.Tags) > 0 {
		line += " (" + strings.Join(t.Tags, ", ") + ")"
	}
	if t.DueDate != nil {
		line += " due:" + t.DueDate.String()
	}
	if t.TimeSpentMinutes > 0 || t.TimerRunning() {
		line += " spent:" + FormatMinutes(t.TimeSpentMinutes)
		if t.TimerRunning() {
			line += "+"
		}
	}
	return line
}
