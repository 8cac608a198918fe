package output

import (
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/task"
)

var (
	headerStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("244"))
	dimStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	titleStyle  = lipgloss.NewStyle().Bold(true)
	warnStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("214"))
)

// DisableColor strips all styling from table output.
func DisableColor() {
	headerStyle = lipgloss.NewStyle()
	dimStyle = lipgloss.NewStyle()
	titleStyle = lipgloss.NewStyle()
	warnStyle = lipgloss.NewStyle()
}

const shortIDLen = 8

// ShortID abbreviates a task ID for display. UUIDv7 IDs share their time
// prefix, so the tail is used.
func ShortID(id string) string {
	if len(id) <= shortIDLen {
		return id
	}
	return id[len(id)-shortIDLen:]
}

// TaskTable renders tasks as a formatted table. A running timer shows as
// "+" after the spent time.
func TaskTable(w io.Writer, tasks []*task.Task) {
	if len(tasks) == 0 {
		fmt.Fprintln(os.Stderr, "No tasks found.")
		return
	}

	const pad = 2
	idW, statusW, prioW, titleW, spentW, dueW := 10, 8, 10, 5, 8, 12
	for _, t := range tasks {
		statusW = max(statusW, len(t.Status)+pad)
		prioW = max(prioW, len(t.Priority)+pad)
		titleW = max(titleW, min(len(t.Title)+pad, 50)) //nolint:mnd // max title column width
	}

	header := fmt.Sprintf("%-*s %-*s %-*s %-*s %-*s %-*s",
		idW, "ID", statusW, "STATUS", prioW, "PRIORITY",
		titleW, "TITLE", spentW, "SPENT", dueW, "DUE")
	fmt.Fprintln(w, headerStyle.Render(header))

	for _, t := range tasks {
		title := t.Title
		const maxTitle = 48
		if len(title) > maxTitle {
			title = title[:maxTitle-3] + "..."
		}
		spent := FormatMinutes(t.TimeSpentMinutes)
		if t.TimerRunning() {
			spent += "+"
		}
		due := dimStyle.Render("--")
		if t.DueDate != nil {
			due = t.DueDate.String()
		}

		fmt.Fprintf(w, "%-*s %-*s %-*s %-*s %-*s %-*s\n",
			idW, ShortID(t.ID), statusW, t.Status, prioW, t.Priority,
			titleW, title, spentW, spent, dueW, due)
	}
}

// TaskDetail renders a single task with full detail.
func TaskDetail(w io.Writer, t *task.Task) {
	titleLine := "Task " + ShortID(t.ID) + ": " + t.Title
	fmt.Fprintln(w, titleStyle.Render(titleLine))
	fmt.Fprintln(w, strings.Repeat("─", len(titleLine)))

	printField(w, "ID", t.ID)
	printField(w, "Status", t.Status.Label())
	printField(w, "Priority", string(t.Priority))
	printField(w, "Position", strconv.Itoa(t.Position))
	if len(t.Tags) > 0 {
		printField(w, "Tags", strings.Join(t.Tags, ", "))
	} else {
		printField(w, "Tags", dimStyle.Render("--"))
	}
	if t.DueDate != nil {
		printField(w, "Due", t.DueDate.String())
	} else {
		printField(w, "Due", dimStyle.Render("--"))
	}
	if t.EstimatedHours > 0 {
		printField(w, "Estimate", strconv.FormatFloat(t.EstimatedHours, 'f', -1, 64)+"h")
	}
	spent := FormatMinutes(t.TimeSpentMinutes)
	if t.TimerRunning() {
		spent += " (timer running since " + t.TimerStartTime.Local().Format("15:04") + ")"
	}
	printField(w, "Spent", spent)
	printField(w, "Created", t.CreatedAt.Local().Format("2006-01-02 15:04"))
	printField(w, "Updated", t.UpdatedAt.Local().Format("2006-01-02 15:04"))
	if t.StartedAt != nil {
		printField(w, "Started", t.StartedAt.Local().Format("2006-01-02 15:04"))
	}
	if t.CompletedAt != nil {
		printField(w, "Completed", t.CompletedAt.Local().Format("2006-01-02 15:04"))
		printField(w, "Lead time", FormatDuration(t.CompletedAt.Sub(t.CreatedAt)))
		if t.StartedAt != nil && !t.CompletedAt.Before(*t.StartedAt) {
			printField(w, "Cycle time", FormatDuration(t.CompletedAt.Sub(*t.StartedAt)))
		}
	}

	if t.Description != "" {
		fmt.Fprintln(w)
		fmt.Fprintln(w, t.Description)
	}
}

// SummaryTable renders a board summary as a small dashboard.
func SummaryTable(w io.Writer, s board.Summary) {
	fmt.Fprintln(w, titleStyle.Render(s.BoardName))
	fmt.Fprintf(w, "Total: %d tasks, %s spent\n\n", s.TotalTasks, FormatMinutes(s.TimeSpentMinutes))

	header := fmt.Sprintf("%-16s %6s %8s", "STATUS", "COUNT", "LIMIT")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, st := range task.Statuses {
		limit := dimStyle.Render("--")
		if st == task.StatusInProgress && s.WIPLimit > 0 {
			limit = strconv.Itoa(s.WIPLimit)
		}
		fmt.Fprintf(w, "%-16s %6d %8s\n", st.Label(), s.Counts[st], limit)
	}

	fmt.Fprintln(w)
	fmt.Fprintf(w, "Overdue: %d  Running timers: %d\n", s.Overdue, s.RunningTimers)
	if s.WIPWarning != "" {
		fmt.Fprintln(w, warnStyle.Render(s.WIPWarning))
	}
}

// ActivityLogTable renders activity log entries.
func ActivityLogTable(w io.Writer, entries []board.LogEntry) {
	if len(entries) == 0 {
		fmt.Fprintln(os.Stderr, "No activity log entries found.")
		return
	}
	header := fmt.Sprintf("%-19s  %-8s  %-10s  %s", "TIME", "ACTION", "TASK", "DETAIL")
	fmt.Fprintln(w, headerStyle.Render(header))
	for _, e := range entries {
		fmt.Fprintf(w, "%-19s  %-8s  %-10s  %s\n",
			e.Timestamp.Local().Format("2006-01-02 15:04:05"), e.Action, ShortID(e.TaskID), e.Detail)
	}
}

// Messagef prints a simple formatted message line.
func Messagef(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
}

func printField(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-12s %s\n", label+":", value)
}

// FormatDuration renders a duration as human-readable "Xd Yh" or "Xh Ym".
func FormatDuration(d time.Duration) string {
	const hoursPerDay = 24
	days := int(d.Hours()) / hoursPerDay
	hours := int(d.Hours()) % hoursPerDay
	if days > 0 {
		return strconv.Itoa(days) + "d " + strconv.Itoa(hours) + "h"
	}
	minutes := int(d.Minutes()) % 60 //nolint:mnd // 60 minutes per hour
	return strconv.Itoa(hours) + "h " + strconv.Itoa(minutes) + "m"
}

// FormatMinutes renders a minute count as "45m" or "2h 05m".
func FormatMinutes(m int) string {
	if m < 60 { //nolint:mnd // minutes per hour
		return strconv.Itoa(max(m, 0)) + "m"
	}
	return fmt.Sprintf("%dh %02dm", m/60, m%60) //nolint:mnd // minutes per hour
}
