package output

import (
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

func stubTerminal(t *testing.T, tty bool) {
	t.Helper()
	orig := isTerminalFn
	isTerminalFn = func() bool { return tty }
	t.Cleanup(func() { isTerminalFn = orig })
}

func TestDetect(t *testing.T) {
	tests := []struct {
		name          string
		json, compact bool
		env           string
		tty           bool
		want          Format
	}{
		{"json flag", true, false, "table", true, FormatJSON},
		{"compact flag", false, true, "", false, FormatCompact},
		{"env json", false, false, "json", true, FormatJSON},
		{"env table", false, false, "table", false, FormatTable},
		{"env oneline", false, false, "oneline", true, FormatCompact},
		{"tty", false, false, "", true, FormatTable},
		{"pipe", false, false, "", false, FormatJSON},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("TASKBOARD_OUTPUT", tt.env)
			stubTerminal(t, tt.tty)
			if got := Detect(tt.json, tt.compact); got != tt.want {
				t.Errorf("Detect = %d, want %d", got, tt.want)
			}
		})
	}
}

func sampleTasks() []*task.Task {
	now := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	due := date.New(2026, 3, 10)
	return []*task.Task{
		{ID: "0190a1b2-c3d4-7e5f-8a9b-0c1d2e3f4a5b", Title: "Write docs", Status: task.StatusTodo,
			Priority: task.PriorityLow, DueDate: &due, Tags: []string{"docs"}, CreatedAt: now, UpdatedAt: now},
		{ID: "t2", Title: "Fix build", Status: task.StatusInProgress, Priority: task.PriorityHigh,
			TimeSpentMinutes: 125, TimerStartTime: &now, CreatedAt: now, UpdatedAt: now},
	}
}

func TestTaskTable(t *testing.T) {
	DisableColor()
	var buf strings.Builder
	TaskTable(&buf, sampleTasks())
	out := buf.String()
	for _, want := range []string{"ID", "SPENT", "Write docs", "2e3f4a5b", "2026-03-10", "2h 05m+"} {
		if !strings.Contains(out, want) {
			t.Errorf("table missing %q:\n%s", want, out)
		}
	}
}

func TestTaskTableEmptyWritesNothing(t *testing.T) {
	var buf strings.Builder
	TaskTable(&buf, nil)
	if buf.String() != "" {
		t.Errorf("empty table wrote %q", buf.String())
	}
}

func TestTaskDetail(t *testing.T) {
	DisableColor()
	tk := sampleTasks()[1]
	done := tk.CreatedAt.Add(26 * time.Hour)
	tk.CompletedAt = &done
	tk.Description = "Broken on main."

	var buf strings.Builder
	TaskDetail(&buf, tk)
	out := buf.String()
	for _, want := range []string{"Task t2: Fix build", "In Progress", "timer running", "Lead time:", "1d 2h", "Broken on main."} {
		if !strings.Contains(out, want) {
			t.Errorf("detail missing %q:\n%s", want, out)
		}
	}
}

func TestCompact(t *testing.T) {
	var buf strings.Builder
	TaskCompact(&buf, sampleTasks())
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines:\n%s", len(lines), buf.String())
	}
	if lines[0] != "2e3f4a5b [todo/low] Write docs (docs) due:2026-03-10" {
		t.Errorf("line 0 = %q", lines[0])
	}
	if lines[1] != "t2 [in_progress/high] Fix build spent:2h 05m+" {
		t.Errorf("line 1 = %q", lines[1])
	}
}

func TestSummaryOutput(t *testing.T) {
	DisableColor()
	now := time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC)
	s := board.Summarize("Home", sampleTasks(), 1, now)

	var buf strings.Builder
	SummaryTable(&buf, s)
	for _, want := range []string{"Home", "Total: 2 tasks", "In Progress", "Overdue: 1", "WIP limit reached"} {
		if !strings.Contains(buf.String(), want) {
			t.Errorf("summary table missing %q:\n%s", want, buf.String())
		}
	}

	buf.Reset()
	SummaryCompact(&buf, s)
	if !strings.Contains(buf.String(), "in_progress: 1/1") {
		t.Errorf("compact summary:\n%s", buf.String())
	}
}

func TestActivityLog(t *testing.T) {
	DisableColor()
	entries := []board.LogEntry{{Timestamp: time.Now(), Action: "move", TaskID: "t2", Detail: "todo -> in_progress"}}
	var buf strings.Builder
	ActivityLogCompact(&buf, entries)
	if !strings.Contains(buf.String(), "move t2 todo -> in_progress") {
		t.Errorf("log line = %q", buf.String())
	}
	buf.Reset()
	ActivityLogTable(&buf, entries)
	if !strings.Contains(buf.String(), "ACTION") {
		t.Errorf("log table missing header:\n%s", buf.String())
	}
}

func TestJSONError(t *testing.T) {
	var buf strings.Builder
	JSONError(&buf, "TASK_NOT_FOUND", "task x not found", map[string]any{"id": "x"})
	var resp ErrorResponse
	if err := json.Unmarshal([]byte(buf.String()), &resp); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if resp.Code != "TASK_NOT_FOUND" || resp.Details["id"] != "x" {
		t.Errorf("resp = %+v", resp)
	}
}

func TestFormatting(t *testing.T) {
	tests := []struct {
		got, want string
	}{
		{FormatMinutes(0), "0m"},
		{FormatMinutes(59), "59m"},
		{FormatMinutes(60), "1h 00m"},
		{FormatMinutes(-3), "0m"},
		{FormatDuration(90 * time.Minute), "1h 30m"},
		{FormatDuration(49 * time.Hour), "2d 1h"},
		{ShortID("abc"), "abc"},
	}
	for _, tt := range tests {
		if tt.got != tt.want {
			t.Errorf("got %q, want %q", tt.got, tt.want)
		}
	}
}
