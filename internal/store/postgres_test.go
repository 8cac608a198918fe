package store

import (
	"strings"
	"testing"
	"time"

	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

func TestBuildUpdate(t *testing.T) {
	now := baseTime
	start := baseTime.Add(-time.Hour)
	due := date.New(2026, 4, 1)

	tests := []struct {
		name     string
		patch    task.Patch
		wantSQL  string
		wantArgs int
	}{
		{
			name:     "timestamp only",
			patch:    task.Patch{},
			wantSQL:  "UPDATE board_tasks SET updated_at = $1 WHERE id = $2",
			wantArgs: 2,
		},
		{
			name:     "move with timer",
			patch:    task.Patch{Status: task.Ptr(task.StatusInProgress), Position: task.Ptr(3), TimerStartTime: &start, StartedAt: &start},
			wantSQL:  "UPDATE board_tasks SET status = $1, position = $2, timer_start_time = $3, started_at = $4, updated_at = $5 WHERE id = $6",
			wantArgs: 6,
		},
		{
			name:     "stop credits and clears",
			patch:    task.Patch{AddMinutes: 12, ClearTimer: true},
			wantSQL:  "UPDATE board_tasks SET time_spent_minutes = time_spent_minutes + $1, timer_start_time = NULL, updated_at = $2 WHERE id = $3",
			wantArgs: 3,
		},
		{
			name:     "clears",
			patch:    task.Patch{ClearDueDate: true, ClearCompletedAt: true},
			wantSQL:  "UPDATE board_tasks SET due_date = NULL, completed_at = NULL, updated_at = $1 WHERE id = $2",
			wantArgs: 2,
		},
		{
			name:     "set wins over clear",
			patch:    task.Patch{DueDate: &due, ClearDueDate: true, TimerStartTime: &start, ClearTimer: true},
			wantSQL:  "UPDATE board_tasks SET due_date = $1, timer_start_time = $2, updated_at = $3 WHERE id = $4",
			wantArgs: 4,
		},
		{
			name:     "negative minutes ignored",
			patch:    task.Patch{AddMinutes: -4},
			wantSQL:  "UPDATE board_tasks SET updated_at = $1 WHERE id = $2",
			wantArgs: 2,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sql, args := buildUpdate("t1", tt.patch, now)
			if sql != tt.wantSQL {
				t.Errorf("sql =\n  %s\nwant\n  %s", sql, tt.wantSQL)
			}
			if len(args) != tt.wantArgs {
				t.Fatalf("len(args) = %d, want %d", len(args), tt.wantArgs)
			}
			if args[len(args)-1] != "t1" {
				t.Errorf("last arg = %v, want id", args[len(args)-1])
			}
		})
	}
}

func TestBuildUpdateEmptyTags(t *testing.T) {
	var none []string
	sql, args := buildUpdate("t1", task.Patch{Tags: &none}, baseTime)
	if !strings.HasPrefix(sql, "UPDATE board_tasks SET tags = $1") {
		t.Fatalf("sql = %s", sql)
	}
	if tags, ok := args[0].([]string); !ok || tags == nil {
		t.Errorf("tags arg = %#v, want empty non-nil slice", args[0])
	}
}

func TestDateArg(t *testing.T) {
	if dateArg(nil) != nil {
		t.Error("dateArg(nil) should be nil")
	}
	d := date.New(2026, 5, 6)
	if got := dateArg(&d); got == nil || got.Format(date.Layout) != "2026-05-06" {
		t.Errorf("dateArg = %v", got)
	}
}
