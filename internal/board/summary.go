package board

import (
	"strconv"
	"time"

	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/task"
)

// Summary holds aggregate board statistics for the board command and the
// TUI status bar.
type Summary struct {
	BoardName        string              `json:"board_name"`
	TotalTasks       int                 `json:"total_tasks"`
	Counts           map[task.Status]int `json:"counts"`
	WIPLimit         int                 `json:"wip_limit"`
	WIPRemaining     int                 `json:"wip_remaining"`
	Overdue          int                 `json:"overdue"`
	RunningTimers    int                 `json:"running_timers"`
	TimeSpentMinutes int                 `json:"time_spent_minutes"`
	WIPWarning       string              `json:"wip_warning,omitempty"`
}

// Summarize computes the board summary as of now.
func Summarize(name string, tasks []*task.Task, limit int, now time.Time) Summary {
	s := Summary{
		BoardName:  name,
		TotalTasks: len(tasks),
		Counts:     CountByStatus(tasks),
		WIPLimit:   limit,
	}
	s.WIPRemaining = Remaining(tasks, limit)
	today := date.New(now.Year(), now.Month(), now.Day())
	for _, t := range tasks {
		if t.DueDate != nil && t.DueDate.Before(today) && t.Status != task.StatusCompleted {
			s.Overdue++
		}
		if t.TimerRunning() {
			s.RunningTimers++
		}
		s.TimeSpentMinutes += t.TimeSpentMinutes
	}
	for _, st := range task.Statuses {
		if _, ok := s.Counts[st]; !ok {
			s.Counts[st] = 0
		}
	}

	if n := s.Counts[task.StatusInProgress]; s.WIPRemaining == 0 {
		s.WIPWarning = "WIP limit reached: " + task.StatusInProgress.Label() +
			" (" + strconv.Itoa(n) + "/" + strconv.Itoa(limit) + ")"
	}
	return s
}
