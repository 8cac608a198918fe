package output

import (
	"fmt"
	"io"
	"os"
	"time"
)

// TimerRow is one running timer.
type TimerRow struct {
	ID             string    `json:"id"`
	Title          string    `json:"title"`
	Since          time.Time `json:"since"`
	ElapsedSeconds int64     `json:"elapsed_seconds"`
	SpentMinutes   int       `json:"time_spent_minutes"`
}

func (r TimerRow) elapsed() string {
	return FormatDuration(time.Duration(r.ElapsedSeconds) * time.Second)
}

// TimerTable renders running timers as a table.
func TimerTable(w io.Writer, rows []TimerRow) {
	if len(rows) == 0 {
		fmt.Fprintln(os.Stderr, "No timers running.")
		return
	}
	titleW := 5
	for _, r := range rows {
		titleW = max(titleW, min(len(r.Title)+2, 50)) //nolint:mnd // padding and max width
	}
	fmt.Fprintln(w, headerStyle.Render(fmt.Sprintf("%-10s %-*s %-10s %s", "ID", titleW, "TITLE", "ELAPSED", "SPENT")))
	for _, r := range rows {
		fmt.Fprintf(w, "%-10s %-*s %-10s %s\n", ShortID(r.ID), titleW, r.Title, r.elapsed(), FormatMinutes(r.SpentMinutes))
	}
}

// TimerCompact renders one line per running timer.
func TimerCompact(w io.Writer, rows []TimerRow) {
	for _, r := range rows {
		fmt.Fprintf(w, "%s %s +%s\n", ShortID(r.ID), r.Title, r.elapsed())
	}
}
