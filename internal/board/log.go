package board

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"time"
)

const (
	logFileName   = "activity.jsonl"
	maxLogEntries = 10000
	logFileMode   = 0o600
)

// LogEntry is one line in the activity log.
type LogEntry struct {
	Timestamp time.Time `json:"timestamp"`
	Action    string    `json:"action"`
	TaskID    string    `json:"task_id"`
	Detail    string    `json:"detail,omitempty"`
}

// LogFilterOptions narrows ReadLog results.
type LogFilterOptions struct {
	Since  time.Time
	Action string
	TaskID string
	Limit  int // most recent N entries; 0 = all
}

// AppendLog adds entry to the board's activity log, dropping the oldest
// entries once the log grows past maxLogEntries.
func AppendLog(dir string, entry LogEntry) error {
	line, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshaling log entry: %w", err)
	}
	path := filepath.Join(dir, logFileName)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, logFileMode) //nolint:gosec // board-owned path
	if err != nil {
		return fmt.Errorf("opening activity log: %w", err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("writing activity log: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing activity log: %w", err)
	}
	return truncateLog(path)
}

func truncateLog(path string) error {
	data, err := os.ReadFile(path) //nolint:gosec // board-owned path
	if err != nil {
		return fmt.Errorf("reading activity log: %w", err)
	}
	lines := bytes.Split(bytes.TrimRight(data, "\n"), []byte("\n"))
	if len(lines) <= maxLogEntries {
		return nil
	}
	keep := lines[len(lines)-maxLogEntries:]
	out := append(bytes.Join(keep, []byte("\n")), '\n')
	return os.WriteFile(path, out, logFileMode)
}

// ReadLog returns log entries matching opts, oldest first. A board without
// a log yields nil.
func ReadLog(dir string, opts LogFilterOptions) ([]LogEntry, error) {
	f, err := os.Open(filepath.Join(dir, logFileName)) //nolint:gosec // board-owned path
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening activity log: %w", err)
	}
	defer f.Close()

	entries := []LogEntry{}
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		if len(bytes.TrimSpace(sc.Bytes())) == 0 {
			continue
		}
		var e LogEntry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue // skip malformed lines
		}
		if matchesLog(e, opts) {
			entries = append(entries, e)
		}
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("reading activity log: %w", err)
	}

	if opts.Limit > 0 && len(entries) > opts.Limit {
		entries = entries[len(entries)-opts.Limit:]
	}
	return entries, nil
}

func matchesLog(e LogEntry, opts LogFilterOptions) bool {
	if !opts.Since.IsZero() && e.Timestamp.Before(opts.Since) {
		return false
	}
	if opts.Action != "" && e.Action != opts.Action {
		return false
	}
	if opts.TaskID != "" && e.TaskID != opts.TaskID {
		return false
	}
	return true
}

// LogMutation records a board mutation. Failures are logged and otherwise
// ignored; the activity log never blocks a change.
func LogMutation(dir, action, taskID, detail string) {
	if dir == "" {
		return
	}
	entry := LogEntry{
		Timestamp: time.Now(),
		Action:    action,
		TaskID:    taskID,
		Detail:    detail,
	}
	if err := AppendLog(dir, entry); err != nil {
		slog.Warn("activity log write failed", "action", action, "task_id", taskID, "err", err)
	}
}
