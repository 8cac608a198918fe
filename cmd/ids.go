package cmd

import (
	"strings"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

// resolveID matches arg against the board's task IDs. Besides the full ID
// it accepts a unique prefix or the short suffix shown in tables.
func resolveID(tasks []*task.Task, arg string) (string, error) {
	arg = strings.TrimSpace(arg)
	if arg == "" {
		return "", task.ValidateTaskID(arg)
	}
	if task.FindByID(tasks, arg) != nil {
		return arg, nil
	}

	var matches []string
	for _, t := range tasks {
		if strings.HasPrefix(t.ID, arg) || strings.HasSuffix(t.ID, arg) {
			matches = append(matches, t.ID)
		}
	}
	switch len(matches) {
	case 0:
		return "", task.NotFound(arg)
	case 1:
		return matches[0], nil
	default:
		return "", clierr.Newf(clierr.InvalidTaskID, "task ID %q is ambiguous (%d matches)", arg, len(matches)).
			WithDetails(map[string]any{"input": arg, "matches": matches})
	}
}

// resolveIDs splits comma-separated args into deduplicated full task IDs.
func resolveIDs(tasks []*task.Task, args []string) ([]string, error) {
	seen := make(map[string]bool)
	var ids []string
	for _, arg := range args {
		for _, p := range strings.Split(arg, ",") {
			if strings.TrimSpace(p) == "" {
				continue
			}
			id, err := resolveID(tasks, p)
			if err != nil {
				return nil, err
			}
			if !seen[id] {
				ids = append(ids, id)
				seen[id] = true
			}
		}
	}
	if len(ids) == 0 {
		return nil, clierr.New(clierr.InvalidTaskID, "no valid task IDs provided")
	}
	return ids, nil
}
