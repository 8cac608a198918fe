package cmd

import (
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var moveCmd = &cobra.Command{
	Use:   "move ID STATUS",
	Short: "Move a task to a different column",
	Long: `Moves a task to the end of the given column, or to --position within
it. Entering In Progress is refused when the WIP limit is reached; leaving
it stops the task's timer and credits the elapsed minutes.`,
	Args: cobra.ExactArgs(2), //nolint:mnd // ID and status
	RunE: runMove,
}

func init() {
	moveCmd.Flags().Int("position", -1, "zero-based index within the destination column")
	rootCmd.AddCommand(moveCmd)
}

// moveResult wraps a task with a changed flag for JSON output.
type moveResult struct {
	*task.Task
	Changed bool `json:"changed"`
}

func runMove(cmd *cobra.Command, args []string) error {
	status, err := task.ParseStatus(args[1])
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	id, err := resolveID(a.eng.Tasks(), args[0])
	if err != nil {
		return err
	}
	before := a.eng.Task(id)

	if cmd.Flags().Changed("position") {
		pos, _ := cmd.Flags().GetInt("position")
		if pos < 0 {
			return clierr.Newf(clierr.InvalidPosition, "position must not be negative: %d", pos).
				WithDetails(map[string]any{"position": pos})
		}
		err = a.eng.OnReorder(ctx, id, status, pos)
	} else {
		err = a.eng.MoveToColumn(ctx, id, status)
	}
	if err != nil {
		return err
	}

	after := a.eng.Task(id)
	if after == nil {
		return task.NotFound(id)
	}
	changed := before == nil || before.Status != after.Status || before.Position != after.Position

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, moveResult{Task: after, Changed: changed})
	case output.FormatCompact:
		output.TaskDetailCompact(w, after)
	default:
		if !changed {
			output.Messagef(w, "Task %s is already in %s", output.ShortID(id), after.Status.Label())
			return nil
		}
		output.Messagef(w, "Moved task %s to %s", output.ShortID(id), after.Status.Label())
	}
	return nil
}
