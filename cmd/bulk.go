package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/engine"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var bulkCmd = &cobra.Command{
	Use:   "bulk",
	Short: "Apply one operation to several tasks",
	Long: `Runs move, update, or delete over a set of tasks. Each task is applied
independently: a task refused by the WIP limit does not stop the others.
The command exits non-zero when any task was not applied.`,
}

var bulkMoveCmd = &cobra.Command{
	Use:   "move STATUS ID[,ID,...]...",
	Short: "Move several tasks to a column",
	Args:  cobra.MinimumNArgs(2), //nolint:mnd // status plus at least one ID
	RunE:  runBulkMove,
}

var bulkUpdateCmd = &cobra.Command{
	Use:   "update ID[,ID,...]...",
	Short: "Update fields on several tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBulkUpdate,
}

var bulkDeleteCmd = &cobra.Command{
	Use:   "delete ID[,ID,...]...",
	Short: "Delete several tasks",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runBulkDelete,
}

func init() {
	bulkUpdateCmd.Flags().String("status", "", "new status")
	bulkUpdateCmd.Flags().String("title", "", "new title")
	bulkUpdateCmd.Flags().String("description", "", "new description")
	bulkUpdateCmd.Flags().String("priority", "", "new priority")
	bulkUpdateCmd.Flags().StringSlice("tags", nil, "replace tags")
	bulkUpdateCmd.Flags().String("due", "", "new due date (YYYY-MM-DD)")
	bulkUpdateCmd.Flags().Bool("clear-due", false, "clear due date")
	bulkUpdateCmd.Flags().Float64("estimate", 0, "estimated hours")
	bulkDeleteCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")

	bulkCmd.AddCommand(bulkMoveCmd, bulkUpdateCmd, bulkDeleteCmd)
	rootCmd.AddCommand(bulkCmd)
}

func runBulkMove(cmd *cobra.Command, args []string) error {
	status, err := task.ParseStatus(args[0])
	if err != nil {
		return err
	}
	return runBulk(cmd, args[1:], nil, func(a *app) engine.BulkResult {
		return a.eng.BulkMove(cmd.Context(), status)
	})
}

func runBulkUpdate(cmd *cobra.Command, args []string) error {
	p, err := bulkPatch(cmd)
	if err != nil {
		return err
	}
	return runBulk(cmd, args, nil, func(a *app) engine.BulkResult {
		return a.eng.BulkUpdate(cmd.Context(), p)
	})
}

func runBulkDelete(cmd *cobra.Command, args []string) error {
	force, _ := cmd.Flags().GetBool("force")
	check := func(ids []string) (bool, error) {
		if force {
			return true, nil
		}
		return confirm(cmd, fmt.Sprintf("Delete %d tasks?", len(ids)))
	}
	return runBulk(cmd, args, check, func(a *app) engine.BulkResult {
		return a.eng.BulkDelete(cmd.Context())
	})
}

// bulkPatch is editPatch plus --status, which the orchestrator routes
// through the move engine.
func bulkPatch(cmd *cobra.Command) (task.Patch, error) {
	var status *task.Status
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		st, err := task.ParseStatus(v)
		if err != nil {
			return task.Patch{}, err
		}
		status = &st
	}
	p, err := editPatch(cmd)
	if err != nil && (status == nil || !clierr.HasCode(err, clierr.NoChanges)) {
		return task.Patch{}, err
	}
	p.Status = status
	return p, nil
}

// runBulk selects the tasks named in args, runs op over the selection, and
// reports per-task results. check, when set, may cancel before anything is
// applied.
func runBulk(cmd *cobra.Command, args []string, check func([]string) (bool, error),
	op func(*app) engine.BulkResult,
) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	ids, err := resolveIDs(a.eng.Tasks(), args)
	if err != nil {
		return err
	}
	if check != nil {
		if ok, err := check(ids); err != nil || !ok {
			return err
		}
	}

	a.eng.Select(ids...)
	res := op(a)
	a.eng.ExitSelection()

	resp := batchResponse(res)
	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		if err := output.JSON(w, resp); err != nil {
			return err
		}
	} else {
		for _, r := range resp.Results {
			if !r.OK {
				fmt.Fprintf(cmd.ErrOrStderr(), "Error: task %s: %s\n", output.ShortID(r.ID), r.Error)
			}
		}
		output.Messagef(w, "%s", resp.Summary)
	}

	if resp.Succeeded < resp.Total {
		return &clierr.SilentError{Code: 1}
	}
	return nil
}

func batchResponse(res engine.BulkResult) output.BatchResponse {
	resp := output.BatchResponse{
		Op:        res.Op,
		Succeeded: res.Count(engine.OutcomeOK),
		Total:     len(res.Outcomes),
		Summary:   res.Summary(),
		Results:   make([]output.BatchResult, 0, len(res.Outcomes)),
	}
	for _, o := range res.Outcomes {
		r := output.BatchResult{ID: o.TaskID, OK: o.Kind == engine.OutcomeOK}
		if o.Err != nil {
			r.Error = o.Err.Error()
			var cliErr *clierr.Error
			if errors.As(o.Err, &cliErr) {
				r.Code = cliErr.Code
			}
		}
		resp.Results = append(resp.Results, r)
	}
	return resp
}
