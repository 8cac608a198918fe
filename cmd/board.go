package cmd

import (
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/output"
)

var boardCmd = &cobra.Command{
	Use:     "board",
	Aliases: []string{"summary"},
	Short:   "Show board summary",
	Long:    `Displays task counts per column, WIP utilization, overdue tasks, running timers, and total time spent.`,
	Args:    cobra.NoArgs,
	RunE:    runBoard,
}

func init() {
	rootCmd.AddCommand(boardCmd)
}

func runBoard(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	summary := a.eng.Summary(a.cfg.Board.Name)

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, summary)
	case output.FormatCompact:
		output.SummaryCompact(w, summary)
	default:
		output.SummaryTable(w, summary)
	}
	return nil
}
