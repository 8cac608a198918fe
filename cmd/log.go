package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var logCmd = &cobra.Command{
	Use:   "log",
	Short: "Show activity log",
	Long:  `Displays a log of board mutations (create, move, update, delete, timer changes, import).`,
	Args:  cobra.NoArgs,
	RunE:  runLog,
}

func init() {
	logCmd.Flags().String("since", "", "show entries after date (YYYY-MM-DD)")
	logCmd.Flags().Int("limit", 0, "show only the most recent N entries")
	logCmd.Flags().String("action", "", "filter by action type")
	logCmd.Flags().String("task", "", "filter by task ID")
	rootCmd.AddCommand(logCmd)
}

func runLog(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	opts := board.LogFilterOptions{}
	if v, _ := cmd.Flags().GetString("since"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return task.ValidateDate("since", v, err)
		}
		opts.Since = time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, time.Local)
	}
	if opts.Limit, _ = cmd.Flags().GetInt("limit"); opts.Limit < 0 {
		return clierr.New(clierr.InvalidInput, "limit must not be negative")
	}
	opts.Action, _ = cmd.Flags().GetString("action")
	opts.TaskID, _ = cmd.Flags().GetString("task")

	entries, err := board.ReadLog(cfg.Dir(), opts)
	if err != nil {
		return err
	}
	if entries == nil {
		entries = []board.LogEntry{}
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, entries)
	case output.FormatCompact:
		output.ActivityLogCompact(w, entries)
	default:
		output.ActivityLogTable(w, entries)
	}
	return nil
}
