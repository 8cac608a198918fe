package cmd

import (
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List tasks",
	Long: `Lists tasks with optional filtering and sorting. Search matches the
title and description case-insensitively.`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var showCmd = &cobra.Command{
	Use:   "show ID",
	Short: "Show task details",
	Args:  cobra.ExactArgs(1),
	RunE:  runShow,
}

func init() {
	listCmd.Flags().String("status", "", "filter by status")
	listCmd.Flags().String("priority", "", "filter by priority")
	listCmd.Flags().String("search", "", "filter by title or description")
	listCmd.Flags().String("sort", "created_at", "sort by field (created_at, priority, due_date)")
	listCmd.Flags().String("order", "asc", "sort order (asc, desc)")
	listCmd.Flags().Int("limit", 0, "maximum number of tasks (0 = all)")
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(showCmd)
}

func runList(cmd *cobra.Command, _ []string) error {
	c, err := listCriteria(cmd)
	if err != nil {
		return err
	}
	limit, _ := cmd.Flags().GetInt("limit")
	if limit < 0 {
		return clierr.New(clierr.InvalidInput, "limit must not be negative")
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	tasks := board.Project(a.eng.Tasks(), c)
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}
	if tasks == nil {
		tasks = []*task.Task{}
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, tasks)
	case output.FormatCompact:
		output.TaskCompact(w, tasks)
	default:
		output.TaskTable(w, tasks)
	}
	return nil
}

func listCriteria(cmd *cobra.Command) (board.Criteria, error) {
	var (
		c   board.Criteria
		err error
	)
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		if c.Status, err = task.ParseStatus(v); err != nil {
			return c, err
		}
	}
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		if c.Priority, err = task.ParsePriority(v); err != nil {
			return c, err
		}
	}
	c.Search, _ = cmd.Flags().GetString("search")

	sortFlag, _ := cmd.Flags().GetString("sort")
	if c.SortKey, err = board.ParseSortKey(sortFlag); err != nil {
		return c, clierr.New(clierr.InvalidInput, err.Error())
	}
	orderFlag, _ := cmd.Flags().GetString("order")
	if c.Order, err = board.ParseOrder(orderFlag); err != nil {
		return c, clierr.New(clierr.InvalidInput, err.Error())
	}
	return c, nil
}

func runShow(cmd *cobra.Command, args []string) error {
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
	t := a.eng.Task(id)
	if t == nil {
		return task.NotFound(id)
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, t)
	case output.FormatCompact:
		output.TaskDetailCompact(w, t)
	default:
		output.TaskDetail(w, t)
	}
	return nil
}
