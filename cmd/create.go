package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/config"
	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var createCmd = &cobra.Command{
	Use:     "create TITLE",
	Aliases: []string{"add"},
	Short:   "Create a new task",
	Long: `Creates a task at the end of its column. Tasks land in To-Do unless
--status says otherwise; creating straight into In Progress counts against
the WIP limit and starts the task's timer.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runCreate,
}

func init() {
	createCmd.Flags().String("status", "", "initial status (todo, in_progress, completed)")
	createCmd.Flags().String("priority", "", "priority (low, medium, high)")
	createCmd.Flags().StringSlice("tags", nil, "comma-separated tags")
	createCmd.Flags().String("due", "", "due date (YYYY-MM-DD)")
	createCmd.Flags().Float64("estimate", 0, "estimated hours")
	createCmd.Flags().String("description", "", "task description")
	rootCmd.AddCommand(createCmd)
}

func runCreate(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	t := &task.Task{Title: strings.Join(args, " ")}
	if err := applyCreateFlags(cmd, t, a.cfg); err != nil {
		return err
	}

	created, err := a.eng.Create(ctx, t)
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, created)
	case output.FormatCompact:
		output.TaskDetailCompact(w, created)
	default:
		output.Messagef(w, "Created task %s: %s", output.ShortID(created.ID), created.Title)
	}
	return nil
}

// applyCreateFlags fills t from the create flags and board defaults.
func applyCreateFlags(cmd *cobra.Command, t *task.Task, cfg *config.Config) error {
	if strings.TrimSpace(t.Title) == "" {
		return clierr.New(clierr.InvalidInput, "title is required")
	}
	var err error

	t.Status = task.StatusTodo
	if v, _ := cmd.Flags().GetString("status"); v != "" {
		if t.Status, err = task.ParseStatus(v); err != nil {
			return err
		}
	}

	p := cfg.Defaults.Priority
	if v, _ := cmd.Flags().GetString("priority"); v != "" {
		p = v
	}
	if t.Priority, err = task.ParsePriority(p); err != nil {
		return err
	}

	if v, _ := cmd.Flags().GetStringSlice("tags"); len(v) > 0 {
		t.Tags = cleanTags(v)
	}
	if v, _ := cmd.Flags().GetString("due"); v != "" {
		d, err := date.Parse(v)
		if err != nil {
			return task.ValidateDate("due", v, err)
		}
		t.DueDate = &d
	}
	if v, _ := cmd.Flags().GetFloat64("estimate"); v != 0 {
		if v < 0 {
			return clierr.New(clierr.InvalidInput, "estimate must not be negative")
		}
		t.EstimatedHours = v
	}
	t.Description, _ = cmd.Flags().GetString("description")
	return nil
}

func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = strings.TrimSpace(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}
