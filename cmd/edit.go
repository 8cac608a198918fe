package cmd

import (
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/date"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var editCmd = &cobra.Command{
	Use:   "edit ID",
	Short: "Edit a task",
	Long: `Modifies fields of an existing task. Only specified fields are changed.
Use move to change a task's column or position.`,
	Args: cobra.ExactArgs(1),
	RunE: runEdit,
}

func init() {
	editCmd.Flags().String("title", "", "new title")
	editCmd.Flags().String("description", "", "new description")
	editCmd.Flags().String("priority", "", "new priority")
	editCmd.Flags().StringSlice("tags", nil, "replace tags")
	editCmd.Flags().String("due", "", "new due date (YYYY-MM-DD)")
	editCmd.Flags().Bool("clear-due", false, "clear due date")
	editCmd.Flags().Float64("estimate", 0, "estimated hours")
	rootCmd.AddCommand(editCmd)
}

func runEdit(cmd *cobra.Command, args []string) error {
	p, err := editPatch(cmd)
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
	if err := a.eng.Update(ctx, id, p); err != nil {
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
		output.Messagef(w, "Updated task %s: %s", output.ShortID(id), t.Title)
	}
	return nil
}

// editPatch builds a patch from the flags that were set. Shared with bulk
// update.
func editPatch(cmd *cobra.Command) (task.Patch, error) {
	var p task.Patch
	flags := cmd.Flags()

	if flags.Changed("title") {
		v, _ := flags.GetString("title")
		if v == "" {
			return p, clierr.New(clierr.InvalidInput, "title must not be empty")
		}
		p.Title = &v
	}
	if flags.Changed("description") {
		v, _ := flags.GetString("description")
		p.Description = &v
	}
	if flags.Changed("priority") {
		v, _ := flags.GetString("priority")
		pr, err := task.ParsePriority(v)
		if err != nil {
			return p, err
		}
		p.Priority = &pr
	}
	if flags.Changed("tags") {
		v, _ := flags.GetStringSlice("tags")
		tags := cleanTags(v)
		p.Tags = &tags
	}
	if flags.Changed("due") && flags.Changed("clear-due") {
		return p, clierr.New(clierr.InvalidInput, "cannot use --due and --clear-due together")
	}
	if flags.Changed("due") {
		v, _ := flags.GetString("due")
		d, err := date.Parse(v)
		if err != nil {
			return p, task.ValidateDate("due", v, err)
		}
		p.DueDate = &d
	}
	if clear, _ := flags.GetBool("clear-due"); clear {
		p.ClearDueDate = true
	}
	if flags.Changed("estimate") {
		v, _ := flags.GetFloat64("estimate")
		if v < 0 {
			return p, clierr.New(clierr.InvalidInput, "estimate must not be negative")
		}
		p.EstimatedHours = &v
	}

	if p.IsZero() {
		return p, clierr.New(clierr.NoChanges, "no changes specified")
	}
	return p, nil
}
