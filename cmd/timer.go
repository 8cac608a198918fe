package cmd

import (
	"time"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/output"
)

var timerCmd = &cobra.Command{
	Use:   "timer",
	Short: "Start, stop, or inspect task timers",
	Long: `Task timers run while a task is In Progress. These commands start or
stop a timer without moving the task. Stopping credits the elapsed whole
minutes to the task's time spent.`,
}

var timerStartCmd = &cobra.Command{
	Use:   "start ID",
	Short: "Start a task's timer",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerStart,
}

var timerStopCmd = &cobra.Command{
	Use:   "stop ID",
	Short: "Stop a task's timer and credit the elapsed minutes",
	Args:  cobra.ExactArgs(1),
	RunE:  runTimerStop,
}

var timerStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "List running timers",
	Args:  cobra.NoArgs,
	RunE:  runTimerStatus,
}

func init() {
	timerCmd.AddCommand(timerStartCmd, timerStopCmd, timerStatusCmd)
	rootCmd.AddCommand(timerCmd)
}

func runTimerStart(cmd *cobra.Command, args []string) error {
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
	wasRunning := a.eng.Timers().Running(id)
	if err := a.eng.StartTimer(ctx, id); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, map[string]any{"id": id, "running": true, "changed": !wasRunning})
	}
	if wasRunning {
		output.Messagef(w, "Timer already running for task %s", output.ShortID(id))
		return nil
	}
	output.Messagef(w, "Started timer for task %s", output.ShortID(id))
	return nil
}

func runTimerStop(cmd *cobra.Command, args []string) error {
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
	wasRunning := a.eng.Timers().Running(id)
	minutes, err := a.eng.StopTimer(ctx, id)
	if err != nil {
		return err
	}
	spent := 0
	if t := a.eng.Task(id); t != nil {
		spent = t.TimeSpentMinutes
	}

	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, map[string]any{
			"id":                 id,
			"running":            false,
			"changed":            wasRunning,
			"credited_minutes":   minutes,
			"time_spent_minutes": spent,
		})
	}
	if !wasRunning {
		output.Messagef(w, "No timer running for task %s", output.ShortID(id))
		return nil
	}
	output.Messagef(w, "Stopped timer for task %s: +%s (total %s)",
		output.ShortID(id), output.FormatMinutes(minutes), output.FormatMinutes(spent))
	return nil
}

func runTimerStatus(cmd *cobra.Command, _ []string) error {
	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	rows := []output.TimerRow{}
	for _, s := range a.eng.Timers().Sessions() {
		t := a.eng.Task(s.TaskID)
		if t == nil {
			continue
		}
		rows = append(rows, output.TimerRow{
			ID:             s.TaskID,
			Title:          t.Title,
			Since:          s.Start,
			ElapsedSeconds: int64(a.eng.Elapsed(s.TaskID) / time.Second),
			SpentMinutes:   t.TimeSpentMinutes,
		})
	}

	w := cmd.OutOrStdout()
	switch outputFormat() {
	case output.FormatJSON:
		return output.JSON(w, rows)
	case output.FormatCompact:
		output.TimerCompact(w, rows)
	default:
		output.TimerTable(w, rows)
	}
	return nil
}
