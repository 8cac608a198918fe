package cmd

import (
	"fmt"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/board"
	"github.com/antopolskiy/taskboard/internal/exchange"
	"github.com/antopolskiy/taskboard/internal/output"
	"github.com/antopolskiy/taskboard/internal/task"
)

var exportCmd = &cobra.Command{
	Use:   "export",
	Short: "Export the board as JSON or YAML",
	Long: `Writes every task to stdout, or to --output, in column order. The
document can be loaded into another board with import.`,
	Args: cobra.NoArgs,
	RunE: runExport,
}

var importCmd = &cobra.Command{
	Use:   "import FILE",
	Short: "Import tasks from an exported document",
	Long: `Creates a task for every record in FILE ("-" reads stdin). Records get
new IDs and are appended to the end of their columns in document order.
Running timers are not carried over.`,
	Args: cobra.ExactArgs(1),
	RunE: runImport,
}

func init() {
	exportCmd.Flags().String("format", "", "document format: json or yaml (default from --output extension, else json)")
	exportCmd.Flags().StringP("output", "o", "", "write to file instead of stdout")
	importCmd.Flags().String("format", "", "document format: json or yaml (default from file extension)")
	rootCmd.AddCommand(exportCmd)
	rootCmd.AddCommand(importCmd)
}

func documentFormat(cmd *cobra.Command, path string) (exchange.Format, error) {
	if v, _ := cmd.Flags().GetString("format"); v != "" {
		return exchange.ParseFormat(v)
	}
	return exchange.FormatOf(path), nil
}

func runExport(cmd *cobra.Command, _ []string) error {
	path, _ := cmd.Flags().GetString("output")
	f, err := documentFormat(cmd, path)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	doc := exchange.Export(a.eng.Tasks(), time.Now())
	if path == "" || path == "-" {
		return exchange.Encode(cmd.OutOrStdout(), doc, f)
	}

	out, err := os.Create(path) //nolint:gosec // user-supplied output path
	if err != nil {
		return fmt.Errorf("creating %s: %w", path, err)
	}
	if err := exchange.Encode(out, doc, f); err != nil {
		_ = out.Close()
		return err
	}
	if err := out.Close(); err != nil {
		return fmt.Errorf("closing %s: %w", path, err)
	}

	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, map[string]any{"status": "exported", "path": path, "tasks": len(doc.Tasks)})
	}
	output.Messagef(w, "Exported %d tasks to %s", len(doc.Tasks), path)
	return nil
}

func runImport(cmd *cobra.Command, args []string) error {
	path := args[0]
	f, err := documentFormat(cmd, path)
	if err != nil {
		return err
	}

	var r io.Reader = cmd.InOrStdin()
	if path != "-" {
		in, err := os.Open(path) //nolint:gosec // user-supplied input path
		if err != nil {
			return fmt.Errorf("opening %s: %w", path, err)
		}
		defer in.Close()
		r = in
	}
	tasks, err := exchange.Decode(r, f)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	a, err := openApp(ctx)
	if err != nil {
		return err
	}
	defer a.close(ctx)

	res, err := exchange.Import(ctx, a.eng, tasks)
	for _, t := range res.Created {
		board.LogMutation(a.cfg.Dir(), "import", t.ID, t.Title)
	}
	if err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		demoted := make([]string, 0, len(res.Demoted))
		for _, t := range res.Demoted {
			demoted = append(demoted, t.ID)
		}
		return output.JSON(w, map[string]any{"status": "imported", "tasks": len(res.Created), "demoted": demoted})
	}
	output.Messagef(w, "Imported %d tasks", len(res.Created))
	if n := len(res.Demoted); n > 0 {
		output.Messagef(w, "%d in-progress tasks went to %s: WIP limit reached", n, task.StatusTodo.Label())
	}
	return nil
}
