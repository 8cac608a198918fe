package cmd

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/output"
)

var deleteCmd = &cobra.Command{
	Use:     "delete ID",
	Aliases: []string{"rm"},
	Short:   "Delete a task",
	Long: `Deletes a task. A running timer is discarded without crediting time.
Prompts for confirmation in an interactive terminal unless --force is set.`,
	Args: cobra.ExactArgs(1),
	RunE: runDelete,
}

func init() {
	deleteCmd.Flags().BoolP("force", "f", false, "skip confirmation prompt")
	rootCmd.AddCommand(deleteCmd)
}

// stdinIsTerminal reports whether confirmation prompts can be shown.
// Replaceable in tests.
var stdinIsTerminal = func() bool {
	return term.IsTerminal(int(os.Stdin.Fd()))
}

func runDelete(cmd *cobra.Command, args []string) error {
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

	force, _ := cmd.Flags().GetBool("force")
	if !force {
		ok, err := confirm(cmd, fmt.Sprintf("Delete task %s %q?", output.ShortID(id), t.Title))
		if err != nil || !ok {
			return err
		}
	}

	if err := a.eng.Delete(ctx, id); err != nil {
		return err
	}

	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, map[string]any{
			"status": "deleted",
			"id":     id,
			"title":  t.Title,
		})
	}
	output.Messagef(w, "Deleted task %s: %s", output.ShortID(id), t.Title)
	return nil
}

// confirm asks a yes/no question on stderr. Without a terminal it fails
// with CONFIRMATION_REQUIRED.
func confirm(cmd *cobra.Command, question string) (bool, error) {
	if !stdinIsTerminal() {
		return false, clierr.New(clierr.ConfirmationReq,
			"cannot prompt for confirmation (not a terminal); use --force")
	}
	return askYesNo(cmd.InOrStdin(), cmd.ErrOrStderr(), question), nil
}

func askYesNo(in io.Reader, out io.Writer, question string) bool {
	fmt.Fprintf(out, "%s [y/N] ", question)
	answer, _ := bufio.NewReader(in).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "y" && answer != "yes" {
		fmt.Fprintln(out, "Canceled.")
		return false
	}
	return true
}
