package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/config"
	"github.com/antopolskiy/taskboard/internal/output"
)

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a new task board",
	Long: `Creates a board directory with a default config.yml and an empty tasks
directory. By default the board is created in ./taskboard.`,
	Args: cobra.NoArgs,
	RunE: runInit,
}

func init() {
	initCmd.Flags().String("name", "", "board name (default: current directory name)")
	initCmd.Flags().Int("wip-limit", 0, "maximum tasks in progress (default from config)")
	initCmd.Flags().Bool("gitignore", false, "add the board directory to .gitignore")
	rootCmd.AddCommand(initCmd)
}

func runInit(cmd *cobra.Command, _ []string) error {
	dir := flagDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("getting working directory: %w", err)
		}
		dir = filepath.Join(cwd, config.DefaultDir)
	}

	name, _ := cmd.Flags().GetString("name")
	if name == "" {
		abs, err := filepath.Abs(dir)
		if err != nil {
			return fmt.Errorf("resolving path: %w", err)
		}
		name = filepath.Base(filepath.Dir(abs))
	}

	cfg, err := config.Init(dir, name)
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("wip-limit") {
		cfg.WIPLimit, _ = cmd.Flags().GetInt("wip-limit")
		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := cfg.Save(); err != nil {
			return err
		}
	}
	if gi, _ := cmd.Flags().GetBool("gitignore"); gi {
		if err := ensureGitignoreEntry(cfg.Dir()); err != nil {
			return err
		}
	}

	w := cmd.OutOrStdout()
	if outputFormat() == output.FormatJSON {
		return output.JSON(w, map[string]any{
			"status":    "initialized",
			"name":      cfg.Board.Name,
			"dir":       cfg.Dir(),
			"wip_limit": cfg.WIPLimit,
		})
	}
	output.Messagef(w, "Board %q created in %s", cfg.Board.Name, cfg.Dir())
	return nil
}

// ensureGitignoreEntry appends the board directory to the .gitignore next
// to it unless an equivalent entry is already present.
func ensureGitignoreEntry(boardDir string) error {
	path := filepath.Join(filepath.Dir(boardDir), ".gitignore")
	entry := filepath.Base(boardDir) + "/"

	data, err := os.ReadFile(path) //nolint:gosec // sibling of the board directory
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading .gitignore: %w", err)
	}
	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == entry || line == strings.TrimSuffix(entry, "/") || line == "/"+entry {
			return nil
		}
	}

	var b strings.Builder
	b.Write(data)
	if len(data) > 0 && !strings.HasSuffix(string(data), "\n") {
		b.WriteByte('\n')
	}
	b.WriteString(entry + "\n")
	if err := os.WriteFile(path, []byte(b.String()), 0o600); err != nil { //nolint:mnd // file mode
		return fmt.Errorf("writing .gitignore: %w", err)
	}
	return nil
}
