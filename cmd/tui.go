package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/config"
	"github.com/antopolskiy/taskboard/internal/store"
	"github.com/antopolskiy/taskboard/internal/tui"
	"github.com/antopolskiy/taskboard/internal/watcher"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Open the interactive board",
	Long: `Launches the interactive terminal board. Running timers tick while it is
open, and a file-backed board reloads when task files change on disk.

Navigate with arrow keys or h/j/l/k, press 1-3 to move the focused task,
m for selection mode, and ? for help.`,
	Args: cobra.NoArgs,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		if !clierr.HasCode(err, clierr.BoardNotFound) {
			return err
		}
		if cfg, err = offerInitTUI(); err != nil {
			return err
		}
	}

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	a, err := openAppWith(ctx, cfg)
	if err != nil {
		return err
	}
	defer a.close(context.WithoutCancel(ctx))

	go a.eng.Timers().Run(ctx)

	model := tui.NewBoard(ctx, a.eng, cfg)
	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(ctx))

	if fs, ok := a.store.(*store.FileStore); ok {
		go startTUIWatcher(ctx, fs.Paths(), p, a)
	}

	_, err = p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
		return nil
	}
	return err
}

// offerInitTUI asks to create a board in the working directory.
func offerInitTUI() (*config.Config, error) {
	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("getting working directory: %w", err)
	}
	name := filepath.Base(cwd)
	dir := filepath.Join(cwd, config.DefaultDir)

	if !stdinIsTerminal() {
		return nil, clierr.New(clierr.BoardNotFound, "no task board found (run 'taskboard init' to create one)")
	}
	fmt.Fprintf(os.Stderr, "No task board found. Create one in %s? [Y/n] ", dir)
	answer, _ := bufio.NewReader(os.Stdin).ReadString('\n')
	answer = strings.TrimSpace(strings.ToLower(answer))
	if answer != "" && answer != "y" && answer != "yes" {
		return nil, clierr.New(clierr.BoardNotFound, "no task board found (run 'taskboard init' to create one)")
	}

	cfg, err := config.Init(dir, name)
	if err != nil {
		return nil, fmt.Errorf("initializing board: %w", err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	fmt.Fprintf(os.Stderr, "Board %q created in %s\n", name, dir)
	return cfg, nil
}

func startTUIWatcher(ctx context.Context, paths []string, p *tea.Program, a *app) {
	w, err := watcher.New(paths, func() {
		p.Send(tui.ReloadMsg{})
	})
	if err != nil {
		a.tel.Logger.Warn("live reload disabled", "err", err)
		return
	}
	defer w.Close()
	w.Run(ctx, func(err error) {
		a.tel.Logger.Warn("file watcher error", "err", err)
	})
}
