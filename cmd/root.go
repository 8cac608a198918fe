// Package cmd implements the taskboard CLI commands.
package cmd

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/config"
	"github.com/antopolskiy/taskboard/internal/output"
)

// version is set at build time via ldflags.
var version = "dev"

// Global flags.
var (
	flagJSON      bool
	flagCompact   bool
	flagDir       string
	flagNoColor   bool
	flagTelemetry bool
)

var rootCmd = &cobra.Command{
	Use:   "taskboard",
	Short: "A three-column task board with WIP limits and time tracking",
	Long: `taskboard manages a To-Do / In Progress / Completed board. Moving a
task into In Progress starts its timer, moving it out stops the timer and
credits the elapsed minutes. The number of tasks in progress is capped by
the board's WIP limit.`,
	Version:       version,
	SilenceErrors: true,
	SilenceUsage:  true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		output.ConfigureColor()
		if flagNoColor {
			output.DisableColor()
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&flagJSON, "json", false, "output as JSON")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "compact", false, "compact one-line-per-record output")
	rootCmd.PersistentFlags().BoolVar(&flagCompact, "oneline", false, "alias for --compact")
	rootCmd.PersistentFlags().StringVar(&flagDir, "dir", "", "path to board directory")
	rootCmd.PersistentFlags().BoolVar(&flagNoColor, "no-color", false, "disable color output")
	rootCmd.PersistentFlags().BoolVar(&flagTelemetry, "telemetry", false, "export logs and metrics through OpenTelemetry to stderr")
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	_, err := rootCmd.ExecuteC()
	if err == nil {
		return
	}
	os.Exit(reportError(os.Stdout, os.Stderr, err))
}

// reportError writes err in the active output mode and returns the exit code.
func reportError(stdout, stderr io.Writer, err error) int {
	var silent *clierr.SilentError
	if errors.As(err, &silent) {
		return silent.Code
	}

	var cliErr *clierr.Error
	isCLI := errors.As(err, &cliErr)

	if outputFormat() == output.FormatJSON {
		if isCLI {
			output.JSONError(stdout, cliErr.Code, cliErr.Message, cliErr.Details)
			return cliErr.ExitCode()
		}
		output.JSONError(stdout, clierr.InternalError, err.Error(), nil)
		return 2 //nolint:mnd // exit code 2 for internal errors
	}

	fmt.Fprintln(stderr, "Error:", err)
	if isCLI {
		return cliErr.ExitCode()
	}
	return 1
}

// loadConfig finds and loads the board config, then applies TASKBOARD_*
// environment overrides.
func loadConfig() (*config.Config, error) {
	dir := flagDir
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return nil, fmt.Errorf("getting working directory: %w", err)
		}
		if dir, err = config.FindDir(cwd); err != nil {
			return nil, boardNotFound(err)
		}
	}

	cfg, err := config.Load(dir)
	if err != nil {
		return nil, boardNotFound(err)
	}
	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}
	return cfg, nil
}

func boardNotFound(err error) error {
	if errors.Is(err, config.ErrNotFound) {
		return clierr.New(clierr.BoardNotFound, err.Error())
	}
	return err
}

// outputFormat returns the detected output format from flags/env.
func outputFormat() output.Format {
	return output.Detect(flagJSON, flagCompact)
}
