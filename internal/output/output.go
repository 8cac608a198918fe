// Package output handles formatting CLI output as table, compact, or JSON.
package output

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"golang.org/x/term"
)

// Format represents an output format.
type Format int

const (
	// FormatAuto detects based on TTY.
	FormatAuto Format = iota
	// FormatJSON outputs JSON.
	FormatJSON
	// FormatTable outputs a human-readable table.
	FormatTable
	// FormatCompact outputs one line per record.
	FormatCompact
)

// isTerminalFn checks whether stdout is a terminal. Replaceable in tests.
var isTerminalFn = func() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

// Detect returns the format selected by flags, then TASKBOARD_OUTPUT, then
// the TTY: a terminal gets a table, a pipe gets JSON.
func Detect(jsonFlag, compactFlag bool) Format {
	if jsonFlag {
		return FormatJSON
	}
	if compactFlag {
		return FormatCompact
	}

	switch strings.ToLower(os.Getenv("TASKBOARD_OUTPUT")) {
	case "json":
		return FormatJSON
	case "table":
		return FormatTable
	case "compact", "oneline":
		return FormatCompact
	}

	if isTerminalFn() {
		return FormatTable
	}
	return FormatJSON
}

// ConfigureColor drops styling when NO_COLOR is set or stdout is not a
// terminal.
func ConfigureColor() {
	if _, ok := os.LookupEnv("NO_COLOR"); ok || !isTerminalFn() {
		lipgloss.SetColorProfile(termenv.Ascii)
		DisableColor()
	}
}
