// Package config handles task board configuration.
package config

// Default values for a new board.
var (
	DefaultDir      = "taskboard"
	DefaultTasksDir = "tasks"

	DefaultPriority     = "medium"
	DefaultTickInterval = "60s"
	DefaultStoreDriver  = DriverFile
	DefaultLogLevel     = "info"
	DefaultLogFormat    = "text"
)

const (
	// ConfigFileName is the name of the config file within the board directory.
	ConfigFileName = "config.yml"

	// CurrentVersion is the current config schema version.
	CurrentVersion = 3

	// DefaultWIPLimit caps the In-Progress column.
	DefaultWIPLimit = 3

	// DefaultTitleLines is the default number of title lines per card.
	DefaultTitleLines = 1

	// MaxTitleLines is the largest supported tui.title_lines.
	MaxTitleLines = 3
)

// Store drivers.
const (
	DriverFile     = "file"
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)
