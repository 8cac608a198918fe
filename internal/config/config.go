package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"go.yaml.in/yaml/v3"

	"github.com/antopolskiy/taskboard/internal/clierr"
	"github.com/antopolskiy/taskboard/internal/task"
)

const (
	fileMode = 0o600
	dirMode  = 0o750
)

// Sentinel errors.
var (
	ErrNotFound = errors.New("no task board found (run 'taskboard init' to create one)")
	ErrInvalid  = errors.New("invalid config")
)

// Config represents the task board configuration.
type Config struct {
	Version      int            `yaml:"version"`
	Board        BoardConfig    `yaml:"board"`
	ProjectID    string         `yaml:"project_id"`
	TasksDir     string         `yaml:"tasks_dir"`
	WIPLimit     int            `yaml:"wip_limit"`
	TickInterval string         `yaml:"tick_interval"`
	Defaults     DefaultsConfig `yaml:"defaults"`
	Store        StoreConfig    `yaml:"store"`
	Log          LogConfig      `yaml:"log"`
	TUI          TUIConfig      `yaml:"tui"`

	// dir is the absolute path to the board directory (not serialized).
	dir string `yaml:"-"`
}

// BoardConfig holds board metadata.
type BoardConfig struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description,omitempty"`
}

// DefaultsConfig holds default values for new tasks.
type DefaultsConfig struct {
	Priority string `yaml:"priority"`
}

// StoreConfig selects the persistence adapter.
type StoreConfig struct {
	Driver string `yaml:"driver"`
	DSN    string `yaml:"dsn,omitempty"`
}

// LogConfig controls the structured logger.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// TUIConfig holds terminal UI preferences.
type TUIConfig struct {
	TitleLines int `yaml:"title_lines"`
}

// Dir returns the absolute path to the board directory.
func (c *Config) Dir() string {
	return c.dir
}

// TasksPath returns the absolute path to the tasks directory.
func (c *Config) TasksPath() string {
	return filepath.Join(c.dir, c.TasksDir)
}

// ConfigPath returns the absolute path to the config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.dir, ConfigFileName)
}

// NewDefault creates a Config with default values.
func NewDefault(name string) *Config {
	return &Config{
		Version:      CurrentVersion,
		Board:        BoardConfig{Name: name},
		ProjectID:    task.GenerateSlug(name),
		TasksDir:     DefaultTasksDir,
		WIPLimit:     DefaultWIPLimit,
		TickInterval: DefaultTickInterval,
		Defaults:     DefaultsConfig{Priority: DefaultPriority},
		Store:        StoreConfig{Driver: DefaultStoreDriver},
		Log:          LogConfig{Level: DefaultLogLevel, Format: DefaultLogFormat},
		TUI:          TUIConfig{TitleLines: DefaultTitleLines},
	}
}

// SetDir sets the board directory path on the config.
func (c *Config) SetDir(dir string) {
	c.dir = dir
}

// Validate checks the config for errors.
func (c *Config) Validate() error {
	if c.Version != CurrentVersion {
		return fmt.Errorf("%w: unsupported version %d (expected %d)", ErrInvalid, c.Version, CurrentVersion)
	}
	if c.Board.Name == "" {
		return fmt.Errorf("%w: board.name is required", ErrInvalid)
	}
	if c.ProjectID == "" {
		return fmt.Errorf("%w: project_id is required", ErrInvalid)
	}
	if c.TasksDir == "" {
		return fmt.Errorf("%w: tasks_dir is required", ErrInvalid)
	}
	if c.WIPLimit < 0 {
		return fmt.Errorf("%w: wip_limit must be >= 0", ErrInvalid)
	}
	if _, err := task.ParsePriority(c.Defaults.Priority); err != nil {
		return fmt.Errorf("%w: default priority %q is not a known priority", ErrInvalid, c.Defaults.Priority)
	}
	if d, err := time.ParseDuration(c.TickInterval); err != nil || d <= 0 {
		return fmt.Errorf("%w: invalid tick_interval %q", ErrInvalid, c.TickInterval)
	}
	if err := c.validateStore(); err != nil {
		return err
	}
	if err := c.validateLog(); err != nil {
		return err
	}
	if c.TUI.TitleLines < 1 || c.TUI.TitleLines > MaxTitleLines {
		return fmt.Errorf("%w: tui.title_lines must be between 1 and %d", ErrInvalid, MaxTitleLines)
	}
	return nil
}

func (c *Config) validateStore() error {
	switch c.Store.Driver {
	case DriverFile, DriverMemory:
		return nil
	case DriverPostgres:
		if c.Store.DSN == "" {
			return fmt.Errorf("%w: store.dsn is required for the postgres driver", ErrInvalid)
		}
		return nil
	default:
		return fmt.Errorf("%w: unknown store.driver %q", ErrInvalid, c.Store.Driver)
	}
}

func (c *Config) validateLog() error {
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log.level %q", ErrInvalid, c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log.format %q", ErrInvalid, c.Log.Format)
	}
	return nil
}

// Tick returns the timer tick interval. Falls back to one minute when the
// field is unparseable.
func (c *Config) Tick() time.Duration {
	d, err := time.ParseDuration(c.TickInterval)
	if err != nil || d <= 0 {
		return time.Minute
	}
	return d
}

// TitleLines returns the configured card title lines, clamped to a valid range.
func (c *Config) TitleLines() int {
	if c.TUI.TitleLines < 1 {
		return DefaultTitleLines
	}
	if c.TUI.TitleLines > MaxTitleLines {
		return MaxTitleLines
	}
	return c.TUI.TitleLines
}

// ApplyEnv overrides settings from TASKBOARD_* variables. lookup is usually
// os.LookupEnv.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup("TASKBOARD_STORE_DRIVER"); ok && v != "" {
		c.Store.Driver = v
	}
	if v, ok := lookup("TASKBOARD_DSN"); ok && v != "" {
		c.Store.DSN = v
	}
	if v, ok := lookup("TASKBOARD_LOG_LEVEL"); ok && v != "" {
		c.Log.Level = v
	}
	if v, ok := lookup("TASKBOARD_LOG_FORMAT"); ok && v != "" {
		c.Log.Format = v
	}
	if v, ok := lookup("TASKBOARD_WIP_LIMIT"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%w: TASKBOARD_WIP_LIMIT=%q is not a number", ErrInvalid, v)
		}
		c.WIPLimit = n
	}
	return c.Validate()
}

// Save writes the config to its config file.
func (c *Config) Save() error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(c.ConfigPath(), data, fileMode)
}

// Init creates a new board directory with a default config and an empty
// tasks directory.
func Init(dir, name string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}
	if _, err := os.Stat(filepath.Join(absDir, ConfigFileName)); err == nil {
		return nil, clierr.Newf(clierr.BoardAlreadyExists, "board already exists in %s", absDir).
			WithDetails(map[string]any{"dir": absDir})
	}

	cfg := NewDefault(name)
	cfg.dir = absDir
	if err := os.MkdirAll(cfg.TasksPath(), dirMode); err != nil {
		return nil, fmt.Errorf("creating tasks directory: %w", err)
	}
	if err := cfg.Save(); err != nil {
		return nil, fmt.Errorf("saving config: %w", err)
	}
	return cfg, nil
}

// Load reads and validates a config from the given board directory.
func Load(dir string) (*Config, error) {
	absDir, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolving path: %w", err)
	}

	path := filepath.Join(absDir, ConfigFileName)
	data, err := os.ReadFile(path) //nolint:gosec // config path from trusted source
	if err != nil {
		if os.IsNotExist(err) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.dir = absDir

	// Migrate old config versions forward before validating.
	if err := migrate(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// FindDir walks upward from startDir looking for a board directory
// containing config.yml. Returns the absolute path to the board directory.
func FindDir(startDir string) (string, error) {
	absStart, err := filepath.Abs(startDir)
	if err != nil {
		return "", fmt.Errorf("resolving path: %w", err)
	}

	dir := absStart
	for {
		candidate := filepath.Join(dir, DefaultDir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return filepath.Join(dir, DefaultDir), nil
		}

		// Also check if we're inside the board directory itself.
		candidate = filepath.Join(dir, ConfigFileName)
		if _, err := os.Stat(candidate); err == nil {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", clierr.New(clierr.BoardNotFound,
				"no task board found (run 'taskboard init' to create one)")
		}
		dir = parent
	}
}
