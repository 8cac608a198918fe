package config

import "fmt"

// upgrades[i] moves a version i+1 config to version i+2.
var upgrades = []func(*Config){
	addTickAndWIP,
	addStoreLogTUI,
}

// migrate brings cfg up to CurrentVersion in place.
func migrate(cfg *Config) error {
	switch {
	case cfg.Version == CurrentVersion:
		return nil
	case cfg.Version > CurrentVersion:
		return fmt.Errorf("%w: config version %d is newer than supported version %d (upgrade taskboard)",
			ErrInvalid, cfg.Version, CurrentVersion)
	case cfg.Version < 1 || cfg.Version > len(upgrades):
		return fmt.Errorf("%w: config version %d is invalid", ErrInvalid, cfg.Version)
	}
	for _, up := range upgrades[cfg.Version-1 : CurrentVersion-1] {
		up(cfg)
	}
	cfg.Version = CurrentVersion
	return nil
}

// addTickAndWIP fills the v2 fields. A v1 wip_limit of 0 meant the
// default, not unlimited.
func addTickAndWIP(cfg *Config) {
	if cfg.TickInterval == "" {
		cfg.TickInterval = DefaultTickInterval
	}
	if cfg.WIPLimit == 0 {
		cfg.WIPLimit = DefaultWIPLimit
	}
}

func addStoreLogTUI(cfg *Config) {
	if cfg.Store.Driver == "" {
		cfg.Store.Driver = DefaultStoreDriver
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}
	if cfg.TUI.TitleLines == 0 {
		cfg.TUI.TitleLines = DefaultTitleLines
	}
}
