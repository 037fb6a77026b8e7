package config

import (
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/m-mizutani/goerr/v2"
	"github.com/pelletier/go-toml/v2"
	"github.com/urfave/cli/v3"

	"github.com/gasyway/gasyway/pkg/service/worker"
)

// AppConfig represents the TOML configuration file
type AppConfig struct {
	Sync SyncConfig `toml:"sync"`
}

// SyncConfig controls the periodic reconciliation worker
type SyncConfig struct {
	// Interval is a Go duration string. Empty disables the worker.
	Interval string `toml:"interval"`
	AutoFix  bool   `toml:"auto_fix"`
	Notify   string `toml:"notify"`
}

// Validate checks if the SyncConfig is valid
func (s *SyncConfig) Validate() error {
	if s.Interval != "" {
		d, err := time.ParseDuration(s.Interval)
		if err != nil {
			return goerr.Wrap(ErrInvalidConfig, "sync.interval is not a duration",
				goerr.V(IntervalKey, s.Interval), goerr.V("cause", err.Error()))
		}
		if d <= 0 {
			return goerr.Wrap(ErrInvalidConfig, "sync.interval must be positive", goerr.V(IntervalKey, s.Interval))
		}
	}

	switch worker.NotifyMode(s.Notify) {
	case "", worker.NotifyAlways, worker.NotifyOnIssues:
	default:
		return goerr.Wrap(ErrInvalidConfig, "sync.notify must be 'always' or 'issues'", goerr.V(NotifyModeKey, s.Notify))
	}

	return nil
}

// IntervalDuration returns the parsed interval, zero when the worker is disabled
func (s *SyncConfig) IntervalDuration() time.Duration {
	if s.Interval == "" {
		return 0
	}
	d, err := time.ParseDuration(s.Interval)
	if err != nil {
		return 0
	}
	return d
}

// NotifyMode returns the configured mode, defaulting to worker.NotifyOnIssues
func (s *SyncConfig) NotifyMode() worker.NotifyMode {
	if s.Notify == "" {
		return worker.NotifyOnIssues
	}
	return worker.NotifyMode(s.Notify)
}

// Validate checks if the AppConfig is valid
func (a *AppConfig) Validate() error {
	if err := a.Sync.Validate(); err != nil {
		return goerr.Wrap(err, "invalid [sync] section")
	}
	return nil
}

// LoadAppConfiguration loads the application configuration from a TOML file
func LoadAppConfiguration(path string) (*AppConfig, error) {
	// #nosec G304 - path is expected to be provided by CLI argument
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, goerr.Wrap(ErrConfigNotFound, "config file does not exist", goerr.V(ConfigPathKey, path))
		}
		return nil, goerr.Wrap(err, "failed to read config file", goerr.V(ConfigPathKey, path))
	}

	var config AppConfig
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, goerr.Wrap(err, "failed to parse TOML config", goerr.V(ConfigPathKey, path))
	}

	if err := config.Validate(); err != nil {
		return nil, goerr.Wrap(err, "config validation failed", goerr.V(ConfigPathKey, path))
	}

	return &config, nil
}

// App holds the CLI flags that locate and override the configuration file
type App struct {
	path         string
	syncInterval string
	autoFix      bool
}

// Flags returns CLI flags for application configuration
func (a *App) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "config",
			Aliases:     []string{"c"},
			Usage:       "Path to TOML configuration file",
			Sources:     cli.EnvVars("GASYWAY_CONFIG"),
			Destination: &a.path,
		},
		&cli.StringFlag{
			Name:        "sync-interval",
			Usage:       "Run the reconciliation worker at this interval (e.g. 15m), overrides [sync] interval",
			Category:    "Sync",
			Sources:     cli.EnvVars("GASYWAY_SYNC_INTERVAL"),
			Destination: &a.syncInterval,
		},
		&cli.BoolFlag{
			Name:        "sync-auto-fix",
			Usage:       "Repair detected issues on every worker run, overrides [sync] auto_fix",
			Category:    "Sync",
			Sources:     cli.EnvVars("GASYWAY_SYNC_AUTO_FIX"),
			Destination: &a.autoFix,
		},
	}
}

// Configure loads the configuration file if one was given and applies flag overrides
func (a *App) Configure() (*AppConfig, error) {
	cfg := &AppConfig{}
	if a.path != "" {
		loaded, err := LoadAppConfiguration(a.path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if a.syncInterval != "" {
		cfg.Sync.Interval = a.syncInterval
	}
	if a.autoFix {
		cfg.Sync.AutoFix = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}
