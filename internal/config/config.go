// Package config loads director configuration through viper.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/opencode-ai/director/internal/logging"
)

// Config is the resolved application configuration.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Targets  TargetsConfig  `mapstructure:"targets"`
	Replay   ReplayConfig   `mapstructure:"replay"`
	Logging  LoggingConfig  `mapstructure:"logging"`

	// Source is the config file that was read, empty when none was found.
	Source string `mapstructure:"-"`
}

// DatabaseConfig locates the action store.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// TargetsConfig locates the target id list.
type TargetsConfig struct {
	Path string `mapstructure:"path"`
}

// ReplayConfig tunes the replay engine.
type ReplayConfig struct {
	// ActionDelay is the pause after every dispatched action.
	ActionDelay time.Duration `mapstructure:"action_delay"`

	// Transition is the pointer travel time for move and drag actions.
	Transition time.Duration `mapstructure:"transition"`

	// StopKey is the global key that interrupts a run.
	StopKey string `mapstructure:"stop_key"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// DefaultConfig returns the built-in defaults.
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{Path: DefaultDatabasePath()},
		Targets:  TargetsConfig{Path: "target.csv"},
		Replay: ReplayConfig{
			ActionDelay: 500 * time.Millisecond,
			Transition:  500 * time.Millisecond,
			StopKey:     "esc",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: logging.FormatConsole,
		},
	}
}

// DefaultDatabasePath returns the per-user database location.
func DefaultDatabasePath() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "director", "automation.db")
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return "automation.db"
	}
	return filepath.Join(home, ".local", "share", "director", "automation.db")
}

// Validate checks the resolved configuration.
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Database.Path) == "" {
		errs = append(errs, errors.New("database.path is required"))
	}
	if c.Replay.ActionDelay < 0 {
		errs = append(errs, fmt.Errorf("replay.action_delay must not be negative (got %s)", c.Replay.ActionDelay))
	}
	if c.Replay.Transition < 0 {
		errs = append(errs, fmt.Errorf("replay.transition must not be negative (got %s)", c.Replay.Transition))
	}
	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		errs = append(errs, fmt.Errorf("logging.level: %w", err))
	}
	switch strings.ToLower(c.Logging.Format) {
	case "", logging.FormatConsole, logging.FormatJSON:
	default:
		errs = append(errs, fmt.Errorf("logging.format: unknown format %q", c.Logging.Format))
	}
	return errors.Join(errs...)
}

// ExpandPath resolves a leading ~ to the user's home directory.
func ExpandPath(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}
