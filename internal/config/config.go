// Package config handles configuration loading, validation, and management
// for entrytrack.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"entrytrack/internal/recent"
)

// Version is the current configuration schema version.
const Version = 1

// Config holds the complete entrytrack configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version"`

	// Recent configures the recent-input buffer.
	Recent RecentConfig `toml:"recent" json:"recent"`

	// Diagnostics configures diagnostics event handling.
	Diagnostics DiagnosticsConfig `toml:"diagnostics" json:"diagnostics"`

	// Storage configures the analytics store.
	Storage StorageConfig `toml:"storage" json:"storage"`

	// Logging configures log output.
	Logging LoggingConfig `toml:"logging" json:"logging"`
}

// RecentConfig holds recent-input buffer configuration.
type RecentConfig struct {
	// Capacity is the number of keystrokes retained.
	Capacity int `toml:"capacity" json:"capacity"`
}

// DiagnosticsConfig holds diagnostics configuration.
type DiagnosticsConfig struct {
	// Verbose enables per-operation trace events.
	Verbose bool `toml:"verbose" json:"verbose"`

	// Persist enables the SQLite analytics sink.
	Persist bool `toml:"persist" json:"persist"`
}

// StorageConfig holds analytics store configuration.
type StorageConfig struct {
	// Path is the path to the analytics database file.
	Path string `toml:"path" json:"path"`
}

// LoggingConfig holds log output configuration.
type LoggingConfig struct {
	// Level is the minimum log level: "debug", "info", "warn", or "error".
	Level string `toml:"level" json:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format"`

	// Output is "stderr", "stdout", or "file".
	Output string `toml:"output" json:"output"`

	// FilePath is the log file path when Output is "file".
	FilePath string `toml:"file_path" json:"file_path"`
}

// DefaultDir returns the entrytrack configuration directory.
func DefaultDir() string {
	if dir := os.Getenv("ENTRYTRACK_DIR"); dir != "" {
		return dir
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return ".entrytrack"
	}
	return filepath.Join(homeDir, ".entrytrack")
}

// DefaultPath returns the default config file path.
func DefaultPath() string {
	return filepath.Join(DefaultDir(), "config.toml")
}

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Recent: RecentConfig{
			Capacity: recent.DefaultCapacity,
		},
		Diagnostics: DiagnosticsConfig{
			Verbose: false,
			Persist: false,
		},
		Storage: StorageConfig{
			Path: filepath.Join(DefaultDir(), "analytics.db"),
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
	}
}

// Load reads the config file at path, or the default path when empty.
// A missing file yields the default configuration.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return cfg, nil
		}
		return nil, fmt.Errorf("read config: %w", err)
	}

	if err := toml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the config to path, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if path == "" {
		path = DefaultPath()
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_TRUNC|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("create config file: %w", err)
	}
	defer f.Close()

	if err := toml.NewEncoder(f).Encode(c); err != nil {
		return fmt.Errorf("encode config: %w", err)
	}
	return nil
}

// Validate checks the configuration for invalid values.
func (c *Config) Validate() error {
	if c.Recent.Capacity <= 0 {
		return fmt.Errorf("recent.capacity must be positive, got %d", c.Recent.Capacity)
	}

	switch c.Logging.Level {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("logging.level: unknown level %q", c.Logging.Level)
	}

	switch c.Logging.Format {
	case "text", "json":
	default:
		return fmt.Errorf("logging.format: unknown format %q", c.Logging.Format)
	}

	switch c.Logging.Output {
	case "stderr", "stdout":
	case "file":
		if c.Logging.FilePath == "" {
			return errors.New("logging.file_path required when output is \"file\"")
		}
	default:
		return fmt.Errorf("logging.output: unknown output %q", c.Logging.Output)
	}

	if c.Diagnostics.Persist && c.Storage.Path == "" {
		return errors.New("storage.path required when diagnostics.persist is enabled")
	}

	return nil
}
