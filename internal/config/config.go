// Package config handles configuration loading and validation for kanakey.
package config

import (
	"path/filepath"

	"kanakey/internal/logging"
	"kanakey/internal/settings"
)

// Version is the current configuration schema version.
const Version = 2

// Config is the complete kanakey configuration.
type Config struct {
	// Version is the configuration schema version.
	Version int `toml:"version" json:"version" yaml:"version"`

	// Input holds keystroke interpretation preferences.
	Input InputConfig `toml:"input" json:"input" yaml:"input"`

	// Conversion holds composition preferences.
	Conversion ConversionConfig `toml:"conversion" json:"conversion" yaml:"conversion"`

	// Journal configures the classification journal.
	Journal JournalConfig `toml:"journal" json:"journal" yaml:"journal"`

	// Logging configures logging behavior.
	Logging LoggingConfig `toml:"logging" json:"logging" yaml:"logging"`

	// IBus configures the Linux IBus engine.
	IBus IBusConfig `toml:"ibus" json:"ibus" yaml:"ibus"`
}

// InputConfig holds the preferences the classifier reads.
type InputConfig struct {
	// HalfWidthSpace makes the space bar type U+0020 in Japanese mode.
	HalfWidthSpace bool `toml:"half_width_space" json:"half_width_space" yaml:"half_width_space"`

	// CommaPeriod types ，． instead of 、。.
	CommaPeriod bool `toml:"comma_period" json:"comma_period" yaml:"comma_period"`

	// Backslash types a backslash on the yen key.
	Backslash bool `toml:"backslash" json:"backslash" yaml:"backslash"`
}

// ConversionConfig holds composition preferences.
type ConversionConfig struct {
	Live       bool `toml:"live" json:"live" yaml:"live"`
	Suggestion bool `toml:"suggestion" json:"suggestion" yaml:"suggestion"`
}

// JournalConfig configures the classification journal.
type JournalConfig struct {
	// Enabled turns on recording.
	Enabled bool `toml:"enabled" json:"enabled" yaml:"enabled"`

	// Path is the SQLite database file.
	Path string `toml:"path" json:"path" yaml:"path"`

	// MaxEntries bounds the number of stored rows; 0 keeps everything.
	MaxEntries int `toml:"max_entries" json:"max_entries" yaml:"max_entries"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	// Level is the log level: "debug", "info", "warn", "error".
	Level string `toml:"level" json:"level" yaml:"level"`

	// Format is the log format: "text" or "json".
	Format string `toml:"format" json:"format" yaml:"format"`

	// Output is the log output: "stdout", "stderr", "file" or "both".
	Output string `toml:"output" json:"output" yaml:"output"`

	// FilePath is the path to the log file.
	FilePath string `toml:"file_path" json:"file_path" yaml:"file_path"`

	// MaxSizeMB is the maximum log file size before rotation.
	MaxSizeMB int `toml:"max_size_mb" json:"max_size_mb" yaml:"max_size_mb"`

	// MaxBackups is the number of old log files to keep.
	MaxBackups int `toml:"max_backups" json:"max_backups" yaml:"max_backups"`

	// RedactInput keeps typed characters out of logs and the journal.
	RedactInput bool `toml:"redact_input" json:"redact_input" yaml:"redact_input"`
}

// IBusConfig configures the IBus engine registration.
type IBusConfig struct {
	EngineName string `toml:"engine_name" json:"engine_name" yaml:"engine_name"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Version: Version,
		Journal: JournalConfig{
			Path:       filepath.Join(PlatformDataDir(), "journal.db"),
			MaxEntries: 10000,
		},
		Logging: LoggingConfig{
			Level:       "info",
			Format:      "text",
			Output:      "stderr",
			FilePath:    filepath.Join(PlatformLogDir(), "kanakey.log"),
			MaxSizeMB:   10,
			MaxBackups:  3,
			RedactInput: true,
		},
		IBus: IBusConfig{
			EngineName: "kanakey",
		},
	}
}

// ConfigPath returns the default configuration file path.
func ConfigPath() string {
	if path := FindConfigFile(); path != "" {
		return path
	}
	return filepath.Join(PlatformConfigDir(), "config.toml")
}

// Clone returns a copy of the configuration.
func (c *Config) Clone() *Config {
	clone := *c
	return &clone
}

// Settings returns the classifier preferences as a snapshot.
func (c *Config) Settings() settings.Snapshot {
	return settings.Snapshot{
		HalfWidthSpace: c.Input.HalfWidthSpace,
		CommaPeriod:    c.Input.CommaPeriod,
		Backslash:      c.Input.Backslash,
		LiveConversion: c.Conversion.Live,
		Suggestion:     c.Conversion.Suggestion,
	}
}

// LoggerConfig converts the logging section. Unparseable level or format
// values have already been reported by validation and fall back to the
// logging defaults here.
func (c *Config) LoggerConfig() *logging.Config {
	lc := logging.DefaultConfig()
	if level, err := logging.ParseLevel(c.Logging.Level); err == nil {
		lc.Level = level
	}
	if format, err := logging.ParseFormat(c.Logging.Format); err == nil {
		lc.Format = format
	}
	lc.Output = c.Logging.Output
	lc.FilePath = c.Logging.FilePath
	lc.MaxSize = int64(c.Logging.MaxSizeMB)
	lc.MaxBackups = c.Logging.MaxBackups
	lc.RedactInput = c.Logging.RedactInput
	return lc
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	return ValidateConfig(c)
}
