// Package config provides configuration management for dircomp.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/viper"

	"github.com/jamesainslie/dircomp/pkg/dircomp/compare"
	"github.com/jamesainslie/dircomp/pkg/dircomp/types"
)

// CompareConfig carries the comparator thresholds in human-readable
// size form.
type CompareConfig struct {
	SmallFileMax string `mapstructure:"small_file_max"`
	HashFileMax  string `mapstructure:"hash_file_max"`
	PrefixBytes  string `mapstructure:"prefix_bytes"`
	TrustModTime bool   `mapstructure:"trust_mod_time"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
	Path  string `mapstructure:"path"`
}

// HistoryConfig configures the copy-operation history.
type HistoryConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// Config represents the application configuration.
type Config struct {
	Filter  string        `mapstructure:"filter"`
	Exclude []string      `mapstructure:"exclude"`
	Watch   bool          `mapstructure:"watch"`
	Compare CompareConfig `mapstructure:"compare"`
	History HistoryConfig `mapstructure:"history"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/dircomp/config.yaml
//   - $HOME/.config/dircomp/config.yaml
//
// Environment variables are prefixed with DIRCOMP_
// (e.g., DIRCOMP_COMPARE_TRUST_MOD_TIME).
func Load() (*Config, error) {
	return LoadFile("")
}

// LoadFile is Load with an explicit config file path. An empty path
// falls back to the standard search locations; a non-empty path must
// exist and parse.
func LoadFile(file string) (*Config, error) {
	v := viper.New()

	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			v.AddConfigPath(filepath.Join(xdgConfigHome, "dircomp"))
		}
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return nil, fmt.Errorf("failed to get user home directory: %w", err)
		}
		v.AddConfigPath(filepath.Join(homeDir, ".config", "dircomp"))
	}

	v.SetEnvPrefix("DIRCOMP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("filter", DefaultFilter)
	v.SetDefault("exclude", DefaultExclusions)
	v.SetDefault("watch", false)
	v.SetDefault("compare.small_file_max", DefaultSmallFileMax)
	v.SetDefault("compare.hash_file_max", DefaultHashFileMax)
	v.SetDefault("compare.prefix_bytes", DefaultPrefixBytes)
	v.SetDefault("compare.trust_mod_time", false)
	v.SetDefault("history.enabled", true)
	v.SetDefault("history.path", "") // Empty means use manifest.DefaultDir
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.path", "") // Empty means use logging.DefaultLogPath

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found is acceptable; we use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	return &cfg, nil
}

// Thresholds converts the configured sizes into comparator
// thresholds.
func (c *Config) Thresholds() (compare.Thresholds, error) {
	t := compare.DefaultThresholds()
	t.TrustModTime = c.Compare.TrustModTime

	parse := func(name, value string, dst *int64) error {
		if value == "" {
			return nil
		}
		n, err := types.ParseSize(value)
		if err != nil {
			return fmt.Errorf("compare.%s: %w", name, err)
		}
		*dst = n
		return nil
	}

	if err := parse("small_file_max", c.Compare.SmallFileMax, &t.SmallFileMax); err != nil {
		return t, err
	}
	if err := parse("hash_file_max", c.Compare.HashFileMax, &t.HashFileMax); err != nil {
		return t, err
	}
	if err := parse("prefix_bytes", c.Compare.PrefixBytes, &t.PrefixBytes); err != nil {
		return t, err
	}
	if t.SmallFileMax > t.HashFileMax {
		return t, fmt.Errorf("compare.small_file_max (%d) exceeds compare.hash_file_max (%d)",
			t.SmallFileMax, t.HashFileMax)
	}
	return t, nil
}

// FilterMode parses the configured default filter.
func (c *Config) FilterMode() (types.FilterMode, error) {
	return types.ParseFilterMode(c.Filter)
}

// ExpandPath expands ~ in a path to the user's home directory.
func ExpandPath(path string) (string, error) {
	if !strings.HasPrefix(path, "~") {
		return path, nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, path[1:]), nil
}

// ConfigDir returns the configuration directory path.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "dircomp"), nil
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "dircomp"), nil
}
