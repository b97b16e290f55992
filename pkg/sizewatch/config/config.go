package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/adrg/xdg"
	"github.com/spf13/viper"
)

// CacheConfig configures where baseline snapshots are kept between runs.
type CacheConfig struct {
	// Backend is "actions" (GitHub Actions cache service), "local"
	// (Badger store on disk), or "none".
	Backend string `mapstructure:"backend"`

	// Dir is the local store location. Empty uses DefaultCacheDir().
	Dir string `mapstructure:"dir"`
}

// LoggingConfig configures application logging.
type LoggingConfig struct {
	Level string `mapstructure:"level"`
}

// Config represents the application configuration.
type Config struct {
	// Directories are the build output directories to analyze.
	Directories []string `mapstructure:"directories"`

	// AssetsDir is the directory name inside which hashed filenames are
	// normalized.
	AssetsDir string `mapstructure:"assets_dir"`

	// BaselineBranch is the branch whose output is the comparison
	// reference. Configurable so repositories with a non-"main" default
	// branch stay correct.
	BaselineBranch string `mapstructure:"baseline_branch"`

	// Comment enables posting the report as a PR comment.
	Comment bool `mapstructure:"comment"`

	Cache   CacheConfig   `mapstructure:"cache"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// Validate checks the configuration before any I/O happens.
func (c *Config) Validate() error {
	if len(c.Directories) == 0 {
		return errors.New("no directories configured: pass --dir or set directories in config")
	}
	if !slices.Contains(ValidCacheBackends, c.Cache.Backend) {
		return fmt.Errorf("invalid cache backend %q (valid: %s)",
			c.Cache.Backend, strings.Join(ValidCacheBackends, ", "))
	}
	return nil
}

// Load loads configuration from file and environment variables.
// Config file locations (in order of precedence):
//   - $XDG_CONFIG_HOME/sizewatch/config.yaml
//   - $HOME/.config/sizewatch/config.yaml
//
// Environment variables are prefixed with SIZEWATCH_
// (e.g. SIZEWATCH_BASELINE_BRANCH).
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")

	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		v.AddConfigPath(filepath.Join(xdgConfigHome, "sizewatch"))
	}
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, fmt.Errorf("failed to get user home directory: %w", err)
	}
	v.AddConfigPath(filepath.Join(homeDir, ".config", "sizewatch"))

	v.SetEnvPrefix("SIZEWATCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	SetDefaults(v)

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

// SetDefaults registers sizewatch defaults on a viper instance. Shared by
// Load and the CLI's initConfig.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("assets_dir", DefaultAssetsDir)
	v.SetDefault("baseline_branch", DefaultBaselineBranch)
	v.SetDefault("comment", true)
	v.SetDefault("cache.backend", DefaultCacheBackend)
	v.SetDefault("cache.dir", "")
	v.SetDefault("logging.level", DefaultLogLevel)
}

// ConfigDir returns the sizewatch configuration directory:
// $XDG_CONFIG_HOME/sizewatch if set, otherwise ~/.config/sizewatch.
func ConfigDir() (string, error) {
	if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
		return filepath.Join(xdgConfigHome, "sizewatch"), nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, ".config", "sizewatch"), nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/sizewatch/ for the local cache
// store and snapshot files.
func DefaultCacheDir() string {
	return filepath.Join(xdg.CacheHome, "sizewatch")
}
