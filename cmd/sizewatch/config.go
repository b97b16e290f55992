package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/config"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage configuration",
	Long: `Manage sizewatch configuration settings.

Configuration is loaded from:
  1. $XDG_CONFIG_HOME/sizewatch/config.yaml (if set)
  2. ~/.config/sizewatch/config.yaml

Environment variables can override config file settings using the SIZEWATCH_ prefix:
  SIZEWATCH_BASELINE_BRANCH=master
  SIZEWATCH_CACHE_BACKEND=actions
  SIZEWATCH_DIRECTORIES=web/dist,api/dist`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current configuration",
	Long:  `Display the configuration settings from file, environment, and defaults.`,
	RunE:  runConfigShow,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Show configuration file path",
	Long:  `Display the path to the configuration file.`,
	RunE:  runConfigPath,
}

func init() {
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

// runConfigShow displays the effective persisted configuration. Flags are
// deliberately not reflected here; this shows what a flag-less run would
// use.
func runConfigShow(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	if configFile := viper.ConfigFileUsed(); configFile != "" {
		fmt.Printf("Config file: %s\n\n", configFile)
	} else {
		fmt.Println("Config file: (using defaults, no file found)")
		fmt.Println()
	}

	fmt.Println("Current Configuration:")
	fmt.Println("----------------------")
	fmt.Printf("directories:      %v\n", cfg.Directories)
	fmt.Printf("assets_dir:       %s\n", cfg.AssetsDir)
	fmt.Printf("baseline_branch:  %s\n", cfg.BaselineBranch)
	fmt.Printf("comment:          %t\n", cfg.Comment)
	fmt.Printf("cache.backend:    %s\n", cfg.Cache.Backend)
	fmt.Printf("cache.dir:        %s\n", effectiveCacheDir(cfg))
	fmt.Printf("logging.level:    %s\n", cfg.Logging.Level)

	fmt.Println("\nEnvironment Overrides:")
	fmt.Println("----------------------")
	envVars := []string{
		"SIZEWATCH_DIRECTORIES",
		"SIZEWATCH_ASSETS_DIR",
		"SIZEWATCH_BASELINE_BRANCH",
		"SIZEWATCH_COMMENT",
		"SIZEWATCH_CACHE_BACKEND",
		"SIZEWATCH_CACHE_DIR",
		"SIZEWATCH_LOGGING_LEVEL",
	}

	anyOverrides := false
	for _, name := range envVars {
		if val := os.Getenv(name); val != "" {
			fmt.Printf("%s=%s\n", name, val)
			anyOverrides = true
		}
	}
	if !anyOverrides {
		fmt.Println("(none)")
	}

	return nil
}

// effectiveCacheDir resolves an empty cache.dir to the XDG default so the
// displayed value is the one a run would actually use.
func effectiveCacheDir(cfg *config.Config) string {
	if cfg.Cache.Dir != "" {
		return cfg.Cache.Dir
	}
	return config.DefaultCacheDir()
}

// runConfigPath shows the config file path.
func runConfigPath(cmd *cobra.Command, args []string) error {
	configDir, err := config.ConfigDir()
	if err != nil {
		return fmt.Errorf("failed to get config directory: %w", err)
	}
	configPath := filepath.Join(configDir, "config.yaml")

	fmt.Println(configPath)
	return nil
}
