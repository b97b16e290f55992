package main

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/jamesainslie/sizewatch/pkg/sizewatch/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile string
	rootCmd = &cobra.Command{
		Use:   "sizewatch",
		Short: "Report build output size changes on pull requests",
		Long: `Sizewatch measures build-output file sizes, diffs them against a cached
baseline from the default branch, and posts the result as a pull-request
comment and job summary.

Hashed asset filenames (app-Ckdnwnhq.js) are normalized inside the assets
directory so rebuild-only hash churn is not reported as added+removed.

Examples:
  sizewatch --dir dist                      # Report on one directory
  sizewatch --dir web/dist --dir api/dist   # Multiple directories
  sizewatch --baseline-branch master        # Non-"main" default branch
  sizewatch watch --dir dist                # Local dev mode, live diff
  sizewatch version                         # Version information`,
		Args: cobra.NoArgs,
		RunE: runReport,
	}
)

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ~/.config/sizewatch/config.yaml)")
	rootCmd.PersistentFlags().StringSliceP("dir", "d", nil, "build output directory to analyze (repeatable)")
	rootCmd.PersistentFlags().String("assets-dir", "", "directory name with hashed asset filenames")
	rootCmd.PersistentFlags().String("baseline-branch", "", "branch whose build output is the comparison reference")
	rootCmd.PersistentFlags().String("cache-backend", "", "baseline cache backend: actions, local, or none")
	rootCmd.PersistentFlags().String("cache-dir", "", "local cache location (default: XDG cache dir)")
	rootCmd.PersistentFlags().Bool("comment", true, "post the report as a PR comment when changes are detected")
	rootCmd.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	_ = viper.BindPFlag("directories", rootCmd.PersistentFlags().Lookup("dir"))
	_ = viper.BindPFlag("assets_dir", rootCmd.PersistentFlags().Lookup("assets-dir"))
	_ = viper.BindPFlag("baseline_branch", rootCmd.PersistentFlags().Lookup("baseline-branch"))
	_ = viper.BindPFlag("cache.backend", rootCmd.PersistentFlags().Lookup("cache-backend"))
	_ = viper.BindPFlag("cache.dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	_ = viper.BindPFlag("comment", rootCmd.PersistentFlags().Lookup("comment"))
	_ = viper.BindPFlag("logging.level", rootCmd.PersistentFlags().Lookup("log-level"))
}

// initConfig reads in config file and environment variables.
func initConfig() {
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("config")
		viper.SetConfigType("yaml")

		if xdgConfigHome := os.Getenv("XDG_CONFIG_HOME"); xdgConfigHome != "" {
			viper.AddConfigPath(filepath.Join(xdgConfigHome, "sizewatch"))
		}
		homeDir, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(homeDir, ".config", "sizewatch"))
		}
	}

	viper.SetEnvPrefix("SIZEWATCH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	viper.AutomaticEnv()

	config.SetDefaults(viper.GetViper())

	// Read config file (ignore if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// loadConfig assembles the effective configuration from viper.
func loadConfig() (*config.Config, error) {
	var cfg config.Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
