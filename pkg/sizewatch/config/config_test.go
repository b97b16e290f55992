package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoad_Defaults(t *testing.T) {
	// Use a temp directory that doesn't have a config file
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.AssetsDir != DefaultAssetsDir {
		t.Errorf("AssetsDir = %q, want %q", cfg.AssetsDir, DefaultAssetsDir)
	}
	if cfg.BaselineBranch != DefaultBaselineBranch {
		t.Errorf("BaselineBranch = %q, want %q", cfg.BaselineBranch, DefaultBaselineBranch)
	}
	if !cfg.Comment {
		t.Error("Comment = false, want true")
	}
	if cfg.Cache.Backend != DefaultCacheBackend {
		t.Errorf("Cache.Backend = %q, want %q", cfg.Cache.Backend, DefaultCacheBackend)
	}
	if cfg.Logging.Level != DefaultLogLevel {
		t.Errorf("Logging.Level = %q, want %q", cfg.Logging.Level, DefaultLogLevel)
	}
	if len(cfg.Directories) != 0 {
		t.Errorf("Directories = %v, want empty", cfg.Directories)
	}
}

func TestLoad_FromFile(t *testing.T) {
	tempDir := t.TempDir()
	configDir := filepath.Join(tempDir, ".config", "sizewatch")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}

	configContent := `
directories:
  - dist
  - packages/web/dist
assets_dir: static
baseline_branch: trunk
comment: false
cache:
  backend: actions
logging:
  level: debug
`
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(configContent), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}

	t.Setenv("HOME", tempDir)
	t.Setenv("XDG_CONFIG_HOME", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if len(cfg.Directories) != 2 || cfg.Directories[0] != "dist" {
		t.Errorf("Directories = %v, want [dist packages/web/dist]", cfg.Directories)
	}
	if cfg.AssetsDir != "static" {
		t.Errorf("AssetsDir = %q, want static", cfg.AssetsDir)
	}
	if cfg.BaselineBranch != "trunk" {
		t.Errorf("BaselineBranch = %q, want trunk", cfg.BaselineBranch)
	}
	if cfg.Comment {
		t.Error("Comment = true, want false")
	}
	if cfg.Cache.Backend != "actions" {
		t.Errorf("Cache.Backend = %q, want actions", cfg.Cache.Backend)
	}
	if cfg.Logging.Level != "debug" {
		t.Errorf("Logging.Level = %q, want debug", cfg.Logging.Level)
	}
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	valid := &Config{
		Directories: []string{"dist"},
		Cache:       CacheConfig{Backend: "local"},
	}
	if err := valid.Validate(); err != nil {
		t.Errorf("Validate() error = %v, want nil", err)
	}

	noDirs := &Config{Cache: CacheConfig{Backend: "local"}}
	if err := noDirs.Validate(); err == nil {
		t.Error("Validate() with no directories = nil, want error")
	}

	badBackend := &Config{
		Directories: []string{"dist"},
		Cache:       CacheConfig{Backend: "s3"},
	}
	if err := badBackend.Validate(); err == nil {
		t.Error("Validate() with invalid backend = nil, want error")
	}
}
