package main

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigCommandRegistered(t *testing.T) {
	cmd, _, err := rootCmd.Find([]string{"config", "show"})
	if err != nil {
		t.Fatalf("Find(config show) error = %v", err)
	}
	if cmd != configShowCmd {
		t.Errorf("Find(config show) = %q, want the config show command", cmd.Name())
	}

	cmd, _, err = rootCmd.Find([]string{"config", "path"})
	if err != nil {
		t.Fatalf("Find(config path) error = %v", err)
	}
	if cmd != configPathCmd {
		t.Errorf("Find(config path) = %q, want the config path command", cmd.Name())
	}
}

func TestRunConfigShowReadsConfigFile(t *testing.T) {
	configDir := filepath.Join(t.TempDir(), "sizewatch")
	if err := os.MkdirAll(configDir, 0o755); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	content := "directories:\n  - web/dist\nbaseline_branch: trunk\n"
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0o644); err != nil {
		t.Fatalf("failed to write config file: %v", err)
	}
	t.Setenv("XDG_CONFIG_HOME", filepath.Dir(configDir))

	if err := runConfigShow(configShowCmd, nil); err != nil {
		t.Errorf("runConfigShow() error = %v", err)
	}
}

func TestRunConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	if err := runConfigPath(configPathCmd, nil); err != nil {
		t.Errorf("runConfigPath() error = %v", err)
	}
}
