// ABOUTME: Tests for meetcal configuration loading and path expansion.
// ABOUTME: Covers YAML parsing, defaults, env overrides, validation, and save/load.
package config

import (
	"os"
	"path/filepath"
	"testing"
)

// isolate points config and data lookups at temp dirs and clears overrides.
func isolate(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", tmpDir)
	t.Setenv("XDG_DATA_HOME", filepath.Join(tmpDir, "data"))
	t.Setenv(EnvDataDir, "")
	t.Setenv(EnvLogLevel, "")
	t.Setenv(EnvLogFormat, "")
	return tmpDir
}

func writeConfig(t *testing.T, dir, content string) {
	t.Helper()
	configDir := filepath.Join(dir, "meetcal")
	if err := os.MkdirAll(configDir, 0750); err != nil {
		t.Fatalf("failed to create config dir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(configDir, "config.yaml"), []byte(content), 0600); err != nil {
		t.Fatalf("failed to write config: %v", err)
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{"empty", "", ""},
		{"tilde only", "~", home},
		{"tilde slash", "~/foo/bar", filepath.Join(home, "foo", "bar")},
		{"absolute", "/tmp/foo", "/tmp/foo"},
		{"relative", "foo/bar", "foo/bar"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExpandPath(tt.input)
			if err != nil {
				t.Fatalf("ExpandPath(%q) error: %v", tt.input, err)
			}
			if got != tt.expected {
				t.Errorf("ExpandPath(%q) = %q, want %q", tt.input, got, tt.expected)
			}
		})
	}
}

func TestLoadDefaultConfig(t *testing.T) {
	tmpDir := isolate(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Storage.DataDir != "" {
		t.Errorf("expected empty data_dir in default config, got %q", cfg.Storage.DataDir)
	}
	got, err := cfg.GetDataDir()
	if err != nil {
		t.Fatalf("GetDataDir() error: %v", err)
	}
	want := filepath.Join(tmpDir, "data", "meetcal")
	if got != want {
		t.Errorf("GetDataDir() = %q, want %q", got, want)
	}
}

func TestLoadYAMLConfig(t *testing.T) {
	tmpDir := isolate(t)
	writeConfig(t, tmpDir, `storage:
  data_dir: "~/my-calendar"
log:
  level: debug
  format: json
`)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if cfg.Log.Level != "debug" {
		t.Errorf("expected level 'debug', got %q", cfg.Log.Level)
	}
	if cfg.Log.Format != "json" {
		t.Errorf("expected format 'json', got %q", cfg.Log.Format)
	}

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, "my-calendar")
	if got, err := cfg.GetDataDir(); err != nil {
		t.Fatalf("GetDataDir() error: %v", err)
	} else if got != expected {
		t.Errorf("GetDataDir() = %q, want %q", got, expected)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	tmpDir := isolate(t)
	writeConfig(t, tmpDir, `storage:
  data_dir: /from/file
log:
  level: info
`)
	t.Setenv(EnvDataDir, "/from/env")
	t.Setenv(EnvLogLevel, "WARN")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.Storage.DataDir != "/from/env" {
		t.Errorf("expected env data dir, got %q", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "warn" {
		t.Errorf("expected env log level 'warn', got %q", cfg.Log.Level)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tmpDir := isolate(t)
	writeConfig(t, tmpDir, `log:
  level: loud
`)

	if _, err := Load(); err == nil {
		t.Fatal("expected error for unknown log level")
	}
}

func TestLoadRejectsMalformedYAML(t *testing.T) {
	tmpDir := isolate(t)
	writeConfig(t, tmpDir, "storage: [unclosed\n")

	if _, err := Load(); err == nil {
		t.Fatal("expected error for malformed YAML")
	}
}

func TestSaveAndLoad(t *testing.T) {
	isolate(t)

	cfg := &Config{
		Storage: StorageConfig{DataDir: "~/saved-calendar"},
		Log:     LogConfig{Level: "error", Format: "console"},
	}

	if err := cfg.Save(); err != nil {
		t.Fatalf("Save() error: %v", err)
	}

	loaded, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}

	if loaded.Storage.DataDir != "~/saved-calendar" {
		t.Errorf("expected data_dir '~/saved-calendar', got %q", loaded.Storage.DataDir)
	}
	if loaded.Log.Level != "error" {
		t.Errorf("expected level 'error', got %q", loaded.Log.Level)
	}
}

func TestValidateEmptyIsValid(t *testing.T) {
	cfg := &Config{}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() on empty config: %v", err)
	}
}

func TestLoadFileIgnoresEnvironment(t *testing.T) {
	tmpDir := isolate(t)
	writeConfig(t, tmpDir, `log:
  level: info
`)
	t.Setenv(EnvDataDir, "/from/env")
	t.Setenv(EnvLogLevel, "debug")

	cfg, err := LoadFile()
	if err != nil {
		t.Fatalf("LoadFile() error: %v", err)
	}
	if cfg.Storage.DataDir != "" {
		t.Errorf("expected no data dir from file, got %q", cfg.Storage.DataDir)
	}
	if cfg.Log.Level != "info" {
		t.Errorf("expected file log level 'info', got %q", cfg.Log.Level)
	}
}
