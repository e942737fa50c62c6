package cli

import (
	"os"
	"path/filepath"
	"testing"

	"fintrack/internal/config"
)

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("FINTRACK_CLI_TEST=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("FINTRACK_CLI_TEST", "")
	os.Unsetenv("FINTRACK_CLI_TEST")

	LoadEnvFile(path)
	if got := os.Getenv("FINTRACK_CLI_TEST"); got != "from-file" {
		t.Fatalf("expected value from .env, got %q", got)
	}

	// a missing file is ignored
	LoadEnvFile(filepath.Join(t.TempDir(), "missing.env"))
}

func TestLoadAndValidateConfig(t *testing.T) {
	t.Setenv("DATA_BACKEND", "memory")
	t.Setenv("PORT", "9090")
	cfg, err := LoadAndValidateConfig()
	if err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
	if cfg.Port != "9090" || cfg.DataBackend != config.BackendMemory {
		t.Fatalf("unexpected config %+v", cfg)
	}

	t.Setenv("PORT", "not-a-port")
	if _, err := LoadAndValidateConfig(); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestSetupLogger(t *testing.T) {
	logger := SetupLogger(&config.Config{LogLevel: "debug", LogFormat: "json"}, "worker")
	if logger.Component() != "worker" {
		t.Fatalf("expected worker component, got %q", logger.Component())
	}
}
