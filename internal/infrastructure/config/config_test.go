package config_test

import (
	"testing"

	"github.com/ratebook/core/internal/infrastructure/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if got := cfg.Server.Address(); got != "127.0.0.1:8080" {
		t.Errorf("Server.Address() = %q, want %q", got, "127.0.0.1:8080")
	}
	if cfg.Storage.File != "database.json" {
		t.Errorf("Storage.File = %q, want %q", cfg.Storage.File, "database.json")
	}
	if cfg.History.Enabled {
		t.Error("History.Enabled = true, want false by default")
	}
	if cfg.Logger.Level != "info" {
		t.Errorf("Logger.Level = %q, want %q", cfg.Logger.Level, "info")
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("STORAGE_FILE", "/tmp/quotes.json")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	if cfg.Storage.File != "/tmp/quotes.json" {
		t.Errorf("Storage.File = %q, want %q", cfg.Storage.File, "/tmp/quotes.json")
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("Server.Port = %d, want 9090", cfg.Server.Port)
	}
}

func TestLoad_InvalidPort(t *testing.T) {
	t.Setenv("SERVER_PORT", "-1")

	if _, err := config.Load(); err == nil {
		t.Error("Load() error = nil, want error for invalid port")
	}
}
