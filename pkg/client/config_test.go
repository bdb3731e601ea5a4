package client

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadConfigCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if _, err := os.Stat(path); err != nil {
		t.Errorf("default config file should be created: %v", err)
	}
	defaults := DefaultTOMLConfig()
	if cfg.Server.APIURL != defaults.Server.APIURL {
		t.Errorf("expected default api url %q, got %q", defaults.Server.APIURL, cfg.Server.APIURL)
	}
	if cfg.Reconnect.InitialDelaySeconds != 1 || cfg.Reconnect.MaxDelaySeconds != 30 {
		t.Errorf("unexpected reconnect defaults: %+v", cfg.Reconnect)
	}
}

func TestLoadConfigReadsBackWrittenDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	if _, err := LoadConfig(path); err != nil {
		t.Fatalf("first load: %v", err)
	}
	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("second load: %v", err)
	}

	defaults := DefaultTOMLConfig()
	if cfg.Server.SocketURL != defaults.Server.SocketURL {
		t.Errorf("expected %q, got %q", defaults.Server.SocketURL, cfg.Server.SocketURL)
	}
	if cfg.State.DatabasePath != defaults.State.DatabasePath {
		t.Errorf("expected %q, got %q", defaults.State.DatabasePath, cfg.State.DatabasePath)
	}
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	t.Setenv("FITCHAT_SERVER_API_URL", "http://override:9999/api/chat")
	t.Setenv("FITCHAT_RECONNECT_MAX_DELAY_SECONDS", "60")
	t.Setenv("FITCHAT_METRICS_ENABLED", "true")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}

	if cfg.Server.APIURL != "http://override:9999/api/chat" {
		t.Errorf("env override not applied, got %q", cfg.Server.APIURL)
	}
	if cfg.Reconnect.MaxDelaySeconds != 60 {
		t.Errorf("expected max delay 60, got %d", cfg.Reconnect.MaxDelaySeconds)
	}
	if !cfg.Metrics.Enabled {
		t.Error("expected metrics enabled via env")
	}
}

func TestLoadConfigInvalidFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("not [valid toml"), 0644); err != nil {
		t.Fatal(err)
	}

	if _, err := LoadConfig(path); err == nil {
		t.Error("expected error for malformed config")
	}
}
