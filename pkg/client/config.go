package client

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// TOMLConfig represents the structure of the client config file
type TOMLConfig struct {
	Server    ServerSection    `toml:"server"`
	State     StateSection     `toml:"state"`
	Reconnect ReconnectSection `toml:"reconnect"`
	Metrics   MetricsSection   `toml:"metrics"`
}

type ServerSection struct {
	APIURL    string `toml:"api_url"`
	SocketURL string `toml:"socket_url"`
	Token     string `toml:"token"`
}

type StateSection struct {
	DatabasePath string `toml:"database_path"`
}

type ReconnectSection struct {
	InitialDelaySeconds int `toml:"initial_delay_seconds"`
	MaxDelaySeconds     int `toml:"max_delay_seconds"`
}

type MetricsSection struct {
	Enabled bool `toml:"enabled"`
	Port    int  `toml:"port"`
}

// DefaultTOMLConfig returns the default configuration
func DefaultTOMLConfig() TOMLConfig {
	return TOMLConfig{
		Server: ServerSection{
			APIURL:    "http://localhost:8080/api/chat",
			SocketURL: "ws://localhost:8080/ws",
		},
		State: StateSection{
			DatabasePath: "~/.fitchat/fitchat.db",
		},
		Reconnect: ReconnectSection{
			InitialDelaySeconds: 1,
			MaxDelaySeconds:     30,
		},
		Metrics: MetricsSection{
			Enabled: false,
			Port:    9091,
		},
	}
}

// LoadConfig loads configuration from a TOML file, creates a default one if
// not found, and applies environment variable overrides
func LoadConfig(path string) (TOMLConfig, error) {
	// Expand ~ in path
	if strings.HasPrefix(path, "~/") {
		homeDir, err := os.UserHomeDir()
		if err != nil {
			return TOMLConfig{}, fmt.Errorf("failed to get home directory: %w", err)
		}
		path = filepath.Join(homeDir, path[2:])
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		// File doesn't exist, create default config
		config := DefaultTOMLConfig()
		if err := writeDefaultConfig(path, config); err != nil {
			// If we can't write, just return defaults without error
			return applyEnvOverrides(config), nil
		}
		return applyEnvOverrides(config), nil
	}

	var config TOMLConfig
	if _, err := toml.DecodeFile(path, &config); err != nil {
		return TOMLConfig{}, fmt.Errorf("failed to parse config file: %w", err)
	}

	return applyEnvOverrides(config), nil
}

// applyEnvOverrides applies environment variable overrides to the config
// Environment variables follow the pattern: FITCHAT_SECTION_KEY
// Example: FITCHAT_SERVER_API_URL=http://chat.example.com/api/chat
func applyEnvOverrides(config TOMLConfig) TOMLConfig {
	if val := os.Getenv("FITCHAT_SERVER_API_URL"); val != "" {
		config.Server.APIURL = val
	}
	if val := os.Getenv("FITCHAT_SERVER_SOCKET_URL"); val != "" {
		config.Server.SocketURL = val
	}
	if val := os.Getenv("FITCHAT_SERVER_TOKEN"); val != "" {
		config.Server.Token = val
	}
	if val := os.Getenv("FITCHAT_STATE_DATABASE_PATH"); val != "" {
		config.State.DatabasePath = val
	}
	if val := os.Getenv("FITCHAT_RECONNECT_INITIAL_DELAY_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil {
			config.Reconnect.InitialDelaySeconds = secs
		}
	}
	if val := os.Getenv("FITCHAT_RECONNECT_MAX_DELAY_SECONDS"); val != "" {
		if secs, err := strconv.Atoi(val); err == nil {
			config.Reconnect.MaxDelaySeconds = secs
		}
	}
	if val := os.Getenv("FITCHAT_METRICS_ENABLED"); val != "" {
		if enabled, err := strconv.ParseBool(val); err == nil {
			config.Metrics.Enabled = enabled
		}
	}
	if val := os.Getenv("FITCHAT_METRICS_PORT"); val != "" {
		if port, err := strconv.Atoi(val); err == nil {
			config.Metrics.Port = port
		}
	}
	return config
}

// writeDefaultConfig writes the default config to a file with all options documented
func writeDefaultConfig(path string, config TOMLConfig) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	content := `# FitChat Client Configuration
# This file was auto-generated with default values
#
# Environment variables can override these settings:
# FITCHAT_SECTION_KEY (e.g., FITCHAT_SERVER_API_URL=http://chat.example.com/api/chat)

[server]
# Base URL of the chat REST API
api_url = "` + config.Server.APIURL + `"

# URL of the chat websocket endpoint
socket_url = "` + config.Server.SocketURL + `"

# Bearer token for authentication (leave empty to use the stored token)
token = ""

[state]
# Path to the SQLite state database
database_path = "` + config.State.DatabasePath + `"

[reconnect]
# Initial reconnect backoff in seconds, doubled on each failed attempt
initial_delay_seconds = ` + strconv.Itoa(config.Reconnect.InitialDelaySeconds) + `

# Backoff ceiling in seconds
max_delay_seconds = ` + strconv.Itoa(config.Reconnect.MaxDelaySeconds) + `

[metrics]
# Serve Prometheus metrics on /metrics
enabled = false
port = ` + strconv.Itoa(config.Metrics.Port) + `
`

	if _, err := f.WriteString(content); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}
