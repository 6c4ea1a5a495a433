package config

import (
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Package manager config
	assert.Equal(t, "dnf", cfg.Packages.Manager)
	assert.Equal(t, 2*time.Minute, cfg.Packages.Timeout)
	assert.Equal(t, 4, cfg.Packages.Workers)

	// Container config
	assert.Equal(t, "docker", cfg.Containers.Tool)
	assert.Equal(t, "kitty", cfg.Containers.Terminal)
	assert.Equal(t, "10-slib", cfg.Containers.Hostname)
	assert.Equal(t, "exact", cfg.Containers.Match)

	require.NoError(t, cfg.Validate())
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, Default(), cfg)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9000",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"PKG_MANAGER":           "dnf5",
		"PKG_TIMEOUT":           "45s",
		"PKG_WORKERS":           "1",
		"PKG_REPO_EXCLUDE":      "*-debuginfo,*-source",
		"CONTAINER_TOOL":        "podman",
		"CONTAINER_LIST_SOURCE": "images",
		"CONTAINER_MATCH":       "substring",
		"CONTAINER_LAUNCH_MODE": "pty",
		"BREAKER_THRESHOLD":     "5",
		"BREAKER_COOLDOWN":      "1m",
	}

	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)
	assert.Equal(t, "dnf5", cfg.Packages.Manager)
	assert.Equal(t, 45*time.Second, cfg.Packages.Timeout)
	assert.Equal(t, 1, cfg.Packages.Workers)
	assert.Equal(t, []string{"*-debuginfo", "*-source"}, cfg.Packages.Exclude)
	assert.Equal(t, "podman", cfg.Containers.Tool)
	assert.Equal(t, "images", cfg.Containers.ListSource)
	assert.Equal(t, "substring", cfg.Containers.Match)
	assert.Equal(t, "pty", cfg.Containers.LaunchMode)
	assert.Equal(t, uint32(5), cfg.Breaker.Threshold)
	assert.Equal(t, time.Minute, cfg.Breaker.Cooldown)
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "zero workers", key: "PKG_WORKERS", value: "0"},
		{name: "unknown list source", key: "CONTAINER_LIST_SOURCE", value: "volumes"},
		{name: "unknown match", key: "CONTAINER_MATCH", value: "fuzzy"},
		{name: "unknown launch mode", key: "CONTAINER_LAUNCH_MODE", value: "tmux"},
		{name: "bad duration", key: "PKG_TIMEOUT", value: "soon"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			_, err := Load()
			assert.Error(t, err)

			// LoadOrDefault falls back instead of failing
			assert.Equal(t, Default(), LoadOrDefault())
		})
	}
}

func TestServerConfig(t *testing.T) {
	tests := []struct {
		name     string
		port     string
		host     string
		wantPort string
		wantHost string
	}{
		{name: "default values", wantPort: "8000", wantHost: "127.0.0.1"},
		{name: "custom port", port: "9000", wantPort: "9000", wantHost: "127.0.0.1"},
		{name: "custom host", host: "0.0.0.0", wantPort: "8000", wantHost: "0.0.0.0"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			os.Unsetenv("PORT")
			os.Unsetenv("HOST")

			if tt.port != "" {
				t.Setenv("PORT", tt.port)
			}
			if tt.host != "" {
				t.Setenv("HOST", tt.host)
			}

			cfg := LoadOrDefault()

			assert.Equal(t, tt.wantPort, cfg.Server.Port)
			assert.Equal(t, tt.wantHost, cfg.Server.Host)
		})
	}
}
