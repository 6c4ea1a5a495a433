package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Logging    LogConfig
	RateLimit  RateLimitConfig
	Packages   PackagesConfig
	Containers ContainersConfig
	Breaker    BreakerConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8000"`
	Host string `envconfig:"HOST" default:"127.0.0.1"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"20"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"40"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// PackagesConfig holds package manager settings used by the catalog builder.
type PackagesConfig struct {
	Manager string        `envconfig:"PKG_MANAGER" default:"dnf"`
	Timeout time.Duration `envconfig:"PKG_TIMEOUT" default:"2m"`
	Workers int           `envconfig:"PKG_WORKERS" default:"4"`
	// Warm builds the catalog in the background at startup.
	Warm bool `envconfig:"PKG_WARM" default:"true"`
	// Include and Exclude are doublestar globs matched against repository ids.
	Include []string `envconfig:"PKG_REPO_INCLUDE"`
	Exclude []string `envconfig:"PKG_REPO_EXCLUDE"`
}

// ContainersConfig holds container tool settings used by the lifecycle resolver.
type ContainersConfig struct {
	Tool          string        `envconfig:"CONTAINER_TOOL" default:"docker"`
	ListElevate   string        `envconfig:"CONTAINER_LIST_ELEVATE" default:"pkexec"`
	LaunchElevate string        `envconfig:"CONTAINER_LAUNCH_ELEVATE" default:"sudo"`
	Terminal      string        `envconfig:"CONTAINER_TERMINAL" default:"kitty"`
	Hostname      string        `envconfig:"CONTAINER_HOSTNAME" default:"10-slib"`
	Locale        string        `envconfig:"CONTAINER_LOCALE" default:"C.UTF-8"`
	Shell         string        `envconfig:"CONTAINER_SHELL" default:"/bin/bash"`
	Timeout       time.Duration `envconfig:"CONTAINER_TIMEOUT" default:"30s"`
	// ListSource is "containers" (ps -a) or "images". With exact matching,
	// images are listed by repository name only.
	ListSource string `envconfig:"CONTAINER_LIST_SOURCE" default:"containers"`
	// Match is "exact" or "substring".
	Match string `envconfig:"CONTAINER_MATCH" default:"exact"`
	// LaunchMode is "terminal" or "pty".
	LaunchMode string `envconfig:"CONTAINER_LAUNCH_MODE" default:"terminal"`
	Presets    string `envconfig:"CONTAINER_PRESETS"`
}

// BreakerConfig controls fail-fast behavior for programs that cannot be
// started or keep timing out.
type BreakerConfig struct {
	Threshold uint32        `envconfig:"BREAKER_THRESHOLD" default:"3"`
	Cooldown  time.Duration `envconfig:"BREAKER_COOLDOWN" default:"30s"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port: "8000",
			Host: "127.0.0.1",
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 20,
			Burst:             40,
			Enabled:           true,
		},
		Packages: PackagesConfig{
			Manager: "dnf",
			Timeout: 2 * time.Minute,
			Workers: 4,
			Warm:    true,
		},
		Containers: ContainersConfig{
			Tool:          "docker",
			ListElevate:   "pkexec",
			LaunchElevate: "sudo",
			Terminal:      "kitty",
			Hostname:      "10-slib",
			Locale:        "C.UTF-8",
			Shell:         "/bin/bash",
			Timeout:       30 * time.Second,
			ListSource:    "containers",
			Match:         "exact",
			LaunchMode:    "terminal",
		},
		Breaker: BreakerConfig{
			Threshold: 3,
			Cooldown:  30 * time.Second,
		},
	}
}

// Validate rejects values the domain packages cannot act on.
func (c *Config) Validate() error {
	if c.Packages.Manager == "" {
		return fmt.Errorf("PKG_MANAGER must not be empty")
	}
	if c.Packages.Workers < 1 {
		return fmt.Errorf("PKG_WORKERS must be at least 1, got %d", c.Packages.Workers)
	}
	if c.Containers.Tool == "" {
		return fmt.Errorf("CONTAINER_TOOL must not be empty")
	}
	if c.Breaker.Threshold < 1 {
		return fmt.Errorf("BREAKER_THRESHOLD must be at least 1, got %d", c.Breaker.Threshold)
	}
	switch c.Containers.ListSource {
	case "containers", "images":
	default:
		return fmt.Errorf("CONTAINER_LIST_SOURCE must be containers or images, got %q", c.Containers.ListSource)
	}
	switch c.Containers.Match {
	case "exact", "substring":
	default:
		return fmt.Errorf("CONTAINER_MATCH must be exact or substring, got %q", c.Containers.Match)
	}
	switch c.Containers.LaunchMode {
	case "terminal", "pty":
	default:
		return fmt.Errorf("CONTAINER_LAUNCH_MODE must be terminal or pty, got %q", c.Containers.LaunchMode)
	}
	return nil
}
