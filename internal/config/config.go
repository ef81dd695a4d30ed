package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/duynguyendang/sir/internal/manager"
	"github.com/duynguyendang/sir/pkg/service"
)

// Config holds all runtime configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Search   SearchConfig   `yaml:"search"`
	Sessions SessionsConfig `yaml:"sessions"`
	Log      LogConfig      `yaml:"log"`

	// RulesFile replaces the built-in sentence rules when set.
	RulesFile string `yaml:"rules_file"`
}

// ServerConfig configures the HTTP API.
type ServerConfig struct {
	Addr            string `yaml:"addr"`
	Mode            string `yaml:"mode"` // gin mode: debug, release, test
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

// SearchConfig bounds path queries.
type SearchConfig struct {
	MaxDepth int `yaml:"max_depth"`
	MaxSteps int `yaml:"max_steps"`
}

// SessionsConfig configures the session LRU.
type SessionsConfig struct {
	Max int `yaml:"max"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // console, json
}

// Default returns the built-in configuration.
func Default() *Config {
	search := service.DefaultSearchOptions()
	return &Config{
		Server: ServerConfig{
			Addr:            ":8080",
			Mode:            "release",
			ShutdownTimeout: "10s",
		},
		Search: SearchConfig{
			MaxDepth: search.MaxDepth,
			MaxSteps: search.MaxSteps,
		},
		Sessions: SessionsConfig{
			Max: manager.DefaultMaxSessions,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "console",
		},
	}
}

// Load loads configuration from a YAML file, then applies environment
// overrides. An empty or missing path yields the defaults.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case os.IsNotExist(err):
		case err != nil:
			return nil, fmt.Errorf("failed to read config: %w", err)
		default:
			if err := yaml.Unmarshal(data, cfg); err != nil {
				return nil, fmt.Errorf("failed to parse config: %w", err)
			}
		}
	}

	if err := cfg.applyEnvOverrides(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() error {
	if port := os.Getenv("PORT"); port != "" {
		c.Server.Addr = ":" + port
	}
	if addr := os.Getenv("SIR_ADDR"); addr != "" {
		c.Server.Addr = addr
	}
	if mode := os.Getenv("GIN_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if level := os.Getenv("SIR_LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("SIR_LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	if path := os.Getenv("SIR_RULES_FILE"); path != "" {
		c.RulesFile = path
	}

	ints := []struct {
		key string
		dst *int
	}{
		{"SIR_MAX_DEPTH", &c.Search.MaxDepth},
		{"SIR_MAX_STEPS", &c.Search.MaxSteps},
		{"SIR_MAX_SESSIONS", &c.Sessions.Max},
	}
	for _, e := range ints {
		v := os.Getenv(e.key)
		if v == "" {
			continue
		}
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid %s %q: %w", e.key, v, err)
		}
		*e.dst = n
	}
	return nil
}

// Validate rejects limits and formats the program cannot run with.
func (c *Config) Validate() error {
	if c.Search.MaxDepth <= 0 {
		return fmt.Errorf("search.max_depth must be positive, got %d", c.Search.MaxDepth)
	}
	if c.Search.MaxSteps <= 0 {
		return fmt.Errorf("search.max_steps must be positive, got %d", c.Search.MaxSteps)
	}
	if c.Sessions.Max <= 0 {
		return fmt.Errorf("sessions.max must be positive, got %d", c.Sessions.Max)
	}
	switch c.Log.Format {
	case "console", "json":
	default:
		return fmt.Errorf("log.format must be console or json, got %q", c.Log.Format)
	}
	if _, err := time.ParseDuration(c.Server.ShutdownTimeout); err != nil {
		return fmt.Errorf("server.shutdown_timeout: %w", err)
	}
	return nil
}

// SearchOptions converts the search section for the knowledge service.
func (c *Config) SearchOptions() service.SearchOptions {
	return service.SearchOptions{MaxDepth: c.Search.MaxDepth, MaxSteps: c.Search.MaxSteps}
}

// GetShutdownTimeout returns the server shutdown timeout as a duration.
func (c *Config) GetShutdownTimeout() time.Duration {
	d, err := time.ParseDuration(c.Server.ShutdownTimeout)
	if err != nil {
		return 10 * time.Second
	}
	return d
}
