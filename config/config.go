// Package config loads the YAML configuration of the embedstore command.
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/viant/embedstore/vector"
)

// Config holds the complete application configuration
type Config struct {
	Database DatabaseConfig `yaml:"database"`
	Search   SearchConfig   `yaml:"search"`
	Log      LogConfig      `yaml:"log"`
}

// DatabaseConfig locates the SQLite records table
type DatabaseConfig struct {
	DSN   string `yaml:"dsn"`   // file path or ":memory:"
	Table string `yaml:"table"` // records table name
}

// SearchConfig configures ranking defaults
type SearchConfig struct {
	Metric  string `yaml:"metric"`  // cosine|dot|euclidean
	TopK    int    `yaml:"top_k"`   // default number of results
	Workers int    `yaml:"workers"` // batch search parallelism, 0 = GOMAXPROCS
}

// LogConfig configures structured logging
type LogConfig struct {
	Level  string `yaml:"level"`  // debug|info|warn|error
	Format string `yaml:"format"` // text|json
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Database: DatabaseConfig{
			DSN:   "embedstore.db",
			Table: "docs",
		},
		Search: SearchConfig{
			Metric:  string(vector.Cosine),
			TopK:    3,
			Workers: 0,
		},
		Log: LogConfig{
			Level:  "warn",
			Format: "text",
		},
	}
}

// Load reads a YAML file over the defaults. An empty path or a missing file
// yields the defaults.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks the configuration for invalid values
func (c *Config) Validate() error {
	if c.Database.DSN == "" {
		return fmt.Errorf("config: database.dsn is required")
	}
	if _, err := vector.ParseMetric(c.Search.Metric); err != nil {
		return fmt.Errorf("config: search.metric: %w", err)
	}
	if c.Search.TopK < 0 {
		return fmt.Errorf("config: search.top_k must not be negative, got %d", c.Search.TopK)
	}
	if c.Search.Workers < 0 {
		return fmt.Errorf("config: search.workers must not be negative, got %d", c.Search.Workers)
	}
	switch strings.ToLower(c.Log.Format) {
	case "", "text", "json":
	default:
		return fmt.Errorf("config: log.format must be text or json, got %q", c.Log.Format)
	}
	return nil
}
