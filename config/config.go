// Package config provides configuration loading and management for vskit.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the complete vskit configuration
type Config struct {
	Resolvers ResolversConfig `yaml:"resolvers"`
	Render    RenderConfig    `yaml:"render"`
	Query     QueryConfig     `yaml:"query"`
	NATS      NATSConfig      `yaml:"nats"`
}

// ResolversConfig configures where resolver bindings come from
type ResolversConfig struct {
	// Path is the resolver configuration document. Empty means the
	// built-in default binding per backend method.
	Path string `yaml:"path"`
}

// RenderConfig configures value rendering
type RenderConfig struct {
	// Template is the render template override. Empty means each enum's
	// own pv_formula (default CURIE, equivalent to "{id}").
	Template string `yaml:"template"`
}

// QueryConfig configures backend query behavior
type QueryConfig struct {
	// Timeout is the per-backend-call timeout (default: 30s)
	Timeout time.Duration `yaml:"timeout"`
}

// NATSConfig configures optional value-set publishing
type NATSConfig struct {
	// URL is the NATS server URL (empty = publishing disabled)
	URL string `yaml:"url"`
	// Subject is the ingestion subject (default: graph.ingest.valueset)
	Subject string `yaml:"subject"`
}

// DefaultConfig returns a Config with sensible defaults
func DefaultConfig() *Config {
	return &Config{
		Resolvers: ResolversConfig{
			Path: "", // Built-in defaults
		},
		Render: RenderConfig{
			Template: "",
		},
		Query: QueryConfig{
			Timeout: 30 * time.Second,
		},
		NATS: NATSConfig{
			URL:     "",
			Subject: "graph.ingest.valueset",
		},
	}
}

// Validate checks that the configuration is valid
func (c *Config) Validate() error {
	if c.Query.Timeout < 0 {
		return fmt.Errorf("query.timeout must not be negative")
	}
	if c.NATS.URL != "" && c.NATS.Subject == "" {
		return fmt.Errorf("nats.subject is required when nats.url is set")
	}
	return nil
}

// LoadFromFile loads configuration from a YAML file
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a YAML file
func (c *Config) SaveToFile(path string) error {
	// Ensure parent directory exists
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Merge merges another config into this one (other takes precedence for non-zero values)
func (c *Config) Merge(other *Config) {
	if other == nil {
		return
	}

	// Resolvers
	if other.Resolvers.Path != "" {
		c.Resolvers.Path = other.Resolvers.Path
	}

	// Render
	if other.Render.Template != "" {
		c.Render.Template = other.Render.Template
	}

	// Query
	if other.Query.Timeout != 0 {
		c.Query.Timeout = other.Query.Timeout
	}

	// NATS
	if other.NATS.URL != "" {
		c.NATS.URL = other.NATS.URL
	}
	if other.NATS.Subject != "" {
		c.NATS.Subject = other.NATS.Subject
	}
}
