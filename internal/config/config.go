// Package config provides configuration management for the engine
// server and rulectl: environment variables take precedence over a
// YAML file, which takes precedence over defaults.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"

	"visaexpert/internal/catalogue"
	"visaexpert/internal/rule"
)

// Config is the complete server configuration.
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Catalogue CatalogueConfig `yaml:"catalogue"`
	Logging   LoggingConfig   `yaml:"logging"`
}

// ServerConfig contains server-level configuration.
type ServerConfig struct {
	Name        string `yaml:"name"`
	Version     string `yaml:"version"`
	Environment string `yaml:"environment"`
}

// CatalogueConfig configures which catalogue backend to load and the
// visa-type-order / goal-conclusion document.
type CatalogueConfig struct {
	Type            string `yaml:"type"` // "json", "sqlite", "neo4j"
	JSONPath        string `yaml:"json_path"`
	SQLitePath      string `yaml:"sqlite_path"`
	SQLiteTimeoutMs int    `yaml:"sqlite_timeout_ms"`

	Neo4jURI      string `yaml:"neo4j_uri"`
	Neo4jUsername string `yaml:"neo4j_username"`
	Neo4jPassword string `yaml:"neo4j_password"`
	Neo4jDatabase string `yaml:"neo4j_database"`

	FallbackType string `yaml:"fallback_type"`

	GoalActions   []string              `yaml:"goal_actions"`
	VisaTypeOrder []rule.VisaTypeConfig `yaml:"visa_type_order"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level            string `yaml:"level"`
	EnableTimestamps bool   `yaml:"enable_timestamps"`
}

// Default returns the default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Name:        "visaexpert",
			Version:     "0.1.0",
			Environment: "development",
		},
		Catalogue: CatalogueConfig{
			Type:            "json",
			JSONPath:        "./data/catalogue.json",
			SQLiteTimeoutMs: 5000,
			Neo4jDatabase:   "neo4j",
			FallbackType:    "",
		},
		Logging: LoggingConfig{
			Level:            "info",
			EnableTimestamps: true,
		},
	}
}

// Load loads configuration from defaults, then environment variables.
func Load() (*Config, error) {
	cfg := Default()
	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("config: loading from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// LoadFromFile loads configuration from a YAML file, then applies
// environment-variable overrides (env wins over file).
func LoadFromFile(path string) (*Config, error) {
	cfg := Default()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	if err := cfg.loadFromEnv(); err != nil {
		return nil, fmt.Errorf("config: loading from environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: invalid configuration: %w", err)
	}
	return cfg, nil
}

// loadFromEnv applies VX_<SECTION>_<KEY> environment overrides.
func (c *Config) loadFromEnv() error {
	if v := os.Getenv("VX_SERVER_NAME"); v != "" {
		c.Server.Name = v
	}
	if v := os.Getenv("VX_SERVER_ENVIRONMENT"); v != "" {
		c.Server.Environment = v
	}

	if v := os.Getenv("VX_CATALOGUE_TYPE"); v != "" {
		c.Catalogue.Type = v
	}
	if v := os.Getenv("VX_CATALOGUE_JSON_PATH"); v != "" {
		c.Catalogue.JSONPath = v
	}
	if v := os.Getenv("VX_CATALOGUE_SQLITE_PATH"); v != "" {
		c.Catalogue.SQLitePath = v
	}
	if v := os.Getenv("VX_CATALOGUE_SQLITE_TIMEOUT_MS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Catalogue.SQLiteTimeoutMs = n
		}
	}
	if v := os.Getenv("VX_CATALOGUE_NEO4J_URI"); v != "" {
		c.Catalogue.Neo4jURI = v
	}
	if v := os.Getenv("VX_CATALOGUE_NEO4J_USERNAME"); v != "" {
		c.Catalogue.Neo4jUsername = v
	}
	if v := os.Getenv("VX_CATALOGUE_NEO4J_PASSWORD"); v != "" {
		c.Catalogue.Neo4jPassword = v
	}
	if v := os.Getenv("VX_CATALOGUE_FALLBACK_TYPE"); v != "" {
		c.Catalogue.FallbackType = v
	}

	if v := os.Getenv("VX_LOGGING_LEVEL"); v != "" {
		c.Logging.Level = strings.ToLower(v)
	}
	if v := os.Getenv("VX_LOGGING_ENABLE_TIMESTAMPS"); v != "" {
		c.Logging.EnableTimestamps = parseBool(v)
	}

	return nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Server.Name == "" {
		return fmt.Errorf("server.name cannot be empty")
	}
	if c.Server.Environment != "development" && c.Server.Environment != "staging" && c.Server.Environment != "production" {
		return fmt.Errorf("server.environment must be one of: development, staging, production")
	}

	switch catalogue.BackendType(c.Catalogue.Type) {
	case catalogue.BackendJSON:
		if c.Catalogue.JSONPath == "" {
			return fmt.Errorf("catalogue.json_path required for json backend")
		}
	case catalogue.BackendSQLite:
		if c.Catalogue.SQLitePath == "" {
			return fmt.Errorf("catalogue.sqlite_path required for sqlite backend")
		}
	case catalogue.BackendNeo4j:
		if c.Catalogue.Neo4jURI == "" {
			return fmt.Errorf("catalogue.neo4j_uri required for neo4j backend")
		}
	default:
		return fmt.Errorf("catalogue.type must be one of: json, sqlite, neo4j")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	return nil
}

// CatalogueBackendConfig converts the YAML-facing CatalogueConfig into
// the catalogue.Config the loader factory consumes. GoalActions and
// VisaTypeOrder are not carried over, and no caller applies them: the
// loaded catalogue's goal actions and visa-type order come from the
// backend alone (the JSON document itself, or the SQLite/Neo4j tables).
func (c *Config) CatalogueBackendConfig() catalogue.Config {
	return catalogue.Config{
		Type:            catalogue.BackendType(c.Catalogue.Type),
		JSONPath:        c.Catalogue.JSONPath,
		SQLitePath:      c.Catalogue.SQLitePath,
		SQLiteTimeoutMs: c.Catalogue.SQLiteTimeoutMs,
		Neo4j: catalogue.Neo4jConfig{
			URI:      c.Catalogue.Neo4jURI,
			Username: c.Catalogue.Neo4jUsername,
			Password: c.Catalogue.Neo4jPassword,
			Database: c.Catalogue.Neo4jDatabase,
		},
		FallbackType: catalogue.BackendType(c.Catalogue.FallbackType),
	}
}

func parseBool(s string) bool {
	s = strings.ToLower(strings.TrimSpace(s))
	return s == "true" || s == "1" || s == "yes" || s == "on" || s == "enabled"
}
