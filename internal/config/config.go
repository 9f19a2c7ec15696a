// Package config provides configuration management for the client repository.
//
// Values are layered, later layers winning:
//  1. DefaultConfig
//  2. the YAML config file, if one is found
//  3. CLIENTREPO_* environment variables (a .env file in the working
//     directory is loaded first)
//
// Config file locations (priority order):
//  1. $CLIENTREPO_CONFIG
//  2. ./clientrepo.yaml
//  3. ~/.config/clientrepo/config.yaml
//  4. /etc/clientrepo/config.yaml
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Load finds and loads the config file, or returns defaults if none found.
// Environment overrides are applied in both cases.
func Load() (*Config, string, error) {
	_ = godotenv.Load(".env")

	path := FindConfigPath()

	if path == "" {
		cfg := DefaultConfig()
		if err := cfg.applyEnv(); err != nil {
			return nil, "", err
		}
		return cfg, "", cfg.Validate()
	}

	return LoadFromPath(path)
}

// LoadFromPath loads config from a specific path
func LoadFromPath(path string) (*Config, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, path, fmt.Errorf("read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, path, fmt.Errorf("parse config: %w", err)
	}

	cfg.applyDefaults()
	if err := cfg.applyEnv(); err != nil {
		return nil, path, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, path, err
	}

	return cfg, path, nil
}

// Save writes config to the specified path
func (c *Config) Save(path string) error {
	if err := EnsureConfigDir(path); err != nil {
		return fmt.Errorf("create config dir: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("marshal config: %w", err)
	}

	return os.WriteFile(path, data, 0644)
}

// DefaultConfig returns sensible defaults for a new installation
func DefaultConfig() *Config {
	return &Config{
		Version: 1,
		Backend: BackendJSON,
		Files: FilesConfig{
			JSON: "./clients.json",
			YAML: "./clients.yaml",
		},
		Database: DatabaseConfig{
			Host: "localhost",
			Port: 5433,
			Name: "travel_agency",
			User: "postgres",
			Path: "./clients.db",
		},
		Server: ServerConfig{
			Addr:            ":8080",
			RateLimitRPM:    600,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Log: LogConfig{
			Env:   "dev",
			Level: "info",
		},
	}
}

// applyDefaults fills in values a config file left empty
func (c *Config) applyDefaults() {
	def := DefaultConfig()

	if c.Version == 0 {
		c.Version = def.Version
	}
	if c.Backend == "" {
		c.Backend = def.Backend
	}
	if c.Files.JSON == "" {
		c.Files.JSON = def.Files.JSON
	}
	if c.Files.YAML == "" {
		c.Files.YAML = def.Files.YAML
	}
	if c.Database.Port == 0 {
		c.Database.Port = def.Database.Port
	}
	if c.Server.Addr == "" {
		c.Server.Addr = def.Server.Addr
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = def.Server.ShutdownTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = def.Log.Level
	}
}

// applyEnv overrides fields from CLIENTREPO_* variables
func (c *Config) applyEnv() error {
	setString(&c.Backend, "CLIENTREPO_BACKEND")
	setString(&c.Files.JSON, "CLIENTREPO_JSON_PATH")
	setString(&c.Files.YAML, "CLIENTREPO_YAML_PATH")
	setString(&c.Database.DSN, "CLIENTREPO_DB_DSN")
	setString(&c.Database.Host, "CLIENTREPO_DB_HOST")
	setString(&c.Database.Name, "CLIENTREPO_DB_NAME")
	setString(&c.Database.User, "CLIENTREPO_DB_USER")
	setString(&c.Database.Password, "CLIENTREPO_DB_PASSWORD")
	setString(&c.Database.Path, "CLIENTREPO_DB_PATH")
	setString(&c.Server.Addr, "CLIENTREPO_ADDR")
	setString(&c.Log.Env, "CLIENTREPO_LOG_ENV")
	setString(&c.Log.Level, "CLIENTREPO_LOG_LEVEL")

	if v := os.Getenv("CLIENTREPO_DB_PORT"); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("invalid CLIENTREPO_DB_PORT: %w", err)
		}
		c.Database.Port = port
	}
	if v := os.Getenv("CLIENTREPO_CORS_ORIGINS"); v != "" {
		c.Server.CORSOrigins = splitList(v)
	}
	if v := os.Getenv("CLIENTREPO_WATCH"); v != "" {
		watch, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("invalid CLIENTREPO_WATCH: %w", err)
		}
		c.Watch = watch
	}
	return nil
}

// Validate checks values that have no sensible fallback
func (c *Config) Validate() error {
	switch c.Backend {
	case BackendJSON, BackendYAML, BackendPostgres, BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q (want json, yaml, postgres or sqlite)", c.Backend)
	}
	if c.Server.RateLimitRPM < 0 {
		return fmt.Errorf("rate_limit_rpm must not be negative")
	}
	return nil
}

// IsFileBackend reports whether the configured backend is a flat file
func (c *Config) IsFileBackend() bool {
	return c.Backend == BackendJSON || c.Backend == BackendYAML
}

// FilePath returns the file of the configured file backend
func (c *Config) FilePath() string {
	if c.Backend == BackendYAML {
		return c.Files.YAML
	}
	return c.Files.JSON
}

// Summary returns a human-readable config summary
func (c *Config) Summary() string {
	switch c.Backend {
	case BackendJSON, BackendYAML:
		return fmt.Sprintf("Backend: %s (%s), watch: %t", c.Backend, c.FilePath(), c.Watch)
	case BackendSQLite:
		return fmt.Sprintf("Backend: sqlite (%s)", c.Database.Path)
	default:
		if c.Database.DSN != "" {
			return "Backend: postgres (dsn)"
		}
		return fmt.Sprintf("Backend: postgres (%s:%d/%s)", c.Database.Host, c.Database.Port, c.Database.Name)
	}
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
