package config

import (
	"time"
)

// Backend names
const (
	BackendJSON     = "json"
	BackendYAML     = "yaml"
	BackendPostgres = "postgres"
	BackendSQLite   = "sqlite"
)

// Config is the root configuration structure
type Config struct {
	Version  int            `yaml:"version"`
	Backend  string         `yaml:"backend"` // json, yaml, postgres, sqlite
	Files    FilesConfig    `yaml:"files"`
	Database DatabaseConfig `yaml:"database"`
	Server   ServerConfig   `yaml:"server"`
	Log      LogConfig      `yaml:"log"`
	Watch    bool           `yaml:"watch"` // reload file backends on external edits
}

// FilesConfig holds the paths of the file backends
type FilesConfig struct {
	JSON string `yaml:"json"`
	YAML string `yaml:"yaml"`
}

// DatabaseConfig holds SQL backend settings
type DatabaseConfig struct {
	DSN      string `yaml:"dsn,omitempty"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Name     string `yaml:"name"`
	User     string `yaml:"user"`
	Password string `yaml:"password,omitempty"`
	Path     string `yaml:"path"` // sqlite file
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Addr            string   `yaml:"addr"`
	CORSOrigins     []string `yaml:"cors_origins,omitempty"`
	RateLimitRPM    int      `yaml:"rate_limit_rpm"`
	ShutdownTimeout Duration `yaml:"shutdown_timeout"`
}

// LogConfig holds logger settings
type LogConfig struct {
	Env   string `yaml:"env"`   // dev or prod
	Level string `yaml:"level"` // debug, info, warn, error
}

// Duration wraps time.Duration for YAML unmarshaling
type Duration time.Duration

// UnmarshalYAML implements yaml.Unmarshaler
func (d *Duration) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var s string
	if err := unmarshal(&s); err != nil {
		return err
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return err
	}
	*d = Duration(parsed)
	return nil
}

// MarshalYAML implements yaml.Marshaler
func (d Duration) MarshalYAML() (interface{}, error) {
	return time.Duration(d).String(), nil
}

// Duration returns the underlying time.Duration
func (d Duration) Duration() time.Duration {
	return time.Duration(d)
}
