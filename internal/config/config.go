// Package config loads server configuration from a yaml file with
// environment-variable overrides.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Addr           string   `yaml:"addr"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds the sqlite database location.
type DatabaseConfig struct {
	Path string `yaml:"path"`
}

// AuthConfig holds token-verification settings. The JWT secret is the
// shared signing secret of the identity provider that issues user tokens.
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Environment string `yaml:"environment"`
	Level       string `yaml:"level"`
}

// Config is the full application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
	Log      LogConfig      `yaml:"log"`
}

// Load reads the yaml file at path (missing file is fine, env vars can carry
// everything), applies defaults and EDURANK_* overrides, and validates.
func Load(path string) (*Config, error) {
	var cfg Config

	data, err := os.ReadFile(path)
	if err == nil {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	if cfg.Server.Addr == "" {
		cfg.Server.Addr = ":8080"
	}
	if cfg.Database.Path == "" {
		cfg.Database.Path = "edurank.db"
	}
	if cfg.Log.Environment == "" {
		cfg.Log.Environment = "development"
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}

	if addr := os.Getenv("EDURANK_ADDR"); addr != "" {
		cfg.Server.Addr = addr
	}
	if dbPath := os.Getenv("EDURANK_DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}
	if secret := os.Getenv("EDURANK_JWT_SECRET"); secret != "" {
		cfg.Auth.JWTSecret = secret
	}
	if env := os.Getenv("EDURANK_ENV"); env != "" {
		cfg.Log.Environment = env
	}
	if level := os.Getenv("EDURANK_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}

	if cfg.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret must be set in %s or via EDURANK_JWT_SECRET", path)
	}

	return &cfg, nil
}
