// Package config handles loading and parsing application configuration.
// It supports three sources (later ones win):
//  1. A .env file in the working directory, if present.
//  2. A YAML file: CONFIG_PATH=/path/to/config.yaml or --config=...
//  3. Environment variables (env:"..." tags below).
//
// Unlike a database-backed service, this API can run with no config at
// all: every field has a default suitable for a local demo.
package config

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Environment names.
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
)

// Storage backend names.
const (
	BackendMemory = "memory"
	BackendSQLite = "sqlite"
)

// Config is the root configuration structure.
// Every field maps to a key in the YAML file AND can be overridden by
// the corresponding environment variable.
type Config struct {
	// Env controls log format and verbosity.
	// Valid values: "development", "staging", "production"
	Env     string `yaml:"environment" env:"ENVIRONMENT" env-default:"development"`
	Debug   bool   `yaml:"debug"       env:"DEBUG"       env-default:"true"`
	AppName string `yaml:"app_name"    env:"APP_NAME"    env-default:"API Gestión de Alumnos"`
	Version string `yaml:"version"     env:"APP_VERSION" env-default:"1.0.0"`

	// APIKey is the shared secret required on every mutating request.
	APIKey string `yaml:"api_key" env:"API_KEY" env-default:"dev-secret-key"`

	// AllowedOrigins is the CORS allow-list, comma separated in the env.
	AllowedOrigins []string `yaml:"allowed_origins" env:"ALLOWED_ORIGINS" env-separator:"," env-default:"http://localhost:3000"`

	HTTPServer `yaml:"http_server"`
	Demo       `yaml:"demo"`
	Storage    StorageConfig `yaml:"storage"`
}

// HTTPServer holds settings specific to the HTTP server.
type HTTPServer struct {
	Host            string        `yaml:"host"             env:"HOST"                  env-default:"0.0.0.0"`
	Port            int           `yaml:"port"             env:"PORT"                  env-default:"8000"`
	ReadTimeout     time.Duration `yaml:"read_timeout"     env:"HTTP_READ_TIMEOUT"     env-default:"10s"`
	WriteTimeout    time.Duration `yaml:"write_timeout"    env:"HTTP_WRITE_TIMEOUT"    env-default:"10s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"     env:"HTTP_IDLE_TIMEOUT"     env-default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"HTTP_SHUTDOWN_TIMEOUT" env-default:"5s"`
}

// Addr is the listen address, e.g. "0.0.0.0:8000".
func (h HTTPServer) Addr() string {
	return fmt.Sprintf("%s:%d", h.Host, h.Port)
}

// Demo controls the automatic rollback of demo data.
type Demo struct {
	// ResetWindow is how long mutations survive before the next request
	// puts the seed roster back.
	ResetWindow time.Duration `yaml:"reset_window" env:"RESET_WINDOW" env-default:"30m"`

	// ResetSweep is a cron spec for a background freshness check, so an
	// idle demo also rolls back. Empty disables the sweep.
	ResetSweep string `yaml:"reset_sweep" env:"RESET_SWEEP" env-default:"@every 1m"`
}

// StorageConfig selects the record backend.
type StorageConfig struct {
	Backend string `yaml:"backend" env:"STORAGE_BACKEND" env-default:"memory"`
	// Path is the SQLite DSN, only used by the sqlite backend.
	Path string `yaml:"path" env:"STORAGE_PATH" env-default:"file:alumnos?mode=memory&cache=shared"`
}

func (c *Config) IsDevelopment() bool { return c.Env == EnvDevelopment }
func (c *Config) IsStaging() bool     { return c.Env == EnvStaging }
func (c *Config) IsProduction() bool  { return c.Env == EnvProduction }

// Validate rejects values the rest of the program cannot work with.
func (c *Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("API_KEY must not be empty")
	}
	if c.ResetWindow <= 0 {
		return fmt.Errorf("RESET_WINDOW must be positive, got %s", c.ResetWindow)
	}
	switch c.Storage.Backend {
	case BackendMemory, BackendSQLite:
	default:
		return fmt.Errorf("unknown STORAGE_BACKEND %q", c.Storage.Backend)
	}
	return nil
}

// Load reads the config from path (YAML) if non-empty, otherwise from
// the environment only.
func Load(path string) (*Config, error) {
	var cfg Config

	if path != "" {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			return nil, fmt.Errorf("config file does not exist: %s", path)
		}
		// ReadConfig also applies env overrides and env-default values.
		if err := cleanenv.ReadConfig(path, &cfg); err != nil {
			return nil, fmt.Errorf("cannot read config: %w", err)
		}
	} else {
		if err := cleanenv.ReadEnv(&cfg); err != nil {
			return nil, fmt.Errorf("cannot read env: %w", err)
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// MustLoad reads, validates, and returns the application config.
// Functions prefixed with "Must" are allowed to fatal on failure.
func MustLoad() *Config {
	// A missing .env is the normal case in containers; ignore the error.
	// godotenv never overrides variables that are already set.
	_ = godotenv.Load()

	configPath := os.Getenv("CONFIG_PATH")
	if configPath == "" {
		flags := flag.String("config", "", "Path to an optional configuration YAML file")
		flag.Parse()
		configPath = *flags
	}

	cfg, err := Load(configPath)
	if err != nil {
		log.Fatal(err)
	}

	return cfg
}
