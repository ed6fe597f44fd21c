// Package config loads application configuration from environment
// variables (TABCLEANER_ prefix) with an optional YAML file underneath.
// Environment values win over file values; both win over defaults.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// envPrefix namespaces the environment variables.
const envPrefix = "TABCLEANER"

// Config is the complete application configuration.
type Config struct {
	Server  ServerConfig  `yaml:"server" envconfig:"SERVER"`
	Logging LoggingConfig `yaml:"logging" envconfig:"LOGGING"`
	Limits  LimitsConfig  `yaml:"limits" envconfig:"LIMITS"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT" default:"8080" validate:"gt=0,lte=65535"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT" default:"30s"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT" default:"60s"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT" default:"60s"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT" default:"15s"`
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string `yaml:"level" envconfig:"LEVEL" default:"info" validate:"oneof=debug info warn error"`
	Format string `yaml:"format" envconfig:"FORMAT" default:"json" validate:"oneof=json text"`
}

// LimitsConfig bounds request cost.
type LimitsConfig struct {
	// MaxUploadBytes caps multipart upload size.
	MaxUploadBytes int64 `yaml:"max_upload_bytes" envconfig:"MAX_UPLOAD_BYTES" default:"52428800" validate:"gt=0"`
	// RateRPS and RateBurst configure the per-server rate limiter.
	RateRPS   float64 `yaml:"rate_rps" envconfig:"RATE_RPS" default:"50" validate:"gt=0"`
	RateBurst int     `yaml:"rate_burst" envconfig:"RATE_BURST" default:"25" validate:"gt=0"`
	// DatasetTTL is how long an uploaded dataset is retained in the
	// store after its last use.
	DatasetTTL time.Duration `yaml:"dataset_ttl" envconfig:"DATASET_TTL" default:"1h"`
}

// Load builds the configuration from the optional YAML file named by
// TABCLEANER_CONFIG_FILE (config.yaml by default, when it exists) with
// environment variables layered on top and struct defaults filling the
// rest, then validates the result.
func Load() (*Config, error) {
	var cfg Config

	path := os.Getenv(envPrefix + "_CONFIG_FILE")
	if path == "" {
		path = "config.yaml"
	}
	if _, err := os.Stat(path); err == nil {
		fileCfg, err := loadFromFile(path)
		if err != nil {
			return nil, err
		}
		cfg = *fileCfg
	}

	// envconfig overlays set variables and fills remaining zero fields
	// with the struct defaults.
	if err := envconfig.Process(envPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

func loadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return &cfg, nil
}
