// Package config loads server configuration from an optional YAML file and
// ALERTDB_* environment variables, with environment taking precedence.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/astronomy-commons/alertdb/pkg/observability"
	"github.com/astronomy-commons/alertdb/pkg/storage"
)

// Config holds all application configuration. It is assembled once at
// startup and never mutated afterward.
type Config struct {
	Server        ServerConfig        `yaml:"server"`
	Storage       storage.Config      `yaml:"storage"`
	Observability ObservabilityConfig `yaml:"observability"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Host            string        `yaml:"host"`
	Port            string        `yaml:"port"`
	ReadTimeout     time.Duration `yaml:"read_timeout"`
	WriteTimeout    time.Duration `yaml:"write_timeout"`
	IdleTimeout     time.Duration `yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	// Ops server (separate port for k8s probes and Prometheus scrapes)
	OpsPort string `yaml:"ops_port"`
}

// ObservabilityConfig holds logging and metrics settings
type ObservabilityConfig struct {
	LogLevel       string `yaml:"log_level"`
	MetricsEnabled bool   `yaml:"metrics_enabled"`
}

// DefaultConfig returns a Config suitable for local development with the
// local-files backend.
func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "127.0.0.1",
			Port:            "5000",
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    15 * time.Second,
			IdleTimeout:     60 * time.Second,
			ShutdownTimeout: 30 * time.Second,
			OpsPort:         "9090",
		},
		Storage: storage.DefaultConfig(),
		Observability: ObservabilityConfig{
			LogLevel:       "info",
			MetricsEnabled: true,
		},
	}
}

// Load assembles the configuration: defaults, then the YAML file at path (if
// path is non-empty), then environment variables. Command-line flags may
// still override individual fields afterward, so callers run Validate once
// all sources are applied.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config file: %w", err)
		}
	}

	cfg.applyEnv()
	return cfg, nil
}

// applyEnv overlays ALERTDB_* environment variables onto the config.
func (c *Config) applyEnv() {
	c.Server.Host = getEnv("ALERTDB_HOST", c.Server.Host)
	c.Server.Port = getEnv("ALERTDB_PORT", c.Server.Port)
	c.Server.OpsPort = getEnv("ALERTDB_OPS_PORT", c.Server.OpsPort)
	c.Server.ReadTimeout = getEnvDuration("ALERTDB_READ_TIMEOUT", c.Server.ReadTimeout)
	c.Server.WriteTimeout = getEnvDuration("ALERTDB_WRITE_TIMEOUT", c.Server.WriteTimeout)
	c.Server.IdleTimeout = getEnvDuration("ALERTDB_IDLE_TIMEOUT", c.Server.IdleTimeout)
	c.Server.ShutdownTimeout = getEnvDuration("ALERTDB_SHUTDOWN_TIMEOUT", c.Server.ShutdownTimeout)

	c.Storage.Type = getEnv("ALERTDB_BACKEND", c.Storage.Type)
	c.Storage.LocalRoot = getEnv("ALERTDB_LOCAL_ROOT", c.Storage.LocalRoot)
	c.Storage.S3Endpoint = getEnv("ALERTDB_S3_ENDPOINT", c.Storage.S3Endpoint)
	c.Storage.S3Region = getEnv("ALERTDB_S3_REGION", c.Storage.S3Region)
	c.Storage.S3Bucket = getEnv("ALERTDB_S3_BUCKET", c.Storage.S3Bucket)
	c.Storage.S3AccessKey = getEnv("ALERTDB_S3_ACCESS_KEY", c.Storage.S3AccessKey)
	c.Storage.S3SecretKey = getEnv("ALERTDB_S3_SECRET_KEY", c.Storage.S3SecretKey)
	c.Storage.S3UsePathStyle = getEnvBool("ALERTDB_S3_USE_PATH_STYLE", c.Storage.S3UsePathStyle)
	c.Storage.GCPProject = getEnv("ALERTDB_GCP_PROJECT", c.Storage.GCPProject)
	c.Storage.GCSBucket = getEnv("ALERTDB_GCS_BUCKET", c.Storage.GCSBucket)

	c.Observability.LogLevel = getEnv("ALERTDB_LOG_LEVEL", c.Observability.LogLevel)
	c.Observability.MetricsEnabled = getEnvBool("ALERTDB_METRICS_ENABLED", c.Observability.MetricsEnabled)
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("server port is required")
	}
	if c.Server.OpsPort == "" {
		return fmt.Errorf("ops port is required")
	}
	if c.Server.Port == c.Server.OpsPort {
		return fmt.Errorf("server port and ops port must be different")
	}

	if err := c.Storage.Validate(); err != nil {
		return err
	}

	return nil
}

// LogLevel parses the configured log level.
func (c *Config) LogLevel() observability.LogLevel {
	return observability.ParseLogLevel(strings.ToLower(c.Observability.LogLevel))
}

// getEnv returns an environment variable value or a default
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvBool returns a boolean environment variable or a default
func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		return strings.ToLower(value) == "true" || value == "1"
	}
	return defaultValue
}

// getEnvDuration returns a duration environment variable or a default
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
