package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// =============================================================================
// Config Types
// =============================================================================

// Config holds the tool's own configuration. This is distinct from the
// per-service pipeline configuration resolved at deploy time.
type Config struct {
	Cloud  CloudConfig  `mapstructure:"cloud"`
	Deploy DeployConfig `mapstructure:"deploy"`
	Log    LogConfig    `mapstructure:"log"`
}

// CloudConfig holds Pipeship Cloud connection configuration.
type CloudConfig struct {
	// Endpoint is the base URL of the Pipeship Cloud API.
	Endpoint string `mapstructure:"endpoint"`

	// APIKey authenticates requests. Usually set via the
	// PIPESHIP_CLOUD_API_KEY environment variable.
	APIKey string `mapstructure:"api_key"`

	// Timeout is the per-request HTTP timeout.
	Timeout time.Duration `mapstructure:"timeout"`
}

// DeployConfig holds defaults for the deployment lifecycle.
type DeployConfig struct {
	// Wait determines whether create waits for readiness by default.
	Wait bool `mapstructure:"wait"`

	// Timeout bounds the readiness wait.
	Timeout time.Duration `mapstructure:"timeout"`

	// PollInterval is the pause between readiness checks.
	PollInterval time.Duration `mapstructure:"poll_interval"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// =============================================================================
// Config Loading
// =============================================================================

// LoadConfig loads configuration from file and environment.
func LoadConfig(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("cloud.endpoint", "http://localhost:8080")
	v.SetDefault("cloud.api_key", "")
	v.SetDefault("cloud.timeout", "30s")
	v.SetDefault("deploy.wait", true)
	v.SetDefault("deploy.timeout", "1h")
	v.SetDefault("deploy.poll_interval", "5s")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	// Load from file if provided
	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			// Only return error if file was explicitly specified and is invalid
			if _, ok := err.(viper.ConfigParseError); ok {
				return nil, fmt.Errorf("failed to parse config file: %w", err)
			}
			// File not found is OK, we'll use defaults
		}
	}

	// Enable environment variable overrides
	v.SetEnvPrefix("PIPESHIP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Unmarshal config
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

// =============================================================================
// Logger Setup
// =============================================================================

// SetupLogger creates a logger with the configured level and format.
// CLI logs go to stderr so command output stays parseable.
func SetupLogger(cfg *Config) *slog.Logger {
	var level slog.Level
	switch strings.ToLower(cfg.Log.Level) {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	if strings.ToLower(cfg.Log.Format) == "json" {
		handler = slog.NewJSONHandler(os.Stderr, opts)
	} else {
		handler = slog.NewTextHandler(os.Stderr, opts)
	}

	return slog.New(handler)
}
