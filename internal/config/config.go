// Package config loads runtime settings from viper.
package config

import (
	"fmt"

	"github.com/spf13/viper"
)

// GazetteerConfig selects the place table.
type GazetteerConfig struct {
	// Path is empty for the built-in table, a .db file for a sqlite store,
	// or a directory holding places.tsv and countries.tsv.
	Path string `mapstructure:"path"`
}

// OutputConfig controls how results are printed.
type OutputConfig struct {
	Format    string `mapstructure:"format"`
	Colors    string `mapstructure:"colors"`
	LocalEcho bool   `mapstructure:"local_echo"`
}

// ServerConfig holds settings for the HTTP API.
type ServerConfig struct {
	Addr          string  `mapstructure:"addr"`
	RateLimit     float64 `mapstructure:"rate_limit"`
	Burst         int     `mapstructure:"burst"`
	Watch         bool    `mapstructure:"watch"`
	TelemetryPath string  `mapstructure:"telemetry_path"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Config holds all runtime configuration.
// Values are populated from .when.yaml, WHEN_* env vars, and CLI flags.
type Config struct {
	LocalZone string          `mapstructure:"local_zone"`
	Gazetteer GazetteerConfig `mapstructure:"gazetteer"`
	Output    OutputConfig    `mapstructure:"output"`
	Server    ServerConfig    `mapstructure:"server"`
	Log       LogConfig       `mapstructure:"log"`
}

// Load reads configuration from viper, applying built-in defaults for any
// values not set by config file, environment, or flags.
func Load() (Config, error) {
	viper.SetDefault("local_zone", "")
	viper.SetDefault("gazetteer.path", "")
	viper.SetDefault("output.format", "long")
	viper.SetDefault("output.colors", "auto")
	viper.SetDefault("output.local_echo", false)
	viper.SetDefault("server.addr", "127.0.0.1:8080")
	viper.SetDefault("server.rate_limit", 10.0)
	viper.SetDefault("server.burst", 20)
	viper.SetDefault("server.watch", false)
	viper.SetDefault("server.telemetry_path", "")
	viper.SetDefault("log.level", "warn")

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("config: unmarshal: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be caught by type decoding.
func (c Config) Validate() error {
	switch c.Output.Format {
	case "long", "short", "json":
	default:
		return fmt.Errorf("config: output.format must be long, short or json, got %q", c.Output.Format)
	}
	switch c.Output.Colors {
	case "auto", "never", "always":
	default:
		return fmt.Errorf("config: output.colors must be auto, never or always, got %q", c.Output.Colors)
	}
	if c.Server.RateLimit < 0 {
		return fmt.Errorf("config: server.rate_limit must not be negative, got %v", c.Server.RateLimit)
	}
	if c.Server.RateLimit > 0 && c.Server.Burst < 1 {
		return fmt.Errorf("config: server.burst must be at least 1, got %d", c.Server.Burst)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("config: log.level must be debug, info, warn or error, got %q", c.Log.Level)
	}
	return nil
}
