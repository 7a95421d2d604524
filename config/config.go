// Package config loads and validates the portal configuration. It is
// read once at startup; nothing re-reads configuration per request.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the document portal.
type Config struct {
	General   GeneralConfig   `mapstructure:"general"`
	Server    ServerConfig    `mapstructure:"server"`
	Search    SearchConfig    `mapstructure:"search"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

// GeneralConfig contains general application settings.
type GeneralConfig struct {
	Debug    bool   `mapstructure:"debug"`
	LogLevel string `mapstructure:"log_level"`
	Listen   string `mapstructure:"listen"`
}

// ServerConfig contains HTTP server, session and rate-limit settings.
type ServerConfig struct {
	Address   string          `mapstructure:"address"`
	JWTSecret string          `mapstructure:"jwt_secret"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

func (s ServerConfig) Validate() error {
	if strings.TrimSpace(s.JWTSecret) == "" {
		return fmt.Errorf("server.jwt_secret is required")
	}
	return nil
}

// RateLimitConfig bounds per-client request rates.
type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
}

// SearchConfig describes the external search index the DAL talks to.
type SearchConfig struct {
	Endpoint      string        `mapstructure:"endpoint"`
	Username      string        `mapstructure:"username"`
	Password      string        `mapstructure:"password"`
	ChunkIndex    string        `mapstructure:"chunk_index"`
	MetadataIndex string        `mapstructure:"metadata_index"`
	Timeout       time.Duration `mapstructure:"timeout"`
	ItemsPerPage  int           `mapstructure:"items_per_page"`
}

func (s SearchConfig) Validate() error {
	if strings.TrimSpace(s.Endpoint) == "" {
		return fmt.Errorf("search.endpoint is required")
	}
	if strings.TrimSpace(s.ChunkIndex) == "" {
		return fmt.Errorf("search.chunk_index is required")
	}
	if strings.TrimSpace(s.MetadataIndex) == "" {
		return fmt.Errorf("search.metadata_index is required")
	}
	if s.ItemsPerPage <= 0 {
		return fmt.Errorf("search.items_per_page must be > 0")
	}
	return nil
}

// TelemetryConfig contains monitoring settings.
type TelemetryConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	MetricsPort int  `mapstructure:"metrics_port"`
}

func (t TelemetryConfig) Validate() error {
	if t.Enabled && t.MetricsPort < 0 {
		return fmt.Errorf("telemetry.metrics_port cannot be negative")
	}
	return nil
}

// LoadConfig reads the config file (JSON, discovered under ./config or
// the working directory when path is empty) plus CICA_* environment
// overrides, and validates every section. A missing or invalid
// configuration is fatal; callers must not start serving on error.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("json")
	v.SetDefault("general.log_level", "info")
	v.SetDefault("general.listen", ":8080")
	v.SetDefault("search.timeout", 30*time.Second)
	v.SetDefault("search.items_per_page", 10)
	v.SetDefault("server.rate_limit.requests_per_second", 20.0)
	v.SetDefault("server.rate_limit.burst", 40)
	v.SetDefault("telemetry.enabled", true)

	if path == "" {
		v.AddConfigPath("./config")
		v.AddConfigPath(".")
	} else {
		v.SetConfigFile(path)
	}

	v.SetEnvPrefix("CICA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok || path != "" {
			return nil, fmt.Errorf("read config: %w", err)
		}
		// No file found: env overrides and defaults alone may still
		// form a valid configuration.
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every section.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	return c.Telemetry.Validate()
}
