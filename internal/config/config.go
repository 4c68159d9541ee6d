package config

import (
	"fmt"
	"log/slog"
	"strings"
	"time"
)

const (
	// Server defaults
	DefaultPort        = 8080
	DefaultMetricsPath = "/metrics"

	// Sampling defaults
	DefaultSamplingInterval = 5 * time.Second

	// Logging defaults
	DefaultLogLevel = slog.LevelError
)

// Config holds the complete application configuration.
type Config struct {
	Server   ServerConfig
	Sampling SamplingConfig
	Log      LogConfig
	Export   ExportConfig
	Settings SettingsConfig
}

// Default returns a configuration with every default applied.
func Default() *Config {
	cfg := &Config{
		Log: LogConfig{Level: DefaultLogLevel},
	}
	// Defaults always validate.
	_ = cfg.Validate()
	return cfg
}

// Validate applies defaults and validates the whole configuration.
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return err
	}
	if err := c.Sampling.Validate(); err != nil {
		return err
	}
	if err := c.Export.Validate(); err != nil {
		return err
	}
	if err := c.Settings.Validate(); err != nil {
		return err
	}
	if c.Settings.InternalMetrics.Enabled && c.Settings.InternalMetrics.Path == c.Server.Path {
		return fmt.Errorf("internal metrics path %q conflicts with server path", c.Server.Path)
	}
	return nil
}

// ServerConfig defines the HTTP scrape endpoint.
type ServerConfig struct {
	Port int
	Path string
}

// Validate applies defaults and validates server configuration.
func (s *ServerConfig) Validate() error {
	if s.Port == 0 {
		s.Port = DefaultPort
	}
	if s.Path == "" {
		s.Path = DefaultMetricsPath
	}

	if s.Port < 0 || s.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", s.Port)
	}
	if !strings.HasPrefix(s.Path, "/") || s.Path == "/" {
		return fmt.Errorf("invalid server path: %q (must start with / and not be the root)", s.Path)
	}
	return nil
}

// Addr returns the listen address for the configured port.
func (s *ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

// SamplingConfig defines the host sampling loop.
type SamplingConfig struct {
	Interval time.Duration
}

// Validate applies defaults and validates sampling configuration.
func (s *SamplingConfig) Validate() error {
	if s.Interval == 0 {
		s.Interval = DefaultSamplingInterval
	}
	if s.Interval < 0 {
		return fmt.Errorf("sampling interval must be positive: %s", s.Interval)
	}
	return nil
}

// LogConfig defines log verbosity.
type LogConfig struct {
	Level slog.Level
}

// ParseLogLevel maps a level name to a slog level. An empty name yields the default.
func ParseLogLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "":
		return DefaultLogLevel, nil
	case "trace", "debug":
		return slog.LevelDebug, nil
	case "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return DefaultLogLevel, fmt.Errorf("invalid log level: %s (must be debug, info, warn, or error)", s)
	}
}
