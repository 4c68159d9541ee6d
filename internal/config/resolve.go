package config

import (
	"fmt"
	"maps"
	"time"
)

// Resolve converts a raw config into a validated Config with defaults applied
func Resolve(raw *RawConfig) (*Config, error) {
	level, err := ParseLogLevel(raw.Log.Level)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: raw.Server.Port,
			Path: raw.Server.Path,
		},
		Sampling: SamplingConfig{
			Interval: time.Duration(raw.Sampling.Interval),
		},
		Log: LogConfig{
			Level: level,
		},
		Export:   resolveExport(&raw.Export),
		Settings: resolveSettings(&raw.Settings),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// resolveExport copies export settings, detaching maps from the raw config
func resolveExport(raw *RawExportConfig) ExportConfig {
	if raw.OTEL == nil {
		return ExportConfig{}
	}

	return ExportConfig{
		OTEL: &OTELExportConfig{
			Enabled:   raw.OTEL.Enabled,
			Transport: raw.OTEL.Transport,
			Host:      raw.OTEL.Host,
			Port:      raw.OTEL.Port,
			Interval:  time.Duration(raw.OTEL.Interval),
			Resource:  maps.Clone(raw.OTEL.Resource),
			Headers:   maps.Clone(raw.OTEL.Headers),
		},
	}
}

// resolveSettings copies general settings
func resolveSettings(raw *RawSettingsConfig) SettingsConfig {
	return SettingsConfig{
		InternalMetrics: InternalMetricsConfig{
			Enabled: raw.InternalMetrics.Enabled,
			Path:    raw.InternalMetrics.Path,
		},
	}
}
