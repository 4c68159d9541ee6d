package config

import (
	"fmt"
	"strings"
)

// DefaultInternalMetricsPath is where self metrics are served when enabled.
const DefaultInternalMetricsPath = "/internal/metrics"

// SettingsConfig holds general application settings.
type SettingsConfig struct {
	InternalMetrics InternalMetricsConfig
}

// InternalMetricsConfig controls the exporter's self-monitoring metrics.
type InternalMetricsConfig struct {
	Enabled bool
	Path    string
}

// Validate applies defaults and validates settings configuration.
func (s *SettingsConfig) Validate() error {
	if s.InternalMetrics.Path == "" {
		s.InternalMetrics.Path = DefaultInternalMetricsPath
	}
	if !strings.HasPrefix(s.InternalMetrics.Path, "/") || s.InternalMetrics.Path == "/" {
		return fmt.Errorf("invalid internal metrics path: %q", s.InternalMetrics.Path)
	}
	return nil
}
