package config

import (
	"fmt"
)

// Validate performs syntactic validation on raw config
func Validate(raw *RawConfig) error {
	return validateRawSyntax(raw)
}

// validateRawSyntax performs basic syntactic validation on raw config
func validateRawSyntax(raw *RawConfig) error {
	if raw.Server.Port < 0 || raw.Server.Port > 65535 {
		return fmt.Errorf("server: invalid port %d", raw.Server.Port)
	}

	if raw.Sampling.Interval < 0 {
		return fmt.Errorf("sampling: interval cannot be negative")
	}

	if _, err := ParseLogLevel(raw.Log.Level); err != nil {
		return fmt.Errorf("log: %w", err)
	}

	if otel := raw.Export.OTEL; otel != nil && otel.Enabled && otel.Interval < 0 {
		return fmt.Errorf("export.otel: interval cannot be negative")
	}

	return nil
}
