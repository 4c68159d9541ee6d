package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.yaml.in/yaml/v4"
)

// RawDuration accepts either a Go duration string (5s) or a bare number of seconds (5).
type RawDuration time.Duration

// UnmarshalYAML handles both duration and integer forms
func (d *RawDuration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}

	parsed, err := ParseInterval(s)
	if err != nil {
		return err
	}
	*d = RawDuration(parsed)
	return nil
}

// ParseInterval parses a Go duration string, treating a bare integer as seconds.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, nil
	}

	if secs, err := strconv.ParseUint(s, 10, 32); err == nil {
		return time.Duration(secs) * time.Second, nil
	}

	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, fmt.Errorf("invalid interval %q: %w", s, err)
	}
	return d, nil
}
