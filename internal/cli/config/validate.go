package config

import (
	"fmt"
	"log/slog"
	"slices"
	"strings"
)

var (
	outputFormats = []string{"auto", "text", "markdown", "md", "json"}
	logFormats    = []string{"text", "json"}
)

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if !slices.Contains(outputFormats, strings.ToLower(c.OutputFormat)) {
		return fmt.Errorf("invalid output format %q (expected one of: %s)", c.OutputFormat, strings.Join(outputFormats, ", "))
	}
	if !slices.Contains(logFormats, strings.ToLower(c.LogFormat)) {
		return fmt.Errorf("invalid log format %q (expected one of: %s)", c.LogFormat, strings.Join(logFormats, ", "))
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		return err
	}
	if s := c.Server; s != nil {
		if s.Port < 0 || s.Port > 65535 {
			return fmt.Errorf("invalid server port %d", s.Port)
		}
		if s.MaxBodyBytes < 0 {
			return fmt.Errorf("server max_body_bytes must not be negative")
		}
	}
	return nil
}

// ParseLevel parses a slog level name such as "debug" or "warn".
func ParseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}
