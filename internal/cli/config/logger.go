package config

import (
	"io"
	"log/slog"
	"strings"
)

// NewLogger builds the CLI logger. Verbose output forces debug level.
func NewLogger(cfg *Config, w io.Writer) *slog.Logger {
	level, err := ParseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelWarn
	}
	if cfg.Verbose {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(cfg.LogFormat, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}
