// Package testutil provides model fixtures and logging helpers for tests.
package testutil

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"testing"
)

// NewTestLogger returns a debug-level logger that writes through t.Log,
// so output only shows up for failing tests or with -v.
func NewTestLogger(t testing.TB) *slog.Logger {
	t.Helper()
	return slog.New(slog.NewTextHandler(tbWriter{t}, &slog.HandlerOptions{
		Level: slog.LevelDebug,
	}))
}

type tbWriter struct {
	t testing.TB
}

func (w tbWriter) Write(p []byte) (int, error) {
	w.t.Helper()
	w.t.Log(strings.TrimSuffix(string(p), "\n"))
	return len(p), nil
}

// LogRecorder is a slog handler that keeps every record it sees, for tests
// that assert a warning was logged.
type LogRecorder struct {
	mu      sync.Mutex
	records []slog.Record
}

// NewRecordingLogger returns a logger backed by a fresh LogRecorder.
func NewRecordingLogger() (*slog.Logger, *LogRecorder) {
	rec := &LogRecorder{}
	return slog.New(rec), rec
}

func (r *LogRecorder) Enabled(context.Context, slog.Level) bool { return true }

func (r *LogRecorder) Handle(_ context.Context, rec slog.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, rec.Clone())
	return nil
}

// Attributes on derived loggers are not tracked.
func (r *LogRecorder) WithAttrs([]slog.Attr) slog.Handler { return r }

func (r *LogRecorder) WithGroup(string) slog.Handler { return r }

// Messages returns the messages logged at level, in order.
func (r *LogRecorder) Messages(level slog.Level) []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []string
	for _, rec := range r.records {
		if rec.Level == level {
			out = append(out, rec.Message)
		}
	}
	return out
}
