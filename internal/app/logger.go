package app

import (
	"fmt"
	"io"
	"log/slog"
)

// Log formats.
const (
	LogText = "text"
	LogJSON = "json"
)

// parseLevel reads a slog level name such as "debug" or "warn+2". An empty
// name means info.
func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if s == "" {
		return slog.LevelInfo, nil
	}
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("invalid log level %q: %w", s, err)
	}
	return level, nil
}

// newLogger builds the run's logger from a validated Config. It does not set
// the global logger. Source positions are attached at debug level so stage
// diagnostics can be traced back to the code that emitted them.
func newLogger(cfg *Config, outW io.Writer) *slog.Logger {
	level, err := parseLevel(cfg.LogLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level, AddSource: level < slog.LevelInfo}

	var handler slog.Handler
	switch cfg.LogFormat {
	case LogJSON:
		handler = slog.NewJSONHandler(outW, opts)
	default:
		handler = slog.NewTextHandler(outW, opts)
	}
	return slog.New(handler).With("input", cfg.InputPath)
}
