package config

import (
	"fmt"
	"io"
	"log/slog"
	"os"
)

// NewLogger builds a logger writing to w at the given level and format.
func NewLogger(level, format string, w io.Writer) (*slog.Logger, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(level)); err != nil {
		return nil, fmt.Errorf("invalid log level %q: %w", level, err)
	}

	opts := &slog.HandlerOptions{Level: lvl}
	switch format {
	case "json":
		return slog.New(slog.NewJSONHandler(w, opts)), nil
	case "text", "":
		return slog.New(slog.NewTextHandler(w, opts)), nil
	default:
		return nil, fmt.Errorf("invalid log format %q", format)
	}
}

// SetupLogger installs the configured logger as the slog default. Logs go
// to stderr so they never mix with command output.
func SetupLogger(c *Config) error {
	logger, err := NewLogger(c.LogLevel, c.LogFormat, os.Stderr)
	if err != nil {
		return err
	}
	slog.SetDefault(logger)
	return nil
}
