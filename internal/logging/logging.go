// Package logging builds the slog loggers used across kgctl commands.
package logging

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// Options controls logger construction.
type Options struct {
	// Level is one of debug, info, warn, error. Defaults to info.
	Level string

	// Format is text or json. Defaults to text.
	Format string

	// Writer overrides the output destination. Defaults to os.Stderr.
	Writer io.Writer
}

// New returns a logger configured from opts.
func New(opts Options) *slog.Logger {
	w := opts.Writer
	if w == nil {
		w = os.Stderr
	}

	hopts := &slog.HandlerOptions{Level: ParseLevel(opts.Level)}

	if strings.EqualFold(opts.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}

	return slog.New(slog.NewTextHandler(w, hopts))
}

// ParseLevel maps a level name to a slog.Level. Unknown names fall back
// to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NewWithFile returns a logger that writes to stderr and to a log file,
// plus a close func for the file. Long-running commands (crawl, process)
// keep a per-run log next to their outputs.
func NewWithFile(opts Options, logPath string) (*slog.Logger, func() error, error) {
	if err := os.MkdirAll(filepath.Dir(logPath), 0755); err != nil {
		return nil, nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	f, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to open log file %s: %w", logPath, err)
	}

	base := opts.Writer
	if base == nil {
		base = os.Stderr
	}

	opts.Writer = io.MultiWriter(base, f)

	return New(opts), f.Close, nil
}
