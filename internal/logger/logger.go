// Package logger holds the process-wide structured logger.
package logger

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
)

// L is the global logger instance. It's initialized to discard all output by default.
// Call Init() to enable logging.
var L = discard()

// Options configures the logger initialization.
type Options struct {
	Enabled bool       // If false, all logging is discarded
	File    string     // Log file path. Empty means stderr.
	Level   slog.Level // Minimum log level. Default: LevelInfo
	JSON    bool       // JSON records instead of key=value text
}

// Init configures logging. Call from main() before any log calls. The
// returned closer releases the log file, if one was opened.
func Init(opts Options) (io.Closer, error) {
	if !opts.Enabled {
		L = discard()
		return nopCloser{}, nil
	}

	var (
		w      io.Writer = os.Stderr
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		if err := os.MkdirAll(filepath.Dir(opts.File), 0o755); err != nil {
			return nil, err
		}
		f, err := os.OpenFile(opts.File, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
		if err != nil {
			return nil, err
		}
		w, closer = f, f
	}

	L = New(w, opts.Level, opts.JSON)
	return closer, nil
}

// New builds a logger writing to w at the given level.
func New(w io.Writer, level slog.Level, json bool) *slog.Logger {
	hopts := &slog.HandlerOptions{Level: level}
	if json {
		return slog.New(slog.NewJSONHandler(w, hopts))
	}
	return slog.New(slog.NewTextHandler(w, hopts))
}

// Debug logs a debug message with optional key-value pairs.
func Debug(msg string, args ...any) { L.Debug(msg, args...) }

// Info logs an info message with optional key-value pairs.
func Info(msg string, args ...any) { L.Info(msg, args...) }

// Warn logs a warning message with optional key-value pairs.
func Warn(msg string, args ...any) { L.Warn(msg, args...) }

// Error logs an error message with optional key-value pairs.
func Error(msg string, args ...any) { L.Error(msg, args...) }

func discard() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
