// Package log builds the process logger: JSON lines through an eliding
// handler into a rotated file.
package log

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
)

// Options configures New
type Options struct {
	Level     string
	File      string
	MaxSizeMB int
	MaxFiles  int
}

// ParseLevel maps debug, info, warn and error to slog levels
func ParseLevel(s string) (slog.Level, error) {
	var l slog.Level
	if err := l.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("log level %q: %w", s, err)
	}
	return l, nil
}

// New opens the rotated log file and returns a logger writing to it. Close
// the returned closer on exit.
func New(opts Options) (*slog.Logger, io.Closer, error) {
	level, err := ParseLevel(opts.Level)
	if err != nil {
		return nil, nil, err
	}
	w, err := logFile(opts)
	if err != nil {
		return nil, nil, err
	}
	return NewWithWriter(w, level), w, nil
}

// NewWithWriter returns a JSON logger on w at level
func NewWithWriter(w io.Writer, level slog.Level) *slog.Logger {
	base := slog.NewJSONHandler(w, &slog.HandlerOptions{Level: level})
	return slog.New(NewElidingHandler(base))
}

// Discard returns a logger that drops everything
func Discard() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}
