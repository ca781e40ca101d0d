// Package logging builds the slog.Logger used by binaries and handed to
// cache.Options.Logger.
package logging

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"

	"github.com/IvanBrykalov/shardmap/internal/config"
)

// ErrInvalid reports an unknown level or format.
var ErrInvalid = errors.New("logging: invalid settings")

// New returns a logger for s and a cleanup func that closes the rotating
// file, if any. Without a file the logger writes to stderr.
func New(s config.LogSettings) (*slog.Logger, func() error, error) {
	return newWithWriter(s, os.Stderr)
}

func newWithWriter(s config.LogSettings, stderr io.Writer) (*slog.Logger, func() error, error) {
	level, err := ParseLevel(s.Level)
	if err != nil {
		return nil, nil, err
	}

	out := stderr
	cleanup := func() error { return nil }
	if s.File != "" {
		lj := &lumberjack.Logger{
			Filename:   s.File,
			MaxSize:    s.MaxSizeMB,
			MaxBackups: s.MaxBackups,
			Compress:   true,
		}
		out = lj
		cleanup = lj.Close
	}

	hopts := &slog.HandlerOptions{Level: level}
	var h slog.Handler
	switch strings.ToLower(strings.TrimSpace(s.Format)) {
	case "", "text":
		h = slog.NewTextHandler(out, hopts)
	case "json":
		h = slog.NewJSONHandler(out, hopts)
	default:
		_ = cleanup()
		return nil, nil, fmt.Errorf("%w: unknown format %q", ErrInvalid, s.Format)
	}
	return slog.New(h), cleanup, nil
}

// ParseLevel accepts debug, info, warn/warning and error (case-insensitive).
// Empty means info.
func ParseLevel(s string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("%w: unknown level %q", ErrInvalid, s)
	}
}
