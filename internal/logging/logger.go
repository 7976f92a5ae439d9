package logging

import (
	"io"
	"log/slog"
	"strings"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Options configures [New].
type Options struct {
	// Level is one of debug, info, warn or error. Unknown values fall back to info.
	Level string
	// File is an optional log file path. Logs are written to Stdout when empty.
	File string
	// Stdout receives the logs when File is empty.
	Stdout io.Writer
}

const maxLogFileSizeMB = 20

// New creates the application logger. The returned closer flushes and closes the log file if there is one.
func New(opts Options) (*slog.Logger, io.Closer) {
	var (
		sink   = opts.Stdout
		closer io.Closer = nopCloser{}
	)
	if opts.File != "" {
		rotating := &lumberjack.Logger{ //nolint:exhaustruct // defaults keep all backups.
			Filename:  opts.File,
			MaxSize:   maxLogFileSizeMB,
			LocalTime: false,
			Compress:  true,
		}
		sink = rotating
		closer = rotating
	}

	handler := NewContextHandler(slog.NewTextHandler(sink, &slog.HandlerOptions{
		AddSource:   false,
		Level:       ParseLevel(opts.Level),
		ReplaceAttr: nil,
	}))
	return slog.New(handler), closer
}

// ParseLevel maps a textual level to [slog.Level].
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
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

type nopCloser struct{}

func (nopCloser) Close() error { return nil }
