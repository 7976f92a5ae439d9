// Package testhelpers contains helpers shared by package tests.
package testhelpers

import (
	"io"
	"log/slog"

	"github.com/myrjola/fitweek/internal/logging"
)

// NewLogger creates a debug level logger writing to logSink, usually a [Writer].
func NewLogger(logSink io.Writer) *slog.Logger {
	logger, _ := logging.New(logging.Options{Level: "debug", File: "", Stdout: logSink})
	return logger
}
