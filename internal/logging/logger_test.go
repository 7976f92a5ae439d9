package logging_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/fitweek/internal/logging"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{in: "debug", want: slog.LevelDebug},
		{in: " WARN ", want: slog.LevelWarn},
		{in: "error", want: slog.LevelError},
		{in: "", want: slog.LevelInfo},
		{in: "verbose", want: slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := logging.ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNew_ContextAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(logging.Options{Level: "debug", File: "", Stdout: &buf})
	defer closer.Close()

	ctx := logging.WithUser(context.Background(), "user-42")
	ctx = logging.WithAttrs(ctx, slog.String("week_id", "2024-W01"))
	logger.LogAttrs(ctx, slog.LevelDebug, "ensured week")

	line := buf.String()
	for _, want := range []string{"msg=\"ensured week\"", "uid=user-42", "week_id=2024-W01"} {
		if !strings.Contains(line, want) {
			t.Errorf("expected %q to contain %q", line, want)
		}
	}
}

func TestWithAttrs_SiblingsDoNotShareAttributes(t *testing.T) {
	var buf bytes.Buffer
	logger, closer := logging.New(logging.Options{Level: "info", File: "", Stdout: &buf})
	defer closer.Close()

	parent := logging.WithAttrs(context.Background(), slog.String("a", "1"), slog.String("b", "2"))
	first := logging.WithAttrs(parent, slog.String("c", "first"))
	_ = logging.WithAttrs(parent, slog.String("c", "second"))

	logger.LogAttrs(first, slog.LevelInfo, "check")
	if line := buf.String(); strings.Contains(line, "c=second") {
		t.Errorf("sibling context leaked into %q", line)
	}
}

func TestNew_WritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "fitweek.log")
	logger, closer := logging.New(logging.Options{Level: "info", File: path, Stdout: nil})

	logger.LogAttrs(t.Context(), slog.LevelInfo, "rolled over week")
	if err := closer.Close(); err != nil {
		t.Fatalf("close log file: %v", err)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	if !strings.Contains(string(content), "rolled over week") {
		t.Errorf("log file content %q misses message", content)
	}
}
