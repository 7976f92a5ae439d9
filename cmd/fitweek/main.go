package main

import (
	"context"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/fatih/color"
	"github.com/joho/godotenv"
	"github.com/myrjola/fitweek/internal/envstruct"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/logging"
)

type config struct {
	// SqliteURL is the path or URL of the SQLite database. ":memory:" gives a throwaway database. Commands that
	// store data print a notice and do nothing while it is empty.
	SqliteURL string `env:"FITWEEK_SQLITE_URL" envDefault:""`
	// BlobDir is where uploaded files are kept.
	BlobDir string `env:"FITWEEK_BLOB_DIR" envDefault:"./fitweek-blobs"`
	// BlobBaseURL prefixes the URLs of uploaded files. File URLs are used when empty.
	BlobBaseURL string `env:"FITWEEK_BLOB_BASE_URL" envDefault:""`
	// LogFile is an optional log file path. Logs go to stderr when empty.
	LogFile     string `env:"FITWEEK_LOG_FILE" envDefault:""`
	LogLevel    string `env:"FITWEEK_LOG_LEVEL" envDefault:"warn"`
	MetricsFile string `env:"FITWEEK_METRICS_FILE" envDefault:""`
	Language    string `env:"FITWEEK_LANGUAGE" envDefault:"en"`
	NoColor     bool   `env:"FITWEEK_NO_COLOR" envDefault:"false"`
	// Seed makes plan generation reproducible when non-zero.
	Seed int `env:"FITWEEK_SEED" envDefault:"0"`
}

// BackendConfigured reports whether a database has been configured.
func (c config) BackendConfigured() bool {
	return c.SqliteURL != ""
}

func run(
	ctx context.Context,
	args []string,
	stdout io.Writer,
	stderr io.Writer,
	lookupEnv func(string) (string, bool),
) (err error) {
	var cancel context.CancelFunc

	defer func() {
		if excp := recover(); excp != nil {
			err = errors.DecoratePanic(excp)
		}
	}()

	ctx, cancel = signal.NotifyContext(ctx, os.Interrupt)
	defer cancel()

	var cfg config
	if err = envstruct.Populate(&cfg, lookupEnv); err != nil {
		return errors.Wrap(err, "populate config")
	}
	if cfg.NoColor {
		color.NoColor = true
	}

	logger, logCloser := logging.New(logging.Options{Level: cfg.LogLevel, File: cfg.LogFile, Stdout: stderr})
	defer logCloser.Close()

	app := newApplication(cfg, logger, stdout)
	defer app.close()

	root := newRootCmd(app)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	start := time.Now()
	executed, err := root.ExecuteContextC(ctx)
	app.observeCommand(executed, time.Since(start), err)
	if metricsErr := app.writeMetrics(); metricsErr != nil {
		logger.LogAttrs(ctx, slog.LevelWarn, "could not write metrics", errors.SlogError(metricsErr))
	}
	return err
}

// dotenvLookup consults the process environment first and the .env file second. A missing .env file is ignored.
func dotenvLookup(path string) func(string) (string, bool) {
	fileEnv, err := godotenv.Read(path)
	if err != nil {
		fileEnv = map[string]string{}
	}
	return func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := fileEnv[key]
		return v, ok
	}
}

func main() {
	ctx := context.Background()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr, dotenvLookup(".env")); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}
