package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/myrjola/fitweek/internal/blobstore"
	"github.com/myrjola/fitweek/internal/diet"
	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/i18n"
	"github.com/myrjola/fitweek/internal/metrics"
	"github.com/myrjola/fitweek/internal/profile"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/report"
	"github.com/myrjola/fitweek/internal/sqlite"
	"github.com/myrjola/fitweek/internal/workout"
	"github.com/spf13/cobra"
)

var errBackendMissing = errors.NewSentinel("backend not configured")

type application struct {
	cfg     config
	logger  *slog.Logger
	out     io.Writer
	lang    i18n.Language
	metrics *metrics.Manager
	library *workout.Library

	// Set by open.
	db       *sqlite.Database
	cancelDB context.CancelFunc
	store    *docstore.Store
	workouts *workout.Service
	profiles *profile.Service
	progress *progress.Service
	diets    *diet.Service
}

func newApplication(cfg config, logger *slog.Logger, out io.Writer) *application {
	return &application{
		cfg:      cfg,
		logger:   logger,
		out:      out,
		lang:     i18n.Parse(cfg.Language),
		metrics:  metrics.NewManager("fitweek", "cli"),
		library:  workout.DefaultLibrary(),
		db:       nil,
		cancelDB: nil,
		store:    nil,
		workouts: nil,
		profiles: nil,
		progress: nil,
		diets:    nil,
	}
}

// open connects to the database and wires the services. It is a no-op when already open.
func (app *application) open(ctx context.Context) error {
	if app.store != nil {
		return nil
	}
	if !app.cfg.BackendConfigured() {
		return errBackendMissing
	}

	// The optimizer of the database lives until close.
	dbCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	db, err := sqlite.NewDatabase(dbCtx, app.cfg.SqliteURL, app.logger)
	if err != nil {
		cancel()
		return errors.Wrap(err, "open database", slog.String("url", app.cfg.SqliteURL))
	}
	blobs, err := blobstore.NewDisk(app.cfg.BlobDir, app.cfg.BlobBaseURL, app.logger)
	if err != nil {
		cancel()
		_ = db.Close()
		return errors.Wrap(err, "open blob store")
	}

	opts := []workout.Option{workout.WithLibrary(app.library)}
	if app.cfg.Seed != 0 {
		opts = append(opts, workout.WithRand(workout.NewSeededRand(uint64(app.cfg.Seed)))) //nolint:gosec // seed only.
	}

	app.db = db
	app.cancelDB = cancel
	app.store = docstore.New(db, app.logger)
	app.workouts = workout.NewService(app.store, app.logger, app.metrics, opts...)
	app.progress = progress.NewService(app.store, app.logger, app.metrics)
	app.profiles = profile.NewService(app.store, app.progress, app.logger)
	app.diets = diet.NewService(app.store, blobs, app.profiles, app.logger, app.metrics)
	return nil
}

func (app *application) close() {
	if app.db == nil {
		return
	}
	app.cancelDB()
	if err := app.db.Close(); err != nil {
		app.logger.LogAttrs(context.Background(), slog.LevelWarn, "close database", errors.SlogError(err))
	}
}

// withBackend opens the backend before running fn. Without a configured backend a notice is printed instead and the
// command succeeds.
func (app *application) withBackend(fn func(cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		err := app.open(cmd.Context())
		if errors.Is(err, errBackendMissing) {
			app.notice(app.tr("cli.backend.missing"))
			return nil
		}
		if err != nil {
			return err
		}
		return fn(cmd, args)
	}
}

func (app *application) tr(key string, args ...any) string {
	return i18n.Translatef(app.lang, key, args...)
}

func (app *application) reportSources() report.Sources {
	return report.Sources{Profiles: app.profiles, Weeks: app.workouts, Measurements: app.progress}
}

// onboardedProfile returns the profile of uid or prints the onboarding notice and returns false.
func (app *application) onboardedProfile(ctx context.Context, uid string) (profile.Profile, bool, error) {
	p, err := app.profiles.Get(ctx, uid)
	if err != nil {
		return profile.Profile{}, false, err
	}
	if !p.OnboardingComplete {
		app.notice(app.tr("cli.onboarding.pending", uid))
		return p, false, nil
	}
	return p, true, nil
}

func (app *application) observeCommand(cmd *cobra.Command, elapsed time.Duration, err error) {
	if cmd == nil {
		return
	}
	status := "ok"
	if err != nil {
		status = "error"
	}
	app.metrics.HistCommandDuration.WithLabelValues(cmd.CommandPath(), status).Observe(elapsed.Seconds())
	if err != nil && !isUserError(err) {
		app.logger.LogAttrs(context.Background(), slog.LevelError, "command failed",
			slog.String("command", cmd.CommandPath()), errors.SlogError(err))
	}
}

func (app *application) writeMetrics() error {
	if app.cfg.MetricsFile == "" {
		return nil
	}
	if err := app.metrics.WriteTextfile(app.cfg.MetricsFile); err != nil {
		return fmt.Errorf("write metrics to %s: %w", app.cfg.MetricsFile, err)
	}
	return nil
}
