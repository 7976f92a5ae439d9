package workout

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand/v2"
	"strings"
	"time"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/level"
	"github.com/myrjola/fitweek/internal/logging"
	"github.com/myrjola/fitweek/internal/metrics"
	"github.com/myrjola/fitweek/internal/week"
)

const (
	pointsPerWorkout = 10
	pointsPerDietDay = 5
)

// Service handles the weekly plan of a user.
type Service struct {
	repo      *repository
	library   *Library
	rand      Rand
	generator *Generator
	logger    *slog.Logger
	metrics   *metrics.Manager
	now       func() time.Time
}

// Option customises a [Service].
type Option func(*Service)

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithRand replaces the random source used for picking exercises.
func WithRand(r Rand) Option {
	return func(s *Service) { s.rand = r }
}

// WithLibrary replaces the embedded exercise library.
func WithLibrary(l *Library) Option {
	return func(s *Service) { s.library = l }
}

// NewService creates a new workout service.
func NewService(store *docstore.Store, logger *slog.Logger, m *metrics.Manager, opts ...Option) *Service {
	factory := newRepositoryFactory(store, logger)
	s := &Service{
		repo:      factory.newRepository(),
		library:   DefaultLibrary(),
		rand:      globalRand{},
		generator: nil,
		logger:    logger,
		metrics:   m,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.generator = NewGenerator(s.library, s.rand)
	return s
}

// Library returns the exercises available for replacements.
func (s *Service) Library() *Library {
	return s.library
}

// EnsureCurrentWeek returns the plan of the current week creating it from prefs when missing. It also resets the
// points of the week in the user's stats when the week has changed since the last call. Calling it again within the
// same week has no further effect. When two callers race to create the plan, one of them wins and both get the
// winner's plan.
func (s *Service) EnsureCurrentWeek(ctx context.Context, uid string, prefs Preferences) (WeekPlan, error) {
	if err := checkUID(uid); err != nil {
		return WeekPlan{}, err
	}
	now := s.now()
	weekID := week.ID(now)
	ctx = logging.WithAttrs(logging.WithUser(ctx, uid), slog.String("week_id", weekID))

	_, err := s.repo.weeks.Get(ctx, uid, weekID)
	switch {
	case errors.Is(err, ErrNotFound):
		plan := s.generator.Generate(now, prefs)
		var created bool
		if created, err = s.repo.weeks.Create(ctx, WeekPlan{
			UID:       uid,
			WeekID:    weekID,
			Points:    0,
			Workouts:  plan.Workouts,
			Diet:      plan.Diet,
			CreatedAt: now.UTC(),
		}); err != nil {
			return WeekPlan{}, errors.Wrap(err, "create week plan")
		}
		if created {
			s.metrics.CounterPlansGenerated.Inc()
			s.logger.LogAttrs(ctx, slog.LevelInfo, "generated week plan", slog.String("goal", string(prefs.Goal)))
		} else {
			s.logger.LogAttrs(ctx, slog.LevelDebug, "week plan was created concurrently")
		}
	case err != nil:
		return WeekPlan{}, errors.Wrap(err, "get week plan")
	}

	rolledOver, err := s.repo.stats.StartWeek(ctx, uid, weekID)
	if err != nil {
		return WeekPlan{}, errors.Wrap(err, "roll over week")
	}
	if rolledOver {
		s.metrics.CounterWeekRollovers.Inc()
		s.logger.LogAttrs(ctx, slog.LevelInfo, "reset points of the week")
	}

	plan, err := s.repo.weeks.Get(ctx, uid, weekID)
	if err != nil {
		return WeekPlan{}, errors.Wrap(err, "read back week plan")
	}
	return plan, nil
}

// CurrentWeek returns the plan of the current week or ErrNotFound.
func (s *Service) CurrentWeek(ctx context.Context, uid string) (WeekPlan, error) {
	if err := checkUID(uid); err != nil {
		return WeekPlan{}, err
	}
	plan, err := s.repo.weeks.Get(ctx, uid, week.ID(s.now()))
	if err != nil {
		return WeekPlan{}, fmt.Errorf("get current week: %w", err)
	}
	return plan, nil
}

// WatchWeek streams the plan of the current week after every change until ctx is done.
func (s *Service) WatchWeek(ctx context.Context, uid string) (<-chan WeekPlan, error) {
	if err := checkUID(uid); err != nil {
		return nil, err
	}
	plans, err := s.repo.weeks.Watch(ctx, uid, week.ID(s.now()))
	if err != nil {
		return nil, fmt.Errorf("watch current week: %w", err)
	}
	return plans, nil
}

// Stats returns the points bookkeeping of the user.
func (s *Service) Stats(ctx context.Context, uid string) (level.Stats, error) {
	if err := checkUID(uid); err != nil {
		return level.Stats{}, err
	}
	stats, err := s.repo.stats.Get(ctx, uid)
	if err != nil {
		return level.Stats{}, fmt.Errorf("get stats: %w", err)
	}
	return stats, nil
}

// updateToday runs fn on today's workout day of the current week.
func (s *Service) updateToday(
	ctx context.Context,
	uid string,
	fn func(plan *WeekPlan, day *Day) (bool, error),
) (WeekPlan, bool, error) {
	if err := checkUID(uid); err != nil {
		return WeekPlan{}, false, err
	}
	now := s.now()
	today := week.FormatDate(now)
	plan, changed, err := s.repo.weeks.Update(ctx, uid, week.ID(now), func(plan *WeekPlan) (bool, error) {
		i := plan.DayIndex(today)
		if i < 0 {
			return false, ErrNoWorkoutToday
		}
		return fn(plan, &plan.Workouts.Days[i])
	})
	if err != nil {
		return WeekPlan{}, false, errors.Wrap(err, "update today", slog.String("date", today))
	}
	return plan, changed, nil
}

// ToggleItem flips the done flag of the exercise at itemIndex of today's workout.
func (s *Service) ToggleItem(ctx context.Context, uid string, itemIndex int) (WeekPlan, error) {
	plan, _, err := s.updateToday(ctx, uid, func(_ *WeekPlan, day *Day) (bool, error) {
		if len(day.Items) == 0 {
			return false, ErrNoWorkoutToday
		}
		if itemIndex < 0 || itemIndex >= len(day.Items) {
			return false, fmt.Errorf("%w: exercise %d does not exist", ErrInvalidInput, itemIndex+1)
		}
		day.Items[itemIndex].Done = !day.Items[itemIndex].Done
		return true, nil
	})
	return plan, err
}

// CompleteDay marks today's workout completed once every exercise is done and awards its points. Completing an
// already completed day does nothing.
func (s *Service) CompleteDay(ctx context.Context, uid string) (WeekPlan, error) {
	plan, changed, err := s.updateToday(ctx, uid, func(plan *WeekPlan, day *Day) (bool, error) {
		if len(day.Items) == 0 {
			return false, ErrNoWorkoutToday
		}
		if !day.AllDone() {
			return false, ErrDayIncomplete
		}
		if day.Completed {
			return false, nil
		}
		day.Completed = true
		plan.Points += pointsPerWorkout
		return true, nil
	})
	if err != nil || !changed {
		return plan, err
	}
	if err = s.awardPoints(ctx, uid, "workout", pointsPerWorkout); err != nil {
		return WeekPlan{}, err
	}
	return plan, nil
}

// ReplaceItem swaps the exercise at itemIndex of today's workout for the library exercise called name.
func (s *Service) ReplaceItem(ctx context.Context, uid string, itemIndex int, name string) (WeekPlan, error) {
	exercise, ok := s.library.Find(name)
	if !ok {
		return WeekPlan{}, fmt.Errorf("%w: %q", ErrUnknownExercise, name)
	}
	plan, _, err := s.updateToday(ctx, uid, func(_ *WeekPlan, day *Day) (bool, error) {
		if itemIndex < 0 || itemIndex >= len(day.Items) {
			return false, fmt.Errorf("%w: exercise %d does not exist", ErrInvalidInput, itemIndex+1)
		}
		day.Items[itemIndex] = newItem(exercise, CustomTips)
		return true, nil
	})
	return plan, err
}

// AddCustomItem appends a user defined exercise to today's workout. The media is derived from link.
func (s *Service) AddCustomItem(ctx context.Context, uid string, name string, link string) (WeekPlan, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return WeekPlan{}, fmt.Errorf("%w: the exercise needs a name", ErrInvalidInput)
	}
	plan, _, err := s.updateToday(ctx, uid, func(_ *WeekPlan, day *Day) (bool, error) {
		day.Items = append(day.Items, Item{
			Name:  name,
			Done:  false,
			Media: MediaFromLink(link),
			Tips:  append([]string(nil), CustomTips...),
		})
		return true, nil
	})
	return plan, err
}

// ToggleDietDay flips the diet day at dayIndex (0 is Monday). Completing a day is worth 5 points and undoing it takes
// them back.
func (s *Service) ToggleDietDay(ctx context.Context, uid string, dayIndex int) (WeekPlan, error) {
	if err := checkUID(uid); err != nil {
		return WeekPlan{}, err
	}
	var delta int
	plan, _, err := s.repo.weeks.Update(ctx, uid, week.ID(s.now()), func(plan *WeekPlan) (bool, error) {
		if dayIndex < 0 || dayIndex >= len(plan.Diet.Days) {
			return false, fmt.Errorf("%w: diet day %d does not exist", ErrInvalidInput, dayIndex+1)
		}
		day := &plan.Diet.Days[dayIndex]
		day.Completed = !day.Completed
		delta = pointsPerDietDay
		if !day.Completed {
			delta = -pointsPerDietDay
		}
		plan.Points += delta
		return true, nil
	})
	if err != nil {
		return WeekPlan{}, errors.Wrap(err, "toggle diet day", slog.Int("day", dayIndex))
	}
	if err = s.awardPoints(ctx, uid, "diet", delta); err != nil {
		return WeekPlan{}, err
	}
	return plan, nil
}

// checkUID rejects ids that would not map to a single document path segment.
func checkUID(uid string) error {
	if !docstore.ValidUID(uid) {
		return fmt.Errorf("%w: invalid user id %q", ErrInvalidInput, uid)
	}
	return nil
}

// awardPoints updates the user stats in a transaction of its own. The week plan has already been committed by the
// caller, so a failure here leaves the week points ahead of the stats.
func (s *Service) awardPoints(ctx context.Context, uid string, source string, delta int) error {
	stats, err := s.repo.stats.AddPoints(ctx, uid, delta)
	if err != nil {
		return errors.Wrap(err, "award points", slog.String("source", source))
	}
	s.metrics.PointsChanged(source, delta)
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "points changed",
		slog.String("source", source),
		slog.Int("delta", delta),
		slog.Int("total", stats.TotalPoints),
		slog.Int("level", stats.Level))
	return nil
}

// globalRand uses the goroutine safe top level functions of math/rand/v2.
type globalRand struct{}

func (globalRand) IntN(n int) int {
	return rand.IntN(n) //nolint:gosec // exercise selection is not security sensitive.
}
