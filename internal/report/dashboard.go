// Package report assembles the weekly dashboard of a user and renders it as Markdown or HTML.
package report

import (
	"context"
	"math"

	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/level"
	"github.com/myrjola/fitweek/internal/profile"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/workout"
	"golang.org/x/sync/errgroup"
)

type ProfileSource interface {
	Get(ctx context.Context, uid string) (profile.Profile, error)
}

type WeekSource interface {
	CurrentWeek(ctx context.Context, uid string) (workout.WeekPlan, error)
}

type MeasurementSource interface {
	List(ctx context.Context, uid string) ([]progress.Measurement, error)
}

// Sources are the services the dashboard reads from.
type Sources struct {
	Profiles     ProfileSource
	Weeks        WeekSource
	Measurements MeasurementSource
}

// Dashboard is the summary of the current week.
type Dashboard struct {
	Name string
	// Week is nil when the plan of the current week has not been created.
	Week              *workout.WeekPlan
	CompletedWorkouts int
	WorkoutDays       int
	WorkoutPercent    int
	CompletedDietDays int
	DietDays          int
	DietPercent       int
	PointsThisWeek    int
	Level             level.Info
	PointsToNextLevel int
	LevelPercent      int
	Weight            progress.Summary
}

// Load reads the profile, the current week and the measurements of uid concurrently.
func Load(ctx context.Context, sources Sources, uid string) (Dashboard, error) {
	var (
		p       profile.Profile
		plan    workout.WeekPlan
		hasWeek bool
		entries []progress.Measurement
	)
	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		var err error
		if p, err = sources.Profiles.Get(ctx, uid); err != nil {
			return errors.Wrap(err, "load profile")
		}
		return nil
	})
	g.Go(func() error {
		var err error
		plan, err = sources.Weeks.CurrentWeek(ctx, uid)
		switch {
		case errors.Is(err, workout.ErrNotFound):
			return nil
		case err != nil:
			return errors.Wrap(err, "load current week")
		}
		hasWeek = true
		return nil
	})
	g.Go(func() error {
		var err error
		if entries, err = sources.Measurements.List(ctx, uid); err != nil {
			return errors.Wrap(err, "load measurements")
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return Dashboard{}, err //nolint:wrapcheck // wrapped in the goroutines.
	}

	info := p.LevelInfo()
	d := Dashboard{
		Name:              p.Name,
		Week:              nil,
		CompletedWorkouts: 0,
		WorkoutDays:       0,
		WorkoutPercent:    0,
		CompletedDietDays: 0,
		DietDays:          0,
		DietPercent:       0,
		PointsThisWeek:    p.Stats.PointsThisWeek,
		Level:             info,
		PointsToNextLevel: max(info.PointsRemaining(), 0),
		LevelPercent:      roundPercent(info.CurrentLevelProgress, info.NextLevelPoints),
		Weight:            progress.Summarize(entries),
	}
	if hasWeek {
		d.Week = &plan
		d.CompletedWorkouts = plan.CompletedWorkouts()
		d.WorkoutDays = len(plan.Workouts.Days)
		d.WorkoutPercent = roundPercent(d.CompletedWorkouts, d.WorkoutDays)
		d.CompletedDietDays = plan.CompletedDietDays()
		d.DietDays = len(plan.Diet.Days)
		d.DietPercent = roundPercent(d.CompletedDietDays, d.DietDays)
	}
	return d, nil
}

// roundPercent returns part of whole in whole percents, capped at 100. An empty whole is 0%.
func roundPercent(part, whole int) int {
	if whole <= 0 {
		return 0
	}
	return min(int(math.Round(float64(part)*100/float64(whole))), 100) //nolint:mnd // percent.
}
