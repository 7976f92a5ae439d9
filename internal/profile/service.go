// Package profile manages the user profile document: registration, the onboarding questionnaire and settings.
package profile

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/logging"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/workout"
)

const (
	minAge             = 12
	minHeightCm        = 120
	minWeightKg        = 30
	minWorkoutsPerWeek = 2
	maxWorkoutsPerWeek = 6
)

// Onboarding holds the answers of the onboarding questionnaire.
type Onboarding struct {
	Age             int
	HeightCm        float64
	WeightKg        float64
	WaistCm         float64
	ChestCm         float64
	HipCm           float64
	ArmCm           float64
	ThighCm         float64
	Goal            workout.Goal
	WorkoutsPerWeek int
	MuscleGroups    []MuscleGroup
	Level           Experience
	PlaylistURL     string
}

func checkUID(uid string) error {
	if !docstore.ValidUID(uid) {
		return fmt.Errorf("%w: invalid user id %q", ErrInvalidInput, uid)
	}
	return nil
}

// finite reports whether v is neither NaN nor infinite.
func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

func (o Onboarding) validate() error {
	var problems []error
	if o.Age < minAge {
		problems = append(problems, fmt.Errorf("age must be at least %d", minAge))
	}
	if !finite(o.HeightCm) || o.HeightCm < minHeightCm {
		problems = append(problems, fmt.Errorf("height must be at least %d cm", minHeightCm))
	}
	if !finite(o.WeightKg) || o.WeightKg < minWeightKg {
		problems = append(problems, fmt.Errorf("weight must be at least %d kg", minWeightKg))
	}
	for name, v := range map[string]float64{
		"waist": o.WaistCm, "chest": o.ChestCm, "hip": o.HipCm, "arm": o.ArmCm, "thigh": o.ThighCm,
	} {
		if !finite(v) {
			problems = append(problems, fmt.Errorf("%s must be a number", name))
		}
	}
	if o.WorkoutsPerWeek < minWorkoutsPerWeek || o.WorkoutsPerWeek > maxWorkoutsPerWeek {
		problems = append(problems, fmt.Errorf("workouts per week must be between %d and %d",
			minWorkoutsPerWeek, maxWorkoutsPerWeek))
	}
	if len(o.MuscleGroups) == 0 {
		problems = append(problems, errors.New("pick at least one muscle group"))
	}
	for _, g := range o.MuscleGroups {
		if !slices.Contains(MuscleGroups(), g) {
			problems = append(problems, fmt.Errorf("unknown muscle group %q", g))
		}
	}
	switch o.Level {
	case ExperienceBeginner, ExperienceIntermediate, ExperienceAdvanced:
	case "":
		problems = append(problems, errors.New("experience level is required"))
	default:
		problems = append(problems, fmt.Errorf("unknown experience level %q", o.Level))
	}
	if _, err := workout.ParseGoal(string(o.Goal)); err != nil {
		problems = append(problems, fmt.Errorf("unknown goal %q", o.Goal))
	}
	if len(problems) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidInput, errors.Join(problems...))
	}
	return nil
}

// Settings are the profile fields editable after onboarding. An empty goal keeps the stored one.
type Settings struct {
	Goal        workout.Goal
	WeightKg    float64
	PlaylistURL string
}

type Service struct {
	store    *docstore.Store
	progress *progress.Service
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(store *docstore.Store, progress *progress.Service, logger *slog.Logger) *Service {
	return &Service{store: store, progress: progress, logger: logger, now: time.Now}
}

// WithClock replaces time.Now and returns s.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Register stores the profile of a new user. Onboarding is pending until [Service.CompleteOnboarding].
func (s *Service) Register(ctx context.Context, uid, name, email string) (Profile, error) {
	name = strings.TrimSpace(name)
	email = strings.TrimSpace(email)
	if err := checkUID(uid); err != nil {
		return Profile{}, err
	}
	if name == "" {
		return Profile{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if _, err := mail.ParseAddress(email); err != nil {
		return Profile{}, fmt.Errorf("%w: invalid email %q", ErrInvalidInput, email)
	}

	now := s.now().UTC()
	if _, err := s.store.Merge(ctx, docstore.UserPath(uid), map[string]any{
		"name":               name,
		"email":              email,
		"onboardingComplete": false,
		"createdAt":          now,
		"updatedAt":          now,
	}); err != nil {
		return Profile{}, errors.Wrap(err, "register profile")
	}
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "registered user")
	return s.Get(ctx, uid)
}

// Get returns the profile or ErrNotFound.
func (s *Service) Get(ctx context.Context, uid string) (Profile, error) {
	if err := checkUID(uid); err != nil {
		return Profile{}, err
	}
	doc, err := s.store.Get(ctx, docstore.UserPath(uid))
	if errors.Is(err, docstore.ErrNotFound) {
		return Profile{}, ErrNotFound
	}
	if err != nil {
		return Profile{}, errors.Wrap(err, "get profile")
	}
	var p Profile
	if err = doc.Decode(&p); err != nil {
		return Profile{}, errors.Wrap(err, "decode profile")
	}
	p.UID = uid
	return p, nil
}

// CompleteOnboarding validates and stores the questionnaire and records today's measurement.
func (s *Service) CompleteOnboarding(ctx context.Context, uid string, o Onboarding) (Profile, error) {
	if err := o.validate(); err != nil {
		return Profile{}, err
	}
	goal, _ := workout.ParseGoal(string(o.Goal))
	if _, err := s.Get(ctx, uid); err != nil {
		return Profile{}, err
	}

	now := s.now()
	if _, err := s.store.Merge(ctx, docstore.UserPath(uid), map[string]any{
		"age":                o.Age,
		"heightCm":           o.HeightCm,
		"weightKg":           o.WeightKg,
		"goal":               goal,
		"workoutsPerWeek":    o.WorkoutsPerWeek,
		"muscleGroups":       o.MuscleGroups,
		"level":              o.Level,
		"youtubePlaylistUrl": strings.TrimSpace(o.PlaylistURL),
		"onboardingComplete": true,
		"updatedAt":          now.UTC(),
	}); err != nil {
		return Profile{}, errors.Wrap(err, "store onboarding")
	}
	if _, err := s.progress.Record(ctx, uid, progress.Input{
		WeightKg: o.WeightKg,
		WaistCm:  o.WaistCm,
		ChestCm:  o.ChestCm,
		HipCm:    o.HipCm,
		ArmCm:    o.ArmCm,
		ThighCm:  o.ThighCm,
	}, now); err != nil {
		return Profile{}, errors.Wrap(err, "record onboarding measurement")
	}
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "completed onboarding",
		slog.String("goal", string(goal)), slog.Int("workouts_per_week", o.WorkoutsPerWeek))
	return s.Get(ctx, uid)
}

// UpdateSettings changes the goal, the weight and the playlist of an existing profile.
func (s *Service) UpdateSettings(ctx context.Context, uid string, settings Settings) (Profile, error) {
	if !finite(settings.WeightKg) || settings.WeightKg <= 0 {
		return Profile{}, fmt.Errorf("%w: weight must be positive", ErrInvalidInput)
	}
	patch := map[string]any{
		"weightKg":           settings.WeightKg,
		"youtubePlaylistUrl": strings.TrimSpace(settings.PlaylistURL),
		"updatedAt":          s.now().UTC(),
	}
	if settings.Goal != "" {
		goal, err := workout.ParseGoal(string(settings.Goal))
		if err != nil {
			return Profile{}, fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, settings.Goal)
		}
		patch["goal"] = goal
	}
	if _, err := s.Get(ctx, uid); err != nil {
		return Profile{}, err
	}
	if _, err := s.store.Merge(ctx, docstore.UserPath(uid), patch); err != nil {
		return Profile{}, errors.Wrap(err, "update settings")
	}
	return s.Get(ctx, uid)
}

// EnsureInitialMeasurement records the profile weight on the day the profile was created unless that day already
// has a measurement.
func (s *Service) EnsureInitialMeasurement(ctx context.Context, p Profile) error {
	var createdAt time.Time
	if p.CreatedAt != nil {
		createdAt = *p.CreatedAt
	}
	if _, err := s.progress.EnsureInitial(ctx, p.UID, p.WeightKg, createdAt); err != nil {
		return errors.Wrap(err, "ensure initial measurement")
	}
	return nil
}
