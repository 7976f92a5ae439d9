package profile

import (
	"time"

	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/level"
	"github.com/myrjola/fitweek/internal/workout"
)

var (
	ErrNotFound     = errors.NewSentinel("profile not found")
	ErrInvalidInput = errors.NewSentinel("invalid profile")
)

// Experience is the self assessed training experience.
type Experience string

const (
	ExperienceBeginner     Experience = "beginner"
	ExperienceIntermediate Experience = "intermediate"
	ExperienceAdvanced     Experience = "advanced"
)

func (e *Experience) UnmarshalText(text []byte) error {
	switch string(text) {
	case "iniciante":
		*e = ExperienceBeginner
	case "intermediario":
		*e = ExperienceIntermediate
	case "avancado":
		*e = ExperienceAdvanced
	default:
		*e = Experience(text)
	}
	return nil
}

type MuscleGroup string

const (
	MuscleChest     MuscleGroup = "chest"
	MuscleBack      MuscleGroup = "back"
	MuscleLegs      MuscleGroup = "legs"
	MuscleShoulders MuscleGroup = "shoulders"
	MuscleArms      MuscleGroup = "arms"
	MuscleCore      MuscleGroup = "core"
	MuscleGlutes    MuscleGroup = "glutes"
)

// MuscleGroups lists the selectable groups in display order.
func MuscleGroups() []MuscleGroup {
	return []MuscleGroup{MuscleChest, MuscleBack, MuscleLegs, MuscleShoulders, MuscleArms, MuscleCore, MuscleGlutes}
}

//nolint:gochecknoglobals // static lookup table.
var legacyMuscleGroups = map[string]MuscleGroup{
	"Peito":   MuscleChest,
	"Costas":  MuscleBack,
	"Pernas":  MuscleLegs,
	"Ombros":  MuscleShoulders,
	"Braços":  MuscleArms,
	"Core":    MuscleCore,
	"Glúteos": MuscleGlutes,
}

func (m *MuscleGroup) UnmarshalText(text []byte) error {
	if g, ok := legacyMuscleGroups[string(text)]; ok {
		*m = g
		return nil
	}
	*m = MuscleGroup(text)
	return nil
}

// ManualDiet is the diet typed in by the user.
type ManualDiet struct {
	Notes     string     `json:"notes"`
	Meals     []string   `json:"meals"`
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Diet is stored under "diet" in the profile.
type Diet struct {
	Manual        *ManualDiet `json:"manual,omitempty"`
	CurrentPDFURL string      `json:"currentPdfUrl,omitempty"`
	// UpdatedAt is the time of the last PDF upload.
	UpdatedAt *time.Time `json:"updatedAt,omitempty"`
}

// Profile is stored at users/{uid}.
type Profile struct {
	UID                string        `json:"-"`
	Name               string        `json:"name"`
	Email              string        `json:"email"`
	OnboardingComplete bool          `json:"onboardingComplete"`
	Age                int           `json:"age,omitempty"`
	HeightCm           float64       `json:"heightCm,omitempty"`
	WeightKg           float64       `json:"weightKg,omitempty"`
	Goal               workout.Goal  `json:"goal,omitempty"`
	WorkoutsPerWeek    *int          `json:"workoutsPerWeek,omitempty"`
	MuscleGroups       []MuscleGroup `json:"muscleGroups,omitempty"`
	Level              Experience    `json:"level,omitempty"`
	YouTubePlaylistURL string        `json:"youtubePlaylistUrl,omitempty"`
	Stats              level.Stats   `json:"stats"`
	Diet               Diet          `json:"diet"`
	CreatedAt          *time.Time    `json:"createdAt,omitempty"`
	UpdatedAt          *time.Time    `json:"updatedAt,omitempty"`
}

// Preferences returns the fields plan generation depends on.
func (p Profile) Preferences() workout.Preferences {
	return workout.Preferences{Goal: p.Goal, WorkoutsPerWeek: p.WorkoutsPerWeek}
}

// LevelInfo derives the level from the stored total points.
func (p Profile) LevelInfo() level.Info {
	return level.FromTotalPoints(p.Stats.TotalPoints)
}
