package workout

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/myrjola/fitweek/internal/errors"
)

var (
	ErrNotFound        = errors.NewSentinel("not found")
	ErrInvalidInput    = errors.NewSentinel("invalid input")
	ErrNoWorkoutToday  = errors.NewSentinel("no workout scheduled for today")
	ErrDayIncomplete   = errors.NewSentinel("mark every exercise done before completing the day")
	ErrUnknownExercise = errors.NewSentinel("exercise is not in the library")
)

// Goal is the training goal used to pick exercises from the library.
type Goal string

const (
	GoalWeightLoss   Goal = "weight-loss"
	GoalHypertrophy  Goal = "hypertrophy"
	GoalConditioning Goal = "conditioning"
)

// Goals lists the known goals in display order.
func Goals() []Goal {
	return []Goal{GoalWeightLoss, GoalHypertrophy, GoalConditioning}
}

// legacyGoals maps the goal values stored by earlier versions of the application.
//
//nolint:gochecknoglobals // static lookup table.
var legacyGoals = map[string]Goal{
	"emagrecimento":   GoalWeightLoss,
	"hipertrofia":     GoalHypertrophy,
	"condicionamento": GoalConditioning,
}

// ParseGoal parses both current and legacy goal values.
func ParseGoal(s string) (Goal, error) {
	if g, ok := legacyGoals[s]; ok {
		return g, nil
	}
	switch g := Goal(s); g {
	case GoalWeightLoss, GoalHypertrophy, GoalConditioning:
		return g, nil
	default:
		return "", fmt.Errorf("%w: unknown goal %q", ErrInvalidInput, s)
	}
}

// UnmarshalText accepts legacy values and keeps unknown ones as is so that old documents never fail to decode.
func (g *Goal) UnmarshalText(text []byte) error {
	if parsed, err := ParseGoal(string(text)); err == nil {
		*g = parsed
		return nil
	}
	*g = Goal(text)
	return nil
}

// MediaType tells how a media URL should be shown.
type MediaType string

const (
	MediaImageLoop  MediaType = "image-loop"
	MediaVideoEmbed MediaType = "video-embed"
)

func (m *MediaType) UnmarshalText(text []byte) error {
	switch string(text) {
	case "gif":
		*m = MediaImageLoop
	case "youtube":
		*m = MediaVideoEmbed
	default:
		*m = MediaType(text)
	}
	return nil
}

type Media struct {
	Type MediaType `json:"type" toml:"type"`
	URL  string    `json:"url"  toml:"url"`
}

// Exercise is an entry of the static exercise library.
type Exercise struct {
	Name  string   `toml:"name"`
	Tags  []Goal   `toml:"tags"`
	Media *Media   `toml:"media"`
	Tips  []string `toml:"tips"`
}

// HasTag reports whether the exercise suits goal.
func (e Exercise) HasTag(goal Goal) bool {
	for _, tag := range e.Tags {
		if tag == goal {
			return true
		}
	}
	return false
}

// Item is an exercise scheduled on a workout day.
type Item struct {
	Name  string   `json:"name"`
	Done  bool     `json:"done"`
	Media *Media   `json:"media,omitempty"`
	Tips  []string `json:"tips"`
}

// Day is a workout day. Completed is only set when every item was done at the time the user completed the day.
// Items toggled back afterwards leave the day completed.
type Day struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
	Items     []Item `json:"items"`
}

// AllDone reports whether every item of the day is done.
func (d Day) AllDone() bool {
	for _, item := range d.Items {
		if !item.Done {
			return false
		}
	}
	return true
}

type DietDay struct {
	Date      string `json:"date"`
	Completed bool   `json:"completed"`
}

type Workouts struct {
	Days []Day `json:"days"`
}

type Diet struct {
	Days []DietDay `json:"days"`
}

// WeekPlan is the stored plan of one user for one ISO week.
type WeekPlan struct {
	UID       string    `json:"uid"`
	WeekID    string    `json:"weekId"`
	Points    int       `json:"points"`
	Workouts  Workouts  `json:"workouts"`
	Diet      Diet      `json:"diet"`
	CreatedAt time.Time `json:"createdAt"`
}

// DayIndex returns the index of the workout day on date or -1.
func (p WeekPlan) DayIndex(date string) int {
	for i, d := range p.Workouts.Days {
		if d.Date == date {
			return i
		}
	}
	return -1
}

// DietDayIndex returns the index of the diet day on date or -1.
func (p WeekPlan) DietDayIndex(date string) int {
	for i, d := range p.Diet.Days {
		if d.Date == date {
			return i
		}
	}
	return -1
}

// CompletedWorkouts counts the completed workout days.
func (p WeekPlan) CompletedWorkouts() int {
	n := 0
	for _, d := range p.Workouts.Days {
		if d.Completed {
			n++
		}
	}
	return n
}

// ScheduledWorkouts counts the days that have exercises.
func (p WeekPlan) ScheduledWorkouts() int {
	n := 0
	for _, d := range p.Workouts.Days {
		if len(d.Items) > 0 {
			n++
		}
	}
	return n
}

// CompletedDietDays counts the completed diet days.
func (p WeekPlan) CompletedDietDays() int {
	n := 0
	for _, d := range p.Diet.Days {
		if d.Completed {
			n++
		}
	}
	return n
}

// Preferences are the profile fields plan generation depends on.
type Preferences struct {
	Goal            Goal
	WorkoutsPerWeek *int
}

// Plan is a freshly generated week without owner.
type Plan struct {
	Workouts Workouts
	Diet     Diet
}

// unmarshalPlan decodes a stored week plan.
func unmarshalPlan(data []byte) (WeekPlan, error) {
	var plan WeekPlan
	if err := json.Unmarshal(data, &plan); err != nil {
		return WeekPlan{}, fmt.Errorf("decode week plan: %w", err)
	}
	return plan, nil
}
