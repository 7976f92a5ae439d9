package workout

import (
	"math/rand/v2"
	"slices"
	"sync"
	"time"

	"github.com/myrjola/fitweek/internal/week"
)

const (
	exercisesPerDay        = 3
	defaultWorkoutsPerWeek = 3
	daysPerWeek            = 7
)

// Rand is the random source used to sample exercises. *math/rand/v2.Rand satisfies it.
type Rand interface {
	// IntN returns a number in [0, n).
	IntN(n int) int
}

// NewSeededRand returns a reproducible random source. It is not safe for concurrent use on its own; a [Generator]
// serialises its calls.
func NewSeededRand(seed uint64) Rand {
	return rand.New(rand.NewPCG(seed, seed)) //nolint:gosec // exercise selection is not security sensitive.
}

// Generator creates weekly plans from a library. It is safe for concurrent use.
type Generator struct {
	library *Library
	// mu guards rand for the whole of a Generate call so seeded plans stay reproducible.
	mu   sync.Mutex
	rand Rand
}

func NewGenerator(library *Library, r Rand) *Generator {
	return &Generator{library: library, mu: sync.Mutex{}, rand: r}
}

// Generate plans the week containing now. The first WorkoutsPerWeek days of the week get exercises and every day
// gets a diet entry. A missing goal means conditioning and a missing frequency means three workouts.
func (g *Generator) Generate(now time.Time, prefs Preferences) Plan {
	g.mu.Lock()
	defer g.mu.Unlock()

	goal := prefs.Goal
	if goal == "" {
		goal = GoalConditioning
	}
	workoutDays := defaultWorkoutsPerWeek
	if prefs.WorkoutsPerWeek != nil {
		workoutDays = min(max(*prefs.WorkoutsPerWeek, 0), daysPerWeek)
	}

	dates := week.Dates(now)
	plan := Plan{
		Workouts: Workouts{Days: make([]Day, 0, daysPerWeek)},
		Diet:     Diet{Days: make([]DietDay, 0, daysPerWeek)},
	}
	for i, date := range dates {
		day := Day{Date: week.FormatDate(date), Completed: false, Items: []Item{}}
		if i < workoutDays {
			for _, e := range g.sample(g.pool(goal), exercisesPerDay) {
				day.Items = append(day.Items, newItem(e, DefaultTips))
			}
		}
		plan.Workouts.Days = append(plan.Workouts.Days, day)
		plan.Diet.Days = append(plan.Diet.Days, DietDay{Date: day.Date, Completed: false})
	}
	return plan
}

// pool returns the exercises tagged with goal, or the whole library when too few are tagged to fill a day.
func (g *Generator) pool(goal Goal) []Exercise {
	if tagged := g.library.Tagged(goal); len(tagged) >= exercisesPerDay {
		return tagged
	}
	return g.library.All()
}

// sample picks n distinct exercises with a partial Fisher-Yates shuffle. The whole pool is returned in random order
// when it has fewer than n exercises.
func (g *Generator) sample(pool []Exercise, n int) []Exercise {
	pool = slices.Clone(pool)
	n = min(n, len(pool))
	for i := range n {
		j := i + g.rand.IntN(len(pool)-i)
		pool[i], pool[j] = pool[j], pool[i]
	}
	return pool[:n]
}

// newItem materialises e. fallbackTips are used when e has none.
func newItem(e Exercise, fallbackTips []string) Item {
	tips := e.Tips
	if len(tips) == 0 {
		tips = fallbackTips
	}
	return Item{
		Name:  e.Name,
		Done:  false,
		Media: e.Media,
		Tips:  slices.Clone(tips),
	}
}
