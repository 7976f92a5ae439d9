package diet

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/logging"
	"github.com/myrjola/fitweek/internal/ptr"
)

// Slot is one of the six fixed meals of a day.
type Slot string

const (
	SlotBreakfast      Slot = "breakfast"
	SlotMorningSnack   Slot = "morning-snack"
	SlotLunch          Slot = "lunch"
	SlotAfternoonSnack Slot = "afternoon-snack"
	SlotDinner         Slot = "dinner"
	SlotSupper         Slot = "supper"
)

// Slots returns the meal slots in the order of the day.
func Slots() []Slot {
	return []Slot{SlotBreakfast, SlotMorningSnack, SlotLunch, SlotAfternoonSnack, SlotDinner, SlotSupper}
}

type Meal struct {
	Name      Slot     `json:"name"`
	Time      string   `json:"time,omitempty"`
	ItemsText string   `json:"itemsText,omitempty"`
	Kcal      *float64 `json:"kcal,omitempty"`
}

// Plan is stored at users/{uid}/dietPlan/current. Meals always holds one entry per slot in slot order.
type Plan struct {
	Meals      []Meal     `json:"meals"`
	KcalPerDay *float64   `json:"kcalPerDay,omitempty"`
	UpdatedAt  *time.Time `json:"updatedAt,omitempty"`
}

// DefaultPlan has every slot empty.
func DefaultPlan() Plan {
	p := Plan{Meals: make([]Meal, 0, len(Slots())), KcalPerDay: nil, UpdatedAt: nil}
	for _, slot := range Slots() {
		p.Meals = append(p.Meals, Meal{Name: slot, Time: "", ItemsText: "", Kcal: nil})
	}
	return p
}

func checkUID(uid string) error {
	if !docstore.ValidUID(uid) {
		return fmt.Errorf("%w: invalid user id %q", ErrInvalidInput, uid)
	}
	return nil
}

// normalize maps meals onto the slots by name. Slots without a meal stay empty and non-positive calories are
// dropped.
func normalize(in Plan) (Plan, error) {
	out := DefaultPlan()
	index := make(map[Slot]int, len(out.Meals))
	for i, m := range out.Meals {
		index[m.Name] = i
	}
	for _, m := range in.Meals {
		i, ok := index[m.Name]
		if !ok {
			return Plan{}, fmt.Errorf("%w: unknown meal %q", ErrInvalidInput, m.Name)
		}
		meal := Meal{
			Name:      m.Name,
			Time:      strings.TrimSpace(m.Time),
			ItemsText: strings.TrimSpace(m.ItemsText),
			Kcal:      ptr.Positive(ptr.Deref(m.Kcal)),
		}
		if meal.Time != "" {
			if _, err := time.Parse("15:04", meal.Time); err != nil {
				return Plan{}, fmt.Errorf("%w: %s time %q is not HH:MM", ErrInvalidInput, m.Name, meal.Time)
			}
		}
		out.Meals[i] = meal
	}
	out.KcalPerDay = ptr.Positive(ptr.Deref(in.KcalPerDay))
	return out, nil
}

// SavePlan stores the meal plan. Calories per day that are missing or not positive are removed from the stored plan.
func (s *Service) SavePlan(ctx context.Context, uid string, in Plan) (Plan, error) {
	if err := checkUID(uid); err != nil {
		return Plan{}, err
	}
	plan, err := normalize(in)
	if err != nil {
		return Plan{}, err
	}
	now := s.now().UTC()
	plan.UpdatedAt = &now

	patch := map[string]any{
		"meals":      plan.Meals,
		"kcalPerDay": nil,
		"updatedAt":  now,
	}
	if plan.KcalPerDay != nil {
		patch["kcalPerDay"] = *plan.KcalPerDay
	}
	if _, err = s.store.Merge(ctx, docstore.DietPlanPath(uid), patch); err != nil {
		return Plan{}, errors.Wrap(err, "save diet plan")
	}
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "saved diet plan")
	return plan, nil
}

// GetPlan returns the stored plan with the stored meals mapped onto the slots in order. A user without a plan gets
// [DefaultPlan].
func (s *Service) GetPlan(ctx context.Context, uid string) (Plan, error) {
	if err := checkUID(uid); err != nil {
		return Plan{}, err
	}
	doc, err := s.store.Get(ctx, docstore.DietPlanPath(uid))
	if errors.Is(err, docstore.ErrNotFound) {
		return DefaultPlan(), nil
	}
	if err != nil {
		return Plan{}, errors.Wrap(err, "get diet plan")
	}
	var stored Plan
	if err = doc.Decode(&stored); err != nil {
		return Plan{}, errors.Wrap(err, "decode diet plan")
	}

	plan := DefaultPlan()
	for i := range plan.Meals {
		if i >= len(stored.Meals) {
			break
		}
		m := stored.Meals[i]
		plan.Meals[i].Time = m.Time
		plan.Meals[i].ItemsText = m.ItemsText
		plan.Meals[i].Kcal = ptr.Positive(ptr.Deref(m.Kcal))
	}
	plan.KcalPerDay = ptr.Positive(ptr.Deref(stored.KcalPerDay))
	plan.UpdatedAt = stored.UpdatedAt
	return plan, nil
}
