package workout

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/level"
)

// errUnchanged aborts a document update whose callback did not change anything.
var errUnchanged = errors.NewSentinel("unchanged")

type weekRepository interface {
	// Get returns the plan or ErrNotFound.
	Get(ctx context.Context, uid, weekID string) (WeekPlan, error)
	// Create stores plan unless a plan for the same user and week exists. It reports whether plan was stored.
	Create(ctx context.Context, plan WeekPlan) (bool, error)
	// Update runs fn on the stored plan in a transaction. fn reports whether it changed the plan. Only the points
	// and the day arrays are written back.
	Update(ctx context.Context, uid, weekID string, fn func(plan *WeekPlan) (bool, error)) (WeekPlan, bool, error)
	// Watch streams the plan after every change until ctx is done.
	Watch(ctx context.Context, uid, weekID string) (<-chan WeekPlan, error)
}

type statsRepository interface {
	Get(ctx context.Context, uid string) (level.Stats, error)
	// StartWeek resets the points of the week when weekID differs from the last seen week and reports whether it
	// did.
	StartWeek(ctx context.Context, uid, weekID string) (bool, error)
	// AddPoints adds delta to the total and weekly points and stores the level of the new total.
	AddPoints(ctx context.Context, uid string, delta int) (level.Stats, error)
}

type repository struct {
	weeks weekRepository
	stats statsRepository
}

type repositoryFactory struct {
	store  *docstore.Store
	logger *slog.Logger
}

func newRepositoryFactory(store *docstore.Store, logger *slog.Logger) *repositoryFactory {
	return &repositoryFactory{store: store, logger: logger}
}

func (f *repositoryFactory) newRepository() *repository {
	return &repository{
		weeks: &docWeekRepository{store: f.store, logger: f.logger},
		stats: &docStatsRepository{store: f.store},
	}
}

type docWeekRepository struct {
	store  *docstore.Store
	logger *slog.Logger
}

func (r *docWeekRepository) Get(ctx context.Context, uid, weekID string) (WeekPlan, error) {
	doc, err := r.store.Get(ctx, docstore.WeekPath(uid, weekID))
	if errors.Is(err, docstore.ErrNotFound) {
		return WeekPlan{}, ErrNotFound
	}
	if err != nil {
		return WeekPlan{}, errors.Wrap(err, "get week plan")
	}
	return unmarshalPlan(doc.Data)
}

func (r *docWeekRepository) Create(ctx context.Context, plan WeekPlan) (bool, error) {
	_, err := r.store.Create(ctx, docstore.WeekPath(plan.UID, plan.WeekID), plan)
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "create week plan")
	}
	return true, nil
}

func (r *docWeekRepository) Update(
	ctx context.Context,
	uid, weekID string,
	fn func(plan *WeekPlan) (bool, error),
) (WeekPlan, bool, error) {
	var plan WeekPlan
	doc, err := r.store.Update(ctx, docstore.WeekPath(uid, weekID), func(data map[string]any) error {
		if len(data) == 0 {
			return ErrNotFound
		}
		raw, err := json.Marshal(data)
		if err != nil {
			return errors.Wrap(err, "encode stored plan")
		}
		if plan, err = unmarshalPlan(raw); err != nil {
			return err
		}
		changed, err := fn(&plan)
		if err != nil {
			return err
		}
		if !changed {
			return errUnchanged
		}
		data["points"] = plan.Points
		data["workouts"] = plan.Workouts
		data["diet"] = plan.Diet
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return plan, false, nil
	}
	if err != nil {
		return WeekPlan{}, false, err
	}
	updated, err := unmarshalPlan(doc.Data)
	if err != nil {
		return WeekPlan{}, false, err
	}
	return updated, true, nil
}

func (r *docWeekRepository) Watch(ctx context.Context, uid, weekID string) (<-chan WeekPlan, error) {
	snapshots, err := r.store.Subscribe(ctx, docstore.WeekPath(uid, weekID))
	if err != nil {
		return nil, errors.Wrap(err, "subscribe to week plan")
	}
	plans := make(chan WeekPlan)
	go func() {
		defer close(plans)
		for snapshot := range snapshots {
			if !snapshot.Exists {
				continue
			}
			plan, decodeErr := unmarshalPlan(snapshot.Document.Data)
			if decodeErr != nil {
				r.logger.LogAttrs(ctx, slog.LevelWarn, "skipping undecodable week plan",
					errors.SlogError(decodeErr))
				continue
			}
			select {
			case plans <- plan:
			case <-ctx.Done():
			}
		}
	}()
	return plans, nil
}

type docStatsRepository struct {
	store *docstore.Store
}

func (r *docStatsRepository) Get(ctx context.Context, uid string) (level.Stats, error) {
	doc, err := r.store.Get(ctx, docstore.UserPath(uid))
	if errors.Is(err, docstore.ErrNotFound) {
		return level.Stats{}, nil
	}
	if err != nil {
		return level.Stats{}, errors.Wrap(err, "get user stats")
	}
	var user struct {
		Stats level.Stats `json:"stats"`
	}
	if err = doc.Decode(&user); err != nil {
		return level.Stats{}, err
	}
	return user.Stats, nil
}

func (r *docStatsRepository) StartWeek(ctx context.Context, uid, weekID string) (bool, error) {
	_, err := r.store.Update(ctx, docstore.UserPath(uid), func(data map[string]any) error {
		stats, _ := data["stats"].(map[string]any)
		if last, _ := stats["lastWeekId"].(string); last == weekID {
			return errUnchanged
		}
		docstore.SetField(data, "stats.lastWeekId", weekID)
		docstore.SetField(data, "stats.pointsThisWeek", 0)
		return nil
	})
	if errors.Is(err, errUnchanged) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "start week", slog.String("week_id", weekID))
	}
	return true, nil
}

func (r *docStatsRepository) AddPoints(ctx context.Context, uid string, delta int) (level.Stats, error) {
	doc, err := r.store.Update(ctx, docstore.UserPath(uid), func(data map[string]any) error {
		total, err := docstore.Int(data, "stats.totalPoints")
		if err != nil {
			return errors.Wrap(err, "read total points")
		}
		thisWeek, err := docstore.Int(data, "stats.pointsThisWeek")
		if err != nil {
			return errors.Wrap(err, "read points this week")
		}
		total += int64(delta)
		thisWeek += int64(delta)
		docstore.SetField(data, "stats.totalPoints", total)
		docstore.SetField(data, "stats.pointsThisWeek", thisWeek)
		docstore.SetField(data, "stats.level", level.FromTotalPoints(int(total)).Level)
		return nil
	})
	if err != nil {
		return level.Stats{}, errors.Wrap(err, "add points", slog.Int("delta", delta))
	}
	var user struct {
		Stats level.Stats `json:"stats"`
	}
	if err = doc.Decode(&user); err != nil {
		return level.Stats{}, err
	}
	return user.Stats, nil
}
