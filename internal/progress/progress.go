// Package progress records body measurements and summarises the weight trend.
package progress

import (
	"cmp"
	"context"
	"encoding/json"
	"log/slog"
	"math"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/logging"
	"github.com/myrjola/fitweek/internal/metrics"
	"github.com/myrjola/fitweek/internal/ptr"
	"github.com/myrjola/fitweek/internal/week"
)

var ErrInvalidInput = errors.NewSentinel("invalid measurement")

// Measurement is stored at users/{uid}/measurements/{date}. Optional metrics are only present when positive.
type Measurement struct {
	Date      string     `json:"date"`
	DateISO   string     `json:"dateISO,omitempty"`
	WeightKg  float64    `json:"weightKg"`
	WaistCm   *float64   `json:"waistCm,omitempty"`
	ChestCm   *float64   `json:"chestCm,omitempty"`
	HipCm     *float64   `json:"hipCm,omitempty"`
	ArmCm     *float64   `json:"armCm,omitempty"`
	ThighCm   *float64   `json:"thighCm,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

// Input is a measurement typed by the user. Zero or negative optional metrics are ignored.
type Input struct {
	WeightKg float64
	WaistCm  float64
	ChestCm  float64
	HipCm    float64
	ArmCm    float64
	ThighCm  float64
}

// optionalFields lists the optional metrics by their stored field name.
func (in Input) optionalFields() map[string]*float64 {
	return map[string]*float64{
		"waistCm": ptr.Positive(in.WaistCm),
		"chestCm": ptr.Positive(in.ChestCm),
		"hipCm":   ptr.Positive(in.HipCm),
		"armCm":   ptr.Positive(in.ArmCm),
		"thighCm": ptr.Positive(in.ThighCm),
	}
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

type Service struct {
	store   *docstore.Store
	logger  *slog.Logger
	metrics *metrics.Manager
	now     func() time.Time
}

func NewService(store *docstore.Store, logger *slog.Logger, m *metrics.Manager) *Service {
	return &Service{store: store, logger: logger, metrics: m, now: time.Now}
}

// WithClock replaces time.Now and returns s.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// Record upserts the measurement of date. Fields missing from in keep their stored values and createdAt is only set
// the first time the date is recorded.
func (s *Service) Record(ctx context.Context, uid string, in Input, date time.Time) (Measurement, error) {
	if !docstore.ValidUID(uid) {
		return Measurement{}, errors.Wrap(ErrInvalidInput, "invalid user id", slog.String("uid", uid))
	}
	if !finite(in.WeightKg) || in.WeightKg <= 0 {
		return Measurement{}, errors.Wrap(ErrInvalidInput, "weight must be positive")
	}
	for _, v := range []float64{in.WaistCm, in.ChestCm, in.HipCm, in.ArmCm, in.ThighCm} {
		if !finite(v) {
			return Measurement{}, errors.Wrap(ErrInvalidInput, "measurements must be numbers")
		}
	}
	day := week.FormatDate(date)
	path := docstore.MeasurementPath(uid, day)

	doc, err := s.store.Update(ctx, path, func(data map[string]any) error {
		if len(data) == 0 {
			data["createdAt"] = s.now().UTC()
		}
		data["date"] = day
		data["dateISO"] = day
		data["weightKg"] = in.WeightKg
		for field, value := range in.optionalFields() {
			if value != nil {
				data[field] = *value
			}
		}
		return nil
	})
	if err != nil {
		return Measurement{}, errors.Wrap(err, "record measurement", slog.String("date", day))
	}
	s.metrics.CounterMeasurementsRecorded.Inc()
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "recorded measurement",
		slog.String("date", day), slog.Float64("weight_kg", in.WeightKg))

	m, ok := normalize(doc.Data)
	if !ok {
		return Measurement{}, errors.Wrap(ErrInvalidInput, "stored measurement is invalid", slog.String("path", path))
	}
	return m, nil
}

// EnsureInitial records weightKg on the day the profile was created unless a measurement of that day exists. It
// reports whether a measurement was created. Profiles without weight are skipped.
func (s *Service) EnsureInitial(ctx context.Context, uid string, weightKg float64, createdAt time.Time) (bool, error) {
	if !docstore.ValidUID(uid) {
		return false, errors.Wrap(ErrInvalidInput, "invalid user id", slog.String("uid", uid))
	}
	if !finite(weightKg) || weightKg <= 0 {
		return false, nil
	}
	if createdAt.IsZero() {
		createdAt = s.now()
	}
	day := week.FormatDate(createdAt)
	_, err := s.store.Create(ctx, docstore.MeasurementPath(uid, day), Measurement{
		Date:      day,
		DateISO:   day,
		WeightKg:  weightKg,
		WaistCm:   nil,
		ChestCm:   nil,
		HipCm:     nil,
		ArmCm:     nil,
		ThighCm:   nil,
		CreatedAt: ptr.Ref(s.now().UTC()),
	})
	if errors.Is(err, docstore.ErrAlreadyExists) {
		return false, nil
	}
	if err != nil {
		return false, errors.Wrap(err, "create initial measurement", slog.String("date", day))
	}
	return true, nil
}

// List returns the measurements of the user sorted by date. Entries of the legacy progress collection are included
// for dates without a measurement. Entries without a date or a numeric weight are dropped.
func (s *Service) List(ctx context.Context, uid string) ([]Measurement, error) {
	if !docstore.ValidUID(uid) {
		return nil, errors.Wrap(ErrInvalidInput, "invalid user id", slog.String("uid", uid))
	}
	docs, err := s.store.List(ctx, docstore.MeasurementsCollection(uid))
	if err != nil {
		return nil, errors.Wrap(err, "list measurements")
	}
	legacy, err := s.store.List(ctx, docstore.LegacyProgressCollection(uid))
	if err != nil {
		return nil, errors.Wrap(err, "list legacy progress")
	}

	entries := make([]Measurement, 0, len(docs)+len(legacy))
	dates := make(map[string]struct{}, len(docs))
	for _, doc := range docs {
		if m, ok := normalize(doc.Data); ok {
			entries = append(entries, m)
			dates[m.Date] = struct{}{}
		}
	}
	for _, doc := range legacy {
		m, ok := normalize(doc.Data)
		if !ok {
			continue
		}
		if _, exists := dates[m.Date]; exists {
			continue
		}
		dates[m.Date] = struct{}{}
		entries = append(entries, Measurement{
			Date:      m.Date,
			DateISO:   m.Date,
			WeightKg:  m.WeightKg,
			WaistCm:   nil,
			ChestCm:   nil,
			HipCm:     nil,
			ArmCm:     nil,
			ThighCm:   nil,
			CreatedAt: nil,
		})
	}
	slices.SortStableFunc(entries, func(a, b Measurement) int {
		return cmp.Compare(a.Date, b.Date)
	})
	return entries, nil
}

// normalize decodes a stored measurement leniently. The date falls back to dateISO and numbers may be stored as
// strings.
func normalize(raw json.RawMessage) (Measurement, bool) {
	var data map[string]any
	decoder := json.NewDecoder(strings.NewReader(string(raw)))
	decoder.UseNumber()
	if err := decoder.Decode(&data); err != nil {
		return Measurement{}, false
	}

	date, _ := data["date"].(string)
	dateISO, _ := data["dateISO"].(string)
	if date == "" {
		date = dateISO
	}
	if date == "" {
		return Measurement{}, false
	}
	if dateISO == "" {
		dateISO = date
	}
	weight, ok := number(data["weightKg"])
	if !ok {
		return Measurement{}, false
	}

	optional := func(field string) *float64 {
		v, _ := number(data[field])
		return ptr.Positive(v)
	}
	m := Measurement{
		Date:      date,
		DateISO:   dateISO,
		WeightKg:  weight,
		WaistCm:   optional("waistCm"),
		ChestCm:   optional("chestCm"),
		HipCm:     optional("hipCm"),
		ArmCm:     optional("armCm"),
		ThighCm:   optional("thighCm"),
		CreatedAt: nil,
	}
	if s, isString := data["createdAt"].(string); isString {
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			m.CreatedAt = &t
		}
	}
	return m, true
}

func number(v any) (float64, bool) {
	var (
		f   float64
		err error
	)
	switch n := v.(type) {
	case json.Number:
		f, err = n.Float64()
	case string:
		f, err = strconv.ParseFloat(strings.TrimSpace(n), 64)
	case float64:
		f = n
	default:
		return 0, false
	}
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, false
	}
	return f, true
}
