// Package diet stores the manual diet notes, the structured meal plan and the uploaded diet PDF of a user.
package diet

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/logging"
	"github.com/myrjola/fitweek/internal/metrics"
	"github.com/myrjola/fitweek/internal/profile"
)

var ErrInvalidInput = errors.NewSentinel("invalid diet")

// Blobs stores uploaded files and returns their URL.
type Blobs interface {
	Put(ctx context.Context, key string, r io.Reader) (string, error)
}

type Service struct {
	store    *docstore.Store
	blobs    Blobs
	profiles *profile.Service
	logger   *slog.Logger
	metrics  *metrics.Manager
	now      func() time.Time
}

func NewService(
	store *docstore.Store,
	blobs Blobs,
	profiles *profile.Service,
	logger *slog.Logger,
	m *metrics.Manager,
) *Service {
	return &Service{store: store, blobs: blobs, profiles: profiles, logger: logger, metrics: m, now: time.Now}
}

// WithClock replaces time.Now and returns s.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// SaveManual replaces the manual diet of the profile. Blank and repeated meals are dropped.
func (s *Service) SaveManual(ctx context.Context, uid string, notes string, meals []string) (profile.ManualDiet, error) {
	if _, err := s.profiles.Get(ctx, uid); err != nil {
		return profile.ManualDiet{}, err
	}
	manual := profile.ManualDiet{
		Notes:     strings.TrimSpace(notes),
		Meals:     []string{},
		UpdatedAt: nil,
	}
	for _, meal := range meals {
		meal = strings.TrimSpace(meal)
		if meal == "" || slices.Contains(manual.Meals, meal) {
			continue
		}
		manual.Meals = append(manual.Meals, meal)
	}
	now := s.now().UTC()
	manual.UpdatedAt = &now

	if _, err := s.store.Merge(ctx, docstore.UserPath(uid), map[string]any{
		"diet": map[string]any{"manual": manual},
	}); err != nil {
		return profile.ManualDiet{}, errors.Wrap(err, "save manual diet")
	}
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "saved manual diet",
		slog.Int("meals", len(manual.Meals)))
	return manual, nil
}

var pdfMagic = []byte("%PDF-") //nolint:gochecknoglobals // file signature.

// UploadPDF stores r as the current diet PDF and points the profile at it. r must start with the PDF signature.
func (s *Service) UploadPDF(ctx context.Context, uid string, r io.Reader) (string, error) {
	if _, err := s.profiles.Get(ctx, uid); err != nil {
		return "", err
	}
	br := bufio.NewReader(r)
	head, err := br.Peek(len(pdfMagic))
	if err != nil && !errors.Is(err, io.EOF) {
		return "", errors.Wrap(err, "read diet pdf")
	}
	if !bytes.Equal(head, pdfMagic) {
		return "", fmt.Errorf("%w: the file is not a PDF", ErrInvalidInput)
	}

	now := s.now().UTC()
	key := fmt.Sprintf("users/%s/diet/current_%d.pdf", uid, now.UnixMilli())
	url, err := s.blobs.Put(ctx, key, br)
	if err != nil {
		return "", errors.Wrap(err, "store diet pdf", slog.String("key", key))
	}
	if _, err = s.store.Merge(ctx, docstore.UserPath(uid), map[string]any{
		"diet": map[string]any{"currentPdfUrl": url, "updatedAt": now},
	}); err != nil {
		return "", errors.Wrap(err, "link diet pdf", slog.String("key", key))
	}
	s.metrics.CounterDietUploads.Inc()
	s.logger.LogAttrs(logging.WithUser(ctx, uid), slog.LevelInfo, "uploaded diet pdf", slog.String("key", key))
	return url, nil
}

// LastUpdated returns the later of the manual diet and the PDF update times, or nil when neither exists.
func LastUpdated(p profile.Profile) *time.Time {
	var latest *time.Time
	candidates := []*time.Time{p.Diet.UpdatedAt}
	if p.Diet.Manual != nil {
		candidates = append(candidates, p.Diet.Manual.UpdatedAt)
	}
	for _, t := range candidates {
		if t != nil && (latest == nil || t.After(*latest)) {
			latest = t
		}
	}
	return latest
}
