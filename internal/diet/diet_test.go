package diet_test

import (
	"errors"
	"io"
	"math"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitweek/internal/blobstore"
	"github.com/myrjola/fitweek/internal/diet"
	"github.com/myrjola/fitweek/internal/docstore/docstoretest"
	"github.com/myrjola/fitweek/internal/metrics"
	"github.com/myrjola/fitweek/internal/profile"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/ptr"
	"github.com/myrjola/fitweek/internal/testhelpers"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

//nolint:gochecknoglobals // shared test fixture.
var now = time.Date(2024, time.March, 13, 12, 0, 0, 0, time.UTC)

type fixture struct {
	diet     *diet.Service
	profiles *profile.Service
	blobs    *blobstore.Disk
	metrics  *metrics.Manager
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	store := docstoretest.New(t)
	logger := testhelpers.NewLogger(testhelpers.NewWriter(t))
	m := metrics.NewTestManager()
	clock := func() time.Time { return now }
	blobs, err := blobstore.NewDisk(t.TempDir(), "https://files.example.com", logger)
	if err != nil {
		t.Fatalf("NewDisk: %v", err)
	}
	profiles := profile.NewService(store, progress.NewService(store, logger, m), logger).WithClock(clock)
	if _, err = profiles.Register(t.Context(), "u1", "Ana", "ana@example.com"); err != nil {
		t.Fatalf("Register: %v", err)
	}
	return fixture{
		diet:     diet.NewService(store, blobs, profiles, logger, m).WithClock(clock),
		profiles: profiles,
		blobs:    blobs,
		metrics:  m,
	}
}

func TestService_SaveManual(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	if _, err := f.diet.SaveManual(ctx, "ghost", "", nil); !errors.Is(err, profile.ErrNotFound) {
		t.Fatalf("SaveManual for missing profile error = %v, want ErrNotFound", err)
	}

	manual, err := f.diet.SaveManual(ctx, "u1", "  less sugar ", []string{"Oats", " ", "Eggs", "Oats ", ""})
	if err != nil {
		t.Fatalf("SaveManual: %v", err)
	}
	want := profile.ManualDiet{Notes: "less sugar", Meals: []string{"Oats", "Eggs"}, UpdatedAt: &now}
	if diff := cmp.Diff(want, manual); diff != "" {
		t.Errorf("manual diet mismatch (-want +got):\n%s", diff)
	}

	p, err := f.profiles.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if diff := cmp.Diff(&want, p.Diet.Manual); diff != "" {
		t.Errorf("stored manual diet mismatch (-want +got):\n%s", diff)
	}
	if p.Name != "Ana" {
		t.Error("saving the diet must keep the rest of the profile")
	}
}

func TestService_UploadPDF(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	if _, err := f.diet.UploadPDF(ctx, "u1", strings.NewReader("GIF89a")); !errors.Is(err, diet.ErrInvalidInput) {
		t.Fatalf("UploadPDF of a non PDF error = %v, want ErrInvalidInput", err)
	}
	if _, err := f.diet.SaveManual(ctx, "u1", "notes", []string{"Soup"}); err != nil {
		t.Fatalf("SaveManual: %v", err)
	}

	content := "%PDF-1.7\nmeal plan"
	url, err := f.diet.UploadPDF(ctx, "u1", strings.NewReader(content))
	if err != nil {
		t.Fatalf("UploadPDF: %v", err)
	}
	key := "users/u1/diet/current_1710331200000.pdf"
	if url != "https://files.example.com/"+key {
		t.Errorf("url = %s", url)
	}

	rc, err := f.blobs.Open(ctx, key)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	defer rc.Close()
	stored, err := io.ReadAll(rc)
	if err != nil {
		t.Fatalf("ReadAll: %v", err)
	}
	if string(stored) != content {
		t.Errorf("stored %q, want %q", stored, content)
	}

	p, err := f.profiles.Get(ctx, "u1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if p.Diet.CurrentPDFURL != url || p.Diet.Manual == nil {
		t.Errorf("diet = %+v, want the pdf linked and the manual diet kept", p.Diet)
	}
	if got := diet.LastUpdated(p); got == nil || !got.Equal(now) {
		t.Errorf("LastUpdated = %v, want %v", got, now)
	}
	if got := testutil.ToFloat64(f.metrics.CounterDietUploads); got != 1 {
		t.Errorf("counted %v uploads, want 1", got)
	}
}

func TestLastUpdated(t *testing.T) {
	earlier := now.Add(-time.Hour)
	tests := []struct {
		name string
		diet profile.Diet
		want *time.Time
	}{
		{name: "nothing", diet: profile.Diet{Manual: nil, CurrentPDFURL: "", UpdatedAt: nil}, want: nil},
		{
			name: "manual is newer",
			diet: profile.Diet{Manual: &profile.ManualDiet{Notes: "", Meals: nil, UpdatedAt: &now}, CurrentPDFURL: "x", UpdatedAt: &earlier},
			want: &now,
		},
		{
			name: "pdf only",
			diet: profile.Diet{Manual: nil, CurrentPDFURL: "x", UpdatedAt: &earlier},
			want: &earlier,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, diet.LastUpdated(profile.Profile{Diet: tt.diet})); diff != "" {
				t.Errorf("mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestService_Plan(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	got, err := f.diet.GetPlan(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPlan without plan: %v", err)
	}
	if diff := cmp.Diff(diet.DefaultPlan(), got); diff != "" {
		t.Errorf("default plan mismatch (-want +got):\n%s", diff)
	}

	if _, err = f.diet.SavePlan(ctx, "u1", diet.Plan{
		Meals: []diet.Meal{{Name: "brunch", Time: "", ItemsText: "", Kcal: nil}},
	}); !errors.Is(err, diet.ErrInvalidInput) {
		t.Errorf("SavePlan with unknown slot error = %v, want ErrInvalidInput", err)
	}
	if _, err = f.diet.SavePlan(ctx, "u1", diet.Plan{
		Meals: []diet.Meal{{Name: diet.SlotLunch, Time: "noon", ItemsText: "", Kcal: nil}},
	}); !errors.Is(err, diet.ErrInvalidInput) {
		t.Errorf("SavePlan with bad time error = %v, want ErrInvalidInput", err)
	}

	saved, err := f.diet.SavePlan(ctx, "u1", diet.Plan{
		Meals: []diet.Meal{
			{Name: diet.SlotDinner, Time: "19:30", ItemsText: " Salmon, rice ", Kcal: ptr.Ref(650.0)},
			{Name: diet.SlotBreakfast, Time: "07:00", ItemsText: "Oats", Kcal: ptr.Ref(-1.0)},
		},
		KcalPerDay: ptr.Ref(2200.0),
	})
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	loaded, err := f.diet.GetPlan(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPlan: %v", err)
	}
	if diff := cmp.Diff(saved, loaded); diff != "" {
		t.Errorf("loaded plan differs from saved (-saved +loaded):\n%s", diff)
	}
	if loaded.Meals[4].ItemsText != "Salmon, rice" || loaded.Meals[0].Kcal != nil || ptr.Deref(loaded.KcalPerDay) != 2200 {
		t.Errorf("unexpected plan %+v", loaded)
	}

	// Saving without calories per day removes the stored value.
	if _, err = f.diet.SavePlan(ctx, "u1", diet.Plan{Meals: nil, KcalPerDay: ptr.Ref(0.0)}); err != nil {
		t.Fatalf("SavePlan again: %v", err)
	}
	loaded, err = f.diet.GetPlan(ctx, "u1")
	if err != nil {
		t.Fatalf("GetPlan again: %v", err)
	}
	if loaded.KcalPerDay != nil || loaded.Meals[4].ItemsText != "" {
		t.Errorf("unexpected plan after reset %+v", loaded)
	}
}

func TestService_PlanRejectsInvalidUserIDs(t *testing.T) {
	f := newFixture(t)
	ctx := t.Context()

	for _, uid := range []string{"", "u1/measurements"} {
		if _, err := f.diet.GetPlan(ctx, uid); !errors.Is(err, diet.ErrInvalidInput) {
			t.Errorf("GetPlan(%q) error = %v, want ErrInvalidInput", uid, err)
		}
		if _, err := f.diet.SavePlan(ctx, uid, diet.DefaultPlan()); !errors.Is(err, diet.ErrInvalidInput) {
			t.Errorf("SavePlan(%q) error = %v, want ErrInvalidInput", uid, err)
		}
	}
}

func TestService_SavePlanDropsInfiniteCalories(t *testing.T) {
	f := newFixture(t)
	inf := math.Inf(1)

	plan := diet.DefaultPlan()
	plan.Meals[0].Kcal = &inf
	plan.KcalPerDay = &inf
	got, err := f.diet.SavePlan(t.Context(), "u1", plan)
	if err != nil {
		t.Fatalf("SavePlan: %v", err)
	}
	if got.Meals[0].Kcal != nil || got.KcalPerDay != nil {
		t.Errorf("infinite calories were kept: %v, %v", got.Meals[0].Kcal, got.KcalPerDay)
	}
}
