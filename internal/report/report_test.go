package report_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitweek/internal/i18n"
	"github.com/myrjola/fitweek/internal/level"
	"github.com/myrjola/fitweek/internal/profile"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/report"
	"github.com/myrjola/fitweek/internal/workout"
)

type fakeProfiles struct {
	p   profile.Profile
	err error
}

func (f fakeProfiles) Get(context.Context, string) (profile.Profile, error) { return f.p, f.err }

type fakeWeeks struct {
	plan workout.WeekPlan
	err  error
}

func (f fakeWeeks) CurrentWeek(context.Context, string) (workout.WeekPlan, error) { return f.plan, f.err }

type fakeMeasurements []progress.Measurement

func (f fakeMeasurements) List(context.Context, string) ([]progress.Measurement, error) { return f, nil }

func samplePlan() workout.WeekPlan {
	plan := workout.WeekPlan{UID: "u1", WeekID: "2024-W11", Points: 25}
	for i, date := range []string{"2024-03-11", "2024-03-12", "2024-03-13", "2024-03-14", "2024-03-15", "2024-03-16", "2024-03-17"} {
		day := workout.Day{Date: date, Completed: false, Items: []workout.Item{}}
		if i < 3 {
			day.Items = []workout.Item{{Name: "Front plank", Done: i < 2, Media: nil, Tips: nil}}
			day.Completed = i < 2
		}
		plan.Workouts.Days = append(plan.Workouts.Days, day)
		plan.Diet.Days = append(plan.Diet.Days, workout.DietDay{Date: date, Completed: i == 0})
	}
	return plan
}

func sampleSources() report.Sources {
	return report.Sources{
		Profiles: fakeProfiles{p: profile.Profile{
			Name:  "Ana",
			Stats: level.Stats{TotalPoints: 130, PointsThisWeek: 25, LastWeekID: "2024-W11", Level: 2},
		}, err: nil},
		Weeks: fakeWeeks{plan: samplePlan(), err: nil},
		Measurements: fakeMeasurements{
			{Date: "2024-03-01", WeightKg: 82},
			{Date: "2024-03-11", WeightKg: 80.8},
		},
	}
}

func TestLoad(t *testing.T) {
	d, err := report.Load(t.Context(), sampleSources(), "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	got := []int{
		d.CompletedWorkouts, d.WorkoutDays, d.WorkoutPercent,
		d.CompletedDietDays, d.DietDays, d.DietPercent,
		d.PointsThisWeek, d.Level.Level, d.PointsToNextLevel, d.LevelPercent,
	}
	want := []int{2, 7, 29, 1, 7, 14, 25, 2, 70, 30}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("dashboard numbers mismatch (-want +got):\n%s", diff)
	}
	if d.Weight.Trend != progress.TrendDown || d.Weight.DifferenceKg != -1.2 {
		t.Errorf("weight = %v %v, want down -1.2", d.Weight.Trend, d.Weight.DifferenceKg)
	}
}

func TestLoad_WithoutWeek(t *testing.T) {
	sources := sampleSources()
	sources.Weeks = fakeWeeks{plan: workout.WeekPlan{}, err: workout.ErrNotFound}

	d, err := report.Load(t.Context(), sources, "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if d.Week != nil || d.WorkoutPercent != 0 {
		t.Errorf("dashboard without week = %+v", d)
	}

	md := report.Markdown(d, i18n.English)
	if !strings.Contains(md, "No plan for this week yet.") {
		t.Errorf("markdown misses the missing week notice:\n%s", md)
	}
}

func TestLoad_PropagatesErrors(t *testing.T) {
	sources := sampleSources()
	sources.Profiles = fakeProfiles{p: profile.Profile{}, err: profile.ErrNotFound}

	if _, err := report.Load(t.Context(), sources, "u1"); !errors.Is(err, profile.ErrNotFound) {
		t.Errorf("Load error = %v, want ErrNotFound", err)
	}
}

func TestHTML(t *testing.T) {
	d, err := report.Load(t.Context(), sampleSources(), "u1")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	html, err := report.HTML(report.Markdown(d, i18n.Portuguese))
	if err != nil {
		t.Fatalf("HTML: %v", err)
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse html: %v", err)
	}

	if got := doc.Find("h1").Text(); got != "Relatório semanal 2024-W11" {
		t.Errorf("h1 = %q", got)
	}
	if got := doc.Find("table tbody tr").Length(); got != 7 {
		t.Errorf("got %d table rows, want 7", got)
	}
	if got := doc.Find("table tbody tr").Last().Find("td").Eq(1).Text(); got != "descanso" {
		t.Errorf("sunday workout cell = %q, want descanso", got)
	}
	var headings []string
	doc.Find("h2").Each(func(_ int, s *goquery.Selection) {
		headings = append(headings, s.Text())
	})
	if diff := cmp.Diff([]string{"Nível 2", "Treinos", "Dieta", "Peso"}, headings); diff != "" {
		t.Errorf("headings mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(doc.Find("p").Text(), "-1.2 kg") {
		t.Error("weight difference missing")
	}
	if got := doc.Find("h3 + ul li").Length(); got != 2 {
		t.Errorf("got %d recent entries, want 2", got)
	}
}

func TestFormatDifference(t *testing.T) {
	tests := map[float64]string{1.26: "+1.3 kg", -0.5: "-0.5 kg", 0: "0.0 kg"}
	for in, want := range tests {
		if got := report.FormatDifference(in); got != want {
			t.Errorf("FormatDifference(%v) = %q, want %q", in, got, want)
		}
	}
}
