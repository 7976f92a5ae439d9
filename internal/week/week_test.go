package week_test

import (
	"testing"
	"time"

	"github.com/myrjola/fitweek/internal/week"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 15, 30, 0, 0, time.UTC)
}

func TestID(t *testing.T) {
	tests := []struct {
		name string
		t    time.Time
		want string
	}{
		{name: "first day of 2024", t: date(2024, time.January, 1), want: "2024-W01"},
		{name: "sunday in week 52", t: date(2023, time.December, 31), want: "2023-W52"},
		{name: "53 week year", t: date(2020, time.December, 31), want: "2020-W53"},
		{name: "december in week 1 of next year", t: date(2024, time.December, 30), want: "2025-W01"},
		{name: "january in week 53 of previous year", t: date(2021, time.January, 3), want: "2020-W53"},
		{name: "single digit week is padded", t: date(2024, time.February, 14), want: "2024-W07"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := week.ID(tt.t); got != tt.want {
				t.Errorf("ID(%s) = %q, want %q", tt.t.Format(time.DateOnly), got, tt.want)
			}
		})
	}
}

func TestDates(t *testing.T) {
	wednesday := date(2024, time.March, 13)
	dates := week.Dates(wednesday)

	if dates[0].Weekday() != time.Monday {
		t.Errorf("first date is %s, want Monday", dates[0].Weekday())
	}
	if got := week.FormatDate(dates[0]); got != "2024-03-11" {
		t.Errorf("Monday = %s, want 2024-03-11", got)
	}
	if got := week.FormatDate(dates[6]); got != "2024-03-17" {
		t.Errorf("Sunday = %s, want 2024-03-17", got)
	}
	for i := 1; i < len(dates); i++ {
		if got := dates[i].Sub(dates[i-1]); got != 24*time.Hour {
			t.Errorf("dates %d and %d are %s apart", i-1, i, got)
		}
	}
}

func TestDates_Sunday(t *testing.T) {
	dates := week.Dates(date(2024, time.March, 17))
	if got := week.FormatDate(dates[0]); got != "2024-03-11" {
		t.Errorf("Monday of a Sunday = %s, want 2024-03-11", got)
	}
}

// Every day of the week must map to the same week id as its Monday, including across year boundaries.
func TestIDAndDatesAgree(t *testing.T) {
	helsinki, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		helsinki = time.FixedZone("EET", 2*60*60)
	}
	for _, loc := range []*time.Location{time.UTC, helsinki, time.FixedZone("UTC-11", -11*60*60)} {
		start := time.Date(2015, time.December, 20, 23, 59, 0, 0, loc)
		end := time.Date(2027, time.January, 10, 0, 0, 0, 0, loc)
		for d := start; d.Before(end); d = d.AddDate(0, 0, 1) {
			id := week.ID(d)
			dates := week.Dates(d)
			for _, day := range dates {
				if got := week.ID(day); got != id {
					t.Fatalf("%s in %s: ID(%s) = %s, want %s", d, loc, week.FormatDate(day), got, id)
				}
			}
			if week.FormatDate(d) < week.FormatDate(dates[0]) || week.FormatDate(d) > week.FormatDate(dates[6]) {
				t.Fatalf("%s is outside of its week %s..%s", d, dates[0], dates[6])
			}
		}
	}
}

func TestMonday_DaylightSavingTime(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Helsinki")
	if err != nil {
		t.Skip("time zone database not available")
	}
	// Clocks move forward on Sunday 2024-03-31.
	dates := week.Dates(time.Date(2024, time.March, 31, 12, 0, 0, 0, loc))
	for i, d := range dates {
		if d.Hour() != 0 || d.Minute() != 0 {
			t.Errorf("date %d = %s, want midnight", i, d)
		}
	}
	if got := week.FormatDate(dates[6]); got != "2024-03-31" {
		t.Errorf("Sunday = %s, want 2024-03-31", got)
	}
}
