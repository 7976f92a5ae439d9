// Package week computes ISO-8601 week identifiers and the Monday to Sunday dates of a week.
//
// Both functions look at the calendar date of t in t's own location so that they always agree on which seven days
// make up the week.
package week

import (
	"fmt"
	"time"
)

// DateLayout is the YYYY-MM-DD format used for day dates in stored documents.
const DateLayout = time.DateOnly

// ID returns the ISO week identifier "<ISO year>-W<2 digit week>" of t.
func ID(t time.Time) string {
	year, week := t.ISOWeek()
	return fmt.Sprintf("%d-W%02d", year, week)
}

// Monday returns midnight of the Monday on or before t in t's location.
func Monday(t time.Time) time.Time {
	y, m, d := t.Date()
	// time.Weekday counts from Sunday, ISO weeks start on Monday.
	offset := (int(t.Weekday()) + 6) % 7
	return time.Date(y, m, d-offset, 0, 0, 0, 0, t.Location())
}

// Dates returns midnight of every day of t's week, Monday first.
func Dates(t time.Time) [7]time.Time {
	var dates [7]time.Time
	monday := Monday(t)
	y, m, d := monday.Date()
	for i := range dates {
		dates[i] = time.Date(y, m, d+i, 0, 0, 0, 0, t.Location())
	}
	return dates
}

// FormatDate formats t as YYYY-MM-DD in t's location.
func FormatDate(t time.Time) string {
	return t.Format(DateLayout)
}
