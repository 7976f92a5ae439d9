package report

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"

	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/i18n"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"
)

// Markdown renders d in lang.
func Markdown(d Dashboard, lang i18n.Language) string {
	var b strings.Builder
	tr := func(key string, args ...any) string { return i18n.Translatef(lang, key, args...) }

	weekID := ""
	if d.Week != nil {
		weekID = d.Week.WeekID
	}
	fmt.Fprintf(&b, "# %s\n\n", strings.TrimSpace(tr("report.title", weekID)))
	if d.Name != "" {
		fmt.Fprintf(&b, "%s\n\n", tr("report.greeting", d.Name))
	}

	fmt.Fprintf(&b, "## %s\n\n", tr("report.level", d.Level.Level))
	fmt.Fprintf(&b, "- %s\n", tr("report.points", d.PointsThisWeek))
	fmt.Fprintf(&b, "- %s\n\n", tr("report.level.next", d.PointsToNextLevel, d.Level.Level+1, d.LevelPercent))

	if d.Week == nil {
		fmt.Fprintf(&b, "%s\n\n", tr("report.week.missing"))
	} else {
		fmt.Fprintf(&b, "## %s\n\n", tr("report.workouts"))
		fmt.Fprintf(&b, "%s\n\n", tr("report.completed", d.CompletedWorkouts, d.WorkoutDays, d.WorkoutPercent))
		writeWeekTable(&b, d, lang)
		fmt.Fprintf(&b, "## %s\n\n", tr("report.diet"))
		fmt.Fprintf(&b, "%s\n\n", tr("report.completed", d.CompletedDietDays, d.DietDays, d.DietPercent))
	}

	fmt.Fprintf(&b, "## %s\n\n", tr("report.weight"))
	if d.Weight.Trend == progress.TrendUnknown {
		fmt.Fprintf(&b, "%s\n\n", tr("trend.unknown"))
	} else {
		fmt.Fprintf(&b, "%s. %s\n\n",
			tr("report.weight.difference", FormatDifference(d.Weight.DifferenceKg)),
			tr("trend."+string(d.Weight.Trend)))
	}
	if len(d.Weight.Recent) > 0 {
		fmt.Fprintf(&b, "### %s\n\n", tr("report.weight.recent"))
		for _, m := range d.Weight.Recent {
			fmt.Fprintf(&b, "- %s: %s kg\n", m.Date, strconv.FormatFloat(m.WeightKg, 'f', -1, 64))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func writeWeekTable(b *strings.Builder, d Dashboard, lang i18n.Language) {
	b.WriteString("| | " + i18n.Translate(lang, "report.workouts") + " | " + i18n.Translate(lang, "report.diet") + " |\n")
	b.WriteString("|---|---|---|\n")
	for i, day := range d.Week.Workouts.Days {
		workoutCell := i18n.Translate(lang, "cli.day.rest")
		if len(day.Items) > 0 {
			workoutCell = mark(day.Completed) + " " + strconv.Itoa(len(day.Items))
		}
		dietCell := ""
		if i < len(d.Week.Diet.Days) {
			dietCell = mark(d.Week.Diet.Days[i].Completed)
		}
		fmt.Fprintf(b, "| %s %s | %s | %s |\n",
			i18n.Translate(lang, "weekday."+strconv.Itoa(i)), day.Date, workoutCell, dietCell)
	}
	b.WriteString("\n")
}

func mark(done bool) string {
	if done {
		return "✔"
	}
	return "·"
}

// FormatDifference formats a weight difference with one decimal and an explicit plus sign for gains.
func FormatDifference(kg float64) string {
	s := strconv.FormatFloat(kg, 'f', 1, 64)
	if kg > 0 {
		s = "+" + s
	}
	return s + " kg"
}

//nolint:gochecknoglobals // goldmark instances are safe for concurrent use.
var markdown = goldmark.New(goldmark.WithExtensions(extension.Table))

// HTML converts Markdown output to HTML.
func HTML(md string) (string, error) {
	var buf bytes.Buffer
	if err := markdown.Convert([]byte(md), &buf); err != nil {
		return "", errors.Wrap(err, "render report html")
	}
	return buf.String(), nil
}
