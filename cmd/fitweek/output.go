package main

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/fatih/color"
	"github.com/myrjola/fitweek/internal/diet"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/level"
	"github.com/myrjola/fitweek/internal/profile"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/ptr"
	"github.com/myrjola/fitweek/internal/report"
	"github.com/myrjola/fitweek/internal/workout"
)

//nolint:gochecknoglobals // colour helpers.
var (
	headerColor = color.New(color.FgCyan, color.Bold).SprintFunc()
	doneColor   = color.New(color.FgGreen).SprintFunc()
	mutedColor  = color.New(color.FgHiBlack).SprintFunc()
	noticeColor = color.New(color.FgYellow).SprintFunc()
	errorColor  = color.New(color.FgRed, color.Bold).SprintFunc()
	levelColor  = color.New(color.FgMagenta, color.Bold).SprintFunc()
)

// userErrors are shown without logging because the user can fix them.
//
//nolint:gochecknoglobals // sentinel list.
var userErrors = []error{
	workout.ErrInvalidInput,
	workout.ErrNoWorkoutToday,
	workout.ErrDayIncomplete,
	workout.ErrUnknownExercise,
	workout.ErrNotFound,
	profile.ErrInvalidInput,
	profile.ErrNotFound,
	progress.ErrInvalidInput,
	diet.ErrInvalidInput,
	errInvalidArgument,
}

var errInvalidArgument = errors.NewSentinel("invalid argument")

func isUserError(err error) bool {
	for _, target := range userErrors {
		if errors.Is(err, target) {
			return true
		}
	}
	return false
}

func printError(w io.Writer, err error) {
	_, _ = fmt.Fprintln(w, errorColor("Error:"), err.Error())
}

func (app *application) notice(msg string) {
	_, _ = fmt.Fprintln(app.out, noticeColor(msg))
}

func (app *application) println(a ...any) {
	_, _ = fmt.Fprintln(app.out, a...)
}

func check(done bool) string {
	if done {
		return doneColor("[x]")
	}
	return "[ ]"
}

func (app *application) printWeek(plan workout.WeekPlan, today string) {
	app.println(headerColor(app.tr("cli.week.header", plan.WeekID, plan.Points)))
	for i, day := range plan.Workouts.Days {
		label := app.tr("weekday."+strconv.Itoa(i)) + " " + day.Date
		if day.Date == today {
			label = "> " + label
		} else {
			label = "  " + label
		}
		if len(day.Items) == 0 {
			app.println(label, mutedColor(app.tr("cli.day.rest")))
			continue
		}
		status := ""
		if day.Completed {
			status = doneColor(app.tr("cli.day.completed"))
		}
		app.println(label, status)
		for j, item := range day.Items {
			line := fmt.Sprintf("      %d. %s %s", j+1, check(item.Done), item.Name)
			if item.Media != nil {
				line += " " + mutedColor(item.Media.URL)
			}
			app.println(line)
		}
	}

	app.println(headerColor(app.tr("cli.diet.header")))
	var cells []string
	for i, day := range plan.Diet.Days {
		cells = append(cells, fmt.Sprintf("%d %s %s", i+1, app.tr("weekday."+strconv.Itoa(i)), check(day.Completed)))
	}
	app.println("  " + strings.Join(cells, "  "))
}

func (app *application) printTips(item workout.Item) {
	for _, tip := range item.Tips {
		app.println("   - " + tip)
	}
}

func (app *application) printLevel(stats level.Stats) {
	info := level.FromTotalPoints(stats.TotalPoints)
	app.println(levelColor(app.tr("cli.level",
		info.Level, info.CurrentLevelProgress, info.NextLevelPoints, max(info.PointsRemaining(), 0))))
	app.println(app.tr("cli.level.total", stats.TotalPoints, stats.PointsThisWeek))
	const barWidth = 20
	filled := info.Percent() * barWidth / 100 //nolint:mnd // percent.
	app.println("[" + doneColor(strings.Repeat("#", filled)) + strings.Repeat("-", barWidth-filled) + "] " +
		strconv.Itoa(info.Percent()) + "%")
}

func (app *application) printProgress(entries []progress.Measurement) {
	if len(entries) == 0 {
		app.println(app.tr("cli.progress.empty"))
		return
	}
	for _, m := range entries {
		line := fmt.Sprintf("%s  %6.1f kg", m.Date, m.WeightKg)
		for _, metric := range []struct {
			name  string
			value *float64
		}{
			{name: "waist", value: m.WaistCm},
			{name: "chest", value: m.ChestCm},
			{name: "hip", value: m.HipCm},
			{name: "arm", value: m.ArmCm},
			{name: "thigh", value: m.ThighCm},
		} {
			if metric.value != nil {
				line += fmt.Sprintf("  %s %.1f cm", metric.name, *metric.value)
			}
		}
		app.println(line)
	}

	summary := progress.Summarize(entries)
	if summary.Trend == progress.TrendUnknown {
		app.println(mutedColor(app.tr("trend.unknown")))
		return
	}
	app.println(app.tr("report.weight.difference", report.FormatDifference(summary.DifferenceKg)) + ". " +
		app.tr("trend."+string(summary.Trend)))
	var bars []string
	for _, h := range summary.SparkHeights() {
		bars = append(bars, sparkBar(h))
	}
	app.println(strings.Join(bars, ""))
}

// sparkBar maps a spark height in [12, 82] to a block character.
func sparkBar(height float64) string {
	blocks := []rune("▁▂▃▄▅▆▇█")
	i := int((height - 12) / 70 * float64(len(blocks)-1)) //nolint:mnd // spark height range.
	return string(blocks[min(max(i, 0), len(blocks)-1)])
}

func (app *application) printDietPlan(plan diet.Plan) {
	for _, meal := range plan.Meals {
		details := []string{}
		if meal.Time != "" {
			details = append(details, meal.Time)
		}
		if meal.ItemsText != "" {
			details = append(details, meal.ItemsText)
		}
		if meal.Kcal != nil {
			details = append(details, strconv.FormatFloat(*meal.Kcal, 'f', -1, 64)+" kcal")
		}
		if len(details) == 0 {
			details = append(details, mutedColor(app.tr("cli.meal.empty")))
		}
		app.println(fmt.Sprintf("%-16s %s", meal.Name, strings.Join(details, " | ")))
	}
	if plan.KcalPerDay != nil {
		app.println(strconv.FormatFloat(ptr.Deref(plan.KcalPerDay), 'f', -1, 64) + " kcal/day")
	}
}
