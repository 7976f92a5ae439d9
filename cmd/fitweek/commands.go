package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/myrjola/fitweek/internal/diet"
	"github.com/myrjola/fitweek/internal/docstore"
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/myrjola/fitweek/internal/i18n"
	"github.com/myrjola/fitweek/internal/profile"
	"github.com/myrjola/fitweek/internal/progress"
	"github.com/myrjola/fitweek/internal/report"
	"github.com/myrjola/fitweek/internal/week"
	"github.com/myrjola/fitweek/internal/workout"
	"github.com/spf13/cobra"
)

func newRootCmd(app *application) *cobra.Command {
	root := &cobra.Command{
		Use:           "fitweek",
		Short:         "Weekly workout and diet plans with points and levels",
		Long: "Weekly workout and diet plans with points and levels.\n\n" +
			"Configured through FITWEEK_* environment variables or a .env file. " +
			"FITWEEK_LANGUAGE selects one of: " + supportedLanguages() + ".",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	workoutCmd := &cobra.Command{Use: "workout", Short: "Work on today's workout"}
	workoutCmd.AddCommand(
		newWorkoutToggleCmd(app),
		newWorkoutCompleteCmd(app),
		newWorkoutReplaceCmd(app),
		newWorkoutAddCmd(app),
	)
	dietCmd := &cobra.Command{Use: "diet", Short: "Track and plan the diet"}
	dietCmd.AddCommand(
		newDietToggleCmd(app),
		newDietManualCmd(app),
		newDietPlanCmd(app),
		newDietUploadCmd(app),
	)
	root.AddCommand(
		newRegisterCmd(app),
		newOnboardCmd(app),
		newSettingsCmd(app),
		newWeekCmd(app),
		workoutCmd,
		dietCmd,
		newMeasureCmd(app),
		newProgressCmd(app),
		newLevelCmd(app),
		newReportCmd(app),
		newExercisesCmd(app),
		newExportCmd(app),
	)
	return root
}

func supportedLanguages() string {
	langs := make([]string, 0, len(i18n.SupportedLanguages()))
	for _, l := range i18n.SupportedLanguages() {
		langs = append(langs, string(l))
	}
	return strings.Join(langs, ", ")
}

// userFlag adds the required --user flag and rejects ids that are empty or span several path segments before the
// command runs.
func userFlag(cmd *cobra.Command, uid *string) {
	cmd.Flags().StringVar(uid, "user", "", "user id printed by register")
	_ = cmd.MarkFlagRequired("user")
	cmd.PreRunE = func(_ *cobra.Command, _ []string) error {
		if !docstore.ValidUID(*uid) {
			return fmt.Errorf("%w: invalid user id %q", errInvalidArgument, *uid)
		}
		return nil
	}
}

// position parses a 1-based position argument into a 0-based index.
func position(arg string, what string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 1 {
		return 0, fmt.Errorf("%w: %s must be a positive number, got %q", errInvalidArgument, what, arg)
	}
	return n - 1, nil
}

func newRegisterCmd(app *application) *cobra.Command {
	var name, email string
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user and print its id",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			p, err := app.profiles.Register(cmd.Context(), uuid.NewString(), name, email)
			if err != nil {
				return err
			}
			app.println(app.tr("cli.registered", p.UID))
			return nil
		}),
	}
	cmd.Flags().StringVar(&name, "name", "", "display name")
	cmd.Flags().StringVar(&email, "email", "", "email address")
	return cmd
}

func newOnboardCmd(app *application) *cobra.Command {
	var (
		uid          string
		o            profile.Onboarding
		goal         string
		experience   string
		muscleGroups []string
	)
	cmd := &cobra.Command{
		Use:   "onboard",
		Short: "Answer the onboarding questionnaire",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			o.Goal = workout.Goal(goal)
			o.Level = profile.Experience(experience)
			o.MuscleGroups = nil
			for _, g := range muscleGroups {
				o.MuscleGroups = append(o.MuscleGroups, profile.MuscleGroup(strings.TrimSpace(g)))
			}
			p, err := app.profiles.CompleteOnboarding(cmd.Context(), uid, o)
			if err != nil {
				return err
			}
			plan, err := app.workouts.EnsureCurrentWeek(cmd.Context(), uid, p.Preferences())
			if err != nil {
				return err
			}
			app.printWeek(plan, week.FormatDate(time.Now()))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	f := cmd.Flags()
	f.IntVar(&o.Age, "age", 0, "age in years (at least 12)")
	f.Float64Var(&o.HeightCm, "height", 0, "height in cm (at least 120)")
	f.Float64Var(&o.WeightKg, "weight", 0, "weight in kg (at least 30)")
	f.Float64Var(&o.WaistCm, "waist", 0, "waist in cm")
	f.Float64Var(&o.ChestCm, "chest", 0, "chest in cm")
	f.Float64Var(&o.HipCm, "hip", 0, "hip in cm")
	f.Float64Var(&o.ArmCm, "arm", 0, "arm in cm")
	f.Float64Var(&o.ThighCm, "thigh", 0, "thigh in cm")
	f.StringVar(&goal, "goal", string(workout.GoalConditioning), "weight-loss, hypertrophy or conditioning")
	f.IntVar(&o.WorkoutsPerWeek, "workouts", 3, "workouts per week (2 to 6)")
	f.StringSliceVar(&muscleGroups, "muscles", nil, "focus muscle groups: chest, back, legs, shoulders, arms, core, glutes")
	f.StringVar(&experience, "experience", string(profile.ExperienceBeginner), "beginner, intermediate or advanced")
	f.StringVar(&o.PlaylistURL, "playlist", "", "YouTube playlist to train with")
	return cmd
}

func newSettingsCmd(app *application) *cobra.Command {
	var (
		uid      string
		settings profile.Settings
		goal     string
	)
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Change the goal, the weight or the playlist",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			settings.Goal = workout.Goal(goal)
			if _, err := app.profiles.UpdateSettings(cmd.Context(), uid, settings); err != nil {
				return err
			}
			app.println(app.tr("cli.saved"))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	cmd.Flags().StringVar(&goal, "goal", "", "weight-loss, hypertrophy or conditioning; keeps the current goal when empty")
	cmd.Flags().Float64Var(&settings.WeightKg, "weight", 0, "weight in kg")
	cmd.Flags().StringVar(&settings.PlaylistURL, "playlist", "", "YouTube playlist to train with")
	return cmd
}

func newWeekCmd(app *application) *cobra.Command {
	var (
		uid   string
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "week",
		Short: "Show the plan of the current week, creating it when missing",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, ok, err := app.onboardedProfile(ctx, uid)
			if err != nil || !ok {
				return err
			}
			plan, err := app.workouts.EnsureCurrentWeek(ctx, uid, p.Preferences())
			if err != nil {
				return err
			}
			if !watch {
				app.printWeek(plan, week.FormatDate(time.Now()))
				return nil
			}
			plans, err := app.workouts.WatchWeek(ctx, uid)
			if err != nil {
				return err
			}
			for plan = range plans {
				app.printWeek(plan, week.FormatDate(time.Now()))
			}
			return nil
		}),
	}
	userFlag(cmd, &uid)
	cmd.Flags().BoolVar(&watch, "watch", false, "keep printing the plan after every change until interrupted")
	return cmd
}

func newWorkoutToggleCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "toggle EXERCISE",
		Short: "Mark an exercise of today's workout done or not done",
		Args:  cobra.ExactArgs(1),
		RunE: app.withBackend(func(cmd *cobra.Command, args []string) error {
			i, err := position(args[0], "exercise")
			if err != nil {
				return err
			}
			plan, err := app.workouts.ToggleItem(cmd.Context(), uid, i)
			if err != nil {
				return err
			}
			app.printWeek(plan, week.FormatDate(time.Now()))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newWorkoutCompleteCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "complete",
		Short: "Complete today's workout once every exercise is done",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			plan, err := app.workouts.CompleteDay(ctx, uid)
			if err != nil {
				return err
			}
			app.printWeek(plan, week.FormatDate(time.Now()))
			stats, err := app.workouts.Stats(ctx, uid)
			if err != nil {
				return err
			}
			app.printLevel(stats)
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newWorkoutReplaceCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "replace EXERCISE NAME",
		Short: "Replace an exercise of today's workout with one from the library",
		Args:  cobra.MinimumNArgs(2), //nolint:mnd // position and name.
		RunE: app.withBackend(func(cmd *cobra.Command, args []string) error {
			i, err := position(args[0], "exercise")
			if err != nil {
				return err
			}
			plan, err := app.workouts.ReplaceItem(cmd.Context(), uid, i, strings.Join(args[1:], " "))
			if err != nil {
				return err
			}
			app.printWeek(plan, week.FormatDate(time.Now()))
			if d := plan.DayIndex(week.FormatDate(time.Now())); d >= 0 {
				app.printTips(plan.Workouts.Days[d].Items[i])
			}
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newWorkoutAddCmd(app *application) *cobra.Command {
	var uid, link string
	cmd := &cobra.Command{
		Use:   "add NAME",
		Short: "Add your own exercise to today's workout",
		Args:  cobra.MinimumNArgs(1),
		RunE: app.withBackend(func(cmd *cobra.Command, args []string) error {
			plan, err := app.workouts.AddCustomItem(cmd.Context(), uid, strings.Join(args, " "), link)
			if err != nil {
				return err
			}
			app.printWeek(plan, week.FormatDate(time.Now()))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	cmd.Flags().StringVar(&link, "link", "", "YouTube video or animated image showing the exercise")
	return cmd
}

func newDietToggleCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "toggle DAY",
		Short: "Mark a day of the diet (1 is Monday) followed or not",
		Args:  cobra.ExactArgs(1),
		RunE: app.withBackend(func(cmd *cobra.Command, args []string) error {
			i, err := position(args[0], "day")
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			plan, err := app.workouts.ToggleDietDay(ctx, uid, i)
			if err != nil {
				return err
			}
			app.printWeek(plan, week.FormatDate(time.Now()))
			stats, err := app.workouts.Stats(ctx, uid)
			if err != nil {
				return err
			}
			app.printLevel(stats)
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newDietManualCmd(app *application) *cobra.Command {
	var (
		uid   string
		notes string
		meals []string
	)
	cmd := &cobra.Command{
		Use:   "manual",
		Short: "Save diet notes and meals typed by hand",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			manual, err := app.diets.SaveManual(cmd.Context(), uid, notes, meals)
			if err != nil {
				return err
			}
			if manual.Notes != "" {
				app.println(manual.Notes)
			}
			for _, meal := range manual.Meals {
				app.println("- " + meal)
			}
			app.println(app.tr("cli.saved"))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	cmd.Flags().StringVar(&notes, "notes", "", "free text notes")
	cmd.Flags().StringArrayVar(&meals, "meal", nil, "a meal; repeat for more")
	return cmd
}

func newDietPlanCmd(app *application) *cobra.Command {
	var (
		uid        string
		slot       string
		at         string
		items      string
		kcal       float64
		kcalPerDay float64
	)
	cmd := &cobra.Command{
		Use:   "plan",
		Short: "Show the meal plan, or change one meal with --slot",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			plan, err := app.diets.GetPlan(ctx, uid)
			if err != nil {
				return err
			}
			changed := cmd.Flags().Changed("kcal-per-day")
			if changed {
				plan.KcalPerDay = &kcalPerDay
			}
			if slot != "" {
				found := false
				for i := range plan.Meals {
					if plan.Meals[i].Name != diet.Slot(slot) {
						continue
					}
					found = true
					plan.Meals[i].Time = at
					plan.Meals[i].ItemsText = items
					plan.Meals[i].Kcal = &kcal
				}
				if !found {
					return fmt.Errorf("%w: unknown meal %q", diet.ErrInvalidInput, slot)
				}
				changed = true
			}
			if changed {
				if plan, err = app.diets.SavePlan(ctx, uid, plan); err != nil {
					return err
				}
			}
			app.printDietPlan(plan)
			return nil
		}),
	}
	userFlag(cmd, &uid)
	f := cmd.Flags()
	f.StringVar(&slot, "slot", "", "breakfast, morning-snack, lunch, afternoon-snack, dinner or supper")
	f.StringVar(&at, "time", "", "time of the meal as HH:MM")
	f.StringVar(&items, "items", "", "what to eat")
	f.Float64Var(&kcal, "kcal", 0, "calories of the meal")
	f.Float64Var(&kcalPerDay, "kcal-per-day", 0, "daily calorie target; 0 removes it")
	return cmd
}

func newDietUploadCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "upload FILE",
		Short: "Upload the diet PDF from a nutritionist",
		Args:  cobra.ExactArgs(1),
		RunE: app.withBackend(func(cmd *cobra.Command, args []string) error {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("%w: %w", errInvalidArgument, err)
			}
			defer f.Close()
			url, err := app.diets.UploadPDF(cmd.Context(), uid, f)
			if err != nil {
				return err
			}
			app.println(app.tr("cli.uploaded", url))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newMeasureCmd(app *application) *cobra.Command {
	var (
		uid  string
		in   progress.Input
		date string
	)
	cmd := &cobra.Command{
		Use:   "measure",
		Short: "Record the weight and body measurements of a day",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			day := time.Now()
			if date != "" {
				var err error
				if day, err = time.ParseInLocation(week.DateLayout, date, time.Local); err != nil {
					return fmt.Errorf("%w: date must be YYYY-MM-DD, got %q", errInvalidArgument, date)
				}
			}
			if _, err := app.progress.Record(cmd.Context(), uid, in, day); err != nil {
				return err
			}
			app.println(app.tr("cli.saved"))
			return nil
		}),
	}
	userFlag(cmd, &uid)
	f := cmd.Flags()
	f.Float64Var(&in.WeightKg, "weight", 0, "weight in kg")
	f.Float64Var(&in.WaistCm, "waist", 0, "waist in cm")
	f.Float64Var(&in.ChestCm, "chest", 0, "chest in cm")
	f.Float64Var(&in.HipCm, "hip", 0, "hip in cm")
	f.Float64Var(&in.ArmCm, "arm", 0, "arm in cm")
	f.Float64Var(&in.ThighCm, "thigh", 0, "thigh in cm")
	f.StringVar(&date, "date", "", "day of the measurement as YYYY-MM-DD; today when empty")
	return cmd
}

func newProgressCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "progress",
		Short: "List the measurements and the weight trend",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			p, err := app.profiles.Get(ctx, uid)
			if err != nil {
				return err
			}
			if err = app.profiles.EnsureInitialMeasurement(ctx, p); err != nil {
				return err
			}
			entries, err := app.progress.List(ctx, uid)
			if err != nil {
				return err
			}
			app.printProgress(entries)
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newLevelCmd(app *application) *cobra.Command {
	var uid string
	cmd := &cobra.Command{
		Use:   "level",
		Short: "Show the points and the level",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			stats, err := app.workouts.Stats(cmd.Context(), uid)
			if err != nil {
				return err
			}
			app.printLevel(stats)
			return nil
		}),
	}
	userFlag(cmd, &uid)
	return cmd
}

func newReportCmd(app *application) *cobra.Command {
	var (
		uid  string
		html bool
	)
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print the weekly report as Markdown or HTML",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			d, err := report.Load(cmd.Context(), app.reportSources(), uid)
			if err != nil {
				return err
			}
			out := report.Markdown(d, app.lang)
			if html {
				if out, err = report.HTML(out); err != nil {
					return err
				}
			}
			_, err = fmt.Fprint(app.out, out)
			return err //nolint:wrapcheck // writing to stdout.
		}),
	}
	userFlag(cmd, &uid)
	cmd.Flags().BoolVar(&html, "html", false, "render HTML instead of Markdown")
	return cmd
}

func newExercisesCmd(app *application) *cobra.Command {
	var goal string
	cmd := &cobra.Command{
		Use:   "exercises",
		Short: "List the exercise library",
		Args:  cobra.NoArgs,
		RunE: func(_ *cobra.Command, _ []string) error {
			exercises := app.library.All()
			if goal != "" {
				g, err := workout.ParseGoal(goal)
				if err != nil {
					return err
				}
				exercises = app.library.Tagged(g)
			}
			for _, e := range exercises {
				tags := make([]string, 0, len(e.Tags))
				for _, t := range e.Tags {
					tags = append(tags, string(t))
				}
				app.println(headerColor(e.Name), mutedColor(strings.Join(tags, ", ")))
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&goal, "goal", "", "only list exercises suited to the goal")
	return cmd
}

func newExportCmd(app *application) *cobra.Command {
	var uid, dir string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export every document of a user as JSON, or as a SQLite database with --dir",
		Args:  cobra.NoArgs,
		RunE: app.withBackend(func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if dir != "" {
				path, err := app.store.ExportUserDB(ctx, uid, dir)
				if err != nil {
					return err
				}
				app.println(app.tr("cli.exported", path))
				return nil
			}
			docs, err := app.store.ExportUser(ctx, uid)
			if err != nil {
				return err
			}
			type exported struct {
				Path      string          `json:"path"`
				Data      json.RawMessage `json:"data"`
				CreatedAt time.Time       `json:"createdAt"`
				UpdatedAt time.Time       `json:"updatedAt"`
			}
			out := make([]exported, 0, len(docs))
			for _, d := range docs {
				out = append(out, exported{Path: d.Path, Data: d.Data, CreatedAt: d.CreatedAt, UpdatedAt: d.UpdatedAt})
			}
			enc := json.NewEncoder(app.out)
			enc.SetIndent("", "  ")
			if err = enc.Encode(out); err != nil {
				return errors.Wrap(err, "encode export")
			}
			return nil
		}),
	}
	userFlag(cmd, &uid)
	cmd.Flags().StringVar(&dir, "dir", "", "directory for a standalone SQLite export")
	return cmd
}
