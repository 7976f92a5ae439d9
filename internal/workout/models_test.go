package workout_test

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/myrjola/fitweek/internal/workout"
)

func TestParseGoal(t *testing.T) {
	tests := map[string]workout.Goal{
		"weight-loss":     workout.GoalWeightLoss,
		"hypertrophy":     workout.GoalHypertrophy,
		"conditioning":    workout.GoalConditioning,
		"emagrecimento":   workout.GoalWeightLoss,
		"hipertrofia":     workout.GoalHypertrophy,
		"condicionamento": workout.GoalConditioning,
	}
	for in, want := range tests {
		got, err := workout.ParseGoal(in)
		if err != nil || got != want {
			t.Errorf("ParseGoal(%q) = %q, %v, want %q", in, got, err, want)
		}
	}
	if _, err := workout.ParseGoal("bulking"); !errors.Is(err, workout.ErrInvalidInput) {
		t.Errorf("ParseGoal(bulking) error = %v, want ErrInvalidInput", err)
	}
}

func TestWeekPlan_DecodesLegacyDocument(t *testing.T) {
	stored := `{
		"uid": "u1",
		"weekId": "2024-W11",
		"points": 15,
		"workouts": {"days": [{"date": "2024-03-11", "completed": true, "items": [
			{"name": "Prancha frontal", "done": true, "media": {"type": "gif", "url": "/gifs/plank.gif"}},
			{"name": "Polichinelo", "done": true, "media": {"type": "youtube", "url": "https://www.youtube.com/embed/c4DAnQ6DtF8"}}
		]}]},
		"diet": {"days": [{"date": "2024-03-11", "completed": true}]}
	}`
	var plan workout.WeekPlan
	if err := json.Unmarshal([]byte(stored), &plan); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	got := []workout.MediaType{plan.Workouts.Days[0].Items[0].Media.Type, plan.Workouts.Days[0].Items[1].Media.Type}
	if diff := cmp.Diff([]workout.MediaType{workout.MediaImageLoop, workout.MediaVideoEmbed}, got); diff != "" {
		t.Errorf("media types mismatch (-want +got):\n%s", diff)
	}
	if plan.CompletedWorkouts() != 1 || plan.CompletedDietDays() != 1 || plan.ScheduledWorkouts() != 1 {
		t.Errorf("counts = %d/%d/%d, want 1/1/1",
			plan.CompletedWorkouts(), plan.CompletedDietDays(), plan.ScheduledWorkouts())
	}
}

func TestMediaFromLink(t *testing.T) {
	tests := []struct {
		link string
		want *workout.Media
	}{
		{link: "", want: nil},
		{link: "   ", want: nil},
		{
			link: "https://www.youtube.com/watch?v=abc123&t=10",
			want: &workout.Media{Type: workout.MediaVideoEmbed, URL: "https://www.youtube.com/embed/abc123"},
		},
		{
			link: "https://youtu.be/xyz789",
			want: &workout.Media{Type: workout.MediaVideoEmbed, URL: "https://www.youtube.com/embed/xyz789"},
		},
		{
			link: "https://www.youtube.com/shorts/short1",
			want: &workout.Media{Type: workout.MediaVideoEmbed, URL: "https://www.youtube.com/embed/short1"},
		},
		{
			link: "youtube.com/watch?v=noscheme",
			want: &workout.Media{Type: workout.MediaVideoEmbed, URL: "https://www.youtube.com/embed/noscheme"},
		},
		{
			link: " https://example.com/squat.gif ",
			want: &workout.Media{Type: workout.MediaImageLoop, URL: "https://example.com/squat.gif"},
		},
		{
			link: "https://example.com/how-to-squat",
			want: &workout.Media{Type: workout.MediaImageLoop, URL: "https://example.com/how-to-squat"},
		},
	}
	for _, tt := range tests {
		if diff := cmp.Diff(tt.want, workout.MediaFromLink(tt.link)); diff != "" {
			t.Errorf("MediaFromLink(%q) mismatch (-want +got):\n%s", tt.link, diff)
		}
	}
}
