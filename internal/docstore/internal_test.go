package docstore

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestFieldHelpers(t *testing.T) {
	data := map[string]any{
		"stats": map[string]any{"totalPoints": json.Number("120"), "ratio": json.Number("2.5")},
	}

	tests := []struct {
		field string
		want  int64
	}{
		{field: "stats.totalPoints", want: 120},
		{field: "stats.ratio", want: 2},
		{field: "stats.missing", want: 0},
		{field: "nothing.here", want: 0},
	}
	for _, tt := range tests {
		got, err := Int(data, tt.field)
		if err != nil {
			t.Fatalf("Int(%q): %v", tt.field, err)
		}
		if got != tt.want {
			t.Errorf("Int(%q) = %d, want %d", tt.field, got, tt.want)
		}
	}

	SetField(data, "diet.manual.notes", "less sugar")
	want := map[string]any{"manual": map[string]any{"notes": "less sugar"}}
	if diff := cmp.Diff(want, data["diet"]); diff != "" {
		t.Errorf("SetField mismatch (-want +got):\n%s", diff)
	}
}

func TestPathHelpers(t *testing.T) {
	if got := WeekPath("u1", "2024-W05"); got != "userWeeks/u1_2024-W05" {
		t.Errorf("WeekPath = %q", got)
	}
	if got := parentOf(MeasurementPath("u1", "2024-01-31")); got != "users/u1/measurements" {
		t.Errorf("parentOf = %q", got)
	}
	if got := parentOf("root"); got != "" {
		t.Errorf("parentOf(root) = %q", got)
	}
	if got := idOf(DietPlanPath("u1")); got != "current" {
		t.Errorf("idOf = %q", got)
	}
}

func TestValidUID(t *testing.T) {
	tests := map[string]bool{
		"u1":                true,
		"0b6f3c0e-uuid":     true,
		"":                  false,
		".":                 false,
		"..":                false,
		"a/b":               false,
		"u2/measurements/x": false,
	}
	for uid, want := range tests {
		if got := ValidUID(uid); got != want {
			t.Errorf("ValidUID(%q) = %v, want %v", uid, got, want)
		}
	}
}
