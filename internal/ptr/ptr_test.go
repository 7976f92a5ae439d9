package ptr_test

import (
	"math"
	"testing"

	"github.com/myrjola/fitweek/internal/ptr"
)

func TestRef(t *testing.T) {
	goal := "hypertrophy"
	p := ptr.Ref(goal)
	if p == nil || *p != goal {
		t.Fatalf("Ref(%q) = %v", goal, p)
	}
	goal = "conditioning"
	if *p == goal {
		t.Error("pointer must not alias the original variable")
	}
}

func TestDeref(t *testing.T) {
	if got := ptr.Deref[int](nil); got != 0 {
		t.Errorf("Deref(nil) = %d, want 0", got)
	}
	if got := ptr.Deref(ptr.Ref(4)); got != 4 {
		t.Errorf("Deref(&4) = %d, want 4", got)
	}
}

func TestPositive(t *testing.T) {
	tests := []struct {
		in      float64
		wantNil bool
	}{
		{in: 82.5, wantNil: false},
		{in: 0, wantNil: true},
		{in: -3, wantNil: true},
		{in: math.NaN(), wantNil: true},
		{in: math.Inf(1), wantNil: true},
		{in: math.Inf(-1), wantNil: true},
	}
	for _, tt := range tests {
		got := ptr.Positive(tt.in)
		if (got == nil) != tt.wantNil {
			t.Errorf("Positive(%v) = %v, want nil %v", tt.in, got, tt.wantNil)
		}
		if got != nil && *got != tt.in {
			t.Errorf("Positive(%v) = %v", tt.in, *got)
		}
	}
}
