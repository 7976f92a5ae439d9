package metrics_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/myrjola/fitweek/internal/metrics"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestManager_PointsChanged(t *testing.T) {
	m := metrics.NewTestManager()

	m.PointsChanged("workout", 10)
	m.PointsChanged("diet", 5)
	m.PointsChanged("diet", -5)
	m.PointsChanged("diet", 0)

	if got := testutil.ToFloat64(m.CounterPointsAwarded.WithLabelValues("workout")); got != 10 {
		t.Errorf("workout points awarded = %v, want 10", got)
	}
	if got := testutil.ToFloat64(m.CounterPointsAwarded.WithLabelValues("diet")); got != 5 {
		t.Errorf("diet points awarded = %v, want 5", got)
	}
	if got := testutil.ToFloat64(m.CounterPointsRevoked.WithLabelValues("diet")); got != 5 {
		t.Errorf("diet points revoked = %v, want 5", got)
	}
}

func TestManager_WriteTextfile(t *testing.T) {
	m := metrics.NewTestManager()
	m.CounterPlansGenerated.Inc()
	m.CounterMeasurementsRecorded.Add(2)

	path := filepath.Join(t.TempDir(), "fitweek.prom")
	if err := m.WriteTextfile(path); err != nil {
		t.Fatalf("WriteTextfile: %v", err)
	}
	content, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read textfile: %v", err)
	}
	for _, want := range []string{
		"fitweek_test_week_plans_generated_total 1",
		"fitweek_test_measurements_recorded_total 2",
	} {
		if !strings.Contains(string(content), want) {
			t.Errorf("textfile misses %q:\n%s", want, content)
		}
	}
}
