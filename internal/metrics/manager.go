// Package metrics holds the Prometheus collectors of fitweek. The CLI is short-lived, so instead of serving
// /metrics the registry is written to a node-exporter textfile when FITWEEK_METRICS_FILE is set.
package metrics

import (
	"github.com/myrjola/fitweek/internal/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

type Manager struct {
	registry *prometheus.Registry

	// counters
	CounterPlansGenerated       prometheus.Counter
	CounterWeekRollovers        prometheus.Counter
	CounterPointsAwarded        *prometheus.CounterVec
	CounterPointsRevoked        *prometheus.CounterVec
	CounterMeasurementsRecorded prometheus.Counter
	CounterDietUploads          prometheus.Counter

	// histograms
	HistCommandDuration *prometheus.HistogramVec
}

// NewTestManager returns a manager with its own registry.
func NewTestManager() *Manager {
	return NewManager("fitweek", "test")
}

func NewManager(namespace, subsystem string) *Manager {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	return &Manager{
		registry: reg,
		CounterPlansGenerated: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "week_plans_generated_total",
			Help:      "Number of weekly plans generated",
		}),
		CounterWeekRollovers: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "week_rollovers_total",
			Help:      "Number of times a user's points of the week were reset",
		}),
		CounterPointsAwarded: factory.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "points_awarded_total",
			Help:      "Points awarded by source",
		}, []string{"source"}),
		CounterPointsRevoked: factory.NewCounterVec(prometheus.CounterOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "points_revoked_total",
			Help:      "Points taken back by source",
		}, []string{"source"}),
		CounterMeasurementsRecorded: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "measurements_recorded_total",
			Help:      "Number of body measurements recorded",
		}),
		CounterDietUploads: factory.NewCounter(prometheus.CounterOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "diet_pdf_uploads_total",
			Help:      "Number of diet PDFs uploaded",
		}),
		HistCommandDuration: factory.NewHistogramVec(prometheus.HistogramOpts{ //nolint:exhaustruct // optional labels.
			Namespace: namespace,
			Subsystem: subsystem,
			Name:      "command_duration_seconds",
			Help:      "Duration of CLI commands in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		}, []string{"command", "status"}),
	}
}

// PointsChanged records a signed change of points coming from source.
func (m *Manager) PointsChanged(source string, delta int) {
	switch {
	case delta > 0:
		m.CounterPointsAwarded.WithLabelValues(source).Add(float64(delta))
	case delta < 0:
		m.CounterPointsRevoked.WithLabelValues(source).Add(float64(-delta))
	}
}

// Registry exposes the registry for tests and exporters.
func (m *Manager) Registry() *prometheus.Registry {
	return m.registry
}

// WriteTextfile writes all metrics in the text exposition format to path for the node-exporter textfile collector.
// The file is written atomically.
func (m *Manager) WriteTextfile(path string) error {
	if err := prometheus.WriteToTextfile(path, m.registry); err != nil {
		return errors.Wrap(err, "write metrics textfile")
	}
	return nil
}
