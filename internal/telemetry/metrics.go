package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// ScoreRuns counts completed Score calls per engine
	ScoreRuns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "score_runs_total",
			Help:      "Total number of completed scoring runs",
		},
		[]string{"engine"},
	)

	// ScoreErrors counts scoring failures per engine and reason
	ScoreErrors = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "score_errors_total",
			Help:      "Total number of failed scoring runs",
		},
		[]string{"engine", "reason"},
	)

	// ScoreDuration observes the wall time of Score calls per engine
	ScoreDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "riskmap",
			Name:      "score_duration_seconds",
			Help:      "Duration of scoring runs",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"engine"},
	)

	// CompositeRuns counts composite aggregations by the manager
	CompositeRuns = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "composite_runs_total",
			Help:      "Total number of composite scoring runs",
		},
	)

	// BaselineWrites counts baseline create/update operations
	BaselineWrites = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "riskmap",
			Name:      "baseline_writes_total",
			Help:      "Total number of baseline create/update operations",
		},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry.
// This function is idempotent and can be called multiple times safely.
func InitMetrics() {
	once.Do(func() {
		// Register metrics, ignoring errors if already registered
		prometheus.DefaultRegisterer.Register(ScoreRuns)
		prometheus.DefaultRegisterer.Register(ScoreErrors)
		prometheus.DefaultRegisterer.Register(ScoreDuration)
		prometheus.DefaultRegisterer.Register(CompositeRuns)
		prometheus.DefaultRegisterer.Register(BaselineWrites)
	})
}
