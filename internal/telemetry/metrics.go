package telemetry

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	// RatingVerifications counts verifications by outcome (valid, discrepancy, error)
	RatingVerifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biowatch",
			Name:      "rating_verifications_total",
			Help:      "Total number of AI rating verifications",
		},
		[]string{"outcome"},
	)

	// RatingDifference observes |stored - recalculated| for every computed verification
	RatingDifference = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "biowatch",
			Name:      "rating_difference",
			Help:      "Absolute difference between stored and recalculated AI ratings",
			Buckets:   []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10},
		},
	)

	// ConfigurationUpdates counts configuration writes (accepted, rejected, reset)
	ConfigurationUpdates = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biowatch",
			Name:      "configuration_updates_total",
			Help:      "Total number of scoring configuration writes",
		},
		[]string{"result"},
	)

	// ActivityRecords counts audit entries written (ok, error)
	ActivityRecords = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "biowatch",
			Name:      "activity_records_total",
			Help:      "Total number of activity entries recorded",
		},
		[]string{"result"},
	)

	// Ensure metrics are only registered once
	once sync.Once
)

// InitMetrics registers all metrics with the global Prometheus registry
// This function is idempotent and can be called multiple times safely
func InitMetrics() {
	once.Do(func() {
		// Ignore AlreadyRegistered so tests and the CLI can share the registry
		prometheus.DefaultRegisterer.Register(RatingVerifications)
		prometheus.DefaultRegisterer.Register(RatingDifference)
		prometheus.DefaultRegisterer.Register(ConfigurationUpdates)
		prometheus.DefaultRegisterer.Register(ActivityRecords)
	})
}
