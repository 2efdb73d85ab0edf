package services

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds all custom Prometheus metrics for the application.
// HTTP-level metrics come from the fiberprometheus middleware; these cover
// domain events.
type Metrics struct {
	// Engagement events by type and outcome.
	// outcome: "recorded", "duplicate", "throttled", "removed", "noop"
	EngagementEvents *prometheus.CounterVec

	// Feed queries by sort mode and pagination style
	FeedQueries *prometheus.CounterVec

	// Counter drift repairs applied by the reconciliation job
	CounterRepairs *prometheus.CounterVec
}

var globalMetrics *Metrics

// InitMetrics initializes the Prometheus metrics
func InitMetrics() *Metrics {
	if globalMetrics != nil {
		return globalMetrics
	}

	globalMetrics = &Metrics{
		EngagementEvents: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brainscroll_engagement_events_total",
			Help: "Total engagement operations by type and outcome",
		}, []string{"type", "outcome"}),

		FeedQueries: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brainscroll_feed_queries_total",
			Help: "Total feed listings by sort mode and pagination style",
		}, []string{"sort", "mode"}),

		CounterRepairs: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "brainscroll_counter_repairs_total",
			Help: "Denormalized counter corrections applied by reconciliation",
		}, []string{"counter"}),
	}

	return globalMetrics
}

// GetMetrics returns the metrics instance, or nil when metrics are disabled
// (unit tests construct services without InitMetrics).
func GetMetrics() *Metrics {
	return globalMetrics
}

func countEngagement(eventType, outcome string) {
	if globalMetrics != nil {
		globalMetrics.EngagementEvents.WithLabelValues(eventType, outcome).Inc()
	}
}

func countFeedQuery(sort, mode string) {
	if globalMetrics != nil {
		globalMetrics.FeedQueries.WithLabelValues(sort, mode).Inc()
	}
}
