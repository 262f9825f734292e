package metrics

import "github.com/prometheus/client_golang/prometheus"

// Geo locator outcome labels.
const (
	GeoDirect    = "direct"
	GeoExpanded  = "expanded"
	GeoAbandoned = "abandoned"
	GeoDegraded  = "degraded"
	GeoSkipped   = "skipped"
)

// Analytics dispatch outcome labels.
const (
	AnalyticsSent    = "sent"
	AnalyticsFailed  = "failed"
	AnalyticsDropped = "dropped"
)

// Search pipeline Prometheus metrics.
var (
	GeoOutcomesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "geo_outcomes_total",
			Help:      "Geo locator outcomes",
		},
		[]string{"outcome"},
	)

	SearchDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_duration_seconds",
			Help:      "Search pipeline duration in seconds",
			Buckets:   []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2},
		},
		[]string{"operation", "status"},
	)

	CandidateCount = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_candidates",
			Help:      "Candidates remaining after geo filtering",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	AnalyticsEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "analytics_events_total",
			Help:      "Search analytics events by outcome",
		},
		[]string{"sink", "outcome"},
	)
)

var searchMetricsRegistered bool

// RegisterSearchMetrics registers search pipeline metrics. Must be called once from main.
func RegisterSearchMetrics() {
	if searchMetricsRegistered {
		return
	}
	prometheus.MustRegister(GeoOutcomesTotal, SearchDuration, CandidateCount, AnalyticsEventsTotal)
	searchMetricsRegistered = true
}
