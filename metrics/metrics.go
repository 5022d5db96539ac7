// Package metrics exposes Prometheus instrumentation for form traffic and
// analytics computation.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	Submissions = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forms_submissions_total",
			Help: "Total number of accepted form submissions",
		},
	)

	Views = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "forms_views_total",
			Help: "Total number of public form renders",
		},
	)

	AnalyticsDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forms_analytics_duration_seconds",
			Help:    "Time spent aggregating submissions into an analytics report",
			Buckets: prometheus.DefBuckets,
		},
	)

	AnalyticsSubmissions = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "forms_analytics_submissions",
			Help:    "Number of submissions aggregated per analytics report",
			Buckets: prometheus.ExponentialBuckets(1, 4, 10),
		},
	)

	ReportCacheRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "forms_report_cache_requests_total",
			Help: "Analytics report cache lookups by result",
		},
		[]string{"result"}, // "hit", "miss", "error"
	)
)

// RecordAnalytics records one report computation.
func RecordAnalytics(duration time.Duration, submissions int) {
	AnalyticsDuration.Observe(duration.Seconds())
	AnalyticsSubmissions.Observe(float64(submissions))
}

func RecordCacheLookup(found bool, err error) {
	switch {
	case err != nil:
		ReportCacheRequests.WithLabelValues("error").Inc()
	case found:
		ReportCacheRequests.WithLabelValues("hit").Inc()
	default:
		ReportCacheRequests.WithLabelValues("miss").Inc()
	}
}
