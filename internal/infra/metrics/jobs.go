package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(resolutionJobsTotal, itemResolutionsTotal, itemResolutionSeconds) }

var resolutionJobsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolution_jobs_total",
		Help: "Finished resolution jobs, labeled by terminal status.",
	},
	[]string{"status"}, // 'completed', 'failed'
)

var itemResolutionsTotal = prometheus.NewCounterVec(
	prometheus.CounterOpts{
		Name: "resolution_items_total",
		Help: "Per-item resolution outcomes by issue category.",
	},
	[]string{"category", "outcome"}, // outcome: 'success', 'failed', 'skipped'
)

var itemResolutionSeconds = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "resolution_item_seconds",
		Help:    "Wall time spent resolving one item.",
		Buckets: []float64{0.05, 0.1, 0.25, 0.5, 1, 2, 5, 10, 30},
	},
	[]string{"category"},
)

func IncResolutionJob(status string) {
	resolutionJobsTotal.WithLabelValues(norm(status)).Inc()
}

func ObserveItemResolution(category, outcome string, d time.Duration) {
	itemResolutionsTotal.WithLabelValues(norm(category), norm(outcome)).Inc()
	itemResolutionSeconds.WithLabelValues(norm(category)).Observe(d.Seconds())
}
