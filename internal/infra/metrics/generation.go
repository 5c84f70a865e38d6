package metrics

import (
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(generationCallsLatencyMs) }

var generationCallsLatencyMs = prometheus.NewHistogramVec(
	prometheus.HistogramOpts{
		Name:    "generation_calls_latency_ms",
		Help:    "Content generation call latency distribution in milliseconds.",
		Buckets: []float64{50, 100, 200, 400, 800, 1600, 3000, 5000, 10000},
	},
	[]string{"provider", "model", "kind", "success"},
)

func ObserveGeneration(provider, model, kind string, latencyMs int, success bool) {
	generationCallsLatencyMs.
		WithLabelValues(norm(provider), norm(model), norm(kind), strconv.FormatBool(success)).
		Observe(float64(latencyMs))
}
