// Package metrics defines narrative-specific metrics.
package metrics

import "github.com/prometheus/client_golang/prometheus"

var (
	NarrativeRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "narrative_requests_total",
		Help:      "Total number of language-model requests by status",
	}, []string{"status"})

	NarrativeLatency = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "narrative_latency_seconds",
		Help:      "Latency of language-model requests in seconds",
		Buckets:   []float64{0.25, 0.5, 1, 2, 4, 8, 15, 30, 60},
	})

	NarrativeStreamsActive = prometheus.NewGaugeVec(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "narrative_streams_active",
		Help:      "Number of analysis responses currently streaming by transport",
	}, []string{"transport"})
)

// RecordNarrativeRequest records a language-model call and its latency.
func RecordNarrativeRequest(status string, latencySeconds float64) {
	NarrativeRequestsTotal.WithLabelValues(status).Inc()
	NarrativeLatency.Observe(latencySeconds)
}

// StreamStarted marks an analysis stream as open and returns the func that
// closes it.
func StreamStarted(transport string) func() {
	g := NarrativeStreamsActive.WithLabelValues(transport)
	g.Inc()
	return g.Dec
}
