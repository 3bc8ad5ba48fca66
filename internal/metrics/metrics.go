// Package metrics provides the centralized Prometheus metrics registry for the betting tracker.
package metrics

import (
	"net/http"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "betting_tracker"

// Global registry instance
var (
	registry *prometheus.Registry
	once     sync.Once
)

// Counter metrics
var (
	SummariesBuiltTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "summaries_built_total",
		Help:      "Total number of analytics summaries built by scope",
	}, []string{"scope"})
	LoginAttemptsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "login_attempts_total",
		Help:      "Total number of login attempts by result",
	}, []string{"result"})
	BetsWrittenTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "bets_written_total",
		Help:      "Total number of bet writes by operation",
	}, []string{"operation"})
	HTTPRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "http_requests_total",
		Help:      "Total number of API requests by method, route and status",
	}, []string{"method", "route", "status"})
	StatsRefreshRunsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
		Namespace: namespace,
		Name:      "stats_refresh_runs_total",
		Help:      "Total number of stats snapshot refresh runs by result",
	}, []string{"result"})
)

// Gauge metrics
var (
	StatsRefreshUsers = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stats_refresh_users",
		Help:      "Number of users refreshed by the last stats snapshot run",
	})
	StatsRefreshLastSuccess = prometheus.NewGauge(prometheus.GaugeOpts{
		Namespace: namespace,
		Name:      "stats_refresh_last_success_timestamp_seconds",
		Help:      "Unix time of the last fully successful stats refresh",
	})
)

// Histogram metrics
var (
	SummarizeDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "summarize_duration_seconds",
		Help:      "Duration of analytics summary builds in seconds",
		Buckets:   []float64{0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25},
	})
	HTTPRequestDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: namespace,
		Name:      "http_request_duration_seconds",
		Help:      "Duration of API requests in seconds",
		Buckets:   prometheus.DefBuckets,
	}, []string{"method", "route"})
)

// InitRegistry initializes the global Prometheus registry.
func InitRegistry() *prometheus.Registry {
	once.Do(func() {
		registry = prometheus.NewRegistry()

		registry.MustRegister(SummariesBuiltTotal)
		registry.MustRegister(LoginAttemptsTotal)
		registry.MustRegister(BetsWrittenTotal)
		registry.MustRegister(HTTPRequestsTotal)
		registry.MustRegister(StatsRefreshRunsTotal)

		registry.MustRegister(StatsRefreshUsers)
		registry.MustRegister(StatsRefreshLastSuccess)

		registry.MustRegister(SummarizeDuration)
		registry.MustRegister(HTTPRequestDuration)

		registry.MustRegister(NarrativeRequestsTotal)
		registry.MustRegister(NarrativeLatency)
		registry.MustRegister(NarrativeStreamsActive)
	})
	return registry
}

// GetRegistry returns the global Prometheus registry.
func GetRegistry() *prometheus.Registry {
	return InitRegistry()
}

// Handler returns the Prometheus HTTP handler.
func Handler() http.Handler {
	return promhttp.HandlerFor(GetRegistry(), promhttp.HandlerOpts{})
}

// RecordSummary records a summary build.
func RecordSummary(scope string, durationSeconds float64) {
	SummariesBuiltTotal.WithLabelValues(scope).Inc()
	SummarizeDuration.Observe(durationSeconds)
}

// RecordLoginAttempt records a login attempt result.
func RecordLoginAttempt(result string) {
	LoginAttemptsTotal.WithLabelValues(result).Inc()
}

// RecordBetWrite records a create, update or delete of bets.
func RecordBetWrite(operation string) {
	BetsWrittenTotal.WithLabelValues(operation).Inc()
}

// RecordHTTPRequest records one served API request.
func RecordHTTPRequest(method, route, status string, durationSeconds float64) {
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(durationSeconds)
}

// RecordStatsRefresh records a stats snapshot run.
func RecordStatsRefresh(refreshed, failed int, finishedUnix float64) {
	StatsRefreshUsers.Set(float64(refreshed))
	if failed > 0 {
		StatsRefreshRunsTotal.WithLabelValues("partial").Inc()
		return
	}
	StatsRefreshRunsTotal.WithLabelValues("success").Inc()
	StatsRefreshLastSuccess.Set(finishedUnix)
}

// RecordStatsRefreshFailure records a run that could not list users.
func RecordStatsRefreshFailure() {
	StatsRefreshRunsTotal.WithLabelValues("failure").Inc()
}
