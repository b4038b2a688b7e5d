package observability

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce         sync.Once
	apiRequestsTotal     *prometheus.CounterVec
	apiLatencySeconds    *prometheus.HistogramVec
	apiErrorsTotal       *prometheus.CounterVec
	resultsComputedTotal *prometheus.CounterVec
	publicationsTotal    *prometheus.CounterVec
	analyticsCacheTotal  *prometheus.CounterVec
	eventsPublishedTotal *prometheus.CounterVec
)

// RegisterMetrics initialises the Prometheus collectors used by the results API.
func RegisterMetrics() {
	registerOnce.Do(func() {
		apiRequestsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_api_requests_total",
			Help: "Total number of API requests served.",
		}, []string{"method", "route", "status"})

		apiLatencySeconds = prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "results_api_latency_seconds",
			Help:    "Latency distribution for API requests.",
			Buckets: []float64{0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1.0, 2.0},
		}, []string{"method", "route"})

		apiErrorsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_api_errors_total",
			Help: "Total number of error responses returned by the API.",
		}, []string{"method", "route", "status"})

		resultsComputedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_computed_total",
			Help: "Draft results recomputed from mark submissions, by letter grade.",
		}, []string{"letter"})

		publicationsTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_publication_changes_total",
			Help: "Publication toggles applied to results.",
		}, []string{"action"})

		analyticsCacheTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_analytics_cache_total",
			Help: "Cohort analytics cache lookups by outcome.",
		}, []string{"outcome"})

		eventsPublishedTotal = prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "results_events_published_total",
			Help: "Result lifecycle events handed to the brokers.",
		}, []string{"type", "status"})

		prometheus.MustRegister(
			apiRequestsTotal,
			apiLatencySeconds,
			apiErrorsTotal,
			resultsComputedTotal,
			publicationsTotal,
			analyticsCacheTotal,
			eventsPublishedTotal,
		)
	})
}

// APIRequests exposes the request counter.
func APIRequests() *prometheus.CounterVec {
	RegisterMetrics()
	return apiRequestsTotal
}

// APILatency exposes the request latency histogram.
func APILatency() *prometheus.HistogramVec {
	RegisterMetrics()
	return apiLatencySeconds
}

// APIErrors exposes the counter for error responses.
func APIErrors() *prometheus.CounterVec {
	RegisterMetrics()
	return apiErrorsTotal
}

// ResultsComputed counts recomputed drafts.
func ResultsComputed() *prometheus.CounterVec {
	RegisterMetrics()
	return resultsComputedTotal
}

// PublicationChanges counts publish and unpublish operations.
func PublicationChanges() *prometheus.CounterVec {
	RegisterMetrics()
	return publicationsTotal
}

// AnalyticsCache counts cache hits and misses.
func AnalyticsCache() *prometheus.CounterVec {
	RegisterMetrics()
	return analyticsCacheTotal
}

// EventsPublished counts broker publish attempts.
func EventsPublished() *prometheus.CounterVec {
	RegisterMetrics()
	return eventsPublishedTotal
}
