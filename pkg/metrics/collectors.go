package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	// Registry holds the application-specific Prometheus collectors.
	Registry = prometheus.NewRegistry()

	httpInFlight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: "vita",
			Subsystem: "http",
			Name:      "inflight_requests",
			Help:      "Current number of in-flight HTTP requests.",
		},
	)

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vita",
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		},
		[]string{"method", "route", "status"},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "vita",
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "Duration of HTTP requests.",
			Buckets:   prometheus.ExponentialBuckets(0.005, 2, 12),
		},
		[]string{"method", "route"},
	)

	classifications = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vita",
			Subsystem: "onboarding",
			Name:      "classifications_total",
			Help:      "Assessments classified, by lifestyle balance.",
		},
		[]string{"balance"},
	)

	coachTurns = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vita",
			Subsystem: "coach",
			Name:      "turns_total",
			Help:      "Coaching turns by outcome (completed, aborted, failed).",
		},
		[]string{"outcome"},
	)

	foodLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vita",
			Subsystem: "food",
			Name:      "lookups_total",
			Help:      "Food lookups by outcome (ok, empty, degraded).",
		},
		[]string{"outcome"},
	)

	persistenceFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "vita",
			Subsystem: "store",
			Name:      "write_failures_total",
			Help:      "Failed store writes by operation.",
		},
		[]string{"op"},
	)
)

func init() {
	Registry.MustRegister(
		httpInFlight,
		httpRequests,
		httpDuration,
		classifications,
		coachTurns,
		foodLookups,
		persistenceFailures,
		prometheus.NewProcessCollector(prometheus.ProcessCollectorOpts{}),
		prometheus.NewGoCollector(),
	)
}

// Handler returns an HTTP handler exposing the registered Prometheus metrics.
func Handler() http.Handler {
	return promhttp.HandlerFor(Registry, promhttp.HandlerOpts{})
}

// ObserveHTTP records one finished request. route is the matched route template.
func ObserveHTTP(method, route, status string, seconds float64) {
	httpRequests.WithLabelValues(method, route, status).Inc()
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// TrackInFlight increments the in-flight gauge and returns the matching decrement.
func TrackInFlight() func() {
	httpInFlight.Inc()
	return httpInFlight.Dec
}

// RecordClassification counts a stored classification.
func RecordClassification(balance string) {
	classifications.WithLabelValues(balance).Inc()
}

// RecordCoachTurn counts a coaching turn outcome.
func RecordCoachTurn(outcome string) {
	coachTurns.WithLabelValues(outcome).Inc()
}

// RecordFoodLookup counts a food lookup outcome.
func RecordFoodLookup(outcome string) {
	foodLookups.WithLabelValues(outcome).Inc()
}

// RecordPersistenceFailure counts a failed store write.
func RecordPersistenceFailure(op string) {
	persistenceFailures.WithLabelValues(op).Inc()
}
