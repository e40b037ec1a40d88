package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	once sync.Once

	httpRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetwash",
			Name:      "http_requests_total",
			Help:      "HTTP requests by method and route.",
		},
		[]string{"method", "route", "status"},
	)

	transitions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "fleetwash",
			Name:      "wash_request_transitions_total",
			Help:      "Wash request status transitions by target status and outcome.",
		},
		[]string{"to", "outcome"},
	)

	rollbacks = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetwash",
			Name:      "optimistic_rollbacks_total",
			Help:      "Optimistic updates rolled back after a remote failure.",
		},
	)

	reconciles = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "fleetwash",
			Name:      "reconcile_refreshes_total",
			Help:      "Reconciliation refreshes run after mutations.",
		},
	)

	httpDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "fleetwash",
			Name:      "http_request_duration_seconds",
			Help:      "HTTP request latency by method and route.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// Register registers Prometheus metrics. Safe to call multiple times.
func Register() {
	once.Do(func() {
		prometheus.MustRegister(httpRequests, transitions, rollbacks, reconciles, httpDuration)
	})
}

// IncHTTP increments the request counter for a route.
func IncHTTP(method, route, status string) {
	httpRequests.WithLabelValues(method, route, status).Inc()
}

// ObserveHTTPDuration records request latency for a route.
func ObserveHTTPDuration(method, route string, seconds float64) {
	httpDuration.WithLabelValues(method, route).Observe(seconds)
}

// IncTransition records a status transition attempt.
func IncTransition(to, outcome string) {
	transitions.WithLabelValues(to, outcome).Inc()
}

// IncRollback records an optimistic rollback.
func IncRollback() {
	rollbacks.Inc()
}

// IncReconcile records a reconciliation refresh.
func IncReconcile() {
	reconciles.Inc()
}
