// Package metrics exposes Prometheus instrumentation for the expansion
// engine. Collectors are registered on the default registry and served
// by the HTTP service's /metrics endpoint.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// ExpansionsTotal counts enum expansions by outcome (ok, error).
	ExpansionsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vskit",
		Subsystem: "expand",
		Name:      "expansions_total",
		Help:      "Enum expansions by outcome.",
	}, []string{"outcome"})

	// BackendQueriesTotal counts traversal queries by backend key and outcome.
	BackendQueriesTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "vskit",
		Subsystem: "backend",
		Name:      "queries_total",
		Help:      "Backend traversal queries by backend key and outcome.",
	}, []string{"backend", "outcome"})

	// QueryDuration observes traversal query latency per backend key.
	QueryDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Namespace: "vskit",
		Subsystem: "backend",
		Name:      "query_duration_seconds",
		Help:      "Backend traversal query latency.",
		Buckets:   prometheus.DefBuckets,
	}, []string{"backend"})
)

// ObserveBackendQuery records one traversal query.
func ObserveBackendQuery(backendKey string, elapsed time.Duration, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	BackendQueriesTotal.WithLabelValues(backendKey, outcome).Inc()
	QueryDuration.WithLabelValues(backendKey).Observe(elapsed.Seconds())
}

// ObserveExpansion records one enum expansion.
func ObserveExpansion(err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	ExpansionsTotal.WithLabelValues(outcome).Inc()
}
