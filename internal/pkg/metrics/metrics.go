package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
)

var (
	// SnapshotRequests counts balance snapshot requests by outcome.
	SnapshotRequests = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_snapshot_requests_total",
			Help: "Balance snapshot requests, labeled by outcome.",
		},
		[]string{"outcome"},
	)

	// CacheLookups counts cache hits and misses per cache kind.
	CacheLookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_cache_lookups_total",
			Help: "Cache lookups, labeled by kind and result.",
		},
		[]string{"kind", "result"},
	)

	// UpstreamFailures counts recovered upstream failures (price quote,
	// explorer history, token metadata) that degraded to fallbacks.
	UpstreamFailures = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_upstream_failures_total",
			Help: "Upstream failures recovered with fallback values, labeled by upstream.",
		},
		[]string{"upstream"},
	)

	// Submissions counts deposit/withdraw attempts by operation and outcome.
	Submissions = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "portfolio_submissions_total",
			Help: "Token transfer submissions, labeled by operation and outcome.",
		},
		[]string{"operation", "outcome"},
	)
)

// MustRegisterMetrics registers all collectors with the default registry.
// Call once at startup.
func MustRegisterMetrics() {
	prometheus.MustRegister(SnapshotRequests, CacheLookups, UpstreamFailures, Submissions)
}

// ObserveCache records a cache lookup result.
func ObserveCache(kind string, hit bool) {
	result := "miss"
	if hit {
		result = "hit"
	}
	CacheLookups.WithLabelValues(kind, result).Inc()
}
