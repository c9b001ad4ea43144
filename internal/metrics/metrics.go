// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package metrics exposes Prometheus instrumentation for the cache,
// source adapters, dispatcher, and rate limiter.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// CacheHits counts cache hits by cache name (e.g. "alphavantage", "fred").
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	// CacheMisses counts cache misses by cache name.
	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	// CacheEvictions counts TTL-driven evictions by cache name.
	CacheEvictions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_cache_evictions_total",
			Help: "Total number of cache evictions",
		},
		[]string{"cache"},
	)

	// CacheSize reports the current key count by cache name.
	CacheSize = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketdata_cache_entries",
			Help: "Current number of cached entries",
		},
		[]string{"cache"},
	)

	// RateLimiterTrackedCallers reports how many distinct caller ids the
	// sliding-window limiter currently holds windows for.
	RateLimiterTrackedCallers = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "marketdata_rate_limiter_tracked_callers",
			Help: "Current number of distinct caller ids tracked by the rate limiter",
		},
	)

	// AdapterRequestDuration tracks upstream HTTP call latency per source.
	AdapterRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketdata_adapter_request_duration_seconds",
			Help:    "Duration of upstream source adapter HTTP requests",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"source"},
	)

	// AdapterOutcomes counts classified adapter responses per source.
	AdapterOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_adapter_outcomes_total",
			Help: "Total number of adapter responses by classification",
		},
		[]string{"source", "outcome"}, // outcome: success, no_data, rate_limited, transport_failure
	)

	// CircuitBreakerState reports the current breaker state per source (0=closed, 1=half-open, 2=open).
	CircuitBreakerState = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "marketdata_circuit_breaker_state",
			Help: "Circuit breaker state per source adapter",
		},
		[]string{"source"},
	)

	// CircuitBreakerTransitions counts breaker state changes per source.
	CircuitBreakerTransitions = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_circuit_breaker_transitions_total",
			Help: "Total number of circuit breaker state transitions",
		},
		[]string{"source", "from_state", "to_state"},
	)

	// CircuitBreakerRequests counts calls through the breaker by result:
	// success, failure, or rejected (circuit open / half-open saturated).
	CircuitBreakerRequests = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_circuit_breaker_requests_total",
			Help: "Total number of requests through the circuit breaker by result",
		},
		[]string{"source", "result"},
	)

	// DispatchDuration tracks end-to-end tool invocation latency.
	DispatchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "marketdata_dispatch_duration_seconds",
			Help:    "Duration of dispatched tool invocations",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"tool"},
	)

	// DispatchOutcomes counts dispatcher results per tool.
	DispatchOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_dispatch_outcomes_total",
			Help: "Total number of dispatched tool invocations by outcome",
		},
		[]string{"tool", "outcome"}, // outcome: success, error, rate_limited, unknown_tool, invalid_arguments, adapter_disabled
	)

	// RateLimitDenied counts requests rejected by the dispatcher's rate limiter.
	RateLimitDenied = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "marketdata_rate_limit_denied_total",
			Help: "Total number of calls denied by the rate limiter",
		},
		[]string{"caller"},
	)
)

// RecordCacheHit increments the hit counter for a cache.
func RecordCacheHit(cache string) {
	CacheHits.WithLabelValues(cache).Inc()
}

// RecordCacheMiss increments the miss counter for a cache.
func RecordCacheMiss(cache string) {
	CacheMisses.WithLabelValues(cache).Inc()
}

// RecordCacheEviction increments the eviction counter for a cache.
func RecordCacheEviction(cache string) {
	CacheEvictions.WithLabelValues(cache).Inc()
}

// SetCacheSize updates the current entry count gauge for a cache.
func SetCacheSize(cache string, size int) {
	CacheSize.WithLabelValues(cache).Set(float64(size))
}

// RecordAdapterRequest records the latency and classification of one upstream call.
func RecordAdapterRequest(source, outcome string, duration time.Duration) {
	AdapterRequestDuration.WithLabelValues(source).Observe(duration.Seconds())
	AdapterOutcomes.WithLabelValues(source, outcome).Inc()
}

// RecordDispatch records the latency and outcome of one dispatched tool call.
func RecordDispatch(tool, outcome string, duration time.Duration) {
	DispatchDuration.WithLabelValues(tool).Observe(duration.Seconds())
	DispatchOutcomes.WithLabelValues(tool, outcome).Inc()
}

// RecordRateLimitDenied records a call rejected by the rate limiter.
func RecordRateLimitDenied(caller string) {
	RateLimitDenied.WithLabelValues(caller).Inc()
}

// SetRateLimiterTrackedCallers reports the limiter's current caller count.
func SetRateLimiterTrackedCallers(n int) {
	RateLimiterTrackedCallers.Set(float64(n))
}
