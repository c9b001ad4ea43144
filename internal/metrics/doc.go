// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

/*
Package metrics provides Prometheus metrics collection and export for observability.

This package instruments the cache, the eight source adapters, the dispatcher, and
the rate limiter using the Prometheus client library.

# Metrics Endpoint

Every metric registers with the default Prometheus registry through promauto.
No HTTP route in this module serves that registry: the JSON-RPC router in
internal/transport/httpjsonrpc exposes only /rpc and /healthz.

# Available Metrics

Cache Metrics:
  - marketdata_cache_hits_total: Cache hits (counter)
    Labels: cache
  - marketdata_cache_misses_total: Cache misses (counter)
    Labels: cache
  - marketdata_cache_evictions_total: TTL-driven evictions (counter)
    Labels: cache
  - marketdata_cache_entries: Current cached entry count (gauge)
    Labels: cache

Rate Limiter Metrics:
  - marketdata_rate_limiter_tracked_callers: Distinct caller ids tracked (gauge)
  - marketdata_rate_limit_denied_total: Calls denied by the limiter (counter)
    Labels: caller

Source Adapter Metrics:
  - marketdata_adapter_request_duration_seconds: Upstream HTTP latency (histogram)
    Labels: source
  - marketdata_adapter_outcomes_total: Classified adapter responses (counter)
    Labels: source, outcome (success, no_data, rate_limited, transport_failure)
  - marketdata_circuit_breaker_state: Breaker state per source (gauge)
    Values: 0=closed, 1=half-open, 2=open
  - marketdata_circuit_breaker_transitions_total: Breaker state changes (counter)
    Labels: source, from_state, to_state
  - marketdata_circuit_breaker_requests_total: Calls through the breaker (counter)
    Labels: source, result (success, failure, rejected)

Dispatch Metrics:
  - marketdata_dispatch_duration_seconds: Tool invocation latency (histogram)
    Labels: tool
  - marketdata_dispatch_outcomes_total: Dispatcher results (counter)
    Labels: tool, outcome (success, error, rate_limited, unknown_tool, invalid_arguments, adapter_disabled)

# Usage Example

Recording an adapter fetch:

	start := time.Now()
	resp := fetchFromUpstream(ctx)
	metrics.RecordAdapterRequest("fred", string(resp.Class), time.Since(start))

Recording a dispatched tool call:

	metrics.RecordDispatch("tam_calculator", "success", elapsed)

Reporting current cache occupancy after a sweep:

	metrics.SetCacheSize("sources", int(cache.Stats().Keys))

# Prometheus Configuration

Example prometheus.yml configuration:

	scrape_configs:
	  - job_name: 'marketdata-mcp'
	    static_configs:
	      - targets: ['localhost:8080']
	    metrics_path: '/metrics'
	    scrape_interval: 15s

Example PromQL queries:

	# Cache hit rate per source
	sum(rate(marketdata_cache_hits_total[5m])) by (cache)
	  / (sum(rate(marketdata_cache_hits_total[5m])) by (cache)
	     + sum(rate(marketdata_cache_misses_total[5m])) by (cache))

	# Adapter p95 latency
	histogram_quantile(0.95, rate(marketdata_adapter_request_duration_seconds_bucket[5m]))

	# Rate-limited call fraction
	sum(rate(marketdata_dispatch_outcomes_total{outcome="rate_limited"}[5m]))
	  / sum(rate(marketdata_dispatch_outcomes_total[5m]))

# Cardinality Management

  - The "cache" label is the name passed to cache.New. The server builds one
    cache shared by all adapters, named "sources", so it has a single value.
  - The "caller" label on rate-limit metrics is the dispatcher's caller id, which
    defaults to a single "default" tenant until a transport supplies real identities.
  - Adapter outcome labels are limited to the four classification values in
    internal/sources/outcome.go.

# Thread Safety

All metric recording functions are thread-safe; the Prometheus client library
handles synchronization internally.

# See Also

  - internal/cache: cache hit/miss/eviction instrumentation points
  - internal/sources/httpclient: circuit breaker and adapter request instrumentation
  - internal/dispatch: dispatch duration and outcome instrumentation
  - https://prometheus.io/docs/practices/naming/: Metric naming conventions
*/
package metrics
