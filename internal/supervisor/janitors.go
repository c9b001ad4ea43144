// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package supervisor

import (
	"context"
	"time"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/metrics"
	"github.com/tomtom215/marketdata-mcp/internal/ratelimit"
)

// CacheJanitor periodically sweeps a cache for expired entries. Built
// with cache.WithoutAutoSweep, the cache does not run its own goroutine
// for this — the supervision tree owns the lifecycle instead, so a
// panic inside the sweep loop restarts the janitor rather than silently
// leaking the cache's memory until the process is restarted by hand.
type CacheJanitor struct {
	Cache    *cache.Cache
	Interval time.Duration
}

// Serve runs the sweep loop until ctx is canceled.
func (j *CacheJanitor) Serve(ctx context.Context) error {
	interval := j.Interval
	if interval <= 0 {
		interval = cache.DefaultSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			j.Cache.Sweep()
		}
	}
}

// RateLimiterJanitor periodically publishes the limiter's tracked-caller
// count to metrics, so an operator can see whether the eviction-on-insert
// bound (Limiter's maxKeys) is actually engaging under real traffic.
type RateLimiterJanitor struct {
	Limiter  *ratelimit.Limiter
	Interval time.Duration
}

// Serve runs the observation loop until ctx is canceled.
func (j *RateLimiterJanitor) Serve(ctx context.Context) error {
	interval := j.Interval
	if interval <= 0 {
		interval = time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			metrics.SetRateLimiterTrackedCallers(j.Limiter.Len())
		}
	}
}
