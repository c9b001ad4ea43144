// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSetRoundTrip(t *testing.T) {
	c := New("test")
	defer c.Close()

	c.Set("k", "v", time.Minute)
	v, ok := c.Get("k")
	require.True(t, ok)
	assert.Equal(t, "v", v)
}

func TestGetExpiredEntryIsAbsent(t *testing.T) {
	c := New("test")
	defer c.Close()

	c.Set("k", "v", time.Millisecond)
	time.Sleep(5 * time.Millisecond)

	_, ok := c.Get("k")
	assert.False(t, ok)
}

func TestNullSentinelDistinctFromAbsent(t *testing.T) {
	c := New("test")
	defer c.Close()

	_, ok := c.Get("missing")
	assert.False(t, ok)

	c.Set("asked", NullSentinel{}, time.Minute)
	v, ok := c.Get("asked")
	require.True(t, ok)
	assert.True(t, IsNull(v))
}

func TestDeleteReportsWhetherALiveEntryWasRemoved(t *testing.T) {
	c := New("test")
	defer c.Close()

	assert.False(t, c.Delete("missing"))

	c.Set("k", "v", time.Minute)
	assert.True(t, c.Delete("k"))
	assert.False(t, c.Delete("k"))
}

func TestKeysMatchingGlob(t *testing.T) {
	c := New("test")
	defer c.Close()

	c.Set("alphavantage:OVERVIEW:AAPL", 1, time.Minute)
	c.Set("alphavantage:OVERVIEW:MSFT", 1, time.Minute)
	c.Set("fred:series:GDPC1", 1, time.Minute)

	matched := c.KeysMatching("alphavantage:OVERVIEW:*")
	assert.Len(t, matched, 2)
}

func TestGetOrComputeCoalescesConcurrentMisses(t *testing.T) {
	c := New("test")
	defer c.Close()

	var calls int64
	const callers = 50
	var wg sync.WaitGroup
	results := make([]interface{}, callers)

	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			v, err := c.GetOrCompute(context.Background(), "shared-key", func() (interface{}, time.Duration, error) {
				atomic.AddInt64(&calls, 1)
				time.Sleep(10 * time.Millisecond)
				return "computed", time.Minute, nil
			})
			require.NoError(t, err)
			results[idx] = v
		}(i)
	}
	wg.Wait()

	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))
	for _, v := range results {
		assert.Equal(t, "computed", v)
	}
}

func TestGetOrComputeDoesNotCacheOnError(t *testing.T) {
	c := New("test")
	defer c.Close()

	_, err := c.GetOrCompute(context.Background(), "k", func() (interface{}, time.Duration, error) {
		return nil, time.Minute, assert.AnError
	})
	require.Error(t, err)
	assert.False(t, c.Has("k"))
}

func TestCapacityEvictsOldestFirst(t *testing.T) {
	c := New("test", WithCapacity(2))
	defer c.Close()

	c.Set("a", 1, time.Minute)
	time.Sleep(time.Millisecond)
	c.Set("b", 2, time.Minute)
	time.Sleep(time.Millisecond)
	c.Set("c", 3, time.Minute)

	_, ok := c.Get("a")
	assert.False(t, ok, "oldest entry should have been evicted")
	_, ok = c.Get("c")
	assert.True(t, ok)
}

func TestStatsTracksHitsAndMisses(t *testing.T) {
	c := New("test")
	defer c.Close()

	c.Set("k", "v", time.Minute)
	_, _ = c.Get("k")
	_, _ = c.Get("missing")

	stats := c.Stats()
	assert.Equal(t, int64(1), stats.Hits)
	assert.Equal(t, int64(1), stats.Misses)
	assert.InDelta(t, 0.5, stats.HitRate, 0.001)
}
