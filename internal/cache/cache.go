// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package cache provides a thread-safe TTL-keyed store with single-flight
// get-or-compute semantics for the market-data source adapters.
package cache

import (
	"context"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/tomtom215/marketdata-mcp/internal/metrics"
)

// NullSentinel marks a cache entry as "we asked and there is no data",
// distinct from the key simply being absent.
type NullSentinel struct{}

// IsNull reports whether a cached value is the null-sentinel.
func IsNull(v interface{}) bool {
	_, ok := v.(NullSentinel)
	return ok
}

// Entry represents one cached item.
type Entry struct {
	Value     interface{}
	StoredAt  time.Time
	ExpiresAt time.Time
}

// Stats captures cumulative cache performance counters.
type Stats struct {
	Hits      int64
	Misses    int64
	Evictions int64
	Keys      int64
	HitRate   float64
}

// DefaultSweepInterval is how often the periodic eviction sweep runs.
const DefaultSweepInterval = 10 * time.Minute

// DefaultCapacity is the default hard cap on key count before oldest-first eviction kicks in.
const DefaultCapacity = 1000

// Cache is a thread-safe, TTL-keyed in-memory store. A given key has at
// most one in-flight Compute at a time (Cache.GetOrCompute).
type Cache struct {
	name     string
	mu       sync.RWMutex
	entries  map[string]Entry
	capacity int

	hits, misses, evictions int64

	group singleflight.Group

	stopSweep chan struct{}
	sweepOnce sync.Once
	autoSweep bool
}

// Option configures a Cache at construction.
type Option func(*Cache)

// WithCapacity overrides the default hard cap on key count.
func WithCapacity(n int) Option {
	return func(c *Cache) {
		if n > 0 {
			c.capacity = n
		}
	}
}

// WithoutAutoSweep skips launching the cache's own background sweep
// goroutine, for callers that drive Sweep themselves under external
// supervision (see internal/supervisor).
func WithoutAutoSweep() Option {
	return func(c *Cache) { c.autoSweep = false }
}

// New creates a Cache identified by name (used as a metrics label) and,
// unless WithoutAutoSweep is given, starts its periodic eviction sweep.
func New(name string, opts ...Option) *Cache {
	c := &Cache{
		name:      name,
		entries:   make(map[string]Entry),
		capacity:  DefaultCapacity,
		stopSweep: make(chan struct{}),
		autoSweep: true,
	}
	for _, opt := range opts {
		opt(c)
	}
	if c.autoSweep {
		go c.sweepLoop(DefaultSweepInterval)
	}
	return c
}

// Close stops the background sweep goroutine. Safe to call more than once.
func (c *Cache) Close() {
	c.sweepOnce.Do(func() { close(c.stopSweep) })
}

// Get returns the value stored under key, or (nil, false) if absent or expired.
// A live entry whose value is the null-sentinel returns (NullSentinel{}, true);
// callers that want a plain nil for "no data" should check cache.IsNull.
func (c *Cache) Get(key string) (interface{}, bool) {
	c.mu.RLock()
	entry, ok := c.entries[key]
	c.mu.RUnlock()

	if !ok {
		c.recordMiss()
		return nil, false
	}
	if time.Now().After(entry.ExpiresAt) {
		c.mu.Lock()
		delete(c.entries, key)
		c.mu.Unlock()
		c.recordMiss()
		c.recordEviction()
		return nil, false
	}
	c.recordHit()
	return entry.Value, true
}

// GetEntry returns the full entry (including StoredAt) for freshness diagnostics.
func (c *Cache) GetEntry(key string) (Entry, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return Entry{}, false
	}
	return entry, true
}

// Set stores value under key with the given TTL. ttl must be positive.
func (c *Cache) Set(key string, value interface{}, ttl time.Duration) {
	if ttl <= 0 {
		ttl = time.Second
	}
	now := time.Now()
	c.mu.Lock()
	if _, exists := c.entries[key]; !exists && len(c.entries) >= c.capacity {
		c.evictOldestLocked()
	}
	c.entries[key] = Entry{Value: value, StoredAt: now, ExpiresAt: now.Add(ttl)}
	size := len(c.entries)
	c.mu.Unlock()
	metrics.SetCacheSize(c.name, size)
}

// Delete removes key and reports whether a live entry was removed.
func (c *Cache) Delete(key string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	entry, ok := c.entries[key]
	if !ok || time.Now().After(entry.ExpiresAt) {
		return false
	}
	delete(c.entries, key)
	return true
}

// Has reports whether key has a live entry, without extending its TTL.
func (c *Cache) Has(key string) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	entry, ok := c.entries[key]
	return ok && !time.Now().After(entry.ExpiresAt)
}

// Flush removes every entry.
func (c *Cache) Flush() {
	c.mu.Lock()
	c.entries = make(map[string]Entry)
	c.mu.Unlock()
	metrics.SetCacheSize(c.name, 0)
}

// Keys returns all live keys.
func (c *Cache) Keys() []string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	now := time.Now()
	keys := make([]string, 0, len(c.entries))
	for k, e := range c.entries {
		if !now.After(e.ExpiresAt) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// KeysMatching returns live keys matching glob, where "*" matches any substring.
func (c *Cache) KeysMatching(glob string) []string {
	all := c.Keys()
	matched := make([]string, 0, len(all))
	for _, k := range all {
		if ok, _ := filepath.Match(globToFilepathPattern(glob), k); ok {
			matched = append(matched, k)
		}
	}
	return matched
}

// globToFilepathPattern adapts a "*" substring glob to filepath.Match syntax,
// which already treats "*" as "any sequence of non-separator characters";
// since cache keys contain no OS path separators this is a direct match.
func globToFilepathPattern(glob string) string { return glob }

// Compute produces a value to cache on a miss. Returning an error does not
// populate the cache.
type Compute func() (value interface{}, ttl time.Duration, err error)

// GetOrCompute returns the cached value for key if present; otherwise it
// invokes compute exactly once even under concurrent callers racing on the
// same key (backed by singleflight.Group), stores the result with the TTL
// compute returns, and returns it to every waiting caller.
func (c *Cache) GetOrCompute(ctx context.Context, key string, compute Compute) (interface{}, error) {
	if v, ok := c.Get(key); ok {
		return v, nil
	}

	v, err, _ := c.group.Do(key, func() (interface{}, error) {
		// Re-check: another goroutine may have populated the cache between
		// our initial Get and acquiring the singleflight slot.
		if cached, ok := c.Get(key); ok {
			return cached, nil
		}
		value, ttl, err := compute()
		if err != nil {
			return nil, err
		}
		c.Set(key, value, ttl)
		return value, nil
	})
	if err != nil {
		return nil, err
	}
	return v, nil
}

// Stats reports cumulative cache statistics.
func (c *Cache) Stats() Stats {
	c.mu.RLock()
	defer c.mu.RUnlock()
	hits, misses, evictions := c.hits, c.misses, c.evictions
	total := hits + misses
	var hitRate float64
	if total > 0 {
		hitRate = float64(hits) / float64(total)
	}
	return Stats{
		Hits:      hits,
		Misses:    misses,
		Evictions: evictions,
		Keys:      int64(len(c.entries)),
		HitRate:   hitRate,
	}
}

func (c *Cache) recordHit() {
	c.mu.Lock()
	c.hits++
	c.mu.Unlock()
	metrics.RecordCacheHit(c.name)
}

func (c *Cache) recordMiss() {
	c.mu.Lock()
	c.misses++
	c.mu.Unlock()
	metrics.RecordCacheMiss(c.name)
}

func (c *Cache) recordEviction() {
	c.mu.Lock()
	c.evictions++
	c.mu.Unlock()
	metrics.RecordCacheEviction(c.name)
}

// evictOldestLocked removes the entry with the earliest StoredAt. Caller
// must hold c.mu.
func (c *Cache) evictOldestLocked() {
	var oldestKey string
	var oldestAt time.Time
	first := true
	for k, e := range c.entries {
		if first || e.StoredAt.Before(oldestAt) {
			oldestKey, oldestAt, first = k, e.StoredAt, false
		}
	}
	if !first {
		delete(c.entries, oldestKey)
		c.evictions++
	}
}

// sweepLoop periodically removes expired entries so memory is reclaimed
// even for keys nobody reads again.
func (c *Cache) sweepLoop(interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			c.sweep()
		case <-c.stopSweep:
			return
		}
	}
}

// Sweep removes expired entries immediately. Exported for use by an
// external janitor (internal/supervisor) when the cache was built with
// WithoutAutoSweep.
func (c *Cache) Sweep() {
	c.sweep()
}

func (c *Cache) sweep() {
	now := time.Now()
	c.mu.Lock()
	for k, e := range c.entries {
		if now.After(e.ExpiresAt) {
			delete(c.entries, k)
			c.evictions++
		}
	}
	size := len(c.entries)
	c.mu.Unlock()
	metrics.SetCacheSize(c.name, size)
}
