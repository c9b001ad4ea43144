// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveFallsBackToCompiledDefaultWhenUnset(t *testing.T) {
	cfg := &Config{}
	r := NewTTLResolver(cfg)

	assert.Equal(t, DefaultSuccessTTL, r.Resolve("fred", OutcomeSuccess))
	assert.Equal(t, DefaultNoDataTTL, r.Resolve("fred", OutcomeNoData))
	assert.Equal(t, DefaultRateLimitedTTL, r.Resolve("alpha_vantage", OutcomeRateLimited))
}

func TestResolveUsesCacheTTLDefaultMSWhenSet(t *testing.T) {
	cfg := &Config{CacheTTL: CacheTTLConfig{DefaultMS: 42_000}}
	r := NewTTLResolver(cfg)

	assert.Equal(t, 42_000*time.Millisecond, r.Resolve("census", OutcomeSuccess))
}

func TestResolvePerSourceEnvVarTakesPrecedenceOverDefault(t *testing.T) {
	t.Setenv("CACHE_TTL_FRED_MS", "7000")
	cfg := &Config{CacheTTL: CacheTTLConfig{DefaultMS: 42_000}}
	r := NewTTLResolver(cfg)

	assert.Equal(t, 7*time.Second, r.Resolve("fred", OutcomeSuccess))
	assert.Equal(t, 42_000*time.Millisecond, r.Resolve("census", OutcomeSuccess), "unrelated source must not pick up fred's override")
}

func TestResolveNoDataAndRateLimitSuffixesAreIndependent(t *testing.T) {
	t.Setenv("CACHE_TTL_BLS_NODATA_MS", "5000")
	r := NewTTLResolver(&Config{})

	assert.Equal(t, 5*time.Second, r.Resolve("bls", OutcomeNoData))
	assert.Equal(t, DefaultSuccessTTL, r.Resolve("bls", OutcomeSuccess))
}

func TestResolveIgnoresNonPositiveOrUnparseableEnvValue(t *testing.T) {
	t.Setenv("CACHE_TTL_OECD_MS", "not-a-number")
	r := NewTTLResolver(&Config{})
	assert.Equal(t, DefaultSuccessTTL, r.Resolve("oecd", OutcomeSuccess))

	t.Setenv("CACHE_TTL_OECD_MS", "-5")
	assert.Equal(t, DefaultSuccessTTL, r.Resolve("oecd", OutcomeSuccess))
}
