// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Outcome classifies an adapter response for TTL lookup purposes.
type Outcome int

const (
	// OutcomeSuccess is a live, parsed upstream value.
	OutcomeSuccess Outcome = iota
	// OutcomeNoData is "we asked and the upstream had nothing" (cached as a null-sentinel).
	OutcomeNoData
	// OutcomeRateLimited is the upstream itself reporting it is throttling us.
	OutcomeRateLimited
)

// Default TTLs, used when neither a source-specific nor the blanket
// CACHE_TTL_DEFAULT_MS environment variable is set.
const (
	DefaultSuccessTTL     = 24 * time.Hour
	DefaultNoDataTTL      = time.Hour
	DefaultRateLimitedTTL = 5 * time.Minute
)

// sourceEnvNames maps a source identifier to the token used in its
// CACHE_TTL_<SOURCE>_MS environment variable names.
var sourceEnvNames = map[string]string{
	"alpha_vantage":    "ALPHA_VANTAGE",
	"bls":              "BLS",
	"census":           "CENSUS",
	"fred":             "FRED",
	"imf":              "IMF",
	"nasdaq_data_link": "NASDAQ_DATA_LINK",
	"oecd":             "OECD",
	"world_bank":       "WORLD_BANK",
}

// TTLResolver resolves the cache TTL for a source/outcome pair following
// the precedence: CACHE_TTL_<SOURCE>_[NODATA_|RATELIMIT_]MS env var, then
// CACHE_TTL_DEFAULT_MS, then the compiled-in default for that outcome.
//
// Alpha Vantage timeouts are classified by the adapter as OutcomeSuccess
// rather than a transport-failure outcome, so they pick up the success
// TTL here — an intentional, spec-preserved asymmetry, not a bug.
type TTLResolver struct {
	defaultMS int64
}

// NewTTLResolver builds a resolver backed by cfg's CACHE_TTL_DEFAULT_MS fallback.
func NewTTLResolver(cfg *Config) *TTLResolver {
	return &TTLResolver{defaultMS: cfg.CacheTTL.DefaultMS}
}

// Resolve returns the TTL to use for source's outcome-class response.
func (r *TTLResolver) Resolve(source string, outcome Outcome) time.Duration {
	token, ok := sourceEnvNames[source]
	if !ok {
		token = strings.ToUpper(source)
	}

	suffix := "MS"
	fallback := DefaultSuccessTTL
	switch outcome {
	case OutcomeNoData:
		suffix = "NODATA_MS"
		fallback = DefaultNoDataTTL
	case OutcomeRateLimited:
		suffix = "RATELIMIT_MS"
		fallback = DefaultRateLimitedTTL
	}

	envKey := "CACHE_TTL_" + token + "_" + suffix
	if ms, ok := readPositiveMS(envKey); ok {
		return time.Duration(ms) * time.Millisecond
	}
	if r.defaultMS > 0 {
		return time.Duration(r.defaultMS) * time.Millisecond
	}
	return fallback
}

func readPositiveMS(envKey string) (int64, bool) {
	raw := os.Getenv(envKey)
	if raw == "" {
		return 0, false
	}
	ms, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || ms <= 0 {
		return 0, false
	}
	return ms, true
}
