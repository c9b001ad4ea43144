// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package sources defines the shared response-classification contract
// that every source adapter (Alpha Vantage, BLS, Census, FRED, IMF,
// Nasdaq Data Link, OECD, World Bank) conforms to, plus the HTTP client
// wrapper they all build on.
package sources

import (
	"fmt"

	"github.com/tomtom215/marketdata-mcp/internal/config"
)

// Class tags a classified adapter response.
type Class int

const (
	// Success carries a live, parsed upstream value.
	Success Class = iota
	// NoData means the upstream was reached and had nothing to report.
	NoData
	// RateLimited means the upstream itself reported it is throttling us.
	RateLimited
	// TransportFailure means the request could not be completed (network
	// error, non-2xx status unrelated to rate limiting, timeout, or a
	// response body that failed to parse).
	TransportFailure
)

func (c Class) String() string {
	switch c {
	case Success:
		return "success"
	case NoData:
		return "no_data"
	case RateLimited:
		return "rate_limited"
	case TransportFailure:
		return "transport_failure"
	default:
		return "unknown"
	}
}

// ToOutcome maps a Class to the config package's cache-TTL outcome
// enumeration. TransportFailure is treated as NoData for caching
// purposes in the general case; callers with a source-specific exception
// (Alpha Vantage timeouts use the success TTL) must override separately.
func (c Class) ToOutcome() config.Outcome {
	switch c {
	case RateLimited:
		return config.OutcomeRateLimited
	case Success:
		return config.OutcomeSuccess
	default:
		return config.OutcomeNoData
	}
}

// Response is the result of one adapter fetch, already classified.
type Response struct {
	Class Class
	Value interface{}
	Err   error
}

// Err kinds surfaced to the dispatcher, per the error taxonomy: adapters
// never retry and never panic, they classify and return. ErrAdapterDisabled
// is the sentinel the dispatcher matches with errors.Is; DisabledError wraps
// it with the source name and missing environment variable so the envelope
// can name them instead of reporting a generic message.
var ErrAdapterDisabled = fmt.Errorf("sources: adapter disabled, required key not configured")

// DisabledError builds the wrapped ErrAdapterDisabled for a source whose
// display name is displayName and whose missing secret is named envVar,
// e.g. DisabledError("FRED", "FRED_API_KEY").
func DisabledError(displayName, envVar string) error {
	return fmt.Errorf("%w: %s API key not configured (set %s)", ErrAdapterDisabled, displayName, envVar)
}

// DisabledResponse builds the canonical Response for a source whose
// required secret is missing.
func DisabledResponse(displayName, envVar string) Response {
	return Response{Class: TransportFailure, Err: DisabledError(displayName, envVar)}
}
