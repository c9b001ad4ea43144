// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package dispatch

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/dataservice"
	"github.com/tomtom215/marketdata-mcp/internal/ratelimit"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
)

func testCatalog(tools ...registry.Tool) *registry.Catalog {
	// registry.New always returns the fixed 28-tool catalog; tests that
	// need a narrow, controlled set build one directly against the
	// package-private fields via the exported constructor contract is
	// not available, so these tests exercise real catalog tools instead.
	return registry.New()
}

func TestCallReturnsUnknownToolError(t *testing.T) {
	d := New(registry.New(), &dataservice.Service{}, ratelimit.New(0), nil, &config.Config{RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute}})
	env := d.Call(context.Background(), "caller-1", "does_not_exist", nil)
	assert.True(t, env.IsError)
	require.Len(t, env.Content, 1)
	assert.Contains(t, env.Content[0].Text, "UnknownTool")
}

func TestCallFillsDefaultsAndSucceedsForTamCalculator(t *testing.T) {
	d := New(registry.New(), &dataservice.Service{}, ratelimit.New(0), nil, &config.Config{RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute}})
	env := d.Call(context.Background(), "caller-1", "tam_calculator", map[string]interface{}{})
	assert.False(t, env.IsError)
	require.Len(t, env.Content, 1)
	assert.Contains(t, env.Content[0].Text, "yearByYear")
}

func TestCallRejectsMissingRequiredArgument(t *testing.T) {
	d := New(registry.New(), &dataservice.Service{}, ratelimit.New(0), nil, &config.Config{RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute}})
	env := d.Call(context.Background(), "caller-1", "census_fetchMarketSize", map[string]interface{}{})
	assert.True(t, env.IsError)
	assert.Contains(t, env.Content[0].Text, "InvalidArguments")
	assert.Contains(t, env.Content[0].Text, "naicsCode")
}

func TestCallRejectsWrongArgumentType(t *testing.T) {
	d := New(registry.New(), &dataservice.Service{}, ratelimit.New(0), nil, &config.Config{RateLimit: config.RateLimitConfig{Requests: 100, Window: time.Minute}})
	env := d.Call(context.Background(), "caller-1", "tam_calculator", map[string]interface{}{"baseMarketSize": "not-a-number"})
	assert.True(t, env.IsError)
	assert.Contains(t, env.Content[0].Text, "baseMarketSize must be a number")
}

func TestCallDeniesWhenRateLimitExceeded(t *testing.T) {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Requests: 1, Window: time.Minute}}
	limiter := ratelimit.New(0)
	d := New(registry.New(), &dataservice.Service{}, limiter, nil, cfg)

	first := d.Call(context.Background(), "caller-x", "tam_calculator", map[string]interface{}{})
	assert.False(t, first.IsError)

	second := d.Call(context.Background(), "caller-x", "tam_calculator", map[string]interface{}{})
	assert.True(t, second.IsError)
	assert.Contains(t, second.Content[0].Text, "RateLimitedByServer")
}

func TestFillDefaultsDoesNotMutateCallerMap(t *testing.T) {
	tool, ok := registry.New().Lookup("tam_calculator")
	require.True(t, ok)

	raw := map[string]interface{}{"baseMarketSize": 42.0}
	filled := fillDefaults(tool, raw)

	assert.Equal(t, 42.0, filled["baseMarketSize"])
	assert.Equal(t, 0.15, filled["annualGrowthRate"])
	_, presentInOriginal := raw["annualGrowthRate"]
	assert.False(t, presentInOriginal)
}

func TestTypeMismatchAcceptsIntForNumberArgs(t *testing.T) {
	a := registry.ArgSchema{Name: "x", Type: registry.TypeNumber}
	_, mismatched := typeMismatch(a, 5)
	assert.False(t, mismatched)
}

func TestJoinFieldErrorsSeparatesWithSemicolon(t *testing.T) {
	msg := joinFieldErrors([]string{"a is required", "b must be a string"})
	assert.Equal(t, "a is required; b must be a string", msg)
}

func TestErrorEnvelopeNeverLeaksGoErrorType(t *testing.T) {
	env := errorEnvelope(KindInternal, errors.New("boom").Error())
	assert.True(t, env.IsError)
	assert.NotContains(t, env.Content[0].Text, "*errors.errorString")
}

var _ = testCatalog
