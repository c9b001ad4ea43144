// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEnvKeyToKoanfPathMapsKnownVariables(t *testing.T) {
	assert.Equal(t, "alpha_vantage.api_key", envKeyToKoanfPath("ALPHA_VANTAGE_API_KEY"))
	assert.Equal(t, "cache_ttl.default_ms", envKeyToKoanfPath("CACHE_TTL_DEFAULT_MS"))
	assert.Equal(t, "rate_limit.requests", envKeyToKoanfPath("RATE_LIMIT_REQUESTS"))
	assert.Equal(t, "server.port", envKeyToKoanfPath("PORT"))
}

func TestEnvKeyToKoanfPathRejectsPerSourceTTLVariables(t *testing.T) {
	// These are resolved directly by TTLResolver, not through koanf.
	assert.Equal(t, "", envKeyToKoanfPath("CACHE_TTL_FRED_MS"))
	assert.Equal(t, "", envKeyToKoanfPath("CACHE_TTL_ALPHA_VANTAGE_RATELIMIT_MS"))
	assert.True(t, sourceEnvKeyPrefix("CACHE_TTL_FRED_MS"))
	assert.False(t, sourceEnvKeyPrefix("CACHE_TTL_DEFAULT_MS"))
}

func TestEnvKeyToKoanfPathRejectsUnknownVariables(t *testing.T) {
	assert.Equal(t, "", envKeyToKoanfPath("SOME_UNRELATED_VAR"))
}

func TestLoadWithKoanfAppliesDefaultsWhenNoEnvOrFile(t *testing.T) {
	t.Setenv(ConfigPathEnvVar, "")

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.AlphaVantage.HasKey())
	assert.NotNil(t, GetKoanfInstance())
}

func TestLoadWithKoanfEnvOverridesDefault(t *testing.T) {
	t.Setenv("ALPHA_VANTAGE_API_KEY", "super-secret")
	t.Setenv("PORT", "9090")

	cfg, err := LoadWithKoanf()
	require.NoError(t, err)

	assert.Equal(t, "super-secret", cfg.AlphaVantage.APIKey)
	assert.Equal(t, 9090, cfg.Server.Port)
}
