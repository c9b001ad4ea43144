// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package availability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
)

func TestBuildMarksAlwaysOnSourcesAvailableWithoutKeys(t *testing.T) {
	cfg := &config.Config{}
	report := Build(cfg, registry.New())

	for _, name := range []string{"world_bank", "oecd", "imf", "bls"} {
		status, ok := report.Sources[name]
		require.True(t, ok)
		assert.True(t, status.Available, "%s should be available without a key", name)
	}
}

func TestBuildMarksKeyedSourcesUnavailableWithoutConfiguredKey(t *testing.T) {
	cfg := &config.Config{}
	report := Build(cfg, registry.New())

	status, ok := report.Sources["alpha_vantage"]
	require.True(t, ok)
	assert.False(t, status.Available)
	assert.Equal(t, "ALPHA_VANTAGE_API_KEY", status.MissingKey)
}

func TestBuildMarksToolUnavailableWhenAnyDependencyIsUnavailable(t *testing.T) {
	cfg := &config.Config{}
	report := Build(cfg, registry.New())

	status, ok := report.Tools["alphaVantage_getCompanyOverview"]
	require.True(t, ok)
	assert.False(t, status.Available)
	assert.Contains(t, status.MissingKeys, "ALPHA_VANTAGE_API_KEY")
}

func TestBuildMarksAllWayFreeToolAvailable(t *testing.T) {
	cfg := &config.Config{}
	report := Build(cfg, registry.New())

	status, ok := report.Tools["oecd_getLatestObservation"]
	require.True(t, ok)
	assert.True(t, status.Available)
	assert.Empty(t, status.MissingKeys)
}

func TestBuildAttachesBLSAnonymousAccessWarning(t *testing.T) {
	cfg := &config.Config{}
	report := Build(cfg, registry.New())

	status, ok := report.Tools["bls_getSeriesData"]
	require.True(t, ok)
	require.NotEmpty(t, status.Warnings)
	assert.Contains(t, status.Warnings[0], "25 series")
}

func TestDecorateAppendsMissingKeySuffixOnlyWhenUnavailable(t *testing.T) {
	cfg := &config.Config{AlphaVantage: config.SourceConfig{APIKey: "shh"}}
	report := Build(cfg, registry.New())

	tool, ok := registry.New().Lookup("alphaVantage_getCompanyOverview")
	require.True(t, ok)
	assert.Equal(t, tool.Description, report.Decorate(tool))

	cfgNoKey := &config.Config{}
	reportNoKey := Build(cfgNoKey, registry.New())
	assert.Contains(t, reportNoKey.Decorate(tool), "unavailable")
}

func TestSummaryCountsEnabledSourcesOutOfEight(t *testing.T) {
	cfg := &config.Config{}
	report := Build(cfg, registry.New())
	assert.Equal(t, "4/8 data sources enabled", report.Summary())
}
