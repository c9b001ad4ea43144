// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package registry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRegistersExactly28Tools(t *testing.T) {
	c := New()
	assert.Len(t, c.List(), 28)
}

func TestNewRegistersTheDocumentedToolNames(t *testing.T) {
	c := New()
	expected := []string{
		"alphaVantage_getCompanyOverview", "alphaVantage_searchSymbols", "bls_getSeriesData",
		"census_fetchIndustryData", "census_fetchMarketSize", "fred_getSeriesObservations",
		"imf_getDataset", "imf_getLatestObservation", "nasdaq_getDatasetTimeSeries",
		"nasdaq_getLatestDatasetValue", "oecd_getDataset", "oecd_getLatestObservation",
		"worldBank_getIndicatorData",
		"industry_search", "tam_calculator", "market_size_calculator", "company_financials_retriever",
		"industry_analysis", "industry_data", "market_size", "tam_analysis", "sam_calculator",
		"market_segments", "market_forecasting", "market_comparison", "data_validation",
		"market_opportunities", "generic_data_query",
	}
	for _, name := range expected {
		_, ok := c.Lookup(name)
		assert.True(t, ok, "expected tool %q to be registered", name)
	}
}

func TestLookupMissingToolReturnsFalse(t *testing.T) {
	c := New()
	_, ok := c.Lookup("does_not_exist")
	assert.False(t, ok)
}

func TestTamCalculatorDefaultsMatchDocumentedValues(t *testing.T) {
	c := New()
	tool, ok := c.Lookup("tam_calculator")
	require.True(t, ok)

	defaults := map[string]interface{}{}
	for _, a := range tool.Args {
		defaults[a.Name] = a.Default
	}
	assert.Equal(t, 10e9, defaults["baseMarketSize"])
	assert.Equal(t, 0.15, defaults["annualGrowthRate"])
	assert.Equal(t, 5, defaults["projectionYears"])
}

func TestAlphaVantageOverviewDefaultsToAAPL(t *testing.T) {
	c := New()
	tool, ok := c.Lookup("alphaVantage_getCompanyOverview")
	require.True(t, ok)
	require.Len(t, tool.Args, 1)
	assert.Equal(t, "AAPL", tool.Args[0].Default)
}

func TestJSONSchemaMarksRequiredArguments(t *testing.T) {
	c := New()
	tool, ok := c.Lookup("census_fetchMarketSize")
	require.True(t, ok)

	schema := tool.JSONSchema()
	required, ok := schema["required"].([]string)
	require.True(t, ok)
	assert.Contains(t, required, "naicsCode")
	assert.NotContains(t, required, "variable")
}

func TestToolCategoryCountsMatchCatalog(t *testing.T) {
	c := New()
	var direct, basic, advanced int
	for _, tool := range c.List() {
		switch tool.Category {
		case CategoryDirectSource:
			direct++
		case CategoryBasicAnalysis:
			basic++
		case CategoryAdvanced:
			advanced++
		}
	}
	assert.Equal(t, 13, direct)
	assert.Equal(t, 4, basic)
	assert.Equal(t, 11, advanced)
}
