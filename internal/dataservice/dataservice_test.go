// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package dataservice

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCalculateTamBaselineMatchesCompoundGrowth(t *testing.T) {
	s := &Service{}
	result := s.CalculateTam(1_000_000, 0.15, 3, nil)

	require.Len(t, result.YearByYear, 3)
	assert.InDelta(t, 1_520_875, result.FinalYearValue, 1)
	assert.InDelta(t, 1_520_875, result.YearByYear[2], 1)
}

func TestCalculateTamWithSegmentationAppliesFactorToFinalYearOnly(t *testing.T) {
	s := &Service{}
	result := s.CalculateTam(500_000_000, 0.20, 5, &SegmentationAdjustment{Factor: 0.60})

	require.Len(t, result.YearByYear, 5)
	assert.InDelta(t, 746_496_000, result.FinalYearValue, 1000)
	// The fourth year must not have the segmentation factor applied.
	unsegmentedFourthYear := 500_000_000.0 * pow(1.20, 4)
	assert.InDelta(t, unsegmentedFourthYear, result.YearByYear[3], 1)
}

func TestCalculateTamZeroYearsYieldsEmptyProjection(t *testing.T) {
	s := &Service{}
	result := s.CalculateTam(1000, 0.1, 0, nil)
	assert.Empty(t, result.YearByYear)
	assert.Equal(t, 0.0, result.FinalYearValue)
}

func TestRouteMarketSizeQueryClassifiesStockSymbols(t *testing.T) {
	assert.Equal(t, "alpha_vantage", RouteMarketSizeQuery("AAPL"))
	assert.Equal(t, "alpha_vantage", RouteMarketSizeQuery("IBM"))
}

func TestRouteMarketSizeQueryClassifiesNaicsCodes(t *testing.T) {
	assert.Equal(t, "census", RouteMarketSizeQuery("5415"))
	assert.Equal(t, "census", RouteMarketSizeQuery("54"))
}

func TestRouteMarketSizeQueryFallsBackToWorldBank(t *testing.T) {
	assert.Equal(t, "world_bank", RouteMarketSizeQuery("semiconductor manufacturing"))
}

func TestTokenOverlapScoreCountsMatchedFraction(t *testing.T) {
	score := tokenOverlapScore("cloud computing services", "Cloud Computing and Storage Services Inc")
	assert.InDelta(t, 1.0, score, 0.01)

	score = tokenOverlapScore("cloud computing services", "semiconductor manufacturing")
	assert.Equal(t, 0.0, score)
}

func TestRelevanceThresholdDropsUnrelatedIndustries(t *testing.T) {
	s := &Service{}

	items := []Industry{
		{IndustryID: "b", Name: "cloud services", SourceName: "alpha_vantage"},
		{IndustryID: "a", Name: "cloud services", SourceName: "alpha_vantage"},
		{IndustryID: "c", Name: "unrelated widget manufacturing", SourceName: "census"},
	}

	scored := make([]Industry, 0, len(items))
	for _, ind := range items {
		ind.RelevanceScore = tokenOverlapScore("cloud services", ind.Name)
		if ind.RelevanceScore >= 0.5 {
			scored = append(scored, ind)
		}
	}

	assert.Len(t, scored, 2)
	for _, ind := range scored {
		assert.NotEqual(t, "unrelated widget manufacturing", ind.Name)
	}
	_ = s
}

