// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package oecd

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenObservationCentricShape(t *testing.T) {
	data := sdmxData{}
	data.Structure.Dimensions.Observation = []dimension{
		{ID: "TIME_PERIOD", Values: []dimensionValue{{ID: "2020", Name: "2020"}}},
	}
	data.DataSets = []struct {
		Series       map[string]seriesEntry   `json:"series"`
		Observations map[string][]interface{} `json:"observations"`
	}{
		{Observations: map[string][]interface{}{"0": {42.5}}},
	}

	records := flatten(data)
	assert.Len(t, records, 1)
	assert.Equal(t, float64(42.5), records[0]["value"])
	assert.Equal(t, "2020", records[0]["TIME_PERIOD"])
}

func TestFlattenSeriesCentricShape(t *testing.T) {
	data := sdmxData{}
	data.Structure.Dimensions.Series = []dimension{
		{ID: "LOCATION", Values: []dimensionValue{{ID: "USA", Name: "United States"}}},
	}
	data.DataSets = []struct {
		Series       map[string]seriesEntry   `json:"series"`
		Observations map[string][]interface{} `json:"observations"`
	}{
		{Series: map[string]seriesEntry{"0": {Observations: map[string][]interface{}{"2021": {1.23}}}}},
	}

	records := flatten(data)
	assert.Len(t, records, 1)
	assert.Equal(t, "United States", records[0]["LOCATION"])
}

func TestFlattenReturnsNilWhenNoDataSets(t *testing.T) {
	assert.Nil(t, flatten(sdmxData{}))
}
