// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package imf

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFlattenReturnsNilWithoutSeriesDimensions(t *testing.T) {
	var data compactData
	assert.Nil(t, flatten(data))
}

func TestFlattenResolvesDimensionIndicesAndObservations(t *testing.T) {
	data := compactData{}
	data.Structure.Dimensions.Series = []dimension{
		{ID: "FREQ", Values: []dimensionValue{{ID: "A", Name: "Annual"}}},
		{ID: "REF_AREA", Values: []dimensionValue{{ID: "US", Name: "United States"}}},
	}
	data.DataSets = []struct {
		Series map[string]rawSeries `json:"series"`
	}{
		{
			Series: map[string]rawSeries{
				"0:0": {
					Observations: map[string][]string{
						"2020": {"1.5"},
					},
				},
			},
		},
	}

	records := flatten(data)
	assert.Len(t, records, 1)
	assert.Equal(t, "Annual", records[0]["FREQ"])
	assert.Equal(t, "United States", records[0]["REF_AREA"])
	assert.Equal(t, "1.5", records[0]["value"])
	assert.Equal(t, "2020", records[0]["TIME_PERIOD"])
}
