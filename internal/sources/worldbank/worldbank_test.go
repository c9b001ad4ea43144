// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package worldbank

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
)

func TestUnwrapEnvelopeReturnsSecondElement(t *testing.T) {
	raw := json.RawMessage(`[{"page":1},[{"indicator":{"id":"NY.GDP.MKTP.CD","value":"GDP"},"country":{"id":"US","value":"United States"},"countryiso3code":"USA","date":"2021","value":100}]]`)
	value := unwrapEnvelope(raw)
	observations, ok := value.([]observation)
	assert.True(t, ok)
	assert.Len(t, observations, 1)
}

func TestUnwrapEnvelopeReturnsRawPayloadWhenShortArray(t *testing.T) {
	raw := json.RawMessage(`[{"page":1}]`)
	value := unwrapEnvelope(raw)
	assert.NotNil(t, value)
	_, isObservationSlice := value.([]observation)
	assert.False(t, isObservationSlice)
}

func TestUnwrapEnvelopeReturnsNilForEmptyObservationList(t *testing.T) {
	raw := json.RawMessage(`[{"page":1},[]]`)
	assert.Nil(t, unwrapEnvelope(raw))
}
