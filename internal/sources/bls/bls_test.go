// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package bls

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
)

func TestIsAvailableAlwaysTrue(t *testing.T) {
	a := New(&config.Config{}, cache.New("bls-test"))
	assert.True(t, a.IsAvailable())
}

func TestBulkMessageJoinsProviderMessages(t *testing.T) {
	err := bulkMessage([]string{"bad series", "invalid year"})
	assert.Contains(t, err.Error(), "bad series")
	assert.Contains(t, err.Error(), "invalid year")
}

func TestBulkMessageHandlesEmptyList(t *testing.T) {
	err := bulkMessage(nil)
	assert.Error(t, err)
}
