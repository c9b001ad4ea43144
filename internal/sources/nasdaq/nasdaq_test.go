// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package nasdaq

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
)

func TestColumnIndexFindsNamedColumn(t *testing.T) {
	assert.Equal(t, 2, columnIndex([]string{"Date", "Open", "Close"}, "Close"))
	assert.Equal(t, -1, columnIndex([]string{"Date", "Open"}, "Missing"))
}

func TestGetLatestDatasetValueDisabledWithoutKey(t *testing.T) {
	a := New(&config.Config{}, cache.New("nasdaq-test"))
	resp := a.GetLatestDatasetValue(context.Background(), "WIKI", "AAPL", "Close")
	assert.Equal(t, sources.TransportFailure, resp.Class)
}
