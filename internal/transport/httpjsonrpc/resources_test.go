// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package httpjsonrpc

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewResourceCatalogListsInSortedOrder(t *testing.T) {
	c := NewResourceCatalog()
	resources := c.List()
	require.NotEmpty(t, resources)
	for i := 1; i < len(resources); i++ {
		assert.LessOrEqual(t, resources[i-1].URI, resources[i].URI)
	}
}

func TestResourceCatalogReadReturnsMarkdownContent(t *testing.T) {
	c := NewResourceCatalog()
	content, ok := c.Read("docs://sources/world-bank")
	require.True(t, ok)
	assert.Equal(t, "text/markdown", content.MimeType)
	assert.NotEmpty(t, content.Text)
}

func TestResourceCatalogReadUnknownURIReturnsFalse(t *testing.T) {
	c := NewResourceCatalog()
	_, ok := c.Read("docs://unknown")
	assert.False(t, ok)
}
