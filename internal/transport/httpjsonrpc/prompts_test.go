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

func TestNewPromptCatalogListsAllTemplatesSorted(t *testing.T) {
	c := NewPromptCatalog()
	summaries := c.List()
	require.Len(t, summaries, 3)
	for i := 1; i < len(summaries); i++ {
		assert.LessOrEqual(t, summaries[i-1].Name, summaries[i].Name)
	}
}

func TestPromptCatalogGetDefaultsMissingGeographyToGlobal(t *testing.T) {
	c := NewPromptCatalog()
	rendered, ok := c.Get("industry_research_brief", map[string]string{"industry": "EV batteries"})
	require.True(t, ok)
	require.Len(t, rendered.Messages, 1)
	assert.Contains(t, rendered.Messages[0].Content, "Global")
	assert.Contains(t, rendered.Messages[0].Content, "EV batteries")
}

func TestPromptCatalogGetUnknownNameReturnsFalse(t *testing.T) {
	c := NewPromptCatalog()
	_, ok := c.Get("does_not_exist", nil)
	assert.False(t, ok)
}

func TestCompetitiveLandscapeSplitsAndTrimsQueries(t *testing.T) {
	c := NewPromptCatalog()
	rendered, ok := c.Get("competitive_landscape_summary", map[string]string{"queries": "a, b ,c"})
	require.True(t, ok)
	assert.Contains(t, rendered.Messages[0].Content, "a; b; c")
}
