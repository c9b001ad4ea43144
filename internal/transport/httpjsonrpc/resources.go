// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package httpjsonrpc

import "sort"

// Resource describes one entry returned by resources/list.
type Resource struct {
	URI         string `json:"uri"`
	Name        string `json:"name"`
	Description string `json:"description"`
	MimeType    string `json:"mimeType"`
}

// ResourceContent is the body returned by resources/read.
type ResourceContent struct {
	URI      string `json:"uri"`
	MimeType string `json:"mimeType"`
	Text     string `json:"text"`
}

// ResourceCatalog holds the static documentation resources describing
// each upstream source's coverage and rate limits — reference material
// a caller can read before deciding which direct-source tool to invoke.
type ResourceCatalog struct {
	resources []Resource
	content   map[string]string
}

// NewResourceCatalog builds the fixed set of documentation resources.
func NewResourceCatalog() *ResourceCatalog {
	docs := map[string]struct {
		name, description, body string
	}{
		"docs://sources/alpha-vantage": {
			"Alpha Vantage coverage",
			"Company fundamentals, overview, and symbol search.",
			"Alpha Vantage supplies company OVERVIEW, INCOME_STATEMENT, BALANCE_SHEET, and CASH_FLOW " +
				"endpoints plus symbol search. Requires ALPHA_VANTAGE_API_KEY; the free tier is limited " +
				"to 25 requests per day and 5 per minute.",
		},
		"docs://sources/bls": {
			"Bureau of Labor Statistics coverage",
			"Employment, wage, and price index series.",
			"BLS series data is available anonymously (capped at 25 series and 10 years per request) " +
				"or with a registration key for higher limits via BLS_API_KEY.",
		},
		"docs://sources/census": {
			"U.S. Census Bureau coverage",
			"County Business Patterns industry and market-size data keyed by NAICS code.",
			"Census endpoints are keyed by NAICS code and geography. Requires CENSUS_API_KEY.",
		},
		"docs://sources/fred": {
			"FRED coverage",
			"Federal Reserve Economic Data series observations.",
			"FRED exposes macroeconomic time series by series id. Requires FRED_API_KEY.",
		},
		"docs://sources/imf": {
			"IMF coverage",
			"International Monetary Fund datasets and indicators.",
			"IMF's data portal requires no API key; dataset and indicator codes follow the IMF SDMX convention.",
		},
		"docs://sources/nasdaq": {
			"Nasdaq Data Link coverage",
			"Tabular dataset time series.",
			"Nasdaq Data Link serves tabular datasets identified by a database/dataset code pair. Requires NASDAQ_DATA_LINK_API_KEY.",
		},
		"docs://sources/oecd": {
			"OECD coverage",
			"Organisation for Economic Co-operation and Development datasets.",
			"OECD's SDMX-JSON API requires no API key; dataset identifiers follow the OECD.SDMX convention.",
		},
		"docs://sources/world-bank": {
			"World Bank coverage",
			"Country-level economic and development indicators.",
			"World Bank indicators are keyed by country code and indicator code; no API key required.",
		},
	}

	c := &ResourceCatalog{content: make(map[string]string, len(docs))}
	for uri, d := range docs {
		c.resources = append(c.resources, Resource{
			URI:         uri,
			Name:        d.name,
			Description: d.description,
			MimeType:    "text/markdown",
		})
		c.content[uri] = d.body
	}
	sort.Slice(c.resources, func(i, j int) bool { return c.resources[i].URI < c.resources[j].URI })
	return c
}

// List returns every registered resource.
func (c *ResourceCatalog) List() []Resource {
	return c.resources
}

// Read returns the content for uri, or ok=false if it is not registered.
func (c *ResourceCatalog) Read(uri string) (ResourceContent, bool) {
	body, ok := c.content[uri]
	if !ok {
		return ResourceContent{}, false
	}
	return ResourceContent{URI: uri, MimeType: "text/markdown", Text: body}, true
}
