// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package census adapts the US Census Bureau API, whose responses are a
// header row followed by data rows (an array of string arrays) rather
// than an array of objects.
package census

import (
	"context"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/httpclient"
)

const baseURL = "https://api.census.gov/data"

// marketSizeVariables are the County Business Patterns variables fetchMarketSize accepts.
var marketSizeVariables = map[string]bool{"EMP": true, "PAYANN": true, "ESTAB": true}

// Adapter fetches from the Census Bureau API.
type Adapter struct {
	apiKey string
	cache  *cache.Cache
	client *httpclient.Client
	ttl    *config.TTLResolver
}

// New builds an Adapter.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		apiKey: cfg.Census.APIKey,
		cache:  c,
		client: httpclient.New("census", httpclient.WithTimeout(cfg.Census.Timeout)),
		ttl:    config.NewTTLResolver(cfg),
	}
}

// IsAvailable reports whether an API key has been configured.
func (a *Adapter) IsAvailable() bool { return a.apiKey != "" }

// FetchIndustryData runs a tabular query over an arbitrary dataset path,
// coercing purely-digit cells to integers.
func (a *Adapter) FetchIndustryData(ctx context.Context, year, datasetPath string, variables []string, forGeography string, extra map[string]string) sources.Response {
	params := map[string]interface{}{
		"year":    year,
		"dataset": datasetPath,
		"get":     variables,
		"for":     forGeography,
		"extra":   extra,
	}
	key := sources.CacheKey("census", "fetchIndustryData", params)

	q := url.Values{}
	q.Set("get", strings.Join(variables, ","))
	q.Set("for", forGeography)
	for k, v := range extra {
		q.Set(k, v)
	}
	return a.fetchTable(ctx, key, year, datasetPath, q)
}

// FetchMarketSize runs the County Business Patterns lookup for one
// variable (EMP, PAYANN, or ESTAB) filtered by a NAICS 2017 code.
func (a *Adapter) FetchMarketSize(ctx context.Context, year, naicsCode, variable string) sources.Response {
	if !marketSizeVariables[variable] {
		variable = "EMP"
	}
	params := map[string]interface{}{"year": year, "naics": naicsCode, "variable": variable}
	key := sources.CacheKey("census", "fetchMarketSize", params)

	q := url.Values{}
	q.Set("get", variable)
	q.Set("for", "us:*")
	q.Set("NAICS2017", naicsCode)
	return a.fetchTable(ctx, key, year, "cbp", q)
}

func (a *Adapter) fetchTable(ctx context.Context, key, year, datasetPath string, q url.Values) sources.Response {
	if !a.IsAvailable() {
		return sources.DisabledResponse("Census", "CENSUS_API_KEY")
	}

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	if a.apiKey != "" {
		q.Set("key", a.apiKey)
	}

	reqURL := baseURL + "/" + year + "/" + datasetPath + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}

	var rows [][]string
	status, err := a.client.DecodeJSON(ctx, req, &rows)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("census", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK || len(rows) < 2 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("census", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	records := rowsToRecords(rows)
	a.cache.Set(key, records, a.ttl.Resolve("census", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: records}
}

// rowsToRecords turns a [header, row1, row2, ...] table into an array of
// objects, coercing purely-digit string cells to integers.
func rowsToRecords(rows [][]string) []map[string]interface{} {
	header := rows[0]
	records := make([]map[string]interface{}, 0, len(rows)-1)
	for _, row := range rows[1:] {
		record := make(map[string]interface{}, len(header))
		for i, col := range header {
			if i >= len(row) {
				continue
			}
			record[col] = coerce(row[i])
		}
		records = append(records, record)
	}
	return records
}

func coerce(cell string) interface{} {
	if cell == "" {
		return cell
	}
	for _, r := range cell {
		if r < '0' || r > '9' {
			return cell
		}
	}
	n, err := strconv.ParseInt(cell, 10, 64)
	if err != nil {
		return cell
	}
	return n
}
