// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package nasdaq adapts the Nasdaq Data Link datasets/{db}/{ds}/data.json endpoint.
package nasdaq

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/httpclient"
)

const baseURL = "https://data.nasdaq.com/api/v3/datasets"

// Adapter fetches from Nasdaq Data Link.
type Adapter struct {
	apiKey string
	cache  *cache.Cache
	client *httpclient.Client
	ttl    *config.TTLResolver
}

// New builds an Adapter.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		apiKey: cfg.NasdaqDataLink.APIKey,
		cache:  c,
		client: httpclient.New("nasdaq_data_link", httpclient.WithTimeout(cfg.NasdaqDataLink.Timeout)),
		ttl:    config.NewTTLResolver(cfg),
	}
}

// IsAvailable reports whether an API key has been configured.
func (a *Adapter) IsAvailable() bool { return a.apiKey != "" }

// DatasetData is the provider's nested dataset_data object, returned verbatim.
type DatasetData struct {
	ColumnNames []string        `json:"column_names"`
	Data        [][]interface{} `json:"data"`
}

type envelope struct {
	DatasetData DatasetData `json:"dataset_data"`
}

// Options carries the optional data.json query parameters.
type Options struct {
	Limit        int
	Order        string
	StartDate    string
	EndDate      string
	Collapse     string
	Transform    string
	ColumnIndex  int
}

// GetDatasetTimeSeries fetches the full time series verbatim for database/dataset.
func (a *Adapter) GetDatasetTimeSeries(ctx context.Context, database, dataset string, opts Options) sources.Response {
	if !a.IsAvailable() {
		return sources.DisabledResponse("Nasdaq Data Link", "NASDAQ_DATA_LINK_API_KEY")
	}

	params := optsParams(database, dataset, opts)
	key := sources.CacheKey("nasdaq_data_link", "data.json", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	env, status, err := a.fetch(ctx, database, dataset, opts)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("nasdaq_data_link", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK || len(env.DatasetData.Data) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("nasdaq_data_link", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	a.cache.Set(key, env.DatasetData, a.ttl.Resolve("nasdaq_data_link", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: env.DatasetData}
}

// LatestValue is fetchMarketSize/getLatestDatasetValue's single-row projection.
type LatestValue struct {
	Date  string      `json:"date"`
	Value interface{} `json:"value"`
	Column string     `json:"column"`
}

// GetLatestDatasetValue returns the most recent row's named column value.
// The date column is assumed to be at index 0, per the spec's documented
// caveat — real datasets may place it elsewhere.
func (a *Adapter) GetLatestDatasetValue(ctx context.Context, database, dataset, valueColumn string) sources.Response {
	resp := a.GetDatasetTimeSeries(ctx, database, dataset, Options{Limit: 1, Order: "desc"})
	if resp.Class != sources.Success {
		return resp
	}
	dd, ok := resp.Value.(DatasetData)
	if !ok || len(dd.Data) == 0 {
		return sources.Response{Class: sources.NoData}
	}

	colIdx := columnIndex(dd.ColumnNames, valueColumn)
	if colIdx < 0 || colIdx >= len(dd.Data[0]) {
		return sources.Response{Class: sources.NoData}
	}

	const dateColumnIndex = 0
	var date string
	if dateColumnIndex < len(dd.Data[0]) {
		if s, ok := dd.Data[0][dateColumnIndex].(string); ok {
			date = s
		}
	}

	return sources.Response{Class: sources.Success, Value: LatestValue{
		Date:   date,
		Value:  dd.Data[0][colIdx],
		Column: valueColumn,
	}}
}

func columnIndex(names []string, want string) int {
	for i, n := range names {
		if n == want {
			return i
		}
	}
	return -1
}

func optsParams(database, dataset string, opts Options) map[string]interface{} {
	return map[string]interface{}{
		"database":    database,
		"dataset":     dataset,
		"limit":       opts.Limit,
		"order":       opts.Order,
		"start_date":  opts.StartDate,
		"end_date":    opts.EndDate,
		"collapse":    opts.Collapse,
		"transform":   opts.Transform,
		"column_index": opts.ColumnIndex,
	}
}

func (a *Adapter) fetch(ctx context.Context, database, dataset string, opts Options) (envelope, int, error) {
	q := url.Values{}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Order != "" {
		q.Set("order", opts.Order)
	}
	if opts.StartDate != "" {
		q.Set("start_date", opts.StartDate)
	}
	if opts.EndDate != "" {
		q.Set("end_date", opts.EndDate)
	}
	if opts.Collapse != "" {
		q.Set("collapse", opts.Collapse)
	}
	if opts.Transform != "" {
		q.Set("transform", opts.Transform)
	}
	if opts.ColumnIndex > 0 {
		q.Set("column_index", strconv.Itoa(opts.ColumnIndex))
	}
	if a.apiKey != "" {
		q.Set("api_key", a.apiKey)
	}

	reqURL := baseURL + "/" + database + "/" + dataset + "/data.json"
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return envelope{}, 0, err
	}

	var env envelope
	status, err := a.client.DecodeJSON(ctx, req, &env)
	return env, status, err
}
