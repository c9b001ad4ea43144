// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package fred adapts the St. Louis Fed FRED series/observations endpoint.
package fred

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

const baseURL = "https://api.stlouisfed.org/fred/series/observations"

// Adapter fetches from the FRED API.
type Adapter struct {
	apiKey string
	cache  *cache.Cache
	client *httpclient.Client
	ttl    *config.TTLResolver
}

// New builds an Adapter.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		apiKey: cfg.FRED.APIKey,
		cache:  c,
		client: httpclient.New("fred", httpclient.WithTimeout(cfg.FRED.Timeout)),
		ttl:    config.NewTTLResolver(cfg),
	}
}

// IsAvailable reports whether an API key has been configured.
func (a *Adapter) IsAvailable() bool { return a.apiKey != "" }

type observation struct {
	Date  string `json:"date"`
	Value string `json:"value"`
}

type envelope struct {
	Observations []observation `json:"observations"`
}

// Observations is a raw pass-through of the provider's observation list.
type Observations struct {
	SeriesID     string        `json:"seriesId"`
	Observations []observation `json:"observations"`
}

// GetSeriesObservations fetches the observation list for seriesID with the
// given optional filters, verbatim.
func (a *Adapter) GetSeriesObservations(ctx context.Context, seriesID string, opts Options) sources.Response {
	if !a.IsAvailable() {
		return sources.DisabledResponse("FRED", "FRED_API_KEY")
	}

	params := optsParams(seriesID, opts)
	key := sources.CacheKey("fred", "series/observations", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	env, status, err := a.fetch(ctx, seriesID, opts)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("fred", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK || len(env.Observations) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("fred", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	result := Observations{SeriesID: seriesID, Observations: env.Observations}
	a.cache.Set(key, result, a.ttl.Resolve("fred", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: result}
}

// MarketSizeObservation is fetchMarketSize's single-row projection.
type MarketSizeObservation struct {
	Value         float64 `json:"value"`
	Date          string  `json:"date"`
	SeriesID      string  `json:"seriesId"`
	Region        string  `json:"region"`
	Source        string  `json:"source"`
	RealtimeStart string  `json:"realtime_start"`
	RealtimeEnd   string  `json:"realtime_end"`
}

// FetchMarketSize requests the single most recent observation for seriesID.
func (a *Adapter) FetchMarketSize(ctx context.Context, seriesID, region string) sources.Response {
	if !a.IsAvailable() {
		return sources.DisabledResponse("FRED", "FRED_API_KEY")
	}

	opts := Options{Limit: 1, SortOrder: "desc"}
	params := optsParams(seriesID, opts)
	params["op"] = "fetchMarketSize"
	key := sources.CacheKey("fred", "fetchMarketSize", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	env, status, err := a.fetch(ctx, seriesID, opts)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("fred", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK || len(env.Observations) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("fred", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	value, err := strconv.ParseFloat(env.Observations[0].Value, 64)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("fred", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	result := MarketSizeObservation{
		Value:    value,
		Date:     env.Observations[0].Date,
		SeriesID: seriesID,
		Region:   region,
		Source:   "FRED",
	}
	a.cache.Set(key, result, a.ttl.Resolve("fred", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: result}
}

// Options are the optional series/observations query parameters.
type Options struct {
	ObservationStart string
	ObservationEnd   string
	Limit            int
	Offset           int
	SortOrder        string
}

func optsParams(seriesID string, opts Options) map[string]interface{} {
	return map[string]interface{}{
		"series_id":         seriesID,
		"observation_start": opts.ObservationStart,
		"observation_end":   opts.ObservationEnd,
		"limit":             opts.Limit,
		"offset":            opts.Offset,
		"sort_order":        opts.SortOrder,
	}
}

func (a *Adapter) fetch(ctx context.Context, seriesID string, opts Options) (envelope, int, error) {
	q := url.Values{}
	q.Set("series_id", seriesID)
	q.Set("api_key", a.apiKey)
	q.Set("file_type", "json")
	if opts.ObservationStart != "" {
		q.Set("observation_start", opts.ObservationStart)
	}
	if opts.ObservationEnd != "" {
		q.Set("observation_end", opts.ObservationEnd)
	}
	if opts.Limit > 0 {
		q.Set("limit", strconv.Itoa(opts.Limit))
	}
	if opts.Offset > 0 {
		q.Set("offset", strconv.Itoa(opts.Offset))
	}
	if opts.SortOrder != "" {
		q.Set("sort_order", opts.SortOrder)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return envelope{}, 0, err
	}

	var env envelope
	status, err := a.client.DecodeJSON(ctx, req, &env)
	return env, status, err
}
