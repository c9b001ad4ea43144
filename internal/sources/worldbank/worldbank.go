// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package worldbank adapts the World Bank indicator API, whose payload
// is a two-element array [metadata, data].
package worldbank

import (
	"context"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/httpclient"
)

const baseURL = "https://api.worldbank.org/v2/country"

// indicatorAliases maps curated industry aliases to World Bank indicator codes.
var indicatorAliases = map[string]string{
	"technology":    "IC.BUS.EASE.XQ",
	"manufacturing": "NV.IND.MANF.ZS",
	"agriculture":   "NV.AGR.TOTL.ZS",
	"services":      "NV.SRV.TOTL.ZS",
}

const defaultIndicator = "NY.GDP.MKTP.CD"

// Adapter fetches from the World Bank indicator API. World Bank accepts
// anonymous access so it is always available.
type Adapter struct {
	cache  *cache.Cache
	client *httpclient.Client
	ttl    *config.TTLResolver
}

// New builds an Adapter.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		cache:  c,
		client: httpclient.New("world_bank", httpclient.WithTimeout(cfg.WorldBank.Timeout)),
		ttl:    config.NewTTLResolver(cfg),
	}
}

// IsAvailable is always true: World Bank accepts anonymous access.
func (a *Adapter) IsAvailable() bool { return true }

type observation struct {
	Indicator struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"indicator"`
	Country struct {
		ID    string `json:"id"`
		Value string `json:"value"`
	} `json:"country"`
	CountryISO3 string      `json:"countryiso3code"`
	Date        string      `json:"date"`
	Value       interface{} `json:"value"`
	Unit        string      `json:"unit"`
}

// GetIndicatorData fetches all observations for countryCode/indicator,
// unwrapping the provider's [metadata, data] envelope.
func (a *Adapter) GetIndicatorData(ctx context.Context, countryCode, indicator string, perPage int) sources.Response {
	params := map[string]interface{}{"country": countryCode, "indicator": indicator, "per_page": perPage}
	key := sources.CacheKey("world_bank", "indicator", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	raw, status, err := a.fetch(ctx, countryCode, indicator, perPage)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("world_bank", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("world_bank", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	value := unwrapEnvelope(raw)
	if value == nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("world_bank", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	a.cache.Set(key, value, a.ttl.Resolve("world_bank", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: value}
}

// FetchMarketSize maps an industry alias to a curated indicator code
// (falling back to GDP), requests the five most recent values, and
// returns the first non-null observation.
func (a *Adapter) FetchMarketSize(ctx context.Context, countryCode, industryAlias string) sources.Response {
	indicator, ok := indicatorAliases[industryAlias]
	if !ok {
		indicator = defaultIndicator
	}

	resp := a.GetIndicatorData(ctx, countryCode, indicator, 5)
	if resp.Class != sources.Success {
		return resp
	}

	observations, ok := resp.Value.([]observation)
	if !ok {
		return sources.Response{Class: sources.NoData}
	}
	for _, obs := range observations {
		if obs.Value != nil {
			return sources.Response{Class: sources.Success, Value: obs}
		}
	}
	return sources.Response{Class: sources.NoData}
}

func (a *Adapter) fetch(ctx context.Context, countryCode, indicator string, perPage int) (json.RawMessage, int, error) {
	q := url.Values{}
	q.Set("format", "json")
	if perPage > 0 {
		q.Set("per_page", strconv.Itoa(perPage))
	}

	reqURL := baseURL + "/" + countryCode + "/indicator/" + indicator + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, 0, err
	}

	var raw json.RawMessage
	status, err := a.client.DecodeJSON(ctx, req, &raw)
	return raw, status, err
}

// unwrapEnvelope returns the decoded data element ([1]) of the
// provider's two-element array response. An array shorter than two
// elements is returned as-is (the raw payload), per spec.
func unwrapEnvelope(raw json.RawMessage) interface{} {
	var envelope []json.RawMessage
	if err := json.Unmarshal(raw, &envelope); err != nil {
		return nil
	}
	if len(envelope) < 2 {
		var fallback interface{}
		_ = json.Unmarshal(raw, &fallback)
		return fallback
	}

	var observations []observation
	if err := json.Unmarshal(envelope[1], &observations); err != nil {
		return nil
	}
	if len(observations) == 0 {
		return nil
	}
	return observations
}
