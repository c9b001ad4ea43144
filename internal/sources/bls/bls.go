// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package bls adapts the Bureau of Labor Statistics timeseries/data
// batch POST endpoint. BLS permits anonymous access, so this adapter
// is always available; a registration key only raises its series ceiling.
package bls

import (
	"bytes"
	"context"
	"fmt"
	"net/http"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/logging"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/httpclient"
)

const endpoint = "https://api.bls.gov/publicAPI/v2/timeseries/data/"

const (
	anonymousSeriesCeiling = 25
	keyedSeriesCeiling     = 50
)

// Adapter fetches from the BLS public timeseries API.
type Adapter struct {
	apiKey  string
	cache   *cache.Cache
	client  *httpclient.Client
	ttl     *config.TTLResolver
	credLog *logging.CredentialLogger
}

// New builds an Adapter.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		apiKey:  cfg.BLS.APIKey,
		cache:   c,
		client:  httpclient.New("bls", httpclient.WithTimeout(cfg.BLS.Timeout)),
		ttl:     config.NewTTLResolver(cfg),
		credLog: logging.NewCredentialLogger(),
	}
}

// IsAvailable is always true: BLS accepts anonymous access.
func (a *Adapter) IsAvailable() bool { return true }

type request struct {
	SeriesID         []string `json:"seriesid"`
	StartYear        string   `json:"startyear,omitempty"`
	EndYear          string   `json:"endyear,omitempty"`
	Catalog          bool     `json:"catalog,omitempty"`
	Calculations     bool     `json:"calculations,omitempty"`
	AnnualAverage    bool     `json:"annualaverage,omitempty"`
	RegistrationKey  string   `json:"registrationkey,omitempty"`
}

type response struct {
	Status       string   `json:"status"`
	ResponseTime int      `json:"responseTime"`
	Message      []string `json:"message"`
	Results      struct {
		Series []interface{} `json:"series"`
	} `json:"Results"`
}

// Options carries the optional batch parameters.
type Options struct {
	SeriesIDs     []string
	StartYear     string
	EndYear       string
	Catalog       bool
	Calculations  bool
	AnnualAverage bool
}

// GetSeriesData issues the multi-series batch request. Series-count
// ceilings (25 anonymous, 50 with a key) are enforced by warning only —
// the request is still issued, per spec.
func (a *Adapter) GetSeriesData(ctx context.Context, opts Options) sources.Response {
	ceiling := anonymousSeriesCeiling
	if a.apiKey != "" {
		ceiling = keyedSeriesCeiling
	}
	if len(opts.SeriesIDs) > ceiling {
		a.credLog.LogAnonymousAccess("bls", fmt.Sprintf("series count %d exceeds %d-series ceiling, issuing request anyway", len(opts.SeriesIDs), ceiling))
	}

	params := map[string]interface{}{
		"seriesid":  opts.SeriesIDs,
		"startyear": opts.StartYear,
		"endyear":   opts.EndYear,
	}
	key := sources.CacheKey("bls", "timeseries/data", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	body := request{
		SeriesID:        opts.SeriesIDs,
		StartYear:       opts.StartYear,
		EndYear:         opts.EndYear,
		Catalog:         opts.Catalog,
		Calculations:    opts.Calculations,
		AnnualAverage:   opts.AnnualAverage,
		RegistrationKey: a.apiKey,
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	req.Header.Set("Content-Type", "application/json")

	var resp response
	status, err := a.client.DecodeJSON(ctx, req, &resp)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("bls", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK || resp.Status != "REQUEST_SUCCEEDED" {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("bls", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: bulkMessage(resp.Message)}
	}

	if len(resp.Results.Series) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("bls", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	a.cache.Set(key, resp.Results.Series, a.ttl.Resolve("bls", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: resp.Results.Series}
}

func bulkMessage(messages []string) error {
	if len(messages) == 0 {
		return errNoMessage
	}
	joined := messages[0]
	for _, m := range messages[1:] {
		joined += "; " + m
	}
	return &providerError{joined}
}

type providerError struct{ msg string }

func (e *providerError) Error() string { return "bls: " + e.msg }

var errNoMessage = &providerError{"request did not succeed"}
