// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package oecd adapts the OECD SDMX-JSON API, which (unlike IMF) may
// return either an observation-centric or a series-centric payload shape.
package oecd

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

const baseURL = "https://stats.oecd.org/SDMX-JSON/data"

// Adapter fetches from the OECD SDMX-JSON API. OECD accepts anonymous
// access so it is always available.
type Adapter struct {
	cache  *cache.Cache
	client *httpclient.Client
	ttl    *config.TTLResolver
}

// New builds an Adapter.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		cache:  c,
		client: httpclient.New("oecd", httpclient.WithTimeout(cfg.OECD.Timeout)),
		ttl:    config.NewTTLResolver(cfg),
	}
}

// IsAvailable is always true: OECD accepts anonymous access.
func (a *Adapter) IsAvailable() bool { return true }

type dimensionValue struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type dimension struct {
	ID     string           `json:"id"`
	Values []dimensionValue `json:"values"`
}

type sdmxData struct {
	Structure struct {
		Dimensions struct {
			Series      []dimension `json:"series"`
			Observation []dimension `json:"observation"`
		} `json:"dimensions"`
	} `json:"structure"`
	DataSets []struct {
		Series       map[string]seriesEntry            `json:"series"`
		Observations map[string][]interface{}          `json:"observations"`
	} `json:"dataSets"`
}

type seriesEntry struct {
	Observations map[string][]interface{} `json:"observations"`
}

// GetDataset parses either payload shape into a flattened array of
// observation records.
func (a *Adapter) GetDataset(ctx context.Context, datasetID, filterExpr, startPeriod, endPeriod string) sources.Response {
	params := map[string]interface{}{
		"dataset":     datasetID,
		"filter":      filterExpr,
		"startPeriod": startPeriod,
		"endPeriod":   endPeriod,
	}
	key := sources.CacheKey("oecd", "data", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	raw, status, err := a.fetch(ctx, datasetID, filterExpr, startPeriod, endPeriod)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("oecd", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("oecd", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	records := flatten(raw)
	if records == nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("oecd", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	a.cache.Set(key, records, a.ttl.Resolve("oecd", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: records}
}

// GetLatestObservation returns only the most recent record from GetDataset.
func (a *Adapter) GetLatestObservation(ctx context.Context, datasetID, filterExpr string) sources.Response {
	resp := a.GetDataset(ctx, datasetID, filterExpr, "", "")
	if resp.Class != sources.Success {
		return resp
	}
	records, ok := resp.Value.([]map[string]interface{})
	if !ok || len(records) == 0 {
		return sources.Response{Class: sources.NoData}
	}
	return sources.Response{Class: sources.Success, Value: latestByPeriod(records)}
}

// latestByPeriod returns the record with the lexicographically greatest
// TIME_PERIOD, since flatten's output order follows Go's randomized map
// iteration over dataSets.series/observations and is not chronological.
func latestByPeriod(records []map[string]interface{}) map[string]interface{} {
	latest := records[0]
	latestPeriod, _ := latest["TIME_PERIOD"].(string)
	for _, r := range records[1:] {
		period, _ := r["TIME_PERIOD"].(string)
		if period > latestPeriod {
			latest = r
			latestPeriod = period
		}
	}
	return latest
}

func (a *Adapter) fetch(ctx context.Context, datasetID, filterExpr, startPeriod, endPeriod string) (sdmxData, int, error) {
	q := url.Values{}
	q.Set("format", "jsondata")
	if startPeriod != "" {
		q.Set("startPeriod", startPeriod)
	}
	if endPeriod != "" {
		q.Set("endPeriod", endPeriod)
	}

	reqURL := baseURL + "/" + datasetID + "/" + filterExpr + "?" + q.Encode()
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return sdmxData{}, 0, err
	}

	var body sdmxData
	status, err := a.client.DecodeJSON(ctx, req, &body)
	return body, status, err
}

// flatten handles both series-centric (dataSets[0].series) and
// observation-centric (dataSets[0].observations) shapes.
func flatten(data sdmxData) []map[string]interface{} {
	if len(data.DataSets) == 0 {
		return nil
	}
	ds := data.DataSets[0]

	var records []map[string]interface{}
	if len(ds.Series) > 0 {
		dims := data.Structure.Dimensions.Series
		for seriesKey, entry := range ds.Series {
			labels := resolveIndices(dims, seriesKey)
			for obsKey, obs := range entry.Observations {
				records = append(records, buildRecord(labels, obsKey, obs))
			}
		}
		return records
	}

	if len(ds.Observations) > 0 {
		dims := data.Structure.Dimensions.Observation
		for obsKey, obs := range ds.Observations {
			labels := resolveIndices(dims, obsKey)
			records = append(records, buildRecord(labels, "", obs))
		}
		return records
	}

	return nil
}

func resolveIndices(dims []dimension, key string) map[string]dimensionValue {
	indices := strings.Split(key, ":")
	labels := map[string]dimensionValue{}
	for i, dim := range dims {
		if i >= len(indices) {
			continue
		}
		idx, err := strconv.Atoi(indices[i])
		if err != nil || idx < 0 || idx >= len(dim.Values) {
			continue
		}
		labels[dim.ID] = dim.Values[idx]
	}
	return labels
}

func buildRecord(labels map[string]dimensionValue, timePeriod string, obs []interface{}) map[string]interface{} {
	record := map[string]interface{}{}
	if timePeriod != "" {
		record["TIME_PERIOD"] = timePeriod
	}
	for id, dv := range labels {
		record[id] = dv.Name
		record[id+"_ID"] = dv.ID
	}
	if len(obs) > 0 {
		record["value"] = obs[0]
	}
	return record
}
