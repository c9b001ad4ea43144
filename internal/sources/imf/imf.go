// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package imf adapts the IMF CompactData endpoint, which returns
// SDMX-JSON Compact: series and observations are keyed by ":"-delimited
// dimension-index tuples that must be resolved against a structure
// definition shipped in the same payload.
package imf

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

const baseURL = "https://dataservices.imf.org/REST/SDMX_JSON.svc/CompactData"

// Adapter fetches from the IMF SDMX-JSON API. IMF accepts anonymous
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
		client: httpclient.New("imf", httpclient.WithTimeout(cfg.IMF.Timeout)),
		ttl:    config.NewTTLResolver(cfg),
	}
}

// IsAvailable is always true: IMF accepts anonymous access.
func (a *Adapter) IsAvailable() bool { return true }

type dimensionValue struct {
	ID   string `json:"@id"`
	Name string `json:"@value"`
}

type dimension struct {
	ID     string           `json:"@id"`
	Values []dimensionValue `json:"Value"`
}

type compactData struct {
	Structure struct {
		Dimensions struct {
			Series []dimension `json:"Series"`
		} `json:"dimensions"`
		Attributes struct {
			Series []dimension `json:"Series"`
		} `json:"attributes"`
	} `json:"structure"`
	DataSets []struct {
		Series map[string]rawSeries `json:"series"`
	} `json:"dataSets"`
}

type rawSeries struct {
	Attributes   []string            `json:"attributes"`
	Observations map[string][]string `json:"observations"`
}

// GetDataset parses the full CompactData response into a flattened
// array of observation records, one per observation across every series.
func (a *Adapter) GetDataset(ctx context.Context, dataflowID, seriesKey, startPeriod, endPeriod string) sources.Response {
	params := map[string]interface{}{
		"dataflow":    dataflowID,
		"key":         seriesKey,
		"startPeriod": startPeriod,
		"endPeriod":   endPeriod,
	}
	key := sources.CacheKey("imf", "CompactData", params)

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	raw, status, err := a.fetch(ctx, dataflowID, seriesKey, startPeriod, endPeriod)
	if err != nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("imf", config.OutcomeNoData))
		return sources.Response{Class: sources.TransportFailure, Err: err}
	}
	if status != http.StatusOK {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("imf", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	records := flatten(raw)
	if records == nil {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("imf", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	a.cache.Set(key, records, a.ttl.Resolve("imf", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: records}
}

// GetLatestObservation returns only the most recent record from GetDataset.
func (a *Adapter) GetLatestObservation(ctx context.Context, dataflowID, seriesKey string) sources.Response {
	resp := a.GetDataset(ctx, dataflowID, seriesKey, "", "")
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
// iteration over the observations keyed by series and is not chronological.
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

func (a *Adapter) fetch(ctx context.Context, dataflowID, seriesKey, startPeriod, endPeriod string) (compactData, int, error) {
	q := url.Values{}
	if startPeriod != "" {
		q.Set("startPeriod", startPeriod)
	}
	if endPeriod != "" {
		q.Set("endPeriod", endPeriod)
	}

	reqURL := baseURL + "/" + dataflowID + "/" + seriesKey
	if len(q) > 0 {
		reqURL += "?" + q.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return compactData{}, 0, err
	}

	var body compactData
	status, err := a.client.DecodeJSON(ctx, req, &body)
	return body, status, err
}

// flatten resolves each series' ":"-delimited dimension-index key against
// the structure's dimension value lists, and emits one flattened record
// per observation. Returns nil if structure.dimensions.series is absent.
func flatten(data compactData) []map[string]interface{} {
	dims := data.Structure.Dimensions.Series
	if dims == nil {
		return nil
	}
	attrDims := data.Structure.Attributes.Series

	var records []map[string]interface{}
	for seriesKey, series := range flattenAllDataSets(data) {
		indices := strings.Split(seriesKey, ":")

		dimLabels := map[string]dimensionValue{}
		for i, dim := range dims {
			if i >= len(indices) {
				continue
			}
			idx, err := strconv.Atoi(indices[i])
			if err != nil || idx < 0 || idx >= len(dim.Values) {
				continue
			}
			dimLabels[dim.ID] = dim.Values[idx]
		}

		for obsKey, obs := range series.Observations {
			if len(obs) == 0 {
				continue
			}
			record := map[string]interface{}{"TIME_PERIOD": obsKey}
			for id, dv := range dimLabels {
				record[id] = dv.Name
				record[id+"_ID"] = dv.ID
			}
			record["value"] = obs[0]

			for i, attr := range series.Attributes {
				if i >= len(attrDims) {
					break
				}
				idx, err := strconv.Atoi(attr)
				if err != nil || idx < 0 || idx >= len(attrDims[i].Values) {
					continue
				}
				dv := attrDims[i].Values[idx]
				record[attrDims[i].ID] = dv.Name
				record[attrDims[i].ID+"_ID"] = dv.ID
			}

			records = append(records, record)
		}
	}
	return records
}

func flattenAllDataSets(data compactData) map[string]rawSeries {
	merged := map[string]rawSeries{}
	for _, ds := range data.DataSets {
		for k, v := range ds.Series {
			merged[k] = v
		}
	}
	return merged
}
