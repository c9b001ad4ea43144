// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package alphavantage adapts the Alpha Vantage query API: company
// overviews, symbol search, and the four financial-statement endpoints.
package alphavantage

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	json "github.com/goccy/go-json"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/logging"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/httpclient"
)

const baseURL = "https://www.alphavantage.co/query"

// Adapter fetches from Alpha Vantage.
type Adapter struct {
	apiKey  string
	cache   *cache.Cache
	client  *httpclient.Client
	ttl     *config.TTLResolver
	credLog *logging.CredentialLogger
}

// New builds an Adapter. The cache passed in is the shared, process-wide cache.
func New(cfg *config.Config, c *cache.Cache) *Adapter {
	return &Adapter{
		apiKey:  cfg.AlphaVantage.APIKey,
		cache:   c,
		client:  httpclient.New("alpha_vantage", httpclient.WithTimeout(cfg.AlphaVantage.Timeout)),
		ttl:     config.NewTTLResolver(cfg),
		credLog: logging.NewCredentialLogger(),
	}
}

// IsAvailable reports whether an API key has been configured.
func (a *Adapter) IsAvailable() bool { return a.apiKey != "" }

// DataFreshness reports the storedAt time of a live cache entry, if any.
func (a *Adapter) DataFreshness(key string) (int64, bool) {
	e, ok := a.cache.GetEntry(key)
	if !ok {
		return 0, false
	}
	return e.StoredAt.UnixMilli(), true
}

// Overview is the projected OVERVIEW response per the spec's transformation rule.
type Overview struct {
	Symbol               string `json:"symbol"`
	MarketCapitalization int64  `json:"marketCapitalization"`
	Name                 string `json:"name"`
	Sector               string `json:"sector"`
	Industry             string `json:"industry"`
	Description          string `json:"description"`
	Currency             string `json:"currency"`
	Country              string `json:"country"`
	Exchange             string `json:"exchange"`
	EPS                  string `json:"EPS"`
	PERatio              string `json:"PERatio"`
}

type rawOverview map[string]interface{}

// GetCompanyOverview fetches OVERVIEW for symbol, classifying and caching
// per the rate-limit / no-data / transport-failure rules common to every
// Alpha Vantage call.
func (a *Adapter) GetCompanyOverview(ctx context.Context, symbol string) sources.Response {
	return a.call(ctx, "OVERVIEW", map[string]string{"symbol": symbol}, func(raw rawOverview) (interface{}, sources.Class) {
		mc, ok := raw["MarketCapitalization"]
		if !ok {
			return nil, sources.NoData
		}
		if s, isStr := mc.(string); isStr && s == "None" {
			return nil, sources.NoData
		}
		marketCap, _ := toInt64(mc)
		return Overview{
			Symbol:               symbol,
			MarketCapitalization: marketCap,
			Name:                 stringField(raw, "Name"),
			Sector:               stringField(raw, "Sector"),
			Industry:             stringField(raw, "Industry"),
			Description:          stringField(raw, "Description"),
			Currency:             "USD",
			Country:              stringField(raw, "Country"),
			Exchange:             stringField(raw, "Exchange"),
			EPS:                  stringField(raw, "EPS"),
			PERatio:              stringField(raw, "PERatio"),
		}, sources.Success
	})
}

// SearchResult is one SYMBOL_SEARCH match.
type SearchResult struct {
	Symbol string `json:"symbol"`
	Name   string `json:"name"`
	Type   string `json:"type"`
	Region string `json:"region"`
}

// SearchSymbols fetches SYMBOL_SEARCH for keywords.
func (a *Adapter) SearchSymbols(ctx context.Context, keywords string) sources.Response {
	type searchEnvelope struct {
		BestMatches []map[string]string `json:"bestMatches"`
	}
	op := "SYMBOL_SEARCH"
	params := map[string]string{"keywords": keywords}
	key := sources.CacheKey("alpha_vantage", op, toParamMap(params))

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData, Value: nil}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	raw, class, err := a.fetchRaw(ctx, op, params)
	if err != nil {
		ttl := a.ttl.Resolve("alpha_vantage", config.OutcomeNoData)
		if class == sources.TransportFailure && isTimeout(err) {
			ttl = a.ttl.Resolve("alpha_vantage", config.OutcomeSuccess)
		}
		a.cache.Set(key, cache.NullSentinel{}, ttl)
		return sources.Response{Class: class, Err: err}
	}
	if class != sources.Success {
		a.cacheNonSuccess(key, class)
		return sources.Response{Class: class}
	}

	var env searchEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.BestMatches) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("alpha_vantage", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	results := make([]SearchResult, 0, len(env.BestMatches))
	for _, m := range env.BestMatches {
		results = append(results, SearchResult{
			Symbol: m["1. symbol"],
			Name:   m["2. name"],
			Type:   m["3. type"],
			Region: m["4. region"],
		})
	}
	a.cache.Set(key, results, a.ttl.Resolve("alpha_vantage", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: results}
}

// FinancialStatement fetches one of INCOME_STATEMENT / BALANCE_SHEET / CASH_FLOW verbatim.
func (a *Adapter) FinancialStatement(ctx context.Context, function, symbol string) sources.Response {
	op := function
	params := map[string]string{"symbol": symbol}
	key := sources.CacheKey("alpha_vantage", op, toParamMap(params))

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	raw, class, err := a.fetchRaw(ctx, op, params)
	if err != nil {
		ttl := a.ttl.Resolve("alpha_vantage", config.OutcomeNoData)
		if class == sources.TransportFailure && isTimeout(err) {
			ttl = a.ttl.Resolve("alpha_vantage", config.OutcomeSuccess)
		}
		a.cache.Set(key, cache.NullSentinel{}, ttl)
		return sources.Response{Class: class, Err: err}
	}
	if class != sources.Success {
		a.cacheNonSuccess(key, class)
		return sources.Response{Class: class}
	}

	var body map[string]interface{}
	if err := json.Unmarshal(raw, &body); err != nil || len(body) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("alpha_vantage", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}
	a.cache.Set(key, body, a.ttl.Resolve("alpha_vantage", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: body}
}

func (a *Adapter) call(ctx context.Context, op string, params map[string]string, transform func(rawOverview) (interface{}, sources.Class)) sources.Response {
	key := sources.CacheKey("alpha_vantage", op, toParamMap(params))

	if v, ok := a.cache.Get(key); ok {
		if cache.IsNull(v) {
			return sources.Response{Class: sources.NoData}
		}
		return sources.Response{Class: sources.Success, Value: v}
	}

	raw, class, err := a.fetchRaw(ctx, op, params)
	if err != nil {
		// Alpha Vantage timeouts use the success TTL, not the no-data TTL —
		// a deliberate, spec-preserved asymmetry.
		ttl := a.ttl.Resolve("alpha_vantage", config.OutcomeNoData)
		if class == sources.TransportFailure && isTimeout(err) {
			ttl = a.ttl.Resolve("alpha_vantage", config.OutcomeSuccess)
		}
		a.cache.Set(key, cache.NullSentinel{}, ttl)
		return sources.Response{Class: class, Err: err}
	}
	if class != sources.Success {
		a.cacheNonSuccess(key, class)
		return sources.Response{Class: class}
	}

	var body rawOverview
	if err := json.Unmarshal(raw, &body); err != nil || len(body) == 0 {
		a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("alpha_vantage", config.OutcomeNoData))
		return sources.Response{Class: sources.NoData}
	}

	value, resultClass := transform(body)
	if resultClass != sources.Success {
		a.cacheNonSuccess(key, resultClass)
		return sources.Response{Class: resultClass}
	}
	a.cache.Set(key, value, a.ttl.Resolve("alpha_vantage", config.OutcomeSuccess))
	return sources.Response{Class: sources.Success, Value: value}
}

func (a *Adapter) cacheNonSuccess(key string, class sources.Class) {
	outcome := config.OutcomeNoData
	if class == sources.RateLimited {
		outcome = config.OutcomeRateLimited
	}
	a.cache.Set(key, cache.NullSentinel{}, a.ttl.Resolve("alpha_vantage", outcome))
}

// fetchRaw issues the HTTP request and returns the raw body bytes along
// with the in-band classification: rate-limit note, "Error Message"
// field, or empty object are all detected here before any per-op parsing.
func (a *Adapter) fetchRaw(ctx context.Context, function string, params map[string]string) ([]byte, sources.Class, error) {
	if !a.IsAvailable() {
		return nil, sources.TransportFailure, sources.DisabledError("Alpha Vantage", "ALPHA_VANTAGE_API_KEY")
	}

	q := url.Values{}
	q.Set("function", function)
	q.Set("apikey", a.apiKey)
	for k, v := range params {
		q.Set(k, v)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, baseURL+"?"+q.Encode(), nil)
	if err != nil {
		return nil, sources.TransportFailure, err
	}

	var raw json.RawMessage
	status, err := a.client.DecodeJSON(ctx, req, &raw)
	if err != nil {
		return nil, sources.TransportFailure, err
	}
	if status != http.StatusOK {
		return nil, sources.TransportFailure, fmt.Errorf("alphavantage: unexpected status %d", status)
	}

	var probe map[string]interface{}
	if err := json.Unmarshal(raw, &probe); err != nil {
		return nil, sources.TransportFailure, err
	}
	if len(probe) == 0 {
		return nil, sources.NoData, nil
	}
	if note, ok := probe["Note"]; ok {
		if s, isStr := note.(string); isStr && s != "" {
			a.credLog.LogUpstreamRateLimited("alpha_vantage")
			return nil, sources.RateLimited, nil
		}
	}
	if msg, ok := probe["Information"]; ok {
		if s, isStr := msg.(string); isStr && containsRateLimitHint(s) {
			a.credLog.LogUpstreamRateLimited("alpha_vantage")
			return nil, sources.RateLimited, nil
		}
	}
	if errMsg, ok := probe["Error Message"]; ok {
		if s, isStr := errMsg.(string); isStr && s != "" {
			return nil, sources.TransportFailure, fmt.Errorf("alphavantage: %s", s)
		}
	}

	return raw, sources.Success, nil
}

func containsRateLimitHint(s string) bool {
	for _, needle := range []string{"rate limit", "call frequency", "higher API call volume"} {
		if containsFold(s, needle) {
			return true
		}
	}
	return false
}

func containsFold(haystack, needle string) bool {
	h, n := []rune(haystack), []rune(needle)
	if len(n) == 0 || len(n) > len(h) {
		return len(n) == 0
	}
	lower := func(r rune) rune {
		if r >= 'A' && r <= 'Z' {
			return r + ('a' - 'A')
		}
		return r
	}
	for i := 0; i+len(n) <= len(h); i++ {
		match := true
		for j := range n {
			if lower(h[i+j]) != lower(n[j]) {
				match = false
				break
			}
		}
		if match {
			return true
		}
	}
	return false
}

func isTimeout(err error) bool {
	type timeouter interface{ Timeout() bool }
	if t, ok := err.(timeouter); ok {
		return t.Timeout()
	}
	return false
}

func stringField(m rawOverview, key string) string {
	if v, ok := m[key]; ok {
		if s, isStr := v.(string); isStr {
			return s
		}
	}
	return ""
}

func toInt64(v interface{}) (int64, bool) {
	switch t := v.(type) {
	case string:
		n, err := strconv.ParseInt(t, 10, 64)
		return n, err == nil
	case float64:
		return int64(t), true
	default:
		return 0, false
	}
}

func toParamMap(params map[string]string) map[string]interface{} {
	out := make(map[string]interface{}, len(params))
	for k, v := range params {
		out[k] = v
	}
	return out
}
