// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package dataservice holds one instance of every source adapter and
// implements the tool-facing operations that route to them: pass-through
// fetches, multi-source industry search, and deterministic TAM / market
// size / company financials calculations.
package dataservice

import (
	"context"
	"regexp"
	"sort"
	"strings"
	"sync"

	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/alphavantage"
	"github.com/tomtom215/marketdata-mcp/internal/sources/bls"
	"github.com/tomtom215/marketdata-mcp/internal/sources/census"
	"github.com/tomtom215/marketdata-mcp/internal/sources/fred"
	"github.com/tomtom215/marketdata-mcp/internal/sources/imf"
	"github.com/tomtom215/marketdata-mcp/internal/sources/nasdaq"
	"github.com/tomtom215/marketdata-mcp/internal/sources/oecd"
	"github.com/tomtom215/marketdata-mcp/internal/sources/worldbank"
)

// Service holds every source adapter and implements the tool-facing operations.
type Service struct {
	Cfg *config.Config

	AlphaVantage *alphavantage.Adapter
	BLS          *bls.Adapter
	Census       *census.Adapter
	FRED         *fred.Adapter
	IMF          *imf.Adapter
	Nasdaq       *nasdaq.Adapter
	OECD         *oecd.Adapter
	WorldBank    *worldbank.Adapter
}

// New constructs a Service with one adapter per source, all sharing the
// same cache instance passed in.
func New(cfg *config.Config, sharedCache *cache.Cache) *Service {
	return &Service{
		Cfg:          cfg,
		AlphaVantage: alphavantage.New(cfg, sharedCache),
		BLS:          bls.New(cfg, sharedCache),
		Census:       census.New(cfg, sharedCache),
		FRED:         fred.New(cfg, sharedCache),
		IMF:          imf.New(cfg, sharedCache),
		Nasdaq:       nasdaq.New(cfg, sharedCache),
		OECD:         oecd.New(cfg, sharedCache),
		WorldBank:    worldbank.New(cfg, sharedCache),
	}
}

var (
	stockSymbolPattern = regexp.MustCompile(`^[A-Z]{1,5}$`)
	naicsCodePattern   = regexp.MustCompile(`^\d{2,6}$`)
)

// Industry is the normalized search result DTO.
type Industry struct {
	IndustryID     string            `json:"industryId"`
	Name           string            `json:"name"`
	Description    string            `json:"description"`
	Codes          map[string]string `json:"codes"`
	Geography      string            `json:"geography"`
	MarketSize     float64           `json:"marketSize"`
	Currency       string            `json:"currency"`
	Year           string            `json:"year"`
	SourceDetails  []string          `json:"sourceDetails"`
	LastUpdated    string            `json:"lastUpdated"`
	RelevanceScore float64           `json:"relevanceScore"`
	SourceName     string            `json:"sourceName"`
}

// SearchError names a source that failed during a fan-out search.
type SearchError struct {
	Source  string `json:"source"`
	Message string `json:"message"`
}

// SearchResult is searchIndustries' full response envelope.
type SearchResult struct {
	Results []Industry    `json:"results"`
	Errors  []SearchError `json:"errors"`
}

// SearchIndustries fans out to the permitted sources' search/lookup
// capability in parallel, scores by token overlap, drops below
// threshold, sorts deterministically, and caps at limit.
func (s *Service) SearchIndustries(ctx context.Context, query string, allowedSources []string, limit int, minRelevanceScore float64, geographyFilter string) SearchResult {
	if limit <= 0 {
		limit = 10
	}

	type partial struct {
		items []Industry
		err   *SearchError
	}

	candidates := s.searchCandidates(allowedSources)
	results := make([]partial, len(candidates))

	var wg sync.WaitGroup
	for i, c := range candidates {
		wg.Add(1)
		go func(i int, c searchCandidate) {
			defer wg.Done()
			items, err := c.search(ctx, query, geographyFilter)
			if err != nil {
				results[i] = partial{err: &SearchError{Source: c.name, Message: err.Error()}}
				return
			}
			results[i] = partial{items: items}
		}(i, c)
	}
	wg.Wait()

	var all []Industry
	var errs []SearchError
	for _, r := range results {
		if r.err != nil {
			errs = append(errs, *r.err)
			continue
		}
		all = append(all, r.items...)
	}

	scored := make([]Industry, 0, len(all))
	for _, ind := range all {
		ind.RelevanceScore = tokenOverlapScore(query, ind.Name+" "+ind.Description+" "+codesToString(ind.Codes))
		if ind.RelevanceScore >= minRelevanceScore {
			scored = append(scored, ind)
		}
	}

	sort.Slice(scored, func(i, j int) bool {
		if scored[i].RelevanceScore != scored[j].RelevanceScore {
			return scored[i].RelevanceScore > scored[j].RelevanceScore
		}
		if scored[i].SourceName != scored[j].SourceName {
			return scored[i].SourceName < scored[j].SourceName
		}
		return scored[i].IndustryID < scored[j].IndustryID
	})

	if len(scored) > limit {
		scored = scored[:limit]
	}

	return SearchResult{Results: scored, Errors: errs}
}

type searchCandidate struct {
	name   string
	search func(ctx context.Context, query, geography string) ([]Industry, error)
}

func (s *Service) searchCandidates(allowed []string) []searchCandidate {
	all := []searchCandidate{
		{name: "alpha_vantage", search: s.searchAlphaVantage},
		{name: "census", search: s.searchCensus},
		{name: "world_bank", search: s.searchWorldBank},
	}
	if len(allowed) == 0 {
		return all
	}
	allowedSet := make(map[string]bool, len(allowed))
	for _, a := range allowed {
		allowedSet[a] = true
	}
	filtered := make([]searchCandidate, 0, len(all))
	for _, c := range all {
		if allowedSet[c.name] {
			filtered = append(filtered, c)
		}
	}
	return filtered
}

func (s *Service) searchAlphaVantage(ctx context.Context, query, _ string) ([]Industry, error) {
	resp := s.AlphaVantage.SearchSymbols(ctx, query)
	if resp.Err != nil {
		return nil, resp.Err
	}
	results, ok := resp.Value.([]alphavantage.SearchResult)
	if !ok {
		return nil, nil
	}
	items := make([]Industry, 0, len(results))
	for _, r := range results {
		items = append(items, Industry{
			IndustryID:  r.Symbol,
			Name:        r.Name,
			Description: r.Type + " listed in " + r.Region,
			Codes:       map[string]string{"symbol": r.Symbol},
			Geography:   r.Region,
			SourceName:  "alpha_vantage",
		})
	}
	return items, nil
}

func (s *Service) searchCensus(ctx context.Context, query, geography string) ([]Industry, error) {
	if geography == "" {
		geography = "us:*"
	}
	resp := s.Census.FetchIndustryData(ctx, "2021", "cbp", []string{"NAICS2017_LABEL", "EMP"}, geography, nil)
	if resp.Err != nil {
		return nil, resp.Err
	}
	records, ok := resp.Value.([]map[string]interface{})
	if !ok {
		return nil, nil
	}
	items := make([]Industry, 0, len(records))
	for _, rec := range records {
		label, _ := rec["NAICS2017_LABEL"].(string)
		items = append(items, Industry{
			IndustryID:  label,
			Name:        label,
			Description: label,
			Codes:       map[string]string{"NAICS": label},
			Geography:   geography,
			SourceName:  "census",
		})
	}
	return items, nil
}

func (s *Service) searchWorldBank(ctx context.Context, query, geography string) ([]Industry, error) {
	if geography == "" {
		geography = "WLD"
	}
	resp := s.WorldBank.FetchMarketSize(ctx, geography, query)
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Class != sources.Success {
		return nil, nil
	}
	return []Industry{{
		IndustryID:  query,
		Name:        query,
		Description: "World Bank indicator lookup for " + query,
		Codes:       map[string]string{},
		Geography:   geography,
		SourceName:  "world_bank",
	}}, nil
}

func codesToString(codes map[string]string) string {
	var b strings.Builder
	for _, v := range codes {
		b.WriteString(v)
		b.WriteByte(' ')
	}
	return b.String()
}

// tokenOverlapScore scores query against haystack by the fraction of
// query tokens present in haystack, case-insensitively.
func tokenOverlapScore(query, haystack string) float64 {
	qTokens := tokenize(query)
	if len(qTokens) == 0 {
		return 0
	}
	hTokens := map[string]bool{}
	for _, t := range tokenize(haystack) {
		hTokens[t] = true
	}
	matched := 0
	for _, t := range qTokens {
		if hTokens[t] {
			matched++
		}
	}
	return float64(matched) / float64(len(qTokens))
}

func tokenize(s string) []string {
	fields := strings.FieldsFunc(strings.ToLower(s), func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= '0' && r <= '9')
	})
	return fields
}

// RouteMarketSizeQuery classifies an industryQuery string per the
// routing heuristic: stock symbol, NAICS code, or neither.
func RouteMarketSizeQuery(industryQuery string) string {
	if stockSymbolPattern.MatchString(industryQuery) {
		return "alpha_vantage"
	}
	if naicsCodePattern.MatchString(industryQuery) {
		return "census"
	}
	return "world_bank"
}

// SegmentationAdjustment narrows a TAM projection's final year by factor.
type SegmentationAdjustment struct {
	Factor float64 `json:"factor"`
}

// TamResult is calculateTam's full response.
type TamResult struct {
	BaseMarketSize  float64   `json:"baseMarketSize"`
	ProjectionYears int       `json:"projectionYears"`
	YearByYear      []float64 `json:"yearByYear"`
	FinalYearValue  float64   `json:"finalYearValue"`
	Assumptions     []string  `json:"assumptions"`
}

// CalculateTam projects baseMarketSize forward by annualGrowthRate for
// projectionYears, applying segmentationAdjustments.Factor to the final
// year only. yearByYear[i] holds the projection for year i+1.
func (s *Service) CalculateTam(baseMarketSize, annualGrowthRate float64, projectionYears int, segmentation *SegmentationAdjustment) TamResult {
	yearByYear := make([]float64, projectionYears)
	for i := 1; i <= projectionYears; i++ {
		yearByYear[i-1] = baseMarketSize * pow(1+annualGrowthRate, i)
	}

	assumptions := []string{
		"constant annual growth rate applied uniformly across the projection window",
	}

	finalYear := 0.0
	if projectionYears > 0 {
		finalYear = yearByYear[projectionYears-1]
	}
	if segmentation != nil && projectionYears > 0 {
		finalYear *= segmentation.Factor
		yearByYear[projectionYears-1] = finalYear
		assumptions = append(assumptions, "segmentation factor applied to the final projection year only")
	}

	return TamResult{
		BaseMarketSize:  baseMarketSize,
		ProjectionYears: projectionYears,
		YearByYear:      yearByYear,
		FinalYearValue:  finalYear,
		Assumptions:     assumptions,
	}
}

// ForecastResult is the typed response for tools that project a compound
// annual growth rate rather than aggregating a point-in-time market size
// (tam_analysis, market_forecasting), so the dispatcher can inspect
// ImpliedCagr for the large-forecast-CAGR business event without parsing
// an untyped map.
type ForecastResult struct {
	Tam         *TamResult `json:"tam,omitempty"`
	LowCase     *TamResult `json:"lowCase,omitempty"`
	HighCase    *TamResult `json:"highCase,omitempty"`
	ImpliedCagr float64    `json:"impliedCagr"`
}

func pow(base float64, exp int) float64 {
	result := 1.0
	for i := 0; i < exp; i++ {
		result *= base
	}
	return result
}

// MarketSizeResult is calculateMarketSize's aggregate response. A nil
// EstimatedMarketSize means no configured source returned data.
type MarketSizeResult struct {
	EstimatedMarketSize *float64 `json:"estimatedMarketSize"`
	Currency            string   `json:"currency"`
	Year                string   `json:"year"`
	DataSourcesUsed     []string `json:"dataSourcesUsed"`
	ConfidenceScore     float64  `json:"confidenceScore"`
	MethodologyUsed     string   `json:"methodologyUsed"`
}

// CalculateMarketSize routes industryQuery to the adapter best suited to
// answer it (stock symbol -> Alpha Vantage, NAICS code -> Census,
// otherwise World Bank then FRED) and aggregates whichever source
// actually returns data.
func (s *Service) CalculateMarketSize(ctx context.Context, industryQuery string, geographyCodes []string, indicatorCodes []string, year string, methodology string) MarketSizeResult {
	route := RouteMarketSizeQuery(industryQuery)
	geography := "US"
	if len(geographyCodes) > 0 {
		geography = geographyCodes[0]
	}
	indicator := ""
	if len(indicatorCodes) > 0 {
		indicator = indicatorCodes[0]
	}

	result := MarketSizeResult{Currency: "USD", Year: year, MethodologyUsed: methodology}

	switch route {
	case "alpha_vantage":
		resp := s.AlphaVantage.GetCompanyOverview(ctx, industryQuery)
		if resp.Class == sources.Success {
			if ov, ok := resp.Value.(alphavantage.Overview); ok {
				v := float64(ov.MarketCapitalization)
				result.EstimatedMarketSize = &v
				result.Currency = ov.Currency
				result.DataSourcesUsed = append(result.DataSourcesUsed, "alpha_vantage")
				result.ConfidenceScore = 0.9
				return result
			}
		}
	case "census":
		resp := s.Census.FetchMarketSize(ctx, yearOrDefault(year), industryQuery, "EMP")
		if resp.Class == sources.Success {
			if records, ok := resp.Value.([]map[string]interface{}); ok && len(records) > 0 {
				if emp, ok := records[0]["EMP"].(int64); ok {
					v := float64(emp)
					result.EstimatedMarketSize = &v
					result.DataSourcesUsed = append(result.DataSourcesUsed, "census")
					result.ConfidenceScore = 0.75
					return result
				}
			}
		}
	}

	if indicator != "" {
		wbResp := s.WorldBank.GetIndicatorData(ctx, geography, indicator, 1)
		if wbResp.Class == sources.Success {
			result.DataSourcesUsed = append(result.DataSourcesUsed, "world_bank")
			result.ConfidenceScore = 0.6
			return result
		}
	}
	wbResp := s.WorldBank.FetchMarketSize(ctx, geography, industryQuery)
	if wbResp.Class == sources.Success {
		result.DataSourcesUsed = append(result.DataSourcesUsed, "world_bank")
		result.ConfidenceScore = 0.6
		return result
	}

	fredResp := s.FRED.FetchMarketSize(ctx, industryQuery, geography)
	if fredResp.Class == sources.Success {
		if obs, ok := fredResp.Value.(fred.MarketSizeObservation); ok {
			v := obs.Value
			result.EstimatedMarketSize = &v
			result.DataSourcesUsed = append(result.DataSourcesUsed, "fred")
			result.ConfidenceScore = 0.5
			return result
		}
	}

	return result
}

func yearOrDefault(year string) string {
	if year == "" {
		return "2021"
	}
	return year
}

// GetCompanyFinancials routes to the requested Alpha Vantage statement
// endpoint and slices the annual or quarterly report list to limit.
func (s *Service) GetCompanyFinancials(ctx context.Context, companySymbol, statementType, period string, limit int) sources.Response {
	function := map[string]string{
		"overview":          "OVERVIEW",
		"income_statement":  "INCOME_STATEMENT",
		"balance_sheet":     "BALANCE_SHEET",
		"cash_flow":         "CASH_FLOW",
	}[statementType]
	if function == "" {
		function = "OVERVIEW"
	}

	if function == "OVERVIEW" {
		return s.AlphaVantage.GetCompanyOverview(ctx, companySymbol)
	}

	resp := s.AlphaVantage.FinancialStatement(ctx, function, companySymbol)
	if resp.Class != sources.Success {
		return resp
	}

	body, ok := resp.Value.(map[string]interface{})
	if !ok {
		return resp
	}

	reportsKey := "annualReports"
	if period == "quarterly" {
		reportsKey = "quarterlyReports"
	}
	reports, ok := body[reportsKey].([]interface{})
	if !ok {
		return resp
	}
	if limit > 0 && limit < len(reports) {
		reports = reports[:limit]
	}
	body[reportsKey] = reports
	return sources.Response{Class: sources.Success, Value: body}
}
