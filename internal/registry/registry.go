// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package registry is the build-time-constant catalog mapping every tool
// name to its description, argument schema, and handler binding. The
// Dispatcher looks tools up here; nothing in this package talks to a
// network or a cache directly.
package registry

import (
	"context"
	"fmt"

	"github.com/tomtom215/marketdata-mcp/internal/dataservice"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
	"github.com/tomtom215/marketdata-mcp/internal/sources/bls"
	"github.com/tomtom215/marketdata-mcp/internal/sources/fred"
	"github.com/tomtom215/marketdata-mcp/internal/sources/nasdaq"
)

// ArgType names the JSON-Schema-compatible primitive type of an argument.
type ArgType string

const (
	TypeString ArgType = "string"
	TypeNumber ArgType = "number"
	TypeInt    ArgType = "integer"
	TypeBool   ArgType = "boolean"
	TypeArray  ArgType = "array"
	TypeObject ArgType = "object"
)

// ArgSchema describes one tool argument: its type, whether it is
// required, and its default when omitted.
type ArgSchema struct {
	Name        string
	Type        ArgType
	Description string
	Default     interface{}
	Required    bool
}

// Handler executes a tool call against a DataService instance. Args have
// already had defaults filled in by the Dispatcher.
type Handler func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error)

// Category groups tools for availability reporting and tools/list ordering.
type Category string

const (
	CategoryDirectSource  Category = "direct_source"
	CategoryBasicAnalysis Category = "basic_analysis"
	CategoryAdvanced      Category = "advanced_business"
)

// Tool is one catalog entry: name, human-readable description, argument
// schema, the adapters it depends on (for availability computation), and
// its handler.
type Tool struct {
	Name        string
	Description string
	Category    Category
	Args        []ArgSchema
	Requires    []string // source identifiers this tool's handler depends on
	Handler     Handler
}

// JSONSchema projects a Tool's argument list into a JSON-Schema object,
// the shape tools/list advertises per argument.
func (t Tool) JSONSchema() map[string]interface{} {
	properties := map[string]interface{}{}
	var required []string
	for _, a := range t.Args {
		prop := map[string]interface{}{"type": string(a.Type)}
		if a.Description != "" {
			prop["description"] = a.Description
		}
		if a.Default != nil {
			prop["default"] = a.Default
		}
		properties[a.Name] = prop
		if a.Required {
			required = append(required, a.Name)
		}
	}
	schema := map[string]interface{}{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		schema["required"] = required
	}
	return schema
}

// Catalog holds every registered tool, keyed by name.
type Catalog struct {
	tools map[string]Tool
	order []string
}

// New builds the full, fixed 28-tool catalog.
func New() *Catalog {
	c := &Catalog{tools: map[string]Tool{}}
	for _, t := range buildTools() {
		c.tools[t.Name] = t
		c.order = append(c.order, t.Name)
	}
	return c
}

// Lookup returns a tool by name.
func (c *Catalog) Lookup(name string) (Tool, bool) {
	t, ok := c.tools[name]
	return t, ok
}

// List returns every tool in catalog (registration) order.
func (c *Catalog) List() []Tool {
	out := make([]Tool, 0, len(c.order))
	for _, name := range c.order {
		out = append(out, c.tools[name])
	}
	return out
}

// --- argument extraction helpers -------------------------------------

func argString(args map[string]interface{}, name string) string {
	if v, ok := args[name]; ok {
		if s, ok := v.(string); ok {
			return s
		}
	}
	return ""
}

func argFloat(args map[string]interface{}, name string) float64 {
	switch v := args[name].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	}
	return 0
}

func argInt(args map[string]interface{}, name string) int {
	switch v := args[name].(type) {
	case float64:
		return int(v)
	case int:
		return v
	}
	return 0
}

func argStringSlice(args map[string]interface{}, name string) []string {
	v, ok := args[name]
	if !ok {
		return nil
	}
	switch t := v.(type) {
	case []string:
		return t
	case []interface{}:
		out := make([]string, 0, len(t))
		for _, e := range t {
			if s, ok := e.(string); ok {
				out = append(out, s)
			}
		}
		return out
	}
	return nil
}

func argStringMap(args map[string]interface{}, name string) map[string]string {
	v, ok := args[name]
	if !ok {
		return nil
	}
	m, ok := v.(map[string]interface{})
	if !ok {
		return nil
	}
	out := make(map[string]string, len(m))
	for k, val := range m {
		if s, ok := val.(string); ok {
			out[k] = s
		}
	}
	return out
}

// responseValue unwraps a sources.Response into (value, error) for
// handlers that pass an adapter call straight through.
func responseValue(resp sources.Response) (interface{}, error) {
	if resp.Err != nil {
		return nil, resp.Err
	}
	if resp.Class != sources.Success {
		return nil, nil
	}
	return resp.Value, nil
}

func buildTools() []Tool {
	var tools []Tool
	tools = append(tools, directSourceTools()...)
	tools = append(tools, basicAnalysisTools()...)
	tools = append(tools, advancedBusinessTools()...)
	return tools
}

// --- direct data-source tools (13) -----------------------------------

func directSourceTools() []Tool {
	return []Tool{
		{
			Name:        "alphaVantage_getCompanyOverview",
			Description: "Fetch Alpha Vantage's OVERVIEW endpoint for a stock symbol.",
			Category:    CategoryDirectSource,
			Requires:    []string{"alpha_vantage"},
			Args: []ArgSchema{
				{Name: "symbol", Type: TypeString, Default: "AAPL", Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.AlphaVantage.GetCompanyOverview(ctx, argString(args, "symbol")))
			},
		},
		{
			Name:        "alphaVantage_searchSymbols",
			Description: "Search Alpha Vantage symbols by keyword.",
			Category:    CategoryDirectSource,
			Requires:    []string{"alpha_vantage"},
			Args: []ArgSchema{
				{Name: "keywords", Type: TypeString, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.AlphaVantage.SearchSymbols(ctx, argString(args, "keywords")))
			},
		},
		{
			Name:        "bls_getSeriesData",
			Description: "Fetch one or more BLS timeseries by series ID.",
			Category:    CategoryDirectSource,
			Requires:    []string{"bls"},
			Args: []ArgSchema{
				{Name: "seriesIds", Type: TypeArray, Required: true},
				{Name: "startYear", Type: TypeString},
				{Name: "endYear", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.BLS.GetSeriesData(ctx, bls.Options{
					SeriesIDs: argStringSlice(args, "seriesIds"),
					StartYear: argString(args, "startYear"),
					EndYear:   argString(args, "endYear"),
				}))
			},
		},
		{
			Name:        "census_fetchIndustryData",
			Description: "Run a tabular Census Bureau query over an arbitrary dataset path.",
			Category:    CategoryDirectSource,
			Requires:    []string{"census"},
			Args: []ArgSchema{
				{Name: "year", Type: TypeString, Default: "2021", Required: true},
				{Name: "dataset", Type: TypeString, Default: "cbp", Required: true},
				{Name: "variables", Type: TypeArray, Required: true},
				{Name: "forGeography", Type: TypeString, Default: "us:*"},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.Census.FetchIndustryData(ctx,
					argString(args, "year"), argString(args, "dataset"),
					argStringSlice(args, "variables"), argString(args, "forGeography"),
					argStringMap(args, "extra")))
			},
		},
		{
			Name:        "census_fetchMarketSize",
			Description: "Fetch County Business Patterns market-size variables for a NAICS code.",
			Category:    CategoryDirectSource,
			Requires:    []string{"census"},
			Args: []ArgSchema{
				{Name: "year", Type: TypeString, Default: "2021", Required: true},
				{Name: "naicsCode", Type: TypeString, Required: true},
				{Name: "variable", Type: TypeString, Default: "EMP"},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.Census.FetchMarketSize(ctx,
					argString(args, "year"), argString(args, "naicsCode"), argString(args, "variable")))
			},
		},
		{
			Name:        "fred_getSeriesObservations",
			Description: "Fetch FRED observations for a series ID.",
			Category:    CategoryDirectSource,
			Requires:    []string{"fred"},
			Args: []ArgSchema{
				{Name: "seriesId", Type: TypeString, Required: true},
				{Name: "limit", Type: TypeInt},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.FRED.GetSeriesObservations(ctx, argString(args, "seriesId"),
					fred.Options{Limit: argInt(args, "limit")}))
			},
		},
		{
			Name:        "imf_getDataset",
			Description: "Fetch and flatten an IMF SDMX-JSON CompactData dataset.",
			Category:    CategoryDirectSource,
			Requires:    []string{"imf"},
			Args: []ArgSchema{
				{Name: "dataflowId", Type: TypeString, Required: true},
				{Name: "seriesKey", Type: TypeString, Required: true},
				{Name: "startPeriod", Type: TypeString},
				{Name: "endPeriod", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.IMF.GetDataset(ctx, argString(args, "dataflowId"), argString(args, "seriesKey"),
					argString(args, "startPeriod"), argString(args, "endPeriod")))
			},
		},
		{
			Name:        "imf_getLatestObservation",
			Description: "Fetch the most recent observation of an IMF dataset.",
			Category:    CategoryDirectSource,
			Requires:    []string{"imf"},
			Args: []ArgSchema{
				{Name: "dataflowId", Type: TypeString, Required: true},
				{Name: "seriesKey", Type: TypeString, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.IMF.GetLatestObservation(ctx, argString(args, "dataflowId"), argString(args, "seriesKey")))
			},
		},
		{
			Name:        "nasdaq_getDatasetTimeSeries",
			Description: "Fetch a Nasdaq Data Link dataset's full time series.",
			Category:    CategoryDirectSource,
			Requires:    []string{"nasdaq_data_link"},
			Args: []ArgSchema{
				{Name: "database", Type: TypeString, Required: true},
				{Name: "dataset", Type: TypeString, Required: true},
				{Name: "limit", Type: TypeInt},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.Nasdaq.GetDatasetTimeSeries(ctx, argString(args, "database"), argString(args, "dataset"),
					nasdaq.Options{Limit: argInt(args, "limit")}))
			},
		},
		{
			Name:        "nasdaq_getLatestDatasetValue",
			Description: "Fetch the most recent value of a named column from a Nasdaq dataset.",
			Category:    CategoryDirectSource,
			Requires:    []string{"nasdaq_data_link"},
			Args: []ArgSchema{
				{Name: "database", Type: TypeString, Required: true},
				{Name: "dataset", Type: TypeString, Required: true},
				{Name: "valueColumn", Type: TypeString, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.Nasdaq.GetLatestDatasetValue(ctx, argString(args, "database"), argString(args, "dataset"),
					argString(args, "valueColumn")))
			},
		},
		{
			Name:        "oecd_getDataset",
			Description: "Fetch and flatten an OECD SDMX-JSON dataset.",
			Category:    CategoryDirectSource,
			Requires:    []string{"oecd"},
			Args: []ArgSchema{
				{Name: "datasetId", Type: TypeString, Required: true},
				{Name: "filterExpr", Type: TypeString, Required: true},
				{Name: "startPeriod", Type: TypeString},
				{Name: "endPeriod", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.OECD.GetDataset(ctx, argString(args, "datasetId"), argString(args, "filterExpr"),
					argString(args, "startPeriod"), argString(args, "endPeriod")))
			},
		},
		{
			Name:        "oecd_getLatestObservation",
			Description: "Fetch the most recent observation of an OECD dataset.",
			Category:    CategoryDirectSource,
			Requires:    []string{"oecd"},
			Args: []ArgSchema{
				{Name: "datasetId", Type: TypeString, Required: true},
				{Name: "filterExpr", Type: TypeString, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.OECD.GetLatestObservation(ctx, argString(args, "datasetId"), argString(args, "filterExpr")))
			},
		},
		{
			Name:        "worldBank_getIndicatorData",
			Description: "Fetch World Bank indicator observations for a country.",
			Category:    CategoryDirectSource,
			Requires:    []string{"world_bank"},
			Args: []ArgSchema{
				{Name: "countryCode", Type: TypeString, Default: "US", Required: true},
				{Name: "indicator", Type: TypeString, Default: "NY.GDP.MKTP.CD", Required: true},
				{Name: "perPage", Type: TypeInt, Default: 10},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				perPage := argInt(args, "perPage")
				if perPage == 0 {
					perPage = 10
				}
				return responseValue(svc.WorldBank.GetIndicatorData(ctx, argString(args, "countryCode"), argString(args, "indicator"), perPage))
			},
		},
	}
}

// --- basic analytical tools (4) ---------------------------------------

func basicAnalysisTools() []Tool {
	return []Tool{
		{
			Name:        "industry_search",
			Description: "Search across permitted sources for industries matching a free-text query.",
			Category:    CategoryBasicAnalysis,
			Requires:    []string{"alpha_vantage", "census", "world_bank"},
			Args: []ArgSchema{
				{Name: "query", Type: TypeString, Required: true},
				{Name: "sources", Type: TypeArray},
				{Name: "limit", Type: TypeInt, Default: 10},
				{Name: "minRelevanceScore", Type: TypeNumber, Default: 0.0},
				{Name: "geographyFilter", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				result := svc.SearchIndustries(ctx, argString(args, "query"), argStringSlice(args, "sources"),
					argInt(args, "limit"), argFloat(args, "minRelevanceScore"), argString(args, "geographyFilter"))
				return result, nil
			},
		},
		{
			Name:        "tam_calculator",
			Description: "Project a Total Addressable Market forward by a constant annual growth rate.",
			Category:    CategoryBasicAnalysis,
			Args: []ArgSchema{
				{Name: "baseMarketSize", Type: TypeNumber, Default: 10e9, Required: true},
				{Name: "annualGrowthRate", Type: TypeNumber, Default: 0.15, Required: true},
				{Name: "projectionYears", Type: TypeInt, Default: 5, Required: true},
				{Name: "segmentationAdjustments", Type: TypeObject, Description: "optional {factor: 0.8}"},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				var seg *dataservice.SegmentationAdjustment
				if raw, ok := args["segmentationAdjustments"].(map[string]interface{}); ok {
					if factor, ok := raw["factor"].(float64); ok {
						seg = &dataservice.SegmentationAdjustment{Factor: factor}
					}
				}
				return svc.CalculateTam(argFloat(args, "baseMarketSize"), argFloat(args, "annualGrowthRate"),
					argInt(args, "projectionYears"), seg), nil
			},
		},
		{
			Name:        "market_size_calculator",
			Description: "Estimate market size for an industry query, routing across sources by heuristic.",
			Category:    CategoryBasicAnalysis,
			Requires:    []string{"alpha_vantage", "census", "world_bank", "fred"},
			Args: []ArgSchema{
				{Name: "industryQuery", Type: TypeString, Required: true},
				{Name: "geographyCodes", Type: TypeArray},
				{Name: "indicatorCodes", Type: TypeArray},
				{Name: "year", Type: TypeString},
				{Name: "methodology", Type: TypeString, Default: "heuristic_routing"},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return svc.CalculateMarketSize(ctx, argString(args, "industryQuery"), argStringSlice(args, "geographyCodes"),
					argStringSlice(args, "indicatorCodes"), argString(args, "year"), argString(args, "methodology")), nil
			},
		},
		{
			Name:        "company_financials_retriever",
			Description: "Fetch a company's financial statement from Alpha Vantage.",
			Category:    CategoryBasicAnalysis,
			Requires:    []string{"alpha_vantage"},
			Args: []ArgSchema{
				{Name: "companySymbol", Type: TypeString, Default: "AAPL", Required: true},
				{Name: "statementType", Type: TypeString, Default: "overview"},
				{Name: "period", Type: TypeString, Default: "annual"},
				{Name: "limit", Type: TypeInt, Default: 5},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.GetCompanyFinancials(ctx, argString(args, "companySymbol"),
					argString(args, "statementType"), argString(args, "period"), argInt(args, "limit")))
			},
		},
	}
}

// --- advanced business tools (11) -------------------------------------

func advancedBusinessTools() []Tool {
	return []Tool{
		{
			Name:        "industry_analysis",
			Description: "Combine industry search with a market-size estimate for the top match.",
			Category:    CategoryAdvanced,
			Requires:    []string{"alpha_vantage", "census", "world_bank", "fred"},
			Args: []ArgSchema{
				{Name: "query", Type: TypeString, Required: true},
				{Name: "geographyFilter", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				search := svc.SearchIndustries(ctx, argString(args, "query"), nil, 5, 0, argString(args, "geographyFilter"))
				out := map[string]interface{}{"search": search}
				if len(search.Results) > 0 {
					top := search.Results[0]
					out["marketSize"] = svc.CalculateMarketSize(ctx, top.IndustryID, nil, nil, "", "heuristic_routing")
				}
				return out, nil
			},
		},
		{
			Name:        "industry_data",
			Description: "Fetch raw tabular industry data for a geography from Census.",
			Category:    CategoryAdvanced,
			Requires:    []string{"census"},
			Args: []ArgSchema{
				{Name: "year", Type: TypeString, Default: "2021"},
				{Name: "naicsLabel", Type: TypeString, Required: true},
				{Name: "forGeography", Type: TypeString, Default: "us:*"},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return responseValue(svc.Census.FetchIndustryData(ctx, argString(args, "year"), "cbp",
					[]string{"NAICS2017_LABEL", "EMP", "PAYANN", "ESTAB"}, argString(args, "forGeography"), nil))
			},
		},
		{
			Name:        "market_size",
			Description: "Alias of market_size_calculator for advanced workflows.",
			Category:    CategoryAdvanced,
			Requires:    []string{"alpha_vantage", "census", "world_bank", "fred"},
			Args: []ArgSchema{
				{Name: "industryQuery", Type: TypeString, Required: true},
				{Name: "year", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				return svc.CalculateMarketSize(ctx, argString(args, "industryQuery"), nil, nil, argString(args, "year"), "heuristic_routing"), nil
			},
		},
		{
			Name:        "tam_analysis",
			Description: "Project TAM and report the compound annual growth rate implied by the inputs.",
			Category:    CategoryAdvanced,
			Args: []ArgSchema{
				{Name: "baseMarketSize", Type: TypeNumber, Default: 10e9, Required: true},
				{Name: "annualGrowthRate", Type: TypeNumber, Default: 0.15, Required: true},
				{Name: "projectionYears", Type: TypeInt, Default: 5, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				tam := svc.CalculateTam(argFloat(args, "baseMarketSize"), argFloat(args, "annualGrowthRate"), argInt(args, "projectionYears"), nil)
				return dataservice.ForecastResult{Tam: &tam, ImpliedCagr: argFloat(args, "annualGrowthRate")}, nil
			},
		},
		{
			Name:        "sam_calculator",
			Description: "Derive a Serviceable Addressable Market from a TAM projection and a penetration factor.",
			Category:    CategoryAdvanced,
			Args: []ArgSchema{
				{Name: "baseMarketSize", Type: TypeNumber, Default: 10e9, Required: true},
				{Name: "annualGrowthRate", Type: TypeNumber, Default: 0.15, Required: true},
				{Name: "projectionYears", Type: TypeInt, Default: 5, Required: true},
				{Name: "samPenetrationFactor", Type: TypeNumber, Default: 0.3, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				tam := svc.CalculateTam(argFloat(args, "baseMarketSize"), argFloat(args, "annualGrowthRate"), argInt(args, "projectionYears"), nil)
				sam := tam.FinalYearValue * argFloat(args, "samPenetrationFactor")
				return map[string]interface{}{"tam": tam, "sam": sam}, nil
			},
		},
		{
			Name:        "market_segments",
			Description: "Split a TAM projection's final year across named segments by weight.",
			Category:    CategoryAdvanced,
			Args: []ArgSchema{
				{Name: "baseMarketSize", Type: TypeNumber, Default: 10e9, Required: true},
				{Name: "annualGrowthRate", Type: TypeNumber, Default: 0.15, Required: true},
				{Name: "projectionYears", Type: TypeInt, Default: 5, Required: true},
				{Name: "segmentWeights", Type: TypeObject, Description: "map of segment name to weight (0..1)"},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				tam := svc.CalculateTam(argFloat(args, "baseMarketSize"), argFloat(args, "annualGrowthRate"), argInt(args, "projectionYears"), nil)
				weights, _ := args["segmentWeights"].(map[string]interface{})
				segments := map[string]float64{}
				for name, w := range weights {
					if weight, ok := w.(float64); ok {
						segments[name] = tam.FinalYearValue * weight
					}
				}
				return map[string]interface{}{"tam": tam, "segments": segments}, nil
			},
		},
		{
			Name:        "market_forecasting",
			Description: "Forecast year-by-year market size under an optimistic/pessimistic growth-rate band.",
			Category:    CategoryAdvanced,
			Args: []ArgSchema{
				{Name: "baseMarketSize", Type: TypeNumber, Default: 10e9, Required: true},
				{Name: "lowGrowthRate", Type: TypeNumber, Default: 0.05, Required: true},
				{Name: "highGrowthRate", Type: TypeNumber, Default: 0.25, Required: true},
				{Name: "projectionYears", Type: TypeInt, Default: 5, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				low := svc.CalculateTam(argFloat(args, "baseMarketSize"), argFloat(args, "lowGrowthRate"), argInt(args, "projectionYears"), nil)
				high := svc.CalculateTam(argFloat(args, "baseMarketSize"), argFloat(args, "highGrowthRate"), argInt(args, "projectionYears"), nil)
				// the optimistic case is the one that can trip the large-forecast-CAGR event
				return dataservice.ForecastResult{LowCase: &low, HighCase: &high, ImpliedCagr: argFloat(args, "highGrowthRate")}, nil
			},
		},
		{
			Name:        "market_comparison",
			Description: "Compare estimated market size across several industry queries.",
			Category:    CategoryAdvanced,
			Requires:    []string{"alpha_vantage", "census", "world_bank", "fred"},
			Args: []ArgSchema{
				{Name: "industryQueries", Type: TypeArray, Required: true},
				{Name: "year", Type: TypeString},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				queries := argStringSlice(args, "industryQueries")
				results := make([]dataservice.MarketSizeResult, 0, len(queries))
				for _, q := range queries {
					results = append(results, svc.CalculateMarketSize(ctx, q, nil, nil, argString(args, "year"), "heuristic_routing"))
				}
				return map[string]interface{}{"comparisons": results}, nil
			},
		},
		{
			Name:        "data_validation",
			Description: "Sanity-check that a market-size estimate has a positive value and a known source.",
			Category:    CategoryAdvanced,
			Requires:    []string{"alpha_vantage", "census", "world_bank", "fred"},
			Args: []ArgSchema{
				{Name: "industryQuery", Type: TypeString, Required: true},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				result := svc.CalculateMarketSize(ctx, argString(args, "industryQuery"), nil, nil, "", "heuristic_routing")
				valid := result.EstimatedMarketSize != nil && *result.EstimatedMarketSize > 0 && len(result.DataSourcesUsed) > 0
				return map[string]interface{}{"valid": valid, "result": result}, nil
			},
		},
		{
			Name:        "market_opportunities",
			Description: "Flag industries from a search whose relevance is high but confidence in sized data is low.",
			Category:    CategoryAdvanced,
			Requires:    []string{"alpha_vantage", "census", "world_bank"},
			Args: []ArgSchema{
				{Name: "query", Type: TypeString, Required: true},
				{Name: "minRelevanceScore", Type: TypeNumber, Default: 0.3},
			},
			Handler: func(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
				search := svc.SearchIndustries(ctx, argString(args, "query"), nil, 20, argFloat(args, "minRelevanceScore"), "")
				var opportunities []dataservice.Industry
				for _, ind := range search.Results {
					if ind.RelevanceScore >= argFloat(args, "minRelevanceScore") && ind.MarketSize == 0 {
						opportunities = append(opportunities, ind)
					}
				}
				return map[string]interface{}{"opportunities": opportunities}, nil
			},
		},
		{
			Name:        "generic_data_query",
			Description: "Generic escape hatch: route a (source, operation, params) triple to the matching adapter.",
			Category:    CategoryAdvanced,
			Args: []ArgSchema{
				{Name: "source", Type: TypeString, Required: true},
				{Name: "operation", Type: TypeString, Required: true},
				{Name: "params", Type: TypeObject},
			},
			Handler: genericDataQueryHandler,
		},
	}
}

func genericDataQueryHandler(ctx context.Context, svc *dataservice.Service, args map[string]interface{}) (interface{}, error) {
	params, _ := args["params"].(map[string]interface{})
	source := argString(args, "source")
	op := argString(args, "operation")

	switch source {
	case "alpha_vantage":
		switch op {
		case "getCompanyOverview":
			return responseValue(svc.AlphaVantage.GetCompanyOverview(ctx, stringParam(params, "symbol")))
		case "searchSymbols":
			return responseValue(svc.AlphaVantage.SearchSymbols(ctx, stringParam(params, "keywords")))
		}
	case "bls":
		if op == "getSeriesData" {
			return responseValue(svc.BLS.GetSeriesData(ctx, bls.Options{SeriesIDs: stringSliceParam(params, "seriesIds")}))
		}
	case "census":
		if op == "fetchMarketSize" {
			return responseValue(svc.Census.FetchMarketSize(ctx, stringParam(params, "year"), stringParam(params, "naicsCode"), stringParam(params, "variable")))
		}
	case "fred":
		if op == "fetchMarketSize" {
			return responseValue(svc.FRED.FetchMarketSize(ctx, stringParam(params, "seriesId"), stringParam(params, "region")))
		}
	case "imf":
		if op == "getLatestObservation" {
			return responseValue(svc.IMF.GetLatestObservation(ctx, stringParam(params, "dataflowId"), stringParam(params, "seriesKey")))
		}
	case "nasdaq_data_link":
		if op == "getLatestDatasetValue" {
			return responseValue(svc.Nasdaq.GetLatestDatasetValue(ctx, stringParam(params, "database"), stringParam(params, "dataset"), stringParam(params, "valueColumn")))
		}
	case "oecd":
		if op == "getLatestObservation" {
			return responseValue(svc.OECD.GetLatestObservation(ctx, stringParam(params, "datasetId"), stringParam(params, "filterExpr")))
		}
	case "world_bank":
		if op == "fetchMarketSize" {
			return responseValue(svc.WorldBank.FetchMarketSize(ctx, stringParam(params, "countryCode"), stringParam(params, "industryAlias")))
		}
	}
	return nil, fmt.Errorf("generic_data_query: unsupported source/operation combination %q/%q", source, op)
}

func stringParam(params map[string]interface{}, name string) string {
	if params == nil {
		return ""
	}
	if s, ok := params[name].(string); ok {
		return s
	}
	return ""
}

func stringSliceParam(params map[string]interface{}, name string) []string {
	if params == nil {
		return nil
	}
	v, ok := params[name].([]interface{})
	if !ok {
		return nil
	}
	out := make([]string, 0, len(v))
	for _, e := range v {
		if s, ok := e.(string); ok {
			out = append(out, s)
		}
	}
	return out
}
