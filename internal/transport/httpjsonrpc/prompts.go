// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package httpjsonrpc

import (
	"fmt"
	"sort"
	"strings"
)

// PromptArg describes one named argument a prompt template accepts.
type PromptArg struct {
	Name        string `json:"name"`
	Description string `json:"description"`
	Required    bool   `json:"required"`
}

// PromptSummary is the entry returned by prompts/list.
type PromptSummary struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Arguments   []PromptArg `json:"arguments"`
}

// RenderedPrompt is the body returned by prompts/get.
type RenderedPrompt struct {
	Description string `json:"description"`
	Messages    []struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"messages"`
}

type promptTemplate struct {
	description string
	args        []PromptArg
	render      func(args map[string]string) string
}

// PromptCatalog holds the fixed set of market-research prompt templates
// a client can render with call-site arguments, mirroring the shape of
// the tool registry but for prose rather than tool invocations.
type PromptCatalog struct {
	names     []string
	templates map[string]promptTemplate
}

// NewPromptCatalog builds the fixed prompt template set.
func NewPromptCatalog() *PromptCatalog {
	templates := map[string]promptTemplate{
		"industry_research_brief": {
			description: "Draft a research brief scoping an industry investigation.",
			args: []PromptArg{
				{Name: "industry", Description: "industry or market name", Required: true},
				{Name: "geography", Description: "geographic scope, e.g. US, EU, Global", Required: false},
			},
			render: func(args map[string]string) string {
				geo := args["geography"]
				if geo == "" {
					geo = "Global"
				}
				return fmt.Sprintf(
					"Research the %q industry within %s. Identify total addressable market, "+
						"the three largest segments, and the data sources (by name) backing each figure.",
					args["industry"], geo)
			},
		},
		"market_entry_assessment": {
			description: "Frame a market-entry go/no-go assessment for a named company and industry.",
			args: []PromptArg{
				{Name: "company", Description: "company symbol or name", Required: true},
				{Name: "industry", Description: "target industry", Required: true},
			},
			render: func(args map[string]string) string {
				return fmt.Sprintf(
					"Assess whether %s should enter the %q market. Pull %s's latest financials, "+
						"estimate the industry's TAM and SAM, and flag any estimate with confidence below 0.5.",
					args["company"], args["industry"], args["company"])
			},
		},
		"competitive_landscape_summary": {
			description: "Summarize the competitive landscape across a list of comparison queries.",
			args: []PromptArg{
				{Name: "queries", Description: "comma-separated list of industry queries to compare", Required: true},
			},
			render: func(args map[string]string) string {
				items := strings.Split(args["queries"], ",")
				for i := range items {
					items[i] = strings.TrimSpace(items[i])
				}
				return fmt.Sprintf(
					"Compare market size and growth across: %s. Rank them by estimated market size "+
						"and note which estimates share a data source.",
					strings.Join(items, "; "))
			},
		},
	}

	names := make([]string, 0, len(templates))
	for name := range templates {
		names = append(names, name)
	}
	sort.Strings(names)

	return &PromptCatalog{names: names, templates: templates}
}

// List returns every registered prompt's summary.
func (c *PromptCatalog) List() []PromptSummary {
	summaries := make([]PromptSummary, 0, len(c.names))
	for _, name := range c.names {
		t := c.templates[name]
		summaries = append(summaries, PromptSummary{Name: name, Description: t.description, Arguments: t.args})
	}
	return summaries
}

// Get renders the named prompt against the supplied arguments.
func (c *PromptCatalog) Get(name string, args map[string]string) (RenderedPrompt, bool) {
	t, ok := c.templates[name]
	if !ok {
		return RenderedPrompt{}, false
	}
	if args == nil {
		args = map[string]string{}
	}
	rendered := RenderedPrompt{Description: t.description}
	rendered.Messages = append(rendered.Messages, struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	}{Role: "user", Content: t.render(args)})
	return rendered, true
}
