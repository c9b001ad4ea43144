// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package availability reports, at startup and on demand, which sources
// and tools are usable given the configured secrets. It never blocks a
// call — tools that depend on an unconfigured source simply fail at
// invocation time with whatever error the adapter itself produces, but
// a caller listing tools beforehand should not be surprised by that.
package availability

import (
	"fmt"
	"sort"

	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/logging"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
)

// allSources is the fixed set of eight data-source identifiers used
// throughout the registry's Tool.Requires lists.
var allSources = []string{
	"alpha_vantage", "bls", "census", "fred", "imf", "nasdaq_data_link", "oecd", "world_bank",
}

// SourceStatus describes one adapter's usability.
type SourceStatus struct {
	Source     string
	Available  bool
	MissingKey string
	AlwaysFree bool
}

// ToolStatus describes one tool's usability given its dependent sources.
type ToolStatus struct {
	Tool        string
	Available   bool
	MissingKeys []string
	Warnings    []string
}

// Report is a point-in-time snapshot of every source and tool's
// availability, built once at startup and re-used for the lifetime of
// the process since the only inputs are static configuration.
type Report struct {
	Sources map[string]SourceStatus
	Tools   map[string]ToolStatus
}

// Build inspects cfg and the tool catalog and produces a full report.
func Build(cfg *config.Config, catalog *registry.Catalog) Report {
	sources := make(map[string]SourceStatus, len(allSources))
	for _, s := range allSources {
		sources[s] = SourceStatus{
			Source:     s,
			Available:  cfg.IsAvailable(s),
			MissingKey: cfg.MissingKey(s),
			AlwaysFree: sourceNeverNeedsKey(s),
		}
	}

	tools := make(map[string]ToolStatus, len(catalog.List()))
	for _, tool := range catalog.List() {
		status := ToolStatus{Tool: tool.Name, Available: true}
		seen := make(map[string]bool, len(tool.Requires))
		for _, dep := range tool.Requires {
			ss, ok := sources[dep]
			if !ok {
				continue
			}
			if !ss.Available {
				status.Available = false
				if ss.MissingKey != "" && !seen[ss.MissingKey] {
					seen[ss.MissingKey] = true
					status.MissingKeys = append(status.MissingKeys, ss.MissingKey)
				}
			}
		}
		sort.Strings(status.MissingKeys)
		status.Warnings = warningsFor(tool.Requires)
		tools[tool.Name] = status
	}

	return Report{Sources: sources, Tools: tools}
}

func sourceNeverNeedsKey(source string) bool {
	switch source {
	case "world_bank", "oecd", "imf":
		return true
	default:
		return false
	}
}

// warningsFor attaches known degraded-mode notices for sources that
// operate without a key but under tighter limits than an authenticated
// caller would get.
func warningsFor(requires []string) []string {
	var warnings []string
	for _, dep := range requires {
		switch dep {
		case "bls":
			warnings = append(warnings, "BLS: unregistered access is capped at 25 series and 10 years of history per request")
		}
	}
	return warnings
}

// Decorate appends an availability suffix to a tool's description for
// tools/list, so a caller sees degraded status without a separate call.
func (r Report) Decorate(tool registry.Tool) string {
	status, ok := r.Tools[tool.Name]
	if !ok || status.Available {
		return tool.Description
	}
	return fmt.Sprintf("%s [unavailable: missing %v]", tool.Description, status.MissingKeys)
}

// Summary returns the "N/M data sources enabled" startup line. It does
// not log; LogStartup logs the line and the per-source detail.
func (r Report) Summary() string {
	enabled := 0
	for _, s := range r.Sources {
		if s.Available {
			enabled++
		}
	}
	return fmt.Sprintf("%d/%d data sources enabled", enabled, len(r.Sources))
}

// LogStartup emits the startup summary line plus one credential-audit
// event per unavailable source naming the missing environment variable.
func (r Report) LogStartup() {
	logging.Info().Str("summary", r.Summary()).Msg("availability: startup report")
	credLog := logging.NewCredentialLogger()
	names := make([]string, 0, len(r.Sources))
	for name := range r.Sources {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		s := r.Sources[name]
		if !s.Available {
			credLog.LogAdapterDisabled(s.Source, s.MissingKey)
		}
	}
}
