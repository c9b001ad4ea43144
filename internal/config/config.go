// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package config loads process configuration for the market-data
// aggregation service: per-source API credentials, cache TTL policy,
// rate-limit thresholds, and server basics. Configuration loads in
// layers — compiled-in defaults, an optional YAML file, then
// environment variables — with each layer overriding the last.
package config

import "time"

// SourceConfig holds the per-adapter settings shared by all eight source
// adapters: a secret (empty when the source has none configured) and the
// outbound client timeout.
type SourceConfig struct {
	APIKey  string        `koanf:"api_key"`
	Timeout time.Duration `koanf:"timeout"`
}

// HasKey reports whether a secret has been configured for this source.
func (s SourceConfig) HasKey() bool { return s.APIKey != "" }

// ServerConfig holds the optional HTTP transport's basic settings.
type ServerConfig struct {
	Port        int    `koanf:"port"`
	Host        string `koanf:"host"`
	Environment string `koanf:"environment"`
}

// LoggingConfig configures the zerolog-backed logging package.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// RateLimitConfig holds the dispatcher's default sliding-window settings.
type RateLimitConfig struct {
	Requests int           `koanf:"requests"`
	Window   time.Duration `koanf:"window"`
}

// CacheTTLConfig holds the process-wide TTL fallback. Per-source and
// per-outcome-class overrides are resolved at lookup time directly from
// environment variables named per the CACHE_TTL_<SOURCE>_MS convention
// (see TTLResolver in ttl.go), not through koanf, since the source name
// is embedded in the variable name rather than behind a fixed nested key.
type CacheTTLConfig struct {
	DefaultMS int64 `koanf:"default_ms"`
}

// Config is the fully-resolved process configuration.
type Config struct {
	AlphaVantage   SourceConfig `koanf:"alpha_vantage"`
	BLS            SourceConfig `koanf:"bls"`
	Census         SourceConfig `koanf:"census"`
	FRED           SourceConfig `koanf:"fred"`
	IMF            SourceConfig `koanf:"imf"`
	NasdaqDataLink SourceConfig `koanf:"nasdaq_data_link"`
	OECD           SourceConfig `koanf:"oecd"`
	WorldBank      SourceConfig `koanf:"world_bank"`

	CacheTTL  CacheTTLConfig  `koanf:"cache_ttl"`
	RateLimit RateLimitConfig `koanf:"rate_limit"`
	Server    ServerConfig    `koanf:"server"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// Validate fills in invariants that plain defaulting cannot guarantee,
// such as a zero value surviving an empty but present env var.
func (c *Config) Validate() error {
	if c.CacheTTL.DefaultMS <= 0 {
		c.CacheTTL.DefaultMS = int64(DefaultSuccessTTL / time.Millisecond)
	}
	if c.RateLimit.Requests <= 0 {
		c.RateLimit.Requests = 100
	}
	if c.RateLimit.Window <= 0 {
		c.RateLimit.Window = time.Minute
	}
	if c.Server.Port <= 0 {
		c.Server.Port = 8080
	}
	return nil
}

// alwaysAvailable reports whether source requires no secret to operate,
// per the rule that World Bank, OECD, IMF, and BLS are always available.
func alwaysAvailable(source string) bool {
	switch source {
	case "world_bank", "oecd", "imf", "bls":
		return true
	default:
		return false
	}
}

// IsAvailable reports whether the named source is usable: always-on
// sources report true unconditionally, the rest require a configured key.
func (c *Config) IsAvailable(source string) bool {
	if alwaysAvailable(source) {
		return true
	}
	switch source {
	case "alpha_vantage":
		return c.AlphaVantage.HasKey()
	case "census":
		return c.Census.HasKey()
	case "fred":
		return c.FRED.HasKey()
	case "nasdaq_data_link":
		return c.NasdaqDataLink.HasKey()
	default:
		return false
	}
}

// MissingKey returns the environment variable name for source's secret if
// it is required and absent, or "" if the source needs no key or has one.
func (c *Config) MissingKey(source string) string {
	if alwaysAvailable(source) || c.IsAvailable(source) {
		return ""
	}
	switch source {
	case "alpha_vantage":
		return "ALPHA_VANTAGE_API_KEY"
	case "census":
		return "CENSUS_API_KEY"
	case "fred":
		return "FRED_API_KEY"
	case "nasdaq_data_link":
		return "NASDAQ_DATA_LINK_API_KEY"
	default:
		return ""
	}
}

// Sources lists the eight source identifiers used throughout config,
// logging, and metrics labels.
var Sources = []string{
	"alpha_vantage", "bls", "census", "fred", "imf", "nasdaq_data_link", "oecd", "world_bank",
}
