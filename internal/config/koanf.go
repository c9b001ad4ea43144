// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package config

import (
	"fmt"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// ConfigPathEnvVar names the environment variable pointing at an optional
// YAML config file. When unset, DefaultConfigPaths are tried in order.
const ConfigPathEnvVar = "CONFIG_PATH"

// DefaultConfigPaths are searched, in order, when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"./config.yaml",
	"./config/config.yaml",
	"/etc/marketdata-mcp/config.yaml",
}

var (
	instanceMu sync.Mutex
	instance   *koanf.Koanf
)

// defaultConfig returns the compiled-in defaults layer.
func defaultConfig() *Config {
	return &Config{
		AlphaVantage:   SourceConfig{Timeout: 30 * time.Second},
		BLS:            SourceConfig{Timeout: 30 * time.Second},
		Census:         SourceConfig{Timeout: 30 * time.Second},
		FRED:           SourceConfig{Timeout: 30 * time.Second},
		IMF:            SourceConfig{Timeout: 30 * time.Second},
		NasdaqDataLink: SourceConfig{Timeout: 30 * time.Second},
		OECD:           SourceConfig{Timeout: 30 * time.Second},
		WorldBank:      SourceConfig{Timeout: 30 * time.Second},

		CacheTTL: CacheTTLConfig{
			DefaultMS: int64(DefaultSuccessTTL / time.Millisecond),
		},
		RateLimit: RateLimitConfig{
			Requests: 100,
			Window:   time.Minute,
		},
		Server: ServerConfig{
			Port:        8080,
			Host:        "0.0.0.0",
			Environment: "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Caller: false,
		},
	}
}

// findConfigFile resolves the optional YAML config path: CONFIG_PATH if
// set, otherwise the first of DefaultConfigPaths that exists on disk.
func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		return p
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// envKeyToKoanfPath maps a recognized environment variable name to its
// koanf dotted path. Unrecognized variables return "" so they never
// pollute the config tree — this mirrors the explicit-allowlist pattern
// used for the Tautulli/Plex-era variables, adapted to the new domain's
// flat per-source credential names.
func envKeyToKoanfPath(key string) string {
	switch key {
	case "ALPHA_VANTAGE_API_KEY":
		return "alpha_vantage.api_key"
	case "BLS_API_KEY":
		return "bls.api_key"
	case "CENSUS_API_KEY":
		return "census.api_key"
	case "FRED_API_KEY":
		return "fred.api_key"
	case "NASDAQ_DATA_LINK_API_KEY":
		return "nasdaq_data_link.api_key"

	case "CACHE_TTL_DEFAULT_MS":
		return "cache_ttl.default_ms"

	case "RATE_LIMIT_REQUESTS":
		return "rate_limit.requests"
	case "RATE_LIMIT_WINDOW":
		return "rate_limit.window"

	case "PORT":
		return "server.port"
	case "HOST":
		return "server.host"
	case "ENVIRONMENT":
		return "server.environment"

	case "LOG_LEVEL":
		return "logging.level"
	case "LOG_FORMAT":
		return "logging.format"
	case "LOG_CALLER":
		return "logging.caller"
	default:
		// CACHE_TTL_<SOURCE>_MS / _NODATA_MS / _ALPHA_VANTAGE_RATELIMIT_MS
		// variables are read directly by TTLResolver (see ttl.go), not
		// funneled through koanf: the source name is embedded in the
		// variable name rather than addressing a fixed nested key, which
		// koanf's env.Provider name-transform cannot express generically.
		return ""
	}
}

// LoadWithKoanf loads the layered configuration: compiled-in defaults,
// then an optional YAML file, then environment variables, in that order
// of increasing precedence.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("config: load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("config: load file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envKeyToKoanfPath), nil); err != nil {
		return nil, fmt.Errorf("config: load env: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("config: unmarshal: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validate: %w", err)
	}

	instanceMu.Lock()
	instance = k
	instanceMu.Unlock()

	return cfg, nil
}

// GetKoanfInstance returns the koanf.Koanf backing the most recent
// LoadWithKoanf call, for callers that want raw key lookups (e.g. an
// admin endpoint dumping resolved config). Returns nil before the first load.
func GetKoanfInstance() *koanf.Koanf {
	instanceMu.Lock()
	defer instanceMu.Unlock()
	return instance
}

// WatchConfigFile invokes callback whenever the resolved config file
// changes on disk. It is a no-op if no file is in use.
func WatchConfigFile(callback func(*Config, error)) error {
	path := findConfigFile()
	if path == "" {
		return nil
	}
	f := file.Provider(path)
	return f.Watch(func(event interface{}, err error) {
		if err != nil {
			callback(nil, fmt.Errorf("config: watch %s: %w", path, err))
			return
		}
		cfg, loadErr := LoadWithKoanf()
		callback(cfg, loadErr)
	})
}

// sourceEnvKeyPrefix reports whether key looks like a per-source
// CACHE_TTL_* variable, used by tests asserting the allowlist behavior.
func sourceEnvKeyPrefix(key string) bool {
	return strings.HasPrefix(key, "CACHE_TTL_") && key != "CACHE_TTL_DEFAULT_MS"
}
