// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package main is the entry point for the market-data aggregation
// server. It wires configuration, the shared cache, the eight source
// adapters, the tool registry, the dispatcher, and the availability
// report into a single JSON-RPC endpoint, then runs the process's
// background janitors and HTTP server under a suture supervision tree.
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/tomtom215/marketdata-mcp/internal/availability"
	"github.com/tomtom215/marketdata-mcp/internal/cache"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/dataservice"
	"github.com/tomtom215/marketdata-mcp/internal/dispatch"
	"github.com/tomtom215/marketdata-mcp/internal/logging"
	"github.com/tomtom215/marketdata-mcp/internal/notify"
	"github.com/tomtom215/marketdata-mcp/internal/ratelimit"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
	"github.com/tomtom215/marketdata-mcp/internal/supervisor"
	"github.com/tomtom215/marketdata-mcp/internal/supervisor/services"
	"github.com/tomtom215/marketdata-mcp/internal/transport/httpjsonrpc"
)

func main() {
	cfg, err := config.LoadWithKoanf()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().Str("environment", cfg.Server.Environment).Msg("Starting market-data aggregation server")

	sharedCache := cache.New("sources", cache.WithoutAutoSweep())
	svc := dataservice.New(cfg, sharedCache)
	catalog := registry.New()
	limiter := ratelimit.New(10000)
	notifier := notify.New()
	dispatcher := dispatch.New(catalog, svc, limiter, notifier, cfg)

	report := availability.Build(cfg, catalog)
	report.LogStartup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	slogLogger := logging.NewSlogLogger()
	tree := supervisor.NewTree(slogLogger, supervisor.DefaultTreeConfig())
	tree.Add(&supervisor.CacheJanitor{Cache: sharedCache, Interval: cache.DefaultSweepInterval})
	tree.Add(&supervisor.RateLimiterJanitor{Limiter: limiter, Interval: time.Minute})

	handler := httpjsonrpc.New(catalog, dispatcher, report)
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler.Router(corsOriginsFromEnv()),
		ReadTimeout:  30 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
	tree.Add(services.NewHTTPServerService(server, 10*time.Second))

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	logging.Info().Str("addr", server.Addr).Msg("Serving JSON-RPC endpoint")
	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	if err := notifier.Close(); err != nil {
		logging.Warn().Err(err).Msg("Error closing notifier")
	}
	logging.Info().Msg("Server stopped gracefully")
}

// corsOriginsFromEnv reads CORS_ALLOWED_ORIGINS as a comma-separated
// list; an empty value disables cross-origin requests entirely.
func corsOriginsFromEnv() []string {
	raw := os.Getenv("CORS_ALLOWED_ORIGINS")
	if raw == "" {
		return nil
	}
	var origins []string
	for _, o := range strings.Split(raw, ",") {
		if trimmed := strings.TrimSpace(o); trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
