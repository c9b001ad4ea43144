// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package httpclient is the shared outbound HTTP client used by every
// source adapter. It wraps one plain *http.Client per source with a
// circuit breaker and a token-bucket throttle; it never retries a
// failed or rate-limited request. A request that fails, or a request
// the breaker refuses to let through, returns immediately so the
// adapter can classify it and cache the result.
package httpclient

import (
	"context"
	"errors"
	"net/http"
	"time"

	json "github.com/goccy/go-json"
	gobreaker "github.com/sony/gobreaker/v2"
	"golang.org/x/time/rate"

	"github.com/tomtom215/marketdata-mcp/internal/logging"
	"github.com/tomtom215/marketdata-mcp/internal/metrics"
)

// ErrThrottled is returned when the outbound token bucket has no
// capacity left and the caller's context expires while waiting for it.
var ErrThrottled = errors.New("httpclient: outbound throttle wait exceeded context deadline")

// Client performs a single HTTP round trip per call, fronted by a
// circuit breaker and an outbound token bucket. It never retries.
type Client struct {
	name    string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker[*http.Response]
	limiter *rate.Limiter
	credLog *logging.CredentialLogger
}

// Option configures a Client at construction.
type Option func(*Client)

// WithTimeout overrides the underlying http.Client's timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.http.Timeout = d
		}
	}
}

// WithBurstRate overrides the outbound token bucket's rate and burst size.
func WithBurstRate(perSecond float64, burst int) Option {
	return func(c *Client) {
		c.limiter = rate.NewLimiter(rate.Limit(perSecond), burst)
	}
}

// New builds a Client identified by name (used for metrics and log labels).
// Default timeout is 30s; default throttle is 5 requests/second, burst 10.
func New(name string, opts ...Option) *Client {
	c := &Client{
		name:    name,
		http:    &http.Client{Timeout: 30 * time.Second},
		limiter: rate.NewLimiter(5, 10),
		credLog: logging.NewCredentialLogger(),
	}
	for _, opt := range opts {
		opt(c)
	}

	metrics.CircuitBreakerState.WithLabelValues(name).Set(0)

	c.breaker = gobreaker.NewCircuitBreaker[*http.Response](gobreaker.Settings{
		Name:        name,
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     time.Minute,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			if counts.Requests < 10 {
				return false
			}
			return float64(counts.TotalFailures)/float64(counts.Requests) >= 0.6
		},
		OnStateChange: func(breakerName string, from, to gobreaker.State) {
			fromStr, toStr := stateToString(from), stateToString(to)
			logging.Info().Str("source", breakerName).Str("from", fromStr).Str("to", toStr).
				Msg("source adapter circuit breaker state transition")
			metrics.CircuitBreakerState.WithLabelValues(breakerName).Set(stateToFloat(to))
			metrics.CircuitBreakerTransitions.WithLabelValues(breakerName, fromStr, toStr).Inc()
		},
	})

	return c
}

// Do issues req through the throttle and circuit breaker exactly once.
// A non-nil error means the request was never completed (throttle wait
// cancelled, breaker open, transport error); callers must close the
// returned response body on success.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	if err := c.limiter.Wait(req.Context()); err != nil {
		return nil, ErrThrottled
	}

	resp, err := c.breaker.Execute(func() (*http.Response, error) {
		return c.http.Do(req)
	})
	if err != nil {
		if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "rejected").Inc()
		} else {
			metrics.CircuitBreakerRequests.WithLabelValues(c.name, "failure").Inc()
			c.credLog.LogRequestFailed(c.name, req.URL.String(), err)
		}
		return nil, err
	}
	metrics.CircuitBreakerRequests.WithLabelValues(c.name, "success").Inc()
	return resp, nil
}

// DecodeJSON issues req and decodes a 2xx JSON body into out. The
// response's status code is returned regardless of decode outcome so
// adapters can classify 429s and other non-2xx statuses themselves.
func (c *Client) DecodeJSON(ctx context.Context, req *http.Request, out interface{}) (statusCode int, err error) {
	resp, err := c.Do(req)
	if err != nil {
		return 0, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return resp.StatusCode, nil
	}
	if out == nil {
		return resp.StatusCode, nil
	}
	return resp.StatusCode, json.NewDecoder(resp.Body).Decode(out)
}

func stateToFloat(state gobreaker.State) float64 {
	switch state {
	case gobreaker.StateClosed:
		return 0
	case gobreaker.StateHalfOpen:
		return 1
	case gobreaker.StateOpen:
		return 2
	default:
		return -1
	}
}

func stateToString(state gobreaker.State) string {
	switch state {
	case gobreaker.StateClosed:
		return "closed"
	case gobreaker.StateHalfOpen:
		return "half-open"
	case gobreaker.StateOpen:
		return "open"
	default:
		return "unknown"
	}
}
