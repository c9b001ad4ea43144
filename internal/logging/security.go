// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package logging

import (
	"net/url"
	"strings"

	"github.com/rs/zerolog"
)

// CredentialEvent represents a credential- or availability-relevant event
// for source adapter audit logging: a disabled adapter, an upstream
// rate-limit signal, or a failed outbound request.
type CredentialEvent struct {
	// Event is the type of event (e.g., "adapter_disabled", "upstream_rate_limited").
	Event string
	// Source is the adapter name (alphavantage, bls, census, ...).
	Source string
	// Success indicates if the underlying operation succeeded.
	Success bool
	// Error is the error message if the operation failed, already sanitized.
	Error string
	// Details contains additional sanitized details.
	Details map[string]string
}

// CredentialLogger logs source-adapter events that touch API keys or
// other secrets, sanitizing every field before it reaches the sink so a
// misconfigured upstream error message can never leak a key into logs.
type CredentialLogger struct {
	logger zerolog.Logger
}

// NewCredentialLogger creates a new credential logger.
func NewCredentialLogger() *CredentialLogger {
	return &CredentialLogger{
		logger: With().Str("component", "adapter_credentials").Logger(),
	}
}

// NewCredentialLoggerWithLogger creates a credential logger with a custom zerolog logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value
func NewCredentialLoggerWithLogger(logger zerolog.Logger) *CredentialLogger {
	return &CredentialLogger{
		logger: logger.With().Str("component", "adapter_credentials").Logger(),
	}
}

// LogEvent logs a credential event with automatic sanitization.
func (l *CredentialLogger) LogEvent(event *CredentialEvent) {
	e := l.logger.Info().
		Str("event", event.Event).
		Str("source", event.Source)

	if event.Success {
		e = e.Str("status", "success")
	} else {
		e = e.Str("status", "failed")
	}

	if event.Error != "" && !event.Success {
		e = e.Str("error", SanitizeError(event.Error))
	}

	for k, v := range event.Details {
		e = e.Str(k, SanitizeValue(k, v))
	}

	e.Msg("")
}

// Debug logs a debug-level message.
func (l *CredentialLogger) Debug(msg string, fields ...interface{}) {
	e := l.logger.Debug()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Warn logs a warning-level message.
func (l *CredentialLogger) Warn(msg string, fields ...interface{}) {
	e := l.logger.Warn()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// Error logs an error-level message.
func (l *CredentialLogger) Error(msg string, fields ...interface{}) {
	e := l.logger.Error()
	e = addFieldPairs(e, fields)
	e.Msg(msg)
}

// ============================================================
// Pre-defined Credential Events
// ============================================================

// LogAdapterDisabled logs that a source adapter is disabled because a
// required secret is absent (spec: AdapterDisabled error kind).
func (l *CredentialLogger) LogAdapterDisabled(source, missingKey string) {
	l.LogEvent(&CredentialEvent{
		Event:   "adapter_disabled",
		Source:  source,
		Success: false,
		Details: map[string]string{"missing_key": missingKey},
	})
}

// LogAnonymousAccess logs that a source is operating without a key under
// a reduced, anonymous-access rate ceiling (e.g. BLS's 25-series cap).
func (l *CredentialLogger) LogAnonymousAccess(source, detail string) {
	l.LogEvent(&CredentialEvent{
		Event:   "anonymous_access",
		Source:  source,
		Success: true,
		Details: map[string]string{"detail": detail},
	})
}

// LogUpstreamRateLimited logs that an upstream provider signaled its own
// rate limit, distinct from the dispatcher's own limiter.
func (l *CredentialLogger) LogUpstreamRateLimited(source string) {
	l.LogEvent(&CredentialEvent{
		Event:   "upstream_rate_limited",
		Source:  source,
		Success: false,
	})
}

// LogRequestFailed logs a failed outbound request with the request URL
// sanitized so any api_key/token query parameter never reaches the log.
func (l *CredentialLogger) LogRequestFailed(source, rawURL string, err error) {
	l.LogEvent(&CredentialEvent{
		Event:   "request_failed",
		Source:  source,
		Success: false,
		Error:   err.Error(),
		Details: map[string]string{"url": SanitizeURL(rawURL)},
	})
}

// ============================================================
// Sanitization Functions
// ============================================================

// sensitiveQueryParams are query parameter names, across the eight
// upstream providers, that carry a raw credential.
var sensitiveQueryParams = []string{
	"apikey", "api_key", "key", "token", "access_key", "registrationkey",
}

// SanitizeURL redacts the value of any sensitive query parameter in
// rawURL (api_key, apikey, key, token, ...) before it is safe to log.
// An unparseable URL is returned as a fixed placeholder rather than
// risking a leaked credential in a malformed string.
func SanitizeURL(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil {
		return "[unparseable url]"
	}

	q := u.Query()
	for _, name := range sensitiveQueryParams {
		for k := range q {
			if strings.EqualFold(k, name) {
				q.Set(k, "***")
			}
		}
	}
	u.RawQuery = q.Encode()
	return u.String()
}

// SanitizeToken masks a token, showing only first and last 4 characters.
// Example: "eyJhbGciOiJIUzI1NiIsInR5cCI6IkpXVCJ9" -> "eyJh...VCJ9"
func SanitizeToken(token string) string {
	if token == "" {
		return ""
	}
	if len(token) <= 12 {
		return "***"
	}
	return token[:4] + "..." + token[len(token)-4:]
}

// SanitizeError removes potentially sensitive information from error messages.
func SanitizeError(err string) string {
	sensitivePatterns := []string{
		"apikey", "api_key", "secret", "token", "bearer", "authorization", "registrationkey",
	}

	lowerErr := strings.ToLower(err)
	for _, pattern := range sensitivePatterns {
		if strings.Contains(lowerErr, pattern) {
			return "upstream error (credential redacted)"
		}
	}

	return truncateString(err, 200)
}

// SanitizeValue sanitizes a value based on its key name.
func SanitizeValue(key, value string) string {
	lowerKey := strings.ToLower(key)

	sensitiveKeys := map[string]bool{
		"api_key": true,
		"apikey":  true,
		"token":   true,
		"key":     true,
		"secret":  true,
	}

	if sensitiveKeys[lowerKey] {
		return SanitizeToken(value)
	}

	if strings.Contains(value, "://") {
		return SanitizeURL(value)
	}

	return value
}

// truncateString truncates a string to a maximum length.
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen] + "..."
}
