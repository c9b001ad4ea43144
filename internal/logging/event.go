// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package logging

import (
	"context"

	"github.com/rs/zerolog"
)

// NotifyLogger provides specialized logging for the fire-and-forget tool
// notification bus: lifecycle (start/success/error) and business events
// published by the dispatcher and delivered best-effort to subscribers.
type NotifyLogger struct {
	logger zerolog.Logger
}

// NewNotifyLogger creates a logger configured for the notification bus.
func NewNotifyLogger() *NotifyLogger {
	return &NotifyLogger{
		logger: With().Str("component", "notify").Logger(),
	}
}

// NewNotifyLoggerWithLogger creates a NotifyLogger with a custom logger.
//
//nolint:gocritic // zerolog.Logger is designed to be passed by value (copy-on-write semantics)
func NewNotifyLoggerWithLogger(logger zerolog.Logger) *NotifyLogger {
	return &NotifyLogger{logger: logger.With().Str("component", "notify").Logger()}
}

// WithFields returns a new NotifyLogger with additional default fields.
func (e *NotifyLogger) WithFields(fields map[string]interface{}) *NotifyLogger {
	ctx := e.logger.With()
	for k, v := range fields {
		ctx = ctx.Interface(k, v)
	}
	return &NotifyLogger{logger: ctx.Logger()}
}

// Debug logs a debug message.
func (e *NotifyLogger) Debug(msg string, fields ...interface{}) {
	event := e.logger.Debug()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Info logs an info message.
func (e *NotifyLogger) Info(msg string, fields ...interface{}) {
	event := e.logger.Info()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Warn logs a warning message.
func (e *NotifyLogger) Warn(msg string, fields ...interface{}) {
	event := e.logger.Warn()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// Error logs an error message.
func (e *NotifyLogger) Error(msg string, fields ...interface{}) {
	event := e.logger.Error()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// InfoContext logs an info message with correlation/request id fields.
func (e *NotifyLogger) InfoContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Info()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

// WarnContext logs a warning message with correlation/request id fields.
func (e *NotifyLogger) WarnContext(ctx context.Context, msg string, fields ...interface{}) {
	logger := e.loggerWithContext(ctx)
	event := logger.Warn()
	event = addFieldPairs(event, fields)
	event.Msg(msg)
}

func (e *NotifyLogger) loggerWithContext(ctx context.Context) zerolog.Logger {
	logCtx := e.logger.With()

	if correlationID := CorrelationIDFromContext(ctx); correlationID != "" {
		logCtx = logCtx.Str("correlation_id", correlationID)
	}

	if requestID := RequestIDFromContext(ctx); requestID != "" {
		logCtx = logCtx.Str("request_id", requestID)
	}

	return logCtx.Logger()
}

// ============================================================
// Domain-Specific Notification Events
// ============================================================

// LogPublishAttempted logs that a lifecycle or business event is about to
// be published for a tool invocation.
func (e *NotifyLogger) LogPublishAttempted(eventType, tool string) {
	e.Debug("publishing tool event",
		"event_type", eventType,
		"tool", tool,
	)
}

// LogPublishFailed logs that marshalling or publishing an event failed.
// Delivery failures never propagate to the dispatcher's caller; this is
// the only record of the drop.
func (e *NotifyLogger) LogPublishFailed(tool string, err error) {
	e.logger.Warn().
		Str("tool", tool).
		Err(err).
		Msg("notify: failed to publish tool event")
}

// LogBusinessEvent logs a typed business event (high TAM, large CAGR,
// low confidence calculation) at info level so operators can grep for
// these independently of the debug-level lifecycle trace.
func (e *NotifyLogger) LogBusinessEvent(eventType, tool string) {
	e.Info("business event triggered",
		"event_type", eventType,
		"tool", tool,
	)
}

// addFieldPairs adds key-value pairs to a zerolog event.
func addFieldPairs(e *zerolog.Event, fields []interface{}) *zerolog.Event {
	for i := 0; i < len(fields); i += 2 {
		if i+1 < len(fields) {
			key, ok := fields[i].(string)
			if !ok {
				continue
			}
			e = e.Interface(key, fields[i+1])
		}
	}
	return e
}
