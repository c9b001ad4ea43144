// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package dispatch implements the single tool-invocation state machine:
// lookup, argument default-fill and validation, rate limiting, handler
// invocation, and response envelope formatting. It never leaks stack
// traces — only a classified error kind and message reach the envelope.
package dispatch

import (
	"context"
	"errors"
	"fmt"
	"time"

	json "github.com/goccy/go-json"

	"github.com/go-playground/validator/v10"

	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/dataservice"
	"github.com/tomtom215/marketdata-mcp/internal/metrics"
	"github.com/tomtom215/marketdata-mcp/internal/notify"
	"github.com/tomtom215/marketdata-mcp/internal/ratelimit"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
	"github.com/tomtom215/marketdata-mcp/internal/sources"
)

// ErrorKind classifies a dispatch failure. These are abstract categories,
// not Go error types, so they serialize cleanly into the response envelope.
type ErrorKind string

const (
	KindUnknownTool     ErrorKind = "UnknownTool"
	KindInvalidArgs     ErrorKind = "InvalidArguments"
	KindRateLimited     ErrorKind = "RateLimitedByServer"
	KindAdapterDisabled ErrorKind = "AdapterDisabled"
	KindInternal        ErrorKind = "Internal"
)

// ContentItem is one block of a tool response's content array.
type ContentItem struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

// Envelope is the response returned to tools/call. IsError distinguishes a
// failed call from a successful one whose result happens to be falsy.
type Envelope struct {
	Content []ContentItem `json:"content"`
	IsError bool          `json:"isError,omitempty"`
}

func errorEnvelope(kind ErrorKind, message string) Envelope {
	return Envelope{
		Content: []ContentItem{{Type: "text", Text: fmt.Sprintf("[%s] %s", kind, message)}},
		IsError: true,
	}
}

func successEnvelope(value interface{}) Envelope {
	text, err := json.Marshal(value)
	if err != nil {
		return errorEnvelope(KindInternal, "failed to serialize result")
	}
	return Envelope{Content: []ContentItem{{Type: "text", Text: string(text)}}}
}

// Dispatcher owns the catalog, rate limiter, and notifier used to run one
// tool call through the state machine described in the component design.
type Dispatcher struct {
	catalog  *registry.Catalog
	svc      *dataservice.Service
	limiter  *ratelimit.Limiter
	notifier *notify.Publisher
	cfg      *config.Config
	validate *validator.Validate
}

// New builds a Dispatcher wired to a tool catalog, data service, rate
// limiter, notifier, and configuration (for the default rate-limit window).
func New(catalog *registry.Catalog, svc *dataservice.Service, limiter *ratelimit.Limiter, notifier *notify.Publisher, cfg *config.Config) *Dispatcher {
	return &Dispatcher{
		catalog:  catalog,
		svc:      svc,
		limiter:  limiter,
		notifier: notifier,
		cfg:      cfg,
		validate: validator.New(),
	}
}

// Call runs the RECEIVED -> lookup -> validate -> rate-limit -> invoke ->
// RESPONSE state machine for one tool invocation.
func (d *Dispatcher) Call(ctx context.Context, callerID, toolName string, rawArgs map[string]interface{}) Envelope {
	tool, ok := d.catalog.Lookup(toolName)
	if !ok {
		metrics.RecordDispatch(toolName, "unknown_tool", 0)
		return errorEnvelope(KindUnknownTool, fmt.Sprintf("no such tool: %q", toolName))
	}

	args := fillDefaults(tool, rawArgs)
	if fieldErrors := d.validateArgs(tool, args); len(fieldErrors) > 0 {
		metrics.RecordDispatch(toolName, "invalid_arguments", 0)
		return errorEnvelope(KindInvalidArgs, joinFieldErrors(fieldErrors))
	}

	if d.limiter != nil {
		result := d.limiter.Check(callerID, d.cfg.RateLimit.Requests, d.cfg.RateLimit.Window)
		if !result.Allowed {
			metrics.RecordDispatch(toolName, "rate_limited", 0)
			metrics.RecordRateLimitDenied(callerID)
			resetIn := int(time.Until(result.ResetAt).Seconds())
			if resetIn < 0 {
				resetIn = 0
			}
			return errorEnvelope(KindRateLimited, fmt.Sprintf("rate limit exceeded, retry in %d seconds", resetIn))
		}
	}

	if d.notifier != nil {
		d.notifier.Start(toolName, callerID)
	}
	start := time.Now()

	value, err := tool.Handler(ctx, d.svc, args)
	elapsed := time.Since(start)

	if err != nil {
		if errors.Is(err, sources.ErrAdapterDisabled) {
			metrics.RecordDispatch(toolName, "adapter_disabled", elapsed)
			if d.notifier != nil {
				d.notifier.Error(toolName, callerID, err)
			}
			return errorEnvelope(KindAdapterDisabled, err.Error())
		}
		metrics.RecordDispatch(toolName, "error", elapsed)
		if d.notifier != nil {
			d.notifier.Error(toolName, callerID, err)
		}
		return errorEnvelope(KindInternal, err.Error())
	}

	metrics.RecordDispatch(toolName, "success", elapsed)
	if d.notifier != nil {
		d.notifier.Success(toolName, callerID, elapsed)
	}
	d.emitBusinessEvents(toolName, value)

	return successEnvelope(value)
}

// fillDefaults overlays declared defaults under any field the caller
// omitted, without mutating the caller's map.
func fillDefaults(tool registry.Tool, rawArgs map[string]interface{}) map[string]interface{} {
	args := make(map[string]interface{}, len(tool.Args))
	for k, v := range rawArgs {
		args[k] = v
	}
	for _, a := range tool.Args {
		if _, present := args[a.Name]; !present && a.Default != nil {
			args[a.Name] = a.Default
		}
	}
	return args
}

// validateArgs checks required presence and type compatibility per
// ArgSchema. Presence uses validator.Var's "required" rule; type
// compatibility is checked by the type switch in typeMismatch.
func (d *Dispatcher) validateArgs(tool registry.Tool, args map[string]interface{}) []string {
	var fieldErrors []string
	for _, a := range tool.Args {
		v, present := args[a.Name]
		if a.Required {
			if err := d.validate.Var(v, "required"); !present || err != nil {
				fieldErrors = append(fieldErrors, fmt.Sprintf("%s is required", a.Name))
				continue
			}
		}
		if !present {
			continue
		}
		if msg, ok := typeMismatch(a, v); ok {
			fieldErrors = append(fieldErrors, msg)
		}
	}
	return fieldErrors
}

func typeMismatch(a registry.ArgSchema, v interface{}) (string, bool) {
	switch a.Type {
	case registry.TypeString:
		if _, ok := v.(string); !ok {
			return fmt.Sprintf("%s must be a string", a.Name), true
		}
	case registry.TypeNumber:
		if _, ok := v.(float64); !ok {
			if _, ok := v.(int); !ok {
				return fmt.Sprintf("%s must be a number", a.Name), true
			}
		}
	case registry.TypeInt:
		switch v.(type) {
		case int, float64:
		default:
			return fmt.Sprintf("%s must be an integer", a.Name), true
		}
	case registry.TypeBool:
		if _, ok := v.(bool); !ok {
			return fmt.Sprintf("%s must be a boolean", a.Name), true
		}
	case registry.TypeArray:
		switch v.(type) {
		case []interface{}, []string:
		default:
			return fmt.Sprintf("%s must be an array", a.Name), true
		}
	case registry.TypeObject:
		if _, ok := v.(map[string]interface{}); !ok {
			return fmt.Sprintf("%s must be an object", a.Name), true
		}
	}
	return "", false
}

func joinFieldErrors(fieldErrors []string) string {
	msg := fieldErrors[0]
	for _, e := range fieldErrors[1:] {
		msg += "; " + e
	}
	return msg
}

// businessThresholds are the fixed, compile-time trip points for the
// business notification events described in the component design.
const (
	highTamThreshold    = 1e12
	highCagrThreshold   = 0.5
	lowConfidenceCutoff = 0.4
)

func (d *Dispatcher) emitBusinessEvents(toolName string, value interface{}) {
	if d.notifier == nil {
		return
	}
	switch v := value.(type) {
	case dataservice.TamResult:
		if v.FinalYearValue >= highTamThreshold {
			d.notifier.Business(notify.EventHighTam, toolName, v)
		}
	case dataservice.MarketSizeResult:
		if v.ConfidenceScore > 0 && v.ConfidenceScore < lowConfidenceCutoff {
			d.notifier.Business(notify.EventLowConfidence, toolName, v)
		}
	case dataservice.ForecastResult:
		if v.Tam != nil && v.Tam.FinalYearValue >= highTamThreshold {
			d.notifier.Business(notify.EventHighTam, toolName, v)
		}
		if v.ImpliedCagr >= highCagrThreshold {
			d.notifier.Business(notify.EventHighCagr, toolName, v)
		}
	}
}
