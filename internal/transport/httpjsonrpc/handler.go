// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package httpjsonrpc exposes the six protocol methods (tools/list,
// tools/call, resources/list, resources/read, prompts/list, prompts/get)
// behind a single JSON-RPC 2.0 endpoint, built on chi for routing and
// the go-chi ecosystem's CORS and rate-limit middleware.
package httpjsonrpc

import (
	"net/http"
	"time"

	json "github.com/goccy/go-json"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"

	"github.com/tomtom215/marketdata-mcp/internal/availability"
	"github.com/tomtom215/marketdata-mcp/internal/dispatch"
	"github.com/tomtom215/marketdata-mcp/internal/logging"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
)

// Request is a JSON-RPC 2.0 request envelope.
type Request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// Response is a JSON-RPC 2.0 response envelope. Only one of Result or
// Error is ever populated.
type Response struct {
	JSONRPC string      `json:"jsonrpc"`
	ID      interface{} `json:"id"`
	Result  interface{} `json:"result,omitempty"`
	Error   *RPCError   `json:"error,omitempty"`
}

// RPCError follows the JSON-RPC 2.0 error object shape.
type RPCError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

const (
	codeParseError     = -32700
	codeInvalidRequest = -32600
	codeMethodNotFound = -32601
	codeInvalidParams  = -32602
)

// toolsCallParams is the params shape for tools/call.
type toolsCallParams struct {
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

// resourcesReadParams is the params shape for resources/read.
type resourcesReadParams struct {
	URI string `json:"uri"`
}

// promptsGetParams is the params shape for prompts/get.
type promptsGetParams struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

// Handler dispatches the six protocol methods over one JSON-RPC endpoint.
type Handler struct {
	catalog      *registry.Catalog
	dispatcher   *dispatch.Dispatcher
	report       availability.Report
	resources    *ResourceCatalog
	prompts      *PromptCatalog
	callerIDFunc func(r *http.Request) string
}

// New builds a Handler wired to the tool catalog, dispatcher, and the
// startup availability report used to decorate tools/list.
func New(catalog *registry.Catalog, dispatcher *dispatch.Dispatcher, report availability.Report) *Handler {
	return &Handler{
		catalog:      catalog,
		dispatcher:   dispatcher,
		report:       report,
		resources:    NewResourceCatalog(),
		prompts:      NewPromptCatalog(),
		callerIDFunc: httprate.KeyByIP,
	}
}

// Router builds the chi router serving the JSON-RPC endpoint at /rpc and
// a liveness probe at /healthz.
func (h *Handler) Router(allowedOrigins []string) http.Handler {
	r := chi.NewRouter()
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.Logger)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"POST", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: false,
		MaxAge:           86400,
	}))
	r.Use(httprate.Limit(600, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)))

	r.Get("/healthz", h.handleHealth)
	r.Post("/rpc", h.handleRPC)
	return r
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}

func (h *Handler) handleRPC(w http.ResponseWriter, r *http.Request) {
	var req Request
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, nil, codeParseError, "invalid JSON")
		return
	}
	if req.JSONRPC != "2.0" || req.Method == "" {
		writeError(w, req.ID, codeInvalidRequest, "request must set jsonrpc=2.0 and method")
		return
	}

	callerID := h.callerIDFunc(r)

	switch req.Method {
	case "tools/list":
		h.handleToolsList(w, req)
	case "tools/call":
		h.handleToolsCall(w, r, req, callerID)
	case "resources/list":
		h.handleResourcesList(w, req)
	case "resources/read":
		h.handleResourcesRead(w, req)
	case "prompts/list":
		h.handlePromptsList(w, req)
	case "prompts/get":
		h.handlePromptsGet(w, req)
	default:
		writeError(w, req.ID, codeMethodNotFound, "unknown method: "+req.Method)
	}
}

func (h *Handler) handleToolsList(w http.ResponseWriter, req Request) {
	type toolSummary struct {
		Name        string                 `json:"name"`
		Description string                 `json:"description"`
		InputSchema map[string]interface{} `json:"inputSchema"`
	}
	tools := h.catalog.List()
	summaries := make([]toolSummary, 0, len(tools))
	for _, tool := range tools {
		summaries = append(summaries, toolSummary{
			Name:        tool.Name,
			Description: h.report.Decorate(tool),
			InputSchema: tool.JSONSchema(),
		})
	}
	writeResult(w, req.ID, map[string]interface{}{"tools": summaries})
}

func (h *Handler) handleToolsCall(w http.ResponseWriter, r *http.Request, req Request, callerID string) {
	var params toolsCallParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeError(w, req.ID, codeInvalidParams, "invalid tools/call params")
			return
		}
	}
	if params.Name == "" {
		writeError(w, req.ID, codeInvalidParams, "tools/call requires a name")
		return
	}
	envelope := h.dispatcher.Call(r.Context(), callerID, params.Name, params.Arguments)
	writeResult(w, req.ID, envelope)
}

func (h *Handler) handleResourcesList(w http.ResponseWriter, req Request) {
	writeResult(w, req.ID, map[string]interface{}{"resources": h.resources.List()})
}

func (h *Handler) handleResourcesRead(w http.ResponseWriter, req Request) {
	var params resourcesReadParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeError(w, req.ID, codeInvalidParams, "invalid resources/read params")
			return
		}
	}
	content, ok := h.resources.Read(params.URI)
	if !ok {
		writeError(w, req.ID, codeInvalidParams, "no such resource: "+params.URI)
		return
	}
	writeResult(w, req.ID, map[string]interface{}{"contents": []interface{}{content}})
}

func (h *Handler) handlePromptsList(w http.ResponseWriter, req Request) {
	writeResult(w, req.ID, map[string]interface{}{"prompts": h.prompts.List()})
}

func (h *Handler) handlePromptsGet(w http.ResponseWriter, req Request) {
	var params promptsGetParams
	if len(req.Params) > 0 {
		if err := json.Unmarshal(req.Params, &params); err != nil {
			writeError(w, req.ID, codeInvalidParams, "invalid prompts/get params")
			return
		}
	}
	prompt, ok := h.prompts.Get(params.Name, params.Arguments)
	if !ok {
		writeError(w, req.ID, codeInvalidParams, "no such prompt: "+params.Name)
		return
	}
	writeResult(w, req.ID, prompt)
}

func writeResult(w http.ResponseWriter, id interface{}, result interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Response{JSONRPC: "2.0", ID: id, Result: result}); err != nil {
		logging.Warn().Err(err).Msg("httpjsonrpc: failed to encode response")
	}
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(Response{JSONRPC: "2.0", ID: id, Error: &RPCError{Code: code, Message: message}}); err != nil {
		logging.Warn().Err(err).Msg("httpjsonrpc: failed to encode error response")
	}
}
