// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package httpjsonrpc

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	json "github.com/goccy/go-json"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tomtom215/marketdata-mcp/internal/availability"
	"github.com/tomtom215/marketdata-mcp/internal/config"
	"github.com/tomtom215/marketdata-mcp/internal/dataservice"
	"github.com/tomtom215/marketdata-mcp/internal/dispatch"
	"github.com/tomtom215/marketdata-mcp/internal/ratelimit"
	"github.com/tomtom215/marketdata-mcp/internal/registry"
)

func testHandler() *Handler {
	cfg := &config.Config{RateLimit: config.RateLimitConfig{Requests: 1000, Window: time.Minute}}
	catalog := registry.New()
	d := dispatch.New(catalog, &dataservice.Service{}, ratelimit.New(0), nil, cfg)
	report := availability.Build(cfg, catalog)
	return New(catalog, d, report)
}

func doRPC(t *testing.T, h *Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/rpc", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Router(nil).ServeHTTP(rec, req)
	return rec
}

func TestToolsListReturnsAllRegisteredTools(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":1,"method":"tools/list"}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)

	result, ok := resp.Result.(map[string]interface{})
	require.True(t, ok)
	tools, ok := result["tools"].([]interface{})
	require.True(t, ok)
	assert.Len(t, tools, 28)
}

func TestToolsCallTamCalculatorSucceeds(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":2,"method":"tools/call","params":{"name":"tam_calculator","arguments":{}}}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
}

func TestToolsCallMissingNameReturnsInvalidParams(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":3,"method":"tools/call","params":{}}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestUnknownMethodReturnsMethodNotFound(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":4,"method":"does/notexist"}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeMethodNotFound, resp.Error.Code)
}

func TestMissingJSONRPCVersionReturnsInvalidRequest(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"id":5,"method":"tools/list"}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidRequest, resp.Error.Code)
}

func TestResourcesReadReturnsContentForKnownURI(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":6,"method":"resources/read","params":{"uri":"docs://sources/fred"}}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
}

func TestResourcesReadUnknownURIReturnsInvalidParams(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":7,"method":"resources/read","params":{"uri":"docs://nope"}}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, codeInvalidParams, resp.Error.Code)
}

func TestPromptsGetRendersTemplateWithArguments(t *testing.T) {
	h := testHandler()
	rec := doRPC(t, h, `{"jsonrpc":"2.0","id":8,"method":"prompts/get","params":{"name":"industry_research_brief","arguments":{"industry":"cloud storage"}}}`)

	var resp Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Nil(t, resp.Error)
	assert.Contains(t, rec.Body.String(), "cloud storage")
}

func TestHealthzReportsOK(t *testing.T) {
	h := testHandler()
	req := httptest.NewRequest(http.MethodGet, "/healthz", nil)
	rec := httptest.NewRecorder()
	h.Router(nil).ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "ok")
}
