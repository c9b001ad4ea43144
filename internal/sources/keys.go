// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package sources

import (
	"sort"

	json "github.com/goccy/go-json"
)

// CacheKey builds a deterministic cache key from a source name, an
// operation name, and a flat map of request parameters. Keys are sorted
// before marshaling so the same logical request always produces the
// same key regardless of map iteration order — this is the single
// canonical scheme every adapter uses, replacing any per-adapter
// variation in how request parameters get folded into a key.
func CacheKey(source, op string, params map[string]interface{}) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	ordered := make([]keyValue, 0, len(keys))
	for _, k := range keys {
		ordered = append(ordered, keyValue{K: k, V: params[k]})
	}

	canonical, err := json.Marshal(ordered)
	if err != nil {
		canonical = []byte("{}")
	}
	return source + ":" + op + ":" + string(canonical)
}

type keyValue struct {
	K string      `json:"k"`
	V interface{} `json:"v"`
}
