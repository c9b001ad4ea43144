// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package ratelimit

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestCheckAllowsUpToLimit(t *testing.T) {
	l := New(0)

	for i := 0; i < 3; i++ {
		res := l.Check("caller-a", 3, time.Minute)
		assert.True(t, res.Allowed, "request %d should be allowed", i)
	}

	res := l.Check("caller-a", 3, time.Minute)
	assert.False(t, res.Allowed)
	assert.Equal(t, 0, res.Remaining)
}

func TestCheckTracksCallersIndependently(t *testing.T) {
	l := New(0)

	for i := 0; i < 2; i++ {
		res := l.Check("caller-a", 2, time.Minute)
		assert.True(t, res.Allowed)
	}
	res := l.Check("caller-b", 2, time.Minute)
	assert.True(t, res.Allowed, "a fresh caller id must not inherit another caller's count")
}

func TestCheckRemainingDecreases(t *testing.T) {
	l := New(0)

	first := l.Check("caller-a", 5, time.Minute)
	assert.Equal(t, 4, first.Remaining)

	second := l.Check("caller-a", 5, time.Minute)
	assert.Equal(t, 3, second.Remaining)
}

func TestResetClearsCallerState(t *testing.T) {
	l := New(0)

	l.Check("caller-a", 1, time.Minute)
	denied := l.Check("caller-a", 1, time.Minute)
	assert.False(t, denied.Allowed)

	l.Reset("caller-a")
	allowed := l.Check("caller-a", 1, time.Minute)
	assert.True(t, allowed.Allowed)
}

func TestDefaultCallerIDWorksForSingleTenantUse(t *testing.T) {
	l := New(0)
	res := l.Check("default", 1, time.Minute)
	assert.True(t, res.Allowed)
}
