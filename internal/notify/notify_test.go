// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

package notify

import (
	"context"
	"errors"
	"testing"
	"time"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStartPublishesLifecycleEvent(t *testing.T) {
	p := New()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := p.Subscribe(ctx)
	require.NoError(t, err)

	p.Start("tam_calculator", "default")

	select {
	case msg := <-msgs:
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, EventStart, ev.Type)
		assert.Equal(t, "tam_calculator", ev.Tool)
		assert.Equal(t, "default", ev.CallerID)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for start event")
	}
}

func TestSuccessIncludesExecutionTime(t *testing.T) {
	p := New()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := p.Subscribe(ctx)
	require.NoError(t, err)

	p.Success("fred_getSeriesObservations", "default", 42*time.Millisecond)

	select {
	case msg := <-msgs:
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, EventSuccess, ev.Type)
		assert.Equal(t, int64(42), ev.ExecutionTime)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for success event")
	}
}

func TestErrorIncludesMessage(t *testing.T) {
	p := New()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := p.Subscribe(ctx)
	require.NoError(t, err)

	p.Error("bls_getSeriesData", "default", errors.New("upstream timeout"))

	select {
	case msg := <-msgs:
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, EventError, ev.Type)
		assert.Equal(t, "upstream timeout", ev.ErrorMessage)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for error event")
	}
}

func TestBusinessEventCarriesDetail(t *testing.T) {
	p := New()
	defer p.Close()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	msgs, err := p.Subscribe(ctx)
	require.NoError(t, err)

	p.Business(EventHighTam, "tam_calculator", map[string]interface{}{"calculatedTam": 2e12})

	select {
	case msg := <-msgs:
		var ev Event
		require.NoError(t, json.Unmarshal(msg.Payload, &ev))
		assert.Equal(t, EventHighTam, ev.Type)
		assert.NotNil(t, ev.Detail)
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for business event")
	}
}

func TestPublishNeverBlocksWithoutSubscriber(t *testing.T) {
	p := New()
	defer p.Close()

	assert.NotPanics(t, func() {
		p.Start("industry_search", "default")
	})
}
