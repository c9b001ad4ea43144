// Cartographus - Media Server Analytics and Geographic Visualization
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cartographus

// Package notify publishes fire-and-forget tool-invocation events onto an
// in-process watermill bus. Delivery failures never affect the caller of
// Publish* — they are logged and dropped.
package notify

import (
	"context"
	"time"

	json "github.com/goccy/go-json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"

	"github.com/tomtom215/marketdata-mcp/internal/logging"
)

// TopicToolEvents is the single topic every lifecycle and business event is
// published to; subscribers filter on EventType.
const TopicToolEvents = "tool_events"

// EventType discriminates the kind of lifecycle or business event.
type EventType string

const (
	EventStart         EventType = "start"
	EventSuccess       EventType = "success"
	EventError         EventType = "error"
	EventHighTam       EventType = "high_tam"
	EventHighCagr      EventType = "high_cagr"
	EventLowConfidence EventType = "low_confidence"
)

// Event is the payload published for every notification.
type Event struct {
	Type          EventType   `json:"type"`
	Tool          string      `json:"tool"`
	CallerID      string      `json:"callerId,omitempty"`
	ExecutionTime int64       `json:"executionTimeMs,omitempty"`
	ErrorMessage  string      `json:"errorMessage,omitempty"`
	Detail        interface{} `json:"detail,omitempty"`
}

// Publisher wraps an in-process watermill pub-sub for best-effort delivery.
type Publisher struct {
	pubsub *gochannel.GoChannel
	log    *logging.NotifyLogger
}

// New builds a Publisher backed by watermill's gochannel transport — no
// external broker, no persistence, matching the in-process notification
// requirement.
func New() *Publisher {
	logger := watermill.NewStdLogger(false, false)
	pubsub := gochannel.NewGoChannel(gochannel.Config{
		OutputChannelBuffer: 256,
	}, logger)
	return &Publisher{pubsub: pubsub, log: logging.NewNotifyLogger()}
}

// Subscribe returns a channel of published events for callers wiring a
// downstream sink (logging, metrics, webhook relay).
func (p *Publisher) Subscribe(ctx context.Context) (<-chan *message.Message, error) {
	return p.pubsub.Subscribe(ctx, TopicToolEvents)
}

// Close shuts the underlying pub-sub down.
func (p *Publisher) Close() error {
	return p.pubsub.Close()
}

// publish marshals and emits ev, logging (never returning) any failure.
func (p *Publisher) publish(ev Event) {
	p.log.LogPublishAttempted(string(ev.Type), ev.Tool)

	payload, err := json.Marshal(ev)
	if err != nil {
		p.log.LogPublishFailed(ev.Tool, err)
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := p.pubsub.Publish(TopicToolEvents, msg); err != nil {
		p.log.LogPublishFailed(ev.Tool, err)
	}
}

// Start fires the on-handler-start notification.
func (p *Publisher) Start(tool, callerID string) {
	p.publish(Event{Type: EventStart, Tool: tool, CallerID: callerID})
}

// Success fires the on-handler-success notification with execution time.
func (p *Publisher) Success(tool, callerID string, d time.Duration) {
	p.publish(Event{Type: EventSuccess, Tool: tool, CallerID: callerID, ExecutionTime: d.Milliseconds()})
}

// Error fires the on-handler-error notification.
func (p *Publisher) Error(tool, callerID string, err error) {
	p.publish(Event{Type: EventError, Tool: tool, CallerID: callerID, ErrorMessage: err.Error()})
}

// Business fires a typed business event (high TAM, large CAGR, low
// confidence) with an arbitrary detail payload.
func (p *Publisher) Business(eventType EventType, tool string, detail interface{}) {
	p.log.LogBusinessEvent(string(eventType), tool)
	p.publish(Event{Type: eventType, Tool: tool, Detail: detail})
}
