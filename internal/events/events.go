// Package events publishes chat analytics to NSQ for downstream dashboards.
package events

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"nurseaid/internal/middleware"
)

const TopicChatEvents = "chat.events"

// Publisher is satisfied by *nsq.Producer.
type Publisher interface {
	Publish(topic string, body []byte) error
}

type ChatEvent struct {
	Question      string    `json:"question"`
	Answer        string    `json:"answer"`
	Success       bool      `json:"success"`
	VideoPrompt   bool      `json:"video_prompt"`
	LatencyMs     int64     `json:"latency_ms"`
	CorrelationID string    `json:"correlation_id"`
	Timestamp     time.Time `json:"timestamp"`
}

// Emitter fans chat events out to NSQ. A nil Emitter or nil publisher drops
// events silently so deployments without a broker need no special casing.
type Emitter struct {
	pub Publisher
}

func NewEmitter(pub Publisher) *Emitter {
	return &Emitter{pub: pub}
}

func (e *Emitter) Emit(ctx context.Context, event ChatEvent) {
	if e == nil || e.pub == nil {
		return
	}
	event.Timestamp = time.Now()
	event.CorrelationID = middleware.GetCorrelationID(ctx)

	payload, err := json.Marshal(event)
	if err != nil {
		slog.ErrorContext(ctx, "failed to marshal chat event", "error", err)
		return
	}
	if err := e.pub.Publish(TopicChatEvents, payload); err != nil {
		slog.ErrorContext(ctx, "failed to publish chat event", "error", err)
	}
}
