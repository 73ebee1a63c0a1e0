// Package notify fans out approval-workflow events so admin dashboards see
// the pending set change without polling.
package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Channel is the Redis pub/sub channel carrying request lifecycle events.
const Channel = "marketplace:requests"

// EventKind identifies which request collection an event belongs to.
type EventKind string

const (
	KindSellerRequest  EventKind = "seller_request"
	KindProductRequest EventKind = "product_request"
)

// EventAction says whether the pending set grew or shrank.
type EventAction string

const (
	ActionAdded    EventAction = "added"
	ActionApproved EventAction = "approved"
	ActionRejected EventAction = "rejected"
)

// Event is one change to the pending request set.
type Event struct {
	Kind       EventKind   `json:"kind"`
	Action     EventAction `json:"action"`
	RequestID  uuid.UUID   `json:"request_id"`
	Email      string      `json:"email,omitempty"`
	OccurredAt time.Time   `json:"occurred_at"`
}

// Publisher pushes events toward subscribed admin sessions. Implementations
// must be safe for concurrent use.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
}

// RedisBroker publishes and subscribes over a Redis channel.
type RedisBroker struct {
	client *redis.Client
	logger *zap.Logger
}

// NewRedisBroker creates a broker over an existing Redis client.
func NewRedisBroker(client *redis.Client, logger *zap.Logger) *RedisBroker {
	return &RedisBroker{client: client, logger: logger}
}

// Publish serializes the event and pushes it on the channel. Delivery is
// best-effort: the workflow mutation has already committed, so a publish
// failure is logged and swallowed rather than failing the admin action.
func (b *RedisBroker) Publish(ctx context.Context, event Event) error {
	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	if err := b.client.Publish(ctx, Channel, payload).Err(); err != nil {
		return fmt.Errorf("publish event: %w", err)
	}

	b.logger.Debug("Published request event",
		zap.String("kind", string(event.Kind)),
		zap.String("action", string(event.Action)),
		zap.String("request_id", event.RequestID.String()),
	)
	return nil
}

// Subscribe opens a subscription and delivers decoded events until ctx is
// cancelled. Malformed payloads are logged and skipped.
func (b *RedisBroker) Subscribe(ctx context.Context) (<-chan Event, func()) {
	sub := b.client.Subscribe(ctx, Channel)
	events := make(chan Event)

	go func() {
		defer close(events)
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				var event Event
				if err := json.Unmarshal([]byte(msg.Payload), &event); err != nil {
					b.logger.Warn("Dropping malformed request event", zap.Error(err))
					continue
				}
				select {
				case events <- event:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	cancel := func() {
		_ = sub.Close()
	}
	return events, cancel
}
