package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/redis/go-redis/v9"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
)

// DefaultEventChannel is the pub/sub channel auth events travel on.
const DefaultEventChannel = "studio:auth-events"

// EventBus carries auth events between instances over Redis pub/sub. It
// implements both ports.AuthEventPublisher and ports.AuthEventSource.
// Delivery is at-most-once; consumers treat events as hints and re-read
// authoritative state rather than trusting payloads.
type EventBus struct {
	client  redis.UniversalClient
	channel string
	logger  *slog.Logger

	mu     sync.Mutex
	pubsub *redis.PubSub
	closed bool
}

// NewEventBus creates an event bus on the given channel. An empty channel
// name falls back to DefaultEventChannel.
func NewEventBus(client redis.UniversalClient, channel string, logger *slog.Logger) *EventBus {
	if channel == "" {
		channel = DefaultEventChannel
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &EventBus{client: client, channel: channel, logger: logger}
}

// Publish broadcasts the event to all subscribed instances.
func (b *EventBus) Publish(ctx context.Context, ev domainauth.Event) error {
	data, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("marshal auth event: %w", err)
	}
	if err := b.client.Publish(ctx, b.channel, data).Err(); err != nil {
		return fmt.Errorf("publish auth event: %w", err)
	}
	return nil
}

// Subscribe opens the pub/sub subscription and returns a channel of decoded
// events. The channel is closed when ctx is cancelled or Close is called.
// Malformed payloads are logged and dropped.
func (b *EventBus) Subscribe(ctx context.Context) (<-chan domainauth.Event, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return nil, fmt.Errorf("event bus is closed")
	}
	if b.pubsub != nil {
		return nil, fmt.Errorf("event bus already has an active subscription")
	}

	pubsub := b.client.Subscribe(ctx, b.channel)
	// Confirm the subscription before handing the channel out so that no
	// event published after Subscribe returns can be missed.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("subscribe to %s: %w", b.channel, err)
	}
	b.pubsub = pubsub

	out := make(chan domainauth.Event)
	go b.pump(ctx, pubsub, out)
	return out, nil
}

func (b *EventBus) pump(ctx context.Context, pubsub *redis.PubSub, out chan<- domainauth.Event) {
	defer close(out)

	msgs := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-msgs:
			if !ok {
				return
			}
			var ev domainauth.Event
			if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
				b.logger.Warn("dropping malformed auth event",
					slog.String("channel", b.channel),
					slog.String("error", err.Error()))
				continue
			}
			select {
			case out <- ev:
			case <-ctx.Done():
				return
			}
		}
	}
}

// Close tears the subscription down. Safe to call more than once.
func (b *EventBus) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.closed = true
	if b.pubsub == nil {
		return nil
	}
	pubsub := b.pubsub
	b.pubsub = nil
	return pubsub.Close()
}
