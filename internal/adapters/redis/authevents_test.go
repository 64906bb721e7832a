package redis

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	"github.com/target/studio-ui-auth/internal/testutil"
)

func TestEventBus_PublishSubscribe(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := NewEventBus(client, "test:auth-events", nil)
	defer bus.Close()

	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	want := domainauth.Event{
		Kind:   domainauth.EventSignedIn,
		UserID: "user-1",
		Email:  "user@example.com",
	}
	require.NoError(t, bus.Publish(ctx, want))

	select {
	case got := <-events:
		assert.Equal(t, want, got)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_MalformedPayloadDropped(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	bus := NewEventBus(client, "test:auth-events", nil)
	defer bus.Close()

	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, client.Publish(ctx, "test:auth-events", "{not json").Err())
	require.NoError(t, bus.Publish(ctx, domainauth.Event{Kind: domainauth.EventSignedOut}))

	// The malformed payload is skipped; the valid one still arrives.
	select {
	case got := <-events:
		assert.Equal(t, domainauth.EventSignedOut, got.Kind)
	case <-ctx.Done():
		t.Fatal("timed out waiting for event")
	}
}

func TestEventBus_CloseStopsDelivery(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	bus := NewEventBus(client, "test:auth-events", nil)

	events, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	require.NoError(t, bus.Close())
	require.NoError(t, bus.Close(), "double close is safe")

	select {
	case _, ok := <-events:
		assert.False(t, ok, "channel should be closed after Close")
	case <-time.After(2 * time.Second):
		t.Fatal("event channel not closed after Close")
	}
}

func TestEventBus_SecondSubscribeRejected(t *testing.T) {
	client := testutil.SetupTestRedis(t)
	defer client.Close()

	ctx := context.Background()
	bus := NewEventBus(client, "test:auth-events", nil)
	defer bus.Close()

	_, err := bus.Subscribe(ctx)
	require.NoError(t, err)

	_, err = bus.Subscribe(ctx)
	assert.Error(t, err)
}
