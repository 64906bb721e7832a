package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	domainauth "github.com/target/studio-ui-auth/internal/domain/auth"
	"github.com/target/studio-ui-auth/internal/ports"
)

// RemoteEventHandler consumes auth events observed from other instances.
// SessionService implements it.
type RemoteEventHandler interface {
	HandleRemoteEvent(ctx context.Context, ev domainauth.Event)
}

// CrossTabSyncOptions groups dependencies for CrossTabSync.
type CrossTabSyncOptions struct {
	Source  ports.AuthEventSource
	Handler RemoteEventHandler
	Logger  *slog.Logger
}

// CrossTabSync is the single long-lived worker that feeds remote auth
// events into the session service. Construct one per process and manage it
// through Start and Stop; a second Start without a Stop is an error.
type CrossTabSync struct {
	source  ports.AuthEventSource
	handler RemoteEventHandler
	logger  *slog.Logger

	mu      sync.Mutex
	started bool
	cancel  context.CancelFunc
	done    chan struct{}
}

// NewCrossTabSync constructs a CrossTabSync.
func NewCrossTabSync(opts CrossTabSyncOptions) *CrossTabSync {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	return &CrossTabSync{
		source:  opts.Source,
		handler: opts.Handler,
		logger:  logger,
	}
}

// Start subscribes to the event source and begins dispatching events until
// ctx is cancelled or Stop is called.
func (c *CrossTabSync) Start(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.started {
		return errors.New("cross-tab sync already started")
	}

	runCtx, cancel := context.WithCancel(ctx)
	events, err := c.source.Subscribe(runCtx)
	if err != nil {
		cancel()
		return fmt.Errorf("subscribe to auth events: %w", err)
	}

	c.started = true
	c.cancel = cancel
	c.done = make(chan struct{})

	go c.run(runCtx, events)
	c.logger.Info("cross-tab sync started")
	return nil
}

func (c *CrossTabSync) run(ctx context.Context, events <-chan domainauth.Event) {
	defer close(c.done)

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-events:
			if !ok {
				c.logger.Info("auth event stream closed")
				return
			}
			c.logger.Debug("remote auth event",
				slog.String("kind", string(ev.Kind)),
				slog.String("origin", ev.Origin))
			c.handler.HandleRemoteEvent(ctx, ev)
		}
	}
}

// Stop tears the subscription down and waits for the dispatch loop to
// drain. Safe to call without a prior Start and safe to call twice.
func (c *CrossTabSync) Stop() error {
	c.mu.Lock()
	if !c.started {
		c.mu.Unlock()
		return nil
	}
	c.started = false
	cancel := c.cancel
	done := c.done
	c.mu.Unlock()

	cancel()
	err := c.source.Close()
	<-done

	c.logger.Info("cross-tab sync stopped")
	return err
}
