package event

import (
	"context"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"

	"github.com/englishbooster/affiliate/internal/domain/shared"
	"go.uber.org/zap"
)

// subscription binds a handler to the event types it wants. An empty
// type set matches every event.
type subscription struct {
	handler shared.EventHandler
	types   map[string]struct{}
}

func (s subscription) matches(eventType string) bool {
	if len(s.types) == 0 {
		return true
	}
	_, ok := s.types[eventType]
	return ok
}

// InMemoryEventBus dispatches events synchronously, in subscription order.
// Handler failures are logged and never reach the publisher since events
// are only published once the state change is committed.
type InMemoryEventBus struct {
	mu      sync.RWMutex
	subs    []subscription
	log     *zap.Logger
	stopped atomic.Bool
}

func NewInMemoryEventBus(log *zap.Logger) *InMemoryEventBus {
	return &InMemoryEventBus{log: log}
}

func (b *InMemoryEventBus) Publish(ctx context.Context, events ...shared.DomainEvent) error {
	if b.stopped.Load() {
		b.log.Warn("Event bus stopped, dropping events", zap.Int("count", len(events)))
		return nil
	}
	for _, e := range events {
		for _, h := range b.handlersFor(e.EventType()) {
			if err := deliver(ctx, h, e); err != nil {
				b.log.Error("Event handler failed",
					zap.String("event_type", e.EventType()),
					zap.Stringer("event_id", e.EventID()),
					zap.Stringer("aggregate_id", e.AggregateID()),
					zap.Error(err))
			}
		}
	}
	return nil
}

// PublishFrom drains and publishes the pending events of each aggregate
func (b *InMemoryEventBus) PublishFrom(ctx context.Context, aggregates ...shared.AggregateRoot) error {
	return shared.PublishAggregateEvents(ctx, b, aggregates...)
}

// Subscribe registers handler for eventTypes. With no types given the
// handler's own EventTypes are used, and an empty list there subscribes
// it to everything.
func (b *InMemoryEventBus) Subscribe(handler shared.EventHandler, eventTypes ...string) {
	if len(eventTypes) == 0 {
		eventTypes = handler.EventTypes()
	}
	sub := subscription{handler: handler, types: make(map[string]struct{}, len(eventTypes))}
	for _, t := range eventTypes {
		sub.types[t] = struct{}{}
	}

	b.mu.Lock()
	b.subs = append(b.subs, sub)
	b.mu.Unlock()
	b.log.Debug("Event handler subscribed", zap.Strings("event_types", eventTypes))
}

func (b *InMemoryEventBus) Unsubscribe(handler shared.EventHandler) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.subs = slices.DeleteFunc(b.subs, func(s subscription) bool { return s.handler == handler })
}

func (b *InMemoryEventBus) Start(context.Context) error {
	b.stopped.Store(false)
	b.log.Info("Event bus started")
	return nil
}

// Stop makes later Publish calls drop their events until Start
func (b *InMemoryEventBus) Stop(context.Context) error {
	b.stopped.Store(true)
	b.log.Info("Event bus stopped")
	return nil
}

func (b *InMemoryEventBus) handlersFor(eventType string) []shared.EventHandler {
	b.mu.RLock()
	defer b.mu.RUnlock()

	var out []shared.EventHandler
	for _, s := range b.subs {
		if s.matches(eventType) {
			out = append(out, s.handler)
		}
	}
	return out
}

func deliver(ctx context.Context, h shared.EventHandler, e shared.DomainEvent) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panicked: %v", r)
		}
	}()
	return h.Handle(ctx, e)
}

var _ shared.EventBus = (*InMemoryEventBus)(nil)
