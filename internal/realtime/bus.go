package realtime

import (
	"sync"

	"go.uber.org/zap"

	"github.com/giftwell/backend/domain"
)

const defaultSubscriberBuffer = 32

// Bus is an in-process typed pub/sub with one named channel per wishlist id.
// It is handed to every component that publishes instead of living as a
// package global. Delivery is at-most-once: a subscriber that cannot keep up
// or has already disconnected simply misses the event, and clients reconcile
// by re-fetching on reconnect.
//
// Multi-process fan-out is an extension point: swap this implementation for
// one backed by Redis Pub/Sub behind the same usecase.EventPublisher port.
type Bus struct {
	logger *zap.Logger
	buffer int

	mu       sync.RWMutex
	channels map[string]map[*Subscriber]struct{}
}

// NewBus creates an event bus. buffer controls the per-subscriber queue
// depth; zero picks the default.
func NewBus(buffer int, logger *zap.Logger) *Bus {
	if buffer <= 0 {
		buffer = defaultSubscriberBuffer
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		logger:   logger,
		buffer:   buffer,
		channels: make(map[string]map[*Subscriber]struct{}),
	}
}

// Publish delivers event to every subscriber of the wishlist's channel.
// Publish happens synchronously after each mutation's commit, from the same
// goroutine that performed the mutation, which is what gives per-item
// ordering; the send itself never blocks.
func (b *Bus) Publish(wishlistID string, event domain.Event) {
	b.mu.RLock()
	defer b.mu.RUnlock()

	for sub := range b.channels[wishlistID] {
		select {
		case sub.events <- event:
		default:
			b.logger.Debug("dropping event for slow subscriber",
				zap.String("wishlist_id", wishlistID),
				zap.String("event_type", string(event.Type)))
		}
	}
}

// NewSubscriber registers a fresh subscriber with no channel memberships.
// One subscriber corresponds to one connected client.
func (b *Bus) NewSubscriber() *Subscriber {
	return &Subscriber{
		bus:    b,
		events: make(chan domain.Event, b.buffer),
		topics: make(map[string]struct{}),
	}
}

func (b *Bus) join(sub *Subscriber, wishlistID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.channels[wishlistID]
	if !ok {
		subs = make(map[*Subscriber]struct{})
		b.channels[wishlistID] = subs
	}
	subs[sub] = struct{}{}
}

func (b *Bus) leave(sub *Subscriber, wishlistID string) {
	b.mu.Lock()
	defer b.mu.Unlock()

	subs, ok := b.channels[wishlistID]
	if !ok {
		return
	}
	delete(subs, sub)
	if len(subs) == 0 {
		delete(b.channels, wishlistID)
	}
}

// Subscriber multiplexes the events of every wishlist channel it has joined
// onto a single outbound queue.
type Subscriber struct {
	bus    *Bus
	events chan domain.Event

	mu     sync.Mutex
	topics map[string]struct{}
	closed bool
}

// Events is the subscriber's outbound queue, drained by the connection's
// write pump.
func (s *Subscriber) Events() <-chan domain.Event {
	return s.events
}

// Join subscribes to a wishlist channel. Joining twice is a no-op.
func (s *Subscriber) Join(wishlistID string) {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	if _, ok := s.topics[wishlistID]; ok {
		s.mu.Unlock()
		return
	}
	s.topics[wishlistID] = struct{}{}
	s.mu.Unlock()

	s.bus.join(s, wishlistID)
}

// Leave unsubscribes from a wishlist channel.
func (s *Subscriber) Leave(wishlistID string) {
	s.mu.Lock()
	delete(s.topics, wishlistID)
	s.mu.Unlock()

	s.bus.leave(s, wishlistID)
}

// Topics returns the wishlist ids the subscriber currently listens to.
func (s *Subscriber) Topics() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]string, 0, len(s.topics))
	for id := range s.topics {
		out = append(out, id)
	}
	return out
}

// Close detaches the subscriber from every channel. Events already queued
// stay readable; no further events arrive.
func (s *Subscriber) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	topics := make([]string, 0, len(s.topics))
	for id := range s.topics {
		topics = append(topics, id)
	}
	s.topics = make(map[string]struct{})
	s.mu.Unlock()

	for _, id := range topics {
		s.bus.leave(s, id)
	}
}
