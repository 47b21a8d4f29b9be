package realtime

import (
	"testing"

	"github.com/giftwell/backend/domain"
)

func drain(s *Subscriber) []domain.Event {
	var out []domain.Event
	for {
		select {
		case ev := <-s.Events():
			out = append(out, ev)
		default:
			return out
		}
	}
}

func TestPublishReachesJoinedSubscribers(t *testing.T) {
	bus := NewBus(8, nil)

	a := bus.NewSubscriber()
	b := bus.NewSubscriber()
	a.Join("list-1")
	b.Join("list-1")

	bus.Publish("list-1", domain.NewItemUnreservedEvent("list-1", "item-1"))

	for name, sub := range map[string]*Subscriber{"a": a, "b": b} {
		events := drain(sub)
		if len(events) != 1 {
			t.Fatalf("subscriber %s: got %d events, want 1", name, len(events))
		}
		if events[0].Type != domain.EventItemUnreserved || events[0].ItemID != "item-1" {
			t.Errorf("subscriber %s: unexpected event %+v", name, events[0])
		}
	}
}

func TestPublishScopedToChannel(t *testing.T) {
	bus := NewBus(8, nil)

	sub := bus.NewSubscriber()
	sub.Join("list-1")

	bus.Publish("list-2", domain.NewItemDeletedEvent("list-2", "item-9"))

	if events := drain(sub); len(events) != 0 {
		t.Fatalf("got %d events from a channel never joined, want 0", len(events))
	}
}

func TestSubscriberMultiplexesChannels(t *testing.T) {
	bus := NewBus(8, nil)

	sub := bus.NewSubscriber()
	sub.Join("list-1")
	sub.Join("list-2")

	bus.Publish("list-1", domain.NewItemDeletedEvent("list-1", "item-1"))
	bus.Publish("list-2", domain.NewItemDeletedEvent("list-2", "item-2"))

	events := drain(sub)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
}

func TestPerItemOrderingPreserved(t *testing.T) {
	bus := NewBus(8, nil)

	sub := bus.NewSubscriber()
	sub.Join("list-1")

	bus.Publish("list-1", domain.NewItemReservedEvent("list-1", "item-1", "Sam"))
	bus.Publish("list-1", domain.NewItemUnreservedEvent("list-1", "item-1"))

	events := drain(sub)
	if len(events) != 2 {
		t.Fatalf("got %d events, want 2", len(events))
	}
	if events[0].Type != domain.EventItemReserved || events[1].Type != domain.EventItemUnreserved {
		t.Errorf("events out of order: %v then %v", events[0].Type, events[1].Type)
	}
}

func TestSlowSubscriberDropsInsteadOfBlocking(t *testing.T) {
	bus := NewBus(1, nil)

	sub := bus.NewSubscriber()
	sub.Join("list-1")

	bus.Publish("list-1", domain.NewItemDeletedEvent("list-1", "item-1"))
	bus.Publish("list-1", domain.NewItemDeletedEvent("list-1", "item-2"))

	events := drain(sub)
	if len(events) != 1 {
		t.Fatalf("got %d events, want 1 (second publish should drop)", len(events))
	}
	if events[0].ItemID != "item-1" {
		t.Errorf("kept event %q, want the first one", events[0].ItemID)
	}
}

func TestLeaveStopsDelivery(t *testing.T) {
	bus := NewBus(8, nil)

	sub := bus.NewSubscriber()
	sub.Join("list-1")
	sub.Leave("list-1")

	bus.Publish("list-1", domain.NewItemDeletedEvent("list-1", "item-1"))

	if events := drain(sub); len(events) != 0 {
		t.Fatalf("got %d events after leave, want 0", len(events))
	}
}

func TestCloseDetachesFromAllChannels(t *testing.T) {
	bus := NewBus(8, nil)

	sub := bus.NewSubscriber()
	sub.Join("list-1")
	sub.Join("list-2")
	sub.Close()

	bus.Publish("list-1", domain.NewItemDeletedEvent("list-1", "item-1"))
	bus.Publish("list-2", domain.NewItemDeletedEvent("list-2", "item-2"))

	if events := drain(sub); len(events) != 0 {
		t.Fatalf("got %d events after close, want 0", len(events))
	}

	// Join after close must stay a no-op.
	sub.Join("list-1")
	bus.Publish("list-1", domain.NewItemDeletedEvent("list-1", "item-3"))
	if events := drain(sub); len(events) != 0 {
		t.Fatalf("closed subscriber rejoined a channel")
	}
}
