package realtime

import (
	"sync"

	"github.com/giftwell/backend/domain"
)

// Publisher is the slice of the bus the tracker needs.
type Publisher interface {
	Publish(wishlistID string, event domain.Event)
}

// Presence tracks which sessions are viewing which wishlists and announces
// count changes through the bus. Counts are best effort: nothing survives a
// process restart, and zero is a perfectly valid room size.
type Presence struct {
	bus Publisher

	mu      sync.Mutex
	rooms   map[string]map[*Subscriber]struct{}
	members map[*Subscriber]map[string]struct{}
}

// NewPresence creates a tracker publishing through bus.
func NewPresence(bus Publisher) *Presence {
	return &Presence{
		bus:     bus,
		rooms:   make(map[string]map[*Subscriber]struct{}),
		members: make(map[*Subscriber]map[string]struct{}),
	}
}

// Join adds the session to the wishlist's room and announces the new size.
func (p *Presence) Join(session *Subscriber, wishlistID string) int {
	p.mu.Lock()
	room, ok := p.rooms[wishlistID]
	if !ok {
		room = make(map[*Subscriber]struct{})
		p.rooms[wishlistID] = room
	}
	room[session] = struct{}{}

	rooms, ok := p.members[session]
	if !ok {
		rooms = make(map[string]struct{})
		p.members[session] = rooms
	}
	rooms[wishlistID] = struct{}{}

	size := len(room)
	p.mu.Unlock()

	p.bus.Publish(wishlistID, domain.NewPresenceEvent(wishlistID, size))
	return size
}

// Leave removes the session from the wishlist's room and announces the new size.
func (p *Presence) Leave(session *Subscriber, wishlistID string) int {
	p.mu.Lock()
	size, removed := p.removeLocked(session, wishlistID)
	p.mu.Unlock()

	if removed {
		p.bus.Publish(wishlistID, domain.NewPresenceEvent(wishlistID, size))
	}
	return size
}

// Disconnect removes the session from every room it belonged to. Sizes are
// recomputed after removal, so the departing session never counts itself.
func (p *Presence) Disconnect(session *Subscriber) {
	p.mu.Lock()
	affected := make(map[string]int)
	for wishlistID := range p.members[session] {
		if size, removed := p.removeLocked(session, wishlistID); removed {
			affected[wishlistID] = size
		}
	}
	delete(p.members, session)
	p.mu.Unlock()

	for wishlistID, size := range affected {
		p.bus.Publish(wishlistID, domain.NewPresenceEvent(wishlistID, size))
	}
}

// Count returns the current room size for a wishlist.
func (p *Presence) Count(wishlistID string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.rooms[wishlistID])
}

func (p *Presence) removeLocked(session *Subscriber, wishlistID string) (size int, removed bool) {
	room, ok := p.rooms[wishlistID]
	if !ok {
		return 0, false
	}
	if _, ok := room[session]; !ok {
		return len(room), false
	}
	delete(room, session)
	if rooms := p.members[session]; rooms != nil {
		delete(rooms, wishlistID)
	}
	size = len(room)
	if size == 0 {
		delete(p.rooms, wishlistID)
	}
	return size, true
}
