package domain

// EventType tags the variants of the live event stream.
type EventType string

const (
	EventItemAdded         EventType = "item_added"
	EventItemDeleted       EventType = "item_deleted"
	EventItemReserved      EventType = "item_reserved"
	EventItemUnreserved    EventType = "item_unreserved"
	EventContributionAdded EventType = "contribution_added"
	EventHypeIncremented   EventType = "hype_incremented"
	EventPresenceChanged   EventType = "presence_changed"
)

// Event is a transient message fanned out to every session subscribed to the
// wishlist's channel. It is never persisted; clients treat their local state
// as a cache and re-fetch on reconnect.
type Event struct {
	Type       EventType `json:"type"`
	WishlistID string    `json:"wishlist_id"`
	ItemID     string    `json:"item_id,omitempty"`

	// Post-mutation fields, populated per variant.
	ReservedBy       string `json:"reserved_by,omitempty"`
	CollectedCents   int64  `json:"collected_cents,omitempty"`
	CrossedThreshold bool   `json:"crossed_threshold,omitempty"`
	HypeCount        int64  `json:"hype_count,omitempty"`
	ViewerCount      int    `json:"viewer_count,omitempty"`
	Item             *Item  `json:"item,omitempty"`
}

func NewItemAddedEvent(item *Item) Event {
	return Event{
		Type:       EventItemAdded,
		WishlistID: item.WishlistID,
		ItemID:     item.ID,
		Item:       item,
	}
}

func NewItemDeletedEvent(wishlistID, itemID string) Event {
	return Event{Type: EventItemDeleted, WishlistID: wishlistID, ItemID: itemID}
}

func NewItemReservedEvent(wishlistID, itemID, holder string) Event {
	return Event{
		Type:       EventItemReserved,
		WishlistID: wishlistID,
		ItemID:     itemID,
		ReservedBy: holder,
	}
}

func NewItemUnreservedEvent(wishlistID, itemID string) Event {
	return Event{Type: EventItemUnreserved, WishlistID: wishlistID, ItemID: itemID}
}

func NewContributionAddedEvent(wishlistID, itemID string, result *FundingResult) Event {
	ev := Event{
		Type:       EventContributionAdded,
		WishlistID: wishlistID,
		ItemID:     itemID,
	}
	if result != nil {
		ev.CollectedCents = result.CollectedCents
		ev.CrossedThreshold = result.CrossedThreshold
		if result.CrossedThreshold {
			ev.ReservedBy = GroupContributionHolder
		}
	}
	return ev
}

func NewHypeEvent(wishlistID, itemID string, count int64) Event {
	return Event{
		Type:       EventHypeIncremented,
		WishlistID: wishlistID,
		ItemID:     itemID,
		HypeCount:  count,
	}
}

func NewPresenceEvent(wishlistID string, viewers int) Event {
	return Event{
		Type:        EventPresenceChanged,
		WishlistID:  wishlistID,
		ViewerCount: viewers,
	}
}
