package domain

import "time"

// MaxPinnedItems caps how many items an owner can pin to the top of a list.
const MaxPinnedItems = 4

// Wishlist groups items under a single owner. The owner relationship lives
// here, not on the items.
type Wishlist struct {
	ID        string    `json:"id"`
	OwnerID   string    `json:"owner_id"`
	Title     string    `json:"title"`
	Theme     string    `json:"theme,omitempty"`
	Pinned    []string  `json:"pinned,omitempty"`
	Items     []Item    `json:"items,omitempty"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// IsOwner reports whether identity matches the list owner. An empty identity
// never matches, so guests are always treated as non-owners.
func (w *Wishlist) IsOwner(identity string) bool {
	return w != nil && identity != "" && w.OwnerID == identity
}

// ValidatePinned enforces the pinned-sequence invariant at the write boundary.
func ValidatePinned(pinned []string) error {
	if len(pinned) > MaxPinnedItems {
		return NewError(ErrCodeInvalid, "too many pinned items")
	}
	seen := make(map[string]struct{}, len(pinned))
	for _, id := range pinned {
		if id == "" {
			return NewError(ErrCodeInvalid, "pinned item id cannot be empty")
		}
		if _, dup := seen[id]; dup {
			return NewError(ErrCodeInvalid, "duplicate pinned item id")
		}
		seen[id] = struct{}{}
	}
	return nil
}

// Redacted returns a copy of the wishlist with all surprise-spoiling state
// stripped from every item. Applied only to the owner's own read of the list;
// write paths never see redacted data.
func (w *Wishlist) Redacted() *Wishlist {
	if w == nil {
		return nil
	}
	out := *w
	out.Items = make([]Item, len(w.Items))
	for i, item := range w.Items {
		item.IsReserved = false
		item.ReservedBy = ""
		item.CollectedCents = 0
		item.Contributions = nil
		out.Items[i] = item
	}
	return &out
}
