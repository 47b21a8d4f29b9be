package domain

import "time"

// GroupContributionHolder is the reservation label applied when accumulated
// contributions meet an item's price. The transition to it happens at most
// once per item and is never re-opened by further contributions.
const GroupContributionHolder = "Group contribution"

// Item is a single wishlist entry whose reservation and funding state is the
// shared mutable core of the system. The reservation flag, collected amount
// and hype counter change only through the repository's atomic primitives.
type Item struct {
	ID         string `json:"id"`
	WishlistID string `json:"wishlist_id"`
	Title      string `json:"title"`
	URL        string `json:"url,omitempty"`

	// PriceCents is optional; nil means the item has no funding threshold.
	PriceCents *int64 `json:"price_cents,omitempty"`

	IsReserved     bool   `json:"is_reserved"`
	ReservedBy     string `json:"reserved_by,omitempty"`
	CollectedCents int64  `json:"collected_cents"`
	HypeCount      int64  `json:"hype_count"`

	Contributions []Contribution `json:"contributions,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// FullyFunded reports whether collected contributions meet the price.
// Items without a price can never be fully funded.
func (i *Item) FullyFunded() bool {
	return i != nil && i.PriceCents != nil && i.CollectedCents >= *i.PriceCents
}
