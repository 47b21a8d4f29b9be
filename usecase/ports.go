package usecase

import (
	"context"

	"github.com/giftwell/backend/domain"
)

// EventPublisher is the bus port. Usecases publish synchronously right after
// a mutation commits, from the same goroutine that performed it, which is
// what gives viewers per-item event ordering.
type EventPublisher interface {
	Publish(wishlistID string, event domain.Event)
}

// HypeBuffer abstracts the offline hype queue so the item usecase stays
// storage-agnostic. Only hype goes through here: increments commute, so
// deferring them is safe. Reservations and contributions are never buffered;
// their correctness depends on hitting the store's atomic primitives live.
type HypeBuffer interface {
	BufferHype(ctx context.Context, wishlistID, itemID string) error
}
