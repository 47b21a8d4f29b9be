package repository

import (
	"context"

	"github.com/giftwell/backend/domain"
)

// ItemWithOwner pairs an item with the owner of the wishlist it belongs to,
// resolved in one query so permission checks don't need a second round trip.
type ItemWithOwner struct {
	Item    domain.Item
	OwnerID string
}

// ItemRepository is the item store. Reserve, Unreserve and IncrementHype are
// atomic conditional primitives: each one is a single guarded statement
// against the backing store, never a read followed by a separate write. All
// mutation of the reservation flag, collected amount and hype counter goes
// through these; unconditional writes to those fields are forbidden elsewhere.
type ItemRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Item, error)
	GetWithOwner(ctx context.Context, id string) (*ItemWithOwner, error)
	ListByWishlist(ctx context.Context, wishlistID string) ([]domain.Item, error)
	Create(ctx context.Context, item *domain.Item) (*domain.Item, error)
	Delete(ctx context.Context, id string) error

	// Reserve flips the item to reserved iff it is currently unreserved.
	// Returns domain.ErrAlreadyReserved when the guard fails and
	// domain.ErrItemNotFound when the item does not exist.
	Reserve(ctx context.Context, id, holder string) error

	// Unreserve clears the reservation iff it is currently held by holder.
	// Returns domain.ErrNotHolder when the guard fails.
	Unreserve(ctx context.Context, id, holder string) error

	// IncrementHype atomically bumps the hype counter and returns the new
	// value.
	IncrementHype(ctx context.Context, id string) (int64, error)
}
