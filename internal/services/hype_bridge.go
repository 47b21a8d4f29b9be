package services

import (
	"context"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/internal/infrastructure/buffer"
	"github.com/giftwell/backend/usecase"
)

// HypeBridge adapts the buffer store to the usecase port. The usecase has
// already tried the live increment by the time it lands here, so the bridge
// only enqueues.
type HypeBridge struct {
	store *buffer.Store
}

func NewHypeBridge(store *buffer.Store) *HypeBridge {
	return &HypeBridge{store: store}
}

func (b *HypeBridge) BufferHype(ctx context.Context, wishlistID, itemID string) error {
	if b.store == nil || itemID == "" {
		return domain.ErrInvalidPayload
	}
	return b.store.Enqueue(buffer.Increment{
		WishlistID: wishlistID,
		ItemID:     itemID,
	})
}

var _ usecase.HypeBuffer = (*HypeBridge)(nil)
