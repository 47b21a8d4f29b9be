package item

import (
	"context"

	"go.uber.org/zap"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
	"github.com/giftwell/backend/usecase"
)

type UseCase struct {
	items     repository.ItemRepository
	wishlists repository.WishlistRepository
	events    usecase.EventPublisher
	buffer    usecase.HypeBuffer
	logger    *zap.Logger
}

func New(
	items repository.ItemRepository,
	wishlists repository.WishlistRepository,
	events usecase.EventPublisher,
	buffer usecase.HypeBuffer,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		items:     items,
		wishlists: wishlists,
		events:    events,
		buffer:    buffer,
		logger:    logger,
	}
}

// Add creates an item on the caller's own wishlist.
func (uc *UseCase) Add(ctx context.Context, identity string, item *domain.Item) (*domain.Item, error) {
	if item == nil || item.Title == "" || item.WishlistID == "" {
		return nil, domain.ErrInvalidPayload
	}
	if item.PriceCents != nil && *item.PriceCents < 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "price cannot be negative")
	}

	list, err := uc.wishlists.GetByID(ctx, item.WishlistID)
	if err != nil {
		return nil, err
	}
	if !list.IsOwner(identity) {
		return nil, domain.NewError(domain.ErrCodeForbidden, "only the owner can add items")
	}

	created, err := uc.items.Create(ctx, item)
	if err != nil {
		return nil, err
	}

	uc.events.Publish(created.WishlistID, domain.NewItemAddedEvent(created))
	return created, nil
}

// Delete removes an item from the caller's own wishlist; the ledger cascades
// away with it.
func (uc *UseCase) Delete(ctx context.Context, itemID, identity string) error {
	rec, err := uc.items.GetWithOwner(ctx, itemID)
	if err != nil {
		return err
	}
	if identity == "" || identity != rec.OwnerID {
		return domain.NewError(domain.ErrCodeForbidden, "only the owner can delete items")
	}

	if err := uc.items.Delete(ctx, itemID); err != nil {
		return err
	}

	uc.events.Publish(rec.Item.WishlistID, domain.NewItemDeletedEvent(rec.Item.WishlistID, itemID))
	return nil
}

// Hype bumps the item's hype counter. It has no state-machine coupling and
// never fails except on a missing item; if the store is unreachable the
// increment is queued and applied by the buffer processor later.
func (uc *UseCase) Hype(ctx context.Context, itemID string) (int64, error) {
	rec, err := uc.items.GetWithOwner(ctx, itemID)
	if err != nil {
		return 0, err
	}

	count, err := uc.items.IncrementHype(ctx, itemID)
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeNotFound) {
			return 0, err
		}
		if uc.shouldBuffer(ctx, rec.Item.WishlistID, itemID, err) {
			return rec.Item.HypeCount + 1, nil
		}
		return 0, err
	}

	uc.events.Publish(rec.Item.WishlistID, domain.NewHypeEvent(rec.Item.WishlistID, itemID, count))
	return count, nil
}

func (uc *UseCase) shouldBuffer(ctx context.Context, wishlistID, itemID string, cause error) bool {
	if uc.buffer == nil {
		return false
	}
	if err := uc.buffer.BufferHype(ctx, wishlistID, itemID); err != nil {
		uc.logger.Error("failed to buffer hype increment",
			zap.String("item_id", itemID),
			zap.Error(err))
		return false
	}
	uc.logger.Warn("hype increment buffered",
		zap.String("item_id", itemID),
		zap.Error(cause))
	return true
}
