package reservation

import (
	"context"

	"go.uber.org/zap"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
	"github.com/giftwell/backend/usecase"
)

// UseCase enforces the reserve/unreserve contract. There are no locks here:
// the guarded updates in the item store are the whole correctness argument,
// and they keep working across multiple service instances where an
// application-level mutex would not.
type UseCase struct {
	items  repository.ItemRepository
	events usecase.EventPublisher
	logger *zap.Logger
}

func New(items repository.ItemRepository, events usecase.EventPublisher, logger *zap.Logger) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		items:  items,
		events: events,
		logger: logger,
	}
}

// Reserve claims an item for holderLabel on behalf of identity. Of any number
// of concurrent callers exactly one wins; the rest get a Conflict, which is a
// normal outcome under contention, not an error condition.
func (uc *UseCase) Reserve(ctx context.Context, itemID, identity, holderLabel string) error {
	if holderLabel == "" {
		holderLabel = identity
	}
	if holderLabel == "" {
		return domain.NewError(domain.ErrCodeInvalid, "holder label required")
	}

	rec, err := uc.items.GetWithOwner(ctx, itemID)
	if err != nil {
		return err
	}
	if identity != "" && identity == rec.OwnerID {
		return domain.ErrOwnItem
	}

	if err := uc.items.Reserve(ctx, itemID, holderLabel); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			uc.logger.Debug("reserve lost the race",
				zap.String("item_id", itemID))
		}
		return err
	}

	uc.logger.Info("item reserved",
		zap.String("item_id", itemID),
		zap.String("wishlist_id", rec.Item.WishlistID))
	uc.events.Publish(rec.Item.WishlistID, domain.NewItemReservedEvent(rec.Item.WishlistID, itemID, holderLabel))
	return nil
}

// Unreserve releases a reservation held by identity.
func (uc *UseCase) Unreserve(ctx context.Context, itemID, identity string) error {
	if identity == "" {
		return domain.NewError(domain.ErrCodeForbidden, "identity required to release a reservation")
	}

	rec, err := uc.items.GetWithOwner(ctx, itemID)
	if err != nil {
		return err
	}

	if err := uc.items.Unreserve(ctx, itemID, identity); err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			uc.logger.Debug("unreserve rejected",
				zap.String("item_id", itemID))
		}
		return err
	}

	uc.logger.Info("item unreserved",
		zap.String("item_id", itemID),
		zap.String("wishlist_id", rec.Item.WishlistID))
	uc.events.Publish(rec.Item.WishlistID, domain.NewItemUnreservedEvent(rec.Item.WishlistID, itemID))
	return nil
}
