package wishlist

import (
	"context"

	"go.uber.org/zap"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
)

type UseCase struct {
	wishlists repository.WishlistRepository
	items     repository.ItemRepository
	ledger    repository.ContributionRepository
	logger    *zap.Logger
}

func New(
	wishlists repository.WishlistRepository,
	items repository.ItemRepository,
	ledger repository.ContributionRepository,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		wishlists: wishlists,
		items:     items,
		ledger:    ledger,
		logger:    logger,
	}
}

// Create makes a new wishlist owned by identity.
func (uc *UseCase) Create(ctx context.Context, identity string, list *domain.Wishlist) (*domain.Wishlist, error) {
	if identity == "" {
		return nil, domain.ErrUnauthorized
	}
	if list == nil || list.Title == "" {
		return nil, domain.ErrInvalidPayload
	}
	if err := domain.ValidatePinned(list.Pinned); err != nil {
		return nil, err
	}
	list.OwnerID = identity
	return uc.wishlists.Create(ctx, list)
}

// Get returns the wishlist with its items and ledgers. When the viewer is
// the owner the result is redacted: no reservation flags, no collected
// amounts, no contributions. The redaction lives strictly on this read path;
// an owner's own writes are already rejected upstream as Forbidden.
func (uc *UseCase) Get(ctx context.Context, id, viewerIdentity string) (*domain.Wishlist, error) {
	list, err := uc.wishlists.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	items, err := uc.items.ListByWishlist(ctx, id)
	if err != nil {
		return nil, err
	}
	list.Items = items

	if list.IsOwner(viewerIdentity) {
		return list.Redacted(), nil
	}

	for i := range list.Items {
		contribs, err := uc.ledger.ListByItem(ctx, list.Items[i].ID)
		if err != nil {
			return nil, err
		}
		list.Items[i].Contributions = contribs
	}
	return list, nil
}

// ListByOwner returns the caller's own lists without item details.
func (uc *UseCase) ListByOwner(ctx context.Context, identity string) ([]domain.Wishlist, error) {
	if identity == "" {
		return nil, domain.ErrUnauthorized
	}
	return uc.wishlists.ListByOwner(ctx, identity)
}

// SetPinned replaces the owner's pinned sequence, enforcing the max-length
// invariant at this write boundary.
func (uc *UseCase) SetPinned(ctx context.Context, id, identity string, pinned []string) error {
	if err := domain.ValidatePinned(pinned); err != nil {
		return err
	}

	list, err := uc.wishlists.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !list.IsOwner(identity) {
		return domain.NewError(domain.ErrCodeForbidden, "only the owner can pin items")
	}

	return uc.wishlists.SetPinned(ctx, id, pinned)
}

// Delete removes the caller's own wishlist and everything under it.
func (uc *UseCase) Delete(ctx context.Context, id, identity string) error {
	list, err := uc.wishlists.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if !list.IsOwner(identity) {
		return domain.NewError(domain.ErrCodeForbidden, "only the owner can delete a wishlist")
	}
	return uc.wishlists.Delete(ctx, id)
}
