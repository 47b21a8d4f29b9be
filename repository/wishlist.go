package repository

import (
	"context"

	"github.com/giftwell/backend/domain"
)

type WishlistRepository interface {
	GetByID(ctx context.Context, id string) (*domain.Wishlist, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Wishlist, error)
	Create(ctx context.Context, list *domain.Wishlist) (*domain.Wishlist, error)
	SetPinned(ctx context.Context, id string, pinned []string) error
	Delete(ctx context.Context, id string) error
}
