package postgres

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
)

type wishlistRepository struct {
	pool *pgxpool.Pool
}

// NewWishlistRepository returns a Postgres-backed implementation of WishlistRepository.
func NewWishlistRepository(pool *pgxpool.Pool) repository.WishlistRepository {
	return &wishlistRepository{pool: pool}
}

func (r *wishlistRepository) GetByID(ctx context.Context, id string) (*domain.Wishlist, error) {
	const query = `
	SELECT id, owner_id, title, theme, pinned, created_at, updated_at
	FROM wishlists
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanWishlist(row)
}

func (r *wishlistRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Wishlist, error) {
	const query = `
	SELECT id, owner_id, title, theme, pinned, created_at, updated_at
	FROM wishlists
	WHERE owner_id = $1
	ORDER BY created_at DESC
	`
	rows, err := r.pool.Query(ctx, query, ownerID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lists []domain.Wishlist
	for rows.Next() {
		list, err := scanWishlist(rows)
		if err != nil {
			return nil, err
		}
		lists = append(lists, *list)
	}
	return lists, rows.Err()
}

func (r *wishlistRepository) Create(ctx context.Context, list *domain.Wishlist) (*domain.Wishlist, error) {
	if list == nil {
		return nil, domain.ErrInvalidPayload
	}
	if list.ID == "" {
		list.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO wishlists (id, owner_id, title, theme, pinned)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		list.ID,
		list.OwnerID,
		list.Title,
		nullString(list.Theme),
		list.Pinned,
	).Scan(&list.CreatedAt, &list.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return list, nil
}

func (r *wishlistRepository) SetPinned(ctx context.Context, id string, pinned []string) error {
	const query = `
	UPDATE wishlists
	SET pinned = $2,
		updated_at = NOW()
	WHERE id = $1
	`
	tag, err := r.pool.Exec(ctx, query, id, pinned)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWishlistNotFound
	}
	return nil
}

func (r *wishlistRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM wishlists WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrWishlistNotFound
	}
	return nil
}

func scanWishlist(row pgx.Row) (*domain.Wishlist, error) {
	var (
		list  domain.Wishlist
		theme *string
	)
	if err := row.Scan(
		&list.ID,
		&list.OwnerID,
		&list.Title,
		&theme,
		&list.Pinned,
		&list.CreatedAt,
		&list.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrWishlistNotFound
		}
		return nil, err
	}
	if theme != nil {
		list.Theme = *theme
	}
	return &list, nil
}
