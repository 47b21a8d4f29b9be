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

type itemRepository struct {
	pool *pgxpool.Pool
}

// NewItemRepository returns a Postgres-backed implementation of ItemRepository.
func NewItemRepository(pool *pgxpool.Pool) repository.ItemRepository {
	return &itemRepository{pool: pool}
}

const itemColumns = `id, wishlist_id, title, url, price_cents, is_reserved, reserved_by, collected_cents, hype_count, created_at, updated_at`

func (r *itemRepository) GetByID(ctx context.Context, id string) (*domain.Item, error) {
	const query = `
	SELECT ` + itemColumns + `
	FROM items
	WHERE id = $1
	`
	row := r.pool.QueryRow(ctx, query, id)
	return scanItem(row)
}

func (r *itemRepository) GetWithOwner(ctx context.Context, id string) (*repository.ItemWithOwner, error) {
	const query = `
	SELECT i.id, i.wishlist_id, i.title, i.url, i.price_cents, i.is_reserved, i.reserved_by,
	       i.collected_cents, i.hype_count, i.created_at, i.updated_at, w.owner_id
	FROM items i
	JOIN wishlists w ON w.id = i.wishlist_id
	WHERE i.id = $1
	`
	var (
		item       domain.Item
		reservedBy *string
		url        *string
		ownerID    string
	)
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&item.ID,
		&item.WishlistID,
		&item.Title,
		&url,
		&item.PriceCents,
		&item.IsReserved,
		&reservedBy,
		&item.CollectedCents,
		&item.HypeCount,
		&item.CreatedAt,
		&item.UpdatedAt,
		&ownerID,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	if url != nil {
		item.URL = *url
	}
	if reservedBy != nil {
		item.ReservedBy = *reservedBy
	}
	return &repository.ItemWithOwner{Item: item, OwnerID: ownerID}, nil
}

func (r *itemRepository) ListByWishlist(ctx context.Context, wishlistID string) ([]domain.Item, error) {
	const query = `
	SELECT ` + itemColumns + `
	FROM items
	WHERE wishlist_id = $1
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, wishlistID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []domain.Item
	for rows.Next() {
		item, err := scanItem(rows)
		if err != nil {
			return nil, err
		}
		items = append(items, *item)
	}
	return items, rows.Err()
}

func (r *itemRepository) Create(ctx context.Context, item *domain.Item) (*domain.Item, error) {
	if item == nil {
		return nil, domain.ErrInvalidPayload
	}
	if item.ID == "" {
		item.ID = uuid.NewString()
	}

	const query = `
	INSERT INTO items (id, wishlist_id, title, url, price_cents)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at, updated_at
	`
	err := r.pool.QueryRow(ctx, query,
		item.ID,
		item.WishlistID,
		item.Title,
		nullString(item.URL),
		item.PriceCents,
	).Scan(&item.CreatedAt, &item.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return item, nil
}

func (r *itemRepository) Delete(ctx context.Context, id string) error {
	const query = `DELETE FROM items WHERE id = $1`
	tag, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrItemNotFound
	}
	return nil
}

// Reserve is the single test-and-set the reservation contract rests on: the
// guard and the write are one statement, so of any number of concurrent
// callers exactly one sees a row affected.
func (r *itemRepository) Reserve(ctx context.Context, id, holder string) error {
	const query = `
	UPDATE items
	SET is_reserved = TRUE,
		reserved_by = $2,
		updated_at = NOW()
	WHERE id = $1 AND is_reserved = FALSE
	`
	tag, err := r.pool.Exec(ctx, query, id, holder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.conditionalFailure(ctx, id, domain.ErrAlreadyReserved)
	}
	return nil
}

func (r *itemRepository) Unreserve(ctx context.Context, id, holder string) error {
	const query = `
	UPDATE items
	SET is_reserved = FALSE,
		reserved_by = NULL,
		updated_at = NOW()
	WHERE id = $1 AND is_reserved = TRUE AND reserved_by = $2
	`
	tag, err := r.pool.Exec(ctx, query, id, holder)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return r.conditionalFailure(ctx, id, domain.ErrNotHolder)
	}
	return nil
}

func (r *itemRepository) IncrementHype(ctx context.Context, id string) (int64, error) {
	const query = `
	UPDATE items
	SET hype_count = hype_count + 1,
		updated_at = NOW()
	WHERE id = $1
	RETURNING hype_count
	`
	var count int64
	if err := r.pool.QueryRow(ctx, query, id).Scan(&count); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, domain.ErrItemNotFound
		}
		return 0, err
	}
	return count, nil
}

// conditionalFailure disambiguates a zero-row conditional update: the item is
// either missing or the guard lost a race.
func (r *itemRepository) conditionalFailure(ctx context.Context, id string, conflict error) error {
	const query = `SELECT 1 FROM items WHERE id = $1`
	var one int
	if err := r.pool.QueryRow(ctx, query, id).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return err
	}
	return conflict
}

func scanItem(row pgx.Row) (*domain.Item, error) {
	var (
		item       domain.Item
		url        *string
		reservedBy *string
	)
	if err := row.Scan(
		&item.ID,
		&item.WishlistID,
		&item.Title,
		&url,
		&item.PriceCents,
		&item.IsReserved,
		&reservedBy,
		&item.CollectedCents,
		&item.HypeCount,
		&item.CreatedAt,
		&item.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrItemNotFound
		}
		return nil, err
	}
	if url != nil {
		item.URL = *url
	}
	if reservedBy != nil {
		item.ReservedBy = *reservedBy
	}
	return &item, nil
}
