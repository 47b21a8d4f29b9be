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

type contributionRepository struct {
	pool *pgxpool.Pool
}

// NewContributionRepository returns a Postgres-backed funding ledger.
func NewContributionRepository(pool *pgxpool.Pool) repository.ContributionRepository {
	return &contributionRepository{pool: pool}
}

func (r *contributionRepository) ListByItem(ctx context.Context, itemID string) ([]domain.Contribution, error) {
	const query = `
	SELECT id, item_id, contributor_name, amount_cents, message, created_at
	FROM contributions
	WHERE item_id = $1
	ORDER BY created_at
	`
	rows, err := r.pool.Query(ctx, query, itemID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []domain.Contribution
	for rows.Next() {
		var (
			c       domain.Contribution
			message *string
		)
		if err := rows.Scan(&c.ID, &c.ItemID, &c.ContributorName, &c.AmountCents, &message, &c.CreatedAt); err != nil {
			return nil, err
		}
		if message != nil {
			c.Message = *message
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// Apply runs the whole funding operation in one transaction. The collected
// amount moves via a guarded relative UPDATE, never compute-then-store, so
// concurrent contributions serialize on the row and none loses its increment.
// The guarded UPDATE also holds the row lock for the rest of the transaction,
// which keeps a racing manual reserve out until the ledger entry and any
// threshold transition have committed together.
func (r *contributionRepository) Apply(ctx context.Context, c *domain.Contribution) (*domain.FundingResult, error) {
	if c == nil || c.AmountCents <= 0 {
		return nil, domain.ErrInvalidPayload
	}
	if c.ID == "" {
		c.ID = uuid.NewString()
	}

	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback(ctx)

	const increment = `
	UPDATE items
	SET collected_cents = collected_cents + $2,
		updated_at = NOW()
	WHERE id = $1 AND is_reserved = FALSE
	RETURNING collected_cents, price_cents
	`
	var (
		collected int64
		price     *int64
	)
	err = tx.QueryRow(ctx, increment, c.ItemID, c.AmountCents).Scan(&collected, &price)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, r.incrementFailure(ctx, tx, c.ItemID)
		}
		return nil, err
	}

	const insert = `
	INSERT INTO contributions (id, item_id, contributor_name, amount_cents, message)
	VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at
	`
	if err := tx.QueryRow(ctx, insert,
		c.ID,
		c.ItemID,
		c.ContributorName,
		c.AmountCents,
		nullString(c.Message),
	).Scan(&c.CreatedAt); err != nil {
		return nil, err
	}

	result := &domain.FundingResult{Contribution: c, CollectedCents: collected}

	if price != nil && collected >= *price {
		// Guarded again on the flag: if a manual reserve slipped in
		// ahead of this transaction the transition simply does not
		// fire, and that is not a caller-visible failure.
		const transition = `
		UPDATE items
		SET is_reserved = TRUE,
			reserved_by = $2,
			updated_at = NOW()
		WHERE id = $1 AND is_reserved = FALSE
		`
		tag, err := tx.Exec(ctx, transition, c.ItemID, domain.GroupContributionHolder)
		if err != nil {
			return nil, err
		}
		result.CrossedThreshold = tag.RowsAffected() > 0
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *contributionRepository) incrementFailure(ctx context.Context, tx pgx.Tx, itemID string) error {
	const query = `SELECT 1 FROM items WHERE id = $1`
	var one int
	if err := tx.QueryRow(ctx, query, itemID).Scan(&one); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return domain.ErrItemNotFound
		}
		return err
	}
	return domain.ErrAlreadyReserved
}
