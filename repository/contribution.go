package repository

import (
	"context"

	"github.com/giftwell/backend/domain"
)

// ContributionRepository is the append-only funding ledger.
type ContributionRepository interface {
	ListByItem(ctx context.Context, itemID string) ([]domain.Contribution, error)

	// Apply runs the funding operation as one atomic unit of work: append
	// the ledger entry, atomically add its amount to the item's collected
	// total (guarded on the item being unreserved), and perform the
	// group-reservation transition when the total meets the price. The
	// transition is itself guarded on the reservation flag, so it happens
	// at most once per item even when racing a manual reserve; losing that
	// inner race is a silent no-op.
	//
	// Returns domain.ErrAlreadyReserved when the item is reserved and
	// domain.ErrItemNotFound when it does not exist.
	Apply(ctx context.Context, c *domain.Contribution) (*domain.FundingResult, error)
}
