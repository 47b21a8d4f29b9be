package contribution

import (
	"context"

	"go.uber.org/zap"

	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/repository"
	"github.com/giftwell/backend/usecase"
)

// UseCase drives the funding ledger and the group-reservation transition.
type UseCase struct {
	items  repository.ItemRepository
	ledger repository.ContributionRepository
	events usecase.EventPublisher
	logger *zap.Logger
}

func New(
	items repository.ItemRepository,
	ledger repository.ContributionRepository,
	events usecase.EventPublisher,
	logger *zap.Logger,
) *UseCase {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &UseCase{
		items:  items,
		ledger: ledger,
		events: events,
		logger: logger,
	}
}

// Input describes one contribution attempt.
type Input struct {
	ItemID          string
	Identity        string
	ContributorName string
	AmountCents     int64
	Message         string
}

// Contribute appends a ledger entry and applies its amount atomically.
// A contribution that overshoots the price is accepted in full; funding is
// "at least", not "exactly". When the new total meets the price the item
// flips to the group reservation, exactly once, even against a racing manual
// reserve.
func (uc *UseCase) Contribute(ctx context.Context, in Input) (*domain.FundingResult, error) {
	if in.AmountCents <= 0 {
		return nil, domain.NewError(domain.ErrCodeInvalid, "contribution amount must be positive")
	}
	name := in.ContributorName
	if name == "" {
		name = in.Identity
	}
	if name == "" {
		return nil, domain.NewError(domain.ErrCodeInvalid, "contributor name required")
	}

	rec, err := uc.items.GetWithOwner(ctx, in.ItemID)
	if err != nil {
		return nil, err
	}
	if in.Identity != "" && in.Identity == rec.OwnerID {
		return nil, domain.ErrOwnItem
	}

	result, err := uc.ledger.Apply(ctx, &domain.Contribution{
		ItemID:          in.ItemID,
		ContributorName: name,
		AmountCents:     in.AmountCents,
		Message:         in.Message,
	})
	if err != nil {
		if domain.IsDomainError(err, domain.ErrCodeConflict) {
			uc.logger.Debug("contribution rejected, item already reserved",
				zap.String("item_id", in.ItemID))
		}
		return nil, err
	}

	uc.logger.Info("contribution recorded",
		zap.String("item_id", in.ItemID),
		zap.Int64("amount_cents", in.AmountCents),
		zap.Bool("crossed_threshold", result.CrossedThreshold))
	uc.events.Publish(rec.Item.WishlistID, domain.NewContributionAddedEvent(rec.Item.WishlistID, in.ItemID, result))
	return result, nil
}

// ListForItem returns the item's ledger, oldest first.
func (uc *UseCase) ListForItem(ctx context.Context, itemID string) ([]domain.Contribution, error) {
	return uc.ledger.ListByItem(ctx, itemID)
}
