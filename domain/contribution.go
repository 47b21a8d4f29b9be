package domain

import "time"

// Contribution is an append-only ledger entry toward an item's price.
// Entries are never mutated or deleted after creation; removing an item
// cascades to its ledger.
type Contribution struct {
	ID              string    `json:"id"`
	ItemID          string    `json:"item_id"`
	ContributorName string    `json:"contributor_name"`
	AmountCents     int64     `json:"amount_cents"`
	Message         string    `json:"message,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
}

// FundingResult reports the outcome of applying one contribution.
type FundingResult struct {
	Contribution   *Contribution `json:"contribution"`
	CollectedCents int64         `json:"collected_cents"`
	// CrossedThreshold is true only for the single contribution whose
	// increment carried the collected total past the item's price.
	CrossedThreshold bool `json:"crossed_threshold"`
}
