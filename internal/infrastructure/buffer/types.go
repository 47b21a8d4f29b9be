package buffer

import (
	"time"

	"github.com/google/uuid"
)

// Increment is one deferred hype bump waiting for the primary store to come
// back. Only hype lives here: the increments commute, so replay order does
// not matter.
type Increment struct {
	ID         string    `json:"id"`
	WishlistID string    `json:"wishlist_id"`
	ItemID     string    `json:"item_id"`
	Retries    int       `json:"retries"`
	Timestamp  time.Time `json:"timestamp"`

	bucketKey []byte
}

func (i *Increment) normalize() {
	if i.ID == "" {
		i.ID = uuid.NewString()
	}
	if i.Timestamp.IsZero() {
		i.Timestamp = time.Now()
	}
}
