package transport

type WishlistRequest struct {
	Title  string   `json:"title"`
	Theme  string   `json:"theme"`
	Pinned []string `json:"pinned"`
}

type PinnedRequest struct {
	Pinned []string `json:"pinned"`
}

type ItemRequest struct {
	WishlistID string `json:"wishlist_id"`
	Title      string `json:"title"`
	URL        string `json:"url"`
	PriceCents *int64 `json:"price_cents"`
}

type ReserveRequest struct {
	// GuestName identifies unauthenticated callers; ignored when a bearer
	// token already resolved an identity.
	GuestName string `json:"guest_name"`
	Label     string `json:"label"`
}

type UnreserveRequest struct {
	GuestName string `json:"guest_name"`
}

type ContributeRequest struct {
	GuestName   string `json:"guest_name"`
	AmountCents int64  `json:"amount_cents"`
	Message     string `json:"message"`
}

type RegisterRequest struct {
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type AuthLoginRequest struct {
	UserID string `json:"user_id"`
	TTL    int    `json:"ttl_seconds"`
}

type RefreshRequest struct {
	SessionID string `json:"session_id"`
	TTL       int    `json:"ttl_seconds"`
}
