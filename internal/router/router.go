package router

import (
	"github.com/fasthttp/router"
	"github.com/valyala/fasthttp"

	apiHandler "github.com/giftwell/backend/api/handler"
)

type Handlers struct {
	Auth     *apiHandler.AuthHandler
	Wishlist *apiHandler.WishlistHandler
	Item     *apiHandler.ItemHandler
	Live     *apiHandler.LiveHandler
	Health   *apiHandler.HealthHandler
}

type Middleware func(fasthttp.RequestHandler) fasthttp.RequestHandler

func New(handlers Handlers, requireAuth, optionalAuth, rateLimit Middleware) *router.Router {
	r := router.New()

	r.GET("/health", handlers.Health.Check)

	// Live event channel; identity is irrelevant here, viewers are anonymous.
	r.GET("/ws", handlers.Live.Connect)

	// Auth routes
	r.POST("/api/v1/auth/register", handlers.Auth.Register)
	r.POST("/api/v1/auth/login", handlers.Auth.Login)
	r.POST("/api/v1/auth/refresh", handlers.Auth.Refresh)

	// Owner-only routes
	r.GET("/api/v1/wishlists", requireAuth(handlers.Wishlist.List))
	r.POST("/api/v1/wishlists", requireAuth(handlers.Wishlist.Create))
	r.PUT("/api/v1/wishlists/{id}/pinned", requireAuth(handlers.Wishlist.SetPinned))
	r.DELETE("/api/v1/wishlists/{id}", requireAuth(handlers.Wishlist.Delete))
	r.POST("/api/v1/items", requireAuth(handlers.Item.Add))
	r.DELETE("/api/v1/items/{id}", requireAuth(rateLimit(handlers.Item.Delete)))

	// Public reads; spoiler filtering keys off whoever the token says you are.
	r.GET("/api/v1/wishlists/{id}", optionalAuth(handlers.Wishlist.Get))

	// Guest-reachable mutations, rate limited per caller.
	r.POST("/api/v1/items/{id}/reserve", optionalAuth(rateLimit(handlers.Item.Reserve)))
	r.POST("/api/v1/items/{id}/unreserve", optionalAuth(rateLimit(handlers.Item.Unreserve)))
	r.POST("/api/v1/items/{id}/contribute", optionalAuth(rateLimit(handlers.Item.Contribute)))
	r.POST("/api/v1/items/{id}/hype", optionalAuth(rateLimit(handlers.Item.Hype)))

	return r
}
