package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/giftwell/backend/api/transport"
	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/pkg/httpcontext"
	wishlistUC "github.com/giftwell/backend/usecase/wishlist"
)

type WishlistHandler struct {
	baseHandler
	uc *wishlistUC.UseCase
}

func NewWishlistHandler(uc *wishlistUC.UseCase, adapter *httpcontext.Adapter, logger *zap.Logger) *WishlistHandler {
	return &WishlistHandler{
		baseHandler: newBaseHandler(adapter, logger),
		uc:          uc,
	}
}

// @Summary Create wishlist
// @Tags wishlists
// @Router /api/v1/wishlists [post]
func (h *WishlistHandler) Create(ctx *fasthttp.RequestCtx) {
	var req transport.WishlistRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.uc.Create(stdCtx, h.identity(ctx), &domain.Wishlist{
		Title:  req.Title,
		Theme:  req.Theme,
		Pinned: req.Pinned,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Get wishlist with items, spoiler-filtered for the owner
// @Tags wishlists
// @Router /api/v1/wishlists/{id} [get]
func (h *WishlistHandler) Get(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing wishlist id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	list, err := h.uc.Get(stdCtx, id, h.identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, list)
}

// @Summary List own wishlists
// @Tags wishlists
// @Router /api/v1/wishlists [get]
func (h *WishlistHandler) List(ctx *fasthttp.RequestCtx) {
	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	lists, err := h.uc.ListByOwner(stdCtx, h.identity(ctx))
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, lists)
}

// @Summary Replace pinned items
// @Tags wishlists
// @Router /api/v1/wishlists/{id}/pinned [put]
func (h *WishlistHandler) SetPinned(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing wishlist id")
		return
	}

	var req transport.PinnedRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.SetPinned(stdCtx, id, h.identity(ctx), req.Pinned); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Delete wishlist
// @Tags wishlists
// @Router /api/v1/wishlists/{id} [delete]
func (h *WishlistHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing wishlist id")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.uc.Delete(stdCtx, id, h.identity(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}
