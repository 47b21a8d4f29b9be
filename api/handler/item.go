package handler

import (
	"encoding/json"
	"net/http"

	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/giftwell/backend/api/transport"
	"github.com/giftwell/backend/domain"
	"github.com/giftwell/backend/pkg/httpcontext"
	contributionUC "github.com/giftwell/backend/usecase/contribution"
	itemUC "github.com/giftwell/backend/usecase/item"
	reservationUC "github.com/giftwell/backend/usecase/reservation"
)

type ItemHandler struct {
	baseHandler
	items         *itemUC.UseCase
	reservations  *reservationUC.UseCase
	contributions *contributionUC.UseCase
}

func NewItemHandler(
	items *itemUC.UseCase,
	reservations *reservationUC.UseCase,
	contributions *contributionUC.UseCase,
	adapter *httpcontext.Adapter,
	logger *zap.Logger,
) *ItemHandler {
	return &ItemHandler{
		baseHandler:   newBaseHandler(adapter, logger),
		items:         items,
		reservations:  reservations,
		contributions: contributions,
	}
}

// @Summary Add item to own wishlist
// @Tags items
// @Router /api/v1/items [post]
func (h *ItemHandler) Add(ctx *fasthttp.RequestCtx) {
	var req transport.ItemRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	created, err := h.items.Add(stdCtx, h.identity(ctx), &domain.Item{
		WishlistID: req.WishlistID,
		Title:      req.Title,
		URL:        req.URL,
		PriceCents: req.PriceCents,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, created)
}

// @Summary Delete item
// @Tags items
// @Router /api/v1/items/{id} [delete]
func (h *ItemHandler) Delete(ctx *fasthttp.RequestCtx) {
	id, ok := h.itemID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.items.Delete(stdCtx, id, h.identity(ctx)); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusNoContent, nil)
}

// @Summary Reserve item
// @Tags items
// @Router /api/v1/items/{id}/reserve [post]
func (h *ItemHandler) Reserve(ctx *fasthttp.RequestCtx) {
	id, ok := h.itemID(ctx)
	if !ok {
		return
	}

	var req transport.ReserveRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondInvalid(ctx, "invalid payload")
			return
		}
	}

	identity := h.identity(ctx)
	if identity == "" {
		identity = req.GuestName
	}
	label := req.Label
	if label == "" {
		label = identity
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.reservations.Reserve(stdCtx, id, identity, label); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Release reservation
// @Tags items
// @Router /api/v1/items/{id}/unreserve [post]
func (h *ItemHandler) Unreserve(ctx *fasthttp.RequestCtx) {
	id, ok := h.itemID(ctx)
	if !ok {
		return
	}

	var req transport.UnreserveRequest
	if len(ctx.PostBody()) > 0 {
		if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
			h.respondInvalid(ctx, "invalid payload")
			return
		}
	}

	identity := h.identity(ctx)
	if identity == "" {
		identity = req.GuestName
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	if err := h.reservations.Unreserve(stdCtx, id, identity); err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, nil)
}

// @Summary Contribute toward item
// @Tags items
// @Router /api/v1/items/{id}/contribute [post]
func (h *ItemHandler) Contribute(ctx *fasthttp.RequestCtx) {
	id, ok := h.itemID(ctx)
	if !ok {
		return
	}

	var req transport.ContributeRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		h.respondInvalid(ctx, "invalid payload")
		return
	}

	identity := h.identity(ctx)
	if identity == "" {
		identity = req.GuestName
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	result, err := h.contributions.Contribute(stdCtx, contributionUC.Input{
		ItemID:          id,
		Identity:        identity,
		ContributorName: req.GuestName,
		AmountCents:     req.AmountCents,
		Message:         req.Message,
	})
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusCreated, result)
}

// @Summary Hype item
// @Tags items
// @Router /api/v1/items/{id}/hype [post]
func (h *ItemHandler) Hype(ctx *fasthttp.RequestCtx) {
	id, ok := h.itemID(ctx)
	if !ok {
		return
	}

	stdCtx, cancel := h.requestContext(ctx)
	defer cancel()

	count, err := h.items.Hype(stdCtx, id)
	if err != nil {
		h.respondError(ctx, err)
		return
	}
	h.respondSuccess(ctx, http.StatusOK, map[string]int64{"hype_count": count})
}

func (h *ItemHandler) itemID(ctx *fasthttp.RequestCtx) (string, bool) {
	id, _ := ctx.UserValue("id").(string)
	if id == "" {
		h.respondInvalid(ctx, "missing item id")
		return "", false
	}
	return id, true
}
