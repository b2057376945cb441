package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/shopspring/decimal"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/cart"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/metrics"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/service"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/session"
)

// CodeCartLocked is returned for cart changes while an order is being submitted
const CodeCartLocked = "CART_LOCKED"

// Workspaces hands out the per-session cart and checkout flow
type Workspaces interface {
	Workspace(id string) *session.Workspace
}

// MenuLookup resolves a dish id to a menu entry with its current price
type MenuLookup interface {
	Item(ctx context.Context, dishID int64) (models.MenuItem, error)
}

// CartResponse is the cart as the UI renders it
type CartResponse struct {
	Items  []CartLine      `json:"items"`
	Total  decimal.Decimal `json:"total"`
	Locked bool            `json:"locked"`
}

// CartLine is one cart line with its subtotal
type CartLine struct {
	cart.LineItem
	Subtotal decimal.Decimal `json:"subtotal"`
}

type addItemRequest struct {
	DishID int64 `json:"dishId" validate:"gt=0"`
}

type updateQuantityRequest struct {
	Quantity int `json:"quantity"`
}

// CartHandler handles the session cart
type CartHandler struct {
	workspaces Workspaces
	menu       MenuLookup
	logger     *slog.Logger
}

// NewCartHandler creates a new cart handler
func NewCartHandler(workspaces Workspaces, menu MenuLookup, logger *slog.Logger) *CartHandler {
	return &CartHandler{
		workspaces: workspaces,
		menu:       menu,
		logger:     logger,
	}
}

func (h *CartHandler) store(r *http.Request) *cart.Store {
	return h.workspaces.Workspace(middleware.SessionFromContext(r.Context()).ID).Cart
}

// GetCart handles GET /api/cart
func (h *CartHandler) GetCart(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, cartResponse(h.store(r)), h.logger)
}

// AddItem handles POST /api/cart/items
func (h *CartHandler) AddItem(w http.ResponseWriter, r *http.Request) {
	var req addItemRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	item, err := h.menu.Item(r.Context(), req.DishID)
	if err != nil {
		if errors.Is(err, service.ErrDishNotFound) {
			WriteError(w, http.StatusNotFound, "DISH_NOT_FOUND", "Dish not found", h.logger)
			return
		}
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	if !item.Available {
		WriteError(w, http.StatusUnprocessableEntity, "DISH_UNAVAILABLE", "This dish has no price today and cannot be ordered", h.logger)
		return
	}

	store := h.store(r)
	if !h.record(w, "add", store.AddItem(item.Dish, item.Price)) {
		return
	}
	WriteJSON(w, http.StatusOK, cartResponse(store), h.logger)
}

// UpdateQuantity handles PUT /api/cart/items/{dishId}. Quantities below one
// leave the line unchanged.
func (h *CartHandler) UpdateQuantity(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dishId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID supplied", h.logger)
		return
	}
	var req updateQuantityRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	store := h.store(r)
	if !h.record(w, "update", store.UpdateQuantity(id, req.Quantity)) {
		return
	}
	WriteJSON(w, http.StatusOK, cartResponse(store), h.logger)
}

// RemoveItem handles DELETE /api/cart/items/{dishId}
func (h *CartHandler) RemoveItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dishId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID supplied", h.logger)
		return
	}

	store := h.store(r)
	if !h.record(w, "remove", store.RemoveItem(id)) {
		return
	}
	WriteJSON(w, http.StatusOK, cartResponse(store), h.logger)
}

func (h *CartHandler) record(w http.ResponseWriter, op string, err error) bool {
	if errors.Is(err, cart.ErrLocked) {
		metrics.CartMutations.WithLabelValues(op, "locked").Inc()
		WriteError(w, http.StatusConflict, CodeCartLocked, err.Error(), h.logger)
		return false
	}
	metrics.CartMutations.WithLabelValues(op, "ok").Inc()
	return true
}

func cartResponse(store *cart.Store) CartResponse {
	snap := store.Snapshot()
	lines := make([]CartLine, 0, len(snap.Items))
	for _, item := range snap.Items {
		lines = append(lines, CartLine{LineItem: item, Subtotal: item.Subtotal()})
	}
	return CartResponse{Items: lines, Total: snap.Total, Locked: store.Locked()}
}
