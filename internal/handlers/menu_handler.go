package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/service"
)

// MenuHandler serves the menu with current prices
type MenuHandler struct {
	service *service.MenuService
	logger  *slog.Logger
}

// NewMenuHandler creates a new menu handler
func NewMenuHandler(service *service.MenuService, logger *slog.Logger) *MenuHandler {
	return &MenuHandler{
		service: service,
		logger:  logger,
	}
}

// ListMenu handles GET /api/menu?category=
func (h *MenuHandler) ListMenu(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.Menu(r.Context(), r.URL.Query().Get("category"))
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, items, h.logger)
}

// ListCategories handles GET /api/menu/categories
func (h *MenuHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.Categories(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, categories, h.logger)
}

// GetItem handles GET /api/menu/{dishId}
// - 200: the dish with its current price
// - 400: invalid id
// - 404: dish not on the menu
func (h *MenuHandler) GetItem(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "dishId")
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID supplied", h.logger)
		return
	}

	item, err := h.service.Item(r.Context(), id)
	if err != nil {
		if errors.Is(err, service.ErrDishNotFound) {
			WriteError(w, http.StatusNotFound, "DISH_NOT_FOUND", "Dish not found", h.logger)
			return
		}
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, item, h.logger)
}
