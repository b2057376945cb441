package handlers

import (
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/checkout"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/service"
)

type checkoutRequest struct {
	PaymentMethod string `json:"paymentMethod"`
}

// CheckoutResponse is returned when an order was created
type CheckoutResponse struct {
	Order    *models.Order `json:"order"`
	Redirect *RedirectBody `json:"redirect,omitempty"`
}

// OrderView is an order as shown in the history
type OrderView struct {
	models.Order
	StatusLabel string `json:"statusLabel"`
}

// OrderHandler handles checkout and order history
type OrderHandler struct {
	workspaces Workspaces
	orders     *service.OrderService
	log        *slog.Logger
}

// NewOrderHandler creates a new order handler
func NewOrderHandler(workspaces Workspaces, orders *service.OrderService, log *slog.Logger) *OrderHandler {
	return &OrderHandler{
		workspaces: workspaces,
		orders:     orders,
		log:        log,
	}
}

// Checkout handles POST /api/checkout
// - 201: order created, cart cleared
// - 400: cart is empty
// - 401: not signed in, redirect to login
// - 409: a submission is already in flight
// - 422: rejected by validation or by the restaurant
// - 503: restaurant unreachable
func (h *OrderHandler) Checkout(w http.ResponseWriter, r *http.Request) {
	var req checkoutRequest
	if !decode(w, r, &req, h.log) {
		return
	}
	method, err := models.ParsePaymentMethod(req.PaymentMethod)
	if err != nil {
		WriteError(w, http.StatusUnprocessableEntity, "ORDER_REJECTED", "payment method must be one of CASH, CARD, ONLINE", h.log)
		return
	}

	ws := h.workspaces.Workspace(middleware.SessionFromContext(r.Context()).ID)
	res := ws.Checkout.Submit(r.Context(), ws.Cart, method)

	switch res.Outcome {
	case checkout.OutcomeSucceeded:
		resp := CheckoutResponse{Order: res.Order}
		if res.Redirect != nil {
			resp.Redirect = newRedirect(res.Redirect.Path, res.Redirect.After)
		}
		WriteJSON(w, http.StatusCreated, resp, h.log)
	case checkout.OutcomeEmptyCart:
		WriteError(w, http.StatusBadRequest, "EMPTY_CART", "Your cart is empty", h.log)
	default:
		body := ErrorBody{Code: failureCode(res.Failure.Kind), Message: res.Failure.Message}
		if res.Redirect != nil {
			body.Redirect = newRedirect(res.Redirect.Path, res.Redirect.After)
		}
		writeErrorBody(w, failureStatus(res.Failure.Kind), body, h.log)
	}
}

func failureStatus(kind checkout.Kind) int {
	switch kind {
	case checkout.KindValidation:
		return http.StatusUnprocessableEntity
	case checkout.KindUnauthorized:
		return http.StatusUnauthorized
	case checkout.KindConcurrentSubmission:
		return http.StatusConflict
	default:
		return http.StatusServiceUnavailable
	}
}

func failureCode(kind checkout.Kind) string {
	switch kind {
	case checkout.KindValidation:
		return "ORDER_REJECTED"
	case checkout.KindUnauthorized:
		return CodeUnauthorized
	case checkout.KindConcurrentSubmission:
		return "SUBMISSION_IN_PROGRESS"
	default:
		return CodeBackendUnavailable
	}
}

// ListOrders handles GET /api/orders
func (h *OrderHandler) ListOrders(w http.ResponseWriter, r *http.Request) {
	orders, err := h.orders.History(r.Context(), middleware.SessionFromContext(r.Context()).ClientID)
	if err != nil {
		writeUpstreamError(w, r, err, h.log)
		return
	}
	views := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		views = append(views, OrderView{Order: o, StatusLabel: o.Status.Label()})
	}
	WriteJSON(w, http.StatusOK, views, h.log)
}
