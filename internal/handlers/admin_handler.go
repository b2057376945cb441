package handlers

import (
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/service"
)

// ReferenceHandler exposes CRUD over one reference table
type ReferenceHandler[T any] struct {
	service *service.ReferenceService[T]
	logger  *slog.Logger
}

// NewReferenceHandler creates a handler for svc
func NewReferenceHandler[T any](svc *service.ReferenceService[T], logger *slog.Logger) *ReferenceHandler[T] {
	return &ReferenceHandler[T]{service: svc, logger: logger}
}

// Routes mounts list, get, create, update and delete on r
func (h *ReferenceHandler[T]) Routes(r chi.Router) {
	r.Get("/", h.List)
	r.Post("/", h.Create)
	r.Get("/{id}", h.Get)
	r.Put("/{id}", h.Update)
	r.Delete("/{id}", h.Delete)
}

func (h *ReferenceHandler[T]) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.List(r.Context())
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, items, h.logger)
}

func (h *ReferenceHandler[T]) Get(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID supplied", h.logger)
		return
	}
	item, err := h.service.Get(r.Context(), id)
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, item, h.logger)
}

func (h *ReferenceHandler[T]) Create(w http.ResponseWriter, r *http.Request) {
	var in T
	if !decode(w, r, &in, h.logger) {
		return
	}
	out, err := h.service.Create(r.Context(), in)
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, out, h.logger)
}

func (h *ReferenceHandler[T]) Update(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID supplied", h.logger)
		return
	}
	var in T
	if !decode(w, r, &in, h.logger) {
		return
	}
	out, err := h.service.Update(r.Context(), id, in)
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, out, h.logger)
}

func (h *ReferenceHandler[T]) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r, "id")
	if err != nil {
		WriteError(w, http.StatusBadRequest, CodeInvalidID, "Invalid ID supplied", h.logger)
		return
	}
	if err := h.service.Delete(r.Context(), id); err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

type dateRangeRequest struct {
	StartDate models.Date `json:"start_date"`
	EndDate   models.Date `json:"end_date"`
}

type popularDishesRequest struct {
	dateRangeRequest
	MinOrders int `json:"min_orders"`
}

// ReportHandler serves the admin reports and the bulk price update
type ReportHandler struct {
	service *service.AdminService
	logger  *slog.Logger
}

// NewReportHandler creates a new report handler
func NewReportHandler(service *service.AdminService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{service: service, logger: logger}
}

// Revenue handles POST /api/admin/reports/revenue
func (h *ReportHandler) Revenue(w http.ResponseWriter, r *http.Request) {
	var req dateRangeRequest
	if !decode(w, r, &req, h.logger) {
		return
	}
	report, err := h.service.Revenue(r.Context(), req.StartDate, req.EndDate)
	h.respond(w, r, report, err)
}

// PopularDishes handles POST /api/admin/reports/popular-dishes
func (h *ReportHandler) PopularDishes(w http.ResponseWriter, r *http.Request) {
	var req popularDishesRequest
	if !decode(w, r, &req, h.logger) {
		return
	}
	report, err := h.service.PopularDishes(r.Context(), req.StartDate, req.EndDate, req.MinOrders)
	h.respond(w, r, report, err)
}

// StaffPerformance handles GET /api/admin/reports/staff-performance?start_date=&end_date=
func (h *ReportHandler) StaffPerformance(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	start, err1 := models.ParseDate(q.Get("start_date"))
	end, err2 := models.ParseDate(q.Get("end_date"))
	if err := errors.Join(err1, err2); err != nil {
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", service.ErrInvalidDateRange.Error(), h.logger)
		return
	}
	report, err := h.service.StaffPerformance(r.Context(), start, end)
	h.respond(w, r, report, err)
}

// Inventory handles GET /api/admin/reports/inventory?min_quantity=
func (h *ReportHandler) Inventory(w http.ResponseWriter, r *http.Request) {
	var minQuantity *int
	if raw := r.URL.Query().Get("min_quantity"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			WriteError(w, http.StatusBadRequest, "INVALID_INPUT", "min_quantity must be an integer", h.logger)
			return
		}
		minQuantity = &n
	}
	report, err := h.service.Inventory(r.Context(), minQuantity)
	h.respond(w, r, report, err)
}

// UpdatePrices handles PUT /api/admin/prices/bulk
func (h *ReportHandler) UpdatePrices(w http.ResponseWriter, r *http.Request) {
	var req models.UpdatePricesRequest
	if !decode(w, r, &req, h.logger) {
		return
	}
	result, err := h.service.UpdatePrices(r.Context(), req)
	h.respond(w, r, result, err)
}

func (h *ReportHandler) respond(w http.ResponseWriter, r *http.Request, data any, err error) {
	switch {
	case err == nil:
		WriteJSON(w, http.StatusOK, data, h.logger)
	case errors.Is(err, service.ErrInvalidDateRange),
		errors.Is(err, service.ErrNegativeQuantity),
		errors.Is(err, service.ErrNegativeMinOrders),
		errors.Is(err, service.ErrDishTypeRequired),
		errors.Is(err, service.ErrInvalidPriceChange):
		WriteError(w, http.StatusBadRequest, "INVALID_INPUT", err.Error(), h.logger)
	default:
		writeUpstreamError(w, r, err, h.logger)
	}
}
