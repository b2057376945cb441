package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/backend"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/httpclient"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/validator"
	"github.com/Lixing-Zhang/restaurant-storefront/pkg/logger"
)

const maxBodyBytes = 1 << 20

// Error codes shared by several handlers
const (
	CodeInvalidID          = "INVALID_ID"
	CodeInvalidBody        = "INVALID_BODY"
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeForbidden          = "FORBIDDEN"
	CodeRejected           = "REJECTED"
	CodeBackendUnavailable = "BACKEND_UNAVAILABLE"
	CodeBadGateway         = "BAD_GATEWAY"
	CodeInternal           = "INTERNAL_ERROR"
)

// pathID parses a positive int64 URL parameter
func pathID(r *http.Request, name string) (int64, error) {
	raw := chi.URLParam(r, name)
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid %s %q", name, raw)
	}
	return id, nil
}

// decode reads and validates a JSON body into dst, writing a 400 on failure
func decode(w http.ResponseWriter, r *http.Request, dst any, log *slog.Logger) bool {
	err := validator.DecodeAndValidate(http.MaxBytesReader(w, r.Body, maxBodyBytes), dst)
	if err == nil {
		return true
	}
	var verr *validator.ValidationError
	if errors.As(err, &verr) {
		writeErrorBody(w, http.StatusBadRequest, ErrorBody{
			Code:    CodeValidation,
			Message: verr.Error(),
			Fields:  verr.Fields(),
		}, log)
		return false
	}
	WriteError(w, http.StatusBadRequest, CodeInvalidBody, "Invalid request body", log)
	return false
}

// writeUpstreamError maps errors coming back from the restaurant backend
func writeUpstreamError(w http.ResponseWriter, r *http.Request, err error, log *slog.Logger) {
	var (
		verr     *validator.ValidationError
		apiErr   *backend.APIError
		parseErr *backend.ParseError
		tErr     *backend.TransportError
	)

	switch {
	case errors.As(err, &verr):
		writeErrorBody(w, http.StatusBadRequest, ErrorBody{
			Code:    CodeValidation,
			Message: verr.Error(),
			Fields:  verr.Fields(),
		}, log)
	case errors.As(err, &tErr), errors.Is(err, httpclient.ErrCircuitOpen):
		logger.FromContext(r.Context()).WarnContext(r.Context(), "backend unavailable", "error", err)
		WriteError(w, http.StatusServiceUnavailable, CodeBackendUnavailable, "the restaurant is unreachable, try again later", log)
	case errors.As(err, &apiErr):
		switch apiErr.Status {
		case http.StatusUnauthorized:
			WriteError(w, http.StatusUnauthorized, CodeUnauthorized, "sign in to continue", log)
		case http.StatusForbidden:
			WriteError(w, http.StatusForbidden, CodeForbidden, "insufficient permissions", log)
		case http.StatusNotFound:
			WriteError(w, http.StatusNotFound, CodeNotFound, "Resource not found", log)
		default:
			msg := apiErr.Detail
			if msg == "" {
				msg = "the restaurant rejected the request"
			}
			WriteError(w, http.StatusUnprocessableEntity, CodeRejected, msg, log)
		}
	case errors.As(err, &parseErr):
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "unreadable backend response", "error", err)
		WriteError(w, http.StatusBadGateway, CodeBadGateway, "the restaurant sent a response that could not be read", log)
	default:
		logger.FromContext(r.Context()).ErrorContext(r.Context(), "request failed", "error", err)
		WriteError(w, http.StatusInternalServerError, CodeInternal, "Internal server error", log)
	}
}
