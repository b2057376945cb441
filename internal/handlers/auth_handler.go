package handlers

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/Lixing-Zhang/restaurant-storefront/internal/middleware"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/models"
	"github.com/Lixing-Zhang/restaurant-storefront/internal/service"
)

// SessionEnder ends a session and drops its cart
type SessionEnder interface {
	Logout(ctx context.Context, id string) error
}

type loginRequest struct {
	Mail     string `json:"mail" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// AuthHandler handles sign-in, sign-up and the profile of the signed-in user
type AuthHandler struct {
	auth     *service.AuthService
	sessions SessionEnder
	cookie   middleware.CookieOptions
	logger   *slog.Logger
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(auth *service.AuthService, sessions SessionEnder, cookie middleware.CookieOptions, logger *slog.Logger) *AuthHandler {
	return &AuthHandler{
		auth:     auth,
		sessions: sessions,
		cookie:   cookie,
		logger:   logger,
	}
}

// Login handles POST /api/auth/login
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decode(w, r, &req, h.logger) {
		return
	}

	sess := middleware.SessionFromContext(r.Context())
	user, err := h.auth.Login(r.Context(), sess.ID, req.Mail, req.Password)
	if err != nil {
		if errors.Is(err, service.ErrInvalidCredentials) {
			WriteError(w, http.StatusUnauthorized, "INVALID_CREDENTIALS", "Wrong mail or password", h.logger)
			return
		}
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// Register handles POST /api/auth/register
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var reg models.Registration
	if !decode(w, r, &reg, h.logger) {
		return
	}

	user, err := h.auth.Register(r.Context(), reg)
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusCreated, user, h.logger)
}

// Logout handles POST /api/auth/logout. The cart goes with the session.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	sess := middleware.SessionFromContext(r.Context())
	if err := h.sessions.Logout(r.Context(), sess.ID); err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	middleware.ClearSessionCookie(w, h.cookie)
	w.WriteHeader(http.StatusNoContent)
}

// Me handles GET /api/auth/me
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	user, err := h.auth.Profile(r.Context(), middleware.SessionFromContext(r.Context()).ClientID)
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}

// UpdateMe handles PUT /api/auth/me
func (h *AuthHandler) UpdateMe(w http.ResponseWriter, r *http.Request) {
	var update models.ProfileUpdate
	if !decode(w, r, &update, h.logger) {
		return
	}

	user, err := h.auth.UpdateProfile(r.Context(), middleware.SessionFromContext(r.Context()).ClientID, update)
	if err != nil {
		writeUpstreamError(w, r, err, h.logger)
		return
	}
	WriteJSON(w, http.StatusOK, user, h.logger)
}
