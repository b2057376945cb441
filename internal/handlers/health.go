package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"
)

// Version is reported by the health endpoints
var Version = "dev"

// Checker reports whether a dependency is usable
type Checker func(ctx context.Context) error

// HealthHandler provides liveness and readiness endpoints
type HealthHandler struct {
	checks  map[string]Checker
	timeout time.Duration
	logger  *slog.Logger
}

// NewHealthHandler creates a new health handler. checks are run by Ready.
func NewHealthHandler(checks map[string]Checker, logger *slog.Logger) *HealthHandler {
	return &HealthHandler{
		checks:  checks,
		timeout: 2 * time.Second,
		logger:  logger,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string            `json:"status"`
	Timestamp time.Time         `json:"timestamp"`
	Version   string            `json:"version"`
	Checks    map[string]string `json:"checks,omitempty"`
}

// Live handles GET /health/live
func (h *HealthHandler) Live(w http.ResponseWriter, r *http.Request) {
	WriteJSON(w, http.StatusOK, HealthResponse{
		Status:    "healthy",
		Timestamp: time.Now().UTC(),
		Version:   Version,
	}, h.logger)
}

// Ready handles GET /health/ready. Every check runs concurrently; any failure makes the answer 503.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	names := make([]string, 0, len(h.checks))
	for name := range h.checks {
		names = append(names, name)
	}
	sort.Strings(names)

	results := make([]string, len(names))
	var g errgroup.Group
	for i, name := range names {
		check := h.checks[name]
		g.Go(func() error {
			if err := check(ctx); err != nil {
				results[i] = err.Error()
				return nil
			}
			results[i] = "ok"
			return nil
		})
	}
	_ = g.Wait()

	resp := HealthResponse{
		Status:    "ready",
		Timestamp: time.Now().UTC(),
		Version:   Version,
		Checks:    make(map[string]string, len(names)),
	}
	status := http.StatusOK
	for i, name := range names {
		resp.Checks[name] = results[i]
		if results[i] != "ok" {
			resp.Status = "not_ready"
			status = http.StatusServiceUnavailable
			h.logger.Warn("readiness check failed", "check", name, "error", results[i])
		}
	}
	WriteJSON(w, status, resp, h.logger)
}
