package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"time"
)

// ErrorBody is the payload of every error response
type ErrorBody struct {
	Code     string            `json:"code"`
	Message  string            `json:"message"`
	Fields   map[string]string `json:"fields,omitempty"`
	Redirect *RedirectBody     `json:"redirect,omitempty"`
}

// RedirectBody tells the UI where to navigate next
type RedirectBody struct {
	Path    string `json:"path"`
	AfterMs int64  `json:"afterMs"`
}

func newRedirect(path string, after time.Duration) *RedirectBody {
	return &RedirectBody{Path: path, AfterMs: after.Milliseconds()}
}

// WriteJSON writes a JSON response
func WriteJSON(w http.ResponseWriter, status int, data any, logger *slog.Logger) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("failed to encode JSON response", "error", err)
	}
}

// WriteError writes an error response in JSON format
func WriteError(w http.ResponseWriter, status int, code, message string, logger *slog.Logger) {
	writeErrorBody(w, status, ErrorBody{Code: code, Message: message}, logger)
}

func writeErrorBody(w http.ResponseWriter, status int, body ErrorBody, logger *slog.Logger) {
	WriteJSON(w, status, map[string]ErrorBody{"error": body}, logger)
}
