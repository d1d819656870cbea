package handler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"taskboard/internal/domain"
)

const (
	// HeaderUserID names the calling owner
	HeaderUserID = "X-User-Id"
	// CookieUserID is consulted when the header is absent
	CookieUserID = "userId"
	// HeaderTaskResult reports whether a transition changed anything
	HeaderTaskResult = "X-Task-Result"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// OwnerFromRequest returns the calling owner from the X-User-Id header,
// falling back to the userId cookie
func OwnerFromRequest(r *http.Request) (uuid.UUID, error) {
	raw := strings.TrimSpace(r.Header.Get(HeaderUserID))
	if raw == "" {
		if c, err := r.Cookie(CookieUserID); err == nil {
			raw = c.Value
		}
	}
	if raw == "" {
		return uuid.Nil, fmt.Errorf("%w: %s header or %s cookie required", domain.ErrInvalidArgument, HeaderUserID, CookieUserID)
	}
	return domain.ParseOwnerID(raw)
}

// Pinger reports whether the backing store is reachable
type Pinger interface {
	Ping(ctx context.Context) error
}

// Health answers liveness probes
func Health(p Pinger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if err := p.Ping(r.Context()); err != nil {
			log.Printf("Health check failed: %v", err)
			writeError(w, "Database unavailable", err.Error(), http.StatusServiceUnavailable)
			return
		}
		writeJSON(w, map[string]string{"status": "ok"}, http.StatusOK)
	}
}

// writeServiceError maps domain errors onto HTTP status codes
func writeServiceError(w http.ResponseWriter, action string, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound), errors.Is(err, domain.ErrOwnerNotFound):
		writeError(w, "Not found", err.Error(), http.StatusNotFound)
	case errors.Is(err, domain.ErrInvalidArgument):
		writeError(w, "Invalid request", err.Error(), http.StatusBadRequest)
	default:
		log.Printf("Failed to %s: %v", action, err)
		writeError(w, "Failed to "+action, err.Error(), http.StatusInternalServerError)
	}
}

func writeJSON(w http.ResponseWriter, data interface{}, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		log.Printf("Failed to encode JSON: %v", err)
	}
}

func writeError(w http.ResponseWriter, error, details string, statusCode int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Details: details,
	}); err != nil {
		log.Printf("Failed to encode error response: %v", err)
	}
}

// maxBodyBytes caps import uploads
const maxBodyBytes = 4 << 20

// decodeBody reads a JSON request body into v
func decodeBody(r *http.Request, v interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: invalid request body: %v", domain.ErrInvalidArgument, err)
	}
	return nil
}
