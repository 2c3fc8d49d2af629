package handlers

import (
	"encoding/json"
	"net/http"
	"regexp"

	"github.com/eldtechnologies/wiremail/internal/store"
	"github.com/eldtechnologies/wiremail/internal/upload"
)

// emailRegex validates email addresses per RFC 5322 (simplified).
var emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)

// Handler contains shared dependencies for all HTTP handlers.
type Handler struct {
	db      store.DataStore
	redis   *store.RedisStore // optional, nil when Redis is not configured
	uploads *upload.Storage
}

// NewHandler creates a new Handler with the given stores.
func NewHandler(db store.DataStore, redis *store.RedisStore, uploads *upload.Storage) *Handler {
	return &Handler{db: db, redis: redis, uploads: uploads}
}

// JSON sends a JSON response with the given status code.
func (h *Handler) JSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

// Error sends a JSON error response with the given status code.
func (h *Handler) Error(w http.ResponseWriter, status int, message string) {
	h.JSON(w, status, map[string]string{"error": message})
}

// isValidEmail validates email addresses using RFC 5322 pattern.
func isValidEmail(email string) bool {
	if len(email) == 0 || len(email) > 254 {
		return false
	}
	return emailRegex.MatchString(email)
}
