package handlers

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/eldtechnologies/wiremail/internal/models"
	"github.com/eldtechnologies/wiremail/internal/store"
)

// ListEmails returns the full history for an address (sent and received),
// newest first. Records here have the same shape as live newEmail pushes, so
// clients render both identically.
func (h *Handler) ListEmails(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		h.Error(w, http.StatusBadRequest, "address is required")
		return
	}

	emails, err := h.db.ListEmailsForAddress(r.Context(), address)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch emails")
		return
	}

	if emails == nil {
		emails = []models.Email{}
	}
	h.JSON(w, http.StatusOK, emails)
}

// RecentEmails returns the most recently received emails for an address from
// the Redis inbox cache, falling back to the durable store when the cache is
// unavailable.
func (h *Handler) RecentEmails(w http.ResponseWriter, r *http.Request) {
	address := chi.URLParam(r, "address")
	if address == "" {
		h.Error(w, http.StatusBadRequest, "address is required")
		return
	}

	const limit = 20

	if h.redis != nil {
		emails, err := h.redis.GetRecentEmails(r.Context(), address, limit)
		if err == nil && len(emails) > 0 {
			h.JSON(w, http.StatusOK, emails)
			return
		}
	}

	emails, err := h.db.ListEmailsForAddress(r.Context(), address)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to fetch emails")
		return
	}

	recent := make([]models.Email, 0, limit)
	for _, email := range emails {
		if email.To != address {
			continue
		}
		recent = append(recent, email)
		if len(recent) == limit {
			break
		}
	}
	h.JSON(w, http.StatusOK, recent)
}

// DeleteEmail removes one email record from history.
func (h *Handler) DeleteEmail(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		h.Error(w, http.StatusBadRequest, "id is required")
		return
	}

	if err := h.db.DeleteEmail(r.Context(), id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			h.Error(w, http.StatusNotFound, "Email not found")
			return
		}
		h.Error(w, http.StatusInternalServerError, "failed to delete email")
		return
	}

	h.JSON(w, http.StatusOK, map[string]string{"message": "Email deleted successfully"})
}
