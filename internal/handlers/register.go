package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/eldtechnologies/wiremail/internal/metrics"
)

// RegisterRequest represents the registration request body.
type RegisterRequest struct {
	Email string `json:"email"`
}

// RegisterResponse represents the registration response.
type RegisterResponse struct {
	Message string `json:"message"`
	Email   string `json:"email"`
}

// Register handles user registration. Registration only establishes the
// mailbox; relay connections bind to the address with their first frame.
func (h *Handler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.Error(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	if req.Email == "" {
		h.Error(w, http.StatusBadRequest, "email is required")
		return
	}
	if !isValidEmail(req.Email) {
		h.Error(w, http.StatusBadRequest, "invalid email format")
		return
	}

	existing, err := h.db.GetUserByEmail(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "database error")
		return
	}
	if existing != nil {
		h.Error(w, http.StatusBadRequest, "Email already exists. Please sign in.")
		return
	}

	user, err := h.db.CreateUser(r.Context(), req.Email)
	if err != nil {
		h.Error(w, http.StatusInternalServerError, "failed to create user")
		return
	}

	metrics.UsersRegistered.Inc()

	h.JSON(w, http.StatusCreated, RegisterResponse{
		Message: "User registered successfully",
		Email:   user.Email,
	})
}
