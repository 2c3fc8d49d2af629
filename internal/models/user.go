package models

import (
	"time"

	"github.com/google/uuid"
)

// User represents a registered mailbox owner. The email address is the
// identity used for relay addressing.
type User struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	CreatedAt time.Time `json:"created_at"`
}
