package models

import "time"

// Email is the durable record of a completed send. It is created by the
// persistence worker and never mutated afterwards. The same shape is pushed
// live over the relay and returned by history retrieval, so clients render
// records identically regardless of how they arrived.
type Email struct {
	ID         string    `json:"id"` // ULID
	From       string    `json:"from"`
	To         string    `json:"to"`
	Body       string    `json:"body"`
	Attachment string    `json:"attachment,omitempty"` // opaque upload reference
	CreatedAt  time.Time `json:"created_at"`
}

// EmailDraft is the unsaved form of an Email, handed to the persistence
// worker. ID and CreatedAt are assigned on successful persistence.
type EmailDraft struct {
	From       string
	To         string
	Body       string
	Attachment string
}
