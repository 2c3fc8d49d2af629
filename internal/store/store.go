package store

import (
	"context"
	"errors"
	"time"

	"github.com/eldtechnologies/wiremail/internal/models"
)

// ErrNotFound is returned when a requested record does not exist.
var ErrNotFound = errors.New("store: not found")

// DataStore defines the interface for persistent storage of users and emails.
// Both PostgresStore and SQLiteStore implement this interface.
type DataStore interface {
	// Connection management
	Close()
	Ping(ctx context.Context) error

	// User operations
	CreateUser(ctx context.Context, email string) (*models.User, error)
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	CountUsers(ctx context.Context) (int64, error)

	// Email operations
	SaveEmail(ctx context.Context, draft models.EmailDraft) (*models.Email, error)
	GetEmailByID(ctx context.Context, id string) (*models.Email, error)
	ListEmailsForAddress(ctx context.Context, address string) ([]models.Email, error)
	DeleteEmail(ctx context.Context, id string) error
	CountEmails(ctx context.Context) (int64, error)
	GetMostRecentActivity(ctx context.Context) (*time.Time, error)
}
