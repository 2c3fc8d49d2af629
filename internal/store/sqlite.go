package store

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/oklog/ulid/v2"

	"github.com/eldtechnologies/wiremail/internal/models"
)

// SQLiteStore handles SQLite database operations. It is the development
// fallback when no DATABASE_URL is configured.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
// If dbPath is empty, defaults to "./data/wiremail.db"
func NewSQLiteStore(ctx context.Context, dbPath string) (*SQLiteStore, error) {
	if dbPath == "" {
		dbPath = "./data/wiremail.db"
	}

	// Ensure directory exists
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, err
	}

	if err := db.PingContext(ctx); err != nil {
		return nil, err
	}

	store := &SQLiteStore{db: db}

	// Initialize schema
	if err := store.initSchema(ctx); err != nil {
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *SQLiteStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id TEXT PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS emails (
		id TEXT PRIMARY KEY,
		from_addr TEXT NOT NULL,
		to_addr TEXT NOT NULL,
		body TEXT NOT NULL,
		attachment TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE INDEX IF NOT EXISTS idx_emails_from ON emails(from_addr);
	CREATE INDEX IF NOT EXISTS idx_emails_to ON emails(to_addr);
	CREATE INDEX IF NOT EXISTS idx_emails_created ON emails(created_at);
	`

	_, err := s.db.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() {
	s.db.Close()
}

// Ping checks the database connection.
func (s *SQLiteStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// CreateUser creates a new user record.
func (s *SQLiteStore) CreateUser(ctx context.Context, email string) (*models.User, error) {
	id := uuid.New().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, created_at)
		VALUES (?, ?, ?)
	`, id, email, now)
	if err != nil {
		return nil, err
	}

	return s.GetUserByEmail(ctx, email)
}

// GetUserByEmail retrieves a user by email address.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	var idStr string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, email, created_at
		FROM users WHERE email = ?
	`, email).Scan(
		&idStr,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	user.ID = uuid.MustParse(idStr)
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *SQLiteStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// SaveEmail persists an email draft and returns the stored record.
func (s *SQLiteStore) SaveEmail(ctx context.Context, draft models.EmailDraft) (*models.Email, error) {
	id := ulid.Make().String()
	now := time.Now().UTC()

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO emails (id, from_addr, to_addr, body, attachment, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`, id, draft.From, draft.To, draft.Body, draft.Attachment, now)
	if err != nil {
		return nil, err
	}

	return s.GetEmailByID(ctx, id)
}

// GetEmailByID retrieves an email by ID.
func (s *SQLiteStore) GetEmailByID(ctx context.Context, id string) (*models.Email, error) {
	email := &models.Email{}
	err := s.db.QueryRowContext(ctx, `
		SELECT id, from_addr, to_addr, body, attachment, created_at
		FROM emails WHERE id = ?
	`, id).Scan(
		&email.ID,
		&email.From,
		&email.To,
		&email.Body,
		&email.Attachment,
		&email.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return email, nil
}

// ListEmailsForAddress retrieves all emails sent to or from an address,
// newest first.
func (s *SQLiteStore) ListEmailsForAddress(ctx context.Context, address string) ([]models.Email, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, from_addr, to_addr, body, attachment, created_at
		FROM emails
		WHERE from_addr = ? OR to_addr = ?
		ORDER BY created_at DESC, id DESC
	`, address, address)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var emails []models.Email
	for rows.Next() {
		var email models.Email
		err := rows.Scan(
			&email.ID,
			&email.From,
			&email.To,
			&email.Body,
			&email.Attachment,
			&email.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		emails = append(emails, email)
	}

	return emails, rows.Err()
}

// DeleteEmail removes an email record. Returns ErrNotFound if no record
// matched.
func (s *SQLiteStore) DeleteEmail(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM emails WHERE id = ?`, id)
	if err != nil {
		return err
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CountEmails returns the total number of stored emails.
func (s *SQLiteStore) CountEmails(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emails`).Scan(&count)
	return count, err
}

// GetMostRecentActivity returns the timestamp of the most recent email.
func (s *SQLiteStore) GetMostRecentActivity(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	err := s.db.QueryRowContext(ctx, `SELECT MAX(created_at) FROM emails`).Scan(&t)
	if err != nil {
		return nil, err
	}
	return t, nil
}
