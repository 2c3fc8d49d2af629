package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/oklog/ulid/v2"

	"github.com/eldtechnologies/wiremail/internal/models"
)

// PostgresStore handles PostgreSQL database operations.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore creates a new PostgreSQL store with a connection pool.
func NewPostgresStore(ctx context.Context, databaseURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, err
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, err
	}

	store := &PostgresStore{pool: pool}

	if err := store.initSchema(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return store, nil
}

// initSchema creates tables if they don't exist.
func (s *PostgresStore) initSchema(ctx context.Context) error {
	schema := `
	CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email TEXT UNIQUE NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS emails (
		id TEXT PRIMARY KEY,
		from_addr TEXT NOT NULL,
		to_addr TEXT NOT NULL,
		body TEXT NOT NULL,
		attachment TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_emails_from ON emails(from_addr);
	CREATE INDEX IF NOT EXISTS idx_emails_to ON emails(to_addr);
	CREATE INDEX IF NOT EXISTS idx_emails_created ON emails(created_at);
	`
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Close closes the database connection pool.
func (s *PostgresStore) Close() {
	s.pool.Close()
}

// Ping checks the database connection.
func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// CreateUser creates a new user record.
func (s *PostgresStore) CreateUser(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO users (id, email)
		VALUES (gen_random_uuid(), $1)
		RETURNING id, email, created_at
	`, email).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetUserByEmail retrieves a user by email address.
func (s *PostgresStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, email, created_at
		FROM users WHERE email = $1
	`, email).Scan(
		&user.ID,
		&user.Email,
		&user.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return user, nil
}

// CountUsers returns the total number of registered users.
func (s *PostgresStore) CountUsers(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM users`).Scan(&count)
	return count, err
}

// SaveEmail persists an email draft and returns the stored record.
func (s *PostgresStore) SaveEmail(ctx context.Context, draft models.EmailDraft) (*models.Email, error) {
	email := &models.Email{}
	err := s.pool.QueryRow(ctx, `
		INSERT INTO emails (id, from_addr, to_addr, body, attachment)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, from_addr, to_addr, body, attachment, created_at
	`, ulid.Make().String(), draft.From, draft.To, draft.Body, draft.Attachment).Scan(
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
	return email, nil
}

// GetEmailByID retrieves an email by ID.
func (s *PostgresStore) GetEmailByID(ctx context.Context, id string) (*models.Email, error) {
	email := &models.Email{}
	err := s.pool.QueryRow(ctx, `
		SELECT id, from_addr, to_addr, body, attachment, created_at
		FROM emails WHERE id = $1
	`, id).Scan(
		&email.ID,
		&email.From,
		&email.To,
		&email.Body,
		&email.Attachment,
		&email.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return email, nil
}

// ListEmailsForAddress retrieves all emails sent to or from an address,
// newest first.
func (s *PostgresStore) ListEmailsForAddress(ctx context.Context, address string) ([]models.Email, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id, from_addr, to_addr, body, attachment, created_at
		FROM emails
		WHERE from_addr = $1 OR to_addr = $1
		ORDER BY created_at DESC
	`, address)
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
func (s *PostgresStore) DeleteEmail(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM emails WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

// CountEmails returns the total number of stored emails.
func (s *PostgresStore) CountEmails(ctx context.Context) (int64, error) {
	var count int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM emails`).Scan(&count)
	return count, err
}

// GetMostRecentActivity returns the timestamp of the most recent email.
func (s *PostgresStore) GetMostRecentActivity(ctx context.Context) (*time.Time, error) {
	var t *time.Time
	err := s.pool.QueryRow(ctx, `SELECT MAX(created_at) FROM emails`).Scan(&t)
	if err != nil {
		return nil, err
	}
	return t, nil
}
