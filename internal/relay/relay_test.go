package relay

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/models"
)

// fakeStore is an in-memory store.DataStore for relay tests.
type fakeStore struct {
	mu        sync.Mutex
	emails    []models.Email
	nextID    int
	saveErr   error
	saveDelay time.Duration
}

func (f *fakeStore) Close()                         {}
func (f *fakeStore) Ping(ctx context.Context) error { return nil }

func (f *fakeStore) CreateUser(ctx context.Context, email string) (*models.User, error) {
	return &models.User{ID: uuid.New(), Email: email, CreatedAt: time.Now()}, nil
}

func (f *fakeStore) GetUserByEmail(ctx context.Context, email string) (*models.User, error) {
	return nil, nil
}

func (f *fakeStore) CountUsers(ctx context.Context) (int64, error) { return 0, nil }

func (f *fakeStore) SaveEmail(ctx context.Context, draft models.EmailDraft) (*models.Email, error) {
	if f.saveDelay > 0 {
		time.Sleep(f.saveDelay)
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	if f.saveErr != nil {
		return nil, f.saveErr
	}

	f.nextID++
	email := models.Email{
		ID:         fmt.Sprintf("email-%d", f.nextID),
		From:       draft.From,
		To:         draft.To,
		Body:       draft.Body,
		Attachment: draft.Attachment,
		CreatedAt:  time.Now(),
	}
	f.emails = append(f.emails, email)
	return &email, nil
}

func (f *fakeStore) GetEmailByID(ctx context.Context, id string) (*models.Email, error) {
	return nil, nil
}

func (f *fakeStore) ListEmailsForAddress(ctx context.Context, address string) ([]models.Email, error) {
	return nil, nil
}

func (f *fakeStore) DeleteEmail(ctx context.Context, id string) error { return nil }

func (f *fakeStore) CountEmails(ctx context.Context) (int64, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return int64(len(f.emails)), nil
}

func (f *fakeStore) GetMostRecentActivity(ctx context.Context) (*time.Time, error) {
	return nil, nil
}

func (f *fakeStore) saved() []models.Email {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]models.Email, len(f.emails))
	copy(out, f.emails)
	return out
}

// fakeConn records frames written to it.
type fakeConn struct {
	mu       sync.Mutex
	frames   []Frame
	writeErr error
	closed   bool
}

func (c *fakeConn) WriteFrame(f Frame) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.writeErr != nil {
		return c.writeErr
	}
	c.frames = append(c.frames, f)
	return nil
}

func (c *fakeConn) Close() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	return nil
}

func (c *fakeConn) written() []Frame {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]Frame, len(c.frames))
	copy(out, c.frames)
	return out
}

func (c *fakeConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func newTestEngine(t *testing.T, db *fakeStore) *Engine {
	t.Helper()
	worker := NewWorker(db, nil, 2, time.Second, zerolog.Nop())
	t.Cleanup(worker.Shutdown)
	return NewEngine(NewRegistry(), worker, zerolog.Nop())
}

// registeredSession connects and registers an identity in one step.
func registeredSession(t *testing.T, e *Engine, identity string) (*Session, *fakeConn) {
	t.Helper()
	conn := &fakeConn{}
	s := e.NewSession(conn)
	s.HandleFrame(identity)
	if s.State() != StateRegistered {
		t.Fatalf("expected registered state, got %v", s.State())
	}
	return s, conn
}
