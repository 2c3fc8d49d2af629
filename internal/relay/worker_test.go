package relay

import (
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/models"
)

func TestWorkerSubmitSuccess(t *testing.T) {
	db := &fakeStore{}
	w := NewWorker(db, nil, 2, time.Second, zerolog.Nop())
	defer w.Shutdown()

	res := <-w.Submit(models.EmailDraft{From: "alice@example.com", To: "bob@example.com", Body: "hi"})
	if res.Err != nil {
		t.Fatal(res.Err)
	}
	if res.Email == nil || res.Email.ID == "" {
		t.Fatalf("expected stored email with ID, got %+v", res.Email)
	}
	if res.Email.CreatedAt.IsZero() {
		t.Fatal("expected CreatedAt to be set")
	}
}

func TestWorkerSubmitFailure(t *testing.T) {
	db := &fakeStore{saveErr: errors.New("connection refused")}
	w := NewWorker(db, nil, 2, time.Second, zerolog.Nop())
	defer w.Shutdown()

	res := <-w.Submit(models.EmailDraft{From: "a@x.com", To: "b@x.com", Body: "hi"})
	if res.Err == nil {
		t.Fatal("expected error result")
	}
	if res.Email != nil {
		t.Fatalf("expected nil email on failure, got %+v", res.Email)
	}
}

func TestWorkerSubmitAfterShutdown(t *testing.T) {
	db := &fakeStore{}
	w := NewWorker(db, nil, 2, time.Second, zerolog.Nop())
	w.Shutdown()

	res := <-w.Submit(models.EmailDraft{From: "a@x.com", To: "b@x.com", Body: "hi"})
	if !errors.Is(res.Err, ErrWorkerStopped) {
		t.Fatalf("expected ErrWorkerStopped, got %v", res.Err)
	}
}

func TestWorkerShutdownIsIdempotent(t *testing.T) {
	db := &fakeStore{}
	w := NewWorker(db, nil, 2, time.Second, zerolog.Nop())
	w.Shutdown()
	w.Shutdown()
}

func TestWorkerShutdownDrainsInFlight(t *testing.T) {
	db := &fakeStore{saveDelay: 20 * time.Millisecond}
	w := NewWorker(db, nil, 2, time.Second, zerolog.Nop())

	results := make([]<-chan Result, 0, 4)
	for i := 0; i < 4; i++ {
		results = append(results, w.Submit(models.EmailDraft{
			From: "a@x.com", To: "b@x.com", Body: fmt.Sprintf("msg %d", i),
		}))
	}

	w.Shutdown()

	// Every accepted task must have completed before Shutdown returned.
	for i, done := range results {
		select {
		case res := <-done:
			if res.Err != nil {
				t.Fatalf("task %d: %v", i, res.Err)
			}
		default:
			t.Fatalf("task %d not completed before shutdown returned", i)
		}
	}

	if n, _ := db.CountEmails(nil); n != 4 {
		t.Fatalf("expected 4 persisted emails, got %d", n)
	}
}

func TestWorkerConcurrentSubmitters(t *testing.T) {
	db := &fakeStore{}
	w := NewWorker(db, nil, 4, time.Second, zerolog.Nop())
	defer w.Shutdown()

	const n = 32
	var wg sync.WaitGroup
	wg.Add(n)
	for i := 0; i < n; i++ {
		go func(i int) {
			defer wg.Done()
			res := <-w.Submit(models.EmailDraft{
				From: "a@x.com", To: "b@x.com", Body: fmt.Sprintf("msg %d", i),
			})
			if res.Err != nil {
				t.Errorf("submit %d: %v", i, res.Err)
			}
		}(i)
	}
	wg.Wait()

	if count, _ := db.CountEmails(nil); count != n {
		t.Fatalf("expected %d persisted emails, got %d", n, count)
	}
}
