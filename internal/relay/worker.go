package relay

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/models"
	"github.com/eldtechnologies/wiremail/internal/store"
)

// ErrWorkerStopped is returned for tasks submitted after shutdown.
var ErrWorkerStopped = errors.New("relay: persistence worker stopped")

// Result carries the outcome of one persistence task: the stored record on
// success, or the error that prevented it.
type Result struct {
	Email *models.Email
	Err   error
}

type task struct {
	draft models.EmailDraft
	done  chan Result
}

// Worker persists email drafts off the relay path. A fixed pool of
// goroutines drains a task channel so a slow durable write stalls only the
// relay operation that issued it, never the other sessions.
type Worker struct {
	db      store.DataStore
	cache   *store.RedisStore // optional, nil when Redis is not configured
	timeout time.Duration
	logger  zerolog.Logger

	tasks chan task
	wg    sync.WaitGroup

	mu     sync.Mutex
	closed bool
}

// NewWorker creates a worker pool of the given size and starts it.
func NewWorker(db store.DataStore, cache *store.RedisStore, workers int, timeout time.Duration, logger zerolog.Logger) *Worker {
	if workers <= 0 {
		workers = 1
	}

	w := &Worker{
		db:      db,
		cache:   cache,
		timeout: timeout,
		logger:  logger,
		tasks:   make(chan task, workers*4),
	}

	w.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go w.run()
	}
	return w
}

// Submit queues a draft for persistence and returns a channel that receives
// exactly one Result. The caller decides whether to wait.
func (w *Worker) Submit(draft models.EmailDraft) <-chan Result {
	done := make(chan Result, 1)

	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		done <- Result{Err: ErrWorkerStopped}
		return done
	}
	w.tasks <- task{draft: draft, done: done}
	w.mu.Unlock()

	return done
}

// Shutdown stops accepting tasks and waits for in-flight writes to finish.
func (w *Worker) Shutdown() {
	w.mu.Lock()
	if w.closed {
		w.mu.Unlock()
		return
	}
	w.closed = true
	close(w.tasks)
	w.mu.Unlock()

	w.wg.Wait()
}

func (w *Worker) run() {
	defer w.wg.Done()

	for t := range w.tasks {
		t.done <- w.persist(t.draft)
	}
}

func (w *Worker) persist(draft models.EmailDraft) Result {
	ctx, cancel := context.WithTimeout(context.Background(), w.timeout)
	defer cancel()

	email, err := w.db.SaveEmail(ctx, draft)
	if err != nil {
		w.logger.Error().Err(err).
			Str("from", draft.From).
			Str("to", draft.To).
			Msg("email persistence failed")
		return Result{Err: err}
	}

	// Best-effort inbox cache; the durable record is already safe.
	if w.cache != nil {
		if err := w.cache.CacheEmail(ctx, email); err != nil {
			w.logger.Debug().Err(err).Str("to", email.To).Msg("inbox cache update failed")
		}
	}

	return Result{Email: email}
}
