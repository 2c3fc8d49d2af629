package relay

import (
	"github.com/rs/zerolog"

	"github.com/eldtechnologies/wiremail/internal/metrics"
	"github.com/eldtechnologies/wiremail/internal/models"
)

// Engine owns the identity registry and drives relay operations. It is safe
// for concurrent use by any number of sessions.
type Engine struct {
	registry *Registry
	worker   *Worker
	logger   zerolog.Logger
}

// NewEngine creates a relay engine on top of a registry and a persistence
// worker.
func NewEngine(registry *Registry, worker *Worker, logger zerolog.Logger) *Engine {
	return &Engine{
		registry: registry,
		worker:   worker,
		logger:   logger,
	}
}

// NewSession wraps a connection in an unregistered session.
func (e *Engine) NewSession(conn FrameWriter) *Session {
	return &Session{engine: e, conn: conn}
}

// Registry exposes the engine's identity registry.
func (e *Engine) Registry() *Registry {
	return e.registry
}

// Relay persists a send request and performs delivery. Persistence is the
// source of truth: live delivery only ever follows a successful write, so
// history retrieval and live push can never disagree about whether a message
// happened. The wait on the worker blocks only the calling session's
// goroutine; frames from one sender are therefore confirmed in send order
// while other sessions proceed concurrently.
func (e *Engine) Relay(sender *Session, req Request) {
	draft := models.EmailDraft{
		From:       sender.Identity(),
		To:         req.To,
		Body:       req.Body,
		Attachment: req.Attachment,
	}

	res := <-e.worker.Submit(draft)
	if res.Err != nil {
		metrics.PersistenceFailures.Inc()
		sender.push(errorFrame(res.Err.Error()))
		return
	}

	delivery := "offline"
	if rcpt := e.registry.Lookup(req.To); rcpt != nil && rcpt.State() == StateRegistered {
		rcpt.push(newEmailFrame(res.Email))
		delivery = "live"
	}
	metrics.EmailsRelayed.WithLabelValues(delivery).Inc()

	sender.push(sentFrame(req.To))
}
