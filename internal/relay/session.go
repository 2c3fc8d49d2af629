package relay

import (
	"sync"

	"github.com/eldtechnologies/wiremail/internal/metrics"
)

// SessionState tracks where a connection is in its lifecycle.
type SessionState int

const (
	// StateUnregistered is the initial state; the next inbound frame is
	// interpreted as the identity string.
	StateUnregistered SessionState = iota
	// StateRegistered means the identity is bound and frames are parsed as
	// send requests.
	StateRegistered
	// StateClosed is terminal; no further frames are processed.
	StateClosed
)

// FrameWriter is the outbound half of a duplex connection. Implementations
// must be safe for concurrent use: the recipient's session pushes frames
// from other sessions' goroutines.
type FrameWriter interface {
	WriteFrame(Frame) error
	Close() error
}

// Session is one live duplex connection plus its registration state. The
// identity is bound by the first inbound frame and immutable afterwards.
type Session struct {
	engine *Engine
	conn   FrameWriter

	mu       sync.Mutex
	state    SessionState
	identity string
}

// Identity returns the bound identity, or "" before registration.
func (s *Session) Identity() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.identity
}

// State returns the session's current lifecycle state.
func (s *Session) State() SessionState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// HandleFrame processes one inbound frame. The first frame registers the
// session; every later frame is a relay request. Malformed requests are
// dropped without a reply.
func (s *Session) HandleFrame(raw string) {
	s.mu.Lock()
	switch s.state {
	case StateClosed:
		s.mu.Unlock()
		return

	case StateUnregistered:
		s.identity = raw
		s.state = StateRegistered
		s.mu.Unlock()

		s.engine.registry.Register(raw, s)
		s.engine.logger.Info().Str("identity", raw).Msg("client registered")
		s.push(connectionFrame(raw))
		return

	case StateRegistered:
		s.mu.Unlock()

		req, ok := parseRequest(raw)
		if !ok {
			metrics.FramesDropped.Inc()
			s.engine.logger.Debug().Str("identity", s.Identity()).Msg("dropped malformed send frame")
			return
		}
		s.engine.Relay(s, req)
	}
}

// Close tears the session down: the registry entry is removed (only if it
// still points at this session) and the transport is closed. Idempotent.
func (s *Session) Close() {
	s.mu.Lock()
	if s.state == StateClosed {
		s.mu.Unlock()
		return
	}
	identity := s.identity
	s.state = StateClosed
	s.mu.Unlock()

	if identity != "" {
		s.engine.registry.Unregister(identity, s)
		s.engine.logger.Info().Str("identity", identity).Msg("client disconnected")
	}
	_ = s.conn.Close()
}

// push writes a frame to the underlying connection. A write failure is a
// fatal transport error and closes the session.
func (s *Session) push(f Frame) {
	if s.State() == StateClosed {
		return
	}
	if err := s.conn.WriteFrame(f); err != nil {
		s.engine.logger.Debug().Err(err).Str("identity", s.Identity()).Msg("frame write failed")
		s.Close()
	}
}
