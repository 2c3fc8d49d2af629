package relay

import (
	"sync"

	"github.com/eldtechnologies/wiremail/internal/metrics"
)

// Registry maps an identity to the session currently reachable at that
// address. At most one session is reachable per identity; a later
// registration silently replaces an earlier one (last wins). The replaced
// session keeps running but can no longer receive new deliveries.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register maps identity to s, overwriting any existing mapping.
func (r *Registry) Register(identity string, s *Session) {
	r.mu.Lock()
	r.sessions[identity] = s
	count := len(r.sessions)
	r.mu.Unlock()
	metrics.RegisteredIdentities.Set(float64(count))
}

// Lookup returns the session currently registered for identity, or nil.
// Absence is not an error: it means the recipient is unreachable right now
// and will find the message through history retrieval instead.
func (r *Registry) Lookup(identity string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[identity]
}

// Unregister removes the mapping for identity only if it still points at s.
// A session closing after being replaced by a newer registration must not
// evict its successor.
func (r *Registry) Unregister(identity string, s *Session) bool {
	r.mu.Lock()
	current, ok := r.sessions[identity]
	if !ok || current != s {
		r.mu.Unlock()
		return false
	}
	delete(r.sessions, identity)
	count := len(r.sessions)
	r.mu.Unlock()
	metrics.RegisteredIdentities.Set(float64(count))
	return true
}

// Count returns the number of registered identities.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}
