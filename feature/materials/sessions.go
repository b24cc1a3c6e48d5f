package materials

import (
	"errors"
	"sync"
	"time"

	"material-reconciler/core/reconcile"
)

// ErrSessionNotFound is returned for unknown or expired sessions.
var ErrSessionNotFound = errors.New("session not found")

// Registry keeps reconciled sessions for operator review. Expired sessions
// are evicted lazily on access.
type Registry struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*reconcile.Session
	now      func() time.Time
}

// NewRegistry creates a registry. A non-positive ttl keeps sessions for an hour.
func NewRegistry(ttl time.Duration) *Registry {
	if ttl <= 0 {
		ttl = time.Hour
	}
	return &Registry{
		ttl:      ttl,
		sessions: make(map[string]*reconcile.Session),
		now:      time.Now,
	}
}

// Put stores a session and evicts expired ones.
func (r *Registry) Put(s *reconcile.Session) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.evictLocked()
	r.sessions[s.ID] = s
}

// Get returns a live session.
func (r *Registry) Get(id string) (*reconcile.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	s, ok := r.sessions[id]
	if !ok {
		return nil, ErrSessionNotFound
	}
	if r.expired(s) {
		delete(r.sessions, id)
		return nil, ErrSessionNotFound
	}
	return s, nil
}

// Len returns the number of stored sessions, expired ones included.
func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

func (r *Registry) expired(s *reconcile.Session) bool {
	return r.now().Sub(s.CreatedAt) > r.ttl
}

func (r *Registry) evictLocked() {
	for id, s := range r.sessions {
		if r.expired(s) {
			delete(r.sessions, id)
		}
	}
}
