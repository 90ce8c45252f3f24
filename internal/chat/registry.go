package chat

import (
	"sort"
	"sync"
)

// Registry is the authoritative index of live sessions, keyed by
// username. It only tracks sessions; creating and closing the
// underlying connections is the handler's job.
//
// Locking discipline: the mutex guards the map alone. Snapshot copies
// the sessions out under the lock so that callers perform network I/O
// with the lock released; a stalled peer must never block
// registrations or removals.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	closed   bool
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Register atomically checks for absence and inserts the session under
// its username. Exactly one of any set of concurrent registrations for
// the same name succeeds; the rest get ErrNameTaken. After Drain it
// returns ErrRegistryClosed so late handshakes cannot leak sessions
// past shutdown.
func (r *Registry) Register(sess *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return ErrRegistryClosed
	}
	if _, exists := r.sessions[sess.Name()]; exists {
		return ErrNameTaken
	}
	r.sessions[sess.Name()] = sess
	return nil
}

// Remove deletes the username's entry. Removing an absent name is a
// no-op, which keeps double-teardown races harmless.
func (r *Registry) Remove(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, name)
}

// Lookup returns the session registered under name, if any.
func (r *Registry) Lookup(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	sess, ok := r.sessions[name]
	return sess, ok
}

// Snapshot returns a point-in-time copy of all sessions, sorted by
// username. Iterating the copy never observes mid-broadcast mutations
// and holds no lock.
func (r *Registry) Snapshot() []*Session {
	r.mu.RLock()
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}

// Roster returns the lexicographically sorted usernames.
func (r *Registry) Roster() []string {
	r.mu.RLock()
	names := make([]string, 0, len(r.sessions))
	for name := range r.sessions {
		names = append(names, name)
	}
	r.mu.RUnlock()

	sort.Strings(names)
	return names
}

// Len returns the number of registered sessions.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Drain empties the registry, marks it closed, and returns the removed
// sessions so shutdown can notify and close them outside the lock.
func (r *Registry) Drain() []*Session {
	r.mu.Lock()
	out := make([]*Session, 0, len(r.sessions))
	for _, sess := range r.sessions {
		out = append(out, sess)
	}
	r.sessions = make(map[string]*Session)
	r.closed = true
	r.mu.Unlock()

	sort.Slice(out, func(i, j int) bool { return out[i].Name() < out[j].Name() })
	return out
}
