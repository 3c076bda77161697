package runtime

import (
	"sync"

	"chat-relay/errors"
)

// Registry is the authoritative store mapping display names to live
// sessions. Both directions of the mapping are kept under one mutex so a
// reader can never observe a partial update: an identity in byName always
// corresponds to exactly one live session and vice versa.
type Registry struct {
	mu     sync.RWMutex
	byName map[string]*Session
	byConn map[string]string // connection id -> name
}

func NewRegistry() *Registry {
	return &Registry{
		byName: make(map[string]*Session),
		byConn: make(map[string]string),
	}
}

// Register claims a name for a session. Exactly one caller wins a race on
// an identical name; every loser gets ErrNameTaken. A session holds at most
// one name: a second claim by the same connection gets ErrAlreadyJoined and
// leaves the existing mapping untouched. The name is expected to be
// normalized and validated by the caller.
func (r *Registry) Register(name string, s *Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, taken := r.byName[name]; taken {
		return errors.ErrNameTaken
	}
	if _, bound := r.byConn[s.ID()]; bound {
		return errors.ErrAlreadyJoined
	}
	r.byName[name] = s
	r.byConn[s.ID()] = name
	return nil
}

// Unregister releases a name. Removing an unregistered name is a no-op.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	delete(r.byConn, s.ID())
}

// Lookup resolves a name to its live session.
func (r *Registry) Lookup(name string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.byName[name]
	return s, ok
}

// NameOf resolves a connection id back to its registered name.
func (r *Registry) NameOf(connID string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	name, ok := r.byConn[connID]
	return name, ok
}

// ListNames snapshots the currently registered names. Order carries no
// protocol meaning and callers must not rely on it.
func (r *Registry) ListNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.byName))
	for name := range r.byName {
		names = append(names, name)
	}
	return names
}

// Len reports the number of registered identities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.byName)
}
