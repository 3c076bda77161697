package runtime

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"chat-relay/contract"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// SessionState tracks the per-connection lifecycle.
// There is no transition out of StateClosed: a reconnecting client is a
// brand-new session with a brand-new connection id.
type SessionState int

const (
	StateUnbound SessionState = iota
	StateBound
	StateClosed
)

// Session is the server-side state for one live client connection.
// It wraps the connection's event sink, the bound identity (if any), and
// the lifecycle state. A session binds at most one identity.
type Session struct {
	id   string
	sink contract.EventSink

	mu       sync.Mutex
	state    SessionState
	name     string
	joinedAt time.Time
}

// NewSession wraps a transport sink into an unbound session with a fresh
// connection id.
func NewSession(sink contract.EventSink) *Session {
	return &Session{
		id:    uuid.NewString(),
		sink:  sink,
		state: StateUnbound,
	}
}

// ID returns the transport-stable connection id.
func (s *Session) ID() string { return s.id }

// Identity returns the bound display name, if any.
func (s *Session) Identity() (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.name, s.state == StateBound
}

// JoinedAt returns the timestamp of the successful join, zero if unbound.
func (s *Session) JoinedAt() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.joinedAt
}

// bind attaches an identity to the session. It fails on closed sessions and
// on sessions that already carry an identity.
func (s *Session) bind(name string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	switch s.state {
	case StateClosed:
		return errors.ErrSessionClosed
	case StateBound:
		return errors.ErrAlreadyJoined
	}
	s.state = StateBound
	s.name = name
	s.joinedAt = at
	return nil
}

// close transitions the session to StateClosed and reports the identity it
// was bound to. The second call and every call after it returns ok=false,
// which makes transport-level duplicate disconnects harmless.
func (s *Session) close() (name string, wasBound, ok bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state == StateClosed {
		return "", false, false
	}
	wasBound = s.state == StateBound
	s.state = StateClosed
	return s.name, wasBound, true
}

// Push forwards an event to the session's sink unless the session closed.
// A push to a closed session reports ErrSessionClosed so the router can
// treat the race as a silent drop.
func (s *Session) Push(ctx context.Context, e event.RelayEvent) error {
	s.mu.Lock()
	closed := s.state == StateClosed
	s.mu.Unlock()
	if closed {
		return errors.ErrSessionClosed
	}
	return s.sink.Consume(ctx, e)
}
