// Package runtime implements the presence and message-routing engine:
// the identity registry, per-connection sessions, the direct-message
// router, and the presence broadcaster. It owns all shared mutable state;
// transports stay at the edges behind the EventSink contract.
package runtime

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/samber/lo"

	"chat-relay/contract"
	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
)

// TokenVerifier optionally gates join on a credential issued by the
// account service. A nil verifier keeps join purely name-based.
type TokenVerifier interface {
	Verify(token string) error
}

// Relay is the long-lived gateway component constructed once at startup.
// It owns the registry and the set of live sessions and coordinates join,
// message delivery, typing signals, and disconnect.
type Relay struct {
	mu       sync.RWMutex
	log      *slog.Logger
	registry *Registry
	router   *Router
	presence *Broadcaster
	verifier TokenVerifier
	sessions map[string]*Session // connection id -> session
}

// NewRelay wires the engine together. verifier may be nil.
func NewRelay(log *slog.Logger, registry *Registry, router *Router,
	presence *Broadcaster, verifier TokenVerifier) *Relay {
	return &Relay{
		log:      log,
		registry: registry,
		router:   router,
		presence: presence,
		verifier: verifier,
		sessions: make(map[string]*Session),
	}
}

// Connect admits a new transport connection and returns its unbound session.
func (g *Relay) Connect(sink contract.EventSink) *Session {
	s := NewSession(sink)
	g.mu.Lock()
	g.sessions[s.ID()] = s
	g.mu.Unlock()
	g.log.Info("session connected", "session", s.ID(), "live", g.SessionCount())
	return s
}

// Join runs validation and registration for a join request. On success the
// identity is bound, the joiner gets a private auth_success, and everyone
// gets a user_joined with the online set including the joiner. On failure
// the offending connection gets a private error and nothing is bound or
// broadcast.
func (g *Relay) Join(ctx context.Context, s *Session, name, token string) {
	if g.verifier != nil {
		if err := g.verifier.Verify(token); err != nil {
			g.log.Warn("join credential rejected", "session", s.ID(), "error", err)
			g.reject(ctx, s, errors.ErrInvalidCredential)
			return
		}
	}

	trimmed := domain.NormalizeName(name)
	if err := domain.ValidateName(trimmed); err != nil {
		g.reject(ctx, s, err)
		return
	}

	// Register first so exactly one of two racing joins wins the name;
	// the registry also refuses a second name for an already-bound
	// connection. Then bind; a bind failure (disconnect race) rolls the
	// registration back.
	if err := g.registry.Register(trimmed, s); err != nil {
		g.reject(ctx, s, err)
		return
	}
	if err := s.bind(trimmed, time.Now().UTC()); err != nil {
		g.registry.Unregister(trimmed)
		g.reject(ctx, s, err)
		return
	}

	g.log.Info("identity joined", "name", trimmed, "session", s.ID(), "online", g.registry.Len())

	if err := s.Push(ctx, event.AuthSuccess{Name: trimmed}); err != nil {
		g.log.Debug("auth_success push skipped", "session", s.ID(), "error", err)
	}

	// Registration happened before this snapshot, so the online set always
	// contains the new identity.
	g.presence.AnnounceJoin(ctx, g.snapshot(), trimmed, g.registry.ListNames())
}

// SendMessage routes one direct message; rejections go back to the sender
// as a private error event.
func (g *Relay) SendMessage(ctx context.Context, s *Session, to, content string) {
	if err := g.router.Route(ctx, s, to, content); err != nil {
		g.reject(ctx, s, err)
	}
}

// Typing forwards a typing indicator. Invalid signals are dropped silently.
func (g *Relay) Typing(ctx context.Context, s *Session, target string, isTyping bool) {
	g.router.Signal(ctx, s, target, isTyping)
}

// Disconnect tears a session down. It is idempotent against duplicate
// disconnect signals from the transport; only the first call releases the
// identity and announces the departure.
func (g *Relay) Disconnect(ctx context.Context, s *Session) {
	name, wasBound, ok := s.close()
	if !ok {
		return
	}

	g.mu.Lock()
	delete(g.sessions, s.ID())
	g.mu.Unlock()

	if wasBound {
		g.registry.Unregister(name)
		g.presence.AnnounceLeave(ctx, g.snapshot(), name, g.registry.ListNames())
		g.log.Info("identity left", "name", name, "session", s.ID(), "online", g.registry.Len())
		return
	}
	g.log.Info("session disconnected", "session", s.ID())
}

// Shutdown releases every live session. Used on process exit.
func (g *Relay) Shutdown(ctx context.Context) {
	sessions := g.snapshot()
	for _, s := range sessions {
		g.Disconnect(ctx, s)
	}
	g.log.Info("relay shut down", "released", len(sessions))
}

// OnlineNames exposes the current presence set.
func (g *Relay) OnlineNames() []string {
	return g.registry.ListNames()
}

// SessionCount reports the number of live sessions, bound or not.
func (g *Relay) SessionCount() int {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return len(g.sessions)
}

func (g *Relay) snapshot() []*Session {
	g.mu.RLock()
	defer g.mu.RUnlock()
	return lo.Values(g.sessions)
}

func (g *Relay) reject(ctx context.Context, s *Session, cause error) {
	g.log.Debug("request rejected",
		"session", s.ID(),
		"kind", string(errors.KindOf(cause)),
		"reason", cause.Error())
	if err := s.Push(ctx, event.Error{Message: cause.Error()}); err != nil {
		g.log.Debug("error push skipped", "session", s.ID(), "error", err)
	}
}
