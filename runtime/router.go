package runtime

import (
	"context"
	"log/slog"
	"strings"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/moderation"
)

// Router validates and forwards direct messages and typing signals between
// sessions resolved through the registry. It is stateless beyond what the
// registry provides: no retry, no buffering. A recipient that disconnects
// between lookup and push results in a silent drop.
type Router struct {
	log      *slog.Logger
	registry *Registry
	masker   *moderation.Masker
}

// NewRouter builds a router. The masker is optional; a nil masker delivers
// content untouched.
func NewRouter(log *slog.Logger, registry *Registry, masker *moderation.Masker) *Router {
	return &Router{log: log, registry: registry, masker: masker}
}

// Route delivers one direct message from a session to a named recipient.
// The returned error is the rejection to surface to the sender; a nil error
// means the message was either delivered or intentionally dropped.
func (r *Router) Route(ctx context.Context, sender *Session, to, content string) error {
	from, bound := sender.Identity()
	if !bound {
		return errors.ErrNotJoined
	}

	trimmed := strings.TrimSpace(content)
	if trimmed == "" {
		return errors.ErrEmptyMessage
	}

	recipient, ok := r.registry.Lookup(to)
	if !ok {
		return errors.ErrRecipientNotFound
	}

	if r.masker != nil {
		trimmed = r.masker.Mask(trimmed)
	}

	msg := domain.NewMessage(from, to, trimmed)
	msg.Delivered = true

	if err := recipient.Push(ctx, event.MessageReceived{Message: msg}); err != nil {
		// Recipient vanished after lookup. Best-effort relay: drop.
		r.log.Debug("message dropped", "from", from, "to", to, "error", err)
	}
	return nil
}

// Signal forwards a typing indicator to the target's session only.
// Unbound senders and unknown targets are silent no-ops: typing carries no
// acknowledgement and no error reporting.
func (r *Router) Signal(ctx context.Context, sender *Session, target string, isTyping bool) {
	from, bound := sender.Identity()
	if !bound {
		return
	}
	recipient, ok := r.registry.Lookup(target)
	if !ok {
		return
	}
	if err := recipient.Push(ctx, event.Typing{From: from, IsTyping: isTyping}); err != nil {
		r.log.Debug("typing signal dropped", "from", from, "target", target, "error", err)
	}
}
