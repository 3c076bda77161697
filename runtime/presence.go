package runtime

import (
	"context"
	"log/slog"

	"chat-relay/domain/event"
)

// Broadcaster fans presence events out to every connected session,
// including unbound ones and the subject of the announcement itself.
//
// Fan-out is best-effort with no guarantees regarding delivery or retries:
// a failure pushing to one session never blocks or fails delivery to the
// others.
type Broadcaster struct {
	log *slog.Logger
}

func NewBroadcaster(log *slog.Logger) *Broadcaster {
	return &Broadcaster{log: log}
}

// AnnounceJoin broadcasts a user_joined event carrying the online-set
// snapshot. The caller guarantees the snapshot was taken after the
// registration, so it always includes the joiner.
func (b *Broadcaster) AnnounceJoin(ctx context.Context, sessions []*Session, name string, online []string) {
	b.fanout(ctx, sessions, event.UserJoined{Name: name, OnlineNames: online})
}

// AnnounceLeave broadcasts a user_left event with the post-departure
// online set.
func (b *Broadcaster) AnnounceLeave(ctx context.Context, sessions []*Session, name string, online []string) {
	b.fanout(ctx, sessions, event.UserLeft{Name: name, OnlineNames: online})
}

// fanout pushes one event to each session in turn.
func (b *Broadcaster) fanout(ctx context.Context, sessions []*Session, e event.RelayEvent) {
	for _, s := range sessions {
		if err := s.Push(ctx, e); err != nil {
			b.log.Debug("presence push skipped", "session", s.ID(), "event", e.EventName(), "error", err)
		}
	}
}
