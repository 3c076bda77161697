package ws

import (
	"context"

	"chat-relay/domain/event"
)

// Sink is the outbound buffer of one websocket connection.
// The relay enqueues events here and the connection's write pump drains
// them, so registry mutations never wait on network I/O.
type Sink struct {
	events chan event.RelayEvent
}

func NewSink(bufferSize int) *Sink {
	return &Sink{events: make(chan event.RelayEvent, bufferSize)}
}

// Consume implements contract.EventSink. When the buffer is full the event
// is dropped: the relay is a best-effort push channel, and a slow reader
// must not apply backpressure to the whole engine.
func (s *Sink) Consume(ctx context.Context, e event.RelayEvent) error {
	select {
	case s.events <- e:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	default:
		return nil
	}
}

// Events exposes the drain side to the write pump.
func (s *Sink) Events() <-chan event.RelayEvent {
	return s.events
}
