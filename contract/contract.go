//go:generate go run go.uber.org/mock/mockgen -source=contract.go -destination=../mocks/mock_contract.go -package=mocks
package contract

import (
	"context"

	"chat-relay/domain/event"
)

// EventSink is the outbound side of one connection. The transport adapter
// owns the concrete sink; the relay only ever pushes through this interface.
// Consume must not block on network I/O: a sink that cannot accept an event
// drops it rather than stalling the relay.
type EventSink interface {
	Consume(ctx context.Context, e event.RelayEvent) error
}
