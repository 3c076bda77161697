package ws

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
)

func TestSink_EnqueueAndDrain(t *testing.T) {
	req := require.New(t)
	sink := NewSink(4)

	req.NoError(sink.Consume(context.Background(), event.AuthSuccess{Name: "alice-one"}))
	req.NoError(sink.Consume(context.Background(), event.Error{Message: "nope"}))

	req.Equal(event.AuthSuccess{Name: "alice-one"}, <-sink.Events())
	req.Equal(event.Error{Message: "nope"}, <-sink.Events())
}

func TestSink_FullBufferDropsInsteadOfBlocking(t *testing.T) {
	req := require.New(t)
	sink := NewSink(1)

	req.NoError(sink.Consume(context.Background(), event.Error{Message: "first"}))
	// Second enqueue finds the buffer full and returns without blocking.
	req.NoError(sink.Consume(context.Background(), event.Error{Message: "second"}))

	req.Equal(event.Error{Message: "first"}, <-sink.Events())
	select {
	case e := <-sink.Events():
		t.Fatalf("unexpected buffered event %v", e)
	default:
	}
}

func TestSink_CanceledContext(t *testing.T) {
	sink := NewSink(0)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := sink.Consume(ctx, event.Error{Message: "late"})
	require.ErrorIs(t, err, context.Canceled)
}
