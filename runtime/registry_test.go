package runtime

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/domain/event"
	"chat-relay/errors"
)

type nopSink struct{}

func (nopSink) Consume(ctx context.Context, e event.RelayEvent) error { return nil }

func TestRegistry_Register_And_Lookup(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session := NewSession(nopSink{})

	// Given an empty registry
	req.Zero(registry.Len())

	// When a name is registered
	req.NoError(registry.Register("alice", session))

	// Then both directions of the mapping resolve
	found, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(session, found)

	name, ok := registry.NameOf(session.ID())
	req.True(ok)
	req.Equal("alice", name)

	req.Equal([]string{"alice"}, registry.ListNames())
}

func TestRegistry_Register_TakenName(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	req.NoError(registry.Register("alice", NewSession(nopSink{})))

	// A second registration of the same name loses
	err := registry.Register("alice", NewSession(nopSink{}))
	req.ErrorIs(err, errors.ErrNameTaken)
	req.Equal(1, registry.Len())
}

func TestRegistry_Register_SecondNameSameSession(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session := NewSession(nopSink{})

	req.NoError(registry.Register("alice", session))

	// A second claim by the same connection is refused
	err := registry.Register("bobby", session)
	req.ErrorIs(err, errors.ErrAlreadyJoined)

	// Both directions of the existing mapping are untouched
	name, ok := registry.NameOf(session.ID())
	req.True(ok)
	req.Equal("alice", name)
	found, ok := registry.Lookup("alice")
	req.True(ok)
	req.Same(session, found)
	req.Equal(1, registry.Len())

	// And the refused name stays free
	_, ok = registry.Lookup("bobby")
	req.False(ok)
}

func TestRegistry_Unregister_Idempotent(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()
	session := NewSession(nopSink{})

	req.NoError(registry.Register("alice", session))

	// When the name is released twice
	registry.Unregister("alice")
	registry.Unregister("alice")

	// Then the registry is empty and consistent
	req.Zero(registry.Len())
	_, ok := registry.Lookup("alice")
	req.False(ok)
	_, ok = registry.NameOf(session.ID())
	req.False(ok)

	// And removing a never-registered name is a no-op
	registry.Unregister("nobody")
}

func TestRegistry_Concurrent_Register_ExactlyOneWinner(t *testing.T) {
	req := require.New(t)
	registry := NewRegistry()

	const contenders = 64
	var wg sync.WaitGroup
	results := make(chan error, contenders)

	for i := 0; i < contenders; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			results <- registry.Register("alice", NewSession(nopSink{}))
		}()
	}
	wg.Wait()
	close(results)

	var wins, losses int
	for err := range results {
		if err == nil {
			wins++
		} else {
			req.ErrorIs(err, errors.ErrNameTaken)
			losses++
		}
	}

	req.Equal(1, wins)
	req.Equal(contenders-1, losses)
	req.Equal(1, registry.Len())
}
