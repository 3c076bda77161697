package ws

import (
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/require"

	"chat-relay/domain"
	"chat-relay/domain/event"
	"chat-relay/errors"
	"chat-relay/runtime"
	"chat-relay/services"
)

type testClient struct {
	t    *testing.T
	conn *websocket.Conn
}

func startServer(t *testing.T) string {
	t.Helper()
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	registry := runtime.NewRegistry()
	relay := runtime.NewRelay(log, registry,
		runtime.NewRouter(log, registry, nil), runtime.NewBroadcaster(log), nil)

	server := httptest.NewServer(NewHandler(log, services.NewRelayService(relay), 64))
	t.Cleanup(server.Close)
	return "ws" + strings.TrimPrefix(server.URL, "http")
}

func dial(t *testing.T, url string) *testClient {
	t.Helper()
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	return &testClient{t: t, conn: conn}
}

func (c *testClient) send(name string, data any) {
	c.t.Helper()
	raw, err := json.Marshal(data)
	require.NoError(c.t, err)
	payload, err := json.Marshal(Envelope{Event: name, Data: raw})
	require.NoError(c.t, err)
	require.NoError(c.t, c.conn.WriteMessage(websocket.TextMessage, payload))
}

// next reads envelopes until one with the wanted event name arrives.
func (c *testClient) next(want string) Envelope {
	c.t.Helper()
	require.NoError(c.t, c.conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	for {
		_, raw, err := c.conn.ReadMessage()
		require.NoError(c.t, err)
		var env Envelope
		require.NoError(c.t, json.Unmarshal(raw, &env))
		if env.Event == want {
			return env
		}
	}
}

func (c *testClient) join(name string) {
	c.t.Helper()
	c.send(NameJoin, JoinPayload{Name: name})
	env := c.next(event.NameAuthSuccess)
	var got string
	require.NoError(c.t, json.Unmarshal(env.Data, &got))
	require.Equal(c.t, name, got)
}

func TestHandler_JoinAndPresence(t *testing.T) {
	req := require.New(t)
	url := startServer(t)

	alice := dial(t, url)
	alice.join("alice-one")

	bob := dial(t, url)
	bob.join("bobby-two")

	// alice observes bob's arrival with the full online set
	env := alice.next(event.NameUserJoined)
	var joined event.UserJoined
	req.NoError(json.Unmarshal(env.Data, &joined))
	req.Equal("bobby-two", joined.Name)
	req.ElementsMatch([]string{"alice-one", "bobby-two"}, joined.OnlineNames)
}

func TestHandler_DirectMessageDelivery(t *testing.T) {
	req := require.New(t)
	url := startServer(t)

	alice := dial(t, url)
	alice.join("alice-one")
	bob := dial(t, url)
	bob.join("bobby-two")

	for i := 0; i < 5; i++ {
		alice.send(NameSendMessage, SendMessagePayload{
			To: "bobby-two", Content: fmt.Sprintf("m%d", i),
		})
	}

	for i := 0; i < 5; i++ {
		env := bob.next(event.NameReceiveMessage)
		var msg domain.Message
		req.NoError(json.Unmarshal(env.Data, &msg))
		req.Equal("alice-one", msg.From)
		req.Equal(fmt.Sprintf("m%d", i), msg.Content)
		req.True(msg.Delivered)
	}
}

func TestHandler_JoinRejection(t *testing.T) {
	req := require.New(t)
	url := startServer(t)

	client := dial(t, url)
	client.send(NameJoin, JoinPayload{Name: "bob"})

	env := client.next(event.NameError)
	var msg string
	req.NoError(json.Unmarshal(env.Data, &msg))
	req.Equal(errors.ErrNameTooShort.Error(), msg)

	// The connection survives the rejection and can retry
	client.join("bobby-two")
}

func TestHandler_UnknownRecipientAndMalformedFrames(t *testing.T) {
	req := require.New(t)
	url := startServer(t)

	client := dial(t, url)
	client.join("alice-one")

	client.send(NameSendMessage, SendMessagePayload{To: "ghost-user", Content: "hi"})
	env := client.next(event.NameError)
	var msg string
	req.NoError(json.Unmarshal(env.Data, &msg))
	req.Equal(errors.ErrRecipientNotFound.Error(), msg)

	// Garbage JSON is rejected without dropping the connection
	req.NoError(client.conn.WriteMessage(websocket.TextMessage, []byte("{not json")))
	env = client.next(event.NameError)
	req.NoError(json.Unmarshal(env.Data, &msg))
	req.Equal("Invalid event payload", msg)

	// So is an unknown event name
	client.send("dance", nil)
	env = client.next(event.NameError)
	req.NoError(json.Unmarshal(env.Data, &msg))
	req.Equal("Unknown event: dance", msg)
}

func TestHandler_TypingIndicator(t *testing.T) {
	req := require.New(t)
	url := startServer(t)

	alice := dial(t, url)
	alice.join("alice-one")
	bob := dial(t, url)
	bob.join("bobby-two")

	alice.send(NameTypingStart, "bobby-two")
	env := bob.next(event.NameTyping)
	var typing event.Typing
	req.NoError(json.Unmarshal(env.Data, &typing))
	req.Equal(event.Typing{From: "alice-one", IsTyping: true}, typing)

	alice.send(NameTypingStop, "bobby-two")
	env = bob.next(event.NameTyping)
	req.NoError(json.Unmarshal(env.Data, &typing))
	req.False(typing.IsTyping)
}

func TestHandler_DisconnectBroadcastsDeparture(t *testing.T) {
	req := require.New(t)
	url := startServer(t)

	alice := dial(t, url)
	alice.join("alice-one")
	bob := dial(t, url)
	bob.join("bobby-two")
	alice.next(event.NameUserJoined)

	req.NoError(bob.conn.Close())

	env := alice.next(event.NameUserLeft)
	var left event.UserLeft
	req.NoError(json.Unmarshal(env.Data, &left))
	req.Equal("bobby-two", left.Name)
	req.ElementsMatch([]string{"alice-one"}, left.OnlineNames)
}
