// Package ws is the websocket transport gateway: it upgrades connections,
// decodes inbound envelopes into relay calls, and pumps outbound events
// back to the client. It is a thin, replaceable shim over the relay.
package ws

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/gorilla/websocket"

	"chat-relay/domain/event"
	"chat-relay/runtime"
	"chat-relay/services"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = 54 * time.Second
	maxMessageSize = 4096
)

// Handler serves one websocket connection per request.
type Handler struct {
	log        *slog.Logger
	relay      services.IRelayService
	upgrader   websocket.Upgrader
	bufferSize int
}

func NewHandler(log *slog.Logger, relay services.IRelayService, bufferSize int) *Handler {
	return &Handler{
		log:   log,
		relay: relay,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		bufferSize: bufferSize,
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.log.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	sink := NewSink(h.bufferSize)
	sess := h.relay.Connect(sink)

	ctx, cancel := context.WithCancel(context.Background())
	go h.writePump(ctx, conn, sink)

	h.readLoop(ctx, conn, sess)

	cancel()
	// The connection context is gone; teardown still has to broadcast the
	// departure to everyone else.
	h.relay.Disconnect(context.Background(), sess)
	_ = conn.Close()
}

// readLoop consumes inbound frames until the client goes away.
func (h *Handler) readLoop(ctx context.Context, conn *websocket.Conn, sess *runtime.Session) {
	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway,
				websocket.CloseAbnormalClosure) && !errors.Is(err, io.EOF) {
				h.log.Warn("websocket read error", "session", sess.ID(), "error", err)
			}
			return
		}
		h.dispatch(ctx, sess, raw)
	}
}

// dispatch decodes one envelope and hands it to the relay. Malformed input
// is a point-in-time rejection: the connection stays open.
func (h *Handler) dispatch(ctx context.Context, sess *runtime.Session, raw []byte) {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		h.pushError(ctx, sess, "Invalid event payload")
		return
	}

	switch env.Event {
	case NameJoin:
		var p JoinPayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.pushError(ctx, sess, "Invalid join payload")
			return
		}
		h.relay.Join(ctx, sess, p.Name, p.Token)

	case NameSendMessage:
		var p SendMessagePayload
		if err := json.Unmarshal(env.Data, &p); err != nil {
			h.pushError(ctx, sess, "Invalid message payload")
			return
		}
		h.relay.SendMessage(ctx, sess, p.To, p.Content)

	case NameTypingStart, NameTypingStop:
		var target string
		if err := json.Unmarshal(env.Data, &target); err != nil {
			h.pushError(ctx, sess, "Invalid typing payload")
			return
		}
		h.relay.Typing(ctx, sess, target, env.Event == NameTypingStart)

	default:
		h.pushError(ctx, sess, fmt.Sprintf("Unknown event: %s", env.Event))
	}
}

func (h *Handler) pushError(ctx context.Context, sess *runtime.Session, msg string) {
	if err := sess.Push(ctx, event.Error{Message: msg}); err != nil {
		h.log.Debug("error push skipped", "session", sess.ID(), "error", err)
	}
}

// writePump serializes all writes to the connection: relay events and
// keepalive pings. One pump per connection keeps per-recipient FIFO order.
func (h *Handler) writePump(ctx context.Context, conn *websocket.Conn, sink *Sink) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			_ = conn.WriteMessage(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
			return

		case e := <-sink.Events():
			payload, err := Encode(e)
			if err != nil {
				h.log.Error("event encoding failed", "event", e.EventName(), "error", err)
				continue
			}
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.TextMessage, payload); err != nil {
				h.log.Debug("websocket write failed", "error", err)
				return
			}

		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
