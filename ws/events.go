package ws

import (
	"encoding/json"
	"fmt"

	"chat-relay/domain/event"
)

// Wire names of client-to-server events.
const (
	NameJoin        = "join"
	NameSendMessage = "send_message"
	NameTypingStart = "typing_start"
	NameTypingStop  = "typing_stop"
)

// Envelope is the JSON frame exchanged on the wire in both directions:
// an event name plus an event-specific payload.
type Envelope struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// JoinPayload is the payload of a join request. Token is only honored when
// the relay runs with the credential gate enabled.
type JoinPayload struct {
	Name  string `json:"name"`
	Token string `json:"token,omitempty"`
}

// SendMessagePayload is the payload of a direct-message request.
type SendMessagePayload struct {
	To      string `json:"to"`
	Content string `json:"content"`
}

// Encode wraps a relay event into its wire envelope.
func Encode(e event.RelayEvent) ([]byte, error) {
	var data any
	switch evt := e.(type) {
	case event.AuthSuccess:
		data = evt.Name
	case event.Error:
		data = evt.Message
	case event.MessageReceived:
		data = evt.Message
	default:
		data = e
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("encode %s payload: %w", e.EventName(), err)
	}
	return json.Marshal(Envelope{Event: e.EventName(), Data: raw})
}
