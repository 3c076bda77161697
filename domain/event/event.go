// Package event defines the relay events pushed to connected sessions.
// Event names are the wire-level identifiers of the transport envelope.
package event

import "chat-relay/domain"

// Wire names of server-to-client events.
const (
	NameAuthSuccess    = "auth_success"
	NameUserJoined     = "user_joined"
	NameUserLeft       = "user_left"
	NameReceiveMessage = "receive_message"
	NameTyping         = "typing"
	NameError          = "error"
)

// RelayEvent is anything the relay can push to a session sink.
type RelayEvent interface {
	EventName() string
}

// AuthSuccess confirms a successful join to the joining connection only.
type AuthSuccess struct {
	Name string
}

func (AuthSuccess) EventName() string { return NameAuthSuccess }

// UserJoined announces a join to every connected session, carrying a
// snapshot of the online set that includes the joiner.
type UserJoined struct {
	Name        string   `json:"name"`
	OnlineNames []string `json:"onlineNames"`
}

func (UserJoined) EventName() string { return NameUserJoined }

// UserLeft announces the departure of a bound identity together with the
// post-departure online set.
type UserLeft struct {
	Name        string   `json:"name"`
	OnlineNames []string `json:"onlineNames"`
}

func (UserLeft) EventName() string { return NameUserLeft }

// MessageReceived delivers a direct message to the recipient only.
type MessageReceived struct {
	Message domain.Message
}

func (MessageReceived) EventName() string { return NameReceiveMessage }

// Typing is the directional typing indicator, target only.
type Typing struct {
	From     string `json:"from"`
	IsTyping bool   `json:"isTyping"`
}

func (Typing) EventName() string { return NameTyping }

// Error reports a rejected request to the offending connection only.
type Error struct {
	Message string
}

func (Error) EventName() string { return NameError }
