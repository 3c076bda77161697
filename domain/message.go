// Package domain contains core concepts of the relay.
// This file defines Message events and related rules.
// Messages are ephemeral: they exist only for the duration of one delivery.
package domain

import (
	"time"

	"github.com/google/uuid"
)

// Message is a direct message routed between two online identities.
// From is always the registry-bound identity of the sending session,
// never client-supplied. Delivered is true only when the recipient was
// online and the push succeeded; there is no queueing for offline users.
type Message struct {
	ID        uuid.UUID `json:"id"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Content   string    `json:"content"`
	Timestamp time.Time `json:"timestamp"`
	Delivered bool      `json:"delivered"`
}

// NewMessage stamps a validated direct message at routing time.
func NewMessage(from, to, content string) Message {
	return Message{
		ID:        uuid.New(),
		From:      from,
		To:        to,
		Content:   content,
		Timestamp: time.Now().UTC(),
	}
}
