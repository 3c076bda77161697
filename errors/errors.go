// Package errors defines the sentinel errors shared across the relay.
// The relay-facing message strings double as the wire-level error payload
// sent back to the offending connection, so they are phrased for end users.
package errors

import (
	goerrors "errors"
	"fmt"
)

var (
	// Join validation failures.
	ErrNameRequired  = fmt.Errorf("Username is required")
	ErrNameHasSpaces = fmt.Errorf("Username cannot have any spaces")
	ErrNameTooShort  = fmt.Errorf("Username must have at least 5 characters")
	ErrNameTaken     = fmt.Errorf("Username already taken")

	// Relay preconditions and routing failures.
	ErrNotJoined         = fmt.Errorf("You must join to chat")
	ErrAlreadyJoined     = fmt.Errorf("You already joined the chat")
	ErrEmptyMessage      = fmt.Errorf("Message cannot be empty")
	ErrRecipientNotFound = fmt.Errorf("Users not found or offline")
	ErrSessionClosed     = fmt.Errorf("session is closed")
	ErrInvalidCredential = fmt.Errorf("Invalid or expired credential")

	// Account service failures.
	ErrUserAlreadyExists  = fmt.Errorf("user already exists")
	ErrInvalidPassword    = fmt.Errorf("password does not meet complexity requirements")
	ErrInvalidCredentials = fmt.Errorf("invalid email or password")
	ErrUserNotFound       = fmt.Errorf("user not found")
	ErrTokenGeneration    = fmt.Errorf("token generation failed")
)

// Kind classifies a relay error for logging purposes.
// Every kind is a point-in-time rejection of one request: none of them
// closes or degrades the connection.
type Kind string

const (
	KindValidation   Kind = "validation"
	KindConflict     Kind = "conflict"
	KindNotFound     Kind = "not_found"
	KindPrecondition Kind = "precondition"
	KindUnknown      Kind = "unknown"
)

// KindOf maps a sentinel to its taxonomy kind, looking through wrapping.
func KindOf(err error) Kind {
	switch {
	case goerrors.Is(err, ErrNameRequired),
		goerrors.Is(err, ErrNameHasSpaces),
		goerrors.Is(err, ErrNameTooShort),
		goerrors.Is(err, ErrEmptyMessage):
		return KindValidation
	case goerrors.Is(err, ErrNameTaken),
		goerrors.Is(err, ErrUserAlreadyExists):
		return KindConflict
	case goerrors.Is(err, ErrRecipientNotFound),
		goerrors.Is(err, ErrUserNotFound):
		return KindNotFound
	case goerrors.Is(err, ErrNotJoined),
		goerrors.Is(err, ErrAlreadyJoined),
		goerrors.Is(err, ErrSessionClosed),
		goerrors.Is(err, ErrInvalidCredential):
		return KindPrecondition
	default:
		return KindUnknown
	}
}
