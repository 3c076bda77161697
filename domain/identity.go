// Package domain contains core concepts of the relay.
// This file defines display-name identities and their validation rules.
// No runtime, network, or UI logic should be added here.
package domain

import (
	"strings"
	"unicode"

	"chat-relay/errors"
)

// MinNameLength is the minimum display-name length after trimming.
const MinNameLength = 5

// NormalizeName trims surrounding whitespace from a candidate display name.
// All validation and registration operates on the normalized form.
func NormalizeName(raw string) string {
	return strings.TrimSpace(raw)
}

// ValidateName applies the display-name policy to an already-normalized name.
// Checks run in a fixed order and the first failure wins:
// required, no interior whitespace, minimum length.
// A space-containing name is fatal immediately.
func ValidateName(name string) error {
	if name == "" {
		return errors.ErrNameRequired
	}
	if hasSpaces(name) {
		return errors.ErrNameHasSpaces
	}
	if len([]rune(name)) < MinNameLength {
		return errors.ErrNameTooShort
	}
	return nil
}

func hasSpaces(s string) bool {
	return strings.ContainsFunc(s, unicode.IsSpace)
}
