package domain

import (
	"testing"

	"github.com/stretchr/testify/require"

	"chat-relay/errors"
)

func TestNormalizeName(t *testing.T) {
	req := require.New(t)

	req.Equal("alice", NormalizeName("  alice  "))
	req.Equal("alice", NormalizeName("\talice\n"))
	req.Equal("", NormalizeName("   "))
}

func TestValidateName(t *testing.T) {
	cases := []struct {
		name     string
		input    string
		expected error
	}{
		{"empty is required", "", errors.ErrNameRequired},
		{"interior space", "bad name", errors.ErrNameHasSpaces},
		{"interior tab", "bad\tname", errors.ErrNameHasSpaces},
		{"spaces checked before length", "a b", errors.ErrNameHasSpaces},
		{"too short", "bob", errors.ErrNameTooShort},
		{"four runes too short", "anna", errors.ErrNameTooShort},
		{"five runes ok", "alice", nil},
		{"unicode counts runes not bytes", "héllo", nil},
		{"long ok", "alice-the-great", nil},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateName(tc.input)
			if tc.expected == nil {
				require.NoError(t, err)
				return
			}
			require.ErrorIs(t, err, tc.expected)
		})
	}
}
