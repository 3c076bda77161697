// Package moderation masks banned words in message content before
// delivery. Matching is case-insensitive via an Aho-Corasick automaton so
// a single pass covers the whole wordlist regardless of its size.
package moderation

import (
	"unicode"

	goahocorasick "github.com/anknown/ahocorasick"
)

// Masker replaces every occurrence of a banned pattern with the
// replacement rune, preserving the length and spacing of the original.
type Masker struct {
	machine     *goahocorasick.Machine
	replacement rune
}

// NewMasker builds the automaton from the provided wordlist.
func NewMasker(words []string, replacement rune) (*Masker, error) {
	patterns := make([][]rune, 0, len(words))
	for _, w := range words {
		if w == "" {
			continue
		}
		patterns = append(patterns, lowerRunes([]rune(w)))
	}

	m := new(goahocorasick.Machine)
	if err := m.Build(patterns); err != nil {
		return nil, err
	}
	return &Masker{machine: m, replacement: replacement}, nil
}

// Mask returns the content with every banned span overwritten by the
// replacement rune. Content without matches is returned unchanged.
func (m *Masker) Mask(content string) string {
	runes := []rune(content)
	if len(runes) == 0 {
		return content
	}

	spans := m.machine.MultiPatternSearch(lowerRunes(runes), false)
	if len(spans) == 0 {
		return content
	}

	for _, span := range spans {
		end := span.Pos + len(span.Word)
		if span.Pos < 0 || end > len(runes) {
			continue
		}
		for i := span.Pos; i < end; i++ {
			runes[i] = m.replacement
		}
	}
	return string(runes)
}

func lowerRunes(in []rune) []rune {
	out := make([]rune, len(in))
	for i, r := range in {
		out[i] = unicode.ToLower(r)
	}
	return out
}
