package moderation

import (
	"bufio"
	"bytes"
	"embed"
	"strings"
)

//go:embed words/*.txt
var wordFiles embed.FS

// DefaultWords loads the embedded wordlists. One word per line, blank
// lines and #-comments ignored.
func DefaultWords() ([]string, error) {
	entries, err := wordFiles.ReadDir("words")
	if err != nil {
		return nil, err
	}

	var words []string
	for _, entry := range entries {
		data, err := wordFiles.ReadFile("words/" + entry.Name())
		if err != nil {
			return nil, err
		}
		scanner := bufio.NewScanner(bytes.NewReader(data))
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())
			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}
			words = append(words, line)
		}
		if err := scanner.Err(); err != nil {
			return nil, err
		}
	}
	return words, nil
}
