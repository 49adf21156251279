package quizgen

import (
	"encoding/json"
	"strings"
)

// extractArray returns the text from the first '[' to the last ']'.
func extractArray(text string) (string, bool) {
	start := strings.IndexByte(text, '[')
	end := strings.LastIndexByte(text, ']')
	if start < 0 || end <= start {
		return "", false
	}
	return text[start : end+1], true
}

// parseCandidates decodes the question array embedded in a model response.
// Any decode failure yields an empty list.
func parseCandidates(text string) []json.RawMessage {
	arr, ok := extractArray(text)
	if !ok {
		return nil
	}
	var items []json.RawMessage
	if err := json.Unmarshal([]byte(arr), &items); err != nil {
		return nil
	}
	return items
}
