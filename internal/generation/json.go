// internal/generation/json.go
package generation

import (
	"encoding/json"
	"strings"
)

// cleanJSONString returns the JSON object of a model reply. A reply that
// already parses is returned as is; otherwise a surrounding markdown fence
// and prose are dropped and the first balanced object is kept. String
// values are never rewritten.
func cleanJSONString(s string) string {
	s = strings.TrimSpace(strings.TrimPrefix(s, "\ufeff"))
	if s == "" || json.Valid([]byte(s)) {
		return s
	}

	s = stripFence(s)
	if json.Valid([]byte(s)) {
		return s
	}
	return firstObject(s)
}

// stripFence removes a leading ``` line and a trailing ``` marker.
func stripFence(s string) string {
	if !strings.HasPrefix(s, "```") {
		return s
	}
	nl := strings.IndexByte(s, '\n')
	if nl == -1 {
		return s
	}
	s = s[nl+1:]
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// firstObject cuts s to its first balanced {...}, skipping braces in strings.
func firstObject(s string) string {
	start := strings.IndexByte(s, '{')
	if start == -1 {
		return s
	}
	s = s[start:]

	balance := 0
	inString := false
	escaped := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		if escaped {
			escaped = false
			continue
		}
		switch {
		case c == '\\' && inString:
			escaped = true
		case c == '"':
			inString = !inString
		case inString:
		case c == '{':
			balance++
		case c == '}':
			balance--
			if balance == 0 {
				return s[:i+1]
			}
		}
	}

	// unbalanced: keep everything up to the last brace and let the decoder report it
	if end := strings.LastIndexByte(s, '}'); end != -1 {
		return s[:end+1]
	}
	return s
}
