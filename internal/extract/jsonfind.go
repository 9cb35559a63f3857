package extract

import (
	"encoding/json"
	"strings"
)

// FindJSONObject returns the first balanced JSON object embedded in text.
// Model output may wrap the object in prose or markdown fences, and a stray
// brace in the prose moves the search to the next one. ok is false
// when no complete, valid object exists, which is how truncated output shows up.
func FindJSONObject(text string) (json.RawMessage, bool) {
	clean := stripFences(text)
	for start := strings.IndexByte(clean, '{'); start >= 0; {
		if end, found := matchBrace(clean, start); found {
			candidate := clean[start : end+1]
			if json.Valid([]byte(candidate)) {
				return json.RawMessage(candidate), true
			}
		}
		next := strings.IndexByte(clean[start+1:], '{')
		if next < 0 {
			break
		}
		start += next + 1
	}
	return nil, false
}

func stripFences(text string) string {
	clean := strings.TrimSpace(text)
	if idx := strings.Index(clean, "```"); idx >= 0 {
		rest := clean[idx+3:]
		if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
			rest = rest[nl+1:]
		}
		if end := strings.Index(rest, "```"); end >= 0 {
			rest = rest[:end]
		}
		if strings.Contains(rest, "{") {
			return strings.TrimSpace(rest)
		}
	}
	return clean
}

// matchBrace finds the index of the brace closing the one at start,
// skipping braces inside string literals.
func matchBrace(s string, start int) (int, bool) {
	depth := 0
	inString := false
	escaped := false
	for i := start; i < len(s); i++ {
		ch := s[i]
		if inString {
			switch {
			case escaped:
				escaped = false
			case ch == '\\':
				escaped = true
			case ch == '"':
				inString = false
			}
			continue
		}
		switch ch {
		case '"':
			inString = true
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
