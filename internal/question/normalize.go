package question

import (
	"crypto/sha256"
	"encoding/hex"
	"strings"
)

// Normalize returns the display form (whitespace collapsed, case kept) and
// the identity form (display form lowercased) of a question.
func Normalize(text string) (display string, normalized string) {
	display = strings.Join(strings.Fields(text), " ")
	return display, strings.ToLower(display)
}

// Hash is the durable identity of a normalized question within a project.
func Hash(normalized string) string {
	sum := sha256.Sum256([]byte(normalized))
	return hex.EncodeToString(sum[:])
}
