// Package chunk splits long documents into overlapping windows sized for a
// single LLM call.
package chunk

import (
	"strings"
	"unicode/utf8"

	"github.com/xxxsen/solpipe/internal/model"
)

const (
	paragraphBreak = "\n\n"
	sentenceBreak  = ". "
)

// Split cuts text into ordered chunks of at most maxChars bytes. Consecutive
// chunks share up to overlapChars bytes. A cut prefers a paragraph break, then
// a sentence break, past the window midpoint before falling back to the hard
// boundary.
func Split(text string, maxChars, overlapChars int) []model.TextChunk {
	if maxChars <= 0 || len(text) <= maxChars {
		return []model.TextChunk{{Content: text, Ordinal: 0, TotalChunks: 1, Offset: 0}}
	}
	if overlapChars < 0 {
		overlapChars = 0
	}
	if overlapChars >= maxChars {
		overlapChars = maxChars - 1
	}

	var chunks []model.TextChunk
	start := 0
	for start < len(text) {
		end := start + maxChars
		if end >= len(text) {
			end = len(text)
		} else {
			end = cutPoint(text, start, end)
		}
		chunks = append(chunks, model.TextChunk{Content: text[start:end], Ordinal: len(chunks), Offset: start})
		if end == len(text) {
			break
		}
		next := alignRuneStart(text, end-overlapChars)
		if next <= start {
			next = end
		}
		start = next
	}
	for i := range chunks {
		chunks[i].TotalChunks = len(chunks)
	}
	return chunks
}

func cutPoint(text string, start, end int) int {
	window := text[start:end]
	mid := (end - start) / 2
	if idx := strings.LastIndex(window, paragraphBreak); idx > mid {
		return start + idx + len(paragraphBreak)
	}
	if idx := strings.LastIndex(window, sentenceBreak); idx > mid {
		return start + idx + len(sentenceBreak)
	}
	hard := alignRuneStart(text, end)
	if hard <= start {
		return end
	}
	return hard
}

func alignRuneStart(text string, pos int) int {
	if pos <= 0 {
		return 0
	}
	if pos >= len(text) {
		return len(text)
	}
	for pos > 0 && !utf8.RuneStart(text[pos]) {
		pos--
	}
	return pos
}
