package chunker

import (
	"errors"
	"strings"
)

// ErrEmptyInput is returned when there is no usable text to split.
var ErrEmptyInput = errors.New("no usable text to split")

// Separator classes in preference order: paragraph break, line break,
// sentence terminator, word boundary. Within a window the latest
// occurrence of the most preferred class wins; a rune-boundary cut is
// the last resort.
var separatorClasses = [][]string{
	{"\n\n"},
	{"\n"},
	{". ", "! ", "? "},
	{" "},
}

// Split breaks text into ordered chunks of at most size runes, with
// consecutive chunks sharing overlap trailing runes of context. The
// split is deterministic: the same input always yields the same chunks.
func Split(text string, size, overlap int) ([]string, error) {
	if strings.TrimSpace(text) == "" {
		return nil, ErrEmptyInput
	}
	if size <= 0 {
		size = 1000
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= size {
		overlap = size - 1
	}

	runes := []rune(text)
	if len(runes) <= size {
		return []string{text}, nil
	}

	var chunks []string
	start := 0
	for start < len(runes) {
		if len(runes)-start <= size {
			chunks = append(chunks, string(runes[start:]))
			break
		}

		cut := cutPoint(runes[start:start+size], overlap)
		chunks = append(chunks, string(runes[start:start+cut]))

		next := start + cut - overlap
		if next <= start {
			next = start + cut
		}
		start = next
	}
	return chunks, nil
}

// cutPoint returns the rune count to keep from window. It prefers the
// largest separator class with an occurrence late enough that the cut
// still makes progress past the overlap carry; failing all classes it
// cuts at the window edge.
func cutPoint(window []rune, overlap int) int {
	s := string(window)
	for _, class := range separatorClasses {
		best := -1
		for _, sep := range class {
			idx := strings.LastIndex(s, sep)
			if idx < 0 {
				continue
			}
			end := idx + len(sep)
			if end > best {
				best = end
			}
		}
		if best < 0 {
			continue
		}
		cut := len([]rune(s[:best]))
		if cut > overlap && cut <= len(window) {
			return cut
		}
	}
	return len(window)
}
