// Package confidence scores how well retrieved chunks cover a question.
//
// The score is a cheap lexical-overlap heuristic, not semantic
// similarity: consumers may rely on its relative ordering but should
// not treat the absolute scale as a calibrated probability.
package confidence

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

const minWordLen = 4

// Score returns a relevance score in [0, 1] for the question against
// the chunk contents. No chunks scores zero.
func Score(question string, chunks []string) float64 {
	if len(chunks) == 0 {
		return 0
	}

	q := strings.ToLower(strings.TrimSpace(question))
	words := questionWords(q)

	var total float64
	for _, chunk := range chunks {
		content := strings.ToLower(chunk)

		var s float64
		if q != "" && strings.Contains(content, q) {
			s += 0.4
		}
		if len(words) > 0 {
			matched := 0
			for _, w := range words {
				if strings.Contains(content, w) {
					matched++
				}
			}
			s += 0.3 * float64(matched) / float64(len(words))
		}
		if utf8.RuneCountInString(chunk) > 200 {
			s += 0.1
		}
		total += s
	}

	avg := total / float64(len(chunks))
	if avg > 1 {
		avg = 1
	}
	return avg
}

func questionWords(q string) []string {
	var out []string
	for _, w := range strings.Fields(q) {
		w = strings.TrimFunc(w, func(r rune) bool {
			return !unicode.IsLetter(r) && !unicode.IsNumber(r)
		})
		if len(w) >= minWordLen {
			out = append(out, w)
		}
	}
	return out
}
