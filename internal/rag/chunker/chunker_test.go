package chunker

import (
	"errors"
	"strings"
	"testing"
)

func TestSplitEmptyInput(t *testing.T) {
	if _, err := Split("", 1000, 200); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("err=%v, want ErrEmptyInput", err)
	}
	if _, err := Split("   \n\t  ", 1000, 200); !errors.Is(err, ErrEmptyInput) {
		t.Fatalf("whitespace err=%v, want ErrEmptyInput", err)
	}
}

func TestSplitShortTextIsSingleChunk(t *testing.T) {
	text := "short text that fits in one chunk"
	chunks, err := Split(text, 1000, 200)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) != 1 || chunks[0] != text {
		t.Fatalf("chunks=%q", chunks)
	}
}

func TestSplitPrefersParagraphBreaks(t *testing.T) {
	para1 := strings.Repeat("a", 60)
	para2 := strings.Repeat("b", 60)
	text := para1 + "\n\n" + para2

	chunks, err := Split(text, 100, 10)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("len=%d, want >= 2", len(chunks))
	}
	// The first cut lands on the paragraph break, not mid-word.
	if !strings.HasSuffix(chunks[0], "\n\n") {
		t.Fatalf("first chunk does not end at paragraph break: %q", chunks[0])
	}
	if !strings.HasPrefix(chunks[0], para1) {
		t.Fatalf("first chunk=%q", chunks[0])
	}
}

func TestSplitFallsBackToSentences(t *testing.T) {
	text := strings.Repeat("One sentence here. ", 20)
	chunks, err := Split(text, 100, 20)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("len=%d, want >= 2", len(chunks))
	}
	for i, c := range chunks[:len(chunks)-1] {
		if !strings.HasSuffix(c, ". ") {
			t.Fatalf("chunk %d does not end at sentence boundary: %q", i, c)
		}
	}
}

func TestSplitHardCutWithoutSeparators(t *testing.T) {
	text := strings.Repeat("x", 250)
	chunks, err := Split(text, 100, 20)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i, c := range chunks {
		if n := len([]rune(c)); n > 100 {
			t.Fatalf("chunk %d has %d runes, want <= 100", i, n)
		}
	}
	joined := strings.Join(chunks, "")
	if !strings.Contains(joined, text[:100]) {
		t.Fatalf("chunks lost leading content")
	}
}

func TestSplitOverlapCarriesContext(t *testing.T) {
	text := strings.Repeat("word ", 100)
	chunks, err := Split(text, 100, 20)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(chunks) < 2 {
		t.Fatalf("len=%d, want >= 2", len(chunks))
	}
	for i := 1; i < len(chunks); i++ {
		prev := []rune(chunks[i-1])
		tail := string(prev[len(prev)-20:])
		if !strings.HasPrefix(chunks[i], tail) {
			t.Fatalf("chunk %d does not start with previous tail: tail=%q head=%q", i, tail, chunks[i][:20])
		}
	}
}

func TestSplitCoversWholeText(t *testing.T) {
	text := strings.Repeat("The quick brown fox jumps over the lazy dog. ", 50)
	chunks, err := Split(text, 200, 40)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	last := chunks[len(chunks)-1]
	if !strings.HasSuffix(text, last) {
		t.Fatalf("last chunk is not a suffix of the input")
	}
}

func TestSplitDeterministic(t *testing.T) {
	text := strings.Repeat("Alpha beta gamma delta. ", 40)
	a, err := Split(text, 120, 30)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	b, err := Split(text, 120, 30)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	if len(a) != len(b) {
		t.Fatalf("len %d != %d", len(a), len(b))
	}
	for i := range a {
		if a[i] != b[i] {
			t.Fatalf("chunk %d differs", i)
		}
	}
}

func TestSplitUnicodeBoundaries(t *testing.T) {
	text := strings.Repeat("héllo wörld ünïcode ", 30)
	chunks, err := Split(text, 50, 10)
	if err != nil {
		t.Fatalf("Split: %v", err)
	}
	for i, c := range chunks {
		if !strings.Contains(text, c) {
			t.Fatalf("chunk %d is not a substring of the input (broken rune?): %q", i, c)
		}
	}
}
