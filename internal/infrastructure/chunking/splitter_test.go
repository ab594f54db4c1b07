package chunking

import (
	"reflect"
	"strings"
	"testing"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

// wordCounter counts one token per whitespace-delimited word, which keeps
// budget arithmetic exact in tests.
type wordCounter struct{}

func (wordCounter) Count(text string) int { return len(strings.Fields(text)) }

// runeCounter counts one token per rune; used to exercise oversized units.
type runeCounter struct{}

func (runeCounter) Count(text string) int { return len([]rune(text)) }

func pagesFromWords(words ...string) []domain.Page {
	return []domain.Page{{Text: strings.Join(words, " "), Number: 1, Source: "test.pdf"}}
}

func manyWords(n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = "w"
	}
	return out
}

func TestSplitRespectsTokenBudget(t *testing.T) {
	counter := wordCounter{}
	for _, tc := range []struct {
		size, overlap, words int
	}{
		{size: 5, overlap: 0, words: 23},
		{size: 5, overlap: 2, words: 23},
		{size: 7, overlap: 3, words: 50},
		{size: 1, overlap: 0, words: 9},
	} {
		splitter := NewSplitter(tc.size, tc.overlap, counter)
		chunks := splitter.Split(pagesFromWords(manyWords(tc.words)...))
		if len(chunks) == 0 {
			t.Fatalf("size=%d overlap=%d: expected chunks", tc.size, tc.overlap)
		}
		for _, chunk := range chunks {
			if got := counter.Count(chunk.Text); got > tc.size {
				t.Fatalf("size=%d overlap=%d: chunk %d has %d tokens", tc.size, tc.overlap, chunk.Seq, got)
			}
			if chunk.TokenCount != counter.Count(chunk.Text) {
				t.Fatalf("chunk %d reports %d tokens, text has %d", chunk.Seq, chunk.TokenCount, counter.Count(chunk.Text))
			}
		}
	}
}

func TestSplitIsDeterministic(t *testing.T) {
	pages := []domain.Page{
		{Text: "alpha beta gamma delta epsilon", Number: 1, Source: "a.pdf"},
		{Text: "zeta eta theta iota kappa lambda", Number: 2, Source: "a.pdf"},
	}
	splitter := NewSplitter(4, 1, wordCounter{})

	first := splitter.Split(pages)
	second := splitter.Split(pages)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("expected identical chunk sequences, got %+v vs %+v", first, second)
	}
}

func TestSplitSpansPageBoundaries(t *testing.T) {
	pages := []domain.Page{
		{Text: "one two", Number: 1, Source: "a.pdf"},
		{Text: "three four", Number: 2, Source: "a.pdf"},
	}
	chunks := NewSplitter(10, 0, wordCounter{}).Split(pages)

	if len(chunks) != 1 {
		t.Fatalf("expected a single page-spanning chunk, got %d", len(chunks))
	}
	if chunks[0].Text != "one two three four" {
		t.Fatalf("unexpected chunk text %q", chunks[0].Text)
	}
	if chunks[0].Page != 1 {
		t.Fatalf("expected first-unit page metadata, got %d", chunks[0].Page)
	}
}

func TestSplitZeroOverlapEmitsDisjointChunks(t *testing.T) {
	chunks := NewSplitter(2, 0, wordCounter{}).Split(pagesFromWords("a", "b", "c", "d", "e"))

	var rebuilt []string
	for _, chunk := range chunks {
		rebuilt = append(rebuilt, chunk.Text)
	}
	if strings.Join(rebuilt, " ") != "a b c d e" {
		t.Fatalf("expected disjoint cover of input, got %v", rebuilt)
	}
}

func TestSplitCarriesOverlap(t *testing.T) {
	chunks := NewSplitter(3, 1, wordCounter{}).Split(pagesFromWords("a", "b", "c", "d"))

	if len(chunks) < 2 {
		t.Fatalf("expected at least two chunks, got %d", len(chunks))
	}
	if !strings.HasPrefix(chunks[1].Text, "c") {
		t.Fatalf("expected second chunk to start with carried unit, got %q", chunks[1].Text)
	}
}

func TestSplitBoundsOversizedSingleUnit(t *testing.T) {
	counter := runeCounter{}
	splitter := NewSplitter(4, 0, counter)
	chunks := splitter.Split([]domain.Page{{Text: strings.Repeat("x", 11), Number: 1, Source: "a.pdf"}})

	if len(chunks) == 0 {
		t.Fatalf("expected chunks for oversized unit")
	}
	for _, chunk := range chunks {
		if counter.Count(chunk.Text) > 4 {
			t.Fatalf("chunk %q exceeds budget", chunk.Text)
		}
	}
}

func TestSplitEmptyInput(t *testing.T) {
	if chunks := NewSplitter(5, 0, wordCounter{}).Split(nil); chunks != nil {
		t.Fatalf("expected nil for empty input, got %+v", chunks)
	}
	if chunks := NewSplitter(5, 0, wordCounter{}).Split([]domain.Page{{Text: "   ", Number: 1}}); chunks != nil {
		t.Fatalf("expected nil for whitespace-only input, got %+v", chunks)
	}
}
