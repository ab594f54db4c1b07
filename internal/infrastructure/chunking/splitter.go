package chunking

import (
	"strings"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
	"github.com/edulab-ai/virtual-student/internal/core/ports"
)

const (
	defaultChunkSize = 200
	defaultOverlap   = 0
)

// Splitter greedily packs whitespace-delimited units into chunks bounded
// by a token budget. Page boundaries are not special: a chunk may span
// pages, and its Page/Source metadata comes from its first unit.
type Splitter struct {
	ChunkSize int
	Overlap   int

	counter ports.TokenCounter
}

func NewSplitter(chunkSize, overlap int, counter ports.TokenCounter) *Splitter {
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}
	if overlap < 0 {
		overlap = defaultOverlap
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Splitter{
		ChunkSize: chunkSize,
		Overlap:   overlap,
		counter:   counter,
	}
}

type unit struct {
	text   string
	page   int
	source string
}

func (s *Splitter) Split(pages []domain.Page) []domain.Chunk {
	units := s.collectUnits(pages)
	if len(units) == 0 {
		return nil
	}

	var (
		out     []domain.Chunk
		current []unit
	)
	for _, u := range units {
		if len(current) > 0 && s.counter.Count(joinWith(current, u)) > s.ChunkSize {
			out = append(out, s.buildChunk(len(out), current))
			current = s.carryOverlap(current)
			// drop the carry when it leaves no room for the next unit
			if len(current) > 0 && s.counter.Count(joinWith(current, u)) > s.ChunkSize {
				current = nil
			}
		}
		current = append(current, u)
	}
	if len(current) > 0 {
		out = append(out, s.buildChunk(len(out), current))
	}
	return out
}

func (s *Splitter) collectUnits(pages []domain.Page) []unit {
	var units []unit
	for _, page := range pages {
		for _, word := range strings.Fields(page.Text) {
			for _, piece := range s.boundUnit(word) {
				units = append(units, unit{text: piece, page: page.Number, source: page.Source})
			}
		}
	}
	return units
}

// boundUnit splits a single word whose token count exceeds the budget
// into rune halves until every piece fits. Keeps the chunk-size
// invariant even for pathological unbroken runs of text.
func (s *Splitter) boundUnit(word string) []string {
	if s.counter.Count(word) <= s.ChunkSize {
		return []string{word}
	}
	runes := []rune(word)
	if len(runes) <= 1 {
		return []string{word}
	}
	mid := len(runes) / 2
	return append(s.boundUnit(string(runes[:mid])), s.boundUnit(string(runes[mid:]))...)
}

func (s *Splitter) buildChunk(seq int, units []unit) domain.Chunk {
	text := joinUnits(units)
	return domain.Chunk{
		Seq:        seq,
		Text:       text,
		TokenCount: s.counter.Count(text),
		Page:       units[0].page,
		Source:     units[0].source,
	}
}

// carryOverlap returns the trailing units of an emitted chunk whose
// combined token count fits the configured overlap.
func (s *Splitter) carryOverlap(units []unit) []unit {
	if s.Overlap <= 0 {
		return nil
	}
	start := len(units)
	for start > 0 {
		candidate := joinUnits(units[start-1:])
		if s.counter.Count(candidate) > s.Overlap {
			break
		}
		start--
	}
	if start == len(units) {
		return nil
	}
	return append([]unit(nil), units[start:]...)
}

func joinUnits(units []unit) string {
	parts := make([]string, 0, len(units))
	for _, u := range units {
		parts = append(parts, u.text)
	}
	return strings.Join(parts, " ")
}

func joinWith(units []unit, next unit) string {
	return joinUnits(units) + " " + next.text
}
