package prompt

import (
	"strings"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

const noContextMarker = "(no relevant excerpts were retrieved)"

// Composer assembles the final message list for generation. Pure string
// assembly: the same inputs always produce the same messages.
type Composer struct {
	set Set
}

func NewComposer(set Set) *Composer {
	return &Composer{set: set}
}

func (c *Composer) Greeting() string {
	return c.set.Greeting
}

// Persona composes a persona-only prompt: the mode's instructions plus
// the user's message, no retrieval step.
func (c *Composer) Persona(mode domain.Mode, question string) []domain.Message {
	persona := c.set.ForMode(mode)
	return []domain.Message{
		{Role: domain.RoleSystem, Content: persona.Instructions},
		{Role: domain.RoleUser, Content: question},
	}
}

// Grounded composes a document-grounded prompt. Retrieved chunk texts are
// joined in rank order; the template text itself instructs the model to
// admit when the context is insufficient. Both placeholders are filled in
// a single pass so substituted text is never itself expanded.
func (c *Composer) Grounded(chunks []domain.ScoredChunk, question string) []domain.Message {
	filled := strings.NewReplacer(
		placeholderContext, joinContext(chunks),
		placeholderQuestion, question,
	).Replace(c.set.GroundedTemplate)

	return []domain.Message{
		{Role: domain.RoleSystem, Content: c.set.Default.Instructions},
		{Role: domain.RoleUser, Content: filled},
	}
}

func joinContext(chunks []domain.ScoredChunk) string {
	if len(chunks) == 0 {
		return noContextMarker
	}
	texts := make([]string, 0, len(chunks))
	for _, hit := range chunks {
		texts = append(texts, hit.Chunk.Text)
	}
	return strings.Join(texts, "\n\n")
}
