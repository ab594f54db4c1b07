package prompt

import (
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

func TestPersonaComposesSystemThenUser(t *testing.T) {
	composer := NewComposer(DefaultSet())

	messages := composer.Persona(domain.ModeDefaultPersona, "Hello")
	if len(messages) != 2 {
		t.Fatalf("expected 2 messages, got %d", len(messages))
	}
	if messages[0].Role != domain.RoleSystem || messages[0].Content != DefaultSet().Default.Instructions {
		t.Fatalf("unexpected system message: %+v", messages[0])
	}
	if messages[1].Role != domain.RoleUser || messages[1].Content != "Hello" {
		t.Fatalf("unexpected user message: %+v", messages[1])
	}
}

func TestPersonaUsesAlternateInstructions(t *testing.T) {
	composer := NewComposer(DefaultSet())

	messages := composer.Persona(domain.ModeAlternatePersona, "Explain recursion")
	if messages[0].Content != DefaultSet().Alternate.Instructions {
		t.Fatalf("expected alternate persona instructions, got %q", messages[0].Content)
	}
}

func TestGroundedIncludesChunksInRankOrder(t *testing.T) {
	composer := NewComposer(DefaultSet())
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Seq: 0, Text: "first excerpt"}, Score: 0.9},
		{Chunk: domain.Chunk{Seq: 1, Text: "second excerpt"}, Score: 0.7},
	}

	messages := composer.Grounded(chunks, "what is this about?")
	body := messages[1].Content
	first := strings.Index(body, "first excerpt")
	second := strings.Index(body, "second excerpt")
	if first < 0 || second < 0 || second < first {
		t.Fatalf("expected chunks verbatim in rank order, got %q", body)
	}
	if !strings.Contains(body, "what is this about?") {
		t.Fatalf("expected question in prompt, got %q", body)
	}
	if strings.Contains(body, placeholderContext) || strings.Contains(body, placeholderQuestion) {
		t.Fatalf("expected all placeholders filled, got %q", body)
	}
}

func TestGroundedMarksEmptyContext(t *testing.T) {
	composer := NewComposer(DefaultSet())

	messages := composer.Grounded(nil, "anything?")
	if !strings.Contains(messages[1].Content, noContextMarker) {
		t.Fatalf("expected empty-context marker, got %q", messages[1].Content)
	}
}

func TestGroundedKeepsPlaceholderLiteralsInChunkText(t *testing.T) {
	composer := NewComposer(DefaultSet())
	chunks := []domain.ScoredChunk{
		{Chunk: domain.Chunk{Seq: 0, Text: "the template ends with {question} on its own line"}, Score: 0.9},
	}

	messages := composer.Grounded(chunks, "secret user message")
	body := messages[1].Content
	if !strings.Contains(body, "the template ends with {question} on its own line") {
		t.Fatalf("expected chunk text verbatim, got %q", body)
	}
	if strings.Count(body, "secret user message") != 1 {
		t.Fatalf("expected question substituted exactly once, got %q", body)
	}
}

func TestComposeIsIdempotent(t *testing.T) {
	composer := NewComposer(DefaultSet())
	chunks := []domain.ScoredChunk{{Chunk: domain.Chunk{Text: "excerpt"}, Score: 0.5}}

	a := composer.Grounded(chunks, "q")
	b := composer.Grounded(chunks, "q")
	if !reflect.DeepEqual(a, b) {
		t.Fatalf("expected identical message lists, got %+v vs %+v", a, b)
	}
}

func TestValidateRejectsBlankInstructions(t *testing.T) {
	set := DefaultSet()
	set.Default.Instructions = "   "
	err := set.Validate()
	if !domain.IsKind(err, domain.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestValidateRejectsMissingPlaceholder(t *testing.T) {
	set := DefaultSet()
	set.GroundedTemplate = "QUERY: {question}"
	err := set.Validate()
	if !domain.IsKind(err, domain.ErrConfig) {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestLoadOverridesFromYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "personas.yaml")
	contents := "default:\n  name: tutor-bait\n  instructions: pretend to be confused\ngreeting: hey\n"
	if err := os.WriteFile(path, []byte(contents), 0o600); err != nil {
		t.Fatalf("write personas file: %v", err)
	}

	set, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if set.Default.Instructions != "pretend to be confused" {
		t.Fatalf("expected override, got %q", set.Default.Instructions)
	}
	if set.Greeting != "hey" {
		t.Fatalf("expected greeting override, got %q", set.Greeting)
	}
	if set.Alternate.Instructions != DefaultSet().Alternate.Instructions {
		t.Fatalf("expected alternate persona to keep defaults")
	}
	if err := set.Validate(); err != nil {
		t.Fatalf("merged set should validate, got %v", err)
	}
}
