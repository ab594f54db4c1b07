package config

import (
	"testing"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

func TestLoadIncludesPipelineDefaults(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "")
	t.Setenv("CHUNK_OVERLAP", "")
	t.Setenv("RAG_TOP_K", "")
	t.Setenv("TOKENIZER_MODEL", "")

	cfg := Load()
	if cfg.ChunkSize != 200 {
		t.Fatalf("expected default chunk size 200, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 0 {
		t.Fatalf("expected default chunk overlap 0, got %d", cfg.ChunkOverlap)
	}
	if cfg.RAGTopK != 4 {
		t.Fatalf("expected default top k 4, got %d", cfg.RAGTopK)
	}
	if cfg.TokenizerModel != "gpt-3.5-turbo" {
		t.Fatalf("expected default tokenizer model, got %q", cfg.TokenizerModel)
	}
}

func TestLoadParsesOverrides(t *testing.T) {
	t.Setenv("CHUNK_SIZE", "300")
	t.Setenv("CHUNK_OVERLAP", "50")
	t.Setenv("RAG_TOP_K", "6")
	t.Setenv("API_RATE_LIMIT_RPS", "2.5")

	cfg := Load()
	if cfg.ChunkSize != 300 {
		t.Fatalf("expected chunk size 300, got %d", cfg.ChunkSize)
	}
	if cfg.ChunkOverlap != 50 {
		t.Fatalf("expected chunk overlap 50, got %d", cfg.ChunkOverlap)
	}
	if cfg.RAGTopK != 6 {
		t.Fatalf("expected top k 6, got %d", cfg.RAGTopK)
	}
	if cfg.APIRateLimitRPS != 2.5 {
		t.Fatalf("expected rate limit rps 2.5, got %v", cfg.APIRateLimitRPS)
	}
}

func TestValidateRejectsBadChunking(t *testing.T) {
	cfg := Load()

	cfg.ChunkSize = 0
	if err := cfg.Validate(); !domain.IsKind(err, domain.ErrConfig) {
		t.Fatalf("expected config error for zero chunk size, got %v", err)
	}

	cfg = Load()
	cfg.ChunkSize = 10
	cfg.ChunkOverlap = 10
	if err := cfg.Validate(); !domain.IsKind(err, domain.ErrConfig) {
		t.Fatalf("expected config error for overlap >= size, got %v", err)
	}
}

func TestValidateAcceptsDefaults(t *testing.T) {
	if err := Load().Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
}
