package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

type Config struct {
	APIPort  string
	LogLevel string

	LLMBaseURL            string
	LLMAPIKey             string
	LLMChatModel          string
	LLMEmbedModel         string
	LLMTimeoutSeconds     int
	LLMTemperature        float64
	LLMMaxTokens          int
	TokenizerModel        string
	DocumentFetchTimeoutS int

	ChunkSize    int
	ChunkOverlap int
	RAGTopK      int

	DefaultDocumentSource string
	PersonasPath          string

	APIRateLimitRPS   float64
	APIRateLimitBurst int
}

func Load() Config {
	return Config{
		APIPort:  mustEnv("API_PORT", "8080"),
		LogLevel: mustEnv("LOG_LEVEL", "info"),

		LLMBaseURL:            mustEnv("LLM_BASE_URL", "https://api.openai.com/v1"),
		LLMAPIKey:             mustEnv("LLM_API_KEY", ""),
		LLMChatModel:          mustEnv("LLM_CHAT_MODEL", "gpt-4o-mini"),
		LLMEmbedModel:         mustEnv("LLM_EMBED_MODEL", "text-embedding-3-small"),
		LLMTimeoutSeconds:     mustEnvInt("LLM_TIMEOUT_SECONDS", 90),
		LLMTemperature:        mustEnvFloat("LLM_TEMPERATURE", 0.7),
		LLMMaxTokens:          mustEnvInt("LLM_MAX_TOKENS", 0),
		TokenizerModel:        mustEnv("TOKENIZER_MODEL", "gpt-3.5-turbo"),
		DocumentFetchTimeoutS: mustEnvInt("DOCUMENT_FETCH_TIMEOUT_SECONDS", 30),

		ChunkSize:    mustEnvInt("CHUNK_SIZE", 200),
		ChunkOverlap: mustEnvInt("CHUNK_OVERLAP", 0),
		RAGTopK:      mustEnvInt("RAG_TOP_K", 4),

		DefaultDocumentSource: mustEnv("DEFAULT_DOCUMENT_SOURCE", ""),
		PersonasPath:          mustEnv("PERSONAS_PATH", ""),

		APIRateLimitRPS:   mustEnvFloat("API_RATE_LIMIT_RPS", 0),
		APIRateLimitBurst: mustEnvInt("API_RATE_LIMIT_BURST", 0),
	}
}

// Validate rejects configurations that cannot produce a working
// pipeline. Called once at startup, before any component is built.
func (c Config) Validate() error {
	if c.ChunkSize <= 0 {
		return domain.WrapError(domain.ErrConfig, "validate config",
			fmt.Errorf("CHUNK_SIZE must be positive, got %d", c.ChunkSize))
	}
	if c.ChunkOverlap < 0 {
		return domain.WrapError(domain.ErrConfig, "validate config",
			fmt.Errorf("CHUNK_OVERLAP must not be negative, got %d", c.ChunkOverlap))
	}
	if c.ChunkOverlap >= c.ChunkSize {
		return domain.WrapError(domain.ErrConfig, "validate config",
			fmt.Errorf("CHUNK_OVERLAP %d must be smaller than CHUNK_SIZE %d", c.ChunkOverlap, c.ChunkSize))
	}
	if c.RAGTopK <= 0 {
		return domain.WrapError(domain.ErrConfig, "validate config",
			fmt.Errorf("RAG_TOP_K must be positive, got %d", c.RAGTopK))
	}
	if c.LLMBaseURL == "" {
		return domain.WrapError(domain.ErrConfig, "validate config",
			fmt.Errorf("LLM_BASE_URL is required"))
	}
	if c.LLMChatModel == "" || c.LLMEmbedModel == "" {
		return domain.WrapError(domain.ErrConfig, "validate config",
			fmt.Errorf("LLM_CHAT_MODEL and LLM_EMBED_MODEL are required"))
	}
	return nil
}

func mustEnv(key, fallback string) string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	return v
}

func mustEnvInt(key string, fallback int) int {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return fallback
	}
	return n
}

func mustEnvFloat(key string, fallback float64) float64 {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return fallback
	}
	return f
}
