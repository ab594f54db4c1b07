package bootstrap

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/edulab-ai/virtual-student/internal/config"
	"github.com/edulab-ai/virtual-student/internal/core/ports"
	"github.com/edulab-ai/virtual-student/internal/core/prompt"
	"github.com/edulab-ai/virtual-student/internal/core/usecase"
	"github.com/edulab-ai/virtual-student/internal/infrastructure/chunking"
	"github.com/edulab-ai/virtual-student/internal/infrastructure/llm/openai"
	"github.com/edulab-ai/virtual-student/internal/infrastructure/loader/pdfloader"
	"github.com/edulab-ai/virtual-student/internal/infrastructure/resilience"
	"github.com/edulab-ai/virtual-student/internal/infrastructure/tokenizer"
	"github.com/edulab-ai/virtual-student/internal/infrastructure/vector/memindex"
	"github.com/edulab-ai/virtual-student/internal/observability/metrics"
)

// App wires the full pipeline once at startup. All components are
// ready to serve when New returns; a failed default-corpus build is a
// startup failure, not a degraded mode.
type App struct {
	Config config.Config

	Conversations *usecase.Conversations
	Metrics       *metrics.ServerMetrics
}

func New(ctx context.Context, cfg config.Config, log *slog.Logger) (*App, error) {
	if log == nil {
		log = slog.Default()
	}

	counter, err := tokenizer.NewForModel(cfg.TokenizerModel)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	loader := pdfloader.New(time.Duration(cfg.DocumentFetchTimeoutS) * time.Second)
	splitter := chunking.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap, counter)
	store := memindex.NewStore()

	exec := resilience.NewExecutor(resilience.DefaultConfig())
	llmClient := openai.New(openai.Config{
		BaseURL:     cfg.LLMBaseURL,
		APIKey:      cfg.LLMAPIKey,
		ChatModel:   cfg.LLMChatModel,
		EmbedModel:  cfg.LLMEmbedModel,
		Timeout:     time.Duration(cfg.LLMTimeoutSeconds) * time.Second,
		Temperature: cfg.LLMTemperature,
		MaxTokens:   cfg.LLMMaxTokens,
	}, exec)

	personas, err := prompt.Load(cfg.PersonasPath)
	if err != nil {
		return nil, fmt.Errorf("load personas: %w", err)
	}
	if err := personas.Validate(); err != nil {
		return nil, fmt.Errorf("validate personas: %w", err)
	}

	indexer := usecase.NewIndexDocumentUseCase(loader, splitter, llmClient, store, log)

	var defaultIndex ports.Index
	if cfg.DefaultDocumentSource != "" {
		defaultIndex, err = indexer.BuildFromSource(ctx, cfg.DefaultDocumentSource)
		if err != nil {
			return nil, fmt.Errorf("build default corpus index: %w", err)
		}
	}

	conversations := usecase.NewConversations(
		prompt.NewComposer(personas),
		llmClient,
		llmClient,
		indexer,
		defaultIndex,
		cfg.RAGTopK,
		log,
	)

	serverMetrics := metrics.NewServerMetrics("virtual-student-api")
	conversations.OnRetrieval(func(hits int) {
		serverMetrics.RecordRetrievedChunks("virtual-student-api", hits)
	})

	return &App{
		Config:        cfg,
		Conversations: conversations,
		Metrics:       serverMetrics,
	}, nil
}
