package ports

import (
	"context"
	"io"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

// DocumentLoader reads a PDF and produces its pages in document order.
// Unreachable, unparseable, or empty sources fail with domain.ErrLoad.
type DocumentLoader interface {
	LoadSource(ctx context.Context, source string) ([]domain.Page, error)
	LoadReader(ctx context.Context, name string, r io.Reader) ([]domain.Page, error)
}

// TokenCounter maps text to its token count under the chat model's
// tokenizer. Pure; no per-call failure modes.
type TokenCounter interface {
	Count(text string) int
}

// Chunker splits pages into token-bounded chunks.
type Chunker interface {
	Split(pages []domain.Page) []domain.Chunk
}

// Embedder builds vectors for chunk texts and query text.
// Failures carry domain.ErrEmbedding.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
}

// Index is a built, read-only similarity index over one collection.
type Index interface {
	Search(ctx context.Context, queryVector []float32, k int) ([]domain.ScoredChunk, error)
	Len() int
	Collection() string
}

// IndexStore builds indexes from (chunk, vector) pairs. A build either
// yields a complete index or fails; there is no partial index.
type IndexStore interface {
	Build(ctx context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) (Index, error)
}

// Retriever returns the chunks most similar to a query from one index.
type Retriever interface {
	Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error)
}

// ChatModel produces a completion for a composed message list.
// Failures carry domain.ErrGeneration.
type ChatModel interface {
	Complete(ctx context.Context, messages []domain.Message) (string, error)
}
