package usecase

import (
	"context"
	"fmt"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
	"github.com/edulab-ai/virtual-student/internal/core/ports"
)

const defaultTopK = 4

// Retriever binds an embedder to one built index with a fixed result
// count. It is the only read path into an index.
type Retriever struct {
	embedder ports.Embedder
	index    ports.Index
	topK     int
}

func NewRetriever(embedder ports.Embedder, index ports.Index, topK int) *Retriever {
	if topK <= 0 {
		topK = defaultTopK
	}
	return &Retriever{
		embedder: embedder,
		index:    index,
		topK:     topK,
	}
}

func (r *Retriever) Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
	queryVector, err := r.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w", err)
	}
	hits, err := r.index.Search(ctx, queryVector, r.topK)
	if err != nil {
		return nil, fmt.Errorf("search index: %w", err)
	}
	return hits, nil
}

// Collection names the index this retriever reads.
func (r *Retriever) Collection() string { return r.index.Collection() }
