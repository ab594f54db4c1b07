package memindex

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
	"github.com/edulab-ai/virtual-student/internal/core/ports"
)

const defaultTopK = 4

// Store builds process-local similarity indexes. Nothing is persisted:
// an index lives exactly as long as the references to it.
type Store struct{}

func NewStore() *Store { return &Store{} }

// Build normalizes the vectors and returns a complete, read-only index.
// Chunk/vector count or dimension mismatches abort the build.
func (s *Store) Build(_ context.Context, collection string, chunks []domain.Chunk, vectors [][]float32) (ports.Index, error) {
	if len(chunks) != len(vectors) {
		return nil, domain.WrapError(domain.ErrEmbedding, "build index",
			fmt.Errorf("chunks/vectors mismatch: %d/%d", len(chunks), len(vectors)))
	}
	if len(chunks) == 0 {
		return nil, domain.WrapError(domain.ErrLoad, "build index", errors.New("no chunks to index"))
	}

	dim := len(vectors[0])
	if dim == 0 {
		return nil, domain.WrapError(domain.ErrEmbedding, "build index", errors.New("zero-dimension vector"))
	}

	normalized := make([][]float32, len(vectors))
	for i, vector := range vectors {
		if len(vector) != dim {
			return nil, domain.WrapError(domain.ErrEmbedding, "build index",
				fmt.Errorf("vector %d has dimension %d, want %d", i, len(vector), dim))
		}
		normalized[i] = normalize(vector)
	}

	return &Index{
		collection: collection,
		dim:        dim,
		chunks:     append([]domain.Chunk(nil), chunks...),
		vectors:    normalized,
	}, nil
}

// Index is a brute-force cosine index over one collection. Immutable
// after Build, so concurrent searches need no locking.
type Index struct {
	collection string
	dim        int
	chunks     []domain.Chunk
	vectors    [][]float32
}

func (ix *Index) Collection() string { return ix.collection }

func (ix *Index) Len() int { return len(ix.chunks) }

// Search returns the top-k chunks by cosine similarity, fewer only when
// the index holds fewer. Equal scores keep ascending chunk order.
func (ix *Index) Search(_ context.Context, queryVector []float32, k int) ([]domain.ScoredChunk, error) {
	if len(queryVector) != ix.dim {
		return nil, domain.WrapError(domain.ErrEmbedding, "search index",
			fmt.Errorf("query dimension %d, want %d", len(queryVector), ix.dim))
	}
	if k <= 0 {
		k = defaultTopK
	}
	if k > len(ix.chunks) {
		k = len(ix.chunks)
	}

	query := normalize(queryVector)
	hits := make([]domain.ScoredChunk, len(ix.chunks))
	for i, vector := range ix.vectors {
		hits[i] = domain.ScoredChunk{Chunk: ix.chunks[i], Score: dot(vector, query)}
	}
	sort.SliceStable(hits, func(i, j int) bool { return hits[i].Score > hits[j].Score })
	return hits[:k], nil
}

func normalize(vector []float32) []float32 {
	var sum float64
	for _, v := range vector {
		sum += float64(v) * float64(v)
	}
	norm := math.Sqrt(sum)
	out := make([]float32, len(vector))
	if norm == 0 {
		copy(out, vector)
		return out
	}
	for i, v := range vector {
		out[i] = float32(float64(v) / norm)
	}
	return out
}

func dot(a, b []float32) float64 {
	var sum float64
	for i := range a {
		sum += float64(a[i]) * float64(b[i])
	}
	return sum
}
