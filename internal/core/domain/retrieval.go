package domain

// ScoredChunk is a retrieval hit: a chunk plus its cosine similarity to
// the query vector. Results are ranked by non-increasing score; equal
// scores keep the original chunk order.
type ScoredChunk struct {
	Chunk Chunk   `json:"chunk"`
	Score float64 `json:"score"`
}
