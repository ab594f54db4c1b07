package openai

import (
	"context"
	"errors"
	"fmt"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

// Embed returns one vector per input text, in input order, via a single
// batched /embeddings call. Failures carry domain.ErrEmbedding.
func (c *Client) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, nil
	}

	payload := map[string]any{
		"model": c.cfg.EmbedModel,
		"input": texts,
	}

	var response struct {
		Data []struct {
			Index     int       `json:"index"`
			Embedding []float32 `json:"embedding"`
		} `json:"data"`
	}

	err := c.exec.Execute(ctx, "embed", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/embeddings", payload, &response, "embed")
	}, classifyProviderError)
	if err != nil {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed", wrapTemporaryIfNeeded(err))
	}
	if len(response.Data) != len(texts) {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed",
			fmt.Errorf("expected %d embeddings, got %d", len(texts), len(response.Data)))
	}

	// the provider may return entries out of order; the index field is
	// authoritative
	out := make([][]float32, len(texts))
	for _, entry := range response.Data {
		if entry.Index < 0 || entry.Index >= len(texts) {
			return nil, domain.WrapError(domain.ErrEmbedding, "embed",
				fmt.Errorf("embedding index %d out of range", entry.Index))
		}
		out[entry.Index] = entry.Embedding
	}
	for i, vector := range out {
		if len(vector) == 0 {
			return nil, domain.WrapError(domain.ErrEmbedding, "embed",
				fmt.Errorf("missing embedding for input %d", i))
		}
	}
	return out, nil
}

func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	vectors, err := c.Embed(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	if len(vectors) == 0 {
		return nil, domain.WrapError(domain.ErrEmbedding, "embed query", errors.New("empty embedding result"))
	}
	return vectors[0], nil
}
