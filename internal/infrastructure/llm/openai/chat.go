package openai

import (
	"context"
	"errors"
	"strings"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

// Complete sends a composed message list to /chat/completions and returns
// the generated text. Failures carry domain.ErrGeneration; transient ones
// also carry domain.ErrTemporary after retries are exhausted.
func (c *Client) Complete(ctx context.Context, messages []domain.Message) (string, error) {
	payload := map[string]any{
		"model":    c.cfg.ChatModel,
		"messages": messages,
		"stream":   false,
	}
	if c.cfg.Temperature > 0 {
		payload["temperature"] = c.cfg.Temperature
	}
	if c.cfg.MaxTokens > 0 {
		payload["max_tokens"] = c.cfg.MaxTokens
	}

	var response struct {
		Choices []struct {
			Message struct {
				Content string `json:"content"`
			} `json:"message"`
		} `json:"choices"`
	}

	err := c.exec.Execute(ctx, "chat_completion", func(callCtx context.Context) error {
		return c.postJSON(callCtx, "/chat/completions", payload, &response, "chat completion")
	}, classifyProviderError)
	if err != nil {
		return "", domain.WrapError(domain.ErrGeneration, "chat completion", wrapTemporaryIfNeeded(err))
	}
	if len(response.Choices) == 0 {
		return "", domain.WrapError(domain.ErrGeneration, "chat completion", errors.New("empty choices"))
	}
	return strings.TrimSpace(response.Choices[0].Message.Content), nil
}
