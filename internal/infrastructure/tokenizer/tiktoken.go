package tokenizer

import (
	"github.com/pkoukk/tiktoken-go"

	"github.com/edulab-ai/virtual-student/internal/core/domain"
)

// Counter measures text with the tiktoken encoding of the target chat
// model, so chunk budgets line up with what the model actually sees.
type Counter struct {
	encoding *tiktoken.Tiktoken
}

// NewForModel loads the encoding once at startup. A model without a known
// encoding is a deployment mistake, fatal before any conversation starts.
func NewForModel(model string) (*Counter, error) {
	encoding, err := tiktoken.EncodingForModel(model)
	if err != nil {
		return nil, domain.WrapError(domain.ErrConfig, "load tokenizer", err)
	}
	return &Counter{encoding: encoding}, nil
}

func (c *Counter) Count(text string) int {
	return len(c.encoding.Encode(text, nil, nil))
}
