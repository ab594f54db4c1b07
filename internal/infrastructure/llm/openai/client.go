package openai

import (
	"net/http"
	"strings"
	"time"

	"github.com/edulab-ai/virtual-student/internal/infrastructure/resilience"
)

// Config holds connection settings for an OpenAI-compatible provider.
type Config struct {
	BaseURL    string
	APIKey     string
	ChatModel  string
	EmbedModel string
	Timeout    time.Duration

	// Zero values defer to the provider's defaults.
	Temperature float64
	MaxTokens   int
}

// Client speaks the OpenAI-compatible chat-completions and embeddings
// surface. Provider calls run through the resilience executor.
type Client struct {
	cfg        Config
	httpClient *http.Client
	exec       *resilience.Executor
}

func New(cfg Config, exec *resilience.Executor) *Client {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 90 * time.Second
	}
	cfg.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		exec:       exec,
	}
}
