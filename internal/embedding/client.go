package embedding

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/tmc/langchaingo/embeddings"
	"github.com/tmc/langchaingo/llms/openai"

	"ragrouter/internal/config"
)

// Client implements domain.Embedder on an OpenAI-compatible embeddings API.
type Client struct {
	impl    embeddings.Embedder
	model   string
	timeout time.Duration
}

// NewClient constructs the embedding capability from configuration.
func NewClient(cfg config.EmbedderConfig) (*Client, error) {
	opts := []openai.Option{openai.WithEmbeddingModel(cfg.Model)}
	if key := os.Getenv(cfg.APIKeyEnv); key != "" {
		opts = append(opts, openai.WithToken(key))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("embedding: init provider: %w", err)
	}
	impl, err := embeddings.NewEmbedder(llm,
		embeddings.WithBatchSize(cfg.BatchSize),
		embeddings.WithStripNewLines(true),
	)
	if err != nil {
		return nil, fmt.Errorf("embedding: init embedder: %w", err)
	}
	return &Client{
		impl:    impl,
		model:   cfg.Model,
		timeout: time.Duration(cfg.TimeoutSecs) * time.Second,
	}, nil
}

// EmbedDocuments embeds a batch of texts. Batching within the batch size is
// handled by the underlying implementation.
func (c *Client) EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	vectors, err := c.impl.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("embedding: embed %d documents: %w", len(texts), err)
	}
	return vectors, nil
}

// EmbedQuery embeds a single query string.
func (c *Client) EmbedQuery(ctx context.Context, text string) ([]float32, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	vector, err := c.impl.EmbedQuery(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("embedding: embed query: %w", err)
	}
	return vector, nil
}

// Model returns the embedding model identifier recorded in index artifacts.
func (c *Client) Model() string { return c.model }
