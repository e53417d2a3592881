package domain

import (
	"context"
	"errors"
)

// ErrRateLimited marks a generation failure caused by provider rate limiting.
// The generation service retries these; everything else fails immediately.
var ErrRateLimited = errors.New("rate limited")

// ErrAPI marks an error reported by the generation provider itself, as
// opposed to an unexpected local failure.
var ErrAPI = errors.New("generation api error")

// Embedder converts text into fixed-dimension numeric vectors. The same
// model must be used at index build time and at query time; the index
// artifact records the model identifier so a mismatch fails fast on load.
type Embedder interface {
	EmbedDocuments(ctx context.Context, texts []string) ([][]float32, error)
	EmbedQuery(ctx context.Context, text string) ([]float32, error)
	Model() string
}

// Generator produces text from a prompt. Implementations wrap provider
// errors with ErrRateLimited or ErrAPI so callers can tell them apart.
type Generator interface {
	GenerateText(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error)
}

// Classifier assigns a routing intent to a query.
type Classifier interface {
	Classify(ctx context.Context, text string) (Intent, error)
}
