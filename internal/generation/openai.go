package generation

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"

	"ragrouter/internal/config"
	"ragrouter/internal/domain"
)

// OpenAIGenerator implements domain.Generator on an OpenAI-compatible
// completions API.
type OpenAIGenerator struct {
	llm *openai.LLM
}

// NewOpenAIGenerator constructs the generation capability from configuration.
func NewOpenAIGenerator(cfg config.GeneratorConfig) (*OpenAIGenerator, error) {
	opts := []openai.Option{openai.WithModel(cfg.Model)}
	if key := os.Getenv(cfg.APIKeyEnv); key != "" {
		opts = append(opts, openai.WithToken(key))
	}
	if cfg.BaseURL != "" {
		opts = append(opts, openai.WithBaseURL(cfg.BaseURL))
	}
	llm, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("generation: init provider: %w", err)
	}
	return &OpenAIGenerator{llm: llm}, nil
}

// GenerateText runs one completion round-trip. Provider errors are wrapped
// with the sentinel the retry loop keys on.
func (g *OpenAIGenerator) GenerateText(ctx context.Context, prompt string, temperature float64, maxTokens int) (string, error) {
	out, err := llms.GenerateFromSinglePrompt(ctx, g.llm, prompt,
		llms.WithTemperature(temperature),
		llms.WithMaxTokens(maxTokens),
	)
	if err != nil {
		return "", classifyProviderError(err)
	}
	return out, nil
}

// classifyProviderError buckets a provider failure by inspecting the error
// text. Rate limits become ErrRateLimited, everything the provider reported
// becomes ErrAPI, and context errors pass through untouched.
func classifyProviderError(err error) error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return err
	}
	lower := strings.ToLower(err.Error())
	if strings.Contains(lower, "rate limit") || strings.Contains(lower, "429") {
		return fmt.Errorf("%w: %v", domain.ErrRateLimited, err)
	}
	return fmt.Errorf("%w: %v", domain.ErrAPI, err)
}
