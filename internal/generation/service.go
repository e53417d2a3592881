package generation

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/sethvargo/go-retry"

	"ragrouter/internal/config"
	"ragrouter/internal/domain"
)

// Service calls the text-generation capability with a bounded timeout and a
// retry-with-backoff loop that reacts to rate limiting only. Every call
// resolves to an Outcome; the service never fails its caller.
type Service struct {
	gen         domain.Generator
	temperature float64
	maxTokens   int
	timeout     time.Duration
	maxAttempts int
	baseDelay   time.Duration
	maxDelay    time.Duration
	log         *log.Logger
}

// NewService wires a generator capability with the configured retry policy.
func NewService(gen domain.Generator, cfg config.GeneratorConfig, logger *log.Logger) *Service {
	return &Service{
		gen:         gen,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		timeout:     time.Duration(cfg.TimeoutSecs) * time.Second,
		maxAttempts: cfg.MaxAttempts,
		baseDelay:   time.Duration(cfg.RetryBaseMS) * time.Millisecond,
		maxDelay:    time.Duration(cfg.RetryMaxMS) * time.Millisecond,
		log:         logger.With("component", "generation"),
	}
}

// Generate calls the capability with the configured temperature and token
// budget.
func (s *Service) Generate(ctx context.Context, prompt string) Outcome {
	return s.GenerateWith(ctx, prompt, s.temperature, s.maxTokens)
}

// GenerateWith runs one generation request. Rate-limit errors are retried
// with exponential backoff (doubling from the base delay, capped per wait)
// up to the configured attempt budget; exhaustion degrades to a fallback
// text embedding the prompt. Any other error resolves immediately to an
// error outcome.
func (s *Service) GenerateWith(ctx context.Context, prompt string, temperature float64, maxTokens int) Outcome {
	backoff := retry.WithCappedDuration(s.maxDelay, retry.NewExponential(s.baseDelay))
	attempts := s.maxAttempts
	if attempts < 1 {
		attempts = 1
	}
	backoff = retry.WithMaxRetries(uint64(attempts-1), backoff)

	attempt := 0
	var text string
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		callCtx, cancel := context.WithTimeout(ctx, s.timeout)
		defer cancel()
		out, callErr := s.gen.GenerateText(callCtx, prompt, temperature, maxTokens)
		if callErr != nil {
			if errors.Is(callErr, domain.ErrRateLimited) {
				s.log.Warn("generation rate limited", "attempt", attempt, "max_attempts", attempts)
				return retry.RetryableError(callErr)
			}
			return callErr
		}
		text = out
		return nil
	})
	switch {
	case err == nil:
		return Outcome{Kind: KindSuccess, Text: strings.TrimSpace(text)}
	case errors.Is(err, domain.ErrRateLimited):
		s.log.Warn("rate limit persisted after retries, degrading to fallback", "attempts", attempt)
		return Outcome{Kind: KindFallback, Text: fallbackText(prompt)}
	case errors.Is(err, domain.ErrAPI):
		s.log.Error("generation api error", "error", err)
		return Outcome{Kind: KindAPIError, Message: apiErrorMessage}
	default:
		s.log.Error("unexpected generation failure", "error", err)
		return Outcome{Kind: KindFatal, Message: fatalMessage}
	}
}
