package generation

import (
	"context"
	"errors"
	"fmt"
	"io"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragrouter/internal/config"
	"ragrouter/internal/domain"
	"ragrouter/internal/testutil"
)

func fastRetryConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		Temperature: 0.7,
		MaxTokens:   256,
		TimeoutSecs: 5,
		MaxAttempts: 5,
		RetryBaseMS: 1,
		RetryMaxMS:  2,
	}
}

func rateLimited() error {
	return fmt.Errorf("%w: too many requests", domain.ErrRateLimited)
}

func TestGenerate(t *testing.T) {
	logger := log.New(io.Discard)

	t.Run("Should return the text on first success", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Text: "  hello there  "}}}
		svc := NewService(gen, fastRetryConfig(), logger)
		out := svc.Generate(context.Background(), "hi")
		assert.Equal(t, KindSuccess, out.Kind)
		assert.True(t, out.OK())
		assert.Equal(t, "hello there", out.Text)
		assert.Equal(t, 1, gen.Calls)
	})

	t.Run("Should retry through transient rate limiting", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{
			{Err: rateLimited()},
			{Err: rateLimited()},
			{Text: "recovered"},
		}}
		svc := NewService(gen, fastRetryConfig(), logger)
		out := svc.Generate(context.Background(), "hi")
		assert.Equal(t, KindSuccess, out.Kind)
		assert.Equal(t, "recovered", out.Text)
		assert.Equal(t, 3, gen.Calls)
	})

	t.Run("Should degrade to fallback after exhausting the attempt budget", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Err: rateLimited()}}}
		svc := NewService(gen, fastRetryConfig(), logger)
		out := svc.Generate(context.Background(), "summarize the report")
		assert.Equal(t, KindFallback, out.Kind)
		assert.True(t, out.OK())
		assert.Contains(t, out.Text, "summarize the report")
		assert.Empty(t, out.Message)
		assert.Equal(t, 5, gen.Calls)
	})

	t.Run("Should fail fast on a provider error", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{
			{Err: fmt.Errorf("%w: bad gateway", domain.ErrAPI)},
		}}
		svc := NewService(gen, fastRetryConfig(), logger)
		out := svc.Generate(context.Background(), "hi")
		assert.Equal(t, KindAPIError, out.Kind)
		assert.False(t, out.OK())
		assert.Empty(t, out.Text)
		assert.NotEmpty(t, out.Message)
		assert.Equal(t, 1, gen.Calls)
	})

	t.Run("Should fail fast on an unclassified error", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{
			{Err: errors.New("something odd")},
		}}
		svc := NewService(gen, fastRetryConfig(), logger)
		out := svc.Generate(context.Background(), "hi")
		assert.Equal(t, KindFatal, out.Kind)
		assert.False(t, out.OK())
		assert.Empty(t, out.Text)
		assert.NotEmpty(t, out.Message)
		assert.Equal(t, 1, gen.Calls)
	})

	t.Run("Should treat a non-positive attempt budget as a single attempt", func(t *testing.T) {
		cfg := fastRetryConfig()
		cfg.MaxAttempts = 0
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Err: rateLimited()}}}
		svc := NewService(gen, cfg, logger)
		out := svc.Generate(context.Background(), "hi")
		assert.Equal(t, KindFallback, out.Kind)
		assert.Equal(t, 1, gen.Calls)
	})

	t.Run("Should pass overrides through GenerateWith", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Text: "ok"}}}
		svc := NewService(gen, fastRetryConfig(), logger)
		out := svc.GenerateWith(context.Background(), "classify this", 0, 8)
		require.Equal(t, KindSuccess, out.Kind)
		require.Len(t, gen.Prompts, 1)
		assert.Equal(t, "classify this", gen.Prompts[0])
	})
}
