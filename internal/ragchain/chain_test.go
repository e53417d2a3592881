package ragchain

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragrouter/internal/config"
	"ragrouter/internal/domain"
	"ragrouter/internal/generation"
	"ragrouter/internal/index"
	"ragrouter/internal/retrieval"
	"ragrouter/internal/testutil"
)

func genConfig() config.GeneratorConfig {
	return config.GeneratorConfig{
		Temperature: 0.7,
		MaxTokens:   256,
		TimeoutSecs: 5,
		MaxAttempts: 2,
		RetryBaseMS: 1,
		RetryMaxMS:  2,
	}
}

func newChain(t *testing.T, chunks []domain.Chunk, gen domain.Generator) *Chain {
	t.Helper()
	logger := log.New(io.Discard)
	var handle *index.Handle
	if len(chunks) == 0 {
		// An empty corpus still produces a valid artifact the server can load.
		path := filepath.Join(t.TempDir(), "index.json")
		artifact := `{"model":"fake-embedder","dimension":256,"entries":[]}`
		require.NoError(t, os.WriteFile(path, []byte(artifact), 0o644))
		var err error
		handle, err = index.Open(path, "fake-embedder")
		require.NoError(t, err)
	} else {
		ix, err := index.Build(context.Background(), chunks, &testutil.BagOfWordsEmbedder{})
		require.NoError(t, err)
		handle = index.NewHandle(ix)
	}
	engine, err := retrieval.NewEngine(&testutil.BagOfWordsEmbedder{}, handle,
		config.RetrievalConfig{TopK: 3, SnippetMaxChars: 300}, logger)
	require.NoError(t, err)
	return NewChain(engine, generation.NewService(gen, genConfig(), logger), logger)
}

func policyChunks() []domain.Chunk {
	return []domain.Chunk{
		{Text: "Return policy: 30 days.", SourceID: "policies.pdf", PageNumber: 4, ChunkIndex: 0},
		{Text: "Exchanges allowed within 14 days.", SourceID: "policies.pdf", PageNumber: 5, ChunkIndex: 1},
	}
}

func TestAnswer(t *testing.T) {
	t.Run("Should answer a grounded question with attributions", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Text: "Our return policy lasts 30 days."}}}
		chain := newChain(t, policyChunks(), gen)
		answer := chain.Answer(context.Background(), "What is the return policy?")

		assert.True(t, answer.Found)
		assert.Empty(t, answer.Err)
		assert.Contains(t, answer.Text, "30 days")
		require.NotEmpty(t, answer.Sources)
		assert.Equal(t, "policies.pdf", answer.Sources[0].Source)
		assert.Equal(t, 4, answer.Sources[0].Page)
		assert.Equal(t, "Return policy: 30 days.", answer.Sources[0].Snippet)
	})

	t.Run("Should ground the prompt in the retrieved chunks", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Text: "ok"}}}
		chain := newChain(t, policyChunks(), gen)
		chain.Answer(context.Background(), "What is the return policy?")

		require.Len(t, gen.Prompts, 1)
		assert.Contains(t, gen.Prompts[0], "Return policy: 30 days.")
		assert.Contains(t, gen.Prompts[0], "What is the return policy?")
	})

	t.Run("Should report not found for an empty index", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{{Text: "never called"}}}
		chain := newChain(t, nil, gen)
		answer := chain.Answer(context.Background(), "Anything at all?")

		assert.False(t, answer.Found)
		assert.Empty(t, answer.Err)
		assert.Empty(t, answer.Text)
		assert.NotNil(t, answer.Sources)
		assert.Empty(t, answer.Sources)
		assert.Zero(t, gen.Calls)
	})

	t.Run("Should surface a generation error with the sources intact", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{
			{Err: fmt.Errorf("%w: bad gateway", domain.ErrAPI)},
		}}
		chain := newChain(t, policyChunks(), gen)
		answer := chain.Answer(context.Background(), "What is the return policy?")

		assert.False(t, answer.Found)
		assert.NotEmpty(t, answer.Err)
		assert.Empty(t, answer.Text)
		assert.NotEmpty(t, answer.Sources)
	})

	t.Run("Should keep the fallback path usable as an answer", func(t *testing.T) {
		gen := &testutil.ScriptedGenerator{Script: []testutil.GenStep{
			{Err: fmt.Errorf("%w: 429", domain.ErrRateLimited)},
		}}
		chain := newChain(t, policyChunks(), gen)
		answer := chain.Answer(context.Background(), "What is the return policy?")

		assert.True(t, answer.Found)
		assert.Empty(t, answer.Err)
		assert.NotEmpty(t, answer.Text)
	})
}
