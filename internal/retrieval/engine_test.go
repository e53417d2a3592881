package retrieval

import (
	"context"
	"errors"
	"io"
	"strings"
	"testing"

	"github.com/charmbracelet/log"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ragrouter/internal/config"
	"ragrouter/internal/domain"
	"ragrouter/internal/index"
	"ragrouter/internal/testutil"
)

func newEngine(t *testing.T, chunks []domain.Chunk, cfg config.RetrievalConfig, emb domain.Embedder) *Engine {
	t.Helper()
	ix, err := index.Build(context.Background(), chunks, &testutil.BagOfWordsEmbedder{})
	require.NoError(t, err)
	e, err := NewEngine(emb, index.NewHandle(ix), cfg, log.New(io.Discard))
	require.NoError(t, err)
	return e
}

func TestNewEngine(t *testing.T) {
	handle := index.NewHandle(nil)
	logger := log.New(io.Discard)
	t.Run("Should require an embedder", func(t *testing.T) {
		_, err := NewEngine(nil, handle, config.RetrievalConfig{TopK: 3}, logger)
		assert.Error(t, err)
	})
	t.Run("Should require an index handle", func(t *testing.T) {
		_, err := NewEngine(&testutil.BagOfWordsEmbedder{}, nil, config.RetrievalConfig{TopK: 3}, logger)
		assert.Error(t, err)
	})
	t.Run("Should require positive top-k", func(t *testing.T) {
		_, err := NewEngine(&testutil.BagOfWordsEmbedder{}, handle, config.RetrievalConfig{TopK: 0}, logger)
		assert.Error(t, err)
	})
}

func TestRetrieve(t *testing.T) {
	chunks := []domain.Chunk{
		{Text: "Return policy:   30 days.\n\nNo receipt needed.", SourceID: "policies.pdf", PageNumber: 1, ChunkIndex: 0},
		{Text: "Exchanges allowed within 14 days.", SourceID: "policies.pdf", PageNumber: 1, ChunkIndex: 1},
		{Text: "Shipping takes five business days.", SourceID: "shipping.pdf", PageNumber: 2, ChunkIndex: 0},
	}
	t.Run("Should bound results by top-k", func(t *testing.T) {
		e := newEngine(t, chunks, config.RetrievalConfig{TopK: 2, SnippetMaxChars: 300}, &testutil.BagOfWordsEmbedder{})
		got, err := e.Retrieve(context.Background(), "What is the return policy?")
		require.NoError(t, err)
		assert.LessOrEqual(t, len(got), 2)
	})
	t.Run("Should collapse whitespace in returned chunk text", func(t *testing.T) {
		e := newEngine(t, chunks, config.RetrievalConfig{TopK: 3, SnippetMaxChars: 300}, &testutil.BagOfWordsEmbedder{})
		got, err := e.Retrieve(context.Background(), "What is the return policy?")
		require.NoError(t, err)
		require.NotEmpty(t, got)
		assert.Equal(t, "Return policy: 30 days. No receipt needed.", got[0].Chunk.Text)
	})
	t.Run("Should drop duplicate texts after normalization", func(t *testing.T) {
		dupes := []domain.Chunk{
			{Text: "alpha   beta", SourceID: "a.txt", ChunkIndex: 0},
			{Text: "alpha beta", SourceID: "a.txt", ChunkIndex: 1},
			{Text: "something else here", SourceID: "a.txt", ChunkIndex: 2},
		}
		e := newEngine(t, dupes, config.RetrievalConfig{TopK: 3, SnippetMaxChars: 300}, &testutil.BagOfWordsEmbedder{})
		got, err := e.Retrieve(context.Background(), "alpha beta")
		require.NoError(t, err)
		require.Len(t, got, 2)
		assert.Equal(t, "alpha beta", got[0].Chunk.Text)
	})
	t.Run("Should propagate embedding failures", func(t *testing.T) {
		boom := errors.New("embedding backend down")
		e := newEngine(t, chunks, config.RetrievalConfig{TopK: 3, SnippetMaxChars: 300},
			&testutil.BagOfWordsEmbedder{FailWith: boom})
		_, err := e.Retrieve(context.Background(), "anything")
		require.Error(t, err)
		assert.ErrorIs(t, err, boom)
	})
}

func TestSnippet(t *testing.T) {
	e := newEngine(t, []domain.Chunk{{Text: "x", SourceID: "a", ChunkIndex: 0}},
		config.RetrievalConfig{TopK: 1, SnippetMaxChars: 10}, &testutil.BagOfWordsEmbedder{})
	t.Run("Should leave short text alone", func(t *testing.T) {
		assert.Equal(t, "short", e.Snippet("short"))
	})
	t.Run("Should bound long text to the configured length", func(t *testing.T) {
		got := e.Snippet(strings.Repeat("ab", 50))
		assert.Equal(t, 10, len([]rune(got)))
	})
	t.Run("Should count runes, not bytes", func(t *testing.T) {
		got := e.Snippet(strings.Repeat("é", 50))
		assert.Equal(t, "éééééééééé", got)
	})
	t.Run("Should normalize whitespace before trimming", func(t *testing.T) {
		assert.Equal(t, "a b c", e.Snippet("  a\n\tb   c  "))
	})
}
