package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("Should return defaults when the file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.Equal(t, 1000, cfg.Docs.ChunkSize)
		assert.Equal(t, 200, cfg.Docs.ChunkOverlap)
		assert.Equal(t, 3, cfg.Retrieval.TopK)
		assert.Equal(t, 5, cfg.Generator.MaxAttempts)
		assert.Equal(t, 1000, cfg.Generator.RetryBaseMS)
		assert.Equal(t, 10000, cfg.Generator.RetryMaxMS)
		assert.Equal(t, "text-embedding-3-small", cfg.Embedder.Model)
		assert.Equal(t, "llm", cfg.Classifier.Type)
		assert.Equal(t, ":8080", cfg.Server.Addr)
	})

	t.Run("Should fail on malformed yaml", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		require.NoError(t, os.WriteFile(path, []byte(":\n\t- not yaml"), 0o644))
		_, err := Load(path)
		assert.Error(t, err)
	})

	t.Run("Should fill defaults into a partial file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		partial := "server:\n  addr: \":9090\"\nretrieval:\n  top_k: 7\n"
		require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, ":9090", cfg.Server.Addr)
		assert.Equal(t, 7, cfg.Retrieval.TopK)
		assert.Equal(t, 1000, cfg.Docs.ChunkSize)
		assert.Equal(t, "gpt-4o-mini", cfg.Generator.Model)
		assert.Equal(t, 300, cfg.Retrieval.SnippetMaxChars)
	})

	t.Run("Should keep an explicit chunking override intact", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "config.yaml")
		partial := "docs:\n  chunk_size: 400\n  chunk_overlap: 50\n"
		require.NoError(t, os.WriteFile(path, []byte(partial), 0o644))

		cfg, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, 400, cfg.Docs.ChunkSize)
		assert.Equal(t, 50, cfg.Docs.ChunkOverlap)
	})
}

func TestSave(t *testing.T) {
	t.Run("Should round-trip a config through save and load", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "nested", "config.yaml")
		cfg := defaultConfig()
		cfg.Server.Addr = ":7070"
		cfg.Docs.Path = "corpus"
		cfg.Generator.Temperature = 0.2

		require.NoError(t, Save(path, cfg))
		loaded, err := Load(path)
		require.NoError(t, err)
		assert.Equal(t, cfg, loaded)
	})
}
