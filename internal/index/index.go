package index

import (
	"context"
	"errors"
	"fmt"
	"math"
	"sort"

	"ragrouter/internal/domain"
)

// Entry pairs a chunk with its embedding vector.
type Entry struct {
	Chunk  domain.Chunk `json:"chunk"`
	Vector []float32    `json:"vector"`
}

// Index holds chunk embeddings in ingestion order and answers k-nearest
// cosine-similarity queries. An index is immutable after construction;
// rebuilding produces a new Index swapped in via Handle.
type Index struct {
	model     string
	dimension int
	entries   []Entry
}

// Build embeds every chunk and assembles an index. Embedding failure aborts
// the whole build; there is no partial index.
func Build(ctx context.Context, chunks []domain.Chunk, embedder domain.Embedder) (*Index, error) {
	if len(chunks) == 0 {
		return nil, errors.New("index: no chunks to build from")
	}
	texts := make([]string, len(chunks))
	for i := range chunks {
		texts[i] = chunks[i].Text
	}
	vectors, err := embedder.EmbedDocuments(ctx, texts)
	if err != nil {
		return nil, fmt.Errorf("index: build: %w", err)
	}
	if len(vectors) != len(chunks) {
		return nil, fmt.Errorf("index: build: got %d vectors for %d chunks", len(vectors), len(chunks))
	}
	dimension := len(vectors[0])
	if dimension == 0 {
		return nil, errors.New("index: build: embedding dimension is zero")
	}
	entries := make([]Entry, len(chunks))
	for i := range chunks {
		if len(vectors[i]) != dimension {
			return nil, fmt.Errorf("index: build: vector %d has dimension %d, want %d", i, len(vectors[i]), dimension)
		}
		entries[i] = Entry{Chunk: chunks[i], Vector: vectors[i]}
	}
	return &Index{model: embedder.Model(), dimension: dimension, entries: entries}, nil
}

// Model returns the embedding model identifier the index was built with.
func (ix *Index) Model() string { return ix.model }

// Dimension returns the embedding vector dimension.
func (ix *Index) Dimension() int { return ix.dimension }

// Len returns the number of indexed chunks.
func (ix *Index) Len() int { return len(ix.entries) }

// Query returns the k entries most similar to vector by cosine similarity,
// ordered by descending score. Ties keep ingestion order, so results are
// deterministic. Fewer than k entries returns all of them.
func (ix *Index) Query(vector []float32, k int) []domain.ScoredChunk {
	if k <= 0 || len(ix.entries) == 0 {
		return nil
	}
	scored := make([]domain.ScoredChunk, len(ix.entries))
	for i := range ix.entries {
		scored[i] = domain.ScoredChunk{
			Chunk: ix.entries[i].Chunk,
			Score: cosineSimilarity(ix.entries[i].Vector, vector),
		}
	}
	sort.SliceStable(scored, func(i, j int) bool { return scored[i].Score > scored[j].Score })
	if k > len(scored) {
		k = len(scored)
	}
	return scored[:k]
}

func cosineSimilarity(a, b []float32) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	var dot, na, nb float64
	for i := 0; i < n; i++ {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
