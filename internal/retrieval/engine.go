package retrieval

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/charmbracelet/log"

	"ragrouter/internal/config"
	"ragrouter/internal/domain"
	"ragrouter/internal/index"
)

var whitespaceRe = regexp.MustCompile(`\s+`)

// Engine retrieves the top-k chunks for a query against the served index.
// It is read-only and safe for concurrent use across requests.
type Engine struct {
	embedder   domain.Embedder
	handle     *index.Handle
	topK       int
	snippetMax int
	log        *log.Logger
}

// NewEngine wires the query-time embedder to the index handle. The embedder
// must be the same model the index was built with; Load already rejects
// mismatched artifacts.
func NewEngine(embedder domain.Embedder, handle *index.Handle, cfg config.RetrievalConfig, logger *log.Logger) (*Engine, error) {
	if embedder == nil {
		return nil, errors.New("retrieval: embedder is required")
	}
	if handle == nil {
		return nil, errors.New("retrieval: index handle is required")
	}
	if cfg.TopK <= 0 {
		return nil, errors.New("retrieval: top_k must be greater than zero")
	}
	return &Engine{
		embedder:   embedder,
		handle:     handle,
		topK:       cfg.TopK,
		snippetMax: cfg.SnippetMaxChars,
		log:        logger.With("component", "retrieval"),
	}, nil
}

// Retrieve embeds the query, runs the similarity search, and post-processes
// the results: whitespace is collapsed and exact duplicate texts dropped.
// Scores come back non-increasing; length never exceeds the configured top-k.
func (e *Engine) Retrieve(ctx context.Context, query string) ([]domain.ScoredChunk, error) {
	vector, err := e.embedder.EmbedQuery(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("retrieval: %w", err)
	}
	results := e.handle.Current().Query(vector, e.topK)
	seen := make(map[string]struct{}, len(results))
	out := make([]domain.ScoredChunk, 0, len(results))
	for _, r := range results {
		r.Chunk.Text = normalizeWhitespace(r.Chunk.Text)
		if _, dup := seen[r.Chunk.Text]; dup {
			continue
		}
		seen[r.Chunk.Text] = struct{}{}
		out = append(out, r)
	}
	e.log.Debug("retrieved chunks", "query_length", len(query), "results", len(out))
	return out, nil
}

// Snippet trims text to the bounded preview length used in attributions.
func (e *Engine) Snippet(text string) string {
	text = normalizeWhitespace(text)
	runes := []rune(text)
	if e.snippetMax > 0 && len(runes) > e.snippetMax {
		return string(runes[:e.snippetMax])
	}
	return text
}

func normalizeWhitespace(text string) string {
	return whitespaceRe.ReplaceAllString(strings.TrimSpace(text), " ")
}
