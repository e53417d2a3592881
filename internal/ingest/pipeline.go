package ingest

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"ragrouter/internal/chunker"
	"ragrouter/internal/config"
	"ragrouter/internal/domain"
)

// Pipeline loads raw documents from a folder and splits them into
// overlapping chunks with provenance metadata attached.
type Pipeline struct {
	splitter chunker.Splitter
	log      *log.Logger
}

// NewPipeline builds a pipeline from the docs configuration.
func NewPipeline(cfg config.DocsConfig, logger *log.Logger) (*Pipeline, error) {
	splitter, err := chunker.New(cfg.Strategy, cfg.ChunkSize, cfg.ChunkOverlap)
	if err != nil {
		return nil, err
	}
	return &Pipeline{splitter: splitter, log: logger.With("component", "ingest")}, nil
}

// Ingest enumerates supported documents in folder (non-recursive), extracts
// text per page, and chunks each page. A document that cannot be read is
// logged and skipped. A missing folder or an empty corpus yields an empty
// slice: callers must treat that as "nothing to index", not as fatal.
func (p *Pipeline) Ingest(folder string) []domain.Chunk {
	entries, err := os.ReadDir(folder)
	if err != nil {
		p.log.Error("cannot read document folder", "folder", folder, "error", err)
		return nil
	}
	var chunks []domain.Chunk
	files := 0
	for _, entry := range entries {
		if entry.IsDir() || !supported(entry.Name()) {
			continue
		}
		path := filepath.Join(folder, entry.Name())
		pages, err := extractPages(path)
		if err != nil {
			p.log.Warn("skipping unreadable document", "file", entry.Name(), "error", err)
			continue
		}
		files++
		chunks = append(chunks, p.chunkPages(entry.Name(), pages)...)
	}
	if len(chunks) == 0 {
		p.log.Warn("no document chunks produced", "folder", folder)
		return nil
	}
	p.log.Info("documents ingested", "files", files, "chunks", len(chunks))
	return chunks
}

// chunkPages splits each page and assigns chunk indexes sequentially across
// the whole document, so (source, index) stays unique per source.
func (p *Pipeline) chunkPages(sourceID string, pages []string) []domain.Chunk {
	var out []domain.Chunk
	next := 0
	for pageNum, text := range pages {
		segments, err := p.splitter.Split(text)
		if err != nil {
			p.log.Warn("skipping page that failed to split", "file", sourceID, "page", pageNum+1, "error", err)
			continue
		}
		for _, segment := range segments {
			if strings.TrimSpace(segment) == "" {
				continue
			}
			out = append(out, domain.Chunk{
				Text:       segment,
				SourceID:   sourceID,
				PageNumber: pageNum + 1,
				ChunkIndex: next,
			})
			next++
		}
	}
	return out
}

func supported(name string) bool {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".pdf", ".txt", ".md":
		return true
	default:
		return false
	}
}
