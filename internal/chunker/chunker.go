package chunker

import (
	"errors"
	"fmt"

	"github.com/tmc/langchaingo/textsplitter"
)

const (
	// StrategyWindow slides a fixed character window over the text. The last
	// overlap characters of one chunk are exactly the first overlap
	// characters of the next.
	StrategyWindow = "window"
	// StrategyRecursive delegates to the recursive character splitter, which
	// prefers paragraph and sentence boundaries over exact window edges.
	StrategyRecursive = "recursive"
)

// Splitter turns one page of text into chunk-sized segments.
type Splitter interface {
	Split(text string) ([]string, error)
}

// New builds a splitter for the given strategy with sanitized settings.
func New(strategy string, size, overlap int) (Splitter, error) {
	if size <= 0 {
		return nil, errors.New("chunker: size must be greater than zero")
	}
	if overlap < 0 {
		return nil, errors.New("chunker: overlap cannot be negative")
	}
	if overlap >= size {
		return nil, fmt.Errorf("chunker: overlap %d must be smaller than size %d", overlap, size)
	}
	switch strategy {
	case StrategyWindow, "":
		return &windowSplitter{size: size, overlap: overlap}, nil
	case StrategyRecursive:
		return &recursiveSplitter{size: size, overlap: overlap}, nil
	default:
		return nil, fmt.Errorf("chunker: unknown strategy %q", strategy)
	}
}

type windowSplitter struct {
	size    int
	overlap int
}

func (s *windowSplitter) Split(text string) ([]string, error) {
	runes := []rune(text)
	if len(runes) == 0 {
		return nil, nil
	}
	if len(runes) <= s.size {
		return []string{string(runes)}, nil
	}
	step := s.size - s.overlap
	var out []string
	for start := 0; ; start += step {
		end := start + s.size
		if end >= len(runes) {
			out = append(out, string(runes[start:]))
			break
		}
		out = append(out, string(runes[start:end]))
	}
	return out, nil
}

type recursiveSplitter struct {
	size    int
	overlap int
}

func (s *recursiveSplitter) Split(text string) ([]string, error) {
	splitter := textsplitter.NewRecursiveCharacter(
		textsplitter.WithChunkSize(s.size),
		textsplitter.WithChunkOverlap(s.overlap),
	)
	segments, err := splitter.SplitText(text)
	if err != nil {
		return nil, fmt.Errorf("chunker: recursive split: %w", err)
	}
	return segments, nil
}
