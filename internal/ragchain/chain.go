package ragchain

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"ragrouter/internal/domain"
	"ragrouter/internal/generation"
	"ragrouter/internal/retrieval"
)

// NothingRelevantMessage is the sentinel answer for queries with no
// grounding in the corpus. Absence of grounding is a normal outcome, not an
// error.
const NothingRelevantMessage = "Sorry, I couldn't find anything relevant in the documents."

const promptTemplate = "Answer the question based on the following context:\n\nContext:\n%s\n\nQuestion: %s"

// Answer is the result of one grounded question.
type Answer struct {
	Text    string
	Found   bool
	Sources []domain.Attribution
	Err     string
}

// Chain composes retrieval and generation: retrieve relevant chunks,
// assemble a grounded prompt, generate, attribute sources.
type Chain struct {
	engine    *retrieval.Engine
	generator *generation.Service
	log       *log.Logger
}

// NewChain wires the retrieval engine and generation service together.
func NewChain(engine *retrieval.Engine, generator *generation.Service, logger *log.Logger) *Chain {
	return &Chain{engine: engine, generator: generator, log: logger.With("component", "ragchain")}
}

// Answer retrieves the top chunks for question and generates a grounded
// response. Attribution ordering mirrors retrieval ordering.
func (c *Chain) Answer(ctx context.Context, question string) Answer {
	results, err := c.engine.Retrieve(ctx, question)
	if err != nil {
		c.log.Error("retrieval failed", "error", err)
		return Answer{Err: err.Error(), Sources: []domain.Attribution{}}
	}
	if len(results) == 0 {
		c.log.Info("no relevant chunks found", "question_length", len(question))
		return Answer{Found: false, Sources: []domain.Attribution{}}
	}

	contexts := make([]string, len(results))
	sources := make([]domain.Attribution, len(results))
	for i, r := range results {
		contexts[i] = r.Chunk.Text
		sources[i] = domain.Attribution{
			Source:  r.Chunk.SourceID,
			Page:    r.Chunk.PageNumber,
			Snippet: c.engine.Snippet(r.Chunk.Text),
		}
	}
	prompt := fmt.Sprintf(promptTemplate, strings.Join(contexts, "\n\n"), question)

	outcome := c.generator.Generate(ctx, prompt)
	if !outcome.OK() {
		return Answer{Err: outcome.Message, Sources: sources}
	}
	return Answer{Text: outcome.Text, Found: true, Sources: sources}
}
