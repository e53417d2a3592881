package classify

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/log"

	"ragrouter/internal/domain"
)

const labelPrompt = `Classify the user question below.
Answer with exactly one word:
- "doc" if the question should be answered from a private document corpus
- "general" for anything else

Question: %s`

// LLMClassifier asks the generation capability for a one-word intent label.
type LLMClassifier struct {
	gen domain.Generator
	log *log.Logger
}

// NewLLMClassifier builds a classifier backed by the generator capability.
func NewLLMClassifier(gen domain.Generator, logger *log.Logger) *LLMClassifier {
	return &LLMClassifier{gen: gen, log: logger.With("component", "classifier")}
}

// Classify labels text as document-grounded or general.
func (c *LLMClassifier) Classify(ctx context.Context, text string) (domain.Intent, error) {
	out, err := c.gen.GenerateText(ctx, fmt.Sprintf(labelPrompt, text), 0, 8)
	if err != nil {
		return "", fmt.Errorf("classify: %w", err)
	}
	label := strings.ToLower(strings.TrimSpace(out))
	switch {
	case strings.Contains(label, "doc"):
		return domain.IntentDocQuestion, nil
	case strings.Contains(label, "general"):
		return domain.IntentGeneral, nil
	default:
		return "", fmt.Errorf("classify: unrecognized label %q", label)
	}
}

// KeywordClassifier is a cheap offline heuristic: questions mentioning any of
// the corpus terms route to the document path.
type KeywordClassifier struct {
	terms []string
}

// NewKeywordClassifier uses the given terms, or a default set when empty.
func NewKeywordClassifier(terms []string) *KeywordClassifier {
	if len(terms) == 0 {
		terms = []string{
			"document", "documents", "policy", "report", "manual",
			"contract", "according to", "file", "page",
		}
	}
	lowered := make([]string, len(terms))
	for i, t := range terms {
		lowered[i] = strings.ToLower(t)
	}
	return &KeywordClassifier{terms: lowered}
}

// Classify labels text by keyword match.
func (c *KeywordClassifier) Classify(_ context.Context, text string) (domain.Intent, error) {
	lower := strings.ToLower(text)
	for _, term := range c.terms {
		if strings.Contains(lower, term) {
			return domain.IntentDocQuestion, nil
		}
	}
	return domain.IntentGeneral, nil
}
