package orchestrator

import (
	"context"
	"fmt"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"ragrouter/internal/domain"
	"ragrouter/internal/generation"
	"ragrouter/internal/ragchain"
)

// Orchestrator classifies query intent and dispatches to the RAG chain or to
// the generation service directly, normalizing both paths into one result
// shape. It is the single boundary where failures become structured results
// instead of propagating to the transport layer.
type Orchestrator struct {
	classifier domain.Classifier
	chain      *ragchain.Chain
	generator  *generation.Service
	log        *log.Logger
}

// New wires the classifier, the RAG chain, and the direct generation path.
func New(classifier domain.Classifier, chain *ragchain.Chain, generator *generation.Service, logger *log.Logger) *Orchestrator {
	return &Orchestrator{
		classifier: classifier,
		chain:      chain,
		generator:  generator,
		log:        logger.With("component", "orchestrator"),
	}
}

// Handle answers one query. The result always carries a trace ID, and a set
// error implies an empty response.
func (o *Orchestrator) Handle(ctx context.Context, queryText, traceID string) (res domain.Result) {
	if traceID == "" {
		traceID = uuid.NewString()
	}
	defer func() {
		if r := recover(); r != nil {
			o.log.Error("query handling panicked", "trace_id", traceID, "panic", r)
			res = domain.Result{
				Intent:  domain.IntentError,
				Error:   fmt.Sprintf("internal error: %v", r),
				TraceID: traceID,
			}
		}
	}()

	intent, err := o.classifier.Classify(ctx, queryText)
	if err != nil {
		// Classification is best-effort: without a label, assume the query
		// is about the corpus rather than failing the request.
		o.log.Warn("classification failed, defaulting to document-grounded routing", "trace_id", traceID, "error", err)
		intent = domain.IntentDocQuestion
	}
	o.log.Info("routing query", "trace_id", traceID, "intent", intent)

	switch intent {
	case domain.IntentGeneral:
		return o.handleGeneral(ctx, queryText, traceID)
	default:
		return o.handleDocQuestion(ctx, queryText, traceID)
	}
}

func (o *Orchestrator) handleGeneral(ctx context.Context, queryText, traceID string) domain.Result {
	outcome := o.generator.Generate(ctx, queryText)
	if !outcome.OK() {
		return domain.Result{Intent: domain.IntentGeneral, Error: outcome.Message, TraceID: traceID}
	}
	return domain.Result{Response: outcome.Text, Intent: domain.IntentGeneral, TraceID: traceID}
}

func (o *Orchestrator) handleDocQuestion(ctx context.Context, queryText, traceID string) domain.Result {
	answer := o.chain.Answer(ctx, queryText)
	if answer.Err != "" {
		return domain.Result{Intent: domain.IntentDocQuestion, Error: answer.Err, TraceID: traceID}
	}
	if !answer.Found {
		return domain.Result{
			Response:   ragchain.NothingRelevantMessage,
			Intent:     domain.IntentDocQuestion,
			SourceDocs: []string{},
			TraceID:    traceID,
		}
	}
	sources := make([]string, len(answer.Sources))
	for i, a := range answer.Sources {
		sources[i] = fmt.Sprintf("%s (page %d): %s", a.Source, a.Page, a.Snippet)
	}
	return domain.Result{
		Response:   answer.Text,
		Intent:     domain.IntentDocQuestion,
		SourceDocs: sources,
		TraceID:    traceID,
	}
}
