// Package testutil provides deterministic fakes for the external
// capabilities (embedding, generation, classification) used across package
// tests.
package testutil

import (
	"context"
	"hash/fnv"
	"math"
	"regexp"
	"strings"
	"sync"

	"ragrouter/internal/domain"
)

const bagDimension = 256

var tokenRe = regexp.MustCompile(`[\p{L}\p{N}']+`)

// BagOfWordsEmbedder hashes tokens into a fixed-dimension vector and
// L2-normalizes it, so cosine similarity tracks token overlap. It is fully
// deterministic and requires no network.
type BagOfWordsEmbedder struct {
	ModelID  string
	FailWith error
}

func (e *BagOfWordsEmbedder) Model() string {
	if e.ModelID == "" {
		return "fake-embedder"
	}
	return e.ModelID
}

func (e *BagOfWordsEmbedder) EmbedDocuments(_ context.Context, texts []string) ([][]float32, error) {
	if e.FailWith != nil {
		return nil, e.FailWith
	}
	out := make([][]float32, len(texts))
	for i, t := range texts {
		out[i] = embedText(t)
	}
	return out, nil
}

func (e *BagOfWordsEmbedder) EmbedQuery(_ context.Context, text string) ([]float32, error) {
	if e.FailWith != nil {
		return nil, e.FailWith
	}
	return embedText(text), nil
}

func embedText(text string) []float32 {
	vec := make([]float32, bagDimension)
	for _, tok := range tokenRe.FindAllString(strings.ToLower(text), -1) {
		h := fnv.New32a()
		h.Write([]byte(tok))
		vec[h.Sum32()%bagDimension]++
	}
	var norm float64
	for _, v := range vec {
		norm += float64(v) * float64(v)
	}
	if norm > 0 {
		n := float32(math.Sqrt(norm))
		for i := range vec {
			vec[i] /= n
		}
	}
	return vec
}

// GenStep is one scripted generator response.
type GenStep struct {
	Text string
	Err  error
}

// ScriptedGenerator replays a fixed script of responses and records every
// call. When the script runs out, the last step repeats.
type ScriptedGenerator struct {
	mu      sync.Mutex
	Script  []GenStep
	Calls   int
	Prompts []string
}

func (g *ScriptedGenerator) GenerateText(_ context.Context, prompt string, _ float64, _ int) (string, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	step := GenStep{}
	if len(g.Script) > 0 {
		i := g.Calls
		if i >= len(g.Script) {
			i = len(g.Script) - 1
		}
		step = g.Script[i]
	}
	g.Calls++
	g.Prompts = append(g.Prompts, prompt)
	return step.Text, step.Err
}

// FixedClassifier always returns the same label (or error).
type FixedClassifier struct {
	Intent domain.Intent
	Err    error
}

func (c *FixedClassifier) Classify(context.Context, string) (domain.Intent, error) {
	return c.Intent, c.Err
}

// PanickingClassifier exercises the orchestrator's recovery boundary.
type PanickingClassifier struct{}

func (PanickingClassifier) Classify(context.Context, string) (domain.Intent, error) {
	panic("classifier exploded")
}
