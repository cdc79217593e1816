package llm

import (
	"context"
)

// Client generates a completion for a prompt. The extraction and enrichment
// collaborators are its only consumers; the core engines never call an LLM.
type Client interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Embedder computes a vector for a piece of text, persisted alongside nodes
// for similarity passes.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}
