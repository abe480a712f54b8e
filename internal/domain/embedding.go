package domain

import (
	"context"
)

// Embedder is the shared text vectorization contract between layers.
type Embedder interface {
	Embed(ctx context.Context, text string) (EmbeddingResult, error)
}

// HealthChecker verifies AI provider availability.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

// EmbeddingResult carries the embedding vector and token usage through the decorator chain.
type EmbeddingResult struct {
	Embedding    []float32
	PromptTokens int
	TotalTokens  int
}

// Summarizer produces a short summary and suggested tags for a note body.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (Annotation, error)
}

// Annotation is the summarizer output.
type Annotation struct {
	Summary     string
	Tags        []string
	TotalTokens int
}
