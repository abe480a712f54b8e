package openai

import (
	"context"
	"fmt"
	"time"

	openai "github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	"github.com/kailas-cloud/notegraph/internal/metrics"
)

// Embedder vectorizes text with the embeddings endpoint.
type Embedder struct {
	conn
	model      string
	dimensions int
}

var (
	_ domain.Embedder      = (*Embedder)(nil)
	_ domain.HealthChecker = (*Embedder)(nil)
)

// NewEmbedder creates an embedding adapter.
func NewEmbedder(cfg *Config) *Embedder {
	return &Embedder{conn: dial(cfg), model: cfg.Model, dimensions: cfg.Dimensions}
}

// Embed requests a float vector for a single input.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	req := openai.EmbeddingRequest{
		Input:          []string{text},
		Model:          openai.EmbeddingModel(e.model),
		EncodingFormat: openai.EmbeddingEncodingFormatFloat,
		Dimensions:     e.dimensions,
		User:           e.user,
	}

	start := time.Now()
	resp, err := e.api.CreateEmbeddings(ctx, req)
	if err != nil {
		metrics.Embedding.Failed(e.provider, e.model, "api_error")
		return domain.EmbeddingResult{}, parseAPIError("embedding", err)
	}
	if len(resp.Data) == 0 || len(resp.Data[0].Embedding) == 0 {
		metrics.Embedding.Failed(e.provider, e.model, "empty_response")
		return domain.EmbeddingResult{}, fmt.Errorf("embedding response has no vector: %w", domain.ErrAIProviderError)
	}
	metrics.Embedding.Succeeded(e.provider, e.model, time.Since(start), resp.Usage.PromptTokens, resp.Usage.TotalTokens)

	vec := resp.Data[0].Embedding
	if e.dimensions > 0 && len(vec) != e.dimensions {
		e.logger.Warn("embedding dimensions differ from configuration",
			zap.String("model", e.model), zap.Int("want", e.dimensions), zap.Int("got", len(vec)))
	}

	return domain.EmbeddingResult{
		Embedding:    vec,
		PromptTokens: resp.Usage.PromptTokens,
		TotalTokens:  resp.Usage.TotalTokens,
	}, nil
}
