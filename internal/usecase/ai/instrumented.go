// Package ai holds the decorators that sit between services and AI providers.
//
// Provider-level metrics are recorded by transport/openai. These decorators add the
// request-scoped view: a log line on the request logger and token accounting in the
// domain.AIUsage collector carried by the context.
package ai

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/kailas-cloud/notegraph/internal/domain"
	logpkg "github.com/kailas-cloud/notegraph/internal/logger"
)

// call identifies a provider and model in log lines.
type call struct {
	provider string
	model    string
	logger   *zap.Logger
}

// finish logs the outcome of a provider call that started at began. Failures are
// logged at level; successes at debug with extra.
func (c call) finish(ctx context.Context, name string, began time.Time, err error, level zapcore.Level, extra ...zap.Field) {
	fields := append([]zap.Field{
		zap.String("provider", c.provider),
		zap.String("model", c.model),
		zap.Duration("duration", time.Since(began)),
	}, extra...)

	log := logpkg.FromContext(ctx, c.logger)
	if err != nil {
		log.Check(level, name+" request failed").Write(append(fields, zap.Error(err))...)
		return
	}
	log.Debug(name+" request completed", fields...)
}

// InstrumentedEmbedder decorates a domain.Embedder.
type InstrumentedEmbedder struct {
	call
	inner domain.Embedder
}

// NewInstrumentedEmbedder wraps inner.
func NewInstrumentedEmbedder(inner domain.Embedder, provider, model string, logger *zap.Logger) *InstrumentedEmbedder {
	return &InstrumentedEmbedder{call: call{provider: provider, model: model, logger: logger}, inner: inner}
}

// Embed delegates to inner and adds the consumed tokens to the request usage.
// A cache hit still marks the request as embedded, with zero tokens.
func (e *InstrumentedEmbedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	began := time.Now()
	res, err := e.inner.Embed(ctx, text)
	if err != nil {
		e.finish(ctx, "Embedding", began, err, zapcore.ErrorLevel)
		return domain.EmbeddingResult{}, fmt.Errorf("embed: %w", err)
	}

	domain.UsageFromContext(ctx).AddEmbeddingTokens(res.TotalTokens)
	e.finish(ctx, "Embedding", began, nil, zapcore.ErrorLevel,
		zap.Int("dimensions", len(res.Embedding)),
		zap.Int("prompt_tokens", res.PromptTokens),
		zap.Int("total_tokens", res.TotalTokens),
	)
	return res, nil
}

// HealthCheck forwards to inner when it implements domain.HealthChecker.
func (e *InstrumentedEmbedder) HealthCheck(ctx context.Context) error {
	hc, ok := e.inner.(domain.HealthChecker)
	if !ok {
		return nil
	}
	if err := hc.HealthCheck(ctx); err != nil {
		return fmt.Errorf("embedding health check: %w", err)
	}
	return nil
}

// InstrumentedSummarizer decorates a domain.Summarizer. Its failures log at warn
// because note creation degrades rather than fails.
type InstrumentedSummarizer struct {
	call
	inner domain.Summarizer
}

// NewInstrumentedSummarizer wraps inner.
func NewInstrumentedSummarizer(inner domain.Summarizer, provider, model string, logger *zap.Logger) *InstrumentedSummarizer {
	return &InstrumentedSummarizer{call: call{provider: provider, model: model, logger: logger}, inner: inner}
}

// Summarize delegates to inner and adds the consumed tokens to the request usage.
func (s *InstrumentedSummarizer) Summarize(ctx context.Context, content string) (domain.Annotation, error) {
	began := time.Now()
	ann, err := s.inner.Summarize(ctx, content)
	if err != nil {
		s.finish(ctx, "Summary", began, err, zapcore.WarnLevel)
		return domain.Annotation{}, fmt.Errorf("summarize: %w", err)
	}

	domain.UsageFromContext(ctx).AddSummaryTokens(ann.TotalTokens)
	s.finish(ctx, "Summary", began, nil, zapcore.WarnLevel,
		zap.Int("tags", len(ann.Tags)),
		zap.Int("total_tokens", ann.TotalTokens),
	)
	return ann, nil
}
