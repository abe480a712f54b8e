package domain

import "context"

type aiUsageKey struct{}

// AIUsage collects provider token usage for a single HTTP request.
// The transport puts a mutable pointer into the context before calling the service;
// services record after each provider call; the transport reads it for response
// headers and the request log line.
type AIUsage struct {
	EmbeddingTokens int
	SummaryTokens   int
	Embedded        bool // true if embedding was called, even on a cache hit with 0 tokens
	Summarized      bool
}

// NewContextWithUsage returns a context with an embedded usage collector.
func NewContextWithUsage(ctx context.Context) (context.Context, *AIUsage) {
	u := &AIUsage{}
	return context.WithValue(ctx, aiUsageKey{}, u), u
}

// UsageFromContext extracts the usage collector from context. Returns nil if not set.
func UsageFromContext(ctx context.Context) *AIUsage {
	u, _ := ctx.Value(aiUsageKey{}).(*AIUsage)
	return u
}

// AddEmbeddingTokens records tokens consumed by an embedding call.
func (u *AIUsage) AddEmbeddingTokens(n int) {
	if u != nil {
		u.EmbeddingTokens += n
		u.Embedded = true
	}
}

// AddSummaryTokens records tokens consumed by a summary completion.
func (u *AIUsage) AddSummaryTokens(n int) {
	if u != nil {
		u.SummaryTokens += n
		u.Summarized = true
	}
}
