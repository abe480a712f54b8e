package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

// ProviderCalls groups the metrics of one kind of AI provider call.
// Every vec is labeled by provider and model.
type ProviderCalls struct {
	requests *prometheus.CounterVec   // + status
	duration *prometheus.HistogramVec // successful calls only
	tokens   *prometheus.CounterVec   // + type: prompt / total
	errors   *prometheus.CounterVec   // + error_type
}

func newProviderCalls(kind, help string, buckets []float64) *ProviderCalls {
	opts := func(name, what string) prometheus.CounterOpts {
		return prometheus.CounterOpts{Namespace: "notegraph", Name: kind + "_" + name, Help: what + " " + help}
	}
	return &ProviderCalls{
		requests: prometheus.NewCounterVec(opts("requests_total", "Total"), []string{"provider", "model", "status"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: "notegraph",
			Name:      kind + "_request_duration_seconds",
			Help:      "Duration in seconds of successful " + help,
			Buckets:   buckets,
		}, []string{"provider", "model"}),
		tokens: prometheus.NewCounterVec(opts("tokens_total", "Tokens consumed by"), []string{"provider", "model", "type"}),
		errors: prometheus.NewCounterVec(opts("errors_total", "Failed"), []string{"provider", "model", "error_type"}),
	}
}

// Succeeded records a successful call and its token usage.
func (p *ProviderCalls) Succeeded(provider, model string, took time.Duration, promptTokens, totalTokens int) {
	p.requests.WithLabelValues(provider, model, "success").Inc()
	p.duration.WithLabelValues(provider, model).Observe(took.Seconds())
	if totalTokens > 0 {
		p.tokens.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
		p.tokens.WithLabelValues(provider, model, "total").Add(float64(totalTokens))
	}
}

// Failed records a failed call. reason is a short machine label such as "api_error".
func (p *ProviderCalls) Failed(provider, model, reason string) {
	p.requests.WithLabelValues(provider, model, "error").Inc()
	p.errors.WithLabelValues(provider, model, reason).Inc()
}

// Requests exposes the request counter for tests.
func (p *ProviderCalls) Requests() *prometheus.CounterVec { return p.requests }

// Errors exposes the error counter for tests.
func (p *ProviderCalls) Errors() *prometheus.CounterVec { return p.errors }

func (p *ProviderCalls) collectors() []prometheus.Collector {
	return []prometheus.Collector{p.requests, p.duration, p.tokens, p.errors}
}

var (
	// Embedding covers embedding API calls.
	Embedding = newProviderCalls("embedding", "embedding requests",
		[]float64{0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10})

	// Summary covers summary and tag completion calls.
	Summary = newProviderCalls("summary", "summary completions",
		[]float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30})

	EmbeddingCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notegraph",
			Name:      "embedding_cache_total",
			Help:      "Embedding cache hits and misses",
		},
		[]string{"result"},
	)
)

var registerAI sync.Once

// RegisterAIMetrics registers the provider and embedding cache metrics with the
// default registry. Repeated calls are no-ops.
func RegisterAIMetrics() {
	registerAI.Do(func() {
		prometheus.MustRegister(Embedding.collectors()...)
		prometheus.MustRegister(Summary.collectors()...)
		prometheus.MustRegister(EmbeddingCacheTotal)
	})
}
