package metrics

import "github.com/prometheus/client_golang/prometheus"

// Graph and review Prometheus metrics.
var (
	GraphBuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "notegraph",
			Name:      "graph_build_duration_seconds",
			Help:      "Similarity graph build duration in seconds",
			Buckets:   []float64{0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 5},
		},
	)

	GraphNodes = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "notegraph",
			Name:      "graph_nodes",
			Help:      "Number of nodes per built graph",
			Buckets:   prometheus.ExponentialBuckets(1, 4, 8),
		},
	)

	GraphEdgesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notegraph",
			Name:      "graph_edges_total",
			Help:      "Total edges emitted by graph builds",
		},
	)

	GraphSkippedPairsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: "notegraph",
			Name:      "graph_skipped_pairs_total",
			Help:      "Total node pairs skipped because their embeddings could not be compared",
		},
	)

	SimilarityCacheTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notegraph",
			Name:      "similarity_cache_total",
			Help:      "Pairwise similarity cache hits and misses",
		},
		[]string{"result"}, // "hit" / "miss"
	)

	ReviewCompletionsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "notegraph",
			Name:      "review_completions_total",
			Help:      "Review completion requests by outcome",
		},
		[]string{"result"}, // "completed" / "already_completed"
	)

	ReviewDueEntries = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: "notegraph",
			Name:      "review_due_entries",
			Help:      "Number of entries returned by due-today queries",
			Buckets:   []float64{0, 1, 2, 5, 10, 25, 50, 100},
		},
	)
)

var domainMetricsRegistered bool

// RegisterDomainMetrics registers graph and review metrics. Must be called once from main.
func RegisterDomainMetrics() {
	if domainMetricsRegistered {
		return
	}
	prometheus.MustRegister(GraphBuildDuration)
	prometheus.MustRegister(GraphNodes)
	prometheus.MustRegister(GraphEdgesTotal)
	prometheus.MustRegister(GraphSkippedPairsTotal)
	prometheus.MustRegister(SimilarityCacheTotal)
	prometheus.MustRegister(ReviewCompletionsTotal)
	prometheus.MustRegister(ReviewDueEntries)
	domainMetricsRegistered = true
}
