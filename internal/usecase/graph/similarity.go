package graph

import (
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	domgraph "github.com/kailas-cloud/notegraph/internal/domain/graph"
)

// DefaultSimilarityCacheSize bounds the pair cache when no size is configured.
const DefaultSimilarityCacheSize = 100_000

// pairKey identifies an unordered pair of embeddings. The lower note ID goes first so
// (a, b) and (b, a) share an entry; versions pin the embeddings that were compared.
type pairKey struct {
	lowID      string
	lowVersion int
	hiID       string
	hiVersion  int
}

func newPairKey(a, b domgraph.Node) pairKey {
	if b.ID < a.ID {
		a, b = b, a
	}
	return pairKey{lowID: a.ID, lowVersion: a.EmbeddingVersion, hiID: b.ID, hiVersion: b.EmbeddingVersion}
}

// SimilarityCache memoizes pairwise similarity keyed by note IDs and embedding
// versions. Replacing an embedding bumps its version, so stale entries are never hit
// and age out of the LRU. Failed comparisons are not cached.
type SimilarityCache struct {
	cache      *lru.Cache[pairKey, float64]
	inner      domgraph.ScoreFunc
	cacheTotal *prometheus.CounterVec
}

// NewSimilarityCache creates a bounded cache around inner (cosine when nil).
// cacheTotal is a counter vec with label "result" ("hit"/"miss") and may be nil.
func NewSimilarityCache(size int, inner domgraph.ScoreFunc, cacheTotal *prometheus.CounterVec) (*SimilarityCache, error) {
	if size <= 0 {
		size = DefaultSimilarityCacheSize
	}
	if inner == nil {
		inner = domgraph.CosineScore
	}
	c, err := lru.New[pairKey, float64](size)
	if err != nil {
		return nil, fmt.Errorf("create similarity cache: %w", err)
	}
	return &SimilarityCache{cache: c, inner: inner, cacheTotal: cacheTotal}, nil
}

// Score implements domgraph.ScoreFunc. Safe for concurrent use.
func (s *SimilarityCache) Score(a, b domgraph.Node) (float64, error) {
	key := newPairKey(a, b)
	if sim, ok := s.cache.Get(key); ok {
		s.inc("hit")
		return sim, nil
	}
	s.inc("miss")

	sim, err := s.inner(a, b)
	if err != nil {
		return 0, err
	}
	s.cache.Add(key, sim)
	return sim, nil
}

// Len returns the number of cached pairs.
func (s *SimilarityCache) Len() int { return s.cache.Len() }

func (s *SimilarityCache) inc(result string) {
	if s.cacheTotal != nil {
		s.cacheTotal.WithLabelValues(result).Inc()
	}
}
