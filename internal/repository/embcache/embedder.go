// Package embcache memoizes embedding vectors in the key-value store.
//
// Entries are keyed by sha256(model, text) and stored as little-endian float32 words.
// Concurrent misses for the same key share one provider call.
package embcache

import (
	"context"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/singleflight"

	"github.com/kailas-cloud/notegraph/internal/db"
	"github.com/kailas-cloud/notegraph/internal/domain"
	"github.com/kailas-cloud/notegraph/internal/repository/keyspace"
)

// kv is the slice of db.KVStore the cache needs.
type kv interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// Option configures an Embedder.
type Option func(*Embedder)

// WithKeyspace sets the key layout.
func WithKeyspace(keys keyspace.Keyspace) Option {
	return func(e *Embedder) { e.keys = keys }
}

// WithModel namespaces keys by embedding model.
func WithModel(model string) Option {
	return func(e *Embedder) { e.model = model }
}

// WithTTL sets the entry lifetime. Zero keeps entries forever.
func WithTTL(ttl time.Duration) Option {
	return func(e *Embedder) { e.ttl = ttl }
}

// WithCounter counts lookups by result label ("hit" or "miss").
func WithCounter(c *prometheus.CounterVec) Option {
	return func(e *Embedder) { e.lookups = c }
}

// Embedder is a domain.Embedder that consults the cache before the inner provider.
type Embedder struct {
	inner   domain.Embedder
	kv      kv
	keys    keyspace.Keyspace
	model   string
	ttl     time.Duration
	lookups *prometheus.CounterVec
	flight  singleflight.Group
	logger  *zap.Logger
}

var _ domain.Embedder = (*Embedder)(nil)

// New wraps inner with a cache backed by store.
func New(inner domain.Embedder, store kv, logger *zap.Logger, opts ...Option) *Embedder {
	e := &Embedder{
		inner:  inner,
		kv:     store,
		keys:   keyspace.New(domain.DefaultKeyPrefix),
		logger: logger,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Embed serves a cached vector with zero token usage, or calls the inner embedder
// and stores its vector. Cache failures never fail the call.
func (e *Embedder) Embed(ctx context.Context, text string) (domain.EmbeddingResult, error) {
	key := e.key(text)

	if vec, ok := e.lookup(ctx, key); ok {
		e.count("hit")
		return domain.EmbeddingResult{Embedding: vec}, nil
	}
	e.count("miss")

	v, err, shared := e.flight.Do(key, func() (any, error) {
		res, err := e.inner.Embed(ctx, text)
		if err != nil {
			return domain.EmbeddingResult{}, err
		}
		e.store(ctx, key, res.Embedding)
		return res, nil
	})
	if err != nil {
		return domain.EmbeddingResult{}, fmt.Errorf("embed text: %w", err)
	}

	res := v.(domain.EmbeddingResult)
	if shared {
		// Tokens were billed to the caller that led the flight.
		res = domain.EmbeddingResult{Embedding: res.Embedding}
	}
	return res, nil
}

func (e *Embedder) count(result string) {
	if e.lookups != nil {
		e.lookups.WithLabelValues(result).Inc()
	}
}

func (e *Embedder) key(text string) string {
	h := sha256.New()
	h.Write([]byte(e.model))
	h.Write([]byte{0})
	h.Write([]byte(text))
	return e.keys.EmbeddingCache(hex.EncodeToString(h.Sum(nil)))
}

func (e *Embedder) lookup(ctx context.Context, key string) ([]float32, bool) {
	raw, err := e.kv.Get(ctx, key)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return nil, false
	case err != nil:
		e.logger.Warn("embedding cache read failed", zap.String("key", key), zap.Error(err))
		return nil, false
	case len(raw) == 0:
		return nil, false
	}

	vec, err := decode(raw)
	if err != nil {
		e.logger.Warn("embedding cache entry corrupt", zap.String("key", key), zap.Error(err))
		return nil, false
	}
	return vec, true
}

func (e *Embedder) store(ctx context.Context, key string, vec []float32) {
	if len(vec) == 0 {
		return
	}

	var err error
	if e.ttl > 0 {
		err = e.kv.SetWithTTL(ctx, key, encode(vec), e.ttl)
	} else {
		err = e.kv.Set(ctx, key, encode(vec))
	}
	if err != nil {
		e.logger.Warn("embedding cache write failed", zap.String("key", key), zap.Error(err))
	}
}

func encode(vec []float32) []byte {
	out := make([]byte, 0, 4*len(vec))
	for _, f := range vec {
		out = binary.LittleEndian.AppendUint32(out, math.Float32bits(f))
	}
	return out
}

func decode(raw []byte) ([]float32, error) {
	if len(raw)%4 != 0 {
		return nil, fmt.Errorf("entry length %d is not a multiple of 4", len(raw))
	}
	vec := make([]float32, 0, len(raw)/4)
	for off := 0; off < len(raw); off += 4 {
		vec = append(vec, math.Float32frombits(binary.LittleEndian.Uint32(raw[off:])))
	}
	return vec, nil
}
