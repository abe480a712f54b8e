package embcache

import (
	"context"
	"sync"
	"time"

	"github.com/kailas-cloud/notegraph/internal/db"
	"github.com/kailas-cloud/notegraph/internal/domain"
)

type stubEmbedder struct {
	mu    sync.Mutex
	res   domain.EmbeddingResult
	err   error
	calls int
}

func (s *stubEmbedder) Embed(context.Context, string) (domain.EmbeddingResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	return s.res, s.err
}

// memKV is an in-memory kv that records writes. readErr and writeErr force failures.
type memKV struct {
	mu       sync.Mutex
	data     map[string][]byte
	ttls     map[string]time.Duration
	gets     []string
	readErr  error
	writeErr error
}

func newMemKV() *memKV {
	return &memKV{data: map[string][]byte{}, ttls: map[string]time.Duration{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.gets = append(m.gets, key)
	if m.readErr != nil {
		return nil, m.readErr
	}
	v, ok := m.data[key]
	if !ok {
		return nil, db.ErrKeyNotFound
	}
	return v, nil
}

func (m *memKV) Set(ctx context.Context, key string, value []byte) error {
	return m.SetWithTTL(ctx, key, value, 0)
}

func (m *memKV) SetWithTTL(_ context.Context, key string, value []byte, ttl time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	m.data[key] = value
	m.ttls[key] = ttl
	return nil
}
