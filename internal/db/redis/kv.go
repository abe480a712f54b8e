package redis

import (
	"context"
	"time"

	"github.com/redis/rueidis"

	"github.com/kailas-cloud/notegraph/internal/db"
)

// Get returns the value at key, or db.ErrKeyNotFound.
func (s *Store) Get(ctx context.Context, key string) ([]byte, error) {
	data, err := s.do(ctx, s.b().Get().Key(key).Build()).AsBytes()
	switch {
	case rueidis.IsRedisNil(err):
		return nil, db.ErrKeyNotFound
	case err != nil:
		return nil, failed(db.OpGet, err)
	}
	return data, nil
}

// Set stores value at key without expiry.
func (s *Store) Set(ctx context.Context, key string, value []byte) error {
	return s.SetWithTTL(ctx, key, value, 0)
}

// SetWithTTL stores value at key. A non-positive ttl means no expiry.
func (s *Store) SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	set := s.b().Set().Key(key).Value(rueidis.BinaryString(value))
	if ttl > 0 {
		return s.run(ctx, db.OpSet, set.Ex(ttl).Build())
	}
	return s.run(ctx, db.OpSet, set.Build())
}
