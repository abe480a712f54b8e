package db

import (
	"context"
	"time"
)

// Store is the main database facade combining all sub-interfaces.
//
//nolint:interfacebloat // facade by design -- consumers use narrow sub-interfaces (ISP)
type Store interface {
	Pinger
	HashStore
	KVStore
	SortedSetStore
	SetStore
	Batcher
	GuardedUpdater
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides hash-based key-value operations.
type HashStore interface {
	HSet(ctx context.Context, key string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Del(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)
}

// KVStore provides simple key-value operations.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error
}

// SortedSetStore provides sorted set operations used for time-ordered indexes.
type SortedSetStore interface {
	ZAdd(ctx context.Context, key string, score float64, member string) error
	// ZRangeByScore returns members with min <= score < max (max exclusive).
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	// ZRevRange returns all members ordered by score, highest first.
	ZRevRange(ctx context.Context, key string) ([]string, error)
}

// SetStore provides unordered set operations.
type SetStore interface {
	SMembers(ctx context.Context, key string) ([]string, error)
}

// Batcher applies a WriteBatch atomically (all writes or none).
type Batcher interface {
	ExecAtomic(ctx context.Context, b *WriteBatch) error
}

// GuardedUpdater sets hash fields unless a guard field already holds a value.
type GuardedUpdater interface {
	// HSetUnless writes fields to the hash at key unless fields[guard] is already equal
	// to guardValue, then returns the resulting hash. A missing key returns ErrKeyNotFound
	// and writes nothing.
	HSetUnless(ctx context.Context, key, guard, guardValue string, fields map[string]string) (map[string]string, error)
	// HSetIfEqual writes fields to the hash at key only while the stored guard field
	// equals expected. A missing key returns ErrKeyNotFound, a different guard value
	// returns ErrGuardFailed; neither writes anything.
	HSetIfEqual(ctx context.Context, key, guard, expected string, fields map[string]string) error
}
