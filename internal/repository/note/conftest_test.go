package note

import (
	"context"
	"testing"
	"time"

	"github.com/kailas-cloud/notegraph/internal/db"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
	"github.com/kailas-cloud/notegraph/internal/repository/keyspace"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hsetIfEqualFn  func(ctx context.Context, key, guard, expected string, fields map[string]string) error
	hgetAllFn      func(ctx context.Context, key string) (map[string]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	zrevRangeFn    func(ctx context.Context, key string) ([]string, error)
	smembersFn     func(ctx context.Context, key string) ([]string, error)
	execAtomicFn   func(ctx context.Context, b *db.WriteBatch) error
}

func (m *mockStore) HSetIfEqual(ctx context.Context, key, guard, expected string, fields map[string]string) error {
	if m.hsetIfEqualFn != nil {
		return m.hsetIfEqualFn(ctx, key, guard, expected, fields)
	}
	return db.ErrKeyNotFound
}

func (m *mockStore) HGetAll(ctx context.Context, key string) (map[string]string, error) {
	if m.hgetAllFn != nil {
		return m.hgetAllFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) ZRevRange(ctx context.Context, key string) ([]string, error) {
	if m.zrevRangeFn != nil {
		return m.zrevRangeFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) ExecAtomic(ctx context.Context, b *db.WriteBatch) error {
	if m.execAtomicFn != nil {
		return m.execAtomicFn(ctx, b)
	}
	return nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, keyspace.New("")), ms
}

var testCreated = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testNote(t *testing.T) domnote.Note {
	t.Helper()
	return domnote.Reconstruct("note-1", "user-1", "Title", "Body text", "A summary",
		[]string{"go", "graphs"}, testCreated, testCreated.Add(time.Minute),
		vector.Vector{0.25, -0.5, 1}, 2)
}
