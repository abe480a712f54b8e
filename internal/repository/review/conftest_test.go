package review

import (
	"context"
	"testing"
	"time"

	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/repository/keyspace"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	hgetAllMultiFn  func(ctx context.Context, keys []string) ([]map[string]string, error)
	smembersFn      func(ctx context.Context, key string) ([]string, error)
	zrangeByScoreFn func(ctx context.Context, key string, min, max float64) ([]string, error)
	hsetUnlessFn    func(
		ctx context.Context, key, guard, guardValue string, fields map[string]string,
	) (map[string]string, error)
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) SMembers(ctx context.Context, key string) ([]string, error) {
	if m.smembersFn != nil {
		return m.smembersFn(ctx, key)
	}
	return nil, nil
}

func (m *mockStore) ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error) {
	if m.zrangeByScoreFn != nil {
		return m.zrangeByScoreFn(ctx, key, min, max)
	}
	return nil, nil
}

func (m *mockStore) HSetUnless(
	ctx context.Context, key, guard, guardValue string, fields map[string]string,
) (map[string]string, error) {
	if m.hsetUnlessFn != nil {
		return m.hsetUnlessFn(ctx, key, guard, guardValue, fields)
	}
	return nil, nil
}

func newTestRepo(t *testing.T) (*Repo, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms, keyspace.New("")), ms
}

var testDue = time.Date(2026, 3, 10, 9, 30, 0, 0, time.UTC)

func pendingEntry(id string, stage int, due time.Time) domreview.Entry {
	return domreview.Reconstruct(id, "note-1", "user-1", stage, due, nil)
}
