package review

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/kailas-cloud/notegraph/internal/db"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/repository/keyspace"
)

// store is the consumer interface for review entries (ISP).
type store interface {
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	ZRangeByScore(ctx context.Context, key string, min, max float64) ([]string, error)
	HSetUnless(ctx context.Context, key, guard, guardValue string, fields map[string]string) (map[string]string, error)
}

// Repo implements usecase/review.Repository.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a review repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// ListByNote returns every entry of a note in storage order.
func (r *Repo) ListByNote(ctx context.Context, noteID string) ([]domreview.Entry, error) {
	ids, err := r.store.SMembers(ctx, r.keys.NoteEntries(noteID))
	if err != nil {
		return nil, fmt.Errorf("list entries of note %s: %w", noteID, err)
	}
	return r.load(ctx, ids)
}

// DueCandidates returns the user's entries with start <= dueAt < end, completed ones included.
func (r *Repo) DueCandidates(ctx context.Context, userID string, start, end time.Time) ([]domreview.Entry, error) {
	ids, err := r.store.ZRangeByScore(ctx, r.keys.UserDue(userID),
		float64(start.UnixMilli()), float64(end.UnixMilli()))
	if err != nil {
		return nil, fmt.Errorf("due index of user %s: %w", userID, err)
	}
	return r.load(ctx, ids)
}

// Complete marks the entry completed at now unless it already is. The stored entry is
// returned either way, so a repeated call reports the original completion time.
func (r *Repo) Complete(ctx context.Context, id string, now time.Time) (domreview.Entry, error) {
	fields := map[string]string{
		fieldCompleted:   completedYes,
		fieldCompletedAt: formatTime(now),
	}
	m, err := r.store.HSetUnless(ctx, r.keys.Entry(id), fieldCompleted, completedYes, fields)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domreview.Entry{}, fmt.Errorf("entry %s: %w", id, domreview.ErrEntryNotFound)
		}
		return domreview.Entry{}, fmt.Errorf("complete entry %s: %w", id, err)
	}
	return decodeEntry(id, m)
}

// load fetches entries by ID. IDs whose hash is gone are skipped.
func (r *Repo) load(ctx context.Context, ids []string) ([]domreview.Entry, error) {
	if len(ids) == 0 {
		return []domreview.Entry{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.Entry(id)
	}

	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load entries: %w", err)
	}

	entries := make([]domreview.Entry, 0, len(ids))
	for i, m := range hashes {
		if m == nil {
			continue
		}
		e, err := decodeEntry(ids[i], m)
		if err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, nil
}
