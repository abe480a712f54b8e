package note

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/kailas-cloud/notegraph/internal/db"
	"github.com/kailas-cloud/notegraph/internal/domain"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/repository/keyspace"
	reviewrepo "github.com/kailas-cloud/notegraph/internal/repository/review"
)

// store is the consumer interface for notes (ISP).
type store interface {
	HSetIfEqual(ctx context.Context, key, guard, expected string, fields map[string]string) error
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ZRevRange(ctx context.Context, key string) ([]string, error)
	SMembers(ctx context.Context, key string) ([]string, error)
	ExecAtomic(ctx context.Context, b *db.WriteBatch) error
}

// Repo implements usecase/note.Repository.
type Repo struct {
	store store
	keys  keyspace.Keyspace
}

// New creates a note repository.
func New(s store, keys keyspace.Keyspace) *Repo {
	return &Repo{store: s, keys: keys}
}

// Create stores a note together with its review schedule in one transaction.
func (r *Repo) Create(ctx context.Context, n *domnote.Note, schedule []domreview.Entry) error {
	fields, err := buildHashFields(n)
	if err != nil {
		return err
	}

	b := db.NewWriteBatch().
		HSet(r.keys.Note(n.ID()), fields).
		ZAdd(r.keys.UserNotes(n.UserID()), float64(n.CreatedAt().UnixMilli()), n.ID())

	ids := make([]string, 0, len(schedule))
	for _, e := range schedule {
		b.HSet(r.keys.Entry(e.ID()), reviewrepo.EncodeEntry(e)).
			ZAdd(r.keys.UserDue(e.UserID()), reviewrepo.DueScore(e), e.ID())
		ids = append(ids, e.ID())
	}
	b.SAdd(r.keys.NoteEntries(n.ID()), ids...)

	if err := r.store.ExecAtomic(ctx, b); err != nil {
		return fmt.Errorf("create note %s: %w", n.ID(), err)
	}
	return nil
}

// Get returns a note by ID.
func (r *Repo) Get(ctx context.Context, id string) (domnote.Note, error) {
	m, err := r.store.HGetAll(ctx, r.keys.Note(id))
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return domnote.Note{}, domain.ErrNoteNotFound
		}
		return domnote.Note{}, fmt.Errorf("get note %s: %w", id, err)
	}
	return parseHashFields(id, m)
}

// ListByUser returns the user's notes, newest first.
func (r *Repo) ListByUser(ctx context.Context, userID string) ([]domnote.Note, error) {
	ids, err := r.store.ZRevRange(ctx, r.keys.UserNotes(userID))
	if err != nil {
		return nil, fmt.Errorf("list notes of user %s: %w", userID, err)
	}
	if len(ids) == 0 {
		return []domnote.Note{}, nil
	}

	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = r.keys.Note(id)
	}
	hashes, err := r.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("load notes of user %s: %w", userID, err)
	}

	notes := make([]domnote.Note, 0, len(ids))
	for i, m := range hashes {
		// Index entry outlived its hash.
		if m == nil {
			continue
		}
		n, err := parseHashFields(ids[i], m)
		if err != nil {
			return nil, err
		}
		notes = append(notes, n)
	}
	return notes, nil
}

// Update overwrites an existing note, provided its stored embedding version is still
// expectedVersion. A missing note returns domain.ErrNoteNotFound, a newer stored
// version returns domain.ErrConflict.
func (r *Repo) Update(ctx context.Context, n *domnote.Note, expectedVersion int) error {
	fields, err := buildHashFields(n)
	if err != nil {
		return err
	}

	err = r.store.HSetIfEqual(ctx, r.keys.Note(n.ID()), fieldEmbeddingVersion, strconv.Itoa(expectedVersion), fields)
	switch {
	case errors.Is(err, db.ErrKeyNotFound):
		return domain.ErrNoteNotFound
	case errors.Is(err, db.ErrGuardFailed):
		return fmt.Errorf("note %s at version %d: %w", n.ID(), expectedVersion, domain.ErrConflict)
	case err != nil:
		return fmt.Errorf("update note %s: %w", n.ID(), err)
	}
	return nil
}

// Delete removes a note, its review entries and every index membership in one transaction.
func (r *Repo) Delete(ctx context.Context, id string) error {
	n, err := r.Get(ctx, id)
	if err != nil {
		return err
	}

	entryIDs, err := r.store.SMembers(ctx, r.keys.NoteEntries(id))
	if err != nil {
		return fmt.Errorf("list entries of note %s: %w", id, err)
	}

	keys := make([]string, 0, len(entryIDs)+2)
	keys = append(keys, r.keys.Note(id), r.keys.NoteEntries(id))
	for _, eid := range entryIDs {
		keys = append(keys, r.keys.Entry(eid))
	}

	b := db.NewWriteBatch().
		Del(keys...).
		ZRem(r.keys.UserNotes(n.UserID()), id).
		ZRem(r.keys.UserDue(n.UserID()), entryIDs...)

	if err := r.store.ExecAtomic(ctx, b); err != nil {
		return fmt.Errorf("delete note %s: %w", id, err)
	}
	return nil
}
