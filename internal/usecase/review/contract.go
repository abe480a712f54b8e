package review

import (
	"context"
	"time"

	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
)

// Repository defines the storage contract for review entries.
type Repository interface {
	DueCandidates(ctx context.Context, userID string, start, end time.Time) ([]domreview.Entry, error)
	Complete(ctx context.Context, id string, now time.Time) (domreview.Entry, error)
}

// NoteReader resolves the note a due entry belongs to.
type NoteReader interface {
	Get(ctx context.Context, id string) (domnote.Note, error)
}
