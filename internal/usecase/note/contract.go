package note

import (
	"context"

	"github.com/kailas-cloud/notegraph/internal/domain"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
)

// Repository defines the storage contract for notes.
type Repository interface {
	Create(ctx context.Context, n *domnote.Note, schedule []domreview.Entry) error
	Get(ctx context.Context, id string) (domnote.Note, error)
	ListByUser(ctx context.Context, userID string) ([]domnote.Note, error)
	// Update writes n only if the stored embedding version still equals expectedVersion.
	Update(ctx context.Context, n *domnote.Note, expectedVersion int) error
	Delete(ctx context.Context, id string) error
}

// ScheduleReader reads the review entries of a note.
type ScheduleReader interface {
	ListByNote(ctx context.Context, noteID string) ([]domreview.Entry, error)
}

// Embedder vectorizes text into embeddings.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}

// Summarizer produces a summary and tags for a note body.
type Summarizer interface {
	Summarize(ctx context.Context, content string) (domain.Annotation, error)
}
