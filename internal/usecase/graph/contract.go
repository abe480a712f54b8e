package graph

import (
	"context"

	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
)

// NoteLister lists a user's notes, newest first.
type NoteLister interface {
	ListByUser(ctx context.Context, userID string) ([]domnote.Note, error)
}
