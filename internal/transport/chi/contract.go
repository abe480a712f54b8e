package chi

import (
	"context"

	"github.com/kailas-cloud/notegraph/internal/domain/graph"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	graphuc "github.com/kailas-cloud/notegraph/internal/usecase/graph"
	healthuc "github.com/kailas-cloud/notegraph/internal/usecase/health"
	noteuc "github.com/kailas-cloud/notegraph/internal/usecase/note"
	reviewuc "github.com/kailas-cloud/notegraph/internal/usecase/review"
)

// NoteService is the note use case consumed by the HTTP layer.
type NoteService interface {
	Create(ctx context.Context, userID, title, content string) (noteuc.Detail, error)
	Get(ctx context.Context, id string) (noteuc.Detail, error)
	List(ctx context.Context, userID string) ([]domnote.Note, error)
	Update(ctx context.Context, id string, title, content *string) (domnote.Note, error)
	Delete(ctx context.Context, id string) error
	Related(ctx context.Context, id string, limit int) ([]graph.Neighbour, error)
}

// GraphService builds per-user graphs.
type GraphService interface {
	Build(ctx context.Context, userID string) (graphuc.View, error)
}

// ReviewService serves the review queue.
type ReviewService interface {
	DueToday(ctx context.Context, userID string) ([]reviewuc.Due, error)
	Complete(ctx context.Context, id string) (domreview.Entry, error)
}

// HealthService aggregates component health.
type HealthService interface {
	Check(ctx context.Context) healthuc.Report
}

var (
	_ NoteService   = (*noteuc.Service)(nil)
	_ GraphService  = (*graphuc.Service)(nil)
	_ ReviewService = (*reviewuc.Service)(nil)
	_ HealthService = (*healthuc.Service)(nil)
)
