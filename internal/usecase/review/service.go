package review

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	logpkg "github.com/kailas-cloud/notegraph/internal/logger"
	"github.com/kailas-cloud/notegraph/internal/metrics"
)

// Due is a pending entry together with the note it reviews.
type Due struct {
	Entry domreview.Entry
	Note  domnote.Note
}

// Service serves the daily review queue.
type Service struct {
	repo   Repository
	notes  NoteReader
	policy domreview.Policy
	now    func() time.Time
	logger *zap.Logger
}

// New creates a review service.
func New(repo Repository, notes NoteReader, policy domreview.Policy, logger *zap.Logger) *Service {
	return &Service{repo: repo, notes: notes, policy: policy, now: time.Now, logger: logger}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// DueToday returns the user's pending entries due on the current calendar day in the
// policy location, ordered by due time. Entries whose note is gone are left out.
func (s *Service) DueToday(ctx context.Context, userID string) ([]Due, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user_id is required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	start, end := domreview.DayWindow(now, s.policy.Location())

	candidates, err := s.repo.DueCandidates(ctx, userID, start, end)
	if err != nil {
		return nil, fmt.Errorf("due candidates: %w", err)
	}

	due := s.policy.DueToday(candidates, now)
	log := logpkg.FromContext(ctx, s.logger)

	out := make([]Due, 0, len(due))
	for _, e := range due {
		n, err := s.notes.Get(ctx, e.NoteID())
		if err != nil {
			if errors.Is(err, domain.ErrNoteNotFound) {
				log.Debug("Due entry without note", zap.String("entry_id", e.ID()), zap.String("note_id", e.NoteID()))
				continue
			}
			return nil, fmt.Errorf("note of entry %s: %w", e.ID(), err)
		}
		out = append(out, Due{Entry: e, Note: n})
	}

	metrics.ReviewDueEntries.Observe(float64(len(out)))
	return out, nil
}

// Complete marks an entry reviewed. Completing it again returns the entry with its
// first completion time.
func (s *Service) Complete(ctx context.Context, id string) (domreview.Entry, error) {
	if strings.TrimSpace(id) == "" {
		return domreview.Entry{}, fmt.Errorf("entry id is required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	e, err := s.repo.Complete(ctx, id, now)
	if err != nil {
		return domreview.Entry{}, fmt.Errorf("complete review: %w", err)
	}

	result := "completed"
	if at := e.CompletedAt(); at != nil && !at.Equal(now) {
		result = "already_completed"
	}
	metrics.ReviewCompletionsTotal.WithLabelValues(result).Inc()

	logpkg.FromContext(ctx, s.logger).Info("Review completed",
		zap.String("entry_id", id),
		zap.String("note_id", e.NoteID()),
		zap.Int("stage", e.Stage()),
		zap.String("result", result),
	)
	return e, nil
}
