package note

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	"github.com/kailas-cloud/notegraph/internal/domain/graph"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
	logpkg "github.com/kailas-cloud/notegraph/internal/logger"
)

// updateAttempts bounds how often Update re-reads a note after losing a write race.
const updateAttempts = 3

// Detail is a note together with its open review entries, due ascending.
type Detail struct {
	Note     domnote.Note
	Schedule []domreview.Entry
}

// Service handles the note lifecycle with automatic summarization and vectorization.
type Service struct {
	repo         Repository
	schedules    ScheduleReader
	embedder     Embedder
	summarizer   Summarizer
	policy       domreview.Policy
	score        graph.ScoreFunc
	relatedLimit int
	now          func() time.Time
	newID        domreview.IDFunc
	logger       *zap.Logger
}

// New creates a note service. summarizer may be nil, in which case notes are stored
// without summary and tags.
func New(
	repo Repository, schedules ScheduleReader, embedder Embedder, summarizer Summarizer,
	policy domreview.Policy, logger *zap.Logger,
) *Service {
	return &Service{
		repo:         repo,
		schedules:    schedules,
		embedder:     embedder,
		summarizer:   summarizer,
		policy:       policy,
		score:        graph.CosineScore,
		relatedLimit: graph.DefaultRelatedLimit,
		now:          time.Now,
		newID:        uuid.NewString,
		logger:       logger,
	}
}

// WithClock overrides the time source.
func (s *Service) WithClock(now func() time.Time) *Service {
	s.now = now
	return s
}

// WithIDGenerator overrides the identifier source for notes and review entries.
func (s *Service) WithIDGenerator(newID domreview.IDFunc) *Service {
	s.newID = newID
	return s
}

// WithScorer sets the similarity function used by Related.
func (s *Service) WithScorer(score graph.ScoreFunc) *Service {
	if score != nil {
		s.score = score
	}
	return s
}

// WithRelatedLimit sets the default number of related notes.
func (s *Service) WithRelatedLimit(limit int) *Service {
	if limit > 0 {
		s.relatedLimit = limit
	}
	return s
}

// Create stores a new note with its summary, tags, embedding and review schedule.
// Summary and embedding failures degrade to an unannotated or unembedded note.
func (s *Service) Create(ctx context.Context, userID, title, content string) (Detail, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(title) == "" || strings.TrimSpace(content) == "" {
		return Detail{}, fmt.Errorf("user_id, title and content are required: %w", domain.ErrInvalidInput)
	}

	now := s.now()
	n, err := domnote.New(s.newID(), userID, title, content, now)
	if err != nil {
		return Detail{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	log := logpkg.FromContext(ctx, s.logger)

	if s.summarizer != nil {
		ann, err := s.summarizer.Summarize(ctx, content)
		if err != nil {
			log.Warn("Note stored without summary", zap.String("note_id", n.ID()), zap.Error(err))
		} else {
			n.SetAnnotations(ann.Summary, ann.Tags)
		}
	}

	if v, ok := s.embed(ctx, log, &n); ok {
		n.SetEmbedding(v)
	}

	schedule := s.policy.Initialize(n.ID(), userID, now, s.newID)
	if err := s.repo.Create(ctx, &n, schedule); err != nil {
		return Detail{}, fmt.Errorf("create note: %w", err)
	}

	return Detail{Note: n, Schedule: domreview.Open(schedule)}, nil
}

// Get returns a note with its open review entries.
func (s *Service) Get(ctx context.Context, id string) (Detail, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get note: %w", err)
	}

	entries, err := s.schedules.ListByNote(ctx, id)
	if err != nil {
		return Detail{}, fmt.Errorf("get schedule: %w", err)
	}

	return Detail{Note: n, Schedule: domreview.Open(entries)}, nil
}

// List returns the user's notes, newest first.
func (s *Service) List(ctx context.Context, userID string) ([]domnote.Note, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, fmt.Errorf("user_id is required: %w", domain.ErrInvalidInput)
	}
	notes, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return notes, nil
}

// Update edits title and/or content. When the embedded text changes the embedding is
// recomputed and replaced; if that fails the stale embedding is dropped. A write that
// loses a race with another update is redone from a fresh read, up to updateAttempts
// times, before domain.ErrConflict is returned.
func (s *Service) Update(ctx context.Context, id string, title, content *string) (domnote.Note, error) {
	if title == nil && content == nil {
		return domnote.Note{}, fmt.Errorf("title or content is required: %w", domain.ErrInvalidInput)
	}

	var err error
	for range updateAttempts {
		var n domnote.Note
		n, err = s.updateOnce(ctx, id, title, content)
		if !errors.Is(err, domain.ErrConflict) {
			return n, err
		}
		logpkg.FromContext(ctx, s.logger).Debug("Note update conflict, retrying", zap.String("note_id", id))
	}
	return domnote.Note{}, err
}

func (s *Service) updateOnce(ctx context.Context, id string, title, content *string) (domnote.Note, error) {
	n, err := s.repo.Get(ctx, id)
	if err != nil {
		return domnote.Note{}, fmt.Errorf("get note: %w", err)
	}
	readVersion := n.EmbeddingVersion()

	changed, err := n.Edit(title, content, s.now())
	if err != nil {
		return domnote.Note{}, fmt.Errorf("%w: %v", domain.ErrInvalidInput, err)
	}

	if changed {
		log := logpkg.FromContext(ctx, s.logger)
		v, _ := s.embed(ctx, log, &n)
		n.SetEmbedding(v)
	}

	if err := s.repo.Update(ctx, &n, readVersion); err != nil {
		return domnote.Note{}, fmt.Errorf("update note: %w", err)
	}
	return n, nil
}

// Delete removes a note and its review schedule.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return nil
}

// Related returns up to limit other notes of the same user, most similar first.
// limit <= 0 uses the configured default. A note without embedding has no related notes.
func (s *Service) Related(ctx context.Context, id string, limit int) ([]graph.Neighbour, error) {
	if limit <= 0 {
		limit = s.relatedLimit
	}

	target, err := s.repo.Get(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get note: %w", err)
	}
	if !target.Embedding().Present() {
		return []graph.Neighbour{}, nil
	}

	notes, err := s.repo.ListByUser(ctx, target.UserID())
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}

	candidates := make([]graph.Node, 0, len(notes))
	for i := range notes {
		candidates = append(candidates, notes[i].GraphNode())
	}

	return graph.Related(target.GraphNode(), candidates, limit, s.score), nil
}

func (s *Service) embed(ctx context.Context, log *zap.Logger, n *domnote.Note) (vector.Vector, bool) {
	result, err := s.embedder.Embed(ctx, n.EmbeddingText())
	if err != nil {
		if errors.Is(err, context.Canceled) {
			log.Debug("Embedding canceled", zap.String("note_id", n.ID()))
		} else {
			log.Warn("Note stored without embedding", zap.String("note_id", n.ID()), zap.Error(err))
		}
		return nil, false
	}
	return vector.Vector(result.Embedding), len(result.Embedding) > 0
}
