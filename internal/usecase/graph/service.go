package graph

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	domgraph "github.com/kailas-cloud/notegraph/internal/domain/graph"
	logpkg "github.com/kailas-cloud/notegraph/internal/logger"
	"github.com/kailas-cloud/notegraph/internal/metrics"
)

// DefaultHighlightThreshold is the similarity above which clients emphasize an edge.
const DefaultHighlightThreshold = 0.7

// View is a built graph plus the thresholds a client needs to render it.
type View struct {
	domgraph.Result
	LinkThreshold      float64
	HighlightThreshold float64
}

// Service builds per-user similarity graphs.
type Service struct {
	notes     NoteLister
	builder   *domgraph.Builder
	highlight float64
	logger    *zap.Logger
}

// New creates a graph service.
func New(notes NoteLister, builder *domgraph.Builder, logger *zap.Logger) *Service {
	return &Service{
		notes:     notes,
		builder:   builder,
		highlight: DefaultHighlightThreshold,
		logger:    logger,
	}
}

// WithHighlightThreshold sets the presentation threshold passed through to clients.
func (s *Service) WithHighlightThreshold(t float64) *Service {
	s.highlight = t
	return s
}

// Build loads the user's notes newest first and builds their similarity graph.
func (s *Service) Build(ctx context.Context, userID string) (View, error) {
	if strings.TrimSpace(userID) == "" {
		return View{}, fmt.Errorf("user_id is required: %w", domain.ErrInvalidInput)
	}

	notes, err := s.notes.ListByUser(ctx, userID)
	if err != nil {
		return View{}, fmt.Errorf("list notes: %w", err)
	}

	nodes := make([]domgraph.Node, len(notes))
	for i := range notes {
		nodes[i] = notes[i].GraphNode()
	}

	start := time.Now()
	res := s.builder.Build(nodes)
	duration := time.Since(start)

	metrics.GraphBuildDuration.Observe(duration.Seconds())
	metrics.GraphNodes.Observe(float64(len(res.Nodes)))
	metrics.GraphEdgesTotal.Add(float64(len(res.Edges)))
	metrics.GraphSkippedPairsTotal.Add(float64(len(res.Skipped)))

	log := logpkg.FromContext(ctx, s.logger)
	if len(res.Skipped) > 0 {
		first := res.Skipped[0]
		log.Warn("Graph pairs skipped",
			zap.String("user_id", userID),
			zap.Int("skipped", len(res.Skipped)),
			zap.String("first_source", first.Source),
			zap.String("first_target", first.Target),
			zap.Error(first.Err),
		)
	}
	log.Debug("Graph built",
		zap.String("user_id", userID),
		zap.Int("nodes", len(res.Nodes)),
		zap.Int("edges", len(res.Edges)),
		zap.Duration("duration", duration),
	)

	return View{
		Result:             res,
		LinkThreshold:      s.builder.LinkThreshold(),
		HighlightThreshold: s.highlight,
	}, nil
}
