package graph

import (
	"context"
	"errors"
	"math"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	domgraph "github.com/kailas-cloud/notegraph/internal/domain/graph"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

// --- Mocks ---

type mockNoteLister struct {
	notes []domnote.Note
	err   error
}

func (m *mockNoteLister) ListByUser(_ context.Context, _ string) ([]domnote.Note, error) {
	return m.notes, m.err
}

var base = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func testNote(id string, emb vector.Vector, version int) domnote.Note {
	return domnote.Reconstruct(id, "user-1", "title "+id, "content", "", nil, base, base, emb, version)
}

func unit(deg float64) vector.Vector {
	rad := deg * math.Pi / 180
	return vector.Vector{float32(math.Cos(rad)), float32(math.Sin(rad))}
}

// --- Service tests ---

func TestBuild_EdgesAndThresholds(t *testing.T) {
	lister := &mockNoteLister{notes: []domnote.Note{
		testNote("a", unit(0), 1),
		testNote("b", unit(30), 1),  // 0.866 to a
		testNote("c", unit(120), 1), // -0.5 to a, 0 to b
		testNote("d", nil, 0),       // no embedding
	}}
	svc := New(lister, domgraph.NewBuilder(0.5), zap.NewNop()).WithHighlightThreshold(0.8)

	view, err := svc.Build(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if len(view.Nodes) != 4 {
		t.Fatalf("expected 4 nodes, got %d", len(view.Nodes))
	}
	if len(view.Edges) != 1 || view.Edges[0].Source != "a" || view.Edges[0].Target != "b" {
		t.Fatalf("unexpected edges: %+v", view.Edges)
	}
	if view.LinkThreshold != 0.5 || view.HighlightThreshold != 0.8 {
		t.Errorf("thresholds = %v / %v", view.LinkThreshold, view.HighlightThreshold)
	}
	if view.InsufficientData() {
		t.Error("4 nodes is sufficient data")
	}
}

func TestBuild_InsufficientData(t *testing.T) {
	svc := New(&mockNoteLister{notes: []domnote.Note{testNote("a", unit(0), 1)}},
		domgraph.NewBuilder(0.5), zap.NewNop())

	view, err := svc.Build(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !view.InsufficientData() {
		t.Error("expected insufficient data for one note")
	}
	if view.Edges == nil {
		t.Error("edges must be an empty list, not nil")
	}
}

func TestBuild_SkipsMismatchedDimensions(t *testing.T) {
	svc := New(&mockNoteLister{notes: []domnote.Note{
		testNote("a", unit(0), 1),
		testNote("b", vector.Vector{1, 0, 0}, 1),
		testNote("c", unit(10), 1),
	}}, domgraph.NewBuilder(0.5), zap.NewNop())

	view, err := svc.Build(context.Background(), "user-1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(view.Skipped) != 2 {
		t.Fatalf("expected 2 skipped pairs, got %d", len(view.Skipped))
	}
	if !errors.Is(view.Skipped[0].Err, domain.ErrDimensionMismatch) {
		t.Errorf("unexpected skip reason: %v", view.Skipped[0].Err)
	}
	if len(view.Edges) != 1 || view.Edges[0].Source != "a" || view.Edges[0].Target != "c" {
		t.Errorf("unexpected edges: %+v", view.Edges)
	}
}

func TestBuild_MissingUser(t *testing.T) {
	svc := New(&mockNoteLister{}, domgraph.NewBuilder(0.5), zap.NewNop())
	if _, err := svc.Build(context.Background(), " "); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestBuild_ListError(t *testing.T) {
	svc := New(&mockNoteLister{err: errors.New("down")}, domgraph.NewBuilder(0.5), zap.NewNop())
	if _, err := svc.Build(context.Background(), "user-1"); err == nil {
		t.Fatal("expected error")
	}
}
