package note

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	"github.com/kailas-cloud/notegraph/internal/domain/graph"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	"github.com/kailas-cloud/notegraph/internal/domain/vector"
)

// --- Mocks ---

type mockRepo struct {
	created     *domnote.Note
	schedule    []domreview.Entry
	createErr   error
	getResult   domnote.Note
	getErr      error
	listNotes   []domnote.Note
	listErr     error
	getCalls    int
	updated     *domnote.Note
	updateErr   error
	conflicts   int
	expected    []int
	deleteErr   error
	deleteCalls int
}

func (m *mockRepo) Create(_ context.Context, n *domnote.Note, schedule []domreview.Entry) error {
	if m.createErr != nil {
		return m.createErr
	}
	c := *n
	m.created = &c
	m.schedule = schedule
	return nil
}
func (m *mockRepo) Get(_ context.Context, _ string) (domnote.Note, error) {
	m.getCalls++
	return m.getResult, m.getErr
}
func (m *mockRepo) ListByUser(_ context.Context, _ string) ([]domnote.Note, error) {
	return m.listNotes, m.listErr
}
func (m *mockRepo) Update(_ context.Context, n *domnote.Note, expectedVersion int) error {
	m.expected = append(m.expected, expectedVersion)
	if m.conflicts > 0 {
		m.conflicts--
		return domain.ErrConflict
	}
	if m.updateErr != nil {
		return m.updateErr
	}
	c := *n
	m.updated = &c
	return nil
}
func (m *mockRepo) Delete(_ context.Context, _ string) error {
	m.deleteCalls++
	return m.deleteErr
}

type mockSchedules struct {
	entries []domreview.Entry
	err     error
}

func (m *mockSchedules) ListByNote(_ context.Context, _ string) ([]domreview.Entry, error) {
	return m.entries, m.err
}

type mockEmbedder struct {
	result domain.EmbeddingResult
	err    error
	texts  []string
}

func (m *mockEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	m.texts = append(m.texts, text)
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return m.result, nil
}

type mockSummarizer struct {
	result domain.Annotation
	err    error
}

func (m *mockSummarizer) Summarize(_ context.Context, _ string) (domain.Annotation, error) {
	return m.result, m.err
}

var now = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

func sequentialIDs() domreview.IDFunc {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("id-%d", n)
	}
}

func newTestService(repo *mockRepo, sched *mockSchedules, emb *mockEmbedder, sum Summarizer) *Service {
	policy, _ := domreview.NewPolicy(domreview.DefaultOffsets, time.UTC)
	return New(repo, sched, emb, sum, policy, zap.NewNop()).
		WithClock(func() time.Time { return now }).
		WithIDGenerator(sequentialIDs())
}

func storedNote(id, userID string, emb vector.Vector, version int) domnote.Note {
	return domnote.Reconstruct(id, userID, "title "+id, "content "+id, "", nil, now, now, emb, version)
}

// --- Create ---

func TestCreate_Success(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	sum := &mockSummarizer{result: domain.Annotation{Summary: " short ", Tags: []string{"go", "go", "db", "ai", "extra"}}}
	svc := newTestService(repo, &mockSchedules{}, emb, sum)

	d, err := svc.Create(context.Background(), "user-1", "Title", "Body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if d.Note.ID() != "id-1" {
		t.Errorf("note id = %q", d.Note.ID())
	}
	if d.Note.Summary() != "short" {
		t.Errorf("summary = %q", d.Note.Summary())
	}
	if got := d.Note.Tags(); len(got) != 3 || got[0] != "go" || got[1] != "db" || got[2] != "ai" {
		t.Errorf("tags = %v", got)
	}
	if d.Note.Embedding().Dim() != 3 || d.Note.EmbeddingVersion() != 1 {
		t.Errorf("embedding dim=%d version=%d", d.Note.Embedding().Dim(), d.Note.EmbeddingVersion())
	}
	if len(emb.texts) != 1 || emb.texts[0] != "Title\nBody" {
		t.Errorf("embedded texts = %q", emb.texts)
	}

	if repo.created == nil {
		t.Fatal("note not persisted")
	}
	if len(repo.schedule) != 4 {
		t.Fatalf("schedule len = %d", len(repo.schedule))
	}
	for i, days := range domreview.DefaultOffsets {
		e := repo.schedule[i]
		if e.Stage() != i+1 || e.NoteID() != "id-1" || e.UserID() != "user-1" {
			t.Errorf("entry %d = %+v", i, e)
		}
		if want := now.AddDate(0, 0, days); !e.DueAt().Equal(want) {
			t.Errorf("entry %d due %v, want %v", i, e.DueAt(), want)
		}
	}
	if len(d.Schedule) != 4 {
		t.Errorf("detail schedule len = %d", len(d.Schedule))
	}
}

func TestCreate_DegradesOnAIFailure(t *testing.T) {
	repo := &mockRepo{}
	emb := &mockEmbedder{err: domain.ErrAIProviderError}
	sum := &mockSummarizer{err: domain.ErrAIProviderError}
	svc := newTestService(repo, &mockSchedules{}, emb, sum)

	d, err := svc.Create(context.Background(), "user-1", "Title", "Body")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Note.Embedding().Present() || d.Note.EmbeddingVersion() != 0 {
		t.Error("expected note without embedding")
	}
	if d.Note.Summary() != "" || len(d.Note.Tags()) != 0 {
		t.Error("expected note without annotations")
	}
	if repo.created == nil || len(repo.schedule) != 4 {
		t.Error("note and schedule must still be persisted")
	}
}

func TestCreate_NilSummarizer(t *testing.T) {
	repo := &mockRepo{}
	svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{1}}}, nil)

	if _, err := svc.Create(context.Background(), "user-1", "Title", "Body"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	tests := []struct {
		name                   string
		userID, title, content string
	}{
		{"no user", "", "t", "c"},
		{"blank title", "u", "  ", "c"},
		{"no content", "u", "t", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := &mockRepo{}
			svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{}, nil)
			_, err := svc.Create(context.Background(), tt.userID, tt.title, tt.content)
			if !errors.Is(err, domain.ErrInvalidInput) {
				t.Errorf("expected ErrInvalidInput, got %v", err)
			}
			if repo.created != nil {
				t.Error("invalid note persisted")
			}
		})
	}
}

func TestCreate_RepoError(t *testing.T) {
	repo := &mockRepo{createErr: errors.New("db down")}
	svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{}, nil)
	if _, err := svc.Create(context.Background(), "u", "t", "c"); err == nil {
		t.Fatal("expected error")
	}
}

// --- Get / List / Delete ---

func TestGet_OpenScheduleAscending(t *testing.T) {
	done := now
	entries := []domreview.Entry{
		domreview.Reconstruct("e3", "n1", "u", 3, now.AddDate(0, 0, 14), nil),
		domreview.Reconstruct("e1", "n1", "u", 1, now.AddDate(0, 0, 3), &done),
		domreview.Reconstruct("e2", "n1", "u", 2, now.AddDate(0, 0, 7), nil),
	}
	svc := newTestService(&mockRepo{getResult: storedNote("n1", "u", nil, 0)},
		&mockSchedules{entries: entries}, &mockEmbedder{}, nil)

	d, err := svc.Get(context.Background(), "n1")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(d.Schedule) != 2 || d.Schedule[0].ID() != "e2" || d.Schedule[1].ID() != "e3" {
		t.Errorf("schedule = %+v", d.Schedule)
	}
}

func TestGet_NotFound(t *testing.T) {
	svc := newTestService(&mockRepo{getErr: domain.ErrNoteNotFound}, &mockSchedules{}, &mockEmbedder{}, nil)
	if _, err := svc.Get(context.Background(), "x"); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
}

func TestList_RequiresUser(t *testing.T) {
	svc := newTestService(&mockRepo{}, &mockSchedules{}, &mockEmbedder{}, nil)
	if _, err := svc.List(context.Background(), ""); !errors.Is(err, domain.ErrInvalidInput) {
		t.Errorf("expected ErrInvalidInput, got %v", err)
	}
}

func TestList_Success(t *testing.T) {
	notes := []domnote.Note{storedNote("b", "u", nil, 0), storedNote("a", "u", nil, 0)}
	svc := newTestService(&mockRepo{listNotes: notes}, &mockSchedules{}, &mockEmbedder{}, nil)
	got, err := svc.List(context.Background(), "u")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].ID() != "b" {
		t.Errorf("unexpected notes: %v", got)
	}
}

func TestDelete_PropagatesNotFound(t *testing.T) {
	repo := &mockRepo{deleteErr: domain.ErrNoteNotFound}
	svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{}, nil)
	if err := svc.Delete(context.Background(), "x"); !errors.Is(err, domain.ErrNoteNotFound) {
		t.Errorf("expected ErrNoteNotFound, got %v", err)
	}
	if repo.deleteCalls != 1 {
		t.Errorf("delete calls = %d", repo.deleteCalls)
	}
}

// --- Update ---

func TestUpdate_ContentChangeReembeds(t *testing.T) {
	repo := &mockRepo{getResult: storedNote("n1", "u", vector.Vector{1, 0}, 1)}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 1}}}
	svc := newTestService(repo, &mockSchedules{}, emb, nil)

	content := "new body"
	n, err := svc.Update(context.Background(), "n1", nil, &content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Content() != "new body" || n.Title() != "title n1" {
		t.Errorf("unexpected note: title=%q content=%q", n.Title(), n.Content())
	}
	if n.EmbeddingVersion() != 2 || n.Embedding()[1] != 1 {
		t.Errorf("embedding not replaced: version=%d emb=%v", n.EmbeddingVersion(), n.Embedding())
	}
	if repo.updated == nil {
		t.Fatal("update not persisted")
	}
}

func TestUpdate_EmbedFailureDropsStale(t *testing.T) {
	repo := &mockRepo{getResult: storedNote("n1", "u", vector.Vector{1, 0}, 1)}
	svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{err: domain.ErrAIProviderError}, nil)

	title := "renamed"
	n, err := svc.Update(context.Background(), "n1", &title, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if n.Embedding().Present() {
		t.Error("stale embedding kept")
	}
	if n.EmbeddingVersion() != 2 {
		t.Errorf("version = %d, want 2", n.EmbeddingVersion())
	}
}

func TestUpdate_NoChangeSkipsEmbedding(t *testing.T) {
	repo := &mockRepo{getResult: storedNote("n1", "u", vector.Vector{1, 0}, 1)}
	emb := &mockEmbedder{}
	svc := newTestService(repo, &mockSchedules{}, emb, nil)

	title := "title n1"
	n, err := svc.Update(context.Background(), "n1", &title, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(emb.texts) != 0 {
		t.Error("unchanged note was re-embedded")
	}
	if n.EmbeddingVersion() != 1 {
		t.Errorf("version = %d", n.EmbeddingVersion())
	}
}

func TestUpdate_WritesAgainstReadVersion(t *testing.T) {
	repo := &mockRepo{getResult: storedNote("n1", "u", vector.Vector{1, 0}, 4)}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 1}}}
	svc := newTestService(repo, &mockSchedules{}, emb, nil)

	content := "new body"
	n, err := svc.Update(context.Background(), "n1", nil, &content)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(repo.expected) != 1 || repo.expected[0] != 4 {
		t.Errorf("expected versions = %v, want [4]", repo.expected)
	}
	if n.EmbeddingVersion() != 5 {
		t.Errorf("version = %d, want 5", n.EmbeddingVersion())
	}
}

func TestUpdate_ConflictRereads(t *testing.T) {
	repo := &mockRepo{getResult: storedNote("n1", "u", vector.Vector{1, 0}, 1), conflicts: 1}
	emb := &mockEmbedder{result: domain.EmbeddingResult{Embedding: []float32{0, 1}}}
	svc := newTestService(repo, &mockSchedules{}, emb, nil)

	content := "new body"
	if _, err := svc.Update(context.Background(), "n1", nil, &content); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if repo.getCalls != 2 || len(emb.texts) != 2 {
		t.Errorf("gets = %d, embeds = %d, want 2 and 2", repo.getCalls, len(emb.texts))
	}
	if repo.updated == nil || repo.updated.Content() != "new body" {
		t.Error("retried update not persisted")
	}
}

func TestUpdate_ConflictPersists(t *testing.T) {
	repo := &mockRepo{getResult: storedNote("n1", "u", vector.Vector{1, 0}, 1), conflicts: updateAttempts}
	svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{}, nil)

	title := "renamed"
	_, err := svc.Update(context.Background(), "n1", &title, nil)
	if !errors.Is(err, domain.ErrConflict) {
		t.Fatalf("expected ErrConflict, got %v", err)
	}
	if repo.getCalls != updateAttempts || repo.updated != nil {
		t.Errorf("gets = %d, updated = %v", repo.getCalls, repo.updated != nil)
	}
}

func TestUpdate_Errors(t *testing.T) {
	empty := ""
	t.Run("nothing to update", func(t *testing.T) {
		svc := newTestService(&mockRepo{}, &mockSchedules{}, &mockEmbedder{}, nil)
		if _, err := svc.Update(context.Background(), "n1", nil, nil); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
	t.Run("empty content", func(t *testing.T) {
		svc := newTestService(&mockRepo{getResult: storedNote("n1", "u", nil, 0)}, &mockSchedules{}, &mockEmbedder{}, nil)
		if _, err := svc.Update(context.Background(), "n1", nil, &empty); !errors.Is(err, domain.ErrInvalidInput) {
			t.Errorf("expected ErrInvalidInput, got %v", err)
		}
	})
	t.Run("not found", func(t *testing.T) {
		svc := newTestService(&mockRepo{getErr: domain.ErrNoteNotFound}, &mockSchedules{}, &mockEmbedder{}, nil)
		title := "x"
		if _, err := svc.Update(context.Background(), "n1", &title, nil); !errors.Is(err, domain.ErrNoteNotFound) {
			t.Errorf("expected ErrNoteNotFound, got %v", err)
		}
	})
}

// --- Related ---

func TestRelated_RanksAndExcludes(t *testing.T) {
	target := storedNote("t", "u", vector.Vector{1, 0}, 1)
	repo := &mockRepo{
		getResult: target,
		listNotes: []domnote.Note{
			target,
			storedNote("far", "u", vector.Vector{0, 1}, 1),
			storedNote("near", "u", vector.Vector{1, 0.1}, 1),
			storedNote("bare", "u", nil, 0),
			storedNote("opposite", "u", vector.Vector{-1, 0}, 1),
		},
	}
	svc := newTestService(repo, &mockSchedules{}, &mockEmbedder{}, nil)

	got, err := svc.Related(context.Background(), "t", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != 2 || got[0].Node.ID != "near" || got[1].Node.ID != "far" {
		t.Errorf("unexpected related: %+v", got)
	}
}

func TestRelated_DefaultLimitAndScorer(t *testing.T) {
	target := storedNote("t", "u", vector.Vector{1}, 1)
	notes := []domnote.Note{target}
	for i := range 8 {
		notes = append(notes, storedNote(fmt.Sprintf("n%d", i), "u", vector.Vector{1}, 1))
	}
	calls := 0
	scorer := func(a, b graph.Node) (float64, error) {
		calls++
		return graph.CosineScore(a, b)
	}
	svc := newTestService(&mockRepo{getResult: target, listNotes: notes}, &mockSchedules{}, &mockEmbedder{}, nil).
		WithScorer(scorer)

	got, err := svc.Related(context.Background(), "t", 0)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(got) != graph.DefaultRelatedLimit {
		t.Errorf("len = %d, want %d", len(got), graph.DefaultRelatedLimit)
	}
	if calls != 8 {
		t.Errorf("scorer calls = %d", calls)
	}
}

func TestRelated_TargetWithoutEmbedding(t *testing.T) {
	svc := newTestService(&mockRepo{getResult: storedNote("t", "u", nil, 0)}, &mockSchedules{}, &mockEmbedder{}, nil)
	got, err := svc.Related(context.Background(), "t", 5)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got == nil || len(got) != 0 {
		t.Errorf("expected empty list, got %v", got)
	}
}
