package chi

import (
	"time"

	"github.com/kailas-cloud/notegraph/internal/domain/graph"
	domnote "github.com/kailas-cloud/notegraph/internal/domain/note"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	graphuc "github.com/kailas-cloud/notegraph/internal/usecase/graph"
	noteuc "github.com/kailas-cloud/notegraph/internal/usecase/note"
	reviewuc "github.com/kailas-cloud/notegraph/internal/usecase/review"
)

// ErrorResponseCode is the machine-readable error code of an API error.
type ErrorResponseCode string

// Error codes.
const (
	ErrorResponseCodeBadRequest       ErrorResponseCode = "bad_request"
	ErrorResponseCodeValidationFailed ErrorResponseCode = "validation_failed"
	ErrorResponseCodeUnauthorized     ErrorResponseCode = "unauthorized"
	ErrorResponseCodeNoteNotFound     ErrorResponseCode = "note_not_found"
	ErrorResponseCodeEntryNotFound    ErrorResponseCode = "review_entry_not_found"
	ErrorResponseCodeNotFound         ErrorResponseCode = "not_found"
	ErrorResponseCodeConflict         ErrorResponseCode = "conflict"
	ErrorResponseCodeAIProviderError  ErrorResponseCode = "ai_provider_error"
	ErrorResponseCodeInternalError    ErrorResponseCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorResponseCode `json:"code"`
	Message string            `json:"message"`
}

// CreateNoteRequest is the body of POST /notes.
type CreateNoteRequest struct {
	UserID  string `json:"user_id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// UpdateNoteRequest is the body of PATCH /notes/{id}. Omitted fields are left unchanged.
type UpdateNoteRequest struct {
	Title   *string `json:"title,omitempty"`
	Content *string `json:"content,omitempty"`
}

// NoteResponse is a note as returned by the API.
type NoteResponse struct {
	ID               string    `json:"id"`
	UserID           string    `json:"user_id"`
	Title            string    `json:"title"`
	Content          string    `json:"content"`
	Summary          string    `json:"summary"`
	Tags             []string  `json:"tags"`
	HasEmbedding     bool      `json:"has_embedding"`
	EmbeddingVersion int       `json:"embedding_version"`
	CreatedAt        time.Time `json:"created_at"`
	UpdatedAt        time.Time `json:"updated_at"`
}

// NoteDetailResponse is a note with its open review entries.
type NoteDetailResponse struct {
	NoteResponse
	Schedule []ReviewEntryResponse `json:"schedule"`
}

// NoteListResponse wraps a list of notes.
type NoteListResponse struct {
	Items []NoteResponse `json:"items"`
}

// ReviewEntryResponse is one review stage.
type ReviewEntryResponse struct {
	ID          string     `json:"id"`
	NoteID      string     `json:"note_id"`
	Stage       int        `json:"stage"`
	State       string     `json:"state"`
	DueAt       time.Time  `json:"due_at"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
}

// DueReviewResponse is a due entry with the note it reviews.
type DueReviewResponse struct {
	ReviewEntryResponse
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// DueListResponse wraps the due queue.
type DueListResponse struct {
	Items []DueReviewResponse `json:"items"`
}

// NodeResponse is a graph node.
type NodeResponse struct {
	ID    string   `json:"id"`
	Title string   `json:"title"`
	Tags  []string `json:"tags"`
}

// EdgeResponse is a graph edge.
type EdgeResponse struct {
	Source     string  `json:"source"`
	Target     string  `json:"target"`
	Similarity float64 `json:"similarity"`
	Highlight  bool    `json:"highlight"`
}

// GraphResponse is the body of GET /graph.
type GraphResponse struct {
	Nodes              []NodeResponse `json:"nodes"`
	Edges              []EdgeResponse `json:"edges"`
	InsufficientData   bool           `json:"insufficient_data"`
	SkippedPairs       int            `json:"skipped_pairs"`
	LinkThreshold      float64        `json:"link_threshold"`
	HighlightThreshold float64        `json:"highlight_threshold"`
}

// RelatedNoteResponse is a neighbour of a note.
type RelatedNoteResponse struct {
	NodeResponse
	Similarity float64 `json:"similarity"`
}

// RelatedListResponse wraps related notes.
type RelatedListResponse struct {
	Items []RelatedNoteResponse `json:"items"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}

func noteToResponse(n *domnote.Note) NoteResponse {
	tags := n.Tags()
	if tags == nil {
		tags = []string{}
	}
	return NoteResponse{
		ID:               n.ID(),
		UserID:           n.UserID(),
		Title:            n.Title(),
		Content:          n.Content(),
		Summary:          n.Summary(),
		Tags:             tags,
		HasEmbedding:     n.Embedding().Present(),
		EmbeddingVersion: n.EmbeddingVersion(),
		CreatedAt:        n.CreatedAt(),
		UpdatedAt:        n.UpdatedAt(),
	}
}

func detailToResponse(d noteuc.Detail) NoteDetailResponse {
	schedule := make([]ReviewEntryResponse, len(d.Schedule))
	for i, e := range d.Schedule {
		schedule[i] = entryToResponse(e)
	}
	return NoteDetailResponse{NoteResponse: noteToResponse(&d.Note), Schedule: schedule}
}

func entryToResponse(e domreview.Entry) ReviewEntryResponse {
	return ReviewEntryResponse{
		ID:          e.ID(),
		NoteID:      e.NoteID(),
		Stage:       e.Stage(),
		State:       string(e.State()),
		DueAt:       e.DueAt(),
		CompletedAt: e.CompletedAt(),
	}
}

func dueToResponse(d reviewuc.Due) DueReviewResponse {
	tags := d.Note.Tags()
	if tags == nil {
		tags = []string{}
	}
	return DueReviewResponse{
		ReviewEntryResponse: entryToResponse(d.Entry),
		Title:               d.Note.Title(),
		Tags:                tags,
	}
}

func nodeToResponse(n graph.NodeView) NodeResponse {
	tags := n.Tags
	if tags == nil {
		tags = []string{}
	}
	return NodeResponse{ID: n.ID, Title: n.Title, Tags: tags}
}

func graphToResponse(v graphuc.View) GraphResponse {
	nodes := make([]NodeResponse, len(v.Nodes))
	for i, n := range v.Nodes {
		nodes[i] = nodeToResponse(n)
	}
	edges := make([]EdgeResponse, len(v.Edges))
	for i, e := range v.Edges {
		edges[i] = EdgeResponse{
			Source:     e.Source,
			Target:     e.Target,
			Similarity: e.Similarity,
			Highlight:  e.Similarity > v.HighlightThreshold,
		}
	}
	return GraphResponse{
		Nodes:              nodes,
		Edges:              edges,
		InsufficientData:   v.InsufficientData(),
		SkippedPairs:       len(v.Skipped),
		LinkThreshold:      v.LinkThreshold,
		HighlightThreshold: v.HighlightThreshold,
	}
}
