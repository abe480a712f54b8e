package chi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/oapi-codegen/runtime"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	"github.com/kailas-cloud/notegraph/internal/metrics"
	healthuc "github.com/kailas-cloud/notegraph/internal/usecase/health"
)

// maxBodyBytes caps request bodies: note content plus JSON overhead.
const maxBodyBytes = 256 << 10

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// Server is the HTTP API over the note, graph and review use cases.
type Server struct {
	notes         NoteService
	graph         GraphService
	reviews       ReviewService
	health        HealthService
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(
	notes NoteService,
	graph GraphService,
	reviews ReviewService,
	health HealthService,
	logger *zap.Logger,
) *Server {
	s := &Server{
		notes:   notes,
		graph:   graph,
		reviews: reviews,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNoteNotFound, http.StatusNotFound, ErrorResponseCodeNoteNotFound),
		sentinelHandler(domain.ErrEntryNotFound, http.StatusNotFound, ErrorResponseCodeEntryNotFound),
		sentinelHandler(domain.ErrConflict, http.StatusConflict, ErrorResponseCodeConflict),
		sentinelHandler(domain.ErrInvalidInput, http.StatusBadRequest, ErrorResponseCodeValidationFailed),
		sentinelHandler(domain.ErrAIProviderError, http.StatusBadGateway, ErrorResponseCodeAIProviderError),
	}
	return s
}

// Router mounts the API with the standard middleware stack.
func (s *Server) Router(apiKeys []string) http.Handler {
	r := chi.NewRouter()
	r.Use(recoverJSON(s.logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(requestLog(s.logger))
	r.Use(BearerAuthMiddleware(apiKeys))
	r.Use(metrics.Middleware())

	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)

	r.Route("/notes", func(r chi.Router) {
		r.Post("/", s.CreateNote)
		r.Get("/", s.ListNotes)
		r.Get("/{id}", s.GetNote)
		r.Patch("/{id}", s.UpdateNote)
		r.Delete("/{id}", s.DeleteNote)
		r.Get("/{id}/related", s.RelatedNotes)
	})
	r.Get("/graph", s.GetGraph)
	r.Get("/reviews/due", s.DueReviews)
	r.Post("/reviews/{id}/complete", s.CompleteReview)

	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusNotFound, ErrorResponseCodeNotFound, "route not found")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		writeError(w, http.StatusMethodNotAllowed, ErrorResponseCodeBadRequest, "method not allowed")
	})
	return r
}

// CreateNote handles POST /notes.
func (s *Server) CreateNote(w http.ResponseWriter, r *http.Request) {
	var req CreateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	d, err := s.notes.Create(r.Context(), req.UserID, req.Title, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	w.Header().Set("Location", "/notes/"+d.Note.ID())
	setUsageHeaders(w, domain.UsageFromContext(r.Context()))
	writeJSON(w, http.StatusCreated, detailToResponse(d))
}

// ListNotes handles GET /notes?user_id=.
func (s *Server) ListNotes(w http.ResponseWriter, r *http.Request) {
	userID, ok := requiredQuery(w, r, "user_id")
	if !ok {
		return
	}

	notes, err := s.notes.List(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]NoteResponse, len(notes))
	for i := range notes {
		items[i] = noteToResponse(&notes[i])
	}
	writeJSON(w, http.StatusOK, NoteListResponse{Items: items})
}

// GetNote handles GET /notes/{id}.
func (s *Server) GetNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	d, err := s.notes.Get(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, detailToResponse(d))
}

// UpdateNote handles PATCH /notes/{id}.
func (s *Server) UpdateNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}
	var req UpdateNoteRequest
	if !decodeBody(w, r, &req) {
		return
	}

	n, err := s.notes.Update(r.Context(), id, req.Title, req.Content)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	setUsageHeaders(w, domain.UsageFromContext(r.Context()))
	writeJSON(w, http.StatusOK, noteToResponse(&n))
}

// DeleteNote handles DELETE /notes/{id}.
func (s *Server) DeleteNote(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	if err := s.notes.Delete(r.Context(), id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// RelatedNotes handles GET /notes/{id}/related?limit=.
func (s *Server) RelatedNotes(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	var limit *int
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &limit); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid limit")
		return
	}
	if limit != nil && *limit < 1 {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeValidationFailed, "limit must be positive")
		return
	}

	related, err := s.notes.Related(r.Context(), id, derefInt(limit))
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]RelatedNoteResponse, len(related))
	for i, n := range related {
		items[i] = RelatedNoteResponse{NodeResponse: nodeToResponse(n.Node), Similarity: n.Similarity}
	}
	writeJSON(w, http.StatusOK, RelatedListResponse{Items: items})
}

// GetGraph handles GET /graph?user_id=.
func (s *Server) GetGraph(w http.ResponseWriter, r *http.Request) {
	userID, ok := requiredQuery(w, r, "user_id")
	if !ok {
		return
	}

	view, err := s.graph.Build(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, graphToResponse(view))
}

// DueReviews handles GET /reviews/due?user_id=.
func (s *Server) DueReviews(w http.ResponseWriter, r *http.Request) {
	userID, ok := requiredQuery(w, r, "user_id")
	if !ok {
		return
	}

	due, err := s.reviews.DueToday(r.Context(), userID)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	items := make([]DueReviewResponse, len(due))
	for i, d := range due {
		items[i] = dueToResponse(d)
	}
	writeJSON(w, http.StatusOK, DueListResponse{Items: items})
}

// CompleteReview handles POST /reviews/{id}/complete.
func (s *Server) CompleteReview(w http.ResponseWriter, r *http.Request) {
	id, ok := pathParam(w, r, "id")
	if !ok {
		return
	}

	e, err := s.reviews.Complete(r.Context(), id)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, entryToResponse(e))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

func pathParam(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), &v,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil || v == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "invalid path parameter "+name)
		return "", false
	}
	return v, true
}

func requiredQuery(w http.ResponseWriter, r *http.Request, name string) (string, bool) {
	var v string
	if err := runtime.BindQueryParameter("form", true, true, name, r.URL.Query(), &v); err != nil || v == "" {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, name+" is required")
		return "", false
	}
	return v, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		writeError(w, http.StatusBadRequest, ErrorResponseCodeBadRequest, "Invalid request body: "+err.Error())
		return false
	}
	return true
}

func derefInt(p *int) int {
	if p == nil {
		return 0
	}
	return *p
}

func setUsageHeaders(w http.ResponseWriter, usage *domain.AIUsage) {
	if usage == nil {
		return
	}
	if usage.Embedded {
		w.Header().Set("X-Embedding-Tokens", strconv.Itoa(usage.EmbeddingTokens))
	}
	if usage.Summarized {
		w.Header().Set("X-Summary-Tokens", strconv.Itoa(usage.SummaryTokens))
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorResponseCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNoteNotFound,
		domain.ErrEntryNotFound,
		domain.ErrConflict,
		domain.ErrInvalidInput,
		domain.ErrAIProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorResponseCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
}
