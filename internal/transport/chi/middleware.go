package chi

import (
	"errors"
	"net/http"
	"time"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/notegraph/internal/domain"
	logpkg "github.com/kailas-cloud/notegraph/internal/logger"
)

// recoverJSON turns a handler panic into a logged 500 with the standard error body.
// http.ErrAbortHandler keeps its net/http meaning and is re-raised.
func recoverJSON(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if err, ok := rec.(error); ok && errors.Is(err, http.ErrAbortHandler) {
					panic(rec)
				}
				logger.Error("handler panic",
					zap.Any("panic", rec),
					zap.String("method", r.Method),
					zap.String("path", r.URL.Path),
					zap.Stack("stacktrace"),
				)
				writeError(w, http.StatusInternalServerError, ErrorResponseCodeInternalError, "internal error")
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// requestLog writes one "http_request" line per request once the handler returns.
// It echoes the chi request id as X-Request-ID, stores a request-scoped logger in the
// context and installs the AI usage collector whose totals end up on the line.
func requestLog(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			began := time.Now()

			id := chiMiddleware.GetReqID(r.Context())
			if id != "" {
				w.Header().Set("X-Request-ID", id)
			}
			log := logger.With(zap.String("request_id", id))

			ctx, usage := domain.NewContextWithUsage(logpkg.NewContext(r.Context(), log))
			rw := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(rw, r.WithContext(ctx))

			log.Info("http_request", lineFields(r, rw, usage, time.Since(began))...)
		})
	}
}

func lineFields(r *http.Request, rw chiMiddleware.WrapResponseWriter, usage *domain.AIUsage, took time.Duration) []zap.Field {
	fields := make([]zap.Field, 0, 11)
	fields = append(fields,
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", rw.Status()),
		zap.Duration("latency", took),
		zap.Int("response_bytes", rw.BytesWritten()),
		zap.Int64("content_length", r.ContentLength),
		zap.String("ip", r.RemoteAddr),
		zap.String("user_agent", r.UserAgent()),
	)
	if uid := r.URL.Query().Get("user_id"); uid != "" {
		fields = append(fields, zap.String("user_id", uid))
	}
	if usage.Embedded {
		fields = append(fields, zap.Int("embedding_tokens", usage.EmbeddingTokens))
	}
	if usage.Summarized {
		fields = append(fields, zap.Int("summary_tokens", usage.SummaryTokens))
	}
	return fields
}
