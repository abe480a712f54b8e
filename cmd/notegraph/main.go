package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/notegraph/internal/config"
	dbRedis "github.com/kailas-cloud/notegraph/internal/db/redis"
	"github.com/kailas-cloud/notegraph/internal/domain"
	domgraph "github.com/kailas-cloud/notegraph/internal/domain/graph"
	domreview "github.com/kailas-cloud/notegraph/internal/domain/review"
	logpkg "github.com/kailas-cloud/notegraph/internal/logger"
	"github.com/kailas-cloud/notegraph/internal/metrics"
	"github.com/kailas-cloud/notegraph/internal/repository/embcache"
	"github.com/kailas-cloud/notegraph/internal/repository/keyspace"
	noterepo "github.com/kailas-cloud/notegraph/internal/repository/note"
	reviewrepo "github.com/kailas-cloud/notegraph/internal/repository/review"
	chiTransport "github.com/kailas-cloud/notegraph/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/notegraph/internal/transport/openai"
	aiuc "github.com/kailas-cloud/notegraph/internal/usecase/ai"
	graphuc "github.com/kailas-cloud/notegraph/internal/usecase/graph"
	healthuc "github.com/kailas-cloud/notegraph/internal/usecase/health"
	noteuc "github.com/kailas-cloud/notegraph/internal/usecase/note"
	reviewuc "github.com/kailas-cloud/notegraph/internal/usecase/review"
	"github.com/kailas-cloud/notegraph/internal/version"
)

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting notegraph API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
		DB:       cfg.Database.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	metrics.RegisterAIMetrics()
	metrics.RegisterDomainMetrics()

	keys := keyspace.New(cfg.Storage.KeyPrefix)

	loc, err := cfg.Review.Location()
	if err != nil {
		logger.Fatal("Invalid review timezone", zap.Error(err))
	}
	policy, err := domreview.NewPolicy(cfg.Review.OffsetsDays, loc)
	if err != nil {
		logger.Fatal("Invalid review policy", zap.Error(err))
	}

	baseEmbedder := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.AI.APIKey,
		BaseURL:    cfg.AI.BaseURL,
		Model:      cfg.AI.EmbeddingModel,
		Dimensions: cfg.AI.EmbeddingDimensions,
		Provider:   cfg.AI.Provider,
		Logger:     logger,
	})
	embedder := buildEmbedder(cfg.AI, baseEmbedder, store, keys, logger)

	// Pass a nil interface, not a typed nil pointer, when summaries are off.
	var summarizer noteuc.Summarizer
	if cfg.AI.SummarizeEnabled() {
		summarizer = aiuc.NewInstrumentedSummarizer(
			openaiTransport.NewSummarizer(&openaiTransport.Config{
				APIKey:      cfg.AI.APIKey,
				BaseURL:     cfg.AI.BaseURL,
				Model:       cfg.AI.ChatModel,
				Temperature: cfg.AI.Temperature,
				MaxTags:     cfg.AI.MaxTags,
				Provider:    cfg.AI.Provider,
				Logger:      logger,
			}),
			cfg.AI.Provider, cfg.AI.ChatModel, logger,
		)
	}
	logger.Info("AI providers configured",
		zap.String("provider", cfg.AI.Provider),
		zap.String("embedding_model", cfg.AI.EmbeddingModel),
		zap.String("chat_model", cfg.AI.ChatModel),
		zap.Bool("summarize", cfg.AI.SummarizeEnabled()),
		zap.Bool("embed_cache", cfg.AI.EmbedCache),
	)

	// One memo cache shared by graph building and related-note ranking.
	similarity, err := graphuc.NewSimilarityCache(cfg.Graph.SimilarityCacheSize, nil, metrics.SimilarityCacheTotal)
	if err != nil {
		logger.Fatal("Failed to create similarity cache", zap.Error(err))
	}

	noteRepo := noterepo.New(store, keys)
	reviewRepo := reviewrepo.New(store, keys)

	noteSvc := noteuc.New(noteRepo, reviewRepo, embedder, summarizer, policy, logger).
		WithScorer(similarity.Score).
		WithRelatedLimit(cfg.Graph.RelatedLimit)

	builder := domgraph.NewBuilder(*cfg.Graph.LinkThreshold).
		WithWorkers(cfg.Graph.Workers).
		WithScorer(similarity.Score)
	graphSvc := graphuc.New(noteRepo, builder, logger).
		WithHighlightThreshold(*cfg.Graph.HighlightThreshold)

	reviewSvc := reviewuc.New(reviewRepo, noteRepo, policy, logger)

	healthSvc := healthuc.New(store, logger).
		WithChecker("embedding", baseEmbedder)

	server := chiTransport.NewServer(noteSvc, graphSvc, reviewSvc, healthSvc, logger)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.HTTP.Port),
		Handler:           server.Router(cfg.Auth.APIKeys),
		ReadHeaderTimeout: time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		ReadTimeout:       time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout:      time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	sigCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := serve(sigCtx, srv, time.Duration(cfg.HTTP.ShutdownSec)*time.Second, logger); err != nil {
		logger.Fatal("HTTP server error", zap.Error(err))
	}
	logger.Info("Server stopped gracefully")
}

// serve runs srv until ctx is cancelled, then drains in-flight requests for at
// most grace. A listener failure is returned as is.
func serve(ctx context.Context, srv *http.Server, grace time.Duration, logger *zap.Logger) error {
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		logger.Info("Starting HTTP server", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down HTTP server")

		drainCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), grace)
		defer cancel()
		if err := srv.Shutdown(drainCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	})

	return g.Wait()
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented.
func buildEmbedder(
	aiCfg config.AIConfig,
	base domain.Embedder,
	store *dbRedis.Store,
	keys keyspace.Keyspace,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if aiCfg.EmbedCache {
		embedder = embcache.New(base, store, logger,
			embcache.WithKeyspace(keys),
			embcache.WithModel(aiCfg.EmbeddingModel),
			embcache.WithTTL(aiCfg.EmbedCacheTTL()),
			embcache.WithCounter(metrics.EmbeddingCacheTotal),
		)
	}

	return aiuc.NewInstrumentedEmbedder(embedder, aiCfg.Provider, aiCfg.EmbeddingModel, logger)
}
