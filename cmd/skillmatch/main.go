package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/skillmatch-cloud/skillmatch/internal/config"
	dbRedis "github.com/skillmatch-cloud/skillmatch/internal/db/redis"
	"github.com/skillmatch-cloud/skillmatch/internal/domain"
	logpkg "github.com/skillmatch-cloud/skillmatch/internal/logger"
	"github.com/skillmatch-cloud/skillmatch/internal/metrics"
	catalogrepo "github.com/skillmatch-cloud/skillmatch/internal/repository/catalog"
	"github.com/skillmatch-cloud/skillmatch/internal/repository/embcache"
	indexrepo "github.com/skillmatch-cloud/skillmatch/internal/repository/index"
	chiTransport "github.com/skillmatch-cloud/skillmatch/internal/transport/chi"
	openaiTransport "github.com/skillmatch-cloud/skillmatch/internal/transport/openai"
	analyzeruc "github.com/skillmatch-cloud/skillmatch/internal/usecase/analyzer"
	balanceruc "github.com/skillmatch-cloud/skillmatch/internal/usecase/balancer"
	healthuc "github.com/skillmatch-cloud/skillmatch/internal/usecase/health"
	recommenduc "github.com/skillmatch-cloud/skillmatch/internal/usecase/recommend"
	rerankeruc "github.com/skillmatch-cloud/skillmatch/internal/usecase/reranker"
	retrieveruc "github.com/skillmatch-cloud/skillmatch/internal/usecase/retriever"
	"github.com/skillmatch-cloud/skillmatch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting skillmatch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	// Query embedder chain — composition root
	queryEmbedder := buildQueryEmbedder(cfg.Embedding, store, logger)
	logger.Info("Query embedder created",
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Catalog snapshot. An empty or unreadable catalog is not fatal: the
	// server comes up and reports 503 on /recommend until the indexer runs.
	catalogRepo := catalogrepo.New(store)
	snapshot, err := catalogRepo.LoadSnapshot(ctx)
	if err != nil {
		logger.Warn("Failed to load catalog snapshot, starting empty", zap.Error(err))
		snapshot = domain.NewCatalog(nil)
	}
	logger.Info("Catalog loaded", zap.Int("assessments", snapshot.Len()))

	idxRepo := indexrepo.New(store)

	// Pipeline stages
	analyzeSvc := analyzeruc.New()
	retrieveSvc := retrieveruc.New(queryEmbedder, idxRepo, snapshot, cfg.Recommend.CandidatePool, logger)
	balanceSvc := balanceruc.New(cfg.Recommend.MaxResults, cfg.Recommend.MinResults)

	// Pass nil interface (not typed nil pointer!) if rerank is not configured.
	var rerankProvider rerankeruc.Provider
	if cfg.Rerank.Enabled && cfg.Rerank.APIKey != "" {
		rerankProvider = openaiTransport.NewReranker(&openaiTransport.RerankerConfig{
			APIKey:      cfg.Rerank.APIKey,
			BaseURL:     cfg.Rerank.BaseURL,
			Model:       cfg.Rerank.Model,
			MaxFailures: uint32(cfg.Rerank.Breaker.MaxFailures),
			Cooldown:    time.Duration(cfg.Rerank.Breaker.CooldownSec) * time.Second,
			Logger:      logger,
		})
		logger.Info("Reranker enabled", zap.String("model", cfg.Rerank.Model))
	} else {
		logger.Info("Reranker disabled, similarity order is final")
	}
	rerankSvc := rerankeruc.New(rerankProvider, time.Duration(cfg.Rerank.TimeoutSec)*time.Second, logger)

	recommendSvc := recommenduc.New(
		analyzeSvc, retrieveSvc, balanceSvc, rerankSvc,
		cfg.Recommend.MaxResults, logger,
	)

	// Health service
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(queryEmbedder), idxRepo, snapshot.Len())

	// Create chi server
	server := chiTransport.NewServer(recommendSvc, healthSvc, snapshot, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildQueryEmbedder assembles the decorator chain: OpenAI -> Cached -> Instruction
func buildQueryEmbedder(cfg config.EmbeddingConfig, store *dbRedis.Store, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Logger:     logger,
	})

	var embedder domain.Embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)

	// Instruction prefix (outermost — cache key includes instruction)
	if cfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(embedder, cfg.QueryInstruction)
	}

	return embedder
}

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
