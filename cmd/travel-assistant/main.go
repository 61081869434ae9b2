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

	"github.com/kailas-cloud/travel-assistant/internal/advisor"
	"github.com/kailas-cloud/travel-assistant/internal/catalogue"
	"github.com/kailas-cloud/travel-assistant/internal/config"
	"github.com/kailas-cloud/travel-assistant/internal/db"
	dbRedis "github.com/kailas-cloud/travel-assistant/internal/db/redis"
	"github.com/kailas-cloud/travel-assistant/internal/index"
	"github.com/kailas-cloud/travel-assistant/internal/intent"
	logpkg "github.com/kailas-cloud/travel-assistant/internal/logger"
	"github.com/kailas-cloud/travel-assistant/internal/metrics"
	"github.com/kailas-cloud/travel-assistant/internal/repository/embcache"
	chiTransport "github.com/kailas-cloud/travel-assistant/internal/transport/chi"
	openaiTransport "github.com/kailas-cloud/travel-assistant/internal/transport/openai"
	"github.com/kailas-cloud/travel-assistant/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting travel-assistant API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("data_dir", cfg.Catalogue.DataDir),
	)

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterAdvisorMetrics()

	providerCfg := &openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		EmbedModel: cfg.OpenAI.EmbedModel,
		ChatModel:  cfg.OpenAI.Model,
		Timeout:    time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		Logger:     logger,
	}
	base := openaiTransport.NewEmbedder(providerCfg)

	// Optional embedding cache in front of the provider.
	ctx := context.Background()
	var embedder index.Embedder = base
	var cacheStore db.Store
	if len(cfg.Cache.Addrs) > 0 {
		cacheStore, err = dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer cacheStore.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := cacheStore.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		logger.Info("Connected to embedding cache", zap.Strings("addrs", cfg.Cache.Addrs))

		kv := ttlKV{store: cacheStore, ttl: time.Duration(cfg.Cache.TTLHours) * time.Hour}
		embedder = embcache.New(base, kv, metrics.EmbeddingCacheTotal, logger)
	}

	cat, err := catalogue.Load(cfg.Catalogue.DataDir, embedder, logger)
	if err != nil {
		logger.Fatal("Failed to load catalogue indices; run build-index first", zap.Error(err))
	}

	cities := cat.Cities()
	logger.Info("Catalogue loaded", zap.Int("cities", len(cities)))

	extractor := intent.NewExtractor(cities)
	picker := intent.NewPicker(cities, cat)

	chatClient := openaiTransport.NewChatClient(providerCfg)
	moderator := openaiTransport.NewModerator(providerCfg)

	advSvc := advisor.New(chatClient, moderator, cat, extractor, picker, advisor.Config{
		MaxTurns:        cfg.Advisor.MaxTurns,
		MaxAttempts:     cfg.Advisor.MaxAttempts,
		BypassCityCheck: cfg.Advisor.BypassCityCheck,
	}, logger)

	checks := map[string]chiTransport.HealthCheck{
		"embedding": base.HealthCheck,
	}
	if cacheStore != nil {
		checks["cache"] = cacheStore.Ping
	}

	server := chiTransport.NewServer(advSvc, checks, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.RateLimitMiddleware(cfg.RateLimit.RPS, cfg.RateLimit.Burst))
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

// ttlKV adapts db.Store to the embedding cache's Get/Set contract, writing
// with the configured expiration.
type ttlKV struct {
	store db.Store
	ttl   time.Duration
}

func (s ttlKV) Get(ctx context.Context, key string) ([]byte, error) {
	return s.store.Get(ctx, key)
}

func (s ttlKV) Set(ctx context.Context, key string, value []byte) error {
	if s.ttl > 0 {
		return s.store.SetWithTTL(ctx, key, value, s.ttl)
	}
	return s.store.Set(ctx, key, value)
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
