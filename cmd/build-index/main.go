// Command build-index embeds the catalogue seed files and writes the index
// artifacts the API server loads at startup. Run it after any seed change.
package main

import (
	"context"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/kailas-cloud/travel-assistant/internal/catalogue"
	"github.com/kailas-cloud/travel-assistant/internal/config"
	dbRedis "github.com/kailas-cloud/travel-assistant/internal/db/redis"
	"github.com/kailas-cloud/travel-assistant/internal/domain"
	"github.com/kailas-cloud/travel-assistant/internal/index"
	logpkg "github.com/kailas-cloud/travel-assistant/internal/logger"
	"github.com/kailas-cloud/travel-assistant/internal/metrics"
	"github.com/kailas-cloud/travel-assistant/internal/repository/embcache"
	openaiTransport "github.com/kailas-cloud/travel-assistant/internal/transport/openai"
)

func main() {
	env := config.GetEnv()

	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	metrics.RegisterEmbeddingMetrics()

	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.OpenAI.APIKey,
		BaseURL:    cfg.OpenAI.BaseURL,
		EmbedModel: cfg.OpenAI.EmbedModel,
		ChatModel:  cfg.OpenAI.Model,
		Timeout:    time.Duration(cfg.OpenAI.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	// Rebuilds re-embed mostly unchanged rows; the cache pays off here most.
	ctx := context.Background()
	var embedder index.Embedder = base
	if len(cfg.Cache.Addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Cache.Addrs,
			Password: cfg.Cache.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create cache store", zap.Error(err))
		}
		defer store.Close()

		readiness := time.Duration(cfg.Cache.ReadinessTimeout) * time.Second
		if err := store.WaitForReady(ctx, readiness); err != nil {
			logger.Fatal("Cache store not ready", zap.Error(err))
		}
		embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
	}

	logger.Info("Building catalogue indices",
		zap.String("seed_dir", cfg.Catalogue.SeedDir),
		zap.String("data_dir", cfg.Catalogue.DataDir),
		zap.Int("batch_size", cfg.OpenAI.EmbedBatchSize),
	)

	start := time.Now()
	g, gctx := errgroup.WithContext(ctx)
	for _, kind := range domain.Kinds() {
		kind := kind
		g.Go(func() error {
			rows, err := catalogue.LoadSeed(cfg.Catalogue.SeedDir, kind)
			if err != nil {
				return err
			}

			ix := index.New(embedder)
			if err := ix.Build(gctx, rows, cfg.OpenAI.EmbedBatchSize); err != nil {
				return err
			}
			if err := ix.Save(filepath.Join(cfg.Catalogue.DataDir, string(kind))); err != nil {
				return err
			}

			logger.Info("Index built",
				zap.String("kind", string(kind)),
				zap.Int("rows", ix.Len()),
			)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		logger.Fatal("Index build failed", zap.Error(err))
	}

	logger.Info("All indices built", zap.Duration("elapsed", time.Since(start)))
}
