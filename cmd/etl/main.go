package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/parking-tariff-etl/internal/adapter/firestore"
	"github.com/couchcryptid/parking-tariff-etl/internal/adapter/gemini"
	httpadapter "github.com/couchcryptid/parking-tariff-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/parking-tariff-etl/internal/adapter/kafka"
	"github.com/couchcryptid/parking-tariff-etl/internal/adapter/rewritecache"
	"github.com/couchcryptid/parking-tariff-etl/internal/config"
	"github.com/couchcryptid/parking-tariff-etl/internal/domain"
	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/couchcryptid/parking-tariff-etl/internal/pipeline"
)

func main() {
	if err := config.LoadDotEnv(); err != nil {
		slog.Error("failed to load .env", "error", err)
		os.Exit(1)
	}
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(logger)
	metrics := observability.NewMetrics()

	regions, err := config.LoadRegions(cfg.RegionsFile)
	if err != nil {
		logger.Error("failed to load regions", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	formatter, closeFormatter, err := newFormatter(ctx, cfg, metrics, logger)
	if err != nil {
		logger.Error("failed to set up description rewriting", "error", err)
		os.Exit(1)
	}
	defer closeFormatter()

	reader := kafkaadapter.NewReader(cfg, logger)
	writer := kafkaadapter.NewWriter(cfg, logger)
	loaders := []pipeline.NamedLoader{{Name: "kafka", Loader: writer}}

	var store *firestore.Store
	if cfg.FirestoreEnabled {
		store, err = firestore.NewStore(ctx, cfg.FirebaseCredentials, cfg.FirestoreCollection, logger)
		if err != nil {
			logger.Error("failed to open firestore", "error", err)
			os.Exit(1)
		}
		loaders = append(loaders, pipeline.NamedLoader{Name: "firestore", Loader: store})
		logger.Info("firestore sink enabled", "collection", cfg.FirestoreCollection)
	}

	policy := domain.NewFilterPolicy(regions.ExcludedUsageTypes)
	transformer := pipeline.NewTransformer(formatter, policy, metrics, logger)

	p := pipeline.New(reader, transformer, pipeline.NewFanoutLoader(loaders...), logger, metrics, cfg.BatchSize)

	srv := httpadapter.NewServer(cfg.HTTPAddr, p, transformer, logger)

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start ETL pipeline.
	go func() {
		if err := p.Run(ctx); err != nil {
			logger.Error("pipeline error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if err := reader.Close(); err != nil {
		logger.Error("kafka reader close error", "error", err)
	}
	if err := writer.Close(); err != nil {
		logger.Error("kafka writer close error", "error", err)
	}
	if store != nil {
		if err := store.Close(); err != nil {
			logger.Error("firestore close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}

// newFormatter wires the description rewriter and its cache. Rewriting is
// feature-flagged via REWRITE_ENABLED / GEMINI_API_KEY; REDIS_ADDR adds a
// shared cache tier behind the in-process one.
func newFormatter(ctx context.Context, cfg *config.Config, metrics *observability.Metrics, logger *slog.Logger) (*domain.Formatter, func(), error) {
	if !cfg.RewriteEnabled {
		metrics.RewriteEnabled.Set(0)
		logger.Info("description rewriting disabled")
		return domain.NewFormatter(nil, nil, logger), func() {}, nil
	}

	client, err := gemini.NewClient(ctx, cfg.GeminiAPIKey, cfg.GeminiModel, cfg.GeminiTimeout, cfg.GeminiRPM, metrics, logger)
	if err != nil {
		return nil, nil, err
	}
	closers := []func() error{client.Close}

	var cache domain.RewriteCache = rewritecache.NewMemory(cfg.RewriteCacheSize, cfg.RewriteCacheTTL, metrics)
	if cfg.RedisAddr != "" {
		rdb, err := rewritecache.NewRedisClient(ctx, cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB)
		if err != nil {
			_ = client.Close()
			return nil, nil, err
		}
		closers = append(closers, rdb.Close)
		cache = rewritecache.NewTiered(cache, rewritecache.NewRedis(rdb, cfg.RewriteCacheTTL, metrics))
		logger.Info("shared rewrite cache enabled", "redis_addr", cfg.RedisAddr)
	}

	metrics.RewriteEnabled.Set(1)
	logger.Info("description rewriting enabled",
		"model", cfg.GeminiModel,
		"rpm", cfg.GeminiRPM,
		"cache_size", cfg.RewriteCacheSize,
		"cache_ttl", cfg.RewriteCacheTTL,
	)

	closeAll := func() {
		for _, c := range closers {
			if err := c(); err != nil {
				logger.Warn("close rewrite dependency", "error", err)
			}
		}
	}
	return domain.NewFormatter(client, cache, logger), closeAll, nil
}
