package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/kailas-cloud/pixdex/internal/config"
	"github.com/kailas-cloud/pixdex/internal/domain"
	"github.com/kailas-cloud/pixdex/internal/kv"
	badgerkv "github.com/kailas-cloud/pixdex/internal/kv/badger"
	rediskv "github.com/kailas-cloud/pixdex/internal/kv/redis"
	logpkg "github.com/kailas-cloud/pixdex/internal/logger"
	"github.com/kailas-cloud/pixdex/internal/metrics"
	catalogrepo "github.com/kailas-cloud/pixdex/internal/repository/catalog"
	"github.com/kailas-cloud/pixdex/internal/repository/encodercache"
	"github.com/kailas-cloud/pixdex/internal/transport/httpapi"
	openaiEnc "github.com/kailas-cloud/pixdex/internal/transport/openai"
	cataloguc "github.com/kailas-cloud/pixdex/internal/usecase/catalog"
	encodinguc "github.com/kailas-cloud/pixdex/internal/usecase/encoding"
	healthuc "github.com/kailas-cloud/pixdex/internal/usecase/health"
	searchuc "github.com/kailas-cloud/pixdex/internal/usecase/search"
	"github.com/kailas-cloud/pixdex/internal/version"
)

func main() {
	// Local development convenience; absent .env is fine.
	_ = godotenv.Load()

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

	logger.Info("Starting pixdex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("encoder_model", cfg.Encoder.Model),
		zap.String("search_algorithm", cfg.Search.Algorithm),
		zap.String("query_cache_driver", cfg.QueryCache.Driver),
	)

	// Register domain metrics explicitly (no init())
	metrics.RegisterEncoderMetrics()
	metrics.RegisterCatalogMetrics()

	ctx := context.Background()

	store := buildQueryCacheStore(ctx, cfg, logger)
	if store != nil {
		defer store.Close()
	}

	encoder := buildEncoder(cfg, store, logger)

	// Pass nil interface (not typed nil pointer!) when no source is configured.
	var source cataloguc.Source
	var builder cataloguc.Builder
	if cfg.Catalog.MetadataPath != "" {
		source = catalogrepo.NewFileSource(cfg.Catalog.MetadataPath)
		builder = catalogrepo.NewBuilder(catalogrepo.BuilderConfig{
			Encoder:     encoder,
			ImagesDir:   cfg.Catalog.ImagesDir,
			Model:       cfg.Encoder.Model,
			Dimensions:  cfg.Encoder.Dimensions,
			Concurrency: cfg.Encoder.BuildConcurrency,
			Logger:      logger,
		})
	}
	cache := catalogrepo.NewCache(cfg.Catalog.CachePath, cfg.Encoder.Model, cfg.Encoder.Dimensions)

	manager := cataloguc.NewManager(source, cache, builder, logger)
	if err := manager.Init(ctx); err != nil {
		logger.Fatal("Failed to initialize catalog", zap.Error(err))
	}
	stats := manager.Stats()
	logger.Info("Catalog ready",
		zap.Int("entries", stats.Entries),
		zap.String("source", stats.Source),
	)

	var ranker searchuc.Ranker
	switch cfg.Search.Algorithm {
	case "hnsw":
		ranker = searchuc.NewHNSWRanker(searchuc.HNSWConfig{
			M:        cfg.Search.HNSW.M,
			EFSearch: cfg.Search.HNSW.EFSearch,
		})
	default:
		ranker = searchuc.NewExactRanker()
	}

	searchSvc := searchuc.New(encoder, manager, ranker, cfg.Search.DefaultK, cfg.Search.MaxK, logger)

	var cachePinger healthuc.CachePinger
	if store != nil {
		cachePinger = store
	}
	healthSvc := healthuc.New(manager, newEncoderHealthChecker(encoder), cachePinger)

	server := httpapi.NewServer(searchSvc, manager, healthSvc, cfg.HTTP.MaxUploadBytes, logger)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      server.Router(),
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

// buildQueryCacheStore opens the configured query-embedding cache backend.
// Returns nil for driver "none".
func buildQueryCacheStore(ctx context.Context, cfg config.Config, logger *zap.Logger) kv.Store {
	switch cfg.QueryCache.Driver {
	case "none":
		return nil
	case "badger":
		store, err := badgerkv.NewStore(badgerkv.Config{
			Dir:      cfg.QueryCache.Badger.Dir,
			InMemory: cfg.QueryCache.Badger.InMemory,
		})
		if err != nil {
			logger.Fatal("Failed to open badger query cache", zap.Error(err))
		}
		logger.Info("Query cache ready", zap.String("driver", "badger"))
		return store
	case "redis":
		store, err := rediskv.NewStore(rediskv.Config{
			Addrs:    cfg.QueryCache.Redis.Addrs,
			Password: cfg.QueryCache.Redis.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create redis query cache", zap.Error(err))
		}
		timeout := time.Duration(cfg.QueryCache.Redis.ReadinessTimeoutSec) * time.Second
		if err := store.WaitForReady(ctx, timeout); err != nil {
			logger.Fatal("Redis query cache not ready", zap.Error(err))
		}
		logger.Info("Query cache ready", zap.String("driver", "redis"),
			zap.Strings("addrs", cfg.QueryCache.Redis.Addrs))
		return store
	default:
		logger.Fatal("Unknown query cache driver", zap.String("driver", cfg.QueryCache.Driver))
		return nil
	}
}

// buildEncoder assembles the decorator chain: OpenAI -> Cached -> Instrumented
func buildEncoder(cfg config.Config, store kv.Store, logger *zap.Logger) domain.Encoder {
	base := openaiEnc.NewEncoder(&openaiEnc.Config{
		APIKey:     cfg.Encoder.APIKey,
		BaseURL:    cfg.Encoder.BaseURL,
		Model:      cfg.Encoder.Model,
		Dimensions: cfg.Encoder.Dimensions,
		Timeout:    time.Duration(cfg.Encoder.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	var encoder domain.Encoder = base
	if store != nil {
		ttl := time.Duration(cfg.QueryCache.TTLSec) * time.Second
		encoder = encodercache.New(base, store, ttl, metrics.QueryCacheTotal, logger)
	}

	return encodinguc.NewInstrumentedEncoder(encoder, cfg.Encoder.Model, logger)
}

// encoderHealthChecker wraps domain.Encoder to implement health.EncoderChecker.
type encoderHealthChecker struct {
	encoder domain.Encoder
}

func newEncoderHealthChecker(encoder domain.Encoder) *encoderHealthChecker {
	return &encoderHealthChecker{encoder: encoder}
}

func (h *encoderHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.encoder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("encoder health check: %w", err)
		}
	}
	return nil
}
