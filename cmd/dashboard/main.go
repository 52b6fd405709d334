package main

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	httpadapter "github.com/couchcryptid/soacha-risk-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/soacha-risk-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/adapter/openweather"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/alerting"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/api"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/config"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/domain"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/geolayers"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/observability"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/photos"
	"github.com/couchcryptid/soacha-risk-dashboard/internal/store"
	"github.com/go-redis/redis/v8"
	"github.com/joho/godotenv"
)

func main() {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		slog.Warn("failed to read .env file", "error", err)
	}

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()
	domain.SetSiteLocation(cfg.SiteLocation)

	backend, closeStore := openStore(cfg, logger)
	defer closeStore()
	repo := store.NewRepository(backend, metrics)

	// Live weather is feature-flagged on OPENWEATHER_API_KEY.
	var weather domain.WeatherProvider
	if cfg.WeatherEnabled() {
		client := openweather.NewClient(cfg.OpenWeatherBaseURL, cfg.OpenWeatherAPIKey,
			cfg.SiteLatitude, cfg.SiteLongitude, cfg.WeatherTimeout, metrics, logger)
		weather = openweather.NewCachedProvider(client, openweather.NewCache(cfg.WeatherCacheTTL, nil), metrics)
		logger.Info("openweather enabled", "cache_ttl", cfg.WeatherCacheTTL, "timeout", cfg.WeatherTimeout)
	} else {
		logger.Info("openweather disabled, using fallback conditions")
	}

	var publisher alerting.AlertPublisher
	var writer *kafkaadapter.AlertWriter
	if cfg.KafkaEnabled() {
		writer = kafkaadapter.NewAlertWriter(cfg, logger)
		publisher = writer
		logger.Info("alert publishing enabled", "topic", cfg.KafkaAlertTopic, "brokers", cfg.KafkaBrokers)
	}

	key, err := domain.DedupKeyByName(cfg.AlertDedupKey)
	if err != nil {
		logger.Error("invalid dedup key", "error", err)
		os.Exit(1)
	}
	svc := alerting.New(repo, weather, publisher, alerting.Settings{
		Dedup:    domain.NewDeduplicator(cfg.AlertDedupWindow, key),
		Interval: cfg.AlertEvaluationInterval,
	}, logger, metrics)

	library, err := photos.NewLibrary(cfg.PhotosDir, cfg.PhotosMaxBytes, nil, logger, metrics)
	if err != nil {
		logger.Error("failed to open photo library", "error", err)
		os.Exit(1)
	}

	handlers := api.New(api.Deps{
		Repo:           repo,
		Alerts:         svc,
		Photos:         library,
		Layers:         geolayers.NewCatalog(cfg.LayersDir, logger),
		InfografiasDir: cfg.InfografiasDir,
		Logger:         logger,
	})

	srv := httpadapter.NewServer(httpadapter.Options{
		Addr:           cfg.HTTPAddr,
		AllowedOrigins: cfg.CORSAllowedOrigins,
		Ready:          svc,
		Routes:         handlers,
		Metrics:        metrics,
		Logger:         logger,
	})

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start background alert evaluation (no-op when the interval is 0).
	go func() {
		if err := svc.Run(ctx); err != nil {
			logger.Error("alert evaluation error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}
}

// openStore builds the configured document backend and a func that releases
// it.
func openStore(cfg *config.Config, logger *slog.Logger) (store.Store, func()) {
	var (
		backend store.Store
		closer  io.Closer
	)
	switch cfg.StoreBackend {
	case store.BackendRedis:
		rs := store.NewRedisStore(redis.NewClient(&redis.Options{Addr: cfg.RedisAddr}), cfg.RedisKey)
		backend, closer = rs, rs
	case store.BackendMemory:
		backend = store.NewMemoryStore()
	default:
		backend = store.NewFileStore(cfg.DataFile)
	}
	logger.Info("document store ready", "backend", cfg.StoreBackend)

	return backend, func() {
		if closer == nil {
			return
		}
		if err := closer.Close(); err != nil {
			logger.Error("store close error", "error", err)
		}
	}
}
