package app

import (
	"context"
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/cypherlabdev/sharp-lines-service/internal/cache"
	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/config"
	httpHandler "github.com/cypherlabdev/sharp-lines-service/internal/handler/http"
	"github.com/cypherlabdev/sharp-lines-service/internal/messaging"
	"github.com/cypherlabdev/sharp-lines-service/internal/provider"
	"github.com/cypherlabdev/sharp-lines-service/internal/scheduler"
	"github.com/cypherlabdev/sharp-lines-service/internal/service"
	"github.com/cypherlabdev/sharp-lines-service/internal/store"
	"github.com/cypherlabdev/sharp-lines-service/pkg/detector"
	"github.com/cypherlabdev/sharp-lines-service/pkg/estimator"
	"github.com/cypherlabdev/sharp-lines-service/pkg/normalizer"
)

// Cache is a live cache that can be health checked and released
type Cache interface {
	service.LiveCache
	Ping(ctx context.Context) error
	Close() error
}

// App holds the wired service graph shared by the server and the snapshot CLI
type App struct {
	Config    *config.Config
	Clock     clock.Clock
	Store     *store.FileStore
	Cache     Cache
	Provider  *provider.Client
	Pipeline  *service.Pipeline
	Detector  *detector.Detector
	Query     *service.QueryService
	Ingestion *service.IngestionService
	Publisher *messaging.KafkaAlertPublisher // nil when kafka is disabled

	logger zerolog.Logger
}

// SetupLogger configures the logger based on config
func SetupLogger(cfg config.LoggingConfig, name string) zerolog.Logger {
	// Set log level
	level, err := zerolog.ParseLevel(cfg.Level)
	if err != nil {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	// Set format
	if cfg.Format == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}

	return log.Logger.With().Str("service", name).Logger()
}

// New wires every component from cfg. Redis is pinged so a bad address fails
// at startup rather than on the first live query.
func New(ctx context.Context, cfg *config.Config, clk clock.Clock, logger zerolog.Logger) (*App, error) {
	fileStore, err := store.NewFileStore(cfg.Store.DataDir, clk, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open snapshot store: %w", err)
	}

	var liveCache Cache
	switch cfg.Cache.Backend {
	case "redis":
		redisCache := cache.NewRedisCache(
			cache.RedisCacheConfig{
				Addr:     cfg.Cache.Redis.Addr,
				Password: cfg.Cache.Redis.Password,
				DB:       cfg.Cache.Redis.DB,
				TTL:      cfg.Cache.TTL,
			},
			logger,
		)
		if err := redisCache.Ping(ctx); err != nil {
			redisCache.Close()
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}
		logger.Info().Str("addr", cfg.Cache.Redis.Addr).Msg("connected to Redis")
		liveCache = redisCache
	default:
		liveCache = cache.NewMemoryCache(cfg.Cache.TTL, clk, logger)
	}

	client := provider.NewClient(
		provider.ClientConfig{
			BaseURL:    cfg.Provider.BaseURL,
			APIKey:     cfg.Provider.APIKey,
			Timeout:    cfg.Provider.Timeout,
			Regions:    cfg.Provider.Regions,
			Bookmakers: cfg.Provider.Bookmakers,
			Sports:     cfg.Provider.Sports,
		},
		logger,
	)
	if !client.HasCredential() {
		logger.Warn().Msg("no provider credential configured, serving stored snapshots only")
	}

	source, err := estimator.NewSource(cfg.Estimation.Mode)
	if err != nil {
		liveCache.Close()
		return nil, err
	}

	norm := normalizer.NewNormalizer(cfg.Provider.Bookmakers, logger)
	est := estimator.NewEstimator(cfg.Estimation.ToEstimationParams(), source, logger)
	det := detector.NewDetector(cfg.Detection.ToDetectionParams(), logger)
	pipeline := service.NewPipeline(client, norm, est, clk, logger)

	a := &App{
		Config:   cfg,
		Clock:    clk,
		Store:    fileStore,
		Cache:    liveCache,
		Provider: client,
		Pipeline: pipeline,
		Detector: det,
		logger:   logger,
	}

	var publisher service.AlertPublisher
	if cfg.Kafka.Enabled {
		a.Publisher = messaging.NewKafkaAlertPublisher(
			messaging.KafkaPublisherConfig{
				Brokers:      cfg.Kafka.Brokers,
				Topic:        cfg.Kafka.Topic,
				WriteTimeout: cfg.Kafka.WriteTimeout,
			},
			logger,
		)
		publisher = a.Publisher
		logger.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("alert publisher enabled")
	}

	a.Query = service.NewQueryService(pipeline, client, fileStore, liveCache, det, clk, logger)
	a.Ingestion = service.NewIngestionService(pipeline, client, fileStore, det, publisher, clk, logger)

	return a, nil
}

// Router builds the HTTP router with readiness checks for the store and cache.
// jobs, when set, is served as the schedule listing.
func (a *App) Router(jobs func() []scheduler.JobStatus) *chi.Mux {
	return httpHandler.NewRouter(
		httpHandler.RouterConfig{
			Lines: httpHandler.NewLinesHandler(a.Query, a.logger),
			Jobs:  jobs,
			Checks: map[string]httpHandler.ReadinessCheck{
				"store": a.Store.Ping,
				"cache": a.Cache.Ping,
			},
			AllowedOrigins: a.Config.Server.AllowedOrigins,
			RequestTimeout: a.Config.Server.RequestTimeout,
		},
		a.logger,
	)
}

// ScheduleIngestion registers one snapshot job per configured label
func (a *App) ScheduleIngestion(s *scheduler.Scheduler) error {
	labels := make([]string, 0, len(a.Config.Ingestion.Schedules))
	for label := range a.Config.Ingestion.Schedules {
		labels = append(labels, label)
	}
	sort.Strings(labels)

	for _, label := range labels {
		job := service.NewIngestionJob(a.Ingestion, label, a.Config.Ingestion.Timeout)
		if err := s.AddJob(a.Config.Ingestion.Schedules[label], job); err != nil {
			return fmt.Errorf("failed to schedule %s: %w", job.Name(), err)
		}
	}
	return nil
}

// Close releases the cache and publisher
func (a *App) Close() {
	if err := a.Cache.Close(); err != nil {
		a.logger.Error().Err(err).Msg("failed to close cache")
	}
	if a.Publisher != nil {
		if err := a.Publisher.Close(); err != nil {
			a.logger.Error().Err(err).Msg("failed to close alert publisher")
		}
	}
}
