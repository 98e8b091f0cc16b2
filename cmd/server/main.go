package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/cypherlabdev/sharp-lines-service/internal/app"
	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/config"
	"github.com/cypherlabdev/sharp-lines-service/internal/scheduler"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "path to the config file")
	pflag.Parse()

	// Load configuration
	cfg, err := config.LoadConfig(*configPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}

	// Setup logger
	logger := app.SetupLogger(cfg.Logging, "sharp-lines")
	logger.Info().Msg("starting sharp-lines-service")

	// Create context with cancellation
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Wire store, cache, provider and services
	a, err := app.New(ctx, cfg, clock.Real{}, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to initialize service")
	}
	defer a.Close()
	logger.Info().Str("data_dir", a.Store.Dir()).Str("cache", cfg.Cache.Backend).Msg("services initialized")

	// Start scheduled snapshot capture
	sched := scheduler.New(logger)
	if cfg.Ingestion.Enabled {
		if err := a.ScheduleIngestion(sched); err != nil {
			logger.Fatal().Err(err).Msg("failed to schedule ingestion")
		}
		sched.Start()
	}

	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      a.Router(sched.Status),
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start HTTP server in goroutine
	go func() {
		logger.Info().Int("port", cfg.Server.Port).Msg("starting HTTP server")
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error().Err(err).Msg("HTTP server failed")
		}
	}()

	// Wait for interrupt signal
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info().Msg("shutting down gracefully...")

	cancel()

	// Let an in-flight snapshot finish before closing the cache and publisher
	if cfg.Ingestion.Enabled {
		sched.Stop()
	}

	// Shutdown HTTP server
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("HTTP server shutdown failed")
	}

	logger.Info().Msg("shutdown complete")
}
