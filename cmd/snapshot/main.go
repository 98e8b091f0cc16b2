package main

import (
	"context"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/cypherlabdev/sharp-lines-service/internal/app"
	"github.com/cypherlabdev/sharp-lines-service/internal/clock"
	"github.com/cypherlabdev/sharp-lines-service/internal/config"
	"github.com/cypherlabdev/sharp-lines-service/internal/models"
)

func main() {
	configPath := pflag.String("config", "config/config.yaml", "path to the config file")
	label := pflag.String("label", models.LabelLatest, "snapshot label: 10pm, 12pm or latest")
	demo := pflag.Bool("demo", false, "seed sample snapshots when no provider credential is configured")
	pflag.Parse()

	os.Exit(run(*configPath, *label, *demo))
}

func run(configPath, label string, demo bool) int {
	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Error().Err(err).Msg("failed to load config")
		return 2
	}

	logger := app.SetupLogger(cfg.Logging, "sharp-lines")
	logger = logger.With().Str("label", label).Logger()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Ingestion.Timeout)
	defer cancel()

	a, err := app.New(ctx, cfg, clock.Real{}, logger)
	if err != nil {
		logger.Error().Err(err).Msg("failed to initialize service")
		return 2
	}
	defer a.Close()

	if demo && !a.Provider.HasCredential() {
		date, err := seedDemo(ctx, a.Store, a.Detector, a.Clock, label)
		if err != nil {
			logger.Error().Err(err).Msg("demo seeding failed")
			return 1
		}
		logger.Info().Str("date", date).Str("data_dir", a.Store.Dir()).Msg("demo snapshots written")
		return 0
	}

	report, err := a.Ingestion.Run(ctx, label)
	if err != nil {
		logger.Error().Err(err).Msg("snapshot failed")
		return 2
	}

	logger.Info().
		Str("run_id", report.RunID.String()).
		Str("date", report.Date).
		Str("result", report.Result()).
		Int("failed", report.Failed()).
		Msg("snapshot complete")

	return exitCode(report.Result())
}

// exitCode maps an ingestion result to the process status. Only a run in
// which every category failed is an error.
func exitCode(result string) int {
	if result == "failed" {
		return 1
	}
	return 0
}
