package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/rs/zerolog"

	"github.com/slogger-dev/slogger/internal/config"
	"github.com/slogger-dev/slogger/internal/database"
	"github.com/slogger-dev/slogger/internal/partition"
	"github.com/slogger-dev/slogger/internal/server"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		l := zerolog.New(os.Stderr)
		l.Fatal().Err(err).Msg("load config")
	}

	logger := newLogger(cfg.Env)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := database.RunMigrations(ctx, cfg.DatabaseURL); err != nil {
		logger.Fatal().Err(err).Msg("migrations")
	}

	var nrApp *newrelic.Application
	if cfg.NewRelicLicenseKey != "" {
		nrApp, err = newrelic.NewApplication(
			newrelic.ConfigAppName("slogger"),
			newrelic.ConfigLicense(cfg.NewRelicLicenseKey),
		)
		if err != nil {
			logger.Fatal().Err(err).Msg("new relic")
		}
	}

	pool, err := database.NewPool(ctx, cfg.DatabaseURL, logger, nrApp)
	if err != nil {
		logger.Fatal().Err(err).Msg("database pool")
	}
	defer pool.Close()

	// Pre-create partitions before serving so writes never block on DDL for
	// days inside the maintained window.
	maintainer := partition.NewMaintainer(
		partition.NewManager(pool),
		cfg.PartitionDaysAhead,
		cfg.SweepInterval(),
		logger,
	)
	if err := maintainer.Start(ctx); err != nil {
		logger.Fatal().Err(err).Msg("initial partition sweep")
	}
	defer maintainer.Stop()

	srv := server.New(cfg, pool, logger, nrApp)
	logger.Info().Str("port", cfg.Port).Msg("listening")
	if err := srv.Start(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		logger.Fatal().Err(err).Msg("server exited")
	}
}

func newLogger(env string) zerolog.Logger {
	if env == "development" {
		return zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).With().Timestamp().Logger()
	}
	return zerolog.New(os.Stderr).With().Timestamp().Logger()
}
