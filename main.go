package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/mocapboston/onboarding/internal/config"
	"github.com/mocapboston/onboarding/internal/logger"
	"github.com/mocapboston/onboarding/internal/routes"
	"github.com/mocapboston/onboarding/internal/storage"
	"github.com/mocapboston/onboarding/views"
)

func main() {
	// Load .env file for local development
	envFile := config.LoadDotEnv()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Invalid configuration")
	}

	lg := logger.New(logger.Config{
		Level:  cfg.Log.Level,
		Pretty: cfg.Log.Pretty,
	})
	if envFile != "" {
		lg.Info().Str("file", envFile).Msg("Loaded environment file")
	}

	// Initialize storage
	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	store, err := storage.Open(ctx, cfg, lg)
	cancel()
	if err != nil {
		lg.Fatal().Err(err).Str("driver", cfg.StoreDriver).Msg("Failed to initialize storage")
	}
	lg.Info().Str("storage", storage.Describe(cfg.StoreDriver)).Msg("Storage ready")

	// Create fiber app
	app := routes.NewApp(views.Engine(cfg.ViewsDir), os.Stdout)
	routes.SetupRoutes(app, store, cfg, lg)

	// Handle graceful shutdown
	c := make(chan os.Signal, 1)
	signal.Notify(c, os.Interrupt, syscall.SIGTERM)

	go func() {
		<-c
		lg.Info().Msg("Gracefully shutting down...")
		_ = app.Shutdown()
	}()

	lg.Info().
		Str("port", cfg.Port).
		Str("environment", cfg.Environment).
		Bool("production", cfg.IsProduction()).
		Str("collection", cfg.SessionCollection).
		Msg("Onboarding service starting")

	if err := app.Listen(":" + cfg.Port); err != nil {
		lg.Error().Err(err).Msg("Server stopped")
	}

	if err := store.Close(); err != nil {
		lg.Error().Err(err).Msg("Failed to close storage")
	}
}
