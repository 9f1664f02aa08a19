package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/yeehome/pkg/api"
	"github.com/urmzd/yeehome/pkg/app"
	"github.com/urmzd/yeehome/pkg/config"
	"github.com/urmzd/yeehome/pkg/logging"

	_ "github.com/urmzd/yeehome/docs"
)

// @title           Yeehome API
// @version         1.0
// @description     REST API for driving a smart-home gateway from voice intents

// @host      localhost:8080
// @BasePath  /api/v1
// @schemes   http

const shutdownTimeout = 5 * time.Second

func main() {
	configPath := flag.String("config", "yeehome.yaml", "Path to YAML config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup(config.Default().Logging, os.Stderr)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Logging, os.Stderr)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err = run(ctx, cfg)
	stop()
	if err != nil {
		log.Error().Err(err).Msg("API server exited")
		os.Exit(1)
	}
}

// run owns the app for the lifetime of the server; the gateway session and
// database are closed before it returns.
func run(ctx context.Context, cfg *config.Config) error {
	a, err := app.New(ctx, cfg)
	if err != nil {
		return fmt.Errorf("failed to initialize: %w", err)
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if cfg.Gateway.AutoConnect {
		go func() {
			if _, err := a.Connect(ctx); err != nil {
				log.Warn().Err(err).Msg("Gateway unavailable, connect later via /api/v1/gateway")
			}
		}()
	}

	router := api.NewRouter(a.Controller, a.Hub, cfg.API.CORSOrigins)
	srv := &http.Server{
		Addr:              cfg.APIAddress(),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return serve(ctx, srv)
}

// serve runs srv until ctx is done or the listener fails.
func serve(ctx context.Context, srv *http.Server) error {
	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("Starting API server")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("server failed: %w", err)
	case <-ctx.Done():
	}

	log.Info().Msg("Shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}
	return nil
}
