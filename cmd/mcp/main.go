package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog/log"
	"github.com/urmzd/yeehome/pkg/app"
	"github.com/urmzd/yeehome/pkg/config"
	"github.com/urmzd/yeehome/pkg/logging"
	yeemcp "github.com/urmzd/yeehome/pkg/mcp"
)

func main() {
	configPath := flag.String("config", "yeehome.yaml", "Path to YAML config file")
	flag.Parse()

	// Logging must go to stderr, stdout is the MCP transport
	cfg, err := config.Load(*configPath)
	if err != nil {
		logging.Setup(config.Default().Logging, os.Stderr)
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}
	logging.Setup(cfg.Logging, os.Stderr)

	ctx := context.Background()

	a, err := app.New(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close database")
		}
	}()

	if cfg.Gateway.AutoConnect {
		if _, err := a.Connect(ctx); err != nil {
			log.Warn().Err(err).Msg("Gateway unavailable, use the scan_gateway tool")
		}
	}

	mcpServer := yeemcp.NewServer(a.Controller)

	log.Info().Msg("Starting MCP server on stdio")

	if err := mcpServer.ServeStdio(); err != nil {
		log.Error().Err(err).Msg("MCP server failed")
	}
}
