// Package app assembles the controller stack shared by the yeehome binaries.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog/log"

	"github.com/urmzd/yeehome/pkg/command/schema"
	"github.com/urmzd/yeehome/pkg/config"
	"github.com/urmzd/yeehome/pkg/db"
	"github.com/urmzd/yeehome/pkg/device"
	"github.com/urmzd/yeehome/pkg/gateway"
	"github.com/urmzd/yeehome/pkg/progress"
)

// App owns the database, progress sinks and gateway controller.
type App struct {
	Config     *config.Config
	DB         *db.DB
	Hub        *progress.Hub
	Controller *device.GatewayController

	mqtt *progress.MQTTReporter
}

// New opens the database, runs migrations and wires the controller. An
// unreachable MQTT broker is logged and skipped.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	database, err := db.Open(cfg.Database.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	log.Info().Str("path", database.Path()).Msg("Database opened")

	if err := database.Migrate(ctx); err != nil {
		_ = database.Close()
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	a := &App{
		Config: cfg,
		DB:     database,
		Hub:    progress.NewHub(0),
	}

	reporters := progress.Multi{progress.LogReporter{}, a.Hub}
	if cfg.MQTT.Enabled {
		r, err := progress.NewMQTTReporter(progress.MQTTOptions{
			Broker:   cfg.MQTT.Broker,
			ClientID: cfg.MQTT.ClientID,
			Username: cfg.MQTT.Username,
			Password: cfg.MQTT.Password,
			Topic:    cfg.MQTT.Topic,
			QoS:      byte(cfg.MQTT.QoS),
		})
		if err != nil {
			log.Warn().Err(err).Str("broker", cfg.MQTT.Broker).Msg("MQTT progress sink unavailable")
		} else {
			a.mqtt = r
			reporters = append(reporters, r)
		}
	}

	a.Controller = device.NewGatewayController(device.Options{
		Session: gateway.Options{
			ConnectTimeout:  cfg.Gateway.ConnectTimeoutDuration(),
			ReadTimeout:     cfg.Gateway.ReadTimeoutDuration(),
			ResponseTimeout: cfg.Gateway.ResponseTimeoutDuration(),
			MaxResends:      cfg.Gateway.MaxResends,
		},
		Discovery: gateway.DiscoverOptions{
			BroadcastAddress: cfg.Gateway.BroadcastAddress,
			Timeout:          cfg.Gateway.DiscoveryTimeoutDuration(),
		},
		Store:                database.Nodes(),
		Registry:             database.Gateways(),
		Reporter:             reporters,
		Validator:            schema.NewValidator(),
		PreferCachedTopology: cfg.Gateway.PreferCachedNodes,
	})

	return a, nil
}

// Connect opens a gateway session: the configured host first, then the
// last gateway seen, then a LAN scan.
func (a *App) Connect(ctx context.Context) (*gateway.Info, error) {
	if host := a.Config.Gateway.Host; host != "" {
		return a.Controller.Connect(ctx, host)
	}

	last, err := a.DB.Gateways().Last(ctx)
	switch {
	case err == nil:
		info, err := a.Controller.Connect(ctx, last.IP)
		if err == nil {
			return info, nil
		}
		log.Warn().Err(err).Str("ip", last.IP).Msg("Last known gateway unreachable, scanning")
	case !errors.Is(err, db.ErrGatewayNotFound):
		log.Warn().Err(err).Msg("Failed to read gateway history")
	}

	return a.Controller.ScanAndConnect(ctx)
}

// Close shuts down the controller, progress sinks and database.
func (a *App) Close() error {
	a.Controller.Close()
	if a.mqtt != nil {
		a.mqtt.Close()
	}
	return a.DB.Close()
}
