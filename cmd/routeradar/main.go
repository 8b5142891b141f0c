// cmd/routeradar/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/mfreeman451/routeradar/pkg/alerts"
	"github.com/mfreeman451/routeradar/pkg/api"
	"github.com/mfreeman451/routeradar/pkg/config"
	"github.com/mfreeman451/routeradar/pkg/db"
	"github.com/mfreeman451/routeradar/pkg/lifecycle"
	"github.com/mfreeman451/routeradar/pkg/logger"
	"github.com/mfreeman451/routeradar/pkg/realtime"
	"github.com/mfreeman451/routeradar/pkg/scheduler"
	"github.com/mfreeman451/routeradar/pkg/telemetry"
	"github.com/mfreeman451/routeradar/pkg/traffic"
)

func main() {
	if err := run(); err != nil {
		log.Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	configPath := flag.String("config", "/etc/routeradar/routeradar.json", "Path to config file")
	seedPath := flag.String("seed", "", "Optional JSON file of devices to import before starting")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	rootLog, err := logger.Init(cfg.Logging)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}

	telemetry.InitMetrics()

	key, err := cfg.SecretKey()
	if err != nil {
		return err
	}

	database, err := db.New(cfg.DBPath, db.WithCredentialKey(key), db.WithLogger(rootLog.WithComponent("db")))
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}

	defer func() {
		if err := database.Close(); err != nil {
			rootLog.Error().Err(err).Msg("Failed to close database")
		}
	}()

	ctx := context.Background()

	if *seedPath != "" {
		n, err := seedDevices(ctx, database, *seedPath)
		if err != nil {
			return fmt.Errorf("failed to import devices: %w", err)
		}

		rootLog.Info().Int("devices", n).Str("path", *seedPath).Msg("Imported devices")
	}

	notifier, err := buildNotifier(cfg, rootLog.WithComponent("notifier"))
	if err != nil {
		return err
	}

	manager := alerts.NewManager(database, notifier, cfg.ConfirmationThreshold,
		alerts.WithLogger(rootLog.WithComponent("alerts")))

	store, err := realtime.NewStore(cfg.RealtimeCapacity, cfg.RealtimeMaxSeries)
	if err != nil {
		return fmt.Errorf("failed to create realtime store: %w", err)
	}

	sched := scheduler.New(cfg, database, manager, store,
		scheduler.WithLogger(rootLog.WithComponent("scheduler")))

	cache := traffic.NewCache(database, time.Duration(cfg.QueryCacheTTL), telemetry.CacheStats{})

	apiServer := api.NewServer(database, sched, cache, store, api.NewTokenAuthenticator(cfg.AuthTokens),
		api.WithLogger(rootLog.WithComponent("api")),
		api.WithCORS(cfg.CORS),
		api.WithRealtimeLimit(cfg.RealtimePushSamples),
	)

	return lifecycle.RunServer(ctx, &lifecycle.ServerOptions{
		ServiceName: "routeradar",
		Service:     sched,
		HTTPServer:  apiServer.HTTPServer(cfg.ListenAddr),
		GRPCAddr:    cfg.GRPCAddr,
		Logger:      rootLog.WithComponent("lifecycle"),
	})
}

// buildNotifier fans alerts out to every enabled webhook. Without any,
// alerts are only logged.
func buildNotifier(cfg *config.Config, l logger.Logger) (alerts.Notifier, error) {
	notifiers := alerts.MultiNotifier{}

	for i := range cfg.Webhooks {
		if !cfg.Webhooks[i].Enabled {
			continue
		}

		w, err := alerts.NewWebhookNotifier(cfg.Webhooks[i], l)
		if err != nil {
			return nil, fmt.Errorf("webhook %s: %w", cfg.Webhooks[i].URL, err)
		}

		notifiers = append(notifiers, w)
	}

	if len(notifiers) == 0 {
		return alerts.NewLogNotifier(l), nil
	}

	return notifiers, nil
}
