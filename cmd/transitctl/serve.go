package main

import (
	"context"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"caltrain.dev/transit/api"
	"caltrain.dev/transit/config"
	"caltrain.dev/transit/worker"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the read API and both scheduled workers",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return fmt.Errorf("loading config: %w", err)
		}

		logger, err := newLogger()
		if err != nil {
			return fmt.Errorf("building logger: %w", err)
		}
		defer logger.Sync()

		store, err := openStore(cfg)
		if err != nil {
			return fmt.Errorf("opening kv store: %w", err)
		}

		ctx := context.Background()

		realtimeWorker := &worker.RealtimeWorker{
			Store:          store,
			APIKey:         cfg.UpstreamAPIKey,
			TripUpdatesURL: cfg.TripUpdatesURL,
			VehiclePosURL:  cfg.VehiclePosURL,
			AlertsURL:      cfg.AlertsURL,
			Timeout:        cfg.RealtimeTimeout,
			TTL:            cfg.RealtimeTTL,
			Logger:         logger,
		}
		scheduleWorker := &worker.ScheduleWorker{
			Store:     store,
			APIKey:    cfg.UpstreamAPIKey,
			StaticURL: cfg.StaticURL,
			Logger:    logger,
		}

		scheduler, err := worker.NewScheduler(ctx, realtimeWorker, "@every 120s", scheduleWorker, cfg.ScheduleCron, logger)
		if err != nil {
			return fmt.Errorf("building scheduler: %w", err)
		}
		scheduler.Start(ctx, realtimeWorker, scheduleWorker)
		defer scheduler.Stop()

		router := api.NewRouter(store, logger)

		addr := fmt.Sprintf(":%d", cfg.ListeningPort)
		logger.Info("server listening", zap.String("address", addr))
		return http.ListenAndServe(addr, router)
	},
}
