package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"caltrain.dev/transit/config"
	"caltrain.dev/transit/worker"
)

var refreshRealtimeCmd = &cobra.Command{
	Use:   "refresh-realtime",
	Short: "Fetch, decode, merge, and publish the realtime status once",
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

		w := &worker.RealtimeWorker{
			Store:          store,
			APIKey:         cfg.UpstreamAPIKey,
			TripUpdatesURL: cfg.TripUpdatesURL,
			VehiclePosURL:  cfg.VehiclePosURL,
			AlertsURL:      cfg.AlertsURL,
			Timeout:        cfg.RealtimeTimeout,
			TTL:            cfg.RealtimeTTL,
			Logger:         logger,
		}
		w.Run(context.Background())
		return nil
	},
}
