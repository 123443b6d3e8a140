package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"caltrain.dev/transit/config"
	"caltrain.dev/transit/worker"
)

var buildScheduleCmd = &cobra.Command{
	Use:   "build-schedule",
	Short: "Fetch, build, validate, and publish the static schedule once",
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

		w := &worker.ScheduleWorker{
			Store:     store,
			APIKey:    cfg.UpstreamAPIKey,
			StaticURL: cfg.StaticURL,
			Logger:    logger,
		}
		w.Run(context.Background())
		return nil
	},
}
