package main

import (
	"fmt"

	"go.uber.org/zap"

	"caltrain.dev/transit/config"
	"caltrain.dev/transit/kvstore"
)

// openStore builds the KV backend named by cfg.KVBackend.
func openStore(cfg *config.Config) (kvstore.Store, error) {
	switch cfg.KVBackend {
	case "", "memory":
		return kvstore.NewMemoryStore(), nil
	case "sqlite":
		return kvstore.NewSQLiteStore(kvstore.SQLiteConfig{OnDisk: cfg.SQLiteOnDisk, Directory: cfg.SQLiteDir})
	case "postgres":
		if cfg.PostgresConnStr == "" {
			return nil, fmt.Errorf("KV_BACKEND=postgres requires POSTGRES_CONN_STR")
		}
		return kvstore.NewPostgresStore(cfg.PostgresConnStr)
	default:
		return nil, fmt.Errorf("unknown KV_BACKEND %q", cfg.KVBackend)
	}
}

func newLogger() (*zap.Logger, error) {
	return zap.NewProduction()
}
