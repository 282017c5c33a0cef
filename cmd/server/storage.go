package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/fastygo/storefront/internal/config"
	pgInfra "github.com/fastygo/storefront/internal/infrastructure/postgres"
	redisInfra "github.com/fastygo/storefront/internal/infrastructure/redis"
	"github.com/fastygo/storefront/internal/services/lifecycle"
	"github.com/fastygo/storefront/repository"
	boltRepo "github.com/fastygo/storefront/repository/bolt"
	"github.com/fastygo/storefront/repository/memory"
	pgRepo "github.com/fastygo/storefront/repository/postgres"
	redisRepo "github.com/fastygo/storefront/repository/redis"
)

// openStorage connects the profile storage driver selected by STORAGE_DRIVER
// and registers its shutdown hook.
func openStorage(ctx context.Context, cfg *config.Config, manager *lifecycle.Manager, logger *zap.Logger) (repository.KeyValueStore, error) {
	switch cfg.Storage.Driver {
	case config.DriverMemory:
		logger.Warn("profile storage is in memory; sessions are lost on restart")
		return memory.NewStore(), nil

	case config.DriverBolt:
		store, err := boltRepo.Open(cfg.Storage.BoltPath, "")
		if err != nil {
			return nil, err
		}
		manager.Register("bolt", func(context.Context) error {
			return store.Close()
		})
		return store, nil

	case config.DriverRedis:
		client, err := redisInfra.NewClient(ctx, cfg.Redis, logger)
		if err != nil {
			return nil, err
		}
		manager.Register("redis", func(context.Context) error {
			return client.Close()
		})
		return redisRepo.NewKeyValueStore(client), nil

	case config.DriverPostgres:
		if err := pgInfra.RunMigrations(cfg, logger); err != nil {
			return nil, fmt.Errorf("migrations: %w", err)
		}
		pool, err := pgInfra.NewPool(ctx, cfg.Database, logger)
		if err != nil {
			return nil, err
		}
		manager.Register("postgres", func(context.Context) error {
			pool.Close()
			return nil
		})
		return pgRepo.NewKeyValueStore(pool), nil
	}
	return nil, fmt.Errorf("unknown storage driver %q", cfg.Storage.Driver)
}
