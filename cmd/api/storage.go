package main

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"docsai/internal/config"
	"docsai/internal/database"
	"docsai/internal/database/migration"
	"docsai/internal/repository/postgres"
	"docsai/internal/storage"
)

var newPostgres = database.NewPostgres

// openStorage builds the blob store named by cfg.Storage.Backend, wrapped in a
// read-through cache when STORAGE_CACHE_TTL is set. The returned func releases
// the backend.
func openStorage(ctx context.Context, cfg *config.AppConfig, log *zap.Logger) (storage.Storage, func() error, error) {
	noop := func() error { return nil }

	var (
		store   storage.Storage
		closeFn = noop
		err     error
	)
	switch cfg.Storage.Backend {
	case "", "memory":
		store = storage.NewMemory()
	case "badger":
		store, closeFn, err = storage.OpenBadger(cfg.Badger, log)
	case "redis":
		store, closeFn, err = storage.NewRedis(ctx, cfg.Redis)
	case "minio":
		store, err = storage.NewMinIO(cfg.MinIO)
	case "postgres":
		db, dbErr := newPostgres(ctx, cfg.Database, log)
		if dbErr != nil {
			return nil, nil, fmt.Errorf("connect postgres: %w", dbErr)
		}
		if err := migration.EnsureMigrated(ctx, db, log, cfg.Database.Host); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		store, closeFn = postgres.NewKVPostgres(db), db.Close
	default:
		return nil, nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("open %s storage: %w", cfg.Storage.Backend, err)
	}

	if cfg.Storage.CacheTTL > 0 {
		store = storage.NewCached(store, cfg.Storage.CacheTTL)
	}
	log.Info("storage_opened",
		zap.String("backend", cfg.Storage.Backend),
		zap.String("key", cfg.Storage.Key),
		zap.Duration("cache_ttl", cfg.Storage.CacheTTL),
	)
	return store, closeFn, nil
}
