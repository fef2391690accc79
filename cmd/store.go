package cmd

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio-contact/api/pkg/config"
	"portfolio-contact/api/pkg/db"
	"portfolio-contact/api/services/storage"
)

// migrator is implemented by the SQL stores.
type migrator interface {
	Migrate(ctx context.Context) error
}

// openStore builds the store selected by cfg. The returned func releases
// its connections.
func openStore(ctx context.Context, cfg config.StoreConfig) (storage.Storage, func(), error) {
	switch cfg.Driver {
	case config.StorePostgres:
		pool, err := db.ConnectPostgres(ctx, db.DefaultPoolConfig(cfg.DatabaseURL))
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewInstance(pool)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		slog.Info("using postgres store")
		return store, pool.Close, nil

	case config.StoreSQLite:
		sqlDB, err := db.OpenSQLite(ctx, cfg.SQLitePath)
		if err != nil {
			return nil, nil, err
		}
		store, err := storage.NewSQLiteStorage(sqlDB)
		if err != nil {
			sqlDB.Close()
			return nil, nil, err
		}
		slog.Info("using sqlite store", "path", cfg.SQLitePath)
		return store, func() { sqlDB.Close() }, nil

	case config.StoreMemory:
		slog.Warn("using in-memory store, messages are lost on restart")
		return storage.NewMemoryStorage(), func() {}, nil
	}
	return nil, nil, fmt.Errorf("unknown store driver %q", cfg.Driver)
}

// migrate creates the messages table when store is a SQL store.
func migrate(ctx context.Context, store storage.Storage) error {
	m, ok := store.(migrator)
	if !ok {
		return nil
	}
	if err := m.Migrate(ctx); err != nil {
		return fmt.Errorf("failed to migrate store: %w", err)
	}
	return nil
}
