package server

import (
	"context"
	"log/slog"
	"time"

	"github.com/joseph-ayodele/bankfiles/internal/common"
	"github.com/joseph-ayodele/bankfiles/internal/repository"
)

// DatabaseResult holds an opened store and its cleanup.
type DatabaseResult struct {
	DB      *repository.DB
	Cleanup func()
}

// InitDatabase connects to the configured store, or to an in-memory sqlite
// store when inmem is set, and applies the schema.
func InitDatabase(ctx context.Context, cfg *common.Config, inmem bool, logger *slog.Logger) (*DatabaseResult, error) {
	var (
		db  *repository.DB
		err error
	)
	if inmem {
		logger.Info("using in-memory sqlite store")
		db, err = repository.OpenLocal(ctx, ":memory:", logger)
	} else {
		db, err = ConnectDB(ctx, cfg.Database, logger)
	}
	if err != nil {
		return nil, err
	}
	if err := repository.Migrate(ctx, db); err != nil {
		logger.Error("failed to apply schema", "error", err)
		CloseDB(db, logger)
		return nil, err
	}
	return &DatabaseResult{
		DB:      db,
		Cleanup: func() { CloseDB(db, logger) },
	}, nil
}

// ConnectDB establishes a connection to the configured store.
func ConnectDB(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*repository.DB, error) {
	db, err := repository.Connect(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}
	logger.Info("successfully connected to database", "local", cfg.UseLocal())
	return db, nil
}

// PingDB pings the database to ensure it's responsive
func PingDB(ctx context.Context, db *repository.DB, logger *slog.Logger, timeout time.Duration) error {
	return repository.HealthCheck(ctx, db, timeout, logger)
}

// CloseDB closes the database connections gracefully
func CloseDB(db *repository.DB, logger *slog.Logger) {
	repository.Close(db, logger)
}
