package repository

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"time"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	_ "modernc.org/sqlite"

	"github.com/joseph-ayodele/bankfiles/internal/common"
)

type Config struct {
	DSN              string
	MaxConns         int32
	MinConns         int32
	MaxConnLifetime  time.Duration
	MaxConnIdleTime  time.Duration
	DialTimeout      time.Duration
	StatementTimeout time.Duration
}

// ConfigFrom maps the database section of the application config.
func ConfigFrom(c common.DatabaseConfig) Config {
	return Config{
		DSN:              c.DSN,
		MaxConns:         c.MaxConns,
		MinConns:         c.MinConns,
		MaxConnLifetime:  c.MaxConnLifetime,
		MaxConnIdleTime:  c.MaxConnIdleTime,
		DialTimeout:      c.DialTimeout,
		StatementTimeout: c.StatementTimeout,
	}
}

// DB is an ent SQL driver plus the pool behind it, if any.
type DB struct {
	Driver *entsql.Driver
	pool   *pgxpool.Pool
}

// Dialect is the SQL dialect of the underlying store.
func (db *DB) Dialect() string { return db.Driver.Dialect() }

// Open creates a pgx pool and wraps it for ent.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	logger.Info("connecting to database")
	pc, err := pgxpool.ParseConfig(cfg.DSN)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	pc.MaxConns = cfg.MaxConns
	pc.MinConns = cfg.MinConns
	pc.MaxConnLifetime = cfg.MaxConnLifetime
	pc.MaxConnIdleTime = cfg.MaxConnIdleTime
	pc.ConnConfig.RuntimeParams["application_name"] = "bankfiles"
	if cfg.StatementTimeout > 0 {
		pc.ConnConfig.RuntimeParams["statement_timeout"] = fmt.Sprint(cfg.StatementTimeout.Milliseconds())
	}

	if cfg.DialTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
	}
	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		logger.Error("failed to connect to database", "error", err)
		return nil, err
	}

	// Wrap pool as *sql.DB for ent
	db := stdlib.OpenDBFromPool(pool)
	logger.Info("successfully connected to database")
	return &DB{Driver: entsql.OpenDB(dialect.Postgres, db), pool: pool}, nil
}

// OpenLocal opens a sqlite store. A single connection is kept so in-memory
// databases survive between calls.
func OpenLocal(ctx context.Context, dsn string, logger *slog.Logger) (*DB, error) {
	logger.Info("opening local database", "dsn", dsn)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(1)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		logger.Error("failed to open local database", "error", err)
		return nil, err
	}
	return &DB{Driver: entsql.OpenDB(dialect.SQLite, db)}, nil
}

// Connect opens Postgres, or the local store when only LOCAL_DB is set.
func Connect(ctx context.Context, cfg common.DatabaseConfig, logger *slog.Logger) (*DB, error) {
	if cfg.UseLocal() {
		return OpenLocal(ctx, cfg.LocalDSN, logger)
	}
	return Open(ctx, ConfigFrom(cfg), logger)
}

// Close closes the database connections gracefully
func Close(db *DB, logger *slog.Logger) {
	if db == nil {
		return
	}
	logger.Info("closing database connections")
	if err := db.Driver.Close(); err != nil {
		logger.Error("failed to close ent driver", "error", err)
	}
	if db.pool != nil {
		db.pool.Close()
	}
	logger.Info("database connections closed")
}

// HealthCheck pings the store to catch DSN issues early.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	logger.Debug("pinging database")
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	var err error
	if db.pool != nil {
		err = db.pool.Ping(ctx)
	} else {
		err = db.Driver.DB().PingContext(ctx)
	}
	if err != nil {
		return queryErr("ping", err)
	}
	logger.Debug("database ping successful")
	return nil
}

var schema = []string{
	`CREATE TABLE IF NOT EXISTS layout_configurations (
		id TEXT PRIMARY KEY,
		bank_id TEXT NOT NULL,
		kind TEXT NOT NULL,
		name TEXT NOT NULL,
		description TEXT NOT NULL DEFAULT '',
		is_default BOOLEAN NOT NULL DEFAULT FALSE,
		records TEXT NOT NULL,
		fields TEXT NOT NULL,
		updated_at BIGINT NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS layout_configurations_bank ON layout_configurations (bank_id)`,
	`CREATE TABLE IF NOT EXISTS templates (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		background_url TEXT NOT NULL,
		page_width_mm DOUBLE PRECISION NOT NULL DEFAULT 0,
		page_height_mm DOUBLE PRECISION NOT NULL DEFAULT 0,
		requires_check_digit BOOLEAN NOT NULL DEFAULT FALSE
	)`,
	`CREATE TABLE IF NOT EXISTS template_fields (
		template_id TEXT NOT NULL,
		position INTEGER NOT NULL,
		field_key TEXT NOT NULL,
		source TEXT NOT NULL DEFAULT '',
		page INTEGER NOT NULL DEFAULT 1,
		x DOUBLE PRECISION NOT NULL,
		y DOUBLE PRECISION NOT NULL,
		width DOUBLE PRECISION NOT NULL,
		height DOUBLE PRECISION NOT NULL,
		font_family TEXT NOT NULL DEFAULT '',
		font_size DOUBLE PRECISION NOT NULL DEFAULT 0,
		alignment TEXT NOT NULL DEFAULT '',
		format TEXT NOT NULL DEFAULT '',
		is_barcode BOOLEAN NOT NULL DEFAULT FALSE,
		is_digitable BOOLEAN NOT NULL DEFAULT FALSE,
		PRIMARY KEY (template_id, position)
	)`,
	`CREATE TABLE IF NOT EXISTS data_records (
		id TEXT PRIMARY KEY,
		payload TEXT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS bank_files (
		id TEXT PRIMARY KEY,
		source_path TEXT NOT NULL,
		filename TEXT NOT NULL,
		file_ext TEXT NOT NULL,
		file_size BIGINT NOT NULL,
		content_hash TEXT NOT NULL UNIQUE,
		kind TEXT NOT NULL,
		line_count INTEGER NOT NULL,
		uploaded_at BIGINT NOT NULL
	)`,
	`CREATE TABLE IF NOT EXISTS render_jobs (
		id TEXT PRIMARY KEY,
		template_id TEXT NOT NULL,
		record_id TEXT NOT NULL,
		status TEXT NOT NULL,
		output_path TEXT NOT NULL DEFAULT '',
		error_message TEXT NOT NULL DEFAULT '',
		started_at BIGINT NOT NULL,
		finished_at BIGINT NOT NULL DEFAULT 0
	)`,
}

// Migrate creates the tables used by the repositories.
func Migrate(ctx context.Context, db *DB) error {
	for _, stmt := range schema {
		if err := db.Driver.Exec(ctx, stmt, []any{}, nil); err != nil {
			return queryErr("migrate", err)
		}
	}
	return nil
}

func millis(t time.Time) int64 {
	if t.IsZero() {
		return 0
	}
	return t.UnixMilli()
}

func fromMillis(ms int64) time.Time {
	if ms == 0 {
		return time.Time{}
	}
	return time.UnixMilli(ms).UTC()
}

// queryErr wraps a store failure as ErrDatabase.
func queryErr(op string, err error) error {
	return common.NewAppError("DATABASE_ERROR", op, fmt.Errorf("%w: %v", common.ErrDatabase, err))
}
