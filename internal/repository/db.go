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
)

type Config struct {
	Driver          string // "sqlite" | "postgres"
	DSN             string
	MaxConns        int32
	MaxConnLifetime time.Duration
	DialTimeout     time.Duration
}

// DB bundles the ent SQL driver with the dialect used to build statements.
type DB struct {
	drv     *entsql.Driver
	dialect string
	pool    *pgxpool.Pool
}

func (d *DB) Dialect() string { return d.dialect }

// Open connects to the ledger database and creates the schema when missing.
func Open(ctx context.Context, cfg Config, logger *slog.Logger) (*DB, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger.Info("connecting to job ledger", "driver", cfg.Driver)
	if cfg.DialTimeout <= 0 {
		cfg.DialTimeout = 10 * time.Second
	}

	var db *DB
	switch cfg.Driver {
	case "", "sqlite":
		sqlDB, err := sql.Open("sqlite", cfg.DSN)
		if err != nil {
			logger.Error("failed to open sqlite", "error", err)
			return nil, err
		}
		// sqlite allows a single writer
		sqlDB.SetMaxOpenConns(1)
		db = &DB{drv: entsql.OpenDB(dialect.SQLite, sqlDB), dialect: dialect.SQLite}
	case "postgres":
		pc, err := pgxpool.ParseConfig(cfg.DSN)
		if err != nil {
			logger.Error("failed to parse postgres dsn", "error", err)
			return nil, err
		}
		if cfg.MaxConns > 0 {
			pc.MaxConns = cfg.MaxConns
		}
		if cfg.MaxConnLifetime > 0 {
			pc.MaxConnLifetime = cfg.MaxConnLifetime
		}
		pc.ConnConfig.RuntimeParams["application_name"] = "bill-scanner"

		dialCtx, cancel := context.WithTimeout(ctx, cfg.DialTimeout)
		defer cancel()
		pool, err := pgxpool.NewWithConfig(dialCtx, pc)
		if err != nil {
			logger.Error("failed to connect to postgres", "error", err)
			return nil, err
		}
		db = &DB{drv: entsql.OpenDB(dialect.Postgres, stdlib.OpenDBFromPool(pool)), dialect: dialect.Postgres, pool: pool}
	default:
		return nil, fmt.Errorf("unsupported jobs driver %q", cfg.Driver)
	}

	if err := migrate(ctx, db); err != nil {
		db.Close(logger)
		return nil, fmt.Errorf("migrate job ledger: %w", err)
	}
	logger.Info("job ledger ready", "dialect", db.dialect)
	return db, nil
}

// Close closes the database connections gracefully
func (d *DB) Close(logger *slog.Logger) {
	if logger == nil {
		logger = slog.Default()
	}
	if d.drv != nil {
		if err := d.drv.Close(); err != nil {
			logger.Error("failed to close job ledger", "error", err)
		}
	}
	if d.pool != nil {
		d.pool.Close()
	}
	logger.Info("job ledger closed")
}

// HealthCheck pings the ledger database.
func HealthCheck(ctx context.Context, db *DB, timeout time.Duration, logger *slog.Logger) error {
	if logger == nil {
		logger = slog.Default()
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	if err := db.drv.DB().PingContext(ctx); err != nil {
		logger.Warn("job ledger ping failed", "error", err)
		return err
	}
	logger.Debug("job ledger ping successful")
	return nil
}

const extractJobDDL = `CREATE TABLE IF NOT EXISTS extract_job (
	id TEXT PRIMARY KEY,
	filename TEXT NOT NULL,
	doc_hash TEXT NOT NULL,
	format TEXT NOT NULL,
	status TEXT NOT NULL,
	method TEXT,
	pages INTEGER,
	extraction_confidence REAL,
	model_name TEXT,
	extracted_json TEXT,
	raw_response TEXT,
	sheet_row INTEGER,
	error_message TEXT,
	started_at TEXT NOT NULL,
	finished_at TEXT
)`

const extractJobIndexDDL = `CREATE INDEX IF NOT EXISTS extract_job_status_started ON extract_job (status, started_at)`

func migrate(ctx context.Context, db *DB) error {
	for _, stmt := range []string{extractJobDDL, extractJobIndexDDL} {
		var res sql.Result
		if err := db.drv.Exec(ctx, stmt, []any{}, &res); err != nil {
			return err
		}
	}
	return nil
}
