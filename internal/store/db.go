package store

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
)

// DB wraps a connection pool with DefaultQueryExecMode pinned to
// QueryExecModeDescribeExec, so prepared-statement plans cached by the
// driver never go stale across a live schema migration.
type DB struct {
	*sqlx.DB
}

// NewPgxConnConfig parses dsn into a pgx connection config with
// DefaultQueryExecMode forced to QueryExecModeDescribeExec. Exported
// separately from Open so it is independently testable without a live
// database.
func NewPgxConnConfig(dsn string) (*pgx.ConnConfig, error) {
	cfg, err := pgx.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to parse PostgreSQL connection string: %w", err)
	}
	cfg.DefaultQueryExecMode = pgx.QueryExecModeDescribeExec
	return cfg, nil
}

// Open establishes the connection pool and wraps it for sqlx use.
func Open(ctx context.Context, dsn string) (*DB, error) {
	cfg, err := NewPgxConnConfig(dsn)
	if err != nil {
		return nil, err
	}

	sqlDB := stdlib.OpenDB(*cfg)
	if err := sqlDB.PingContext(ctx); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("failed to reach database: %w", err)
	}

	return &DB{DB: sqlx.NewDb(sqlDB, "pgx")}, nil
}

// BeginTxx starts a transaction bound to ctx, the form every repository
// method in this package uses for its per-chunk/per-batch atomicity.
func (db *DB) BeginTxx(ctx context.Context) (*sqlx.Tx, error) {
	return db.DB.BeginTxx(ctx, nil)
}
