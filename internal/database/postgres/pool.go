// Package postgres is the pgxpool-backed implementation of database.DB used by
// the server and platformctl.
package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"unimarket/internal/config"
	"unimarket/internal/database"
	"unimarket/internal/pkg/logger"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
)

var errClosed = errors.New("postgres: pool is not open")

// DB wraps a pgx pool. SQLDB shares the same pool through the stdlib driver
// for the migration runner.
type DB struct {
	conn
	pool  *pgxpool.Pool
	sqlDB *sql.DB
}

// PoolConfig maps DatabaseConfig onto pgxpool settings and installs the query
// tracer. Zero values keep pgx defaults.
func PoolConfig(cfg config.DatabaseConfig, appName string, log logger.Logger) (*pgxpool.Config, error) {
	pcfg, err := pgxpool.ParseConfig(cfg.DSN(appName))
	if err != nil {
		return nil, err
	}

	if cfg.ConnectTimeout > 0 {
		pcfg.ConnConfig.ConnectTimeout = cfg.ConnectTimeout
	}
	if cfg.PoolMaxConns > 0 {
		pcfg.MaxConns = cfg.PoolMaxConns
	}
	if cfg.PoolMinConns > 0 {
		pcfg.MinConns = cfg.PoolMinConns
	}
	if cfg.PoolMaxConnLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.PoolMaxConnLifetime
	}
	if cfg.PoolMaxConnIdleTime > 0 {
		pcfg.MaxConnIdleTime = cfg.PoolMaxConnIdleTime
	}
	if cfg.PoolHealthCheckPeriod > 0 {
		pcfg.HealthCheckPeriod = cfg.PoolHealthCheckPeriod
	}
	pcfg.ConnConfig.Tracer = newQueryTracer(cfg.SlowQuery, log)

	return pcfg, nil
}

// Connect opens the pool and pings it, bounded by 5s when ctx has no deadline.
func Connect(ctx context.Context, cfg config.DatabaseConfig, appName string, log logger.Logger) (*DB, error) {
	pcfg, err := PoolConfig(cfg, appName, log)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 5*time.Second)
		defer cancel()
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}

	return &DB{conn: conn{q: pool}, pool: pool, sqlDB: stdlib.OpenDBFromPool(pool)}, nil
}

func (d *DB) Ping(ctx context.Context) error {
	if d == nil || d.pool == nil {
		return errClosed
	}
	return d.pool.Ping(ctx)
}

func (d *DB) Close() error {
	if d == nil || d.pool == nil {
		return nil
	}
	err := d.sqlDB.Close()
	d.pool.Close()
	return err
}

func (d *DB) Begin(ctx context.Context) (database.Tx, error) {
	if d == nil || d.pool == nil {
		return nil, errClosed
	}
	tx, err := d.pool.Begin(ctx)
	if err != nil {
		return nil, err
	}
	return &txConn{conn: conn{q: tx}, tx: tx}, nil
}

func (d *DB) SQLDB() *sql.DB {
	if d == nil {
		return nil
	}
	return d.sqlDB
}

// querier is the statement surface pgxpool.Pool and pgx.Tx have in common.
type querier interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// conn adapts a querier to database.Querier. pgx.Rows and pgx.Row already
// satisfy database.Rows and database.Row.
type conn struct {
	q querier
}

func (c conn) Exec(ctx context.Context, query string, args ...any) (int64, error) {
	if c.q == nil {
		return 0, errClosed
	}
	tag, err := c.q.Exec(ctx, query, args...)
	if err != nil {
		return 0, err
	}
	return tag.RowsAffected(), nil
}

func (c conn) Query(ctx context.Context, query string, args ...any) (database.Rows, error) {
	if c.q == nil {
		return nil, errClosed
	}
	rows, err := c.q.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	return rows, nil
}

func (c conn) QueryRow(ctx context.Context, query string, args ...any) database.Row {
	if c.q == nil {
		return errRow{err: errClosed}
	}
	return c.q.QueryRow(ctx, query, args...)
}

type txConn struct {
	conn
	tx pgx.Tx
}

func (t *txConn) Commit(ctx context.Context) error   { return t.tx.Commit(ctx) }
func (t *txConn) Rollback(ctx context.Context) error { return t.tx.Rollback(ctx) }

type errRow struct{ err error }

func (r errRow) Scan(...any) error { return r.err }
