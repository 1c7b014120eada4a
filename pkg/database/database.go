// Package database owns the PostgreSQL connection pool shared by every service
// repository, plus the storage-level error classification those repositories return.
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/logger"
)

// Database bundles a pgx pool with a database/sql handle opened on the same pool.
// Repositories use the *sql.DB / *sql.Tx surface so the Watermill SQL publisher
// can join their transactions.
type Database struct {
	pool *pgxpool.Pool
	db   *sql.DB
}

// PoolConfig builds a pgxpool.Config from the application config.
func PoolConfig(cfg *config.Config) (*pgxpool.Config, error) {
	pc, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, Classify(fmt.Errorf("parse database url: %w", err))
	}

	pc.MaxConns = cfg.DatabaseMaxConns
	pc.MinConns = cfg.DatabaseMinConns
	pc.MaxConnLifetime = cfg.DatabaseMaxLifetime
	pc.MaxConnIdleTime = cfg.DatabaseIdleTimeout
	pc.ConnConfig.ConnectTimeout = cfg.DatabaseConnectTimeout

	return pc, nil
}

// NewPool opens the pool and verifies connectivity. Any failure comes back as a
// *Error of KindConnection.
func NewPool(ctx context.Context, cfg *config.Config, log logger.Logger) (*Database, error) {
	pc, err := PoolConfig(cfg)
	if err != nil {
		return nil, err
	}

	pool, err := pgxpool.NewWithConfig(ctx, pc)
	if err != nil {
		return nil, &Error{Kind: KindConnection, Message: err.Error()}
	}

	pingCtx, cancel := context.WithTimeout(ctx, cfg.DatabaseConnectTimeout)
	defer cancel()

	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, &Error{Kind: KindConnection, Message: err.Error()}
	}

	log.Info("database pool ready",
		"max_conns", pc.MaxConns,
		"min_conns", pc.MinConns,
		"max_lifetime", pc.MaxConnLifetime.String(),
	)

	return &Database{pool: pool, db: stdlib.OpenDBFromPool(pool)}, nil
}

// WithTx runs fn inside a transaction. fn's error rolls the transaction back and
// is returned unchanged; a nil return commits.
func (d *Database) WithTx(ctx context.Context, fn func(tx *sql.Tx) error) (err error) {
	tx, err := d.db.BeginTx(ctx, nil)
	if err != nil {
		return Classify(err)
	}

	defer func() {
		if p := recover(); p != nil {
			_ = tx.Rollback()
			panic(p)
		}
	}()

	if err := fn(tx); err != nil {
		if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
			return errors.Join(err, Classify(rbErr))
		}
		return err
	}

	if err := tx.Commit(); err != nil {
		return Classify(err)
	}
	return nil
}

// DB returns the database/sql handle backed by the pool.
func (d *Database) DB() *sql.DB {
	return d.db
}

// Pool returns the underlying pgx pool.
func (d *Database) Pool() *pgxpool.Pool {
	return d.pool
}

// Ping checks the database connection health.
func (d *Database) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := d.pool.Ping(ctx); err != nil {
		return fmt.Errorf("database ping: %w", err)
	}
	return nil
}

// Close releases the sql handle and the pool.
func (d *Database) Close() {
	_ = d.db.Close()
	d.pool.Close()
}
