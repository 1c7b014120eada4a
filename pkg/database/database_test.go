package database

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"testing"
	"time"

	"github.com/ghuser/mall/pkg/config"
	"github.com/ghuser/mall/pkg/logger"
)

func TestPoolConfig(t *testing.T) {
	cfg := &config.Config{
		DatabaseURL:            "postgres://mall:pw@localhost:5432/mall?sslmode=disable",
		DatabaseMaxConns:       5,
		DatabaseMinConns:       1,
		DatabaseMaxLifetime:    30 * time.Minute,
		DatabaseIdleTimeout:    10 * time.Minute,
		DatabaseConnectTimeout: 30 * time.Second,
	}

	pc, err := PoolConfig(cfg)
	if err != nil {
		t.Fatalf("PoolConfig: %v", err)
	}
	if pc.MaxConns != 5 || pc.MinConns != 1 {
		t.Fatalf("pool sizes: got max=%d min=%d", pc.MaxConns, pc.MinConns)
	}
	if pc.MaxConnLifetime != 30*time.Minute || pc.MaxConnIdleTime != 10*time.Minute {
		t.Fatalf("pool lifetimes: got %v / %v", pc.MaxConnLifetime, pc.MaxConnIdleTime)
	}
	if pc.ConnConfig.ConnectTimeout != 30*time.Second {
		t.Fatalf("connect timeout: got %v", pc.ConnConfig.ConnectTimeout)
	}
}

func TestPoolConfig_InvalidURL(t *testing.T) {
	_, err := PoolConfig(&config.Config{DatabaseURL: "postgres://%zz"})
	if err == nil {
		t.Fatal("expected error for malformed url")
	}
	var de *Error
	if !errors.As(err, &de) {
		t.Fatalf("expected *database.Error, got %T", err)
	}
}

// TestWithTx_Integration requires DATABASE_URL.
func TestWithTx_Integration(t *testing.T) {
	url := os.Getenv("DATABASE_URL")
	if url == "" {
		t.Skip("DATABASE_URL not set")
	}

	cfg := &config.Config{
		DatabaseURL:            url,
		DatabaseMaxConns:       2,
		DatabaseMinConns:       1,
		DatabaseMaxLifetime:    time.Minute,
		DatabaseIdleTimeout:    time.Minute,
		DatabaseConnectTimeout: 5 * time.Second,
		LogLevel:               "error",
	}

	ctx := context.Background()
	db, err := NewPool(ctx, cfg, logger.New(cfg))
	if err != nil {
		t.Fatalf("NewPool: %v", err)
	}
	t.Cleanup(db.Close)

	if err := db.Ping(ctx); err != nil {
		t.Fatalf("Ping: %v", err)
	}

	sentinel := errors.New("rollback please")
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, "SELECT 1"); err != nil {
			return err
		}
		return sentinel
	})
	if !errors.Is(err, sentinel) {
		t.Fatalf("expected fn error to be returned, got %v", err)
	}

	var n int
	err = db.WithTx(ctx, func(tx *sql.Tx) error {
		return tx.QueryRowContext(ctx, "SELECT 42").Scan(&n)
	})
	if err != nil || n != 42 {
		t.Fatalf("commit path: n=%d err=%v", n, err)
	}
}
