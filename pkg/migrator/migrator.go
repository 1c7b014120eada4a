// Package migrator applies the goose migrations embedded by each service.
package migrator

import (
	"context"
	"database/sql"
	"fmt"
	"io/fs"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"
)

// TableName is the goose version table of service. Each service keeps its own
// history so their migration numbers never collide.
func TableName(service string) string {
	return "goose_db_version_" + service
}

// RunMigrations applies every pending migration in files for service.
func RunMigrations(ctx context.Context, dbURL, service string, files fs.FS) error {
	return Run(ctx, dbURL, service, files, "up")
}

// Run executes a goose command ("up", "down", "status", "redo", ...) against
// the migrations in files.
func Run(ctx context.Context, dbURL, service string, files fs.FS, command string, args ...string) error {
	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close() //nolint:errcheck

	goose.SetBaseFS(files)
	goose.SetTableName(TableName(service))

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	if err := goose.RunContext(ctx, command, db, ".", args...); err != nil {
		return fmt.Errorf("%s migrations %s: %w", service, command, err)
	}
	return nil
}
