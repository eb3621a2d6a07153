package postgresql

import (
	"context"
	"database/sql"
	"embed"
	"fmt"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var embedMigrations embed.FS

// Migrate applies every pending migration from the embedded migrations directory.
func Migrate(ctx context.Context, dsn string) error {
	const op = "storage.postgresql.Migrate"

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return fmt.Errorf("%s: open: %w", op, err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return fmt.Errorf("%s: ping: %w", op, err)
	}

	goose.SetBaseFS(embedMigrations)
	goose.SetLogger(goose.NopLogger())

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("%s: dialect: %w", op, err)
	}

	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("%s: up: %w", op, err)
	}

	return nil
}
