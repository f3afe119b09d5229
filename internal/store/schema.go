package store

import (
	"context"
	"database/sql"
	_ "embed"
	"log/slog"
)

//go:embed schema.sql
var schemaSQL string

// ensureSchema creates absent tables and applies missing columns.
// It is idempotent: after the first success it changes nothing.
func ensureSchema(ctx context.Context, db *sql.DB, logger *slog.Logger) error {
	if _, err := db.ExecContext(ctx, schemaSQL); err != nil {
		return newError(KindSchema, "init schema", err)
	}

	if err := migrateColumns(ctx, db, columnMigrations, logger); err != nil {
		return err
	}

	return nil
}
