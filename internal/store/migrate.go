package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
)

// columnMigration adds one column to a table created by an older schema.
// DDL must supply a NOT NULL default so existing rows stay valid.
type columnMigration struct {
	Table  string
	Column string
	DDL    string
}

// columnMigrations lists every column added after the base schema.
// SQLite's ADD COLUMN has no IF NOT EXISTS, so each entry is probed first.
// Entries are independent: none may rely on another having run.
var columnMigrations = []columnMigration{
	{
		Table:  "drafts",
		Column: "author",
		DDL:    "ALTER TABLE drafts ADD COLUMN author TEXT NOT NULL DEFAULT 'teacher'",
	},
	{
		Table:  "drafts",
		Column: "status",
		DDL:    "ALTER TABLE drafts ADD COLUMN status TEXT NOT NULL DEFAULT 'approved'",
	},
}

// queryer is satisfied by both *sql.DB and *sql.Tx.
type queryer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

// migrateColumns applies each migration whose column is absent.
// There is no rollback: a failure leaves every earlier migration applied.
func migrateColumns(ctx context.Context, db *sql.DB, migrations []columnMigration, logger *slog.Logger) error {
	for _, m := range migrations {
		applied, err := ensureColumn(ctx, db, m)
		if err != nil {
			return err
		}
		if applied {
			logger.Info("applied column migration", "table", m.Table, "column", m.Column)
		}
	}
	return nil
}

// ensureColumn probes for m.Column and runs m.DDL when it is missing.
// The probe and the ALTER share one immediate transaction so a concurrent
// session cannot add the column in between.
func ensureColumn(ctx context.Context, db *sql.DB, m columnMigration) (applied bool, err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, newError(KindSchema, fmt.Sprintf("migrate %s.%s", m.Table, m.Column), err)
	}
	defer tx.Rollback() // No-op if committed

	exists, err := columnExists(ctx, tx, m.Table, m.Column)
	if err != nil {
		return false, err
	}
	if exists {
		return false, nil
	}

	if _, err := tx.ExecContext(ctx, m.DDL); err != nil {
		return false, newError(KindSchema, fmt.Sprintf("migrate %s.%s", m.Table, m.Column), err)
	}
	if err := tx.Commit(); err != nil {
		return false, newError(KindSchema, fmt.Sprintf("migrate %s.%s", m.Table, m.Column), err)
	}
	return true, nil
}

// columnExists reports whether table has a column named column.
func columnExists(ctx context.Context, q queryer, table, column string) (bool, error) {
	columns, err := tableColumns(ctx, q, table)
	if err != nil {
		return false, err
	}
	for _, name := range columns {
		if name == column {
			return true, nil
		}
	}
	return false, nil
}

// tableColumns returns the live column names of table in declaration order.
func tableColumns(ctx context.Context, q queryer, table string) ([]string, error) {
	rows, err := q.QueryContext(ctx, fmt.Sprintf("PRAGMA table_info(%s)", table))
	if err != nil {
		return nil, newError(KindSchema, fmt.Sprintf("read schema for %s", table), err)
	}
	defer rows.Close()

	var columns []string
	for rows.Next() {
		var (
			cid        int
			name       string
			colType    string
			notNull    int
			defaultVal sql.NullString
			pk         int
		)
		if err := rows.Scan(&cid, &name, &colType, &notNull, &defaultVal, &pk); err != nil {
			return nil, newError(KindSchema, fmt.Sprintf("read column info for %s", table), err)
		}
		columns = append(columns, name)
	}
	if err := rows.Err(); err != nil {
		return nil, newError(KindSchema, fmt.Sprintf("iterate table info for %s", table), err)
	}
	return columns, nil
}
