// Package store provides SQLite-backed local storage for report drafts.
//
// The store persists:
//   - Students: roster entries, upserted by id
//   - Report Periods: read-only here, populated by another collaborator
//   - Drafts: one row per (student, period, frame, section)
//   - Evidence Snippets: free-text observations per student
//   - App Settings: key -> JSON value
//
// # Sessions
//
// Store holds no open connection. Every public method opens its own
// short-lived *sql.DB, ensures the schema, performs one logical read or
// write and closes the connection again.
//
// # Schema Evolution
//
//   - Tables are created with CREATE TABLE IF NOT EXISTS on every session.
//   - Columns added after the first release are applied by probing
//     PRAGMA table_info and running ALTER TABLE ... ADD COLUMN only when the
//     column is missing. There is no version ledger; each column migration
//     is independent of every other.
//
// # Draft Identity
//
//   - The natural key is UNIQUE(student_id, report_period_id, frame, section).
//   - The id column is always report.DraftKey.ID() of that same key, so
//     conflict on the natural key and primary key uniqueness never disagree.
//
// # Database Configuration
//
//   - WAL mode
//   - busy_timeout=5000
//   - foreign_keys=ON
//   - immediate transactions (_txlock=immediate), so a probe and the
//     ALTER it guards run under one write lock
package store
