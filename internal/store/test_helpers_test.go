package store

import (
	"bytes"
	"database/sql"
	"io"
	"log/slog"
	"testing"

	"github.com/roach88/vgreport/internal/testutil"
)

// createTestStore creates a new store in a temp directory with a
// deterministic clock and ID generator.
func createTestStore(t *testing.T, opts ...Option) *Store {
	t.Helper()
	base := []Option{
		WithClock(testutil.NewStepClock()),
		WithIDGenerator(testutil.NewSequenceIDGenerator("ev")),
		WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	}
	s, err := Open(t.TempDir(), append(base, opts...)...)
	if err != nil {
		t.Fatalf("Open() failed: %v", err)
	}
	return s
}

// openRaw opens a plain connection to the store's file so tests can
// inspect or tamper with rows behind the store's back.
func openRaw(t *testing.T, path string) *sql.DB {
	t.Helper()
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		t.Fatalf("sql.Open() failed: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

// captureLogger returns a logger writing text records into buf.
func captureLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

func ptr[T any](v T) *T {
	return &v
}
