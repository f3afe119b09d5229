package store

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// DBFileName is the database file created inside the data directory.
const DBFileName = "vgreport.db"

// timestampLayout matches SQLite's datetime('now') so rows written by the
// store and rows defaulted by the schema compare consistently.
const timestampLayout = "2006-01-02 15:04:05"

// Clock supplies the wall-clock time written to created_at/updated_at.
type Clock interface {
	Now() time.Time
}

// systemClock reads time.Now.
type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Store provides durable local storage for the report tool.
//
// Store is a session factory: it remembers where the database lives and
// how to stamp rows, but holds no connection. It is safe for concurrent
// use because every call opens its own connection.
type Store struct {
	path   string
	clock  Clock
	ids    IDGenerator
	logger *slog.Logger
}

// Option configures a Store.
type Option func(*Store)

// WithClock overrides the clock used for timestamps.
func WithClock(c Clock) Option {
	return func(s *Store) { s.clock = c }
}

// WithIDGenerator overrides the generator used for evidence snippet IDs
// and for ids handed out by NewID.
func WithIDGenerator(g IDGenerator) Option {
	return func(s *Store) { s.ids = g }
}

// WithLogger sets the logger for session and migration events.
func WithLogger(l *slog.Logger) Option {
	return func(s *Store) { s.logger = l }
}

// Open prepares a store rooted at dir, creating the directory if needed,
// and runs one session so the schema is current before Open returns.
//
// The database file is dir/vgreport.db. Open is idempotent - safe to call
// multiple times on the same directory.
func Open(dir string, opts ...Option) (*Store, error) {
	if dir == "" {
		return nil, newError(KindEnvironment, "resolve data dir", fmt.Errorf("data directory is empty"))
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, newError(KindEnvironment, "create data dir", err)
	}

	s := &Store{
		path:   filepath.Join(dir, DBFileName),
		clock:  systemClock{},
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.session(context.Background(), func(*sql.DB) error { return nil }); err != nil {
		return nil, err
	}
	return s, nil
}

// NewID returns a fresh id from the store's generator.
func (s *Store) NewID() string {
	return s.ids.Generate()
}

// Path returns the database file path.
func (s *Store) Path() string {
	return s.path
}

// Init ensures the schema is current and returns the database path.
func (s *Store) Init(ctx context.Context) (string, error) {
	if err := s.session(ctx, func(*sql.DB) error { return nil }); err != nil {
		return "", err
	}
	return s.path, nil
}

// session opens a connection, ensures the schema, runs fn and closes the
// connection. No state survives between sessions.
func (s *Store) session(ctx context.Context, fn func(db *sql.DB) error) error {
	db, err := s.connect(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if closeErr := db.Close(); closeErr != nil {
			s.logger.Warn("closing database", "path", s.path, "error", closeErr)
		}
	}()

	if err := ensureSchema(ctx, db, s.logger); err != nil {
		return err
	}
	return fn(db)
}

// connect opens and configures a single-connection handle.
func (s *Store) connect(ctx context.Context) (*sql.DB, error) {
	dsn := fmt.Sprintf("file:%s?_busy_timeout=5000&_txlock=immediate", s.path)
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, newError(KindEnvironment, "open database", err)
	}

	// SQLite only supports one writer at a time
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, newError(KindEnvironment, "connect to database", err)
	}

	if err := applyPragmas(ctx, db); err != nil {
		db.Close()
		return nil, newError(KindEnvironment, "apply pragmas", err)
	}

	s.logger.Debug("database session opened", "path", s.path)
	return db, nil
}

// applyPragmas sets required SQLite configuration.
func applyPragmas(ctx context.Context, db *sql.DB) error {
	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
		"PRAGMA journal_mode = WAL",
		"PRAGMA foreign_keys = ON",
	}

	for _, pragma := range pragmas {
		if _, err := db.ExecContext(ctx, pragma); err != nil {
			return fmt.Errorf("failed to execute %q: %w", pragma, err)
		}
	}

	return nil
}

// now returns the current time in the stored timestamp format.
func (s *Store) now() string {
	return s.clock.Now().UTC().Format(timestampLayout)
}

// verifyPragma checks that a pragma is set to the expected value.
// Used for testing.
func verifyPragma(ctx context.Context, db *sql.DB, name, expected string) error {
	var value string
	query := fmt.Sprintf("PRAGMA %s", name)
	if err := db.QueryRowContext(ctx, query).Scan(&value); err != nil {
		return fmt.Errorf("failed to query %s: %w", name, err)
	}
	if value != expected {
		return fmt.Errorf("%s = %q, expected %q", name, value, expected)
	}
	return nil
}
