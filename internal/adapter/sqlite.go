package adapter

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	_ "modernc.org/sqlite" // sqlite driver
)

func init() {
	Register("sqlite", func(logger *slog.Logger) Adapter { return NewSQLiteAdapter(logger) })
}

// SQLiteAdapter implements the Adapter interface for SQLite. It serves
// local development and tests; the cgo-free driver keeps builds portable.
type SQLiteAdapter struct {
	db     *sql.DB
	config Config
	logger *slog.Logger
}

// NewSQLiteAdapter creates a new SQLite adapter instance.
func NewSQLiteAdapter(logger *slog.Logger) *SQLiteAdapter {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &SQLiteAdapter{logger: logger}
}

// Connect establishes a connection to SQLite.
// Use ":memory:" as the path for an in-memory database.
func (a *SQLiteAdapter) Connect(ctx context.Context, cfg Config) error {
	path := cfg.Path
	if path == "" {
		path = ":memory:"
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}

	// Foreign keys are off by default in sqlite; the target schema
	// relies on them as a backstop behind staging validation.
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON"); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to enable sqlite foreign keys: %w", err)
	}

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return fmt.Errorf("failed to ping sqlite: %w", err)
	}

	a.db = db
	a.config = cfg
	a.logger.Debug("connected to sqlite", "path", path)

	return nil
}

// Close closes the SQLite connection.
func (a *SQLiteAdapter) Close() error {
	if a.db != nil {
		return a.db.Close()
	}
	return nil
}

// DB returns the underlying connection pool.
func (a *SQLiteAdapter) DB() *sql.DB {
	return a.db
}

// Placeholder renders sqlite positional parameters (?).
func (a *SQLiteAdapter) Placeholder(i int) string {
	return "?"
}

// DialectName returns "sqlite".
func (a *SQLiteAdapter) DialectName() string {
	return "sqlite"
}

// MigrationDialect returns the goose dialect name.
func (a *SQLiteAdapter) MigrationDialect() string {
	return "sqlite3"
}

// Ensure SQLiteAdapter implements Adapter interface
var _ Adapter = (*SQLiteAdapter)(nil)
