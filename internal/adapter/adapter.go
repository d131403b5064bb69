// Package adapter provides database adapter interfaces and implementations
// for the ingestion pipeline's target stores.
package adapter

import (
	"context"
	"database/sql"
)

// Config holds the configuration for connecting to a target database.
type Config struct {
	// Type specifies the database type (e.g., "postgres", "sqlite")
	Type string

	// Path is the file path for file-based databases (e.g., SQLite)
	// Use ":memory:" for in-memory databases
	Path string

	// Host is the hostname for network-based databases
	Host string

	// Port is the port number for network-based databases
	Port int

	// Database is the database name
	Database string

	// Username for authentication
	Username string

	// Password for authentication
	Password string

	// SSLMode controls transport security for network databases
	SSLMode string

	// Options contains additional driver-specific options
	Options map[string]string
}

// Adapter defines the interface that all target database adapters implement.
// The pipeline drives everything through database/sql so transactional
// semantics are uniform across targets.
type Adapter interface {
	// Connect establishes a connection to the database using the provided config.
	Connect(ctx context.Context, cfg Config) error

	// Close closes the database connection and releases resources.
	Close() error

	// DB returns the underlying connection pool. Only valid after Connect.
	DB() *sql.DB

	// Placeholder renders the dialect's parameter placeholder for the
	// 1-based position i (e.g. "$1" for postgres, "?" for sqlite).
	Placeholder(i int) string

	// DialectName returns the SQL dialect name for this adapter.
	DialectName() string

	// MigrationDialect returns the dialect name understood by the
	// migration tool for this adapter.
	MigrationDialect() string
}
