package store

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "modernc.org/sqlite"

	"statement-distributor/internal/models"
	apperrors "statement-distributor/pkg/errors"
)

//go:embed migrations
var migrationsFS embed.FS

// Querier is the part of a database handle the extractors need.
type Querier interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// DB wraps a read-only SQLite connection to an exported store.
type DB struct {
	db   *sql.DB
	path string
}

// Open opens the store in read-only mode. A missing file is a configuration error
// since nothing can be extracted without it.
func Open(path string) (*DB, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeMissingConfig, "database_path", path, err).
			WithSuggestion("check database_path in the configuration or run 'db init' for a local store")
	}

	dsn := fmt.Sprintf("file:%s?mode=ro", path)
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, apperrors.ExtractionError(apperrors.CodeStoreAccess, path, err)
	}
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, apperrors.ExtractionError(apperrors.CodeStoreAccess, path, err)
	}
	return &DB{db: db, path: path}, nil
}

// QueryContext runs a read query against the store
func (d *DB) QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	return d.db.QueryContext(ctx, query, args...)
}

// Path returns the file the store was opened from
func (d *DB) Path() string {
	return d.path
}

// Close closes the database connection.
func (d *DB) Close() error {
	return d.db.Close()
}

// InitSchema creates the tables the extractor for source reads, creating the file if needed.
func InitSchema(dbPath string, source models.Source) error {
	if !source.IsValid() {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "source", source, nil)
	}

	// Separate read-write connection; the distributor itself only ever opens read-only.
	migrateDB, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return fmt.Errorf("open migration database: %w", err)
	}
	defer migrateDB.Close()

	driver, err := sqlite.WithInstance(migrateDB, &sqlite.Config{})
	if err != nil {
		return fmt.Errorf("create sqlite driver: %w", err)
	}

	d, err := iofs.New(migrationsFS, "migrations/"+source.String())
	if err != nil {
		return fmt.Errorf("create iofs source: %w", err)
	}

	m, err := migrate.NewWithInstance("iofs", d, "sqlite", driver)
	if err != nil {
		return fmt.Errorf("create migrate instance: %w", err)
	}
	defer m.Close()

	if err := m.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("run migrations: %w", err)
	}

	return nil
}
