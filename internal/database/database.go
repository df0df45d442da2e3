// internal/database/database.go
package database

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/database/sqlite"
	"github.com/golang-migrate/migrate/v4/source/iofs"

	"github-handler/internal/database/migrations"
	custom_errors "github-handler/internal/errors"
	"github-handler/internal/model"
)

// Querier is the storage surface used by the sync engine and the HTTP API.
type Querier interface {
	// GetSyncStatus returns the status recorded for the window, or nil if none exists.
	GetSyncStatus(ctx context.Context, startDate, endDate string) (*model.SyncStatus, error)
	// SaveSyncStatus inserts or replaces the status of a window.
	SaveSyncStatus(ctx context.Context, status model.SyncStatus) error
	// SavePrograms inserts programs, ignoring any whose github_url is already stored.
	SavePrograms(ctx context.Context, programs []model.Program) error
	CountPrograms(ctx context.Context) (int64, error)
}

// Store is a Querier owning a database connection.
type Store interface {
	Querier
	Close() error
}

// Open connects to the database named by dbURL.
// postgres:// and postgresql:// URLs use pgx; sqlite:// URLs use an embedded SQLite file.
func Open(ctx context.Context, dbURL string) (Store, error) {
	u, err := url.Parse(dbURL)
	if err != nil {
		return nil, fmt.Errorf("parse DB_URL: %w", err)
	}
	switch u.Scheme {
	case "postgres", "postgresql":
		return NewPostgresStore(ctx, dbURL)
	case "sqlite":
		return NewSQLiteStore(sqlitePath(u))
	default:
		return nil, &custom_errors.ErrUnsupportedDatabase{Scheme: u.Scheme}
	}
}

// Migrate applies all pending migrations for the database named by dbURL.
func Migrate(dbURL string) error {
	u, err := url.Parse(dbURL)
	if err != nil {
		return fmt.Errorf("parse DB_URL: %w", err)
	}

	var fsys fs.FS
	var dir string
	switch u.Scheme {
	case "postgres", "postgresql":
		fsys, dir = migrations.Postgres, "postgres"
	case "sqlite":
		fsys, dir = migrations.SQLite, "sqlite"
	default:
		return &custom_errors.ErrUnsupportedDatabase{Scheme: u.Scheme}
	}

	src, err := iofs.New(fsys, dir)
	if err != nil {
		return fmt.Errorf("load migrations: %w", err)
	}
	m, err := migrate.NewWithSourceInstance("iofs", src, dbURL)
	if err != nil {
		return err
	}
	defer m.Close()

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return err
	}
	return nil
}

// sqlitePath maps sqlite://./data/x.db and sqlite:///abs/x.db to the file the migrate driver opens.
func sqlitePath(u *url.URL) string {
	return filepath.Join(u.Host, u.Path)
}
