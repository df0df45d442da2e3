// internal/database/sqlite.go
package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // SQLite driver

	"github-handler/internal/model"
)

// SQLiteStore implements Store on a local SQLite file, for running without a Postgres server.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if needed) the SQLite database at path.
// The schema must already be applied with Migrate.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o700); err != nil {
			return nil, fmt.Errorf("creating data directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// A single writer avoids SQLITE_BUSY between pooled connections.
	db.SetMaxOpenConns(1)

	return &SQLiteStore{db: db}, nil
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) GetSyncStatus(ctx context.Context, startDate, endDate string) (*model.SyncStatus, error) {
	var st model.SyncStatus
	err := s.db.QueryRowContext(ctx, `
		SELECT id, start_date, end_date, sync_result
		FROM github_sync_status
		WHERE start_date = ? AND end_date = ?`, startDate, endDate).
		Scan(&st.ID, &st.StartDate, &st.EndDate, &st.SyncResult)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

func (s *SQLiteStore) SaveSyncStatus(ctx context.Context, status model.SyncStatus) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO github_sync_status (start_date, end_date, sync_result)
		VALUES (?, ?, ?)
		ON CONFLICT (start_date, end_date)
		DO UPDATE SET sync_result = excluded.sync_result, updated_at = CURRENT_TIMESTAMP`,
		status.StartDate, status.EndDate, status.SyncResult)
	return err
}

// SavePrograms inserts the programs inside one transaction.
func (s *SQLiteStore) SavePrograms(ctx context.Context, programs []model.Program) error {
	if len(programs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback() // no-op after commit

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO programs (
			id, github_url, name, description, namespace, max_version,
			mega_url, doc_url, program_type, downloads, cratesio
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (github_url) DO NOTHING`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, p := range programs {
		if _, err := stmt.ExecContext(ctx,
			p.ID.String(), p.GithubURL, p.Name, p.Description, p.Namespace, p.MaxVersion,
			p.MegaURL, p.DocURL, p.ProgramType, p.Downloads, p.Cratesio,
		); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) CountPrograms(ctx context.Context) (int64, error) {
	var n int64
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM programs`).Scan(&n)
	return n, err
}
