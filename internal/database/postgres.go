// internal/database/postgres.go
package database

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github-handler/internal/model"
)

// PostgresStore implements Store on a pgx connection pool.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore connects to dbURL and verifies the connection.
func NewPostgresStore(ctx context.Context, dbURL string) (*PostgresStore, error) {
	pool, err := pgxpool.New(ctx, dbURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return &PostgresStore{pool: pool}, nil
}

// Close releases the pool.
func (s *PostgresStore) Close() error {
	s.pool.Close()
	return nil
}

const getSyncStatus = `
SELECT id, start_date, end_date, sync_result
FROM github_sync_status
WHERE start_date = $1 AND end_date = $2`

func (s *PostgresStore) GetSyncStatus(ctx context.Context, startDate, endDate string) (*model.SyncStatus, error) {
	var st model.SyncStatus
	err := s.pool.QueryRow(ctx, getSyncStatus, startDate, endDate).
		Scan(&st.ID, &st.StartDate, &st.EndDate, &st.SyncResult)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &st, nil
}

const saveSyncStatus = `
INSERT INTO github_sync_status (start_date, end_date, sync_result)
VALUES ($1, $2, $3)
ON CONFLICT (start_date, end_date)
DO UPDATE SET sync_result = EXCLUDED.sync_result, updated_at = NOW()`

func (s *PostgresStore) SaveSyncStatus(ctx context.Context, status model.SyncStatus) error {
	_, err := s.pool.Exec(ctx, saveSyncStatus, status.StartDate, status.EndDate, status.SyncResult)
	return err
}

const insertProgram = `
INSERT INTO programs (
    id, github_url, name, description, namespace, max_version,
    mega_url, doc_url, program_type, downloads, cratesio
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
ON CONFLICT (github_url) DO NOTHING`

// SavePrograms sends all inserts in one batch.
func (s *PostgresStore) SavePrograms(ctx context.Context, programs []model.Program) error {
	if len(programs) == 0 {
		return nil
	}

	batch := &pgx.Batch{}
	for _, p := range programs {
		batch.Queue(insertProgram,
			p.ID, p.GithubURL, p.Name, p.Description, p.Namespace, p.MaxVersion,
			p.MegaURL, p.DocURL, p.ProgramType, p.Downloads, p.Cratesio,
		)
	}

	br := s.pool.SendBatch(ctx, batch)
	for range programs {
		if _, err := br.Exec(); err != nil {
			br.Close()
			return err
		}
	}
	return br.Close()
}

func (s *PostgresStore) CountPrograms(ctx context.Context) (int64, error) {
	var n int64
	err := s.pool.QueryRow(ctx, `SELECT COUNT(*) FROM programs`).Scan(&n)
	return n, err
}
