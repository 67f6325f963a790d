package store

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/jmorris/officiantfinder/internal/model"
)

// SyncRunStore is the ledger of sync executions
type SyncRunStore struct {
	db *sql.DB
}

// NewSyncRunStore creates a new SyncRunStore
func NewSyncRunStore(db *sql.DB) *SyncRunStore {
	return &SyncRunStore{db: db}
}

// CreateRun records a new run in "running" state and returns its id
func (s *SyncRunStore) CreateRun(ctx context.Context) (int, error) {
	query := `
		INSERT INTO sync_log (started_at, status)
		VALUES ($1, $2)
		RETURNING id
	`

	var id int
	err := s.db.QueryRowContext(ctx, query, time.Now(), model.SyncStatusRunning).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("failed to create sync run: %w", err)
	}

	return id, nil
}

// CompleteRun marks a run completed with its final counts
func (s *SyncRunStore) CompleteRun(ctx context.Context, id, fetched, inserted, updated int) error {
	query := `
		UPDATE sync_log
		SET completed_at = $2, status = $3, total_fetched = $4, total_inserted = $5, total_updated = $6
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id, time.Now(), model.SyncStatusCompleted, fetched, inserted, updated)
	if err != nil {
		return fmt.Errorf("failed to complete sync run %d: %w", id, err)
	}

	return nil
}

// FailRun marks a run failed with an error message
func (s *SyncRunStore) FailRun(ctx context.Context, id int, message string) error {
	query := `
		UPDATE sync_log
		SET completed_at = $2, status = $3, error_message = $4
		WHERE id = $1
	`

	_, err := s.db.ExecContext(ctx, query, id, time.Now(), model.SyncStatusFailed, message)
	if err != nil {
		return fmt.Errorf("failed to fail sync run %d: %w", id, err)
	}

	return nil
}

// LatestRunning returns the most recent run still in "running" state,
// nil when there is none
func (s *SyncRunStore) LatestRunning(ctx context.Context) (*model.SyncRun, error) {
	query := `
		SELECT id, started_at, completed_at, status, total_fetched, total_inserted, total_updated, error_message
		FROM sync_log
		WHERE status = $1
		ORDER BY started_at DESC
		LIMIT 1
	`

	return s.queryRun(ctx, query, model.SyncStatusRunning)
}

// LatestRun returns the most recent run regardless of status, nil when the
// ledger is empty
func (s *SyncRunStore) LatestRun(ctx context.Context) (*model.SyncRun, error) {
	query := `
		SELECT id, started_at, completed_at, status, total_fetched, total_inserted, total_updated, error_message
		FROM sync_log
		ORDER BY started_at DESC
		LIMIT 1
	`

	return s.queryRun(ctx, query)
}

func (s *SyncRunStore) queryRun(ctx context.Context, query string, args ...interface{}) (*model.SyncRun, error) {
	var r model.SyncRun
	err := s.db.QueryRowContext(ctx, query, args...).Scan(
		&r.ID,
		&r.StartedAt,
		&r.CompletedAt,
		&r.Status,
		&r.TotalFetched,
		&r.TotalInserted,
		&r.TotalUpdated,
		&r.ErrorMessage,
	)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get sync run: %w", err)
	}

	return &r, nil
}
