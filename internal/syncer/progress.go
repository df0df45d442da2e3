// internal/syncer/progress.go
package syncer

import (
	"context"

	"github-handler/internal/model"
)

// StatusStore persists per-window sync status.
type StatusStore interface {
	GetSyncStatus(ctx context.Context, startDate, endDate string) (*model.SyncStatus, error)
	SaveSyncStatus(ctx context.Context, status model.SyncStatus) error
}

// ProgressTracker records which windows finished. It reads storage on every call so that
// progress made by an earlier process is honoured after a restart.
type ProgressTracker struct {
	store StatusStore
}

// NewProgressTracker creates a ProgressTracker backed by store.
func NewProgressTracker(store StatusStore) *ProgressTracker {
	return &ProgressTracker{store: store}
}

// FindStatus returns the recorded status of w, or nil if the window was never recorded.
func (p *ProgressTracker) FindStatus(ctx context.Context, w model.Window) (*model.SyncStatus, error) {
	return p.store.GetSyncStatus(ctx, w.StartDate(), w.EndDate())
}

// IsComplete reports whether w has a successful status record.
func (p *ProgressTracker) IsComplete(ctx context.Context, w model.Window) (bool, error) {
	status, err := p.FindStatus(ctx, w)
	if err != nil {
		return false, err
	}
	return status != nil && status.SyncResult, nil
}

// RecordStatus stores the outcome of syncing w.
func (p *ProgressTracker) RecordStatus(ctx context.Context, w model.Window, success bool) error {
	return p.store.SaveSyncStatus(ctx, model.SyncStatus{
		StartDate:  w.StartDate(),
		EndDate:    w.EndDate(),
		SyncResult: success,
	})
}
