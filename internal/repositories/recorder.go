package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/listensync/internal/models"
)

// RunRecorderAdapter implements tasks.RunRecorder on top of the sync run and downloaded track repositories.
//
// A run and its tracks are written in one transaction.
type RunRecorderAdapter struct {
	db     *sql.DB
	runs   *SyncRunRepository
	tracks *DownloadedTrackRepository
}

// NewRunRecorderAdapter creates a RunRecorderAdapter with the given database connection
func NewRunRecorderAdapter(db *sql.DB) *RunRecorderAdapter {
	return &RunRecorderAdapter{
		db:     db,
		runs:   NewSyncRunRepository(db),
		tracks: NewDownloadedTrackRepository(db),
	}
}

// RecordRun stores run and its tracks. Each track's RunID is set to the run's ID.
func (a *RunRecorderAdapter) RecordRun(ctx context.Context, run *models.SyncRun, tracks []models.DownloadedTrack) error {
	err := withTx(ctx, a.db, func(tx *sql.Tx) error {
		if err := a.runs.insert(ctx, tx, run); err != nil {
			return err
		}
		for i := range tracks {
			tracks[i].RunID = run.ID
			if err := a.tracks.insert(ctx, tx, &tracks[i]); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to record sync run: %w", err)
	}
	return nil
}
