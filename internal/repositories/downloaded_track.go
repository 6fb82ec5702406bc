package repositories

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/shared"
)

// DownloadedTrackRepository stores the files confirmed during each run.
type DownloadedTrackRepository struct {
	db *sql.DB
}

// NewDownloadedTrackRepository creates a new DownloadedTrackRepository with the given database connection
func NewDownloadedTrackRepository(db *sql.DB) *DownloadedTrackRepository {
	return &DownloadedTrackRepository{db: db}
}

// Create inserts track, assigning an ID when empty. The referenced run must exist.
func (r *DownloadedTrackRepository) Create(ctx context.Context, track *models.DownloadedTrack) error {
	return r.insert(ctx, r.db, track)
}

func (r *DownloadedTrackRepository) insert(ctx context.Context, q querier, track *models.DownloadedTrack) error {
	if track.ID == "" {
		track.ID = shared.GenerateID()
	}
	if err := track.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	query := `
		INSERT INTO downloaded_tracks (id, run_id, playlist, title, artist, source_url, file_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := q.ExecContext(ctx, query,
		track.ID,
		track.RunID,
		track.Playlist,
		track.Title,
		track.Artist,
		track.SourceURL,
		track.FileName,
		track.CreatedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert downloaded track: %w", err)
	}
	return nil
}

// ListByRun returns the tracks of a run in insertion order.
func (r *DownloadedTrackRepository) ListByRun(ctx context.Context, runID string) ([]*models.DownloadedTrack, error) {
	query := `
		SELECT id, run_id, playlist, title, artist, source_url, file_name, created_at
		FROM downloaded_tracks
		WHERE run_id = ?
		ORDER BY rowid ASC
	`

	rows, err := r.db.QueryContext(ctx, query, runID)
	if err != nil {
		return nil, fmt.Errorf("failed to query downloaded tracks: %w", err)
	}
	defer rows.Close()

	var tracks []*models.DownloadedTrack
	for rows.Next() {
		var t models.DownloadedTrack
		if err := rows.Scan(&t.ID, &t.RunID, &t.Playlist, &t.Title, &t.Artist, &t.SourceURL, &t.FileName, &t.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan downloaded track: %w", err)
		}
		tracks = append(tracks, &t)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return tracks, nil
}
