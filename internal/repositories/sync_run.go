package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/desertthunder/listensync/internal/models"
	"github.com/desertthunder/listensync/internal/shared"
)

const syncRunColumns = `id, sequence, playlist, feed_url, state, feed_date, stored_date, songs, resolved, downloaded, error, started_at, finished_at`

// RunFilter narrows [SyncRunRepository.List].
type RunFilter struct {
	Playlist string
	State    string
	Limit    int // 0 means no limit
}

// SyncRunRepository stores one row per playlist sync attempt.
type SyncRunRepository struct {
	db *sql.DB
}

// NewSyncRunRepository creates a new SyncRunRepository with the given database connection
func NewSyncRunRepository(db *sql.DB) *SyncRunRepository {
	return &SyncRunRepository{db: db}
}

// Create inserts run, assigning an ID when empty and the next sequence number.
func (r *SyncRunRepository) Create(ctx context.Context, run *models.SyncRun) error {
	return withTx(ctx, r.db, func(tx *sql.Tx) error {
		return r.insert(ctx, tx, run)
	})
}

func (r *SyncRunRepository) insert(ctx context.Context, q querier, run *models.SyncRun) error {
	if run.ID == "" {
		run.ID = shared.GenerateID()
	}
	if err := run.Validate(); err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	sequence, err := NextSequence(ctx, q, "sync_runs")
	if err != nil {
		return fmt.Errorf("failed to generate sequence: %w", err)
	}

	query := `
		INSERT INTO sync_runs (` + syncRunColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err = q.ExecContext(ctx, query,
		run.ID,
		sequence,
		run.Playlist,
		run.FeedURL,
		run.State,
		run.FeedDate,
		run.StoredDate,
		run.Songs,
		run.Resolved,
		run.Downloaded,
		run.Error,
		run.StartedAt.UTC(),
		run.FinishedAt.UTC(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert sync run: %w", err)
	}

	run.Sequence = sequence
	return nil
}

// Get retrieves a run by ID.
func (r *SyncRunRepository) Get(ctx context.Context, id string) (*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE id = ?`

	run, err := scanRun(r.db.QueryRowContext(ctx, query, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", shared.ErrRunNotFound, id)
	}
	return run, err
}

// List returns runs matching filter, newest first.
func (r *SyncRunRepository) List(ctx context.Context, filter RunFilter) ([]*models.SyncRun, error) {
	query := `SELECT ` + syncRunColumns + ` FROM sync_runs WHERE 1 = 1`
	args := []any{}

	if filter.Playlist != "" {
		query += " AND playlist = ?"
		args = append(args, filter.Playlist)
	}
	if filter.State != "" {
		query += " AND state = ?"
		args = append(args, filter.State)
	}

	query += " ORDER BY sequence DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Latest returns the most recent run of every playlist, ordered by playlist name.
func (r *SyncRunRepository) Latest(ctx context.Context) ([]*models.SyncRun, error) {
	query := `
		SELECT ` + syncRunColumns + `
		FROM sync_runs
		WHERE sequence IN (SELECT MAX(sequence) FROM sync_runs GROUP BY playlist)
		ORDER BY playlist ASC
	`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query latest sync runs: %w", err)
	}
	defer rows.Close()

	var runs []*models.SyncRun
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("row iteration error: %w", err)
	}

	return runs, nil
}

// Prune deletes runs that started before cutoff, along with their tracks. Returns the number of runs removed.
func (r *SyncRunRepository) Prune(ctx context.Context, cutoff time.Time) (int64, error) {
	result, err := r.db.ExecContext(ctx, "DELETE FROM sync_runs WHERE started_at < ?", cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("failed to prune sync runs: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("failed to get affected rows: %w", err)
	}
	return rows, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRun(row rowScanner) (*models.SyncRun, error) {
	var run models.SyncRun
	err := row.Scan(
		&run.ID,
		&run.Sequence,
		&run.Playlist,
		&run.FeedURL,
		&run.State,
		&run.FeedDate,
		&run.StoredDate,
		&run.Songs,
		&run.Resolved,
		&run.Downloaded,
		&run.Error,
		&run.StartedAt,
		&run.FinishedAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan sync run: %w", err)
	}
	return &run, nil
}
