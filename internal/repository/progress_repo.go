package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"soundsteps/internal/database"
	"soundsteps/internal/models"
)

var progressColumns = []string{"user_id", "video_id", "category_id", "position_ms", "duration_ms", "completed", "updated_at_ms"}

// ProgressRepository stores per-user video playback checkpoints
type ProgressRepository struct {
	db *database.DB
}

// NewProgressRepository creates a new progress repository
func NewProgressRepository(db *database.DB) *ProgressRepository {
	return &ProgressRepository{db: db}
}

// progressGuard keeps the stored checkpoint when the incoming one is older,
// and keeps a completed video completed when it is watched again.
var progressGuard = database.UpsertGuard{Column: "updated_at_ms", Sticky: []string{"completed"}}

// SaveProgress writes the checkpoint for (user, video) in a single
// statement. A write whose UpdatedAt is older than the stored row is skipped
// and reported as not applied, so a late network completion cannot roll
// progress back.
func (r *ProgressRepository) SaveProgress(ctx context.Context, p models.VideoProgress) (bool, error) {
	query := r.db.GetDialect().GuardedUpsertQuery("video_progress", progressColumns, []string{"user_id", "video_id"}, progressGuard)
	result, err := r.db.ExecContext(ctx, query,
		p.UserID, p.VideoID, p.CategoryID, p.PositionMs, p.DurationMs, p.Completed, p.UpdatedAt.UnixMilli(),
	)
	if err != nil {
		return false, fmt.Errorf("failed to save progress: %w", err)
	}

	affected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("failed to read save result: %w", err)
	}
	return affected > 0, nil
}

// GetProgress returns the checkpoint for (user, video), or nil if the video
// has never been played.
func (r *ProgressRepository) GetProgress(ctx context.Context, userID int64, videoID string) (*models.VideoProgress, error) {
	query := `
		SELECT user_id, video_id, category_id, position_ms, duration_ms, completed, updated_at_ms
		FROM video_progress
		WHERE user_id = ? AND video_id = ?
	`
	p, err := scanProgress(r.db.QueryRowContext(ctx, query, userID, videoID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get progress: %w", err)
	}
	return p, nil
}

// ListProgress returns every checkpoint of a user, most recent first
func (r *ProgressRepository) ListProgress(ctx context.Context, userID int64) ([]models.VideoProgress, error) {
	query := `
		SELECT user_id, video_id, category_id, position_ms, duration_ms, completed, updated_at_ms
		FROM video_progress
		WHERE user_id = ?
		ORDER BY updated_at_ms DESC
	`
	return r.list(ctx, query, userID)
}

// ListAll returns every checkpoint of every user
func (r *ProgressRepository) ListAll(ctx context.Context) ([]models.VideoProgress, error) {
	query := `
		SELECT user_id, video_id, category_id, position_ms, duration_ms, completed, updated_at_ms
		FROM video_progress
		ORDER BY user_id, video_id
	`
	return r.list(ctx, query)
}

func (r *ProgressRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.VideoProgress, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query progress: %w", err)
	}
	defer rows.Close()

	var records []models.VideoProgress
	for rows.Next() {
		p, err := scanProgress(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan progress: %w", err)
		}
		records = append(records, *p)
	}
	return records, rows.Err()
}

func scanProgress(row rowScanner) (*models.VideoProgress, error) {
	p := &models.VideoProgress{}
	var updatedAtMs int64
	if err := row.Scan(&p.UserID, &p.VideoID, &p.CategoryID, &p.PositionMs, &p.DurationMs, &p.Completed, &updatedAtMs); err != nil {
		return nil, err
	}
	p.UpdatedAt = time.UnixMilli(updatedAtMs).UTC()
	return p, nil
}
