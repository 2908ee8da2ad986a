package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"soundsteps/internal/database"
	"soundsteps/internal/models"
)

// maxAggregateAttempts bounds the optimistic retry loop in UpdateAggregates
const maxAggregateAttempts = 5

// ErrAggregateConflict is returned when the watch-stats row kept changing
// underneath every attempt.
var ErrAggregateConflict = errors.New("watch stats changed concurrently")

// AggregateMutator edits the watch stats and streak of one user in place
type AggregateMutator func(stats *models.WatchStats, streak *models.StreakInfo) error

// StatsRepository stores the per-user watch-time aggregate and daily streak
type StatsRepository struct {
	db *database.DB
}

// NewStatsRepository creates a new stats repository
func NewStatsRepository(db *database.DB) *StatsRepository {
	return &StatsRepository{db: db}
}

// GetStats returns the aggregate and streak of a user. Users who have never
// watched anything get zero values.
func (r *StatsRepository) GetStats(ctx context.Context, userID int64) (models.WatchStats, models.StreakInfo, error) {
	return r.read(ctx, r.db, userID)
}

// UpdateAggregates runs a read-modify-write of the user's watch stats and
// streak inside a transaction. The watch_stats row carries a version that is
// checked on write; when another writer got there first the whole
// transaction is retried with fresh values.
func (r *StatsRepository) UpdateAggregates(ctx context.Context, userID int64, mutate AggregateMutator) (models.WatchStats, models.StreakInfo, error) {
	if err := r.ensureRows(ctx, userID); err != nil {
		return models.WatchStats{}, models.StreakInfo{}, err
	}

	for attempt := 0; attempt < maxAggregateAttempts; attempt++ {
		var stats models.WatchStats
		var streak models.StreakInfo
		conflict := false

		err := r.db.WithTx(ctx, func(tx *database.Tx) error {
			var err error
			stats, streak, err = r.read(ctx, tx, userID)
			if err != nil {
				return err
			}

			expectedVersion := stats.Version
			if err := mutate(&stats, &streak); err != nil {
				return err
			}
			stats.Version = expectedVersion + 1

			result, err := tx.ExecContext(ctx, `
				UPDATE watch_stats
				SET total_watch_ms = ?, last_watch_date = ?, current_streak_days = ?, version = ?
				WHERE user_id = ? AND version = ?
			`, stats.TotalWatchMs, stats.LastWatchDate, stats.CurrentStreakDays, stats.Version, userID, expectedVersion)
			if err != nil {
				return fmt.Errorf("failed to update watch stats: %w", err)
			}
			affected, err := result.RowsAffected()
			if err != nil {
				return fmt.Errorf("failed to read update result: %w", err)
			}
			if affected == 0 {
				conflict = true
				return ErrAggregateConflict
			}

			if _, err := tx.ExecContext(ctx, `
				UPDATE streaks
				SET current_streak = ?, longest_streak = ?, last_active_date = ?
				WHERE user_id = ?
			`, streak.CurrentStreak, streak.LongestStreak, streak.LastActiveDate, userID); err != nil {
				return fmt.Errorf("failed to update streak: %w", err)
			}
			return nil
		})
		if conflict {
			continue
		}
		if err != nil {
			return models.WatchStats{}, models.StreakInfo{}, err
		}
		return stats, streak, nil
	}

	return models.WatchStats{}, models.StreakInfo{}, ErrAggregateConflict
}

// ensureRows creates empty aggregate rows so the versioned UPDATE has
// something to match.
func (r *StatsRepository) ensureRows(ctx context.Context, userID int64) error {
	dialect := r.db.GetDialect()
	if _, err := r.db.ExecContext(ctx, dialect.InsertIgnoreQuery("watch_stats", []string{"user_id"}), userID); err != nil {
		return fmt.Errorf("failed to create watch stats: %w", err)
	}
	if _, err := r.db.ExecContext(ctx, dialect.InsertIgnoreQuery("streaks", []string{"user_id"}), userID); err != nil {
		return fmt.Errorf("failed to create streak: %w", err)
	}
	return nil
}

func (r *StatsRepository) read(ctx context.Context, q database.DBTX, userID int64) (models.WatchStats, models.StreakInfo, error) {
	var stats models.WatchStats
	err := q.QueryRowContext(ctx, `
		SELECT total_watch_ms, last_watch_date, current_streak_days, version
		FROM watch_stats WHERE user_id = ?
	`, userID).Scan(&stats.TotalWatchMs, &stats.LastWatchDate, &stats.CurrentStreakDays, &stats.Version)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.WatchStats{}, models.StreakInfo{}, fmt.Errorf("failed to read watch stats: %w", err)
	}

	var streak models.StreakInfo
	err = q.QueryRowContext(ctx, `
		SELECT current_streak, longest_streak, last_active_date
		FROM streaks WHERE user_id = ?
	`, userID).Scan(&streak.CurrentStreak, &streak.LongestStreak, &streak.LastActiveDate)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return models.WatchStats{}, models.StreakInfo{}, fmt.Errorf("failed to read streak: %w", err)
	}

	return stats, streak, nil
}

// StatsRow pairs a user with their aggregates, for export
type StatsRow struct {
	UserID int64
	Stats  models.WatchStats
	Streak models.StreakInfo
}

// ListAll returns the aggregates of every user that has any
func (r *StatsRepository) ListAll(ctx context.Context) ([]StatsRow, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT w.user_id, w.total_watch_ms, w.last_watch_date, w.current_streak_days, w.version,
		       COALESCE(s.current_streak, 0), COALESCE(s.longest_streak, 0), COALESCE(s.last_active_date, '')
		FROM watch_stats w
		LEFT JOIN streaks s ON s.user_id = w.user_id
		ORDER BY w.user_id
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to query stats: %w", err)
	}
	defer rows.Close()

	var result []StatsRow
	for rows.Next() {
		var row StatsRow
		if err := rows.Scan(
			&row.UserID,
			&row.Stats.TotalWatchMs,
			&row.Stats.LastWatchDate,
			&row.Stats.CurrentStreakDays,
			&row.Stats.Version,
			&row.Streak.CurrentStreak,
			&row.Streak.LongestStreak,
			&row.Streak.LastActiveDate,
		); err != nil {
			return nil, fmt.Errorf("failed to scan stats: %w", err)
		}
		result = append(result, row)
	}
	return result, rows.Err()
}

// ImportStats writes aggregates verbatim, replacing what is stored
func (r *StatsRepository) ImportStats(ctx context.Context, row StatsRow) error {
	dialect := r.db.GetDialect()
	statsQuery := dialect.UpsertQuery("watch_stats",
		[]string{"user_id", "total_watch_ms", "last_watch_date", "current_streak_days", "version"},
		[]string{"user_id"})
	if _, err := r.db.ExecContext(ctx, statsQuery,
		row.UserID, row.Stats.TotalWatchMs, row.Stats.LastWatchDate, row.Stats.CurrentStreakDays, row.Stats.Version,
	); err != nil {
		return fmt.Errorf("failed to import watch stats: %w", err)
	}

	streakQuery := dialect.UpsertQuery("streaks",
		[]string{"user_id", "current_streak", "longest_streak", "last_active_date"},
		[]string{"user_id"})
	if _, err := r.db.ExecContext(ctx, streakQuery,
		row.UserID, row.Streak.CurrentStreak, row.Streak.LongestStreak, row.Streak.LastActiveDate,
	); err != nil {
		return fmt.Errorf("failed to import streak: %w", err)
	}
	return nil
}
