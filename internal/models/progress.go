package models

import "time"

// DateLayout is the calendar-date format used for streak bookkeeping
const DateLayout = "2006-01-02"

// VideoProgress is a per-user, per-video playback checkpoint
type VideoProgress struct {
	UserID     int64     `json:"-"`
	VideoID    string    `json:"video_id"`
	CategoryID string    `json:"category_id"`
	PositionMs int64     `json:"position_ms"`
	DurationMs int64     `json:"duration_ms"`
	Completed  bool      `json:"completed"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// Percent returns the watched share rounded to the nearest whole percent,
// or 0 when the duration is unknown.
func (p VideoProgress) Percent() int {
	return PercentOf(p.PositionMs, p.DurationMs)
}

// PercentOf computes round(position/duration*100) clamped to [0,100].
// It returns 0 when duration is not positive.
func PercentOf(positionMs, durationMs int64) int {
	if durationMs <= 0 {
		return 0
	}
	if positionMs <= 0 {
		return 0
	}
	if positionMs >= durationMs {
		return 100
	}
	// integer round-half-up of positionMs*100/durationMs
	return int((positionMs*200 + durationMs) / (durationMs * 2))
}

// StreakInfo is the daily engagement counter for a user
type StreakInfo struct {
	CurrentStreak  int    `json:"current_streak"`
	LongestStreak  int    `json:"longest_streak"`
	LastActiveDate string `json:"last_active_date"`
}

// WatchStats is the per-user watch-time aggregate
type WatchStats struct {
	TotalWatchMs      int64  `json:"total_watch_ms"`
	LastWatchDate     string `json:"last_watch_date"`
	CurrentStreakDays int    `json:"current_streak_days"`
	Version           int64  `json:"-"`
}
