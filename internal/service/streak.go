package service

import (
	"time"

	"soundsteps/internal/models"
)

// NextStreak applies one day of activity to a streak.
//
// Activity on the same day leaves the streak unchanged, activity exactly one
// day after the last active date extends it, and anything else starts a new
// streak of 1. A today that lies before the last active date (device clock
// skew) is treated like the same day.
func NextStreak(prev models.StreakInfo, today string) models.StreakInfo {
	next := prev

	switch gap, ok := daysBetween(prev.LastActiveDate, today); {
	case ok && gap <= 0:
		return prev
	case ok && gap == 1:
		next.CurrentStreak = prev.CurrentStreak + 1
	default:
		next.CurrentStreak = 1
	}

	next.LastActiveDate = today
	if next.CurrentStreak > next.LongestStreak {
		next.LongestStreak = next.CurrentStreak
	}
	return next
}

// daysBetween returns the number of calendar days from a to b. ok is false
// when either date is empty or malformed.
func daysBetween(a, b string) (int, bool) {
	if a == "" || b == "" {
		return 0, false
	}
	from, err := time.Parse(models.DateLayout, a)
	if err != nil {
		return 0, false
	}
	to, err := time.Parse(models.DateLayout, b)
	if err != nil {
		return 0, false
	}
	return int(to.Sub(from).Hours() / 24), true
}

// applyWatchTime adds flushed watch time to the aggregate and moves both
// day counters forward to today.
func applyWatchTime(stats *models.WatchStats, streak *models.StreakInfo, watchedMs int64, today string) {
	stats.TotalWatchMs += watchedMs

	days := NextStreak(models.StreakInfo{
		CurrentStreak:  stats.CurrentStreakDays,
		LastActiveDate: stats.LastWatchDate,
	}, today)
	stats.CurrentStreakDays = days.CurrentStreak
	stats.LastWatchDate = days.LastActiveDate

	*streak = NextStreak(*streak, today)
}
