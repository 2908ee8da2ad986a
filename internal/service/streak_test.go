package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"soundsteps/internal/models"
)

func TestNextStreak(t *testing.T) {
	prev := models.StreakInfo{CurrentStreak: 3, LongestStreak: 5, LastActiveDate: "2024-01-10"}

	tests := []struct {
		name        string
		prev        models.StreakInfo
		today       string
		wantCurrent int
		wantLongest int
		wantDate    string
	}{
		{name: "next day extends", prev: prev, today: "2024-01-11", wantCurrent: 4, wantLongest: 5, wantDate: "2024-01-11"},
		{name: "gap resets", prev: prev, today: "2024-01-13", wantCurrent: 1, wantLongest: 5, wantDate: "2024-01-13"},
		{name: "same day unchanged", prev: prev, today: "2024-01-10", wantCurrent: 3, wantLongest: 5, wantDate: "2024-01-10"},
		{name: "earlier day unchanged", prev: prev, today: "2024-01-09", wantCurrent: 3, wantLongest: 5, wantDate: "2024-01-10"},
		{name: "first activity", prev: models.StreakInfo{}, today: "2024-01-10", wantCurrent: 1, wantLongest: 1, wantDate: "2024-01-10"},
		{name: "malformed previous date", prev: models.StreakInfo{CurrentStreak: 7, LongestStreak: 7, LastActiveDate: "yesterday"}, today: "2024-01-10", wantCurrent: 1, wantLongest: 7, wantDate: "2024-01-10"},
		{
			name:        "extending past longest",
			prev:        models.StreakInfo{CurrentStreak: 5, LongestStreak: 5, LastActiveDate: "2024-02-28"},
			today:       "2024-02-29",
			wantCurrent: 6,
			wantLongest: 6,
			wantDate:    "2024-02-29",
		},
		{
			name:        "across month end",
			prev:        models.StreakInfo{CurrentStreak: 2, LongestStreak: 9, LastActiveDate: "2024-03-31"},
			today:       "2024-04-01",
			wantCurrent: 3,
			wantLongest: 9,
			wantDate:    "2024-04-01",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NextStreak(tt.prev, tt.today)
			assert.Equal(t, tt.wantCurrent, got.CurrentStreak)
			assert.Equal(t, tt.wantLongest, got.LongestStreak)
			assert.Equal(t, tt.wantDate, got.LastActiveDate)
			assert.GreaterOrEqual(t, got.LongestStreak, got.CurrentStreak)
		})
	}
}

func TestApplyWatchTime(t *testing.T) {
	stats := models.WatchStats{TotalWatchMs: 60000, LastWatchDate: "2024-01-10", CurrentStreakDays: 2}
	streak := models.StreakInfo{CurrentStreak: 2, LongestStreak: 4, LastActiveDate: "2024-01-10"}

	applyWatchTime(&stats, &streak, 15000, "2024-01-11")

	assert.Equal(t, int64(75000), stats.TotalWatchMs)
	assert.Equal(t, "2024-01-11", stats.LastWatchDate)
	assert.Equal(t, 3, stats.CurrentStreakDays)
	assert.Equal(t, 3, streak.CurrentStreak)
	assert.Equal(t, 4, streak.LongestStreak)
}

func TestTaskGroupWaitContext(t *testing.T) {
	var g TaskGroup
	release := make(chan struct{})
	g.Go(func() { <-release })

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	assert.ErrorIs(t, g.WaitContext(ctx), context.DeadlineExceeded)

	close(release)
	assert.NoError(t, g.WaitContext(context.Background()))
}
