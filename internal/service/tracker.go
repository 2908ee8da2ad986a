package service

import (
	"context"
	"log"
	"sync"
	"time"

	"soundsteps/internal/models"
	"soundsteps/internal/repository"
)

const (
	// maxWatchDeltaMs bounds a single position step counted as watched time.
	// Larger steps are seeks.
	maxWatchDeltaMs = 60_000

	saveInterval     = 10 * time.Second
	savePercentDelta = 5
	writeTimeout     = 15 * time.Second
)

// ProgressStore persists video checkpoints
type ProgressStore interface {
	SaveProgress(ctx context.Context, p models.VideoProgress) (bool, error)
}

// AggregateStore persists the per-user watch-time aggregate and streak
type AggregateStore interface {
	UpdateAggregates(ctx context.Context, userID int64, mutate repository.AggregateMutator) (models.WatchStats, models.StreakInfo, error)
}

// Clock returns the current time
type Clock func() time.Time

// TrackerState is a snapshot of what the player screen shows
type TrackerState struct {
	VideoID          string `json:"video_id"`
	CategoryID       string `json:"category_id"`
	PositionMs       int64  `json:"position_ms"`
	DurationMs       int64  `json:"duration_ms"`
	Percent          int    `json:"percent"`
	Completed        bool   `json:"completed"`
	PendingWatchMs   int64  `json:"pending_watch_ms"`
	LastSavedPercent int    `json:"last_saved_percent"`
	Error            string `json:"error,omitempty"`
}

// TrackerOptions configures a Tracker
type TrackerOptions struct {
	UserID     int64
	VideoID    string
	CategoryID string

	// StartPositionMs and DurationMs seed the tracker when resuming.
	// Completed carries over a completion stored by an earlier playback.
	StartPositionMs int64
	DurationMs      int64
	Completed       bool

	Progress ProgressStore
	Stats    AggregateStore
	Tasks    *TaskGroup
	Location *time.Location
	Clock    Clock
	Debug    bool
}

// Tracker turns the position callbacks of one playback into throttled
// progress writes and an end-of-session watch-time flush. All writes run on
// the tracker's TaskGroup; no method blocks on storage.
type Tracker struct {
	userID     int64
	videoID    string
	categoryID string

	progress ProgressStore
	stats    AggregateStore
	tasks    *TaskGroup
	loc      *time.Location
	now      Clock
	debug    bool

	mu          sync.Mutex
	positionMs  int64
	durationMs  int64
	percent     int
	completed   bool
	lastEventAt time.Time
	lastError   string

	// throttle state, moved only by confirmed writes
	saved            bool
	lastSavedPercent int
	lastSavedAt      time.Time

	// watch time not yet in the aggregate, and the part of it being flushed
	pendingWatchMs  int64
	flushingWatchMs int64
}

// NewTracker creates a tracker for one (user, video) playback
func NewTracker(opts TrackerOptions) *Tracker {
	if opts.Tasks == nil {
		opts.Tasks = &TaskGroup{}
	}
	if opts.Location == nil {
		opts.Location = time.UTC
	}
	if opts.Clock == nil {
		opts.Clock = time.Now
	}

	t := &Tracker{
		userID:           opts.UserID,
		videoID:          opts.VideoID,
		categoryID:       opts.CategoryID,
		progress:         opts.Progress,
		stats:            opts.Stats,
		tasks:            opts.Tasks,
		loc:              opts.Location,
		now:              opts.Clock,
		debug:            opts.Debug,
		positionMs:       opts.StartPositionMs,
		completed:        opts.Completed,
		lastSavedPercent: -1,
	}
	t.lastEventAt = t.now()
	if opts.DurationMs > 0 {
		t.durationMs = opts.DurationMs
		t.positionMs = clampPosition(t.positionMs, t.durationMs)
		t.percent = models.PercentOf(t.positionMs, t.durationMs)
	}
	return t
}

// ReportPosition records a playback position callback
func (t *Tracker) ReportPosition(positionMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.lastEventAt = now

	if positionMs < 0 {
		positionMs = 0
	}
	if t.durationMs > 0 {
		positionMs = clampPosition(positionMs, t.durationMs)
	}

	if delta := positionMs - t.positionMs; delta > 0 && delta < maxWatchDeltaMs {
		t.pendingWatchMs += delta
	}
	t.positionMs = positionMs

	if t.durationMs > 0 {
		t.percent = models.PercentOf(positionMs, t.durationMs)
	}

	if !t.shouldSave(now) {
		return
	}
	t.saveLocked(t.snapshotLocked(now), t.percent)
}

// shouldSave evaluates the save policy, first match wins. With an unknown
// duration only the time-based rules apply.
func (t *Tracker) shouldSave(now time.Time) bool {
	known := t.durationMs > 0

	switch {
	case known && t.percent >= 100:
		return true
	case !t.saved:
		return true
	case now.Sub(t.lastSavedAt) >= saveInterval:
		return true
	case known && abs(t.percent-t.lastSavedPercent) >= savePercentDelta:
		return true
	default:
		return false
	}
}

// OnReady records the duration once the player knows it. Decisions already
// taken are not revisited.
func (t *Tracker) OnReady(durationMs int64) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.lastEventAt = t.now()
	if durationMs <= 0 {
		return
	}
	t.durationMs = durationMs
	t.positionMs = clampPosition(t.positionMs, durationMs)
	t.percent = models.PercentOf(t.positionMs, durationMs)
}

// OnPlaybackCompleted writes the video as fully watched and flushes watch
// time, regardless of the throttle.
func (t *Tracker) OnPlaybackCompleted() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.lastEventAt = now

	if t.durationMs > 0 {
		t.positionMs = t.durationMs
	} else {
		t.durationMs = t.positionMs
	}
	t.percent = 100

	p := t.snapshotLocked(now)
	p.Completed = true
	t.saveLocked(p, t.percent)
	t.flushLocked()
}

// OnPause writes the current position and flushes watch time
func (t *Tracker) OnPause() {
	t.mu.Lock()
	defer t.mu.Unlock()

	now := t.now()
	t.lastEventAt = now
	t.saveLocked(t.snapshotLocked(now), t.percent)
	t.flushLocked()
}

// Teardown is the final pause of a playback. The writes are issued on the
// task group before Teardown returns, so waiting on the group covers them.
func (t *Tracker) Teardown() {
	t.OnPause()
}

// State returns a snapshot of the UI-visible state
func (t *Tracker) State() TrackerState {
	t.mu.Lock()
	defer t.mu.Unlock()

	return TrackerState{
		VideoID:          t.videoID,
		CategoryID:       t.categoryID,
		PositionMs:       t.positionMs,
		DurationMs:       t.durationMs,
		Percent:          t.percent,
		Completed:        t.completed,
		PendingWatchMs:   t.pendingWatchMs,
		LastSavedPercent: t.lastSavedPercent,
		Error:            t.lastError,
	}
}

// LastEventAt returns when the tracker last received an event
func (t *Tracker) LastEventAt() time.Time {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.lastEventAt
}

// snapshotLocked builds the record for the current state. Completion is
// only derived when the duration is known, and once reached it stays set
// while the video is watched again.
func (t *Tracker) snapshotLocked(now time.Time) models.VideoProgress {
	return models.VideoProgress{
		UserID:     t.userID,
		VideoID:    t.videoID,
		CategoryID: t.categoryID,
		PositionMs: t.positionMs,
		DurationMs: t.durationMs,
		Completed:  t.completed || (t.durationMs > 0 && t.percent >= 100),
		UpdatedAt:  now,
	}
}

// saveLocked issues an asynchronous progress write. On success the throttle
// moves to percent, the watched share at the time of the snapshot.
func (t *Tracker) saveLocked(p models.VideoProgress, percent int) {
	if p.Completed {
		t.completed = true
	}

	t.tasks.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		applied, err := t.progress.SaveProgress(ctx, p)

		t.mu.Lock()
		defer t.mu.Unlock()

		if err != nil {
			log.Printf("Error saving progress for user %d video %s: %v", t.userID, t.videoID, err)
			t.lastError = "Could not save your progress"
			return
		}
		t.lastError = ""
		if !applied {
			if t.debug {
				log.Printf("[DEBUG] Skipped stale progress write for user %d video %s at %d ms", t.userID, t.videoID, p.PositionMs)
			}
			return
		}
		if !t.saved || !p.UpdatedAt.Before(t.lastSavedAt) {
			t.saved = true
			t.lastSavedPercent = percent
			t.lastSavedAt = p.UpdatedAt
		}
		if t.debug {
			log.Printf("[DEBUG] Saved progress for user %d video %s: %d ms (%d%%)", t.userID, t.videoID, p.PositionMs, percent)
		}
	})
}

// flushLocked moves accumulated watch time into the aggregate. Time already
// in flight is not sent twice; the accumulator shrinks only after the write
// is confirmed.
func (t *Tracker) flushLocked() {
	amount := t.pendingWatchMs - t.flushingWatchMs
	if amount <= 0 || t.stats == nil {
		return
	}
	t.flushingWatchMs += amount
	today := t.now().In(t.loc).Format(models.DateLayout)

	t.tasks.Go(func() {
		ctx, cancel := context.WithTimeout(context.Background(), writeTimeout)
		defer cancel()

		_, streak, err := t.stats.UpdateAggregates(ctx, t.userID, func(stats *models.WatchStats, streak *models.StreakInfo) error {
			applyWatchTime(stats, streak, amount, today)
			return nil
		})

		t.mu.Lock()
		defer t.mu.Unlock()

		t.flushingWatchMs -= amount
		if err != nil {
			log.Printf("Error flushing watch time for user %d: %v", t.userID, err)
			t.lastError = "Could not update your watch time"
			return
		}
		t.pendingWatchMs -= amount
		if t.debug {
			log.Printf("[DEBUG] Flushed %d ms watch time for user %d, streak now %d", amount, t.userID, streak.CurrentStreak)
		}
	})
}

func clampPosition(positionMs, durationMs int64) int64 {
	if positionMs > durationMs {
		return durationMs
	}
	return positionMs
}

func abs(n int) int {
	if n < 0 {
		return -n
	}
	return n
}
