package service

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"soundsteps/internal/models"
)

var ErrTrackerNotFound = errors.New("no active playback for this video")

// ProgressReader reads a single checkpoint
type ProgressReader interface {
	GetProgress(ctx context.Context, userID int64, videoID string) (*models.VideoProgress, error)
}

// PlaybackStore is the storage a PlaybackService needs
type PlaybackStore interface {
	ProgressStore
	ProgressReader
}

type trackerKey struct {
	userID  int64
	videoID string
}

// PlaybackService owns the active trackers, one per (user, video), and the
// task group their writes run on.
type PlaybackService struct {
	catalog     *CatalogService
	progress    PlaybackStore
	stats       AggregateStore
	loc         *time.Location
	idleTimeout time.Duration
	now         Clock
	debug       bool

	tasks TaskGroup

	mu       sync.Mutex
	trackers map[trackerKey]*Tracker
	closed   bool
}

// NewPlaybackService creates a new playback service
func NewPlaybackService(catalog *CatalogService, progress PlaybackStore, stats AggregateStore, loc *time.Location, idleTimeout time.Duration, debug bool) *PlaybackService {
	if loc == nil {
		loc = time.UTC
	}
	return &PlaybackService{
		catalog:     catalog,
		progress:    progress,
		stats:       stats,
		loc:         loc,
		idleTimeout: idleTimeout,
		now:         time.Now,
		debug:       debug,
		trackers:    make(map[trackerKey]*Tracker),
	}
}

// SetClock replaces the time source of the service and of trackers it
// creates afterwards
func (s *PlaybackService) SetClock(clock Clock) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.now = clock
}

// Start begins tracking a playback. The tracker resumes from the stored
// checkpoint unless the video was already completed. Starting a video that
// is already tracked returns the existing state.
func (s *PlaybackService) Start(ctx context.Context, userID int64, videoID string) (TrackerState, error) {
	key := trackerKey{userID: userID, videoID: videoID}

	s.mu.Lock()
	if t, ok := s.trackers[key]; ok {
		s.mu.Unlock()
		return t.State(), nil
	}
	s.mu.Unlock()

	video, err := s.catalog.Video(ctx, userID, videoID)
	if err != nil {
		return TrackerState{}, err
	}
	if video.IsLocked {
		return TrackerState{}, ErrVideoLocked
	}

	stored, err := s.progress.GetProgress(ctx, userID, videoID)
	if err != nil {
		return TrackerState{}, fmt.Errorf("failed to load progress: %w", err)
	}

	opts := TrackerOptions{
		UserID:     userID,
		VideoID:    videoID,
		CategoryID: video.CategoryID,
		Progress:   s.progress,
		Stats:      s.stats,
		Tasks:      &s.tasks,
		Location:   s.loc,
		Debug:      s.debug,
	}
	if stored != nil {
		opts.DurationMs = stored.DurationMs
		opts.Completed = stored.Completed
		if !stored.Completed {
			opts.StartPositionMs = stored.PositionMs
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return TrackerState{}, errors.New("playback service is shutting down")
	}
	if t, ok := s.trackers[key]; ok {
		return t.State(), nil
	}

	opts.Clock = s.now
	t := NewTracker(opts)
	s.trackers[key] = t

	if s.debug {
		log.Printf("[DEBUG] Started tracker for user %d video %s at %d ms", userID, videoID, opts.StartPositionMs)
	}
	return t.State(), nil
}

// Ready records the duration reported by the player
func (s *PlaybackService) Ready(userID int64, videoID string, durationMs int64) (TrackerState, error) {
	t, err := s.tracker(userID, videoID)
	if err != nil {
		return TrackerState{}, err
	}
	t.OnReady(durationMs)
	return t.State(), nil
}

// ReportPosition forwards a position callback
func (s *PlaybackService) ReportPosition(userID int64, videoID string, positionMs int64) (TrackerState, error) {
	t, err := s.tracker(userID, videoID)
	if err != nil {
		return TrackerState{}, err
	}
	t.ReportPosition(positionMs)
	return t.State(), nil
}

// Pause writes the current position and flushes watch time
func (s *PlaybackService) Pause(userID int64, videoID string) (TrackerState, error) {
	t, err := s.tracker(userID, videoID)
	if err != nil {
		return TrackerState{}, err
	}
	t.OnPause()
	return t.State(), nil
}

// Complete marks the video as watched to the end
func (s *PlaybackService) Complete(userID int64, videoID string) (TrackerState, error) {
	t, err := s.tracker(userID, videoID)
	if err != nil {
		return TrackerState{}, err
	}
	t.OnPlaybackCompleted()
	return t.State(), nil
}

// Stop tears the tracker down and forgets it
func (s *PlaybackService) Stop(userID int64, videoID string) (TrackerState, error) {
	key := trackerKey{userID: userID, videoID: videoID}

	s.mu.Lock()
	t, ok := s.trackers[key]
	delete(s.trackers, key)
	s.mu.Unlock()

	if !ok {
		return TrackerState{}, ErrTrackerNotFound
	}
	t.Teardown()
	return t.State(), nil
}

// State returns the current tracker state
func (s *PlaybackService) State(userID int64, videoID string) (TrackerState, error) {
	t, err := s.tracker(userID, videoID)
	if err != nil {
		return TrackerState{}, err
	}
	return t.State(), nil
}

// ActiveCount returns the number of live trackers
func (s *PlaybackService) ActiveCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.trackers)
}

// TeardownIdle tears down trackers that have not seen an event within the
// idle timeout. It returns how many were removed.
func (s *PlaybackService) TeardownIdle() int {
	s.mu.Lock()
	cutoff := s.now().Add(-s.idleTimeout)
	var idle []*Tracker
	for key, t := range s.trackers {
		if t.LastEventAt().Before(cutoff) {
			idle = append(idle, t)
			delete(s.trackers, key)
		}
	}
	s.mu.Unlock()

	for _, t := range idle {
		t.Teardown()
	}
	if len(idle) > 0 {
		log.Printf("Tore down %d idle playback trackers", len(idle))
	}
	return len(idle)
}

// Wait blocks until every write issued so far has finished
func (s *PlaybackService) Wait() {
	s.tasks.Wait()
}

// Shutdown tears down every tracker and waits for their writes, bounded by
// ctx. No tracker can be started afterwards.
func (s *PlaybackService) Shutdown(ctx context.Context) error {
	s.mu.Lock()
	s.closed = true
	trackers := make([]*Tracker, 0, len(s.trackers))
	for key, t := range s.trackers {
		trackers = append(trackers, t)
		delete(s.trackers, key)
	}
	s.mu.Unlock()

	for _, t := range trackers {
		t.Teardown()
	}
	log.Printf("Waiting for %d playback trackers to finish writing", len(trackers))

	if err := s.tasks.WaitContext(ctx); err != nil {
		return fmt.Errorf("pending playback writes did not finish: %w", err)
	}
	return nil
}

func (s *PlaybackService) tracker(userID int64, videoID string) (*Tracker, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	t, ok := s.trackers[trackerKey{userID: userID, videoID: videoID}]
	if !ok {
		return nil, ErrTrackerNotFound
	}
	return t, nil
}
