package service

import (
	"context"
	"fmt"

	"soundsteps/internal/models"
	"soundsteps/internal/repository"
)

// StatsSummary is the engagement overview shown on the progress screen
type StatsSummary struct {
	Stats  models.WatchStats `json:"stats"`
	Streak models.StreakInfo `json:"streak"`
}

// ProgressService serves a user's stored checkpoints and aggregates
type ProgressService struct {
	progress *repository.ProgressRepository
	stats    *repository.StatsRepository
}

// NewProgressService creates a new progress service
func NewProgressService(progress *repository.ProgressRepository, stats *repository.StatsRepository) *ProgressService {
	return &ProgressService{progress: progress, stats: stats}
}

// ListProgress returns every checkpoint of the user, most recent first
func (s *ProgressService) ListProgress(ctx context.Context, userID int64) ([]models.VideoProgress, error) {
	records, err := s.progress.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list progress: %w", err)
	}
	if records == nil {
		records = []models.VideoProgress{}
	}
	return records, nil
}

// Stats returns the watch-time aggregate and streak of the user
func (s *ProgressService) Stats(ctx context.Context, userID int64) (*StatsSummary, error) {
	stats, streak, err := s.stats.GetStats(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get stats: %w", err)
	}
	return &StatsSummary{Stats: stats, Streak: streak}, nil
}
