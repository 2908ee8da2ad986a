package service

import (
	"context"
	"errors"
	"fmt"

	"soundsteps/internal/catalog"
	"soundsteps/internal/models"
)

var (
	ErrCategoryNotFound = errors.New("category not found")
	ErrVideoNotFound    = errors.New("video not found")
	ErrVideoLocked      = errors.New("video is locked")
)

// ProgressLister reads the checkpoints of a user
type ProgressLister interface {
	ListProgress(ctx context.Context, userID int64) ([]models.VideoProgress, error)
}

// URLChecker verifies a video URL is reachable
type URLChecker interface {
	Check(ctx context.Context, url string) error
}

// CatalogService serves the curriculum merged with a user's progress
type CatalogService struct {
	catalog  *catalog.Catalog
	progress ProgressLister
	checker  URLChecker
}

// NewCatalogService creates a new catalog service
func NewCatalogService(c *catalog.Catalog, progress ProgressLister, checker URLChecker) *CatalogService {
	return &CatalogService{
		catalog:  c,
		progress: progress,
		checker:  checker,
	}
}

// Categories returns every category with the user's completed counts
func (s *CatalogService) Categories(ctx context.Context, userID int64) ([]models.Category, error) {
	byVideo, err := s.progressByVideo(ctx, userID)
	if err != nil {
		return nil, err
	}

	categories := s.catalog.Categories()
	for i := range categories {
		completed := 0
		for _, v := range s.catalog.Videos(categories[i].ID) {
			if p, ok := byVideo[v.ID]; ok && p.Completed {
				completed++
			}
		}
		categories[i].CompletedVideos = completed
	}
	return categories, nil
}

// Videos returns the lessons of a category with the user's progress and
// lock state applied
func (s *CatalogService) Videos(ctx context.Context, userID int64, categoryID string) ([]models.Video, error) {
	if _, ok := s.catalog.Category(categoryID); !ok {
		return nil, ErrCategoryNotFound
	}

	byVideo, err := s.progressByVideo(ctx, userID)
	if err != nil {
		return nil, err
	}
	return mergeProgress(s.catalog.Videos(categoryID), byVideo), nil
}

// Video returns a single lesson with the user's progress and lock state
func (s *CatalogService) Video(ctx context.Context, userID int64, videoID string) (*models.Video, error) {
	v, ok := s.catalog.Video(videoID)
	if !ok {
		return nil, ErrVideoNotFound
	}

	videos, err := s.Videos(ctx, userID, v.CategoryID)
	if err != nil {
		return nil, err
	}
	for i := range videos {
		if videos[i].ID == videoID {
			return &videos[i], nil
		}
	}
	return nil, ErrVideoNotFound
}

// CheckVideo verifies the video's URL is reachable
func (s *CatalogService) CheckVideo(ctx context.Context, videoID string) error {
	v, ok := s.catalog.Video(videoID)
	if !ok {
		return ErrVideoNotFound
	}
	return s.CheckVideoURL(ctx, v.URL)
}

// CheckVideoURL verifies that url is reachable
func (s *CatalogService) CheckVideoURL(ctx context.Context, url string) error {
	if s.checker == nil {
		return nil
	}
	return s.checker.Check(ctx, url)
}

func (s *CatalogService) progressByVideo(ctx context.Context, userID int64) (map[string]models.VideoProgress, error) {
	records, err := s.progress.ListProgress(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load progress: %w", err)
	}

	byVideo := make(map[string]models.VideoProgress, len(records))
	for _, p := range records {
		byVideo[p.VideoID] = p
	}
	return byVideo, nil
}

// mergeProgress fills in per-user fields on lessons given in order. A lesson
// seeded as locked opens once the lesson before it is completed.
func mergeProgress(videos []models.Video, byVideo map[string]models.VideoProgress) []models.Video {
	previousCompleted := false
	for i := range videos {
		if p, ok := byVideo[videos[i].ID]; ok {
			videos[i].WatchProgress = p.Percent()
			videos[i].IsCompleted = p.Completed
			if p.Completed {
				videos[i].WatchProgress = 100
			}
		}
		if videos[i].IsLocked && previousCompleted {
			videos[i].IsLocked = false
		}
		previousCompleted = videos[i].IsCompleted
	}
	return videos
}
