package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundsteps/internal/catalog"
	"soundsteps/internal/models"
)

type staticProgress []models.VideoProgress

func (s staticProgress) ListProgress(ctx context.Context, userID int64) ([]models.VideoProgress, error) {
	return s, nil
}

func TestCatalogCategoriesCountCompleted(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), staticProgress{
		{VideoID: "aw-01", PositionMs: 240000, DurationMs: 240000, Completed: true},
		{VideoID: "aw-02", PositionMs: 100000, DurationMs: 300000},
		{VideoID: "id-01", PositionMs: 330000, DurationMs: 330000, Completed: true},
	}, nil)

	categories, err := svc.Categories(context.Background(), 1)
	require.NoError(t, err)

	counts := map[string]int{}
	for _, c := range categories {
		counts[c.ID] = c.CompletedVideos
	}
	assert.Equal(t, 1, counts["awareness"])
	assert.Equal(t, 0, counts["discrimination"])
	assert.Equal(t, 1, counts["identification"])
	assert.Equal(t, 33, categories[0].ProgressPercentage())
}

func TestCatalogVideosMergeProgress(t *testing.T) {
	svc := NewCatalogService(catalog.Default(), staticProgress{
		{VideoID: "aw-01", PositionMs: 240000, DurationMs: 240000, Completed: true},
		{VideoID: "aw-02", PositionMs: 150000, DurationMs: 300000},
	}, nil)

	videos, err := svc.Videos(context.Background(), 1, "awareness")
	require.NoError(t, err)
	require.Len(t, videos, 3)

	assert.True(t, videos[0].IsCompleted)
	assert.Equal(t, 100, videos[0].WatchProgress)
	assert.False(t, videos[1].IsLocked)
	assert.Equal(t, 50, videos[1].WatchProgress)
	assert.False(t, videos[1].IsCompleted)
	assert.True(t, videos[2].IsLocked)

	_, err = svc.Videos(context.Background(), 1, "missing")
	assert.ErrorIs(t, err, ErrCategoryNotFound)

	video, err := svc.Video(context.Background(), 1, "aw-02")
	require.NoError(t, err)
	assert.Equal(t, 50, video.WatchProgress)

	_, err = svc.Video(context.Background(), 1, "missing")
	assert.ErrorIs(t, err, ErrVideoNotFound)
}

func TestCheckVideoURL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodHead, r.Method)
		if r.URL.Path == "/missing.mp4" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Header().Set("Content-Type", "video/mp4")
		w.WriteHeader(http.StatusOK)
	}))
	defer server.Close()

	svc := NewCatalogService(catalog.Default(), staticProgress{}, NewVideoChecker(2*time.Second, false))
	ctx := context.Background()

	assert.NoError(t, svc.CheckVideoURL(ctx, server.URL+"/lesson.mp4"))
	assert.ErrorIs(t, svc.CheckVideoURL(ctx, server.URL+"/missing.mp4"), ErrVideoUnreachable)
	assert.ErrorIs(t, svc.CheckVideo(ctx, "missing"), ErrVideoNotFound)
}
