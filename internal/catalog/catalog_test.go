package catalog

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundsteps/internal/models"
)

func TestNewSortsAndCounts(t *testing.T) {
	c := New(
		[]models.Category{
			{ID: "b", Name: "Second", Order: 2},
			{ID: "a", Name: "First", Order: 1},
			{ID: "empty", Name: "Empty", Order: 3},
		},
		[]models.Video{
			{ID: "a2", CategoryID: "a", Order: 2},
			{ID: "a1", CategoryID: "a", Order: 1},
			{ID: "b1", CategoryID: "b", Order: 1},
		},
	)

	cats := c.Categories()
	require.Len(t, cats, 3)
	assert.Equal(t, "a", cats[0].ID)
	assert.Equal(t, 2, cats[0].TotalVideos)
	assert.Equal(t, 1, cats[1].TotalVideos)
	assert.Equal(t, 0, cats[2].TotalVideos)
	assert.Equal(t, 0, cats[2].ProgressPercentage())

	videos := c.Videos("a")
	require.Len(t, videos, 2)
	assert.Equal(t, "a1", videos[0].ID)

	v, ok := c.Video("b1")
	assert.True(t, ok)
	assert.Equal(t, "b", v.CategoryID)

	_, ok = c.Video("missing")
	assert.False(t, ok)
}

func TestCategoriesReturnsCopy(t *testing.T) {
	c := Default()
	cats := c.Categories()
	cats[0].CompletedVideos = 99

	again := c.Categories()
	assert.Equal(t, 0, again[0].CompletedVideos)
}

func TestDefaultCatalog(t *testing.T) {
	c := Default()
	for _, cat := range c.Categories() {
		videos := c.Videos(cat.ID)
		require.NotEmpty(t, videos, "category %s has no videos", cat.ID)
		assert.False(t, videos[0].IsLocked, "first lesson of %s must be open", cat.ID)
		for _, v := range videos {
			assert.NotEmpty(t, v.URL)
			assert.Positive(t, v.DurationMs)
		}
	}
}
