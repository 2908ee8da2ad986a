// Package catalog holds the therapy curriculum: the stages (categories) and
// the lesson videos in each. Definitions are static and read-only.
package catalog

import (
	"sort"

	"soundsteps/internal/models"
)

// Catalog is an immutable, ordered set of categories and videos
type Catalog struct {
	categories []models.Category
	videos     map[string][]models.Video
	byID       map[string]models.Video
}

// New builds a catalog from definitions. Categories and the videos of each
// category are sorted by their Order field; TotalVideos is derived.
func New(categories []models.Category, videos []models.Video) *Catalog {
	c := &Catalog{
		videos: make(map[string][]models.Video),
		byID:   make(map[string]models.Video, len(videos)),
	}

	for _, v := range videos {
		c.videos[v.CategoryID] = append(c.videos[v.CategoryID], v)
		c.byID[v.ID] = v
	}
	for id := range c.videos {
		list := c.videos[id]
		sort.SliceStable(list, func(i, j int) bool { return list[i].Order < list[j].Order })
	}

	c.categories = append([]models.Category(nil), categories...)
	sort.SliceStable(c.categories, func(i, j int) bool { return c.categories[i].Order < c.categories[j].Order })
	for i := range c.categories {
		c.categories[i].TotalVideos = len(c.videos[c.categories[i].ID])
		c.categories[i].CompletedVideos = 0
	}

	return c
}

// Default returns the built-in curriculum
func Default() *Catalog {
	return New(seedCategories, seedVideos)
}

// Categories returns a copy of all categories in curriculum order
func (c *Catalog) Categories() []models.Category {
	return append([]models.Category(nil), c.categories...)
}

// Category returns a single category by id
func (c *Catalog) Category(id string) (models.Category, bool) {
	for _, cat := range c.categories {
		if cat.ID == id {
			return cat, true
		}
	}
	return models.Category{}, false
}

// Videos returns a copy of the videos of a category in lesson order
func (c *Catalog) Videos(categoryID string) []models.Video {
	return append([]models.Video(nil), c.videos[categoryID]...)
}

// Video returns a single video by id
func (c *Catalog) Video(id string) (models.Video, bool) {
	v, ok := c.byID[id]
	return v, ok
}
