package models

// Category is a therapy stage grouping videos
type Category struct {
	ID              string `json:"id"`
	Name            string `json:"name"`
	Description     string `json:"description"`
	Order           int    `json:"order"`
	TotalVideos     int    `json:"total_videos"`
	CompletedVideos int    `json:"completed_videos"`
}

// ProgressPercentage returns the share of completed videos as a whole
// percentage, rounded down. A category without videos reports 0.
func (c Category) ProgressPercentage() int {
	if c.TotalVideos <= 0 {
		return 0
	}
	return c.CompletedVideos * 100 / c.TotalVideos
}

// Video is a single therapy lesson. WatchProgress and IsCompleted are
// per-user and filled in from the user's progress records.
type Video struct {
	ID            string `json:"id"`
	CategoryID    string `json:"category_id"`
	Title         string `json:"title"`
	Description   string `json:"description"`
	URL           string `json:"url"`
	DurationMs    int64  `json:"duration_ms"`
	Order         int    `json:"order"`
	IsLocked      bool   `json:"is_locked"`
	WatchProgress int    `json:"watch_progress"`
	IsCompleted   bool   `json:"is_completed"`
}
