package handlers

import (
	"net/http"

	"soundsteps/internal/service"
)

// CatalogHandler serves categories and videos with the caller's progress
type CatalogHandler struct {
	catalogService *service.CatalogService
}

// NewCatalogHandler creates a new catalog handler
func NewCatalogHandler(catalogService *service.CatalogService) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

// Categories lists every category in order
func (h *CatalogHandler) Categories(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	categories, err := h.catalogService.Categories(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Error loading categories", err)
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// CategoryVideos lists the videos of one category
func (h *CatalogHandler) CategoryVideos(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	videos, err := h.catalogService.Videos(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error loading videos", err)
		return
	}

	respondJSON(w, http.StatusOK, videos)
}

// Video returns a single video
func (h *CatalogHandler) Video(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	video, err := h.catalogService.Video(r.Context(), user.ID, r.PathValue("id"))
	if err != nil {
		respondWithServiceError(w, "Error loading video", err)
		return
	}

	respondJSON(w, http.StatusOK, video)
}

// CheckVideo reports whether the media URL of a video answers
func (h *CatalogHandler) CheckVideo(w http.ResponseWriter, r *http.Request) {
	videoID := r.PathValue("id")

	if err := h.catalogService.CheckVideo(r.Context(), videoID); err != nil {
		respondWithServiceError(w, "Error checking video "+videoID, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]bool{"available": true})
}
