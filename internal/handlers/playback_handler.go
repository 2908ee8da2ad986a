package handlers

import (
	"net/http"

	"soundsteps/internal/service"
)

// PlaybackHandler relays player events to the playback trackers
type PlaybackHandler struct {
	playbackService *service.PlaybackService
}

// NewPlaybackHandler creates a new playback handler
func NewPlaybackHandler(playbackService *service.PlaybackService) *PlaybackHandler {
	return &PlaybackHandler{playbackService: playbackService}
}

type readyRequest struct {
	DurationMs int64 `json:"duration_ms"`
}

type positionRequest struct {
	PositionMs int64 `json:"position_ms"`
}

// Start begins tracking a video for the caller
func (h *PlaybackHandler) Start(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	state, err := h.playbackService.Start(r.Context(), user.ID, r.PathValue("videoId"))
	if err != nil {
		respondWithServiceError(w, "Error starting playback", err)
		return
	}

	respondJSON(w, http.StatusOK, state)
}

// Ready records the media duration
func (h *PlaybackHandler) Ready(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req readyRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.respond(w, "Error recording duration")(h.playbackService.Ready(user.ID, r.PathValue("videoId"), req.DurationMs))
}

// Position records a playback position callback
func (h *PlaybackHandler) Position(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req positionRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	h.respond(w, "Error recording position")(h.playbackService.ReportPosition(user.ID, r.PathValue("videoId"), req.PositionMs))
}

// Pause saves the position and flushes watch time
func (h *PlaybackHandler) Pause(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	h.respond(w, "Error pausing playback")(h.playbackService.Pause(user.ID, r.PathValue("videoId")))
}

// Complete marks the video as watched
func (h *PlaybackHandler) Complete(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	h.respond(w, "Error completing playback")(h.playbackService.Complete(user.ID, r.PathValue("videoId")))
}

// Stop tears the tracker down
func (h *PlaybackHandler) Stop(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	h.respond(w, "Error stopping playback")(h.playbackService.Stop(user.ID, r.PathValue("videoId")))
}

// State returns the tracker state
func (h *PlaybackHandler) State(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	h.respond(w, "Error loading playback state")(h.playbackService.State(user.ID, r.PathValue("videoId")))
}

func (h *PlaybackHandler) respond(w http.ResponseWriter, logMsg string) func(service.TrackerState, error) {
	return func(state service.TrackerState, err error) {
		if err != nil {
			respondWithServiceError(w, logMsg, err)
			return
		}
		respondJSON(w, http.StatusOK, state)
	}
}
