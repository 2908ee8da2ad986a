package handlers

import (
	"net/http"
	"strings"

	"soundsteps/internal/service"
)

// ProgressHandler serves checkpoints, aggregates and assessments
type ProgressHandler struct {
	progressService   *service.ProgressService
	assessmentService *service.AssessmentService
}

// NewProgressHandler creates a new progress handler
func NewProgressHandler(progressService *service.ProgressService, assessmentService *service.AssessmentService) *ProgressHandler {
	return &ProgressHandler{
		progressService:   progressService,
		assessmentService: assessmentService,
	}
}

type addAssessmentRequest struct {
	Period   string `json:"period"`
	CAPScore int    `json:"cap_score"`
	SIRScore int    `json:"sir_score"`
	Notes    string `json:"notes"`
}

// Progress lists every stored checkpoint of the caller
func (h *ProgressHandler) Progress(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	progress, err := h.progressService.ListProgress(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Error loading progress", err)
		return
	}

	respondJSON(w, http.StatusOK, progress)
}

// Stats returns the watch-time aggregate and streak
func (h *ProgressHandler) Stats(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	summary, err := h.progressService.Stats(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Error loading stats", err)
		return
	}

	respondJSON(w, http.StatusOK, summary)
}

// Assessments lists recorded assessments, newest first
func (h *ProgressHandler) Assessments(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	assessments, err := h.assessmentService.List(r.Context(), user.ID)
	if err != nil {
		respondWithServiceError(w, "Error loading assessments", err)
		return
	}

	respondJSON(w, http.StatusOK, assessments)
}

// AddAssessment records a CAP/SIR assessment
func (h *ProgressHandler) AddAssessment(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req addAssessmentRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	assessment, err := h.assessmentService.Add(r.Context(), user.ID, strings.TrimSpace(req.Period), req.CAPScore, req.SIRScore, req.Notes)
	if err != nil {
		respondWithServiceError(w, "Error saving assessment", err)
		return
	}

	respondJSON(w, http.StatusCreated, assessment)
}
