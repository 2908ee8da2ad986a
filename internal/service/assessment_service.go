package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"soundsteps/internal/models"
	"soundsteps/internal/repository"
	"soundsteps/internal/validation"
)

const maxNotesLength = 2000

// AssessmentService records periodic CAP/SIR scores. The log is
// append-only.
type AssessmentService struct {
	repo *repository.AssessmentRepository
	now  Clock
}

// NewAssessmentService creates a new assessment service
func NewAssessmentService(repo *repository.AssessmentRepository) *AssessmentService {
	return &AssessmentService{repo: repo, now: time.Now}
}

// Add validates and appends an assessment for the user
func (s *AssessmentService) Add(ctx context.Context, userID int64, period string, capScore, sirScore int, notes string) (*models.Assessment, error) {
	if err := validation.ValidatePeriod(period); err != nil {
		return nil, err
	}
	if err := validation.ValidateCAPScore(capScore); err != nil {
		return nil, err
	}
	if err := validation.ValidateSIRScore(sirScore); err != nil {
		return nil, err
	}
	notes = strings.TrimSpace(notes)
	if len(notes) > maxNotesLength {
		return nil, validation.ValidationError{Field: "notes", Message: fmt.Sprintf("notes must be at most %d characters", maxNotesLength)}
	}

	a := models.Assessment{
		ID:         uuid.New().String(),
		UserID:     userID,
		Period:     strings.TrimSpace(period),
		CAPScore:   capScore,
		SIRScore:   sirScore,
		Notes:      notes,
		RecordedAt: s.now().UTC(),
	}
	if err := s.repo.Insert(ctx, a); err != nil {
		return nil, fmt.Errorf("failed to record assessment: %w", err)
	}
	return &a, nil
}

// List returns the user's assessments, newest first
func (s *AssessmentService) List(ctx context.Context, userID int64) ([]models.Assessment, error) {
	assessments, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assessments: %w", err)
	}
	if assessments == nil {
		assessments = []models.Assessment{}
	}
	return assessments, nil
}
