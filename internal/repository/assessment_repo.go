package repository

import (
	"context"
	"fmt"

	"soundsteps/internal/database"
	"soundsteps/internal/models"
)

// AssessmentRepository stores the append-only clinical assessment log
type AssessmentRepository struct {
	db database.DBTX
}

// NewAssessmentRepository creates a new assessment repository
func NewAssessmentRepository(db database.DBTX) *AssessmentRepository {
	return &AssessmentRepository{db: db}
}

// Insert appends an assessment. Assessments are never updated or deleted.
func (r *AssessmentRepository) Insert(ctx context.Context, a models.Assessment) error {
	query := `
		INSERT INTO assessments (id, user_id, period, cap_score, sir_score, notes, recorded_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`
	if _, err := r.db.ExecContext(ctx, query, a.ID, a.UserID, a.Period, a.CAPScore, a.SIRScore, a.Notes, a.RecordedAt.UTC()); err != nil {
		return fmt.Errorf("failed to insert assessment: %w", err)
	}
	return nil
}

// ListByUser returns a user's assessments, newest first
func (r *AssessmentRepository) ListByUser(ctx context.Context, userID int64) ([]models.Assessment, error) {
	query := `
		SELECT id, user_id, period, cap_score, sir_score, notes, recorded_at
		FROM assessments
		WHERE user_id = ?
		ORDER BY recorded_at DESC, id DESC
	`
	return r.list(ctx, query, userID)
}

// ListAll returns every assessment, for export
func (r *AssessmentRepository) ListAll(ctx context.Context) ([]models.Assessment, error) {
	query := `
		SELECT id, user_id, period, cap_score, sir_score, notes, recorded_at
		FROM assessments
		ORDER BY user_id, recorded_at
	`
	return r.list(ctx, query)
}

func (r *AssessmentRepository) list(ctx context.Context, query string, args ...interface{}) ([]models.Assessment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query assessments: %w", err)
	}
	defer rows.Close()

	assessments := []models.Assessment{}
	for rows.Next() {
		var a models.Assessment
		if err := rows.Scan(&a.ID, &a.UserID, &a.Period, &a.CAPScore, &a.SIRScore, &a.Notes, &a.RecordedAt); err != nil {
			return nil, fmt.Errorf("failed to scan assessment: %w", err)
		}
		assessments = append(assessments, a)
	}
	return assessments, rows.Err()
}
