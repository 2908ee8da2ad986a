package service

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundsteps/internal/database/dbtest"
	"soundsteps/internal/models"
	"soundsteps/internal/repository"
	"soundsteps/internal/validation"
)

func TestAssessmentServiceValidation(t *testing.T) {
	db := dbtest.New(t)
	svc := NewAssessmentService(repository.NewAssessmentRepository(db))

	tests := []struct {
		name   string
		period string
		cap    int
		sir    int
		notes  string
		field  string
	}{
		{name: "empty period", period: " ", cap: 3, sir: 2, field: "period"},
		{name: "CAP too high", period: "3 months", cap: 8, sir: 2, field: "cap_score"},
		{name: "CAP negative", period: "3 months", cap: -1, sir: 2, field: "cap_score"},
		{name: "SIR zero", period: "3 months", cap: 3, sir: 0, field: "sir_score"},
		{name: "SIR too high", period: "3 months", cap: 3, sir: 6, field: "sir_score"},
		{name: "notes too long", period: "3 months", cap: 3, sir: 2, notes: strings.Repeat("x", 2001), field: "notes"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Add(context.Background(), 1, tt.period, tt.cap, tt.sir, tt.notes)
			var verr validation.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestAssessmentServiceAddAndList(t *testing.T) {
	db := dbtest.New(t)
	user, err := repository.NewUserRepository(db).CreateUser(context.Background(), "p@example.com", "hash", models.Profile{Name: "Parent"})
	require.NoError(t, err)

	svc := NewAssessmentService(repository.NewAssessmentRepository(db))
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	empty, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)

	first, err := svc.Add(context.Background(), user.ID, "Activation", 0, 1, "")
	require.NoError(t, err)
	assert.NotEmpty(t, first.ID)

	now = now.Add(90 * 24 * time.Hour)
	second, err := svc.Add(context.Background(), user.ID, " 3 months ", 4, 2, " babbling more ")
	require.NoError(t, err)
	assert.Equal(t, "3 months", second.Period)
	assert.Equal(t, "babbling more", second.Notes)

	list, err := svc.List(context.Background(), user.ID)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID)
	assert.Equal(t, first.ID, list[1].ID)
	assert.Equal(t, 4, list[0].CAPScore)
}
