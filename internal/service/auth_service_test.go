package service

import (
	"bytes"
	"context"
	"errors"
	"log"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundsteps/internal/database"
	"soundsteps/internal/database/dbtest"
	"soundsteps/internal/models"
	"soundsteps/internal/repository"
	"soundsteps/internal/security"
	"soundsteps/internal/validation"
)

func newTestAuthService(t *testing.T) (*AuthService, *database.DB) {
	t.Helper()
	db := dbtest.New(t)
	emailService, err := NewEmailService("us-east-1", "", "", "http://localhost", false)
	require.NoError(t, err)
	svc := NewAuthService(repository.NewUserRepository(db), security.NewTokenIssuer("test-secret"), emailService, time.Hour)
	return svc, db
}

func testProfile() models.Profile {
	return models.Profile{Name: "Sam Parent", ChildName: "Ava", ChildAge: 2}
}

func TestRegisterAndLogin(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, " Sam@Example.com ", "longenough", testProfile())
	require.NoError(t, err)
	assert.Equal(t, "sam@example.com", user.Email)

	_, err = svc.Register(ctx, "sam@example.com", "longenough", testProfile())
	assert.ErrorIs(t, err, ErrEmailTaken)

	_, err = svc.Login(ctx, "sam@example.com", "wrong-password")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	_, err = svc.Login(ctx, "nobody@example.com", "longenough")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	result, err := svc.Login(ctx, "SAM@example.com", "longenough")
	require.NoError(t, err)
	assert.NotEmpty(t, result.Token)
	assert.Equal(t, user.ID, result.User.ID)

	got, session, err := svc.ValidateToken(ctx, result.Token)
	require.NoError(t, err)
	assert.Equal(t, user.ID, got.ID)
	assert.Equal(t, user.ID, session.UserID)

	require.NoError(t, svc.Logout(ctx, session.ID))
	_, _, err = svc.ValidateToken(ctx, result.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, _, err = svc.ValidateToken(ctx, "not-a-token")
	assert.ErrorIs(t, err, ErrSessionNotFound)
}

func TestRegisterValidation(t *testing.T) {
	svc, _ := newTestAuthService(t)
	badDate := "01/02/2023"

	tests := []struct {
		name     string
		email    string
		password string
		profile  models.Profile
		field    string
	}{
		{name: "bad email", email: "nope", password: "longenough", profile: testProfile(), field: "email"},
		{name: "short password", email: "a@example.com", password: "short", profile: testProfile(), field: "password"},
		{name: "missing name", email: "a@example.com", password: "longenough", profile: models.Profile{}, field: "name"},
		{name: "bad implant date", email: "a@example.com", password: "longenough", profile: models.Profile{Name: "Sam", ImplantDate: &badDate}, field: "implant_date"},
		{name: "bad child age", email: "a@example.com", password: "longenough", profile: models.Profile{Name: "Sam", ChildAge: 40}, field: "child_age"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.Register(context.Background(), tt.email, tt.password, tt.profile)
			var verr validation.ValidationError
			require.True(t, errors.As(err, &verr), "expected validation error, got %v", err)
			assert.Equal(t, tt.field, verr.Field)
		})
	}
}

func TestExpiredSession(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "sam@example.com", "longenough", testProfile())
	require.NoError(t, err)

	repo := repository.NewUserRepository(db)
	_, err = repo.CreateSession(ctx, "expired-session", user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	token, err := security.NewTokenIssuer("test-secret").Issue("expired-session", user.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, _, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	removed, err := svc.CleanupExpiredSessions(ctx)
	require.NoError(t, err)
	assert.Zero(t, removed, "expired session is deleted on validation")
}

func TestExpiredSessionCleanupFailureIsLogged(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "sam@example.com", "longenough", testProfile())
	require.NoError(t, err)

	repo := repository.NewUserRepository(db)
	_, err = repo.CreateSession(ctx, "expired-session", user.ID, time.Now().Add(-time.Minute))
	require.NoError(t, err)
	token, err := security.NewTokenIssuer("test-secret").Issue("expired-session", user.ID, time.Now().Add(time.Hour))
	require.NoError(t, err)

	_, err = db.ExecContext(ctx, `
		CREATE TRIGGER keep_sessions BEFORE DELETE ON sessions
		BEGIN
			SELECT RAISE(ABORT, 'sessions are read-only');
		END
	`)
	require.NoError(t, err)

	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	_, _, err = svc.ValidateToken(ctx, token)
	assert.ErrorIs(t, err, ErrSessionExpired)

	logOutput := buf.String()
	assert.Contains(t, logOutput, "failed to delete expired session")
	assert.Contains(t, logOutput, "sessions are read-only")
}

func TestChangeEmailAndPasswordRequireReauth(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "sam@example.com", "longenough", testProfile())
	require.NoError(t, err)
	_, err = svc.Register(ctx, "taken@example.com", "longenough", testProfile())
	require.NoError(t, err)

	_, err = svc.ChangeEmail(ctx, user.ID, "wrong-password", "new@example.com")
	assert.ErrorIs(t, err, ErrReauthFailed)
	_, err = svc.ChangeEmail(ctx, user.ID, "longenough", "taken@example.com")
	assert.ErrorIs(t, err, ErrEmailTaken)

	updated, err := svc.ChangeEmail(ctx, user.ID, "longenough", "New@Example.com")
	require.NoError(t, err)
	assert.Equal(t, "new@example.com", updated.Email)

	current, err := svc.Login(ctx, "new@example.com", "longenough")
	require.NoError(t, err)
	other, err := svc.Login(ctx, "new@example.com", "longenough")
	require.NoError(t, err)
	_, currentSession, err := svc.ValidateToken(ctx, current.Token)
	require.NoError(t, err)

	err = svc.ChangePassword(ctx, user.ID, currentSession.ID, "wrong-password", "evenlonger")
	assert.ErrorIs(t, err, ErrReauthFailed)
	require.NoError(t, svc.ChangePassword(ctx, user.ID, currentSession.ID, "longenough", "evenlonger"))

	_, _, err = svc.ValidateToken(ctx, current.Token)
	assert.NoError(t, err, "current session survives")
	_, _, err = svc.ValidateToken(ctx, other.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound, "other sessions are signed out")

	_, err = svc.Login(ctx, "new@example.com", "evenlonger")
	assert.NoError(t, err)
}

func TestUpdateProfile(t *testing.T) {
	svc, _ := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "sam@example.com", "longenough", testProfile())
	require.NoError(t, err)

	implant := "2023-06-15"
	updated, err := svc.UpdateProfile(ctx, user.ID, models.Profile{
		Name:        "Sam Parent",
		Phone:       "+44 7700 900123",
		ChildName:   "Ava",
		ChildAge:    3,
		ImplantDate: &implant,
	})
	require.NoError(t, err)
	assert.Equal(t, 3, updated.ChildAge)
	require.NotNil(t, updated.ImplantDate)
	assert.Equal(t, implant, *updated.ImplantDate)

	_, err = svc.UpdateProfile(ctx, user.ID, models.Profile{Name: "Sam", Phone: "call me"})
	var verr validation.ValidationError
	assert.True(t, errors.As(err, &verr))
}

func TestPasswordReset(t *testing.T) {
	svc, db := newTestAuthService(t)
	ctx := context.Background()

	user, err := svc.Register(ctx, "sam@example.com", "longenough", testProfile())
	require.NoError(t, err)
	login, err := svc.Login(ctx, "sam@example.com", "longenough")
	require.NoError(t, err)

	require.NoError(t, svc.RequestPasswordReset(ctx, "unknown@example.com"))
	require.NoError(t, svc.RequestPasswordReset(ctx, "sam@example.com"))

	var token string
	require.NoError(t, db.QueryRowContext(ctx, "SELECT token FROM password_reset_tokens WHERE user_id = ?", user.ID).Scan(&token))

	assert.ErrorIs(t, svc.ResetPassword(ctx, "bogus", "brandnewpass"), ErrInvalidResetToken)
	require.NoError(t, svc.ResetPassword(ctx, token, "brandnewpass"))
	assert.ErrorIs(t, svc.ResetPassword(ctx, token, "anotherpass1"), ErrInvalidResetToken)

	_, _, err = svc.ValidateToken(ctx, login.Token)
	assert.ErrorIs(t, err, ErrSessionNotFound)

	_, err = svc.Login(ctx, "sam@example.com", "brandnewpass")
	assert.NoError(t, err)
}
