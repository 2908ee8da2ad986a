package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"soundsteps/internal/models"
	"soundsteps/internal/repository"
	"soundsteps/internal/security"
	"soundsteps/internal/validation"
)

var (
	ErrEmailTaken         = errors.New("email already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrSessionNotFound    = errors.New("session not found")
	ErrSessionExpired     = errors.New("session expired")
	ErrReauthFailed       = errors.New("current password is incorrect")
	ErrInvalidResetToken  = errors.New("invalid or expired reset token")
)

const resetTokenLifetime = time.Hour

// AuthResult is returned on a successful login
type AuthResult struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      *models.User `json:"user"`
}

// AuthService handles authentication business logic
type AuthService struct {
	userRepo        *repository.UserRepository
	tokens          *security.TokenIssuer
	emailService    *EmailService
	sessionDuration time.Duration
}

// NewAuthService creates a new auth service
func NewAuthService(userRepo *repository.UserRepository, tokens *security.TokenIssuer, emailService *EmailService, sessionDuration time.Duration) *AuthService {
	return &AuthService{
		userRepo:        userRepo,
		tokens:          tokens,
		emailService:    emailService,
		sessionDuration: sessionDuration,
	}
}

// Register creates a new parent account and sends a welcome email
func (s *AuthService) Register(ctx context.Context, email, password string, profile models.Profile) (*models.User, error) {
	email = normalizeEmail(email)

	// Validate inputs
	if err := validation.ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := validation.ValidatePassword(password); err != nil {
		return nil, err
	}
	profile, err := cleanProfile(profile)
	if err != nil {
		return nil, err
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, email)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	passwordHash, err := security.HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user, err := s.userRepo.CreateUser(ctx, email, passwordHash, profile)
	if err != nil {
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	// Welcome email is best effort
	if s.emailService != nil && s.emailService.IsEnabled() {
		if err := s.emailService.SendWelcomeEmail(ctx, user.Email, user.Name, user.ChildName); err != nil {
			log.Printf("Warning: failed to send welcome email to user %d: %v", user.ID, err)
		}
	}

	return user, nil
}

// Login authenticates a user, creates a session and issues an access token
// bound to it
func (s *AuthService) Login(ctx context.Context, email, password string) (*AuthResult, error) {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrInvalidCredentials
	}

	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.startSession(ctx, user)
}

func (s *AuthService) startSession(ctx context.Context, user *models.User) (*AuthResult, error) {
	sessionID := security.GenerateSessionID()
	expiresAt := time.Now().Add(s.sessionDuration)

	if _, err := s.userRepo.CreateSession(ctx, sessionID, user.ID, expiresAt); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	token, err := s.tokens.Issue(sessionID, user.ID, expiresAt)
	if err != nil {
		if delErr := s.userRepo.DeleteSession(ctx, sessionID); delErr != nil {
			log.Printf("Warning: failed to remove session %s after token error: %v", sessionID, delErr)
		}
		return nil, fmt.Errorf("failed to issue token: %w", err)
	}

	return &AuthResult{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// ValidateToken checks an access token and its session and returns the
// associated user and session
func (s *AuthService) ValidateToken(ctx context.Context, token string) (*models.User, *models.Session, error) {
	sessionID, userID, err := s.tokens.Parse(token)
	if err != nil {
		return nil, nil, ErrSessionNotFound
	}

	session, err := s.userRepo.GetSession(ctx, sessionID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get session: %w", err)
	}
	if session == nil || session.UserID != userID {
		return nil, nil, ErrSessionNotFound
	}

	if session.IsExpired() {
		// Clean up expired session
		if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
			log.Printf("Warning: failed to delete expired session for user %d: %v", session.UserID, err)
		}
		return nil, nil, ErrSessionExpired
	}

	user, err := s.userRepo.GetUserByID(ctx, session.UserID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, nil, ErrSessionNotFound
	}

	return user, session, nil
}

// Logout invalidates the session behind a token
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if err := s.userRepo.DeleteSession(ctx, sessionID); err != nil {
		return fmt.Errorf("failed to logout: %w", err)
	}
	return nil
}

// UpdateProfile replaces the editable profile fields of a user
func (s *AuthService) UpdateProfile(ctx context.Context, userID int64, profile models.Profile) (*models.User, error) {
	profile, err := cleanProfile(profile)
	if err != nil {
		return nil, err
	}
	if err := s.userRepo.UpdateProfile(ctx, userID, profile); err != nil {
		return nil, fmt.Errorf("failed to update profile: %w", err)
	}
	return s.mustGetUser(ctx, userID)
}

// ChangeEmail moves the account to a new email after checking the current
// password
func (s *AuthService) ChangeEmail(ctx context.Context, userID int64, currentPassword, newEmail string) (*models.User, error) {
	user, err := s.reauthenticate(ctx, userID, currentPassword)
	if err != nil {
		return nil, err
	}

	newEmail = normalizeEmail(newEmail)
	if err := validation.ValidateEmail(newEmail); err != nil {
		return nil, err
	}
	if newEmail == user.Email {
		return user, nil
	}

	existingUser, err := s.userRepo.GetUserByEmail(ctx, newEmail)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing user: %w", err)
	}
	if existingUser != nil {
		return nil, ErrEmailTaken
	}

	if err := s.userRepo.UpdateEmail(ctx, userID, newEmail); err != nil {
		return nil, fmt.Errorf("failed to update email: %w", err)
	}
	return s.mustGetUser(ctx, userID)
}

// ChangePassword sets a new password after checking the current one. Every
// other session of the user is signed out.
func (s *AuthService) ChangePassword(ctx context.Context, userID int64, keepSessionID, currentPassword, newPassword string) error {
	if _, err := s.reauthenticate(ctx, userID, currentPassword); err != nil {
		return err
	}
	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, userID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.DeleteUserSessions(ctx, userID, keepSessionID); err != nil {
		return fmt.Errorf("failed to sign out other sessions: %w", err)
	}
	return nil
}

func (s *AuthService) reauthenticate(ctx context.Context, userID int64, password string) (*models.User, error) {
	user, err := s.mustGetUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if !security.CheckPassword(password, user.PasswordHash) {
		return nil, ErrReauthFailed
	}
	return user, nil
}

func (s *AuthService) mustGetUser(ctx context.Context, userID int64) (*models.User, error) {
	user, err := s.userRepo.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil, ErrSessionNotFound
	}
	return user, nil
}

// RequestPasswordReset creates a password reset token and sends an email.
// Unknown addresses succeed silently.
func (s *AuthService) RequestPasswordReset(ctx context.Context, email string) error {
	user, err := s.userRepo.GetUserByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return fmt.Errorf("failed to get user: %w", err)
	}
	if user == nil {
		return nil
	}

	token, err := generateSecureToken(32)
	if err != nil {
		return fmt.Errorf("failed to generate token: %w", err)
	}

	if err := s.userRepo.DeleteUserPasswordResetTokens(ctx, user.ID); err != nil {
		log.Printf("Warning: failed to delete previous reset tokens for user %d: %v", user.ID, err)
	}

	expiresAt := time.Now().Add(resetTokenLifetime)
	if err := s.userRepo.CreatePasswordResetToken(ctx, token, user.ID, expiresAt); err != nil {
		return fmt.Errorf("failed to create reset token: %w", err)
	}

	if s.emailService != nil && s.emailService.IsEnabled() {
		if err := s.emailService.SendPasswordResetEmail(ctx, user.Email, user.Name, token); err != nil {
			return fmt.Errorf("failed to send reset email: %w", err)
		}
	}

	return nil
}

// ResetPassword sets a new password using a valid reset token and signs the
// user out everywhere
func (s *AuthService) ResetPassword(ctx context.Context, token, newPassword string) error {
	resetToken, err := s.userRepo.GetPasswordResetToken(ctx, token)
	if err != nil {
		return fmt.Errorf("failed to get reset token: %w", err)
	}
	if resetToken == nil || resetToken.Used || resetToken.IsExpired() {
		return ErrInvalidResetToken
	}

	if err := validation.ValidatePassword(newPassword); err != nil {
		return err
	}

	passwordHash, err := security.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(ctx, resetToken.UserID, passwordHash); err != nil {
		return fmt.Errorf("failed to update password: %w", err)
	}
	if err := s.userRepo.MarkPasswordResetTokenAsUsed(ctx, token); err != nil {
		return fmt.Errorf("failed to mark token as used: %w", err)
	}
	if err := s.userRepo.DeleteUserSessions(ctx, resetToken.UserID, ""); err != nil {
		return fmt.Errorf("failed to sign out sessions: %w", err)
	}

	return nil
}

// CleanupExpiredSessions removes expired sessions and reset tokens
func (s *AuthService) CleanupExpiredSessions(ctx context.Context) (int64, error) {
	removed, err := s.userRepo.DeleteExpiredSessions(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to cleanup sessions: %w", err)
	}
	if err := s.userRepo.DeleteExpiredPasswordResetTokens(ctx); err != nil {
		return removed, fmt.Errorf("failed to cleanup reset tokens: %w", err)
	}
	return removed, nil
}

func cleanProfile(p models.Profile) (models.Profile, error) {
	p.Name = strings.TrimSpace(p.Name)
	p.Phone = strings.TrimSpace(p.Phone)
	p.ChildName = strings.TrimSpace(p.ChildName)

	if err := validation.ValidateName(p.Name); err != nil {
		return p, err
	}
	if err := validation.ValidatePhone(p.Phone); err != nil {
		return p, err
	}
	if err := validation.ValidateChildAge(p.ChildAge); err != nil {
		return p, err
	}
	if err := validation.ValidateDate("implant_date", p.ImplantDate); err != nil {
		return p, err
	}
	return p, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// generateSecureToken generates a cryptographically secure random token
func generateSecureToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
