package handlers

import (
	"net/http"

	"soundsteps/internal/models"
	"soundsteps/internal/service"
)

// AuthHandler handles authentication and account HTTP requests
type AuthHandler struct {
	authService *service.AuthService
}

// NewAuthHandler creates a new auth handler
func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	models.Profile
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type passwordResetRequest struct {
	Email string `json:"email"`
}

type passwordResetConfirmRequest struct {
	Token       string `json:"token"`
	NewPassword string `json:"new_password"`
}

type changeEmailRequest struct {
	CurrentPassword string `json:"current_password"`
	NewEmail        string `json:"new_email"`
}

type changePasswordRequest struct {
	CurrentPassword string `json:"current_password"`
	NewPassword     string `json:"new_password"`
}

// Register creates a parent account and signs it in
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if _, err := h.authService.Register(r.Context(), req.Email, req.Password, req.Profile); err != nil {
		respondWithServiceError(w, "Error registering user", err)
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in new user", err)
		return
	}

	respondJSON(w, http.StatusCreated, result)
}

// Login exchanges credentials for an access token
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	result, err := h.authService.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		respondWithServiceError(w, "Error logging in", err)
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// Logout ends the session behind the request token
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	session := GetSessionFromContext(r.Context())
	if session == nil {
		respondWithError(w, http.StatusUnauthorized, ErrUnauthorized, "", nil)
		return
	}

	if err := h.authService.Logout(r.Context(), session.ID); err != nil {
		respondWithServiceError(w, "Error logging out", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// RequestPasswordReset emails a reset link. The response does not reveal
// whether the address has an account.
func (h *AuthHandler) RequestPasswordReset(w http.ResponseWriter, r *http.Request) {
	var req passwordResetRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.RequestPasswordReset(r.Context(), req.Email); err != nil {
		respondWithServiceError(w, "Error requesting password reset", err)
		return
	}

	respondJSON(w, http.StatusAccepted, map[string]string{
		"message": "If an account exists for that email, a reset link has been sent",
	})
}

// ResetPassword sets a new password from a reset token
func (h *AuthHandler) ResetPassword(w http.ResponseWriter, r *http.Request) {
	var req passwordResetConfirmRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	if err := h.authService.ResetPassword(r.Context(), req.Token, req.NewPassword); err != nil {
		respondWithServiceError(w, "Error resetting password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// Me returns the signed-in user
func (h *AuthHandler) Me(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, GetUserFromContext(r.Context()))
}

// UpdateProfile replaces the editable profile fields
func (h *AuthHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var profile models.Profile
	if !decodeJSON(w, r, &profile) {
		return
	}

	updated, err := h.authService.UpdateProfile(r.Context(), user.ID, profile)
	if err != nil {
		respondWithServiceError(w, "Error updating profile", err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// ChangeEmail moves the account to a new email address
func (h *AuthHandler) ChangeEmail(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())

	var req changeEmailRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	updated, err := h.authService.ChangeEmail(r.Context(), user.ID, req.CurrentPassword, req.NewEmail)
	if err != nil {
		respondWithServiceError(w, "Error changing email", err)
		return
	}

	respondJSON(w, http.StatusOK, updated)
}

// ChangePassword sets a new password and signs out other devices
func (h *AuthHandler) ChangePassword(w http.ResponseWriter, r *http.Request) {
	user := GetUserFromContext(r.Context())
	session := GetSessionFromContext(r.Context())

	var req changePasswordRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	keep := ""
	if session != nil {
		keep = session.ID
	}
	if err := h.authService.ChangePassword(r.Context(), user.ID, keep, req.CurrentPassword, req.NewPassword); err != nil {
		respondWithServiceError(w, "Error changing password", err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
