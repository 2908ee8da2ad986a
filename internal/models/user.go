package models

import "time"

// User represents a parent account in the system
type User struct {
	ID              int64     `json:"id"`
	Email           string    `json:"email"`
	PasswordHash    string    `json:"-"`
	Name            string    `json:"name"`
	Phone           string    `json:"phone"`
	ChildName       string    `json:"child_name"`
	ChildAge        int       `json:"child_age"`
	ImplantDate     *string   `json:"implant_date,omitempty"`
	TherapistID     *string   `json:"therapist_id,omitempty"`
	ProfileImageURL *string   `json:"profile_image_url,omitempty"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile holds the editable parent and child details of an account
type Profile struct {
	Name            string  `json:"name"`
	Phone           string  `json:"phone"`
	ChildName       string  `json:"child_name"`
	ChildAge        int     `json:"child_age"`
	ImplantDate     *string `json:"implant_date,omitempty"`
	TherapistID     *string `json:"therapist_id,omitempty"`
	ProfileImageURL *string `json:"profile_image_url,omitempty"`
}

// Session represents an authenticated session
type Session struct {
	ID        string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
}

// IsExpired checks if the session has expired
func (s *Session) IsExpired() bool {
	return time.Now().After(s.ExpiresAt)
}

// PasswordResetToken represents a token for password reset
type PasswordResetToken struct {
	Token     string
	UserID    int64
	ExpiresAt time.Time
	CreatedAt time.Time
	Used      bool
}

// IsExpired checks if the reset token has expired
func (t *PasswordResetToken) IsExpired() bool {
	return time.Now().After(t.ExpiresAt)
}
