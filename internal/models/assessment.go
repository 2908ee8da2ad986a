package models

import "time"

// Assessment is a periodic clinical score entry
type Assessment struct {
	ID         string    `json:"id"`
	UserID     int64     `json:"user_id"`
	Period     string    `json:"period"`
	CAPScore   int       `json:"cap_score"`
	SIRScore   int       `json:"sir_score"`
	Notes      string    `json:"notes"`
	RecordedAt time.Time `json:"recorded_at"`
}
