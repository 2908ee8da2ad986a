package validation

import (
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	emailRegex = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneRegex = regexp.MustCompile(`^\+?[0-9 \-()]{6,20}$`)
)

// Score bounds for the clinical scales
const (
	MinCAPScore = 0
	MaxCAPScore = 7
	MinSIRScore = 1
	MaxSIRScore = 5
)

// ValidationError represents a validation error
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidateEmail checks if an email address is valid
func ValidateEmail(email string) error {
	email = strings.TrimSpace(email)
	if email == "" {
		return ValidationError{Field: "email", Message: "email is required"}
	}
	if !emailRegex.MatchString(email) {
		return ValidationError{Field: "email", Message: "invalid email format"}
	}
	return nil
}

// ValidatePassword checks if a password meets requirements
func ValidatePassword(password string) error {
	if password == "" {
		return ValidationError{Field: "password", Message: "password is required"}
	}
	if len(password) < 8 {
		return ValidationError{Field: "password", Message: "password must be at least 8 characters"}
	}
	if len(password) > 72 {
		return ValidationError{Field: "password", Message: "password must be at most 72 characters"}
	}
	return nil
}

// ValidateName checks if a name is valid
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return ValidationError{Field: "name", Message: "name is required"}
	}
	if len(name) < 2 {
		return ValidationError{Field: "name", Message: "name must be at least 2 characters"}
	}
	return nil
}

// ValidatePhone accepts an empty phone number or a loosely formatted one
func ValidatePhone(phone string) error {
	phone = strings.TrimSpace(phone)
	if phone == "" {
		return nil
	}
	if !phoneRegex.MatchString(phone) {
		return ValidationError{Field: "phone", Message: "invalid phone number"}
	}
	return nil
}

// ValidateChildAge checks the child's age in years
func ValidateChildAge(age int) error {
	if age < 0 || age > 18 {
		return ValidationError{Field: "child_age", Message: "child age must be between 0 and 18"}
	}
	return nil
}

// ValidateDate checks an optional ISO calendar date (YYYY-MM-DD)
func ValidateDate(field string, date *string) error {
	if date == nil || *date == "" {
		return nil
	}
	if _, err := time.Parse("2006-01-02", *date); err != nil {
		return ValidationError{Field: field, Message: "date must be formatted as YYYY-MM-DD"}
	}
	return nil
}

// ValidatePeriod checks an assessment period label such as "3 months"
func ValidatePeriod(period string) error {
	period = strings.TrimSpace(period)
	if period == "" {
		return ValidationError{Field: "period", Message: "period is required"}
	}
	if len(period) > 64 {
		return ValidationError{Field: "period", Message: "period must be at most 64 characters"}
	}
	return nil
}

// ValidateCAPScore checks a Categories of Auditory Performance score
func ValidateCAPScore(score int) error {
	if score < MinCAPScore || score > MaxCAPScore {
		return ValidationError{Field: "cap_score", Message: fmt.Sprintf("CAP score must be between %d and %d", MinCAPScore, MaxCAPScore)}
	}
	return nil
}

// ValidateSIRScore checks a Speech Intelligibility Rating
func ValidateSIRScore(score int) error {
	if score < MinSIRScore || score > MaxSIRScore {
		return ValidationError{Field: "sir_score", Message: fmt.Sprintf("SIR score must be between %d and %d", MinSIRScore, MaxSIRScore)}
	}
	return nil
}
