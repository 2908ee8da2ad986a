package validation

import (
	"errors"
	"testing"
)

func TestValidateEmail(t *testing.T) {
	tests := []struct {
		name    string
		email   string
		wantErr bool
	}{
		{
			name:    "valid email",
			email:   "test@example.com",
			wantErr: false,
		},
		{
			name:    "valid email with subdomain",
			email:   "user@mail.example.com",
			wantErr: false,
		},
		{
			name:    "valid email with plus",
			email:   "user+tag@example.com",
			wantErr: false,
		},
		{
			name:    "missing @",
			email:   "testexample.com",
			wantErr: true,
		},
		{
			name:    "missing domain",
			email:   "test@",
			wantErr: true,
		},
		{
			name:    "missing local part",
			email:   "@example.com",
			wantErr: true,
		},
		{
			name:    "empty string",
			email:   "",
			wantErr: true,
		},
		{
			name:    "spaces in email",
			email:   "test @example.com",
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateEmail(tt.email)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateEmail(%q) error = %v, wantErr %v", tt.email, err, tt.wantErr)
			}
		})
	}
}

func TestValidateName(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		wantErr bool
	}{
		{
			name:    "valid name",
			input:   "John Doe",
			wantErr: false,
		},
		{
			name:    "single name",
			input:   "John",
			wantErr: false,
		},
		{
			name:    "empty name",
			input:   "",
			wantErr: true,
		},
		{
			name:    "name too short",
			input:   "J",
			wantErr: true,
		},
		{
			name:    "name with hyphen",
			input:   "Mary-Jane",
			wantErr: false,
		},
		{
			name:    "name with apostrophe",
			input:   "O'Brien",
			wantErr: false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateName(tt.input)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateName(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
		})
	}
}

func TestValidatePassword(t *testing.T) {
	tests := []struct {
		name     string
		password string
		wantErr  bool
	}{
		{
			name:     "valid password",
			password: "password123",
			wantErr:  false,
		},
		{
			name:     "password exactly 8 characters",
			password: "pass1234",
			wantErr:  false,
		},
		{
			name:     "password too short",
			password: "pass123",
			wantErr:  true,
		},
		{
			name:     "empty password",
			password: "",
			wantErr:  true,
		},
		{
			name:     "long password",
			password: "thisIsAVeryLongPasswordThatShouldBeValid123",
			wantErr:  false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidatePassword(tt.password)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidatePassword() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidateScores(t *testing.T) {
	tests := []struct {
		name    string
		check   func(int) error
		score   int
		wantErr bool
	}{
		{name: "CAP lowest", check: ValidateCAPScore, score: 0, wantErr: false},
		{name: "CAP highest", check: ValidateCAPScore, score: 7, wantErr: false},
		{name: "CAP too high", check: ValidateCAPScore, score: 8, wantErr: true},
		{name: "CAP negative", check: ValidateCAPScore, score: -1, wantErr: true},
		{name: "SIR lowest", check: ValidateSIRScore, score: 1, wantErr: false},
		{name: "SIR highest", check: ValidateSIRScore, score: 5, wantErr: false},
		{name: "SIR zero", check: ValidateSIRScore, score: 0, wantErr: true},
		{name: "SIR too high", check: ValidateSIRScore, score: 6, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.check(tt.score)
			if (err != nil) != tt.wantErr {
				t.Errorf("score %d error = %v, wantErr %v", tt.score, err, tt.wantErr)
			}
		})
	}
}

func TestValidateDate(t *testing.T) {
	valid := "2023-06-14"
	badFormat := "14/06/2023"
	empty := ""

	tests := []struct {
		name    string
		date    *string
		wantErr bool
	}{
		{name: "nil date", date: nil, wantErr: false},
		{name: "empty date", date: &empty, wantErr: false},
		{name: "iso date", date: &valid, wantErr: false},
		{name: "wrong format", date: &badFormat, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateDate("implant_date", tt.date)
			if (err != nil) != tt.wantErr {
				t.Errorf("ValidateDate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestValidatePhoneAndAge(t *testing.T) {
	if err := ValidatePhone(""); err != nil {
		t.Errorf("empty phone should be accepted, got %v", err)
	}
	if err := ValidatePhone("+44 20 7946 0958"); err != nil {
		t.Errorf("formatted phone should be accepted, got %v", err)
	}
	if err := ValidatePhone("call me"); err == nil {
		t.Error("expected error for non-numeric phone")
	}
	if err := ValidateChildAge(4); err != nil {
		t.Errorf("age 4 should be accepted, got %v", err)
	}
	if err := ValidateChildAge(-1); err == nil {
		t.Error("expected error for negative age")
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := ValidatePeriod("  ")
	var vErr ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %T", err)
	}
	if vErr.Field != "period" {
		t.Errorf("Field = %q, want period", vErr.Field)
	}
	if err.Error() != "period: period is required" {
		t.Errorf("Error() = %q", err.Error())
	}
}
