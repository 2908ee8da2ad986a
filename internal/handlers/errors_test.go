package handlers

import (
	"bytes"
	"errors"
	"fmt"
	"log"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"soundsteps/internal/service"
	"soundsteps/internal/validation"
)

func TestRespondWithErrorWritesStatusAndBody(t *testing.T) {
	recorder := httptest.NewRecorder()

	respondWithError(recorder, 418, "Teapot", "", nil)

	if recorder.Code != 418 {
		t.Fatalf("expected status 418, got %d", recorder.Code)
	}
	if ct := recorder.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected JSON content type, got %q", ct)
	}

	body := strings.TrimSpace(recorder.Body.String())
	if body != `{"error":"Teapot"}` {
		t.Fatalf("expected JSON error body, got %q", body)
	}
}

func TestRespondWithErrorLogsMessage(t *testing.T) {
	var buf bytes.Buffer
	logger := log.Default()
	originalOutput := logger.Writer()
	logger.SetOutput(&buf)
	defer logger.SetOutput(originalOutput)

	recorder := httptest.NewRecorder()
	err := errors.New("boom")

	respondWithError(recorder, 500, "Internal server error", "", err)

	logOutput := buf.String()
	if !strings.Contains(logOutput, "Internal server error") {
		t.Fatalf("expected log to include user message, got %q", logOutput)
	}
	if !strings.Contains(logOutput, "boom") {
		t.Fatalf("expected log to include error, got %q", logOutput)
	}
}

func TestRespondWithServiceError(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		status int
	}{
		{name: "validation", err: validation.ValidationError{Field: "email", Message: "email is required"}, status: http.StatusBadRequest},
		{name: "bad credentials", err: service.ErrInvalidCredentials, status: http.StatusUnauthorized},
		{name: "expired session", err: service.ErrSessionExpired, status: http.StatusUnauthorized},
		{name: "reauth", err: service.ErrReauthFailed, status: http.StatusForbidden},
		{name: "email taken", err: service.ErrEmailTaken, status: http.StatusConflict},
		{name: "reset token", err: service.ErrInvalidResetToken, status: http.StatusBadRequest},
		{name: "unknown video", err: service.ErrVideoNotFound, status: http.StatusNotFound},
		{name: "no tracker", err: service.ErrTrackerNotFound, status: http.StatusNotFound},
		{name: "locked", err: service.ErrVideoLocked, status: http.StatusForbidden},
		{name: "unreachable", err: fmt.Errorf("head: %w", service.ErrVideoUnreachable), status: http.StatusBadGateway},
		{name: "store failure", err: errors.New("disk full"), status: http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			recorder := httptest.NewRecorder()
			respondWithServiceError(recorder, "test", tt.err)
			assert.Equal(t, tt.status, recorder.Code)
			assert.Contains(t, recorder.Body.String(), `"error"`)
		})
	}
}

func TestRespondWithServiceErrorIncludesField(t *testing.T) {
	recorder := httptest.NewRecorder()
	respondWithServiceError(recorder, "test", validation.ValidationError{Field: "cap_score", Message: "out of range"})

	assert.JSONEq(t, `{"error":"out of range","field":"cap_score"}`, recorder.Body.String())
}
