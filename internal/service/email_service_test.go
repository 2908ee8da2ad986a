package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"soundsteps/internal/catalog"
	"soundsteps/internal/models"
)

func TestWelcomeEmailListsCurriculum(t *testing.T) {
	svc := &EmailService{appBaseURL: "https://app.example.com"}

	htmlBody, textBody := svc.welcomeBodies("Sam Parent", "Ava")

	for _, stage := range []string{"Sound Awareness", "Sound Discrimination", "Sound Identification", "Auditory Comprehension"} {
		assert.Contains(t, htmlBody, "<strong>"+stage+"</strong> (3 lessons)")
		assert.Contains(t, textBody, "- "+stage+" (3 lessons)")
	}
	assert.Contains(t, textBody, "Ava's listening programme has 4 stages")
	assert.Contains(t, htmlBody, `href="https://app.example.com/videos/aw-01"`)
	assert.Contains(t, textBody, "Is there a sound?")
}

func TestWelcomeEmailUsesConfiguredCurriculum(t *testing.T) {
	svc := &EmailService{appBaseURL: "https://app.example.com"}
	svc.SetCurriculum(catalog.New(
		[]models.Category{{ID: "tones", Name: "Tone & Pitch", Description: "High and low", Order: 1}},
		[]models.Video{{ID: "tp-01", CategoryID: "tones", Title: "Up and down", Order: 1}},
	))

	htmlBody, textBody := svc.welcomeBodies("Sam <Parent>", "")

	assert.Contains(t, htmlBody, "<strong>Tone &amp; Pitch</strong> (1 lesson)")
	assert.Contains(t, htmlBody, "Hi Sam &lt;Parent&gt;,")
	assert.NotContains(t, htmlBody, "Sound Awareness")
	assert.Contains(t, textBody, "your child's listening programme has 1 stage")
	assert.Contains(t, textBody, "https://app.example.com/videos/tp-01")
}

func TestDisabledEmailServiceSkipsSending(t *testing.T) {
	svc, err := NewEmailService("us-east-1", "", "", "http://localhost", false)
	require.NoError(t, err)
	assert.False(t, svc.IsEnabled())

	assert.NoError(t, svc.SendWelcomeEmail(context.Background(), "sam@example.com", "Sam", "Ava"))
	assert.NoError(t, svc.SendPasswordResetEmail(context.Background(), "sam@example.com", "Sam", "token"))
}
