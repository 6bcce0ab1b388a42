package services

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

func TestBuildPasswordResetEmail(t *testing.T) {
	email := BuildPasswordResetEmail("admin@example.com", PasswordResetEmailData{
		SiteName:  "Portfolio Admin",
		Username:  "<admin>",
		Code:      "482913",
		ExpiresIn: "15 minutes",
	})

	assert.Equal(t, "admin@example.com", email.To)
	assert.Equal(t, "Password Reset Request - Portfolio Admin", email.Subject)
	assert.Contains(t, email.TextBody, "482913")
	assert.Contains(t, email.TextBody, "15 minutes")
	assert.Contains(t, email.HTMLBody, "482913")
	assert.Contains(t, email.HTMLBody, "Hello &lt;admin&gt;!")
}

func TestSMTPMailer_Compose(t *testing.T) {
	m := NewSMTPMailer("smtp.example.com", "587", "bot@example.com", "pw", "", "Portfolio")
	msg := string(m.compose(Email{To: "admin@example.com", Subject: "Hi", TextBody: "plain", HTMLBody: "<b>rich</b>"}))

	assert.Contains(t, msg, "From: ")
	assert.Contains(t, msg, "Portfolio")
	assert.Contains(t, msg, "<bot@example.com>\r\n")
	assert.Contains(t, msg, "To: admin@example.com\r\n")
	assert.Contains(t, msg, "multipart/alternative")
	assert.Contains(t, msg, "text/plain")
	assert.Contains(t, msg, "<b>rich</b>")
	assert.True(t, strings.HasSuffix(msg, "--\r\n"))
}

func TestSMTPMailer_NotConfigured(t *testing.T) {
	m := NewSMTPMailer("", "587", "", "", "", "")
	err := m.Send(context.Background(), Email{To: "a@b.co"})
	assert.ErrorIs(t, err, apperr.ErrExternalService)
}
