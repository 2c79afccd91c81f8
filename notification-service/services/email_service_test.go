package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"sinpd-backend/shared/config"
)

func newTestEmailService(t *testing.T, cfg *config.Config) *EmailService {
	t.Helper()
	templates, err := NewTemplateService()
	require.NoError(t, err)
	return NewEmailService(cfg, templates)
}

func TestSendRejectsEmptyRecipients(t *testing.T) {
	es := newTestEmailService(t, &config.Config{EmailMaxAttempts: 3})

	result := es.Send(context.Background(), EmailRequest{
		Subject:      "Test",
		TemplateName: "npd_submitted",
	})

	assert.False(t, result.Success)
	assert.NotEmpty(t, result.Error)
	assert.Zero(t, result.Attempts)
}

func TestSendRejectsEmptySubject(t *testing.T) {
	es := newTestEmailService(t, &config.Config{EmailMaxAttempts: 3})

	result := es.Send(context.Background(), EmailRequest{
		To:           []string{"bendahara@sinpd.go.id"},
		TemplateName: "npd_submitted",
	})

	assert.False(t, result.Success)
	assert.Zero(t, result.Attempts)
}

func TestSendRejectsUnknownTemplate(t *testing.T) {
	es := newTestEmailService(t, &config.Config{EmailMaxAttempts: 3})

	result := es.Send(context.Background(), EmailRequest{
		To:           []string{"bendahara@sinpd.go.id"},
		Subject:      "Test",
		TemplateName: "tidak_ada",
	})

	assert.False(t, result.Success)
	assert.Contains(t, result.Error, "tidak_ada")
}

func TestSendIncompleteSMTPConfigDoesNotRetry(t *testing.T) {
	// Missing credentials are a permanent failure; retrying cannot fix
	// them, so exactly one attempt is made.
	es := newTestEmailService(t, &config.Config{EmailMaxAttempts: 5})

	result := es.Send(context.Background(), EmailRequest{
		To:           []string{"bendahara@sinpd.go.id"},
		Subject:      "NPD Menunggu Verifikasi",
		TemplateName: "npd_submitted",
		TemplateData: map[string]interface{}{"RecipientName": "Siti"},
	})

	assert.False(t, result.Success)
	assert.Equal(t, 1, result.Attempts)
	assert.Contains(t, result.Error, "SMTP configuration")
}

func TestSendEchoesNotificationID(t *testing.T) {
	// The caller correlates the delivery with its notification row, so
	// the id must survive the round trip even when delivery fails.
	es := newTestEmailService(t, &config.Config{EmailMaxAttempts: 3})
	notifID := uuid.New()

	result := es.Send(context.Background(), EmailRequest{
		To:             []string{"bendahara@sinpd.go.id"},
		Subject:        "NPD Menunggu Verifikasi",
		TemplateName:   "npd_submitted",
		NotificationID: &notifID,
	})

	require.NotNil(t, result.NotificationID)
	assert.Equal(t, notifID, *result.NotificationID)
}

func TestSendWithoutNotificationID(t *testing.T) {
	es := newTestEmailService(t, &config.Config{EmailMaxAttempts: 3})

	result := es.Send(context.Background(), EmailRequest{
		To:           []string{"bendahara@sinpd.go.id"},
		Subject:      "Test",
		TemplateName: "npd_submitted",
	})

	assert.Nil(t, result.NotificationID)
}

func TestSendStopsWhenContextCancelled(t *testing.T) {
	es := newTestEmailService(t, &config.Config{
		SMTPHost:         "127.0.0.1",
		SMTPPort:         "1", // nothing listens here
		SMTPUsername:     "user",
		SMTPPassword:     "pass",
		EmailFrom:        "noreply@sinpd.go.id",
		EmailMaxAttempts: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	start := time.Now()
	result := es.Send(ctx, EmailRequest{
		To:           []string{"bendahara@sinpd.go.id"},
		Subject:      "Test",
		TemplateName: "npd_submitted",
	})

	assert.False(t, result.Success)
	assert.GreaterOrEqual(t, result.Attempts, 1)
	assert.Less(t, time.Since(start), 5*time.Second)
}
