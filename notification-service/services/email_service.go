package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"strings"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/google/uuid"

	"sinpd-backend/shared/config"
)

// EmailRequest represents a transactional email to deliver.
// NotificationID links the email to the in-app notification it
// accompanies, when there is one.
type EmailRequest struct {
	To             []string               `json:"to" binding:"required"`
	Subject        string                 `json:"subject" binding:"required"`
	TemplateName   string                 `json:"template_name" binding:"required"`
	TemplateData   map[string]interface{} `json:"template_data,omitempty"`
	NotificationID *uuid.UUID             `json:"notification_id,omitempty"`
}

// EmailResult reports the delivery outcome including how many attempts
// were made. The linked notification id is echoed back so the caller
// can correlate the delivery with its notification row.
type EmailResult struct {
	Success        bool       `json:"success"`
	MessageID      string     `json:"message_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	Attempts       int        `json:"attempts"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
}

// EmailService handles sending emails over SMTP with retries
type EmailService struct {
	config          *config.Config
	templateService *TemplateService
}

// NewEmailService creates a new email service
func NewEmailService(cfg *config.Config, templates *TemplateService) *EmailService {
	return &EmailService{
		config:          cfg,
		templateService: templates,
	}
}

// HasTemplate reports whether a named email template is registered
func (es *EmailService) HasTemplate(name string) bool {
	return es.templateService.Has(name)
}

// Send renders the template and delivers the email, retrying transient
// SMTP failures with exponential backoff up to the configured attempt
// cap. The context bounds the whole delivery including retries.
func (es *EmailService) Send(ctx context.Context, request EmailRequest) *EmailResult {
	result := &EmailResult{NotificationID: request.NotificationID}

	if len(request.To) == 0 {
		result.Error = "recipient list cannot be empty"
		return result
	}
	if request.Subject == "" {
		result.Error = "subject cannot be empty"
		return result
	}

	body, err := es.templateService.Render(request.TemplateName, request.TemplateData)
	if err != nil {
		result.Error = err.Error()
		return result
	}

	message := es.buildEmailMessage(request, body)

	maxAttempts := es.config.EmailMaxAttempts
	if maxAttempts <= 0 {
		maxAttempts = 3
	}

	policy := backoff.WithContext(
		backoff.WithMaxRetries(backoff.NewExponentialBackOff(), uint64(maxAttempts-1)),
		ctx,
	)

	operation := func() error {
		result.Attempts++
		return es.sendSMTPEmail(request.To, message)
	}

	if err := backoff.Retry(operation, policy); err != nil {
		log.Printf("❌ Email to %v failed after %d attempts: %v", request.To, result.Attempts, err)
		result.Error = err.Error()
		return result
	}

	result.Success = true
	result.MessageID = fmt.Sprintf("%d@%s", time.Now().UnixNano(), es.config.SMTPHost)
	log.Printf("📧 Email sent to %v (%s, %d attempts)", request.To, request.TemplateName, result.Attempts)
	return result
}

// sendSMTPEmail sends email via SMTP
func (es *EmailService) sendSMTPEmail(to []string, message string) error {
	host := es.config.SMTPHost
	port := es.config.SMTPPort
	username := es.config.SMTPUsername
	password := es.config.SMTPPassword
	from := es.config.EmailFrom

	if host == "" || username == "" || password == "" {
		return backoff.Permanent(fmt.Errorf("SMTP configuration is incomplete"))
	}

	auth := smtp.PlainAuth("", username, password, host)
	addr := fmt.Sprintf("%s:%s", host, port)

	// Port 465 uses implicit TLS; other ports may use STARTTLS
	if port == "465" || es.config.SMTPUseTLS {
		return es.sendWithTLS(addr, auth, from, to, []byte(message))
	}

	return smtp.SendMail(addr, auth, from, to, []byte(message))
}

// sendWithTLS sends email with TLS
func (es *EmailService) sendWithTLS(addr string, auth smtp.Auth, from string, to []string, msg []byte) error {
	host := strings.Split(addr, ":")[0]

	conn, err := tls.Dial("tcp", addr, &tls.Config{
		ServerName: host,
	})
	if err != nil {
		return err
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, host)
	if err != nil {
		return err
	}
	defer client.Quit()

	if err = client.Auth(auth); err != nil {
		return err
	}
	if err = client.Mail(from); err != nil {
		return err
	}
	for _, recipient := range to {
		if err = client.Rcpt(recipient); err != nil {
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	defer w.Close()

	_, err = w.Write(msg)
	return err
}

// buildEmailMessage builds the MIME message
func (es *EmailService) buildEmailMessage(request EmailRequest, body string) string {
	from := es.config.EmailFrom
	fromName := es.config.EmailFromName

	var msg strings.Builder
	msg.WriteString(fmt.Sprintf("From: %s <%s>\r\n", fromName, from))
	msg.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(request.To, ", ")))
	msg.WriteString(fmt.Sprintf("Subject: %s\r\n", request.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	msg.WriteString("Content-Type: text/html; charset=UTF-8\r\n")
	msg.WriteString("\r\n")
	msg.WriteString(body)

	return msg.String()
}
