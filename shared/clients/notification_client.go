package clients

import (
	"bytes"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database/models/notification"
)

// NotificationClient handles communication with notification service
type NotificationClient struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewNotificationClient creates a new notification client
func NewNotificationClient() *NotificationClient {
	cfg := config.GetConfig()
	return &NotificationClient{
		baseURL: cfg.NotificationServiceURL,
		apiKey:  cfg.EmailAPIKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// WorkflowNotificationRequest creates a notification for a user after
// a workflow transition, pushed over websocket when connected.
type WorkflowNotificationRequest struct {
	UserID         uuid.UUID                      `json:"user_id"`
	OrganizationID uuid.UUID                      `json:"organization_id"`
	Type           string                         `json:"type"`
	Level          notification.NotificationLevel `json:"level"`
	Title          string                         `json:"title"`
	Message        string                         `json:"message"`
	Entity         string                         `json:"entity,omitempty"`
	EntityID       *uuid.UUID                     `json:"entity_id,omitempty"`
}

// EmailSendRequest is the body of POST /api/email/send.
type EmailSendRequest struct {
	To             []string               `json:"to"`
	Subject        string                 `json:"subject"`
	TemplateName   string                 `json:"template_name"`
	TemplateData   map[string]interface{} `json:"template_data,omitempty"`
	NotificationID *uuid.UUID             `json:"notification_id,omitempty"`
}

// EmailSendResponse mirrors the email API's response contract.
type EmailSendResponse struct {
	Success        bool       `json:"success"`
	MessageID      string     `json:"message_id,omitempty"`
	Error          string     `json:"error,omitempty"`
	Attempts       int        `json:"attempts"`
	NotificationID *uuid.UUID `json:"notification_id,omitempty"`
}

// SendWorkflowNotification delivers a workflow notification. Callers
// usually invoke it in a goroutine; a delivery failure must not fail
// the workflow transition that triggered it.
func (nc *NotificationClient) SendWorkflowNotification(req WorkflowNotificationRequest) error {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return fmt.Errorf("failed to marshal notification request: %w", err)
	}

	resp, err := nc.httpClient.Post(
		fmt.Sprintf("%s/api/notifications/internal", nc.baseURL),
		"application/json",
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return fmt.Errorf("failed to reach notification service: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusCreated {
		return fmt.Errorf("notification service returned status: %d", resp.StatusCode)
	}
	return nil
}

// NotifyAsync fire-and-forgets a workflow notification, logging on failure.
func (nc *NotificationClient) NotifyAsync(req WorkflowNotificationRequest) {
	go func() {
		if err := nc.SendWorkflowNotification(req); err != nil {
			log.Printf("⚠️ Failed to deliver notification (%s): %v", req.Type, err)
		}
	}()
}

// SendEmail calls the transactional email API with the service key.
func (nc *NotificationClient) SendEmail(req EmailSendRequest) (*EmailSendResponse, error) {
	jsonData, err := json.Marshal(req)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal email request: %w", err)
	}

	httpReq, err := http.NewRequest(
		http.MethodPost,
		fmt.Sprintf("%s/api/email/send", nc.baseURL),
		bytes.NewBuffer(jsonData),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to build email request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+nc.apiKey)

	resp, err := nc.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to reach email service: %w", err)
	}
	defer resp.Body.Close()

	var result EmailSendResponse
	if err := json.NewDecoder(resp.Body).Decode(&result); err != nil {
		return nil, fmt.Errorf("failed to decode email response: %w", err)
	}
	return &result, nil
}
