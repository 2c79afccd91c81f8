package notification

import (
	"time"

	"github.com/google/uuid"
)

// NotificationLevel represents the severity level of a notification
type NotificationLevel string

const (
	NotificationLevelSuccess NotificationLevel = "success"
	NotificationLevelError   NotificationLevel = "error"
	NotificationLevelWarning NotificationLevel = "warning"
	NotificationLevelInfo    NotificationLevel = "info"
)

// Notification is a per-user message created by workflow transitions.
// Only the owning user may mark it read.
type Notification struct {
	ID             uuid.UUID         `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID         uuid.UUID         `json:"user_id" gorm:"type:uuid;not null;index"`
	OrganizationID uuid.UUID         `json:"organization_id" gorm:"type:uuid;not null;index"`
	Type           string            `json:"type" gorm:"type:varchar(50);not null"` // npd_submitted, npd_verified, npd_rejected, npd_finalized, sp2d_issued
	Level          NotificationLevel `json:"level" gorm:"type:varchar(20);not null;default:'info'"`
	Title          string            `json:"title" gorm:"type:varchar(200);not null"`
	Message        string            `json:"message" gorm:"type:text;not null"`
	Entity         string            `json:"entity,omitempty" gorm:"type:varchar(100)"`
	EntityID       *uuid.UUID        `json:"entity_id,omitempty" gorm:"type:uuid"`
	IsRead         bool              `json:"is_read" gorm:"default:false;index"`
	ReadAt         *time.Time        `json:"read_at,omitempty"`
	CreatedAt      time.Time         `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for Notification
func (Notification) TableName() string {
	return "notifications"
}

// WebSocketMessage is the push format for real-time delivery.
type WebSocketMessage struct {
	Type      string            `json:"type"`
	Level     NotificationLevel `json:"level"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Timestamp time.Time         `json:"timestamp"`
	Entity    string            `json:"entity,omitempty"`
	EntityID  *uuid.UUID        `json:"entity_id,omitempty"`
	UserID    *uuid.UUID        `json:"user_id,omitempty"`
}
