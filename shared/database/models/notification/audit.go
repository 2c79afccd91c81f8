package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// AuditLog is an append-only record written by every mutating
// handler: who did what to which entity, with optional before/after
// snapshots of the mutated fields. Never updated or deleted.
type AuditLog struct {
	ID             uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	OrganizationID *uuid.UUID     `json:"organization_id,omitempty" gorm:"type:uuid;index"`
	ActorID        *uuid.UUID     `json:"actor_id,omitempty" gorm:"type:uuid;index"`
	EntityTable    string         `json:"entity_table" gorm:"type:varchar(100);not null;index"`
	EntityID       *uuid.UUID     `json:"entity_id,omitempty" gorm:"type:uuid;index"`
	Action         string         `json:"action" gorm:"type:varchar(50);not null"`
	Before         datatypes.JSON `json:"before,omitempty" gorm:"type:jsonb"`
	After          datatypes.JSON `json:"after,omitempty" gorm:"type:jsonb"`
	CreatedAt      time.Time      `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for AuditLog
func (AuditLog) TableName() string {
	return "audit_logs"
}

// RequestLog is the gateway-side HTTP audit record.
type RequestLog struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	UserID     *uuid.UUID `json:"user_id,omitempty" gorm:"type:uuid;index"`
	Method     string     `json:"method" gorm:"type:varchar(10);not null"`
	Path       string     `json:"path" gorm:"type:varchar(500);not null"`
	StatusCode int        `json:"status_code" gorm:"not null;index"`
	IPAddress  string     `json:"ip_address" gorm:"type:varchar(45)"`
	Duration   int64      `json:"duration_ms" gorm:"not null"` // milliseconds
	RequestID  string     `json:"request_id" gorm:"type:varchar(100);index"`
	CreatedAt  time.Time  `json:"created_at" gorm:"autoCreateTime;index"`
}

// TableName returns the table name for RequestLog
func (RequestLog) TableName() string {
	return "request_logs"
}
