package models

import (
	"time"

	"github.com/google/uuid"
)

// Organization is the tenant boundary. Every domain entity hangs off
// exactly one organization; cross-organization reads are rejected at
// the query layer.
type Organization struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalID string    `json:"external_id" gorm:"size:100;uniqueIndex"` // identity-provider organization id
	Name       string    `json:"name" gorm:"size:200;not null"`
	Slug       string    `json:"slug" gorm:"size:100;uniqueIndex;not null"`
	Status     string    `json:"status" gorm:"default:'ACTIVE'"` // ACTIVE, INACTIVE (soft delete)
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}
