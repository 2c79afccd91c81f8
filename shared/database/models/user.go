package models

import (
	"time"

	"github.com/google/uuid"
)

// Role is the closed set of roles a user can hold. Exactly one per user.
type Role string

const (
	RoleAdmin       Role = "admin"
	RolePPTK        Role = "pptk"
	RoleBendahara   Role = "bendahara"
	RoleVerifikator Role = "verifikator"
	RoleViewer      Role = "viewer"
)

// ValidRole reports whether r is one of the defined roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleAdmin, RolePPTK, RoleBendahara, RoleVerifikator, RoleViewer:
		return true
	}
	return false
}

type User struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	ExternalID     string     `json:"external_id" gorm:"size:100;uniqueIndex"` // identity-provider user id
	Email          string     `json:"email" gorm:"uniqueIndex;not null"`
	Password       string     `json:"-"` // only set for locally provisioned accounts (seed admin)
	FirstName      string     `json:"first_name" gorm:"size:100"`
	LastName       string     `json:"last_name" gorm:"size:100"`
	NIP            string     `json:"nip" gorm:"size:30"` // civil-servant id number
	Role           Role       `json:"role" gorm:"type:varchar(20);not null;default:'viewer'"`
	Status         string     `json:"status" gorm:"default:'ACTIVE'"`
	OrganizationID *uuid.UUID `json:"organization_id" gorm:"type:uuid;index"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`

	// Relations
	Organization *Organization `json:"organization,omitempty" gorm:"foreignKey:OrganizationID"`
}

// FullName joins first and last name for notifications and exports.
func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
