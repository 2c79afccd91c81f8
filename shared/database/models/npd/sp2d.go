package npd

import (
	"time"

	"github.com/google/uuid"
)

// SP2D is the disbursement order issued against exactly one finalized
// NPD. Immutable once created except corrective deletion by
// privileged roles.
type SP2D struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	NPDID          uuid.UUID `json:"npd_id" gorm:"type:uuid;not null;uniqueIndex"`
	Number         string    `json:"number" gorm:"size:100;not null"`
	Amount         int64     `json:"amount" gorm:"not null"`
	IssuedDate     time.Time `json:"issued_date" gorm:"not null"`
	IssuedBy       uuid.UUID `json:"issued_by" gorm:"type:uuid;not null"`
	CreatedAt      time.Time `json:"created_at"`

	// Relations
	NPD NPD `json:"npd,omitempty" gorm:"foreignKey:NPDID"`
}

func (SP2D) TableName() string {
	return "sp2d"
}
