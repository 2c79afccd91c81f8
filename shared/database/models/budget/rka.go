package budget

import (
	"time"

	"github.com/google/uuid"
)

// RKA hierarchy: Program → Activity → SubActivity → Account. Each
// node carries a code, a name, a fiscal year and a pagu (budgeted
// amount in integer rupiah). A parent's pagu equals the sum of its
// direct children's pagu, maintained by recomputation on every child
// mutation.

type Program struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	Code           string    `json:"code" gorm:"size:50;not null;index:idx_program_code_year,unique,composite:org"`
	Name           string    `json:"name" gorm:"size:300;not null"`
	FiscalYear     int       `json:"fiscal_year" gorm:"not null;index:idx_program_code_year,unique,composite:org"`
	Pagu           int64     `json:"pagu" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

type Activity struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	ProgramID      uuid.UUID `json:"program_id" gorm:"type:uuid;not null;index"`
	Code           string    `json:"code" gorm:"size:50;not null"`
	Name           string    `json:"name" gorm:"size:300;not null"`
	FiscalYear     int       `json:"fiscal_year" gorm:"not null"`
	Pagu           int64     `json:"pagu" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Program Program `json:"program,omitempty" gorm:"foreignKey:ProgramID"`
}

type SubActivity struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	ActivityID     uuid.UUID `json:"activity_id" gorm:"type:uuid;not null;index"`
	Code           string    `json:"code" gorm:"size:50;not null"`
	Name           string    `json:"name" gorm:"size:300;not null"`
	FiscalYear     int       `json:"fiscal_year" gorm:"not null"`
	Pagu           int64     `json:"pagu" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	Activity Activity `json:"activity,omitempty" gorm:"foreignKey:ActivityID"`
}

// Account is the leaf node (rekening belanja). Its pagu is entered
// directly; Realisasi accumulates disbursed amounts from SP2D issuance.
type Account struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	SubActivityID  uuid.UUID `json:"sub_activity_id" gorm:"type:uuid;not null;index"`
	Code           string    `json:"code" gorm:"size:50;not null"` // 6-segment rekening code
	Name           string    `json:"name" gorm:"size:300;not null"`
	FiscalYear     int       `json:"fiscal_year" gorm:"not null"`
	Pagu           int64     `json:"pagu" gorm:"not null;default:0"`
	Realisasi      int64     `json:"realisasi" gorm:"not null;default:0"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`

	// Relations
	SubActivity SubActivity `json:"sub_activity,omitempty" gorm:"foreignKey:SubActivityID"`
}

// Sisa returns the remaining budget on the account.
func (a *Account) Sisa() int64 {
	return a.Pagu - a.Realisasi
}
