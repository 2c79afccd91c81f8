package npd

import (
	"time"

	"github.com/google/uuid"

	"sinpd-backend/shared/database/models/budget"
)

// NPDType is the document category. Each type carries its own
// verification checklist template.
type NPDType string

const (
	TypeUP NPDType = "UP" // uang persediaan
	TypeGU NPDType = "GU" // ganti uang
	TypeTU NPDType = "TU" // tambahan uang
	TypeLS NPDType = "LS" // langsung
)

// ValidType reports whether t is one of the defined NPD types.
func ValidType(t NPDType) bool {
	switch t {
	case TypeUP, TypeGU, TypeTU, TypeLS:
		return true
	}
	return false
}

// NPD is the disbursement-request document (Nota Pencairan Dana).
// Status transitions are owned by shared/utils/workflow; Version
// guards verify/finalize/reject against concurrent transitions.
type NPD struct {
	ID             uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID `json:"organization_id" gorm:"type:uuid;not null;index"`
	SubActivityID  uuid.UUID `json:"sub_activity_id" gorm:"type:uuid;not null;index"`
	Number         string    `json:"number" gorm:"size:100;not null"`
	Type           NPDType   `json:"type" gorm:"type:varchar(5);not null"`
	Status         string    `json:"status" gorm:"type:varchar(20);not null;default:'draft';index"`
	Description    string    `json:"description" gorm:"type:text"`
	FiscalYear     int       `json:"fiscal_year" gorm:"not null"`
	Version        int       `json:"version" gorm:"not null;default:1"`

	CreatedBy       uuid.UUID  `json:"created_by" gorm:"type:uuid;not null"`
	SubmittedAt     *time.Time `json:"submitted_at,omitempty"`
	VerifiedAt      *time.Time `json:"verified_at,omitempty"`
	VerifiedBy      *uuid.UUID `json:"verified_by,omitempty" gorm:"type:uuid"`
	FinalizedAt     *time.Time `json:"finalized_at,omitempty"`
	FinalizedBy     *uuid.UUID `json:"finalized_by,omitempty" gorm:"type:uuid"`
	RejectionReason string     `json:"rejection_reason,omitempty" gorm:"type:text"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Relations
	SubActivity budget.SubActivity `json:"sub_activity,omitempty" gorm:"foreignKey:SubActivityID"`
	Lines       []Line             `json:"lines,omitempty" gorm:"foreignKey:NPDID"`
	Checklist   []ChecklistItem    `json:"checklist,omitempty" gorm:"foreignKey:NPDID"`
}

// LineTotal sums the requested amounts across line items.
func (n *NPD) LineTotal() int64 {
	var total int64
	for _, line := range n.Lines {
		total += line.Amount
	}
	return total
}

// Line is one NPD line item referencing a budget account. Amount and
// Disbursed are integer rupiah.
type Line struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NPDID       uuid.UUID `json:"npd_id" gorm:"type:uuid;not null;index"`
	AccountID   uuid.UUID `json:"account_id" gorm:"type:uuid;not null;index"`
	Description string    `json:"description" gorm:"size:300"`
	Amount      int64     `json:"amount" gorm:"not null"`
	Disbursed   int64     `json:"disbursed" gorm:"not null;default:0"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`

	// Relations
	Account budget.Account `json:"account,omitempty" gorm:"foreignKey:AccountID"`
}

func (Line) TableName() string {
	return "npd_lines"
}

// ChecklistItem is one verification checklist entry, instantiated
// from the document type's template when the NPD is created.
type ChecklistItem struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	NPDID     uuid.UUID `json:"npd_id" gorm:"type:uuid;not null;index"`
	Label     string    `json:"label" gorm:"size:300;not null"`
	Required  bool      `json:"required" gorm:"not null;default:false"`
	Checked   bool      `json:"checked" gorm:"not null;default:false"`
	Note      string    `json:"note" gorm:"type:text"`
	Position  int       `json:"position" gorm:"not null;default:0"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (ChecklistItem) TableName() string {
	return "npd_checklist_items"
}

// TemplateItem is a checklist template entry for one NPD type.
type TemplateItem struct {
	Label    string
	Required bool
}

// checklistTemplates maps each NPD type to its required/optional items.
var checklistTemplates = map[NPDType][]TemplateItem{
	TypeUP: {
		{Label: "Surat pengantar NPD", Required: true},
		{Label: "Rincian rencana penggunaan dana", Required: true},
		{Label: "Salinan SK penetapan UP", Required: true},
		{Label: "Dokumen pendukung lainnya", Required: false},
	},
	TypeGU: {
		{Label: "Surat pengantar NPD", Required: true},
		{Label: "Laporan pertanggungjawaban UP sebelumnya", Required: true},
		{Label: "Bukti pengeluaran yang sah", Required: true},
		{Label: "Rincian penggunaan dana", Required: true},
		{Label: "Dokumen pendukung lainnya", Required: false},
	},
	TypeTU: {
		{Label: "Surat pengantar NPD", Required: true},
		{Label: "Rincian rencana kebutuhan tambahan uang", Required: true},
		{Label: "Surat keterangan kebutuhan mendesak", Required: true},
		{Label: "Dokumen pendukung lainnya", Required: false},
	},
	TypeLS: {
		{Label: "Surat pengantar NPD", Required: true},
		{Label: "Kontrak / surat perjanjian", Required: true},
		{Label: "Berita acara serah terima", Required: true},
		{Label: "Kuitansi / bukti tagihan", Required: true},
		{Label: "Faktur pajak", Required: false},
	},
}

// ChecklistTemplate returns the checklist template for an NPD type.
func ChecklistTemplate(t NPDType) []TemplateItem {
	return checklistTemplates[t]
}
