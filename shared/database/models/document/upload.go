package document

import (
	"time"

	"github.com/google/uuid"
)

// Upload statuses. A reserve call creates a PENDING row; confirm
// moves it to CONFIRMED after the object is verified in storage.
// PENDING rows past the configured TTL are garbage-collected by the
// document-service sweep.
const (
	UploadStatusPending   = "PENDING"
	UploadStatusConfirmed = "CONFIRMED"
)

// Upload is an NPD attachment, stored in MinIO and recorded here.
type Upload struct {
	ID             uuid.UUID  `json:"id" gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrganizationID uuid.UUID  `json:"organization_id" gorm:"type:uuid;not null;index"`
	NPDID          uuid.UUID  `json:"npd_id" gorm:"type:uuid;not null;index"`
	FileName       string     `json:"file_name" gorm:"not null"`
	FileSize       int64      `json:"file_size"`
	MimeType       string     `json:"mime_type" gorm:"size:100"`
	BucketName     string     `json:"bucket_name" gorm:"not null"`
	ObjectKey      string     `json:"object_key" gorm:"not null;unique"`
	Status         string     `json:"status" gorm:"type:varchar(20);not null;default:'PENDING';index"`
	UploadedBy     uuid.UUID  `json:"uploaded_by" gorm:"type:uuid;not null"`
	ConfirmedAt    *time.Time `json:"confirmed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}
