package services

import (
	"context"
	"log"
	"time"

	"gorm.io/gorm"

	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database/models/document"
)

// SweepService garbage-collects PENDING uploads whose reservation
// expired without a confirm call, removing both the row and any
// object the client managed to push before abandoning the upload.
type SweepService struct {
	db    *gorm.DB
	minio *MinIOService
}

func NewSweepService(db *gorm.DB, minio *MinIOService) *SweepService {
	return &SweepService{db: db, minio: minio}
}

// Start runs the sweep loop until ctx is cancelled.
func (s *SweepService) Start(ctx context.Context) {
	cfg := config.GetConfig()
	interval := time.Duration(cfg.UploadSweepIntervalMin) * time.Minute
	ttl := time.Duration(cfg.UploadPendingTTLHours) * time.Hour

	log.Printf("🔄 Upload sweep running every %s (TTL %s)", interval, ttl)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			log.Println("🔌 Upload sweep stopped")
			return
		case <-ticker.C:
			s.sweepOnce(ctx, ttl)
		}
	}
}

func (s *SweepService) sweepOnce(ctx context.Context, ttl time.Duration) {
	cutoff := time.Now().Add(-ttl)

	var stale []document.Upload
	if err := s.db.Where("status = ? AND created_at < ?", document.UploadStatusPending, cutoff).
		Limit(200).Find(&stale).Error; err != nil {
		log.Printf("⚠️ Upload sweep query failed: %v", err)
		return
	}
	if len(stale) == 0 {
		return
	}

	removed := 0
	for _, upload := range stale {
		// Best effort: the object may never have been uploaded.
		if err := s.minio.RemoveObject(ctx, upload.ObjectKey); err != nil {
			log.Printf("⚠️ Sweep could not remove object %s: %v", upload.ObjectKey, err)
		}
		if err := s.db.Delete(&upload).Error; err != nil {
			log.Printf("⚠️ Sweep could not delete upload row %s: %v", upload.ID, err)
			continue
		}
		removed++
	}

	log.Printf("🧹 Swept %d expired pending uploads", removed)
}
