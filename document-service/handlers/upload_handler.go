package handlers

import (
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/document-service/services"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database/models/document"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/query"
)

const presignExpiry = 15 * time.Minute

type UploadHandler struct {
	db    *gorm.DB
	minio *services.MinIOService
}

func NewUploadHandler(db *gorm.DB, minio *services.MinIOService) *UploadHandler {
	return &UploadHandler{db: db, minio: minio}
}

// ReserveUploadRequest represents request body for reserving an upload
type ReserveUploadRequest struct {
	NPDID    uuid.UUID `json:"npd_id" binding:"required"`
	FileName string    `json:"file_name" binding:"required"`
	MimeType string    `json:"mime_type"`
}

// allowedExtension checks the file name against the configured
// extension whitelist.
func allowedExtension(fileName string) bool {
	ext := strings.ToLower(filepath.Ext(fileName))
	if ext == "" {
		return false
	}
	for _, allowed := range strings.Split(config.GetConfig().UploadAllowedTypes, ",") {
		if ext == strings.TrimSpace(allowed) {
			return true
		}
	}
	return false
}

// ReserveUpload creates a PENDING upload row and returns a presigned
// PUT URL. The client uploads directly to storage, then confirms.
// @Summary Reserve an attachment upload
// @Tags documents
// @Accept json
// @Produce json
// @Param upload body ReserveUploadRequest true "Upload information"
// @Security BearerAuth
// @Success 201 {object} map[string]interface{}
// @Failure 422 {object} map[string]string "File type not allowed"
// @Router /documents/uploads [post]
func (h *UploadHandler) ReserveUpload(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	var req ReserveUploadRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid request body",
			"message": err.Error(),
		})
		return
	}

	if !allowedExtension(req.FileName) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "File type not allowed",
			"message": "Jenis berkas tidak diizinkan",
		})
		return
	}

	var doc npdmodels.NPD
	if err := query.ScopeToOrganization(h.db, orgID).First(&doc, req.NPDID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "NPD not found",
				"message": "Dokumen NPD tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve NPD",
			"message": err.Error(),
		})
		return
	}

	objectKey := fmt.Sprintf("npd/%s/%s-%s", doc.ID, uuid.NewString(), filepath.Base(req.FileName))

	upload := document.Upload{
		OrganizationID: orgID,
		NPDID:          doc.ID,
		FileName:       req.FileName,
		MimeType:       req.MimeType,
		BucketName:     h.minio.GetBucketName(),
		ObjectKey:      objectKey,
		Status:         document.UploadStatusPending,
		UploadedBy:     ident.UserID,
	}

	if err := h.db.Create(&upload).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to reserve upload",
			"message": err.Error(),
		})
		return
	}

	uploadURL, err := h.minio.PresignedPutURL(c.Request.Context(), objectKey, presignExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to presign upload",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusCreated, gin.H{
		"success": true,
		"message": "Unggahan dipesan, lanjutkan ke URL unggah",
		"data": gin.H{
			"upload":     upload,
			"upload_url": uploadURL,
			"expires_in": int(presignExpiry.Seconds()),
		},
	})
}

// ConfirmUpload verifies the object landed in storage and marks the
// row CONFIRMED
// @Summary Confirm an attachment upload
// @Tags documents
// @Produce json
// @Param id path string true "Upload ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Object missing from storage"
// @Router /documents/uploads/{id}/confirm [post]
func (h *UploadHandler) ConfirmUpload(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid upload ID format",
			"message": err.Error(),
		})
		return
	}

	var upload document.Upload
	if err := query.ScopeToOrganization(h.db, orgID).First(&upload, uploadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Upload not found",
				"message": "Unggahan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve upload",
			"message": err.Error(),
		})
		return
	}

	if upload.Status == document.UploadStatusConfirmed {
		c.JSON(http.StatusOK, gin.H{
			"success": true,
			"message": "Unggahan sudah dikonfirmasi",
			"data":    upload,
		})
		return
	}

	size, err := h.minio.StatObject(c.Request.Context(), upload.ObjectKey)
	if err != nil {
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Object missing",
			"message": "Berkas belum diterima oleh penyimpanan",
		})
		return
	}

	now := time.Now()
	upload.Status = document.UploadStatusConfirmed
	upload.FileSize = size
	upload.ConfirmedAt = &now

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Save(&upload).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "uploads",
			EntityID:       &upload.ID,
			Action:         "confirm",
			After:          upload,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to confirm upload",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Unggahan berhasil dikonfirmasi",
		"data":    upload,
	})
}

// GetUploads lists confirmed attachments of an NPD
// @Summary Get NPD attachments
// @Tags documents
// @Produce json
// @Param npd_id query string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /documents/uploads [get]
func (h *UploadHandler) GetUploads(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	npdID, err := uuid.Parse(c.Query("npd_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid npd_id",
			"message": "Parameter npd_id wajib berupa UUID",
		})
		return
	}

	var uploads []document.Upload
	if err := query.ScopeToOrganization(h.db, orgID).
		Where("npd_id = ? AND status = ?", npdID, document.UploadStatusConfirmed).
		Order("created_at asc").Find(&uploads).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve uploads",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    gin.H{"items": uploads},
	})
}

// DownloadUpload returns a presigned download URL for an attachment
// @Summary Get attachment download URL
// @Tags documents
// @Produce json
// @Param id path string true "Upload ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /documents/uploads/{id}/download [get]
func (h *UploadHandler) DownloadUpload(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid upload ID format",
			"message": err.Error(),
		})
		return
	}

	var upload document.Upload
	if err := query.ScopeToOrganization(h.db, orgID).
		Where("status = ?", document.UploadStatusConfirmed).
		First(&upload, uploadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Upload not found",
				"message": "Unggahan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve upload",
			"message": err.Error(),
		})
		return
	}

	downloadURL, err := h.minio.PresignedGetURL(c.Request.Context(), upload.ObjectKey, presignExpiry)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to presign download",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data": gin.H{
			"download_url": downloadURL,
			"file_name":    upload.FileName,
			"expires_in":   int(presignExpiry.Seconds()),
		},
	})
}

// DeleteUpload removes an attachment and its stored object
// @Summary Delete an attachment
// @Tags documents
// @Produce json
// @Param id path string true "Upload ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /documents/uploads/{id} [delete]
func (h *UploadHandler) DeleteUpload(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}

	uploadID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Invalid upload ID format",
			"message": err.Error(),
		})
		return
	}

	var upload document.Upload
	if err := query.ScopeToOrganization(h.db, orgID).First(&upload, uploadID).Error; err != nil {
		if err == gorm.ErrRecordNotFound {
			c.JSON(http.StatusNotFound, gin.H{
				"error":   "Upload not found",
				"message": "Unggahan tidak ditemukan",
			})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve upload",
			"message": err.Error(),
		})
		return
	}

	if err := h.minio.RemoveObject(c.Request.Context(), upload.ObjectKey); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to remove object",
			"message": err.Error(),
		})
		return
	}

	err = h.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Delete(&upload).Error; err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "uploads",
			EntityID:       &upload.ID,
			Action:         "delete",
			Before:         upload,
		})
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to delete upload",
			"message": err.Error(),
		})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "Unggahan berhasil dihapus",
	})
}
