package handlers

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"sinpd-backend/shared/clients"
	"sinpd-backend/shared/config"
	"sinpd-backend/shared/database"
	"sinpd-backend/shared/database/models"
	"sinpd-backend/shared/database/models/budget"
	npdmodels "sinpd-backend/shared/database/models/npd"
	"sinpd-backend/shared/database/models/notification"
	"sinpd-backend/shared/utils/audit"
	"sinpd-backend/shared/utils/auth"
	"sinpd-backend/shared/utils/workflow"
)

// RejectNPDRequest represents request body for rejecting an NPD
type RejectNPDRequest struct {
	Reason string `json:"reason" binding:"required"`
}

var errVersionConflict = errors.New("version conflict")

// applyTransition performs the optimistic status update. updates must
// include the new status; version advances by one. RowsAffected == 0
// means another transition won the race.
func applyTransition(tx *gorm.DB, doc *npdmodels.NPD, updates map[string]interface{}) error {
	updates["version"] = doc.Version + 1
	result := tx.Model(&npdmodels.NPD{}).
		Where("id = ? AND version = ?", doc.ID, doc.Version).
		Updates(updates)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return errVersionConflict
	}
	return nil
}

// respondTransitionError maps transition failures to HTTP responses.
func respondTransitionError(c *gin.Context, err error) {
	var te *workflow.TransitionError
	switch {
	case errors.As(err, &te):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Invalid transition",
			"message": te.Error(),
		})
	case errors.Is(err, errVersionConflict):
		c.JSON(http.StatusConflict, gin.H{
			"error":   "Version conflict",
			"message": "Dokumen telah diubah oleh pengguna lain, silakan muat ulang",
		})
	default:
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Transition failed",
			"message": err.Error(),
		})
	}
}

// requireEvent checks the role guard for a workflow event.
func requireEvent(c *gin.Context, ident *auth.Identity, event workflow.Event) bool {
	if !workflow.CanTrigger(ident.Role, event) {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": fmt.Sprintf("Peran %s tidak dapat melakukan aksi %s", ident.Role, event),
		})
		return false
	}
	return true
}

// notifyRoles sends a workflow notification to every user holding one
// of the given roles in the organization, plus the matching email when
// email notifications are enabled.
func notifyRoles(orgID uuid.UUID, roles []models.Role, req clients.WorkflowNotificationRequest, emailData map[string]interface{}) {
	var users []models.User
	if err := database.DB.Where("organization_id = ? AND role IN ?", orgID, roles).Find(&users).Error; err != nil {
		return
	}
	nc := clients.NewNotificationClient()
	for _, user := range users {
		r := req
		r.UserID = user.ID
		nc.NotifyAsync(r)
		emailAsync(nc, user, req, emailData)
	}
}

// notifyUser sends a workflow notification to one user.
func notifyUser(userID uuid.UUID, req clients.WorkflowNotificationRequest, emailData map[string]interface{}) {
	req.UserID = userID
	nc := clients.NewNotificationClient()
	nc.NotifyAsync(req)

	var user models.User
	if err := database.DB.First(&user, "id = ?", userID).Error; err != nil {
		return
	}
	emailAsync(nc, user, req, emailData)
}

// emailAsync delivers the email template matching a workflow
// notification type. Best effort: failures only log.
func emailAsync(nc *clients.NotificationClient, user models.User, req clients.WorkflowNotificationRequest, emailData map[string]interface{}) {
	if !config.GetConfig().EmailNotificationsEnabled || user.Email == "" {
		return
	}

	data := map[string]interface{}{"RecipientName": user.FullName()}
	for k, v := range emailData {
		data[k] = v
	}

	go func() {
		if _, err := nc.SendEmail(clients.EmailSendRequest{
			To:           []string{user.Email},
			Subject:      req.Title,
			TemplateName: req.Type,
			TemplateData: data,
		}); err != nil {
			log.Printf("⚠️ Failed to send %s email to %s: %v", req.Type, user.Email, err)
		}
	}()
}

// npdLink builds the frontend URL for an NPD document.
func npdLink(id uuid.UUID) string {
	return config.GetConfig().FrontendURL + "/npd/" + id.String()
}

// SubmitNPD submits a draft or rejected NPD for verification
// @Summary Submit an NPD
// @Tags workflow
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 409 {object} map[string]string "Invalid transition or version conflict"
// @Router /npd/{id}/submit [post]
func SubmitNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}
	if !requireEvent(c, ident, workflow.EventSubmit) {
		return
	}

	doc, ok := loadNPD(c, orgID, true)
	if !ok {
		return
	}

	if ident.Role != models.RoleAdmin && doc.CreatedBy != ident.UserID {
		c.JSON(http.StatusForbidden, gin.H{
			"error":   "Forbidden",
			"message": "Hanya pembuat dokumen yang dapat mengajukannya",
		})
		return
	}

	next, err := workflow.Transition(workflow.Status(doc.Status), workflow.EventSubmit)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	if len(doc.Lines) == 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "No line items",
			"message": "NPD harus memiliki minimal satu rincian sebelum diajukan",
		})
		return
	}

	var subActivity budget.SubActivity
	if err := database.DB.First(&subActivity, doc.SubActivityID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{
			"error":   "Failed to retrieve sub-activity",
			"message": err.Error(),
		})
		return
	}
	if total := doc.LineTotal(); total > subActivity.Pagu {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Line total exceeds pagu",
			"message": fmt.Sprintf("Total rincian (%d) melebihi pagu sub kegiatan (%d)", total, subActivity.Pagu),
		})
		return
	}

	now := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyTransition(tx, doc, map[string]interface{}{
			"status":           string(next),
			"submitted_at":     now,
			"rejection_reason": "",
		}); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "submit",
			Before:         gin.H{"status": doc.Status, "version": doc.Version},
			After:          gin.H{"status": next, "version": doc.Version + 1},
		})
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	notifyRoles(orgID, []models.Role{models.RoleVerifikator, models.RoleBendahara}, clients.WorkflowNotificationRequest{
		OrganizationID: orgID,
		Type:           "npd_submitted",
		Level:          notification.NotificationLevelInfo,
		Title:          "NPD diajukan",
		Message:        fmt.Sprintf("NPD %s menunggu verifikasi", doc.Number),
		Entity:         "npd",
		EntityID:       &doc.ID,
	}, map[string]interface{}{
		"NPDNumber":     doc.Number,
		"SubmitterName": ident.Email,
		"Link":          npdLink(doc.ID),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "NPD berhasil diajukan",
		"data":    gin.H{"status": next, "version": doc.Version + 1},
	})
}

// VerifyNPD marks a submitted NPD as verified. Every required
// checklist item must already be checked.
// @Summary Verify an NPD
// @Tags workflow
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Failure 422 {object} map[string]interface{} "Unchecked required checklist items"
// @Router /npd/{id}/verify [post]
func VerifyNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}
	if !requireEvent(c, ident, workflow.EventVerify) {
		return
	}

	doc, ok := loadNPD(c, orgID, true)
	if !ok {
		return
	}

	next, err := workflow.Transition(workflow.Status(doc.Status), workflow.EventVerify)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	unchecked := workflow.UncheckedRequired(doc.Checklist)
	if len(unchecked) > 0 {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":   "Checklist incomplete",
			"message": "Item wajib belum dicentang: " + strings.Join(unchecked, ", "),
			"data":    gin.H{"unchecked": unchecked},
		})
		return
	}

	now := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyTransition(tx, doc, map[string]interface{}{
			"status":      string(next),
			"verified_at": now,
			"verified_by": ident.UserID,
		}); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "verify",
			Before:         gin.H{"status": doc.Status, "version": doc.Version},
			After:          gin.H{"status": next, "version": doc.Version + 1},
		})
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	notifyUser(doc.CreatedBy, clients.WorkflowNotificationRequest{
		OrganizationID: orgID,
		Type:           "npd_verified",
		Level:          notification.NotificationLevelSuccess,
		Title:          "NPD diverifikasi",
		Message:        fmt.Sprintf("NPD %s telah diverifikasi", doc.Number),
		Entity:         "npd",
		EntityID:       &doc.ID,
	}, map[string]interface{}{
		"NPDNumber": doc.Number,
		"Link":      npdLink(doc.ID),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "NPD berhasil diverifikasi",
		"data":    gin.H{"status": next, "version": doc.Version + 1},
	})
}

// FinalizeNPD finalizes a verified NPD, locking it permanently and
// enabling SP2D issuance
// @Summary Finalize an NPD
// @Tags workflow
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id}/finalize [post]
func FinalizeNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}
	if !requireEvent(c, ident, workflow.EventFinalize) {
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}

	next, err := workflow.Transition(workflow.Status(doc.Status), workflow.EventFinalize)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	now := time.Now()
	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyTransition(tx, doc, map[string]interface{}{
			"status":       string(next),
			"finalized_at": now,
			"finalized_by": ident.UserID,
		}); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "finalize",
			Before:         gin.H{"status": doc.Status, "version": doc.Version},
			After:          gin.H{"status": next, "version": doc.Version + 1},
		})
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	notifyUser(doc.CreatedBy, clients.WorkflowNotificationRequest{
		OrganizationID: orgID,
		Type:           "npd_finalized",
		Level:          notification.NotificationLevelSuccess,
		Title:          "NPD final",
		Message:        fmt.Sprintf("NPD %s telah difinalkan dan siap untuk penerbitan SP2D", doc.Number),
		Entity:         "npd",
		EntityID:       &doc.ID,
	}, map[string]interface{}{
		"NPDNumber": doc.Number,
		"Link":      npdLink(doc.ID),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "NPD berhasil difinalkan",
		"data":    gin.H{"status": next, "version": doc.Version + 1},
	})
}

// RejectNPD rejects a submitted or verified NPD with a reason,
// returning it to an editable state
// @Summary Reject an NPD
// @Tags workflow
// @Accept json
// @Produce json
// @Param id path string true "NPD ID" format(uuid)
// @Param body body RejectNPDRequest true "Rejection reason"
// @Security BearerAuth
// @Success 200 {object} map[string]interface{}
// @Router /npd/{id}/reject [post]
func RejectNPD(c *gin.Context) {
	ident, ok := auth.RequireIdentity(c)
	if !ok {
		return
	}
	orgID, ok := auth.RequireOrganization(c, ident)
	if !ok {
		return
	}
	if !requireEvent(c, ident, workflow.EventReject) {
		return
	}

	var req RejectNPDRequest
	if err := c.ShouldBindJSON(&req); err != nil || strings.TrimSpace(req.Reason) == "" {
		c.JSON(http.StatusBadRequest, gin.H{
			"error":   "Missing rejection reason",
			"message": "Alasan penolakan wajib diisi",
		})
		return
	}

	doc, ok := loadNPD(c, orgID, false)
	if !ok {
		return
	}

	next, err := workflow.Transition(workflow.Status(doc.Status), workflow.EventReject)
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	err = database.DB.Transaction(func(tx *gorm.DB) error {
		if err := applyTransition(tx, doc, map[string]interface{}{
			"status":           string(next),
			"rejection_reason": req.Reason,
		}); err != nil {
			return err
		}
		return audit.Record(tx, audit.Entry{
			OrganizationID: &orgID,
			ActorID:        &ident.UserID,
			EntityTable:    "npd",
			EntityID:       &doc.ID,
			Action:         "reject",
			Before:         gin.H{"status": doc.Status, "version": doc.Version},
			After:          gin.H{"status": next, "version": doc.Version + 1, "reason": req.Reason},
		})
	})
	if err != nil {
		respondTransitionError(c, err)
		return
	}

	notifyUser(doc.CreatedBy, clients.WorkflowNotificationRequest{
		OrganizationID: orgID,
		Type:           "npd_rejected",
		Level:          notification.NotificationLevelWarning,
		Title:          "NPD ditolak",
		Message:        fmt.Sprintf("NPD %s ditolak: %s", doc.Number, req.Reason),
		Entity:         "npd",
		EntityID:       &doc.ID,
	}, map[string]interface{}{
		"NPDNumber": doc.Number,
		"Reason":    req.Reason,
		"Link":      npdLink(doc.ID),
	})

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"message": "NPD berhasil ditolak",
		"data":    gin.H{"status": next, "version": doc.Version + 1},
	})
}
